package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
)

const defaultTimelineLimit = 50

// pendingPartition groups every multi-sig-pending activity under one
// partition of the pending index, sorted by expiry, for the archival sweep.
const pendingPartition = "PENDING"

// ActivityRepository owns the physical layout of activity records: the
// canonical record (source of truth for signatures and status) and a
// timeline-row projection that carries the world timeline index keys while
// the activity is visible. No other component writes these keys.
type ActivityRepository struct {
	store store.Store
	table string
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(s store.Store, table string) *ActivityRepository {
	return &ActivityRepository{store: s, table: table}
}

func activityKey(id string) store.Key {
	return store.Key{PK: "ACT#" + id, SK: "INFO"}
}

func timelineRowKey(affiliationID, createdAt string) store.Key {
	return store.Key{PK: "AFF#" + affiliationID, SK: "ACT#" + createdAt}
}

func worldPartition(worldID string) string {
	return "WORLD#" + worldID
}

func activityFromItem(item store.Item) *models.Activity {
	return &models.Activity{
		ID:                 store.String(item, "activity_id"),
		AffiliationID:      store.String(item, "affiliation_id"),
		WorldID:            store.String(item, "world_id"),
		OwnerID:            store.String(item, "owner_id"),
		Content:            store.String(item, "content"),
		Status:             models.ActivityStatus(store.String(item, "status")),
		CreatedAt:          store.String(item, "created_at"),
		ExpiresAt:          store.String(item, "expires_at"),
		CoCreatorIDs:       store.StringList(item, "co_creators"),
		RequiredSignatures: store.StringList(item, "required_signatures"),
		Signatures:         store.StringList(item, "signatures"),
	}
}

// CreateActivity writes the canonical record and the timeline-row projection
// in one atomic batch. The timeline index keys are installed only when
// publishTimeline is set (no co-creators); a multi-sig activity instead joins
// the pending index so the sweeper can find it by expiry.
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity, publishTimeline bool) (*models.Activity, error) {
	canonicalKey := activityKey(activity.ID)
	canonical := store.Item{
		store.AttrPK:          canonicalKey.PK,
		store.AttrSK:          canonicalKey.SK,
		"activity_id":         activity.ID,
		"affiliation_id":      activity.AffiliationID,
		"world_id":            activity.WorldID,
		"owner_id":            activity.OwnerID,
		"content":             activity.Content,
		"status":              string(activity.Status),
		"created_at":          activity.CreatedAt,
		"expires_at":          activity.ExpiresAt,
		"co_creators":         activity.CoCreatorIDs,
		"required_signatures": activity.RequiredSignatures,
		"signatures":          activity.Signatures,
	}
	if activity.Status == models.ActivityPendingMultiSig {
		canonical[store.AttrPendingPK] = pendingPartition
		canonical[store.AttrPendingSK] = "EXP#" + activity.ExpiresAt
	}

	rowKey := timelineRowKey(activity.AffiliationID, activity.CreatedAt)
	row := store.Item{
		store.AttrPK:     rowKey.PK,
		store.AttrSK:     rowKey.SK,
		"activity_id":    activity.ID,
		"affiliation_id": activity.AffiliationID,
		"world_id":       activity.WorldID,
		"owner_id":       activity.OwnerID,
		"content":        activity.Content,
		"status":         string(activity.Status),
		"created_at":     activity.CreatedAt,
	}
	if publishTimeline {
		row[store.AttrTimelinePK] = worldPartition(activity.WorldID)
		row[store.AttrTimelineSK] = "ACT#" + activity.CreatedAt
	}

	writes := []store.Write{{Put: canonical}, {Put: row}}
	if err := r.store.TransactWrite(ctx, r.table, writes); err != nil {
		logger.Log.WithError(err).WithField("activity_id", activity.ID).Error("Failed to create activity")
		return nil, fmt.Errorf("failed to create activity: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"activity_id": activity.ID,
		"status":      activity.Status,
	}).Info("Activity created successfully")
	return activity, nil
}

// GetActivity fetches the canonical record by activity id.
func (r *ActivityRepository) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	item, err := r.store.GetItem(ctx, r.table, activityKey(id))
	if err != nil {
		return nil, err
	}
	activity := activityFromItem(item)
	activity.ID = id
	return activity, nil
}

// UpdateActivitySignatures persists a new signature set and status on the
// canonical record. The write is conditioned on the signature set the caller
// read, so a concurrent signer cannot be silently overwritten; on
// store.ErrConditionFailed the caller must re-read and retry.
func (r *ActivityRepository) UpdateActivitySignatures(ctx context.Context, activity *models.Activity, signatures []string, status models.ActivityStatus) (*models.Activity, error) {
	set := store.Item{
		"signatures": signatures,
		"status":     string(status),
	}
	if status == models.ActivityPublished {
		// Fully signed activities leave the pending index.
		set[store.AttrPendingPK] = ""
		set[store.AttrPendingSK] = ""
	}
	cond := store.Item{"signatures": activity.Signatures}

	item, err := r.store.UpdateItem(ctx, r.table, activityKey(activity.ID), set, cond)
	if err != nil {
		return nil, err
	}

	updated := activityFromItem(item)
	updated.ID = activity.ID
	logger.Log.WithFields(map[string]interface{}{
		"activity_id": activity.ID,
		"signatures":  len(signatures),
		"status":      status,
	}).Info("Activity signatures updated successfully")
	return updated, nil
}

// PublishActivity flips the timeline-row projection to Published and installs
// its timeline index keys. This is the moment the activity becomes visible in
// the world's timeline; the canonical record was already updated separately.
func (r *ActivityRepository) PublishActivity(ctx context.Context, activity *models.Activity) error {
	set := store.Item{
		"status":             string(models.ActivityPublished),
		store.AttrTimelinePK: worldPartition(activity.WorldID),
		store.AttrTimelineSK: "ACT#" + activity.CreatedAt,
	}
	_, err := r.store.UpdateItem(ctx, r.table, timelineRowKey(activity.AffiliationID, activity.CreatedAt), set, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("activity_id", activity.ID).Error("Failed to publish activity to timeline")
		return fmt.Errorf("failed to publish activity: %v", err)
	}

	logger.Log.WithField("activity_id", activity.ID).Info("Activity published to timeline")
	return nil
}

// UpdateActivityStatus transitions the canonical record's status and mirrors
// it on the timeline row, removing the row from the timeline index when
// hideFromTimeline is set. When the passed record carries an expiry it is
// persisted alongside the status.
func (r *ActivityRepository) UpdateActivityStatus(ctx context.Context, activity *models.Activity, status models.ActivityStatus, hideFromTimeline bool) (*models.Activity, error) {
	set := store.Item{"status": string(status)}
	if strings.TrimSpace(activity.ExpiresAt) != "" {
		set["expires_at"] = activity.ExpiresAt
		set[store.AttrPendingSK] = "EXP#" + activity.ExpiresAt
	}
	if status != models.ActivityPendingMultiSig {
		set[store.AttrPendingPK] = ""
		set[store.AttrPendingSK] = ""
	}

	item, err := r.store.UpdateItem(ctx, r.table, activityKey(activity.ID), set, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("activity_id", activity.ID).Error("Failed to update activity status")
		return nil, err
	}

	rowSet := store.Item{"status": string(status)}
	if hideFromTimeline {
		rowSet[store.AttrTimelinePK] = ""
		rowSet[store.AttrTimelineSK] = ""
	}
	if _, err := r.store.UpdateItem(ctx, r.table, timelineRowKey(activity.AffiliationID, activity.CreatedAt), rowSet, nil); err != nil {
		logger.Log.WithError(err).WithField("activity_id", activity.ID).Error("Failed to update timeline row status")
		return nil, err
	}

	updated := activityFromItem(item)
	updated.ID = activity.ID
	logger.Log.WithFields(map[string]interface{}{
		"activity_id": activity.ID,
		"status":      status,
	}).Info("Activity status updated successfully")
	return updated, nil
}

// ListWorldTimeline queries the timeline index for a world, most recent
// first. Activities that were never published or were removed from the
// timeline carry no index keys and are absent by construction.
func (r *ActivityRepository) ListWorldTimeline(ctx context.Context, worldID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultTimelineLimit
	}

	items, err := r.store.Query(ctx, r.table, store.Query{
		Index:      store.IndexTimeline,
		Partition:  worldPartition(worldID),
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("world_id", worldID).Error("Failed to query world timeline")
		return nil, fmt.Errorf("failed to query world timeline: %v", err)
	}

	activities := make([]models.Activity, 0, len(items))
	for _, item := range items {
		activities = append(activities, models.Activity{
			ID:            store.String(item, "activity_id"),
			AffiliationID: store.String(item, "affiliation_id"),
			WorldID:       store.String(item, "world_id"),
			OwnerID:       store.String(item, "owner_id"),
			Content:       store.String(item, "content"),
			Status:        models.ActivityStatus(store.String(item, "status")),
			CreatedAt:     store.String(item, "created_at"),
		})
	}

	logger.Log.WithFields(map[string]interface{}{
		"world_id": worldID,
		"count":    len(activities),
	}).Info("World timeline fetched successfully")
	return activities, nil
}

// ListExpiredPending returns multi-sig-pending activities whose expiry is
// strictly before now, oldest expiry first.
func (r *ActivityRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]models.Activity, error) {
	items, err := r.store.Query(ctx, r.table, store.Query{
		Index:     store.IndexPending,
		Partition: pendingPartition,
		Limit:     limit,
	})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to query pending activities")
		return nil, fmt.Errorf("failed to query pending activities: %v", err)
	}

	cutoff := "EXP#" + models.FormatTime(now)
	activities := make([]models.Activity, 0, len(items))
	for _, item := range items {
		if store.String(item, store.AttrPendingSK) >= cutoff {
			break
		}
		activity := activityFromItem(item)
		activities = append(activities, *activity)
	}
	return activities, nil
}
