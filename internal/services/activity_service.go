package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/repository"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
	"github.com/google/uuid"
)

// multiSigWindow is how long a multi-sig activity waits for signatures
// before it becomes eligible for archival.
const multiSigWindow = 24 * time.Hour

// signRetryAttempts bounds the optimistic-concurrency retry loop when two
// signers race on the same activity.
const signRetryAttempts = 3

// PostActivityInput carries the caller-supplied fields for posting.
type PostActivityInput struct {
	AffiliationID  string
	Content        string
	CoCreators     []string
	IdempotencyKey string
}

// ActivityService implements the activity publication workflow: post, sign,
// reject, archive-expired and timeline listing. All persistence goes through
// the repositories; activity state is re-read from the store on every call.
type ActivityService struct {
	activityRepo    *repository.ActivityRepository
	affiliationRepo *repository.AffiliationRepository
}

// NewActivityService creates a new instance of ActivityService.
func NewActivityService(activityRepo *repository.ActivityRepository, affiliationRepo *repository.AffiliationRepository) *ActivityService {
	return &ActivityService{
		activityRepo:    activityRepo,
		affiliationRepo: affiliationRepo,
	}
}

// PostActivity creates a timeline entry through an active affiliation the
// actor owns. Without co-creators the activity is published immediately;
// otherwise it starts pending multi-sig with a 24h signing window. A supplied
// idempotency key doubles as the activity identity: retried posts return the
// existing record unchanged.
func (s *ActivityService) PostActivity(ctx context.Context, actorID string, input PostActivityInput) (*models.Activity, error) {
	affiliationID := strings.TrimSpace(input.AffiliationID)
	if affiliationID == "" {
		return nil, apperrors.InvalidInput("affiliation_id is required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	activityID := strings.TrimSpace(input.IdempotencyKey)
	if activityID != "" {
		existing, err := s.activityRepo.GetActivity(ctx, activityID)
		if err == nil {
			if existing.OwnerID != actorID {
				logger.Log.WithField("activity_id", activityID).Warn("Idempotency key reuse by different owner")
				return nil, apperrors.Forbidden("idempotency key belongs to another user")
			}
			logger.Log.WithField("activity_id", activityID).Info("Idempotent post, returning existing activity")
			return existing, nil
		}
		if !errors.Is(err, store.ErrItemNotFound) {
			return nil, apperrors.Internal("failed to check idempotency key", err)
		}
	} else {
		activityID = newID()
	}

	affiliation, err := s.affiliationRepo.GetAffiliation(ctx, affiliationID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("affiliation not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load affiliation", err)
	}
	if affiliation.OwnerID != actorID {
		return nil, apperrors.Forbidden("you do not own this affiliation")
	}
	if affiliation.Status != models.AffiliationActive {
		return nil, apperrors.Forbidden("affiliation is not active")
	}

	coCreators := normalizeIDs(input.CoCreators)
	requiredSignatures := []string{affiliationID}
	for _, id := range coCreators {
		if id != affiliationID {
			requiredSignatures = append(requiredSignatures, id)
		}
	}

	now := time.Now()
	multiSig := len(coCreators) > 0
	activity := &models.Activity{
		ID:                 activityID,
		AffiliationID:      affiliationID,
		WorldID:            affiliation.WorldID,
		OwnerID:            actorID,
		Content:            content,
		Status:             models.ActivityPublished,
		CreatedAt:          models.FormatTime(now),
		CoCreatorIDs:       coCreators,
		RequiredSignatures: requiredSignatures,
		Signatures:         []string{affiliationID},
	}
	if multiSig {
		activity.Status = models.ActivityPendingMultiSig
		activity.ExpiresAt = models.FormatTime(now.Add(multiSigWindow))
	}

	created, err := s.activityRepo.CreateActivity(ctx, activity, !multiSig)
	if err != nil {
		return nil, apperrors.Internal("failed to create activity", err)
	}
	return created, nil
}

// SignActivity records an acknowledgement by a required affiliation. Signing
// twice is a no-op. When the final required signature lands, the activity
// flips to Published and is installed in its world's timeline. The canonical
// write is conditioned on the signature set read, so concurrent signers
// retry instead of overwriting each other.
func (s *ActivityService) SignActivity(ctx context.Context, actorID, activityID, affiliationID string) (*models.Activity, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return nil, apperrors.InvalidInput("activity_id is required")
	}
	affiliationID = strings.TrimSpace(affiliationID)
	if affiliationID == "" {
		return nil, apperrors.InvalidInput("affiliation_id is required")
	}

	var lastErr error
	for attempt := 0; attempt < signRetryAttempts; attempt++ {
		activity, err := s.activityRepo.GetActivity(ctx, activityID)
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, apperrors.NotFound("activity not found")
		}
		if err != nil {
			return nil, apperrors.Internal("failed to load activity", err)
		}

		// Membership in the required set is a property of the activity,
		// checked before caller identity.
		if !activity.RequiresSignature(affiliationID) {
			return nil, apperrors.Forbidden("not a required signer")
		}
		alreadySigned := activity.HasSigned(affiliationID)

		affiliation, err := s.affiliationRepo.GetAffiliation(ctx, affiliationID)
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, apperrors.NotFound("affiliation not found")
		}
		if err != nil {
			return nil, apperrors.Internal("failed to load affiliation", err)
		}
		if affiliation.OwnerID != actorID {
			return nil, apperrors.Forbidden("you do not own this affiliation")
		}

		if alreadySigned {
			logger.Log.WithFields(map[string]interface{}{
				"activity_id":    activityID,
				"affiliation_id": affiliationID,
			}).Info("Duplicate signature, returning activity unchanged")
			return activity, nil
		}

		// Redacted and ArchivedPending are terminal for timeline
		// visibility; late signatures must not resurrect them.
		if activity.Status == models.ActivityRedacted || activity.Status == models.ActivityArchivedPending {
			logger.Log.WithFields(map[string]interface{}{
				"activity_id": activityID,
				"status":      activity.Status,
			}).Warn("Sign attempt on terminal activity ignored")
			return activity, nil
		}

		newSignatures := make([]string, 0, len(activity.Signatures)+1)
		newSignatures = append(newSignatures, activity.Signatures...)
		newSignatures = append(newSignatures, affiliationID)

		allSigned := containsAll(newSignatures, activity.RequiredSignatures)
		newStatus := activity.Status
		if allSigned {
			newStatus = models.ActivityPublished
		}

		updated, err := s.activityRepo.UpdateActivitySignatures(ctx, activity, newSignatures, newStatus)
		if errors.Is(err, store.ErrConditionFailed) {
			// A concurrent signer won the write; re-read and retry.
			logger.Log.WithField("activity_id", activityID).Info("Concurrent signature detected, retrying")
			lastErr = err
			continue
		}
		if err != nil {
			return nil, apperrors.Internal("failed to update signatures", err)
		}

		if allSigned {
			if err := s.activityRepo.PublishActivity(ctx, updated); err != nil {
				return nil, apperrors.Internal("failed to publish activity", err)
			}
		}
		return updated, nil
	}

	return nil, apperrors.Internal("failed to sign activity after retries", lastErr)
}

// RejectActivity redacts an activity and removes it from the timeline. The
// transition is terminal: a redacted activity is never re-published.
func (s *ActivityService) RejectActivity(ctx context.Context, actorID, activityID, affiliationID string) (*models.Activity, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return nil, apperrors.InvalidInput("activity_id is required")
	}
	affiliationID = strings.TrimSpace(affiliationID)
	if affiliationID == "" {
		return nil, apperrors.InvalidInput("affiliation_id is required")
	}

	activity, err := s.activityRepo.GetActivity(ctx, activityID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("activity not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load activity", err)
	}

	affiliation, err := s.affiliationRepo.GetAffiliation(ctx, affiliationID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("affiliation not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load affiliation", err)
	}
	if affiliation.OwnerID != actorID {
		return nil, apperrors.Forbidden("you do not own this affiliation")
	}

	updated, err := s.activityRepo.UpdateActivityStatus(ctx, activity, models.ActivityRedacted, true)
	if err != nil {
		return nil, apperrors.Internal("failed to redact activity", err)
	}

	logger.Log.WithField("activity_id", activityID).Info("Activity redacted")
	return updated, nil
}

// ArchivePendingActivity transitions an expired multi-sig-pending activity to
// ArchivedPending and removes it from the timeline. When the activity is not
// pending, carries no expiry, or has not yet expired, the current record is
// returned unchanged, so the call is safe to make speculatively.
func (s *ActivityService) ArchivePendingActivity(ctx context.Context, actorID, activityID string) (*models.Activity, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return nil, apperrors.InvalidInput("activity_id is required")
	}

	activity, err := s.activityRepo.GetActivity(ctx, activityID)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil, apperrors.NotFound("activity not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load activity", err)
	}

	if activity.Status != models.ActivityPendingMultiSig {
		return activity, nil
	}
	if strings.TrimSpace(activity.ExpiresAt) == "" {
		return activity, nil
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, activity.ExpiresAt)
	if err != nil {
		logger.Log.WithField("activity_id", activityID).Warn("Unparseable expiry, skipping archive")
		return activity, nil
	}
	if !time.Now().After(expiresAt) {
		return activity, nil
	}

	updated, err := s.activityRepo.UpdateActivityStatus(ctx, activity, models.ActivityArchivedPending, true)
	if err != nil {
		return nil, apperrors.Internal("failed to archive activity", err)
	}

	logger.Log.WithField("activity_id", activityID).Info("Expired pending activity archived")
	return updated, nil
}

// ListWorldTimeline returns the published activities of a world, most recent
// first, capped at limit (default 50).
func (s *ActivityService) ListWorldTimeline(ctx context.Context, worldID string, limit int) ([]models.Activity, error) {
	if strings.TrimSpace(worldID) == "" {
		return nil, apperrors.InvalidInput("world_id is required")
	}

	activities, err := s.activityRepo.ListWorldTimeline(ctx, worldID, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list timeline", err)
	}
	return activities, nil
}

// ArchiveExpired sweeps up to limit expired pending activities. Used by the
// background job; the per-activity endpoint remains the contract-level path.
func (s *ActivityService) ArchiveExpired(ctx context.Context, limit int) (int, error) {
	expired, err := s.activityRepo.ListExpiredPending(ctx, time.Now(), limit)
	if err != nil {
		return 0, apperrors.Internal("failed to list expired activities", err)
	}

	archived := 0
	for i := range expired {
		activity := expired[i]
		if _, err := s.activityRepo.UpdateActivityStatus(ctx, &activity, models.ActivityArchivedPending, true); err != nil {
			logger.Log.WithError(err).WithField("activity_id", activity.ID).Warn("Failed to archive expired activity")
			continue
		}
		archived++
	}
	return archived, nil
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsAll(signatures, required []string) bool {
	for _, r := range required {
		found := false
		for _, s := range signatures {
			if s == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
