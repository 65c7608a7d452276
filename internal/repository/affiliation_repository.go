package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
)

// AffiliationRepository owns the physical layout of affiliation records: a
// canonical record keyed by affiliation id and a membership record keyed by
// world+character used for membership scans. The two are always written in
// one atomic batch so no reader ever observes a half-created affiliation.
type AffiliationRepository struct {
	store store.Store
	table string
}

// NewAffiliationRepository creates a new instance of AffiliationRepository.
func NewAffiliationRepository(s store.Store, table string) *AffiliationRepository {
	return &AffiliationRepository{store: s, table: table}
}

func affiliationKey(id string) store.Key {
	return store.Key{PK: "AFFILIATION#" + id, SK: "INFO"}
}

func membershipKey(worldID, characterID string) store.Key {
	return store.Key{PK: "WORLD#" + worldID, SK: "MEMBER#" + characterID}
}

func affiliationItem(key store.Key, a *models.Affiliation) store.Item {
	return store.Item{
		store.AttrPK:     key.PK,
		store.AttrSK:     key.SK,
		"affiliation_id": a.ID,
		"world_id":       a.WorldID,
		"character_id":   a.CharacterID,
		"owner_id":       a.OwnerID,
		"status":         string(a.Status),
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
}

func affiliationFromItem(item store.Item) *models.Affiliation {
	return &models.Affiliation{
		ID:          store.String(item, "affiliation_id"),
		WorldID:     store.String(item, "world_id"),
		CharacterID: store.String(item, "character_id"),
		OwnerID:     store.String(item, "owner_id"),
		Status:      models.AffiliationStatus(store.String(item, "status")),
		CreatedAt:   store.String(item, "created_at"),
		UpdatedAt:   store.String(item, "updated_at"),
	}
}

// CreateAffiliation writes the canonical and membership records atomically.
func (r *AffiliationRepository) CreateAffiliation(ctx context.Context, affiliation *models.Affiliation) (*models.Affiliation, error) {
	writes := []store.Write{
		{Put: affiliationItem(affiliationKey(affiliation.ID), affiliation)},
		{Put: affiliationItem(membershipKey(affiliation.WorldID, affiliation.CharacterID), affiliation)},
	}
	if err := r.store.TransactWrite(ctx, r.table, writes); err != nil {
		logger.Log.WithError(err).WithField("affiliation_id", affiliation.ID).Error("Failed to create affiliation")
		return nil, fmt.Errorf("failed to create affiliation: %v", err)
	}

	logger.Log.WithField("affiliation_id", affiliation.ID).Info("Affiliation created successfully")
	return affiliation, nil
}

// GetAffiliation fetches an affiliation by its id.
func (r *AffiliationRepository) GetAffiliation(ctx context.Context, id string) (*models.Affiliation, error) {
	item, err := r.store.GetItem(ctx, r.table, affiliationKey(id))
	if err != nil {
		return nil, err
	}
	return affiliationFromItem(item), nil
}

// GetAffiliationByMembership fetches the affiliation of a character in a
// world, if any. Used to keep join requests idempotent.
func (r *AffiliationRepository) GetAffiliationByMembership(ctx context.Context, worldID, characterID string) (*models.Affiliation, error) {
	item, err := r.store.GetItem(ctx, r.table, membershipKey(worldID, characterID))
	if err != nil {
		return nil, err
	}
	return affiliationFromItem(item), nil
}

// UpdateAffiliationStatus transitions the status on both physical records in
// one atomic batch.
func (r *AffiliationRepository) UpdateAffiliationStatus(ctx context.Context, affiliation *models.Affiliation, status models.AffiliationStatus) (*models.Affiliation, error) {
	updatedAt := affiliation.UpdatedAt
	set := store.Item{
		"status":     string(status),
		"updated_at": updatedAt,
	}

	canonical := affiliationKey(affiliation.ID)
	membership := membershipKey(affiliation.WorldID, affiliation.CharacterID)
	writes := []store.Write{
		{Update: &canonical, Set: set},
		{Update: &membership, Set: set},
	}
	if err := r.store.TransactWrite(ctx, r.table, writes); err != nil {
		logger.Log.WithError(err).WithField("affiliation_id", affiliation.ID).Error("Failed to update affiliation status")
		return nil, fmt.Errorf("failed to update affiliation status: %v", err)
	}

	updated := *affiliation
	updated.Status = status
	logger.Log.WithFields(map[string]interface{}{
		"affiliation_id": affiliation.ID,
		"status":         status,
	}).Info("Affiliation status updated successfully")
	return &updated, nil
}
