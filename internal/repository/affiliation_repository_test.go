package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAffiliationRepo() *AffiliationRepository {
	return NewAffiliationRepository(store.NewMemoryStore(testTable), testTable)
}

func pendingAffiliation(id string) *models.Affiliation {
	now := models.FormatTime(time.Now())
	return &models.Affiliation{
		ID:          id,
		WorldID:     "world-1",
		CharacterID: "char-1",
		OwnerID:     "user-1",
		Status:      models.AffiliationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateAffiliation_ReadableByBothKeys(t *testing.T) {
	repo := newAffiliationRepo()
	ctx := context.Background()

	_, err := repo.CreateAffiliation(ctx, pendingAffiliation("aff-1"))
	require.NoError(t, err)

	byID, err := repo.GetAffiliation(ctx, "aff-1")
	require.NoError(t, err)
	assert.Equal(t, models.AffiliationPending, byID.Status)

	byMembership, err := repo.GetAffiliationByMembership(ctx, "world-1", "char-1")
	require.NoError(t, err)
	assert.Equal(t, "aff-1", byMembership.ID)
}

func TestGetAffiliation_Missing(t *testing.T) {
	repo := newAffiliationRepo()

	_, err := repo.GetAffiliation(context.Background(), "aff-missing")
	assert.ErrorIs(t, err, store.ErrItemNotFound)

	_, err = repo.GetAffiliationByMembership(context.Background(), "world-1", "char-missing")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestUpdateAffiliationStatus_UpdatesBothRecords(t *testing.T) {
	repo := newAffiliationRepo()
	ctx := context.Background()

	affiliation, err := repo.CreateAffiliation(ctx, pendingAffiliation("aff-1"))
	require.NoError(t, err)

	affiliation.UpdatedAt = models.FormatTime(time.Now())
	updated, err := repo.UpdateAffiliationStatus(ctx, affiliation, models.AffiliationActive)
	require.NoError(t, err)
	assert.Equal(t, models.AffiliationActive, updated.Status)

	byID, err := repo.GetAffiliation(ctx, "aff-1")
	require.NoError(t, err)
	assert.Equal(t, models.AffiliationActive, byID.Status)

	byMembership, err := repo.GetAffiliationByMembership(ctx, "world-1", "char-1")
	require.NoError(t, err)
	assert.Equal(t, models.AffiliationActive, byMembership.Status)
}
