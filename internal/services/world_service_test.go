package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/repository"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// worldFixture wires the membership workflow over the in-memory store with
// world-1 hosted by host-1 and char-1 owned by user-1.
type worldFixture struct {
	service       *WorldService
	characterRepo *repository.CharacterRepository
}

func newWorldFixture(t *testing.T) *worldFixture {
	t.Helper()
	mem := store.NewMemoryStore(testTable)
	worldRepo := repository.NewWorldRepository(mem, testTable)
	affiliationRepo := repository.NewAffiliationRepository(mem, testTable)
	characterRepo := repository.NewCharacterRepository(mem, testTable)

	ctx := context.Background()
	now := models.FormatTime(time.Now())
	_, err := worldRepo.CreateWorld(ctx, &models.World{
		ID: "world-1", HostID: "host-1", Name: "Emberfall", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	_, err = characterRepo.CreateCharacter(ctx, &models.Character{
		ID: "char-1", OwnerID: "user-1", Name: "Maro", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	return &worldFixture{
		service:       NewWorldService(worldRepo, affiliationRepo, characterRepo),
		characterRepo: characterRepo,
	}
}

func TestCreateWorld_RequiresName(t *testing.T) {
	f := newWorldFixture(t)

	_, err := f.service.CreateWorld(context.Background(), "host-1", "   ", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestCreateWorld_ListedByHost(t *testing.T) {
	f := newWorldFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateWorld(ctx, "host-2", "Saltmarsh", "A coastal town.")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	worlds, err := f.service.ListWorldsByHost(ctx, "host-2")
	require.NoError(t, err)
	require.Len(t, worlds, 1)
	assert.Equal(t, "Saltmarsh", worlds[0].Name)
}

func TestRequestJoinWorld_CreatesPendingAffiliation(t *testing.T) {
	f := newWorldFixture(t)
	ctx := context.Background()

	affiliation, err := f.service.RequestJoinWorld(ctx, "user-1", "world-1", "char-1")
	require.NoError(t, err)
	assert.Equal(t, models.AffiliationPending, affiliation.Status)
	assert.Equal(t, "world-1", affiliation.WorldID)
	assert.Equal(t, "char-1", affiliation.CharacterID)
	assert.Equal(t, "user-1", affiliation.OwnerID)
}

func TestRequestJoinWorld_IsIdempotent(t *testing.T) {
	f := newWorldFixture(t)
	ctx := context.Background()

	first, err := f.service.RequestJoinWorld(ctx, "user-1", "world-1", "char-1")
	require.NoError(t, err)

	second, err := f.service.RequestJoinWorld(ctx, "user-1", "world-1", "char-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestRequestJoinWorld_Authorization(t *testing.T) {
	f := newWorldFixture(t)
	ctx := context.Background()

	_, err := f.service.RequestJoinWorld(ctx, "user-2", "world-1", "char-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	_, err = f.service.RequestJoinWorld(ctx, "user-1", "world-missing", "char-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = f.service.RequestJoinWorld(ctx, "user-1", "world-1", "char-missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestApproveAffiliation_HostOnly(t *testing.T) {
	f := newWorldFixture(t)
	ctx := context.Background()

	affiliation, err := f.service.RequestJoinWorld(ctx, "user-1", "world-1", "char-1")
	require.NoError(t, err)

	// The requesting user cannot approve their own membership.
	_, err = f.service.ApproveAffiliation(ctx, "user-1", affiliation.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	approved, err := f.service.ApproveAffiliation(ctx, "host-1", affiliation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AffiliationActive, approved.Status)
}

func TestApproveAffiliation_Missing(t *testing.T) {
	f := newWorldFixture(t)

	_, err := f.service.ApproveAffiliation(context.Background(), "host-1", "aff-missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
