package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/models"
	"github.com/Dias221467/World_Chronicle/internal/store"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = "chronicle-test"

func TestMain(m *testing.M) {
	logger.InitLogger()
	m.Run()
}

func newActivityRepo() (*ActivityRepository, *store.MemoryStore) {
	mem := store.NewMemoryStore(testTable)
	return NewActivityRepository(mem, testTable), mem
}

func soloActivity(id, createdAt string) *models.Activity {
	return &models.Activity{
		ID:                 id,
		AffiliationID:      "aff-1",
		WorldID:            "world-1",
		OwnerID:            "user-1",
		Content:            "The caravan reaches the gate.",
		Status:             models.ActivityPublished,
		CreatedAt:          createdAt,
		CoCreatorIDs:       []string{},
		RequiredSignatures: []string{"aff-1"},
		Signatures:         []string{"aff-1"},
	}
}

func multiSigActivity(id, createdAt, expiresAt string) *models.Activity {
	a := soloActivity(id, createdAt)
	a.Status = models.ActivityPendingMultiSig
	a.ExpiresAt = expiresAt
	a.CoCreatorIDs = []string{"aff-2"}
	a.RequiredSignatures = []string{"aff-1", "aff-2"}
	return a
}

func TestCreateActivity_PublishedVisibleInTimeline(t *testing.T) {
	repo, _ := newActivityRepo()
	ctx := context.Background()
	createdAt := models.FormatTime(time.Now())

	_, err := repo.CreateActivity(ctx, soloActivity("act-1", createdAt), true)
	require.NoError(t, err)

	got, err := repo.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, models.ActivityPublished, got.Status)
	assert.Equal(t, []string{"aff-1"}, got.Signatures)

	timeline, err := repo.ListWorldTimeline(ctx, "world-1", 0)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, "act-1", timeline[0].ID)
}

func TestCreateActivity_PendingHiddenFromTimeline(t *testing.T) {
	repo, _ := newActivityRepo()
	ctx := context.Background()
	now := time.Now()

	activity := multiSigActivity("act-1", models.FormatTime(now), models.FormatTime(now.Add(24*time.Hour)))
	_, err := repo.CreateActivity(ctx, activity, false)
	require.NoError(t, err)

	timeline, err := repo.ListWorldTimeline(ctx, "world-1", 0)
	require.NoError(t, err)
	assert.Empty(t, timeline)

	// Pending activities are discoverable by expiry for the sweeper.
	expired, err := repo.ListExpiredPending(ctx, now.Add(48*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "act-1", expired[0].ID)
}

func TestUpdateActivitySignatures_ConditionedOnReadSet(t *testing.T) {
	repo, _ := newActivityRepo()
	ctx := context.Background()
	now := time.Now()

	activity := multiSigActivity("act-1", models.FormatTime(now), models.FormatTime(now.Add(24*time.Hour)))
	_, err := repo.CreateActivity(ctx, activity, false)
	require.NoError(t, err)

	read, err := repo.GetActivity(ctx, "act-1")
	require.NoError(t, err)

	updated, err := repo.UpdateActivitySignatures(ctx, read, []string{"aff-1", "aff-2"}, models.ActivityPublished)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityPublished, updated.Status)
	assert.Equal(t, []string{"aff-1", "aff-2"}, updated.Signatures)

	// The same stale snapshot no longer matches the stored signature set.
	_, err = repo.UpdateActivitySignatures(ctx, read, []string{"aff-1", "aff-2"}, models.ActivityPublished)
	assert.ErrorIs(t, err, store.ErrConditionFailed)
}

func TestPublishActivity_InstallsTimelineRow(t *testing.T) {
	repo, _ := newActivityRepo()
	ctx := context.Background()
	now := time.Now()

	activity := multiSigActivity("act-1", models.FormatTime(now), models.FormatTime(now.Add(24*time.Hour)))
	_, err := repo.CreateActivity(ctx, activity, false)
	require.NoError(t, err)

	require.NoError(t, repo.PublishActivity(ctx, activity))

	timeline, err := repo.ListWorldTimeline(ctx, "world-1", 0)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, models.ActivityPublished, timeline[0].Status)
}

func TestUpdateActivityStatus_HidesFromTimeline(t *testing.T) {
	repo, _ := newActivityRepo()
	ctx := context.Background()
	createdAt := models.FormatTime(time.Now())

	_, err := repo.CreateActivity(ctx, soloActivity("act-1", createdAt), true)
	require.NoError(t, err)

	activity, err := repo.GetActivity(ctx, "act-1")
	require.NoError(t, err)

	updated, err := repo.UpdateActivityStatus(ctx, activity, models.ActivityRedacted, true)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityRedacted, updated.Status)

	timeline, err := repo.ListWorldTimeline(ctx, "world-1", 0)
	require.NoError(t, err)
	assert.Empty(t, timeline)
}

func TestListWorldTimeline_NewestFirst(t *testing.T) {
	repo, _ := newActivityRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"act-1", "act-2", "act-3"} {
		activity := soloActivity(id, models.FormatTime(base.Add(time.Duration(i)*time.Minute)))
		_, err := repo.CreateActivity(ctx, activity, true)
		require.NoError(t, err)
	}

	timeline, err := repo.ListWorldTimeline(ctx, "world-1", 0)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, "act-3", timeline[0].ID)
	assert.Equal(t, "act-2", timeline[1].ID)
	assert.Equal(t, "act-1", timeline[2].ID)
}

func TestListExpiredPending_CutoffIsStrict(t *testing.T) {
	repo, _ := newActivityRepo()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	past := multiSigActivity("act-past", models.FormatTime(now.Add(-25*time.Hour)), models.FormatTime(now.Add(-time.Hour)))
	future := multiSigActivity("act-future", models.FormatTime(now), models.FormatTime(now.Add(time.Hour)))
	future.AffiliationID = "aff-9"
	_, err := repo.CreateActivity(ctx, past, false)
	require.NoError(t, err)
	_, err = repo.CreateActivity(ctx, future, false)
	require.NoError(t, err)

	expired, err := repo.ListExpiredPending(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "act-past", expired[0].ID)
}
