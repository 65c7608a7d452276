package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = "chronicle-test"

func TestMemoryStore_PutAndGet(t *testing.T) {
	s := NewMemoryStore(testTable)
	ctx := context.Background()

	item := Item{
		AttrPK: "ACT#1",
		AttrSK: "INFO",
		"name": "first",
		"tags": []string{"a", "b"},
	}
	require.NoError(t, s.PutItem(ctx, testTable, item))

	got, err := s.GetItem(ctx, testTable, Key{PK: "ACT#1", SK: "INFO"})
	require.NoError(t, err)
	assert.Equal(t, "first", String(got, "name"))
	assert.Equal(t, []string{"a", "b"}, StringList(got, "tags"))

	// Stored items are isolated from caller mutations.
	got["name"] = "mutated"
	again, err := s.GetItem(ctx, testTable, Key{PK: "ACT#1", SK: "INFO"})
	require.NoError(t, err)
	assert.Equal(t, "first", String(again, "name"))
}

func TestMemoryStore_GetMissingItem(t *testing.T) {
	s := NewMemoryStore(testTable)

	_, err := s.GetItem(context.Background(), testTable, Key{PK: "ACT#missing", SK: "INFO"})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMemoryStore_ConditionalUpdate(t *testing.T) {
	s := NewMemoryStore(testTable)
	ctx := context.Background()
	key := Key{PK: "ACT#1", SK: "INFO"}

	require.NoError(t, s.PutItem(ctx, testTable, Item{
		AttrPK:       "ACT#1",
		AttrSK:       "INFO",
		"status":     "PendingMultiSig",
		"signatures": []string{"aff-1"},
	}))

	// Condition matches the stored signature set: the update lands.
	updated, err := s.UpdateItem(ctx, testTable, key,
		Item{"signatures": []string{"aff-1", "aff-2"}},
		Item{"signatures": []string{"aff-1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"aff-1", "aff-2"}, StringList(updated, "signatures"))

	// Stale condition: nothing changes.
	_, err = s.UpdateItem(ctx, testTable, key,
		Item{"signatures": []string{"aff-1", "aff-3"}},
		Item{"signatures": []string{"aff-1"}})
	assert.ErrorIs(t, err, ErrConditionFailed)

	got, err := s.GetItem(ctx, testTable, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"aff-1", "aff-2"}, StringList(got, "signatures"))
}

func TestMemoryStore_UpdateMissingItem(t *testing.T) {
	s := NewMemoryStore(testTable)

	_, err := s.UpdateItem(context.Background(), testTable, Key{PK: "ACT#missing", SK: "INFO"}, Item{"status": "Published"}, nil)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMemoryStore_QueryOrderingAndLimit(t *testing.T) {
	s := NewMemoryStore(testTable)
	ctx := context.Background()

	timestamps := []string{
		"2026-01-01T10:00:00.000000000Z",
		"2026-01-01T11:00:00.000000000Z",
		"2026-01-01T12:00:00.000000000Z",
	}
	for i, ts := range timestamps {
		require.NoError(t, s.PutItem(ctx, testTable, Item{
			AttrPK:         "AFF#1",
			AttrSK:         "ACT#" + ts,
			AttrTimelinePK: "WORLD#w1",
			AttrTimelineSK: "ACT#" + ts,
			"idx":          string(rune('a' + i)),
		}))
	}
	// Item outside the partition is never returned.
	require.NoError(t, s.PutItem(ctx, testTable, Item{
		AttrPK:         "AFF#2",
		AttrSK:         "ACT#2026-01-01T09:00:00.000000000Z",
		AttrTimelinePK: "WORLD#other",
		AttrTimelineSK: "ACT#2026-01-01T09:00:00.000000000Z",
	}))

	items, err := s.Query(ctx, testTable, Query{Index: IndexTimeline, Partition: "WORLD#w1", Descending: true})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c", String(items[0], "idx"))
	assert.Equal(t, "a", String(items[2], "idx"))

	limited, err := s.Query(ctx, testTable, Query{Index: IndexTimeline, Partition: "WORLD#w1", Descending: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", String(limited[0], "idx"))
	assert.Equal(t, "b", String(limited[1], "idx"))
}

func TestMemoryStore_QueryUnknownIndex(t *testing.T) {
	s := NewMemoryStore(testTable)

	_, err := s.Query(context.Background(), testTable, Query{Index: "bogus", Partition: "X"})
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestMemoryStore_IndexRemovalByBlankKeys(t *testing.T) {
	s := NewMemoryStore(testTable)
	ctx := context.Background()
	key := Key{PK: "AFF#1", SK: "ACT#2026-01-01T10:00:00.000000000Z"}

	require.NoError(t, s.PutItem(ctx, testTable, Item{
		AttrPK:         key.PK,
		AttrSK:         key.SK,
		AttrTimelinePK: "WORLD#w1",
		AttrTimelineSK: "ACT#2026-01-01T10:00:00.000000000Z",
	}))

	_, err := s.UpdateItem(ctx, testTable, key, Item{AttrTimelinePK: "", AttrTimelineSK: ""}, nil)
	require.NoError(t, err)

	items, err := s.Query(ctx, testTable, Query{Index: IndexTimeline, Partition: "WORLD#w1"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryStore_TransactWriteUpdateAfterPutInSameBatch(t *testing.T) {
	s := NewMemoryStore(testTable)
	ctx := context.Background()
	key := Key{PK: "ACT#1", SK: "INFO"}

	err := s.TransactWrite(ctx, testTable, []Write{
		{Put: Item{AttrPK: key.PK, AttrSK: key.SK, "status": "PendingMultiSig"}},
		{Update: &key, Set: Item{"status": "Published"}},
	})
	require.NoError(t, err)

	got, err := s.GetItem(ctx, testTable, key)
	require.NoError(t, err)
	assert.Equal(t, "Published", String(got, "status"))
}

func TestMemoryStore_TransactWriteAtomicity(t *testing.T) {
	s := NewMemoryStore(testTable)
	ctx := context.Background()

	// A batch touching a missing update target applies nothing.
	missing := Key{PK: "ACT#missing", SK: "INFO"}
	err := s.TransactWrite(ctx, testTable, []Write{
		{Put: Item{AttrPK: "ACT#1", AttrSK: "INFO", "status": "Published"}},
		{Update: &missing, Set: Item{"status": "Published"}},
	})
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = s.GetItem(ctx, testTable, Key{PK: "ACT#1", SK: "INFO"})
	assert.ErrorIs(t, err, ErrItemNotFound)

	// A valid batch applies every write.
	require.NoError(t, s.TransactWrite(ctx, testTable, []Write{
		{Put: Item{AttrPK: "ACT#1", AttrSK: "INFO", "status": "Published"}},
		{Put: Item{AttrPK: "AFF#1", AttrSK: "ACT#ts", "status": "Published"}},
	}))

	target := Key{PK: "ACT#1", SK: "INFO"}
	require.NoError(t, s.TransactWrite(ctx, testTable, []Write{
		{Update: &target, Set: Item{"status": "Redacted"}},
	}))

	got, err := s.GetItem(ctx, testTable, target)
	require.NoError(t, err)
	assert.Equal(t, "Redacted", String(got, "status"))
}
