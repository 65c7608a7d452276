// Package store abstracts a single-table key-value store. Items are flat
// attribute maps addressed by a partition/sort key pair; derived projections
// are modeled as named secondary indexes over attribute pairs. Two
// implementations exist: MongoStore (networked) and MemoryStore (tests).
package store

import "context"

// Attribute names with key semantics. Every item carries AttrPK/AttrSK; index
// attributes are present only while the item should be visible in that index.
const (
	AttrPK = "pk"
	AttrSK = "sk"

	AttrTimelinePK = "timeline_pk"
	AttrTimelineSK = "timeline_sk"
	AttrOwnerPK    = "owner_pk"
	AttrOwnerSK    = "owner_sk"
	AttrPendingPK  = "pending_pk"
	AttrPendingSK  = "pending_sk"
)

// Secondary index names accepted by Query.
const (
	IndexTimeline = "timeline"
	IndexOwner    = "owner"
	IndexPending  = "pending"
)

// Key addresses one item in a table.
type Key struct {
	PK string
	SK string
}

// Item is a flat attribute map. Values are string or []string only.
type Item map[string]any

// Query describes a partition scan against the base table or a named index.
type Query struct {
	// Index selects a secondary index; empty means the base table (AttrPK).
	Index string
	// Partition is the exact partition key value to match.
	Partition string
	// Descending orders results by the sort attribute, newest-first.
	Descending bool
	// Limit caps the result count; <= 0 means no cap.
	Limit int
}

// Write is one element of an atomic multi-item write: either a Put (full item
// replace) or an Update (set-map applied to the item at Key).
type Write struct {
	Put    Item
	Update *Key
	Set    Item
}

// Store is the primitive storage capability required by the repositories.
// Implementations must offer strongly consistent read-after-write for GetItem
// against the base table key.
type Store interface {
	// GetItem returns the item at key, or ErrItemNotFound.
	GetItem(ctx context.Context, table string, key Key) (Item, error)

	// PutItem writes item (keyed by its AttrPK/AttrSK attributes), replacing
	// any existing item at that key.
	PutItem(ctx context.Context, table string, item Item) error

	// UpdateItem applies set to the item at key. When cond is non-nil, every
	// cond attribute must equal the stored value or ErrConditionFailed is
	// returned and nothing is written. The updated item is returned.
	UpdateItem(ctx context.Context, table string, key Key, set Item, cond Item) (Item, error)

	// Query returns items whose partition attribute equals q.Partition,
	// ordered by the paired sort attribute.
	Query(ctx context.Context, table string, q Query) ([]Item, error)

	// TransactWrite applies all writes atomically: either every put/update is
	// visible to readers or none is.
	TransactWrite(ctx context.Context, table string, writes []Write) error
}

// indexAttrs maps an index name to its partition/sort attribute pair.
func indexAttrs(index string) (pkAttr, skAttr string, ok bool) {
	switch index {
	case "":
		return AttrPK, AttrSK, true
	case IndexTimeline:
		return AttrTimelinePK, AttrTimelineSK, true
	case IndexOwner:
		return AttrOwnerPK, AttrOwnerSK, true
	case IndexPending:
		return AttrPendingPK, AttrPendingSK, true
	default:
		return "", "", false
	}
}

// String reads a string attribute, tolerating absent keys.
func String(item Item, attr string) string {
	if v, ok := item[attr].(string); ok {
		return v
	}
	return ""
}

// StringList reads a string-list attribute. Mongo decodes lists as []any, so
// both shapes are accepted.
func StringList(item Item, attr string) []string {
	switch v := item[attr].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ItemKey extracts the base-table key from an item's attributes.
func ItemKey(item Item) Key {
	return Key{PK: String(item, AttrPK), SK: String(item, AttrSK)}
}
