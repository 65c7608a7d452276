package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a deterministic in-process Store used by tests. It emulates
// conditional updates and index ordering faithfully so repository and service
// tests exercise the same code paths as the networked store.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]map[Key]Item
}

// NewMemoryStore creates an empty MemoryStore with the given tables.
func NewMemoryStore(tables ...string) *MemoryStore {
	s := &MemoryStore{tables: make(map[string]map[Key]Item)}
	for _, t := range tables {
		s.tables[t] = make(map[Key]Item)
	}
	return s
}

func (s *MemoryStore) table(name string) map[Key]Item {
	t, ok := s.tables[name]
	if !ok {
		t = make(map[Key]Item)
		s.tables[name] = t
	}
	return t
}

func (s *MemoryStore) GetItem(ctx context.Context, table string, key Key) (Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.table(table)[key]
	if !ok {
		return nil, ErrItemNotFound
	}
	return copyItem(item), nil
}

func (s *MemoryStore) PutItem(ctx context.Context, table string, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table(table)[ItemKey(item)] = copyItem(item)
	return nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, table string, key Key, set Item, cond Item) (Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateLocked(table, key, set, cond)
}

func (s *MemoryStore) updateLocked(table string, key Key, set Item, cond Item) (Item, error) {
	t := s.table(table)
	item, ok := t[key]
	if !ok {
		return nil, ErrItemNotFound
	}
	if cond != nil && !matches(item, cond) {
		return nil, ErrConditionFailed
	}

	updated := copyItem(item)
	for attr, value := range copyItem(set) {
		updated[attr] = value
	}
	t[key] = updated
	return copyItem(updated), nil
}

func (s *MemoryStore) Query(ctx context.Context, table string, q Query) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkAttr, skAttr, ok := indexAttrs(q.Index)
	if !ok {
		return nil, ErrUnknownIndex
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var items []Item
	for _, item := range s.table(table) {
		if String(item, pkAttr) == q.Partition {
			items = append(items, copyItem(item))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := String(items[i], skAttr), String(items[j], skAttr)
		if q.Descending {
			return a > b
		}
		return a < b
	})

	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

// TransactWrite stages every write against an overlay and commits only when
// the whole batch validates, so a failed batch leaves the table untouched. An
// Update may target an item created by an earlier Put in the same batch.
func (s *MemoryStore) TransactWrite(ctx context.Context, table string, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(table)
	staged := make(map[Key]Item, len(writes))
	for _, w := range writes {
		if w.Put != nil {
			staged[ItemKey(w.Put)] = copyItem(w.Put)
			continue
		}
		if w.Update != nil {
			base, ok := staged[*w.Update]
			if !ok {
				existing, exists := t[*w.Update]
				if !exists {
					return ErrItemNotFound
				}
				base = copyItem(existing)
			}
			for attr, value := range copyItem(w.Set) {
				base[attr] = value
			}
			staged[*w.Update] = base
		}
	}

	for key, item := range staged {
		t[key] = item
	}
	return nil
}

func matches(item Item, cond Item) bool {
	for attr, want := range cond {
		switch want := want.(type) {
		case string:
			if String(item, attr) != want {
				return false
			}
		case []string:
			got := StringList(item, attr)
			if len(got) != len(want) {
				return false
			}
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

func copyItem(item Item) Item {
	out := make(Item, len(item))
	for attr, value := range item {
		switch v := value.(type) {
		case []string:
			list := make([]string, len(v))
			copy(list, v)
			out[attr] = list
		case []any:
			out[attr] = StringList(item, attr)
		default:
			out[attr] = v
		}
	}
	return out
}
