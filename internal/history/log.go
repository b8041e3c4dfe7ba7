package history

import (
	"iter"
	"slices"
)

// Log is the ordered collection of saved items. Ids are unique. Log is not
// safe for concurrent use.
type Log struct {
	items []Item
}

// NewLog returns a log holding a copy of items. Later duplicates of an id
// replace earlier ones.
func NewLog(items []Item) *Log {
	l := &Log{items: make([]Item, 0, len(items))}
	for _, it := range items {
		l.Add(it)
	}
	return l
}

// Add replaces the item with the same id in place, or appends it.
func (l *Log) Add(it Item) {
	if i := l.index(it.ID); i >= 0 {
		l.items[i] = it
		return
	}
	l.items = append(l.items, it)
}

// Delete removes every item whose id is in ids and returns how many were
// removed. Unknown ids are ignored.
func (l *Log) Delete(ids ...string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	before := len(l.items)
	l.items = slices.DeleteFunc(l.items, func(it Item) bool {
		_, ok := drop[it.ID]
		return ok
	})
	return before - len(l.items)
}

// Merge appends items whose ids are not yet present and returns how many
// were added. Existing items are never overwritten.
func (l *Log) Merge(items []Item) int {
	seen := make(map[string]struct{}, len(l.items)+len(items))
	for _, it := range l.items {
		seen[it.ID] = struct{}{}
	}
	added := 0
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		l.items = append(l.items, it)
		added++
	}
	return added
}

func (l *Log) Get(id string) (Item, bool) {
	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	return Item{}, false
}

// Items returns a copy of the log in order.
func (l *Log) Items() []Item {
	return slices.Clone(l.items)
}

func (l *Log) Len() int { return len(l.items) }

func (l *Log) Clear() { l.items = nil }

// All yields every item in order.
func (l *Log) All() iter.Seq[Item] {
	return l.Filter(func(Item) bool { return true })
}

// Filter yields the items matching pred in order without modifying the log.
func (l *Log) Filter(pred func(Item) bool) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, it := range l.items {
			if pred(it) && !yield(it) {
				return
			}
		}
	}
}

// OfKind yields the items of kind k.
func (l *Log) OfKind(k Kind) iter.Seq[Item] {
	return l.Filter(func(it Item) bool { return it.Kind() == k })
}

func (l *Log) index(id string) int {
	return slices.IndexFunc(l.items, func(it Item) bool { return it.ID == id })
}
