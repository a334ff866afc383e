// Package selection holds the user-curated set of products a routine is
// generated for. The set is session-local and never persisted.
package selection

import (
	"routine-builder/internal/domain"
)

// Store is an ordered set of selected products keyed by product id.
// Membership is toggled, never duplicated; iteration order is first-add
// order. Store is not safe for concurrent use; a session owns exactly one.
type Store struct {
	index map[string]int
	items []domain.SelectedProduct
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Toggle flips membership for the given product id. The name is captured at
// toggle time. Returns true when the product was added, false when removed.
func (s *Store) Toggle(id, name string) bool {
	if _, ok := s.index[id]; ok {
		s.Remove(id)
		return false
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, domain.SelectedProduct{ID: id, Name: name})
	return true
}

// Remove drops the product by identity without reordering the remaining
// entries. Removing a non-member is a no-op.
func (s *Store) Remove(id string) {
	pos, ok := s.index[id]
	if !ok {
		return
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}
}

// Contains reports membership for the given product id.
func (s *Store) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Selected returns the current selection in insertion order. The returned
// slice is a copy; mutating it does not affect the store.
func (s *Store) Selected() []domain.SelectedProduct {
	out := make([]domain.SelectedProduct, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	return len(s.items)
}
