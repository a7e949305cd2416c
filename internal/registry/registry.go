// Package registry maps qualified test ids to test item handles for one run.
package registry

import "gtp/internal/domain"

// Registry owns the id to item mapping of a single run. It is not safe for
// concurrent use; the run's event consumer is its only writer.
type Registry struct {
	items   map[string]*domain.TestItem
	order   []string
	byLabel map[string][]string
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		items:   make(map[string]*domain.TestItem),
		byLabel: make(map[string][]string),
	}
}

// Register adds item under id, replacing any item already registered under it
func (r *Registry) Register(id string, item *domain.TestItem) {
	if prev, ok := r.items[id]; ok {
		r.dropLabel(prev.Label, id)
	} else {
		r.order = append(r.order, id)
	}
	r.items[id] = item
	r.byLabel[item.Label] = append(r.byLabel[item.Label], id)
}

// RegisterTree registers every item in the given trees, depth first
func (r *Registry) RegisterTree(roots ...*domain.TestItem) {
	for _, root := range roots {
		r.Register(root.ID, root)
		r.RegisterTree(root.Children()...)
	}
}

// Get returns the item registered under id
func (r *Registry) Get(id string) (*domain.TestItem, bool) {
	item, ok := r.items[id]
	return item, ok
}

// ByLabel returns the items whose label equals label, in registration order
func (r *Registry) ByLabel(label string) []*domain.TestItem {
	ids := r.byLabel[label]
	out := make([]*domain.TestItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.items[id])
	}
	return out
}

// All returns every registered item in registration order
func (r *Registry) All() []*domain.TestItem {
	out := make([]*domain.TestItem, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Len returns the number of registered items
func (r *Registry) Len() int {
	return len(r.items)
}

// Clear releases every item reference
func (r *Registry) Clear() {
	r.items = make(map[string]*domain.TestItem)
	r.byLabel = make(map[string][]string)
	r.order = nil
}

func (r *Registry) dropLabel(label, id string) {
	ids := r.byLabel[label]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.byLabel, label)
		return
	}
	r.byLabel[label] = ids
}
