// Package resolver turns an event's raw id, name and parent hint into a
// registered test item.
package resolver

import (
	"strings"

	"gtp/internal/domain"
	"gtp/internal/parser"
	"gtp/internal/registry"
)

// Strategy is a pure lookup. It returns nil when it has no opinion.
type Strategy struct {
	Name   string
	Lookup func(reg *registry.Registry, ev parser.Event) *domain.TestItem
}

// Ordered strategies; the first match wins. ParentHint must stay ahead of
// UniqueLabel so same-named tests in different suites resolve by parent.
var (
	ExactID     = Strategy{Name: "exact-id", Lookup: exactID}
	ParentHint  = Strategy{Name: "parent-hint", Lookup: parentHint}
	UniqueLabel = Strategy{Name: "unique-label", Lookup: uniqueLabel}
	IDSuffix    = Strategy{Name: "id-suffix", Lookup: idSuffix}
)

// DefaultStrategies returns the resolution order used by the engine
func DefaultStrategies() []Strategy {
	return []Strategy{ExactID, ParentHint, UniqueLabel, IDSuffix}
}

// Resolver tries its strategies in order against a registry
type Resolver struct {
	registry   *registry.Registry
	strategies []Strategy
}

// New creates a Resolver using DefaultStrategies
func New(reg *registry.Registry) *Resolver {
	return NewWithStrategies(reg, DefaultStrategies()...)
}

// NewWithStrategies creates a Resolver with a custom strategy order
func NewWithStrategies(reg *registry.Registry, strategies ...Strategy) *Resolver {
	return &Resolver{registry: reg, strategies: strategies}
}

// Resolve returns the item the event refers to, or nil
func (r *Resolver) Resolve(ev parser.Event) *domain.TestItem {
	item, _ := r.ResolveWith(ev)
	return item
}

// ResolveWith also returns the name of the strategy that matched
func (r *Resolver) ResolveWith(ev parser.Event) (*domain.TestItem, string) {
	for _, s := range r.strategies {
		if item := s.Lookup(r.registry, ev); item != nil {
			return item, s.Name
		}
	}
	return nil, ""
}

func exactID(reg *registry.Registry, ev parser.Event) *domain.TestItem {
	if ev.ID == "" {
		return nil
	}
	item, _ := reg.Get(ev.ID)
	return item
}

func parentHint(reg *registry.Registry, ev parser.Event) *domain.TestItem {
	if ev.Parent == "" || ev.Name == "" {
		return nil
	}
	for _, item := range reg.ByLabel(ev.Name) {
		if underParent(item.ID, ev.Parent) {
			return item
		}
	}
	return nil
}

// underParent reports whether id continues parent with a member or iteration segment,
// so com.x.Spec does not claim com.x.SpecOther.m
func underParent(id, parent string) bool {
	if len(id) <= len(parent) || !strings.HasPrefix(id, parent) {
		return false
	}
	next := id[len(parent)]
	return next == '.' || next == '['
}

func uniqueLabel(reg *registry.Registry, ev parser.Event) *domain.TestItem {
	if ev.Name == "" {
		return nil
	}
	matches := reg.ByLabel(ev.Name)
	if len(matches) != 1 {
		return nil
	}
	return matches[0]
}

func idSuffix(reg *registry.Registry, ev parser.Event) *domain.TestItem {
	if ev.Name == "" {
		return nil
	}
	suffix := "." + ev.Name
	for _, item := range reg.All() {
		if strings.HasSuffix(item.ID, suffix) {
			return item
		}
	}
	return nil
}
