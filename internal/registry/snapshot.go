// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"iter"

	"github.com/vk/dynagrid/internal/component"
)

// Snapshot is a frozen copy of a registry. It is safe for concurrent use and
// never changes after creation.
type Snapshot struct {
	order []string
	items map[string]component.Component
}

// Get returns a clone of the named component if it matches kind.
func (s *Snapshot) Get(kind component.Kind, name string) (component.Component, error) {
	c, ok := s.items[name]
	if !ok || !kind.Matches(c.Kind()) {
		return nil, notFound(kind, name)
	}
	return c.Clone(), nil
}

// Iterate yields clones of the components of kind accepted by pred, in
// insertion order.
func (s *Snapshot) Iterate(kind component.Kind, pred Predicate) iter.Seq[component.Component] {
	return func(yield func(component.Component) bool) {
		for _, name := range s.order {
			c := s.items[name]
			if !kind.Matches(c.Kind()) {
				continue
			}
			c = c.Clone()
			if pred != nil && !pred(c) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of components in the snapshot.
func (s *Snapshot) Len() int { return len(s.order) }

// Names returns the component names in insertion order.
func (s *Snapshot) Names() []string { return append([]string(nil), s.order...) }
