// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/ctxlog"
)

// Predicate filters components during iteration. A nil Predicate matches
// everything.
type Predicate func(component.Component) bool

// View is the read-only surface shared by the live registry and its
// snapshots.
type View interface {
	// Get returns a clone of the named component. component.KindAny matches
	// every kind.
	Get(kind component.Kind, name string) (component.Component, error)
	// Iterate yields clones of the matching components in insertion order.
	Iterate(kind component.Kind, pred Predicate) iter.Seq[component.Component]
	Len() int
	Names() []string
}

// slot identifies an exclusive reference target.
type slot struct {
	field  string
	target string
}

type state struct {
	order []string
	items map[string]component.Component
	// inbound maps a target name to the set of names referencing it.
	inbound map[string]map[string]struct{}
	// exclusive maps a reference slot to its single holder.
	exclusive map[slot]string
}

// Registry implements View over mutable state guarded by a RWMutex.
type Registry struct {
	mu sync.RWMutex
	st state
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{st: state{
		items:     make(map[string]component.Component),
		inbound:   make(map[string]map[string]struct{}),
		exclusive: make(map[slot]string),
	}}
}

// Update runs fn as a single transaction under the write lock. If fn returns
// an error every step it applied is undone and the error is returned.
func (r *Registry) Update(ctx context.Context, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &Tx{st: &r.st, ctx: ctx}
	err := fn(tx)
	tx.done = true
	if err != nil {
		tx.rollback()
		ctxlog.FromContext(ctx).Debug("Registry transaction rolled back", "steps", len(tx.undo), "error", err)
		return err
	}
	return nil
}

// Add registers c. See Tx.Add.
func (r *Registry) Add(ctx context.Context, c component.Component) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.Add(c) })
}

// Remove deletes the named component. See Tx.Remove.
func (r *Registry) Remove(ctx context.Context, name string) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.Remove(name) })
}

// Replace swaps the named component for c. See Tx.Replace.
func (r *Registry) Replace(ctx context.Context, c component.Component) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.Replace(c) })
}

// Load registers comps as one transaction. Unlike a sequence of Add calls,
// references may point forward within comps: names are inserted in the given
// order first and references are resolved afterwards, in the same order.
func (r *Registry) Load(ctx context.Context, comps []component.Component) error {
	return r.Update(ctx, func(tx *Tx) error { return tx.load(comps) })
}

// Get returns a clone of the named component if it matches kind.
func (r *Registry) Get(kind component.Kind, name string) (component.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.get(kind, name)
}

// Iterate returns a restartable sequence. Each range takes its own snapshot
// under the read lock, so mutations made while ranging are not observed.
func (r *Registry) Iterate(kind component.Kind, pred Predicate) iter.Seq[component.Component] {
	return func(yield func(component.Component) bool) {
		r.mu.RLock()
		matched := r.st.collect(kind)
		r.mu.RUnlock()
		for _, c := range matched {
			if pred != nil && !pred(c) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.st.order)
}

// Names returns every registered name in insertion order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.st.order...)
}

// Holder returns the component holding the exclusive reference field on
// target.
func (r *Registry) Holder(field, target string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.st.exclusive[slot{field, target}]
	return name, ok
}

// Referrers returns the names of the components referencing target, in
// insertion order.
func (r *Registry) Referrers(target string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.referrers(target)
}

// Snapshot returns an immutable copy of the current contents.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := &Snapshot{
		order: append([]string(nil), r.st.order...),
		items: make(map[string]component.Component, len(r.st.items)),
	}
	for name, c := range r.st.items {
		s.items[name] = c.Clone()
	}
	return s
}

// Lookup fetches the named component from v and asserts its concrete type.
func Lookup[T component.Component](v View, name string) (T, error) {
	var zero T
	c, err := v.Get(component.KindAny, name)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, &component.Error{
			Err:       component.ErrTypeMismatch,
			Kind:      c.Kind(),
			Component: name,
			Detail:    fmt.Sprintf("%s is not a %T", component.Label(c), zero),
		}
	}
	return t, nil
}

func (s *state) get(kind component.Kind, name string) (component.Component, error) {
	c, ok := s.items[name]
	if !ok || !kind.Matches(c.Kind()) {
		return nil, notFound(kind, name)
	}
	return c.Clone(), nil
}

func (s *state) collect(kind component.Kind) []component.Component {
	out := make([]component.Component, 0, len(s.order))
	for _, name := range s.order {
		if c := s.items[name]; kind.Matches(c.Kind()) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (s *state) referrers(target string) []string {
	holders := s.inbound[target]
	if len(holders) == 0 {
		return nil
	}
	out := make([]string, 0, len(holders))
	for _, name := range s.order {
		if _, ok := holders[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func notFound(kind component.Kind, name string) error {
	return &component.Error{
		Err:       component.ErrNotFound,
		Kind:      kind,
		Component: name,
		Detail:    fmt.Sprintf("no %s component named %q", kind, name),
	}
}
