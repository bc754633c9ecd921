// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/ctxlog"
)

// Tx is a transaction in progress. It is only valid inside the function
// passed to Registry.Update.
type Tx struct {
	st   *state
	ctx  context.Context
	undo []func()
	done bool
}

func (tx *Tx) checkOpen() {
	if tx.done {
		panic("registry: transaction used after Update returned")
	}
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

// Get returns a clone of the named component as seen by the transaction.
func (tx *Tx) Get(kind component.Kind, name string) (component.Component, error) {
	tx.checkOpen()
	return tx.st.get(kind, name)
}

// Holder returns the current owner of an exclusive reference slot.
func (tx *Tx) Holder(field, target string) (string, bool) {
	tx.checkOpen()
	name, ok := tx.st.exclusive[slot{field, target}]
	return name, ok
}

// Add validates c, resolves its references and appends a clone of it. A nil
// UUID is replaced by the one derived from kind and name.
func (tx *Tx) Add(c component.Component) error {
	tx.checkOpen()
	stored, err := tx.prepare(c)
	if err != nil {
		return err
	}
	name := stored.Meta().Name
	if _, exists := tx.st.items[name]; exists {
		return duplicate(stored)
	}
	if err := tx.resolve(stored); err != nil {
		return err
	}
	tx.insert(stored, len(tx.st.order))
	tx.link(stored)
	ctxlog.FromContext(tx.ctx).Debug("Component added", "kind", stored.Kind(), "variant", stored.Variant(), "name", name)
	return nil
}

// Remove deletes the named component. It fails while any other component
// still references it.
func (tx *Tx) Remove(name string) error {
	tx.checkOpen()
	c, ok := tx.st.items[name]
	if !ok {
		return notFound(component.KindAny, name)
	}
	if holders := tx.st.referrers(name); len(holders) > 0 {
		return &component.Error{
			Err:       component.ErrReferentialIntegrity,
			Kind:      c.Kind(),
			Component: name,
			Detail:    fmt.Sprintf("still referenced by %q", holders),
		}
	}
	tx.unlink(c)
	tx.delete(name)
	ctxlog.FromContext(tx.ctx).Debug("Component removed", "kind", c.Kind(), "name", name)
	return nil
}

// Replace swaps the stored component of the same name and kind for c,
// keeping its position. References held by c are resolved anew and every
// component referencing it must still accept the new concrete type.
func (tx *Tx) Replace(c component.Component) error {
	tx.checkOpen()
	stored, err := tx.prepare(c)
	if err != nil {
		return err
	}
	name := stored.Meta().Name
	old, ok := tx.st.items[name]
	if !ok {
		return notFound(stored.Kind(), name)
	}
	if old.Kind() != stored.Kind() {
		return &component.Error{
			Err:       component.ErrTypeMismatch,
			Kind:      stored.Kind(),
			Component: name,
			Detail:    fmt.Sprintf("cannot replace %s", component.Label(old)),
		}
	}

	tx.unlink(old)
	if err := tx.resolve(stored); err != nil {
		return err
	}
	tx.set(name, stored)
	tx.link(stored)
	if err := tx.recheckReferrers(stored); err != nil {
		return err
	}
	ctxlog.FromContext(tx.ctx).Debug("Component replaced", "kind", stored.Kind(), "variant", stored.Variant(), "name", name)
	return nil
}

func (tx *Tx) load(comps []component.Component) error {
	stored := make([]component.Component, 0, len(comps))
	seen := make(map[string]bool, len(comps))
	for _, c := range comps {
		s, err := tx.prepare(c)
		if err != nil {
			return err
		}
		name := s.Meta().Name
		if _, exists := tx.st.items[name]; exists || seen[name] {
			return duplicate(s)
		}
		seen[name] = true
		stored = append(stored, s)
	}
	for _, s := range stored {
		tx.insert(s, len(tx.st.order))
	}
	for _, s := range stored {
		if err := tx.resolve(s); err != nil {
			return err
		}
		tx.link(s)
	}
	ctxlog.FromContext(tx.ctx).Debug("Components loaded", "count", len(stored))
	return nil
}

// prepare validates c and returns the clone that will be stored.
func (tx *Tx) prepare(c component.Component) (component.Component, error) {
	if c == nil {
		return nil, &component.Error{Err: component.ErrInvalidReference, Detail: "nil component"}
	}
	if !c.Kind().Valid() {
		return nil, &component.Error{
			Err:       component.ErrTypeMismatch,
			Kind:      c.Kind(),
			Component: c.Meta().Name,
			Detail:    fmt.Sprintf("unknown component kind %q", c.Kind()),
		}
	}
	if err := component.ValidateBase(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, component.WithComponent(err, c.Kind(), c.Meta().Name)
	}
	stored := c.Clone()
	if meta := stored.Meta(); meta.UUID == uuid.Nil {
		meta.UUID = component.DeriveUUID(stored.Kind(), meta.Name)
	}
	return stored, nil
}

// resolve checks every reference of c against the current state.
func (tx *Tx) resolve(c component.Component) error {
	name := c.Meta().Name
	checker, _ := c.(component.ReferenceChecker)
	for _, ref := range c.References() {
		if ref.Name == "" {
			continue
		}
		target, ok := tx.st.items[ref.Name]
		if !ok || ref.Name == name {
			return &component.Error{
				Err:       component.ErrInvalidReference,
				Kind:      c.Kind(),
				Component: name,
				Field:     ref.Field,
				Detail:    fmt.Sprintf("%s %q does not exist", ref.Kind, ref.Name),
			}
		}
		if !ref.Kind.Matches(target.Kind()) {
			return &component.Error{
				Err:       component.ErrInvalidReference,
				Kind:      c.Kind(),
				Component: name,
				Field:     ref.Field,
				Detail:    fmt.Sprintf("%s is not a %s", component.Label(target), ref.Kind),
			}
		}
		if checker != nil {
			if err := checker.CheckReference(ref, target); err != nil {
				return component.WithComponent(err, c.Kind(), name)
			}
		}
		if ref.Exclusive {
			if holder, taken := tx.st.exclusive[slot{ref.Field, ref.Name}]; taken && holder != name {
				return &component.Error{
					Err:       component.ErrAlreadyAttached,
					Kind:      c.Kind(),
					Component: name,
					Field:     ref.Field,
					Detail:    fmt.Sprintf("%s already has %q attached", component.Label(target), holder),
				}
			}
		}
	}
	return nil
}

// recheckReferrers runs the type checks of every component referencing
// target against its current value.
func (tx *Tx) recheckReferrers(target component.Component) error {
	name := target.Meta().Name
	for _, holder := range tx.st.referrers(name) {
		c := tx.st.items[holder]
		checker, ok := c.(component.ReferenceChecker)
		if !ok {
			continue
		}
		for _, ref := range c.References() {
			if ref.Name != name {
				continue
			}
			if err := checker.CheckReference(ref, target); err != nil {
				return component.WithComponent(err, c.Kind(), holder)
			}
		}
	}
	return nil
}

func (tx *Tx) insert(c component.Component, at int) {
	name := c.Meta().Name
	tx.st.order = slices.Insert(tx.st.order, at, name)
	tx.st.items[name] = c
	tx.undo = append(tx.undo, func() {
		tx.st.order = slices.Delete(tx.st.order, at, at+1)
		delete(tx.st.items, name)
	})
}

func (tx *Tx) delete(name string) {
	at := slices.Index(tx.st.order, name)
	old := tx.st.items[name]
	tx.st.order = slices.Delete(tx.st.order, at, at+1)
	delete(tx.st.items, name)
	tx.undo = append(tx.undo, func() {
		tx.st.order = slices.Insert(tx.st.order, at, name)
		tx.st.items[name] = old
	})
}

func (tx *Tx) set(name string, c component.Component) {
	old := tx.st.items[name]
	tx.st.items[name] = c
	tx.undo = append(tx.undo, func() { tx.st.items[name] = old })
}

func (tx *Tx) link(c component.Component) {
	name := c.Meta().Name
	for _, ref := range c.References() {
		if ref.Name == "" {
			continue
		}
		holders := tx.st.inbound[ref.Name]
		if holders == nil {
			holders = make(map[string]struct{})
			tx.st.inbound[ref.Name] = holders
		}
		_, had := holders[name]
		holders[name] = struct{}{}
		target := ref.Name
		if !had {
			tx.undo = append(tx.undo, func() { tx.dropInbound(target, name) })
		}
		if ref.Exclusive {
			s := slot{ref.Field, ref.Name}
			tx.st.exclusive[s] = name
			tx.undo = append(tx.undo, func() { delete(tx.st.exclusive, s) })
		}
	}
}

func (tx *Tx) unlink(c component.Component) {
	name := c.Meta().Name
	for _, ref := range c.References() {
		if ref.Name == "" {
			continue
		}
		target := ref.Name
		if _, ok := tx.st.inbound[target][name]; ok {
			tx.dropInbound(target, name)
			tx.undo = append(tx.undo, func() {
				if tx.st.inbound[target] == nil {
					tx.st.inbound[target] = make(map[string]struct{})
				}
				tx.st.inbound[target][name] = struct{}{}
			})
		}
		if ref.Exclusive {
			s := slot{ref.Field, ref.Name}
			if holder, ok := tx.st.exclusive[s]; ok && holder == name {
				delete(tx.st.exclusive, s)
				tx.undo = append(tx.undo, func() { tx.st.exclusive[s] = name })
			}
		}
	}
}

func (tx *Tx) dropInbound(target, holder string) {
	delete(tx.st.inbound[target], holder)
	if len(tx.st.inbound[target]) == 0 {
		delete(tx.st.inbound, target)
	}
}

func duplicate(c component.Component) error {
	return &component.Error{
		Err:       component.ErrDuplicateName,
		Kind:      c.Kind(),
		Component: c.Meta().Name,
		Detail:    "name is already registered",
	}
}
