// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package component

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Kind is the discriminating tag of a component.
type Kind string

const (
	// KindAny matches every kind in registry queries. It is never the kind of
	// a stored component.
	KindAny              Kind = ""
	KindBus              Kind = "Bus"
	KindBranch           Kind = "Branch"
	KindStaticInjection  Kind = "StaticInjection"
	KindDynamicInjection Kind = "DynamicInjection"
)

// Kinds lists the storable kinds in dependency order: a component may only
// reference kinds that appear before its own.
func Kinds() []Kind {
	return []Kind{KindBus, KindBranch, KindStaticInjection, KindDynamicInjection}
}

// Valid reports whether k is one of the storable kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBus, KindBranch, KindStaticInjection, KindDynamicInjection:
		return true
	}
	return false
}

// Matches reports whether a component of kind other satisfies a query for k.
func (k Kind) Matches(other Kind) bool {
	return k == KindAny || k == other
}

func (k Kind) String() string {
	if k == KindAny {
		return "any"
	}
	return string(k)
}

// namespace seeds the deterministic component UUIDs.
var namespace = uuid.MustParse("8f3c6f2e-4f59-4a8b-9d7e-1c2b3a4d5e6f")

// DeriveUUID returns the stable UUID for a component of the given kind and
// name. Identical inputs always produce the same identifier.
func DeriveUUID(kind Kind, name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(string(kind)+"/"+name))
}

// Base is the identity record embedded by every concrete component.
type Base struct {
	Name      string
	Available bool
	UUID      uuid.UUID
}

// NewBase returns an available Base with the UUID derived from kind and name.
func NewBase(kind Kind, name string) Base {
	return Base{Name: name, Available: true, UUID: DeriveUUID(kind, name)}
}

// Meta gives access to the embedded identity record.
func (b *Base) Meta() *Base { return b }

// Reference is a by-name link from one component to another.
type Reference struct {
	// Field is the name of the referencing field, e.g. "from" or "bus".
	Field string
	// Kind is the kind the target must have.
	Kind Kind
	// Name is the target component's name.
	Name string
	// Exclusive references allow at most one holder per target and field.
	Exclusive bool
}

// Component is implemented by every entity a registry can hold.
type Component interface {
	Meta() *Base
	Kind() Kind
	Variant() string
	// References lists every outgoing link. An empty Name means the link is
	// unset and is skipped by resolution.
	References() []Reference
	// Validate checks the component's own parameters without looking at any
	// other component.
	Validate() error
	// Clone returns a deep copy that shares no mutable state with the
	// receiver.
	Clone() Component
}

// ReferenceChecker is implemented by components that constrain the concrete
// type of a reference target beyond its Kind.
type ReferenceChecker interface {
	CheckReference(ref Reference, target Component) error
}

// Name is shorthand for c.Meta().Name.
func Name(c Component) string {
	return c.Meta().Name
}

// Label formats a component as "Kind(Variant) name" for messages.
func Label(c Component) string {
	return fmt.Sprintf("%s(%s) %q", c.Kind(), c.Variant(), c.Meta().Name)
}

// ValidateBase checks the identity fields shared by all components.
func ValidateBase(c Component) error {
	if c.Meta().Name == "" {
		return &Error{Err: ErrParameterRange, Kind: c.Kind(), Field: "name", Detail: "name must not be empty"}
	}
	return nil
}

// Finite returns a ParameterRangeError unless v is a finite number.
func Finite(c Component, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return RangeError(c, field, "must be finite, got %v", v)
	}
	return nil
}

// Positive returns a ParameterRangeError unless v is finite and > 0.
func Positive(c Component, field string, v float64) error {
	if err := Finite(c, field, v); err != nil {
		return err
	}
	if v <= 0 {
		return RangeError(c, field, "must be > 0, got %v", v)
	}
	return nil
}

// NonNegative returns a ParameterRangeError unless v is finite and >= 0.
func NonNegative(c Component, field string, v float64) error {
	if err := Finite(c, field, v); err != nil {
		return err
	}
	if v < 0 {
		return RangeError(c, field, "must be >= 0, got %v", v)
	}
	return nil
}

// RangeError builds a ParameterRangeError for field of component c.
func RangeError(c Component, field, format string, args ...any) error {
	return &Error{
		Err:       ErrParameterRange,
		Kind:      c.Kind(),
		Component: c.Meta().Name,
		Field:     field,
		Detail:    fmt.Sprintf(format, args...),
	}
}
