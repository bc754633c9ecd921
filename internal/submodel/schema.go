// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package submodel

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/vk/dynagrid/internal/component"
)

// Bound is the valid range of a parameter.
type Bound string

const (
	BoundFinite      Bound = "finite"
	BoundPositive    Bound = "positive"
	BoundNonNegative Bound = "nonnegative"
	BoundUnit        Bound = "unit"
)

// Check returns a description of the violation, or "" when v is in range.
func (b Bound) Check(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("must be finite, got %v", v)
	}
	switch b {
	case BoundPositive:
		if v <= 0 {
			return fmt.Sprintf("must be > 0, got %v", v)
		}
	case BoundNonNegative:
		if v < 0 {
			return fmt.Sprintf("must be >= 0, got %v", v)
		}
	case BoundUnit:
		if v < 0 || v > 1 {
			return fmt.Sprintf("must be within [0, 1], got %v", v)
		}
	}
	return ""
}

// Field describes one parameter of a variant.
type Field struct {
	// Name is the persisted parameter name (the `cty` tag).
	Name  string
	Bound Bound
	index int
}

// Schema describes one variant of a role.
type Schema struct {
	Role    Role
	Variant string
	Fields  []Field
	// States names the differential states the block contributes, in the
	// order an integrator lays them out.
	States []string
	// Algebraic is the number of algebraic variables the block contributes.
	Algebraic int
	// Limits lists [min, max] parameter pairs that must satisfy min <= max.
	Limits [][2]string

	goType reflect.Type
}

// StateDimension returns the number of differential states.
func (s *Schema) StateDimension() int { return len(s.States) }

// Field returns the field with the given persisted name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var (
	byVariant = map[string]*Schema{}
	byRole    = map[Role][]*Schema{}
)

// register adds a variant to the catalogue. It panics on malformed
// declarations since those are programming errors caught at init.
func register(proto Block, states []string, algebraic int, limits ...[2]string) {
	t := reflect.TypeOf(proto)
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("submodel: variant %s must be a struct value", t))
	}
	variant := proto.Variant()
	if _, exists := byVariant[variant]; exists {
		panic(fmt.Sprintf("submodel: variant %q already registered", variant))
	}

	s := &Schema{
		Role:      proto.Role(),
		Variant:   variant,
		States:    states,
		Algebraic: algebraic,
		Limits:    limits,
		goType:    t,
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := strings.Split(sf.Tag.Get("cty"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if sf.Type.Kind() != reflect.Float64 {
			panic(fmt.Sprintf("submodel: %s.%s must be float64", variant, sf.Name))
		}
		bound := Bound(sf.Tag.Get("bound"))
		if bound == "" {
			bound = BoundFinite
		}
		s.Fields = append(s.Fields, Field{Name: name, Bound: bound, index: i})
	}
	for _, pair := range limits {
		if _, ok := s.Field(pair[0]); !ok {
			panic(fmt.Sprintf("submodel: %s limit references unknown field %q", variant, pair[0]))
		}
		if _, ok := s.Field(pair[1]); !ok {
			panic(fmt.Sprintf("submodel: %s limit references unknown field %q", variant, pair[1]))
		}
	}

	byVariant[variant] = s
	byRole[s.Role] = append(byRole[s.Role], s)
}

// Lookup returns the schema of a variant.
func Lookup(variant string) (*Schema, bool) {
	s, ok := byVariant[variant]
	return s, ok
}

// SchemaOf returns the schema of a block. Every Block implementation is
// registered, so the result is never nil.
func SchemaOf(b Block) *Schema {
	return byVariant[b.Variant()]
}

// Catalogue returns the schemas available for a role, sorted by variant.
func Catalogue(r Role) []*Schema {
	out := append([]*Schema(nil), byRole[r]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Variant < out[j].Variant })
	return out
}

// IsValue reports whether b is a non-nil block held by value. Pointers to
// variants satisfy Block too but are rejected by Validate.
func IsValue(b Block) bool {
	t := reflect.TypeOf(b)
	return t != nil && t.Kind() == reflect.Struct
}

// Values returns the parameters of b keyed by persisted name.
func Values(b Block) map[string]float64 {
	v := reflect.Indirect(reflect.ValueOf(b))
	if !v.IsValid() {
		return nil
	}
	s := SchemaOf(b)
	out := make(map[string]float64, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = v.Field(f.index).Float()
	}
	return out
}

// Validate checks every parameter of b against its schema. Fields are
// checked in declaration order so the first violation is deterministic.
func Validate(b Block) error {
	if !IsValue(b) {
		return &component.Error{
			Err:    component.ErrTypeMismatch,
			Kind:   component.KindDynamicInjection,
			Field:  "block",
			Detail: fmt.Sprintf("blocks are struct values, got %T", b),
		}
	}
	s := SchemaOf(b)
	if s == nil {
		return &component.Error{
			Err:    component.ErrParameterRange,
			Kind:   component.KindDynamicInjection,
			Field:  string(b.Role()) + "/" + b.Variant(),
			Detail: "unregistered variant",
		}
	}
	v := reflect.ValueOf(b)
	for _, f := range s.Fields {
		if msg := f.Bound.Check(v.Field(f.index).Float()); msg != "" {
			return rangeError(s, f.Name, msg)
		}
	}
	values := Values(b)
	for _, pair := range s.Limits {
		lo, hi := values[pair[0]], values[pair[1]]
		if lo > hi {
			return rangeError(s, pair[0], fmt.Sprintf("must not exceed %s (%v > %v)", pair[1], lo, hi))
		}
	}
	return nil
}

// StateDimension returns the number of differential states b contributes.
func StateDimension(b Block) int {
	return SchemaOf(b).StateDimension()
}

// StateNames returns the names of the differential states b contributes.
func StateNames(b Block) []string {
	return append([]string(nil), SchemaOf(b).States...)
}

// AlgebraicCount returns the number of algebraic variables b contributes.
func AlgebraicCount(b Block) int {
	return SchemaOf(b).Algebraic
}

func rangeError(s *Schema, field, detail string) error {
	path := s.Variant
	if field != "" {
		path += "." + field
	}
	return &component.Error{
		Err:    component.ErrParameterRange,
		Kind:   component.KindDynamicInjection,
		Field:  string(s.Role) + "/" + path,
		Detail: detail,
	}
}
