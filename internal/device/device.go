// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package device composes sub-model blocks into composite dynamic devices.
//
// A DynamicInjection holds exactly one block per role required by its kind,
// stored in role-declaration order, and a by-name back-reference to the
// static injection it augments. Values are immutable once composed: every
// change produces a new device through WithBlock or WithStatic.
package device

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/submodel"
	"github.com/vk/dynagrid/internal/topology"
)

// Kind is the variant of a dynamic device.
type Kind string

const (
	Generator Kind = "DynamicGenerator"
	Inverter  Kind = "DynamicInverter"
)

var requiredRoles = map[Kind][]submodel.Role{
	Generator: {submodel.Machine, submodel.Shaft, submodel.AVR, submodel.Governor, submodel.PSS},
	Inverter: {
		submodel.Converter, submodel.OuterControl, submodel.InnerControl,
		submodel.DCSource, submodel.FrequencyEstimator, submodel.Filter,
	},
}

// Kinds returns the device kinds in a stable order.
func Kinds() []Kind { return []Kind{Generator, Inverter} }

// ParseKind converts a persisted device kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := requiredRoles[k]; !ok {
		return "", fmt.Errorf("unknown dynamic device kind %q, expected %s or %s", s, Generator, Inverter)
	}
	return k, nil
}

// RequiredRoles returns the exact role set of kind in declaration order, or
// nil for an unknown kind.
func RequiredRoles(kind Kind) []submodel.Role {
	return append([]submodel.Role(nil), requiredRoles[kind]...)
}

// DynamicInjection is a composed dynamic device.
type DynamicInjection struct {
	component.Base
	kind      Kind
	frequency float64
	blocks    []submodel.Block
	static    string
}

// Compose validates blocks against the role table of kind and returns an
// orphaned device. Roles are checked before parameters; parameters are
// checked in role-declaration order so the first failure is deterministic.
func Compose(kind Kind, name string, referenceFrequency float64, blocks map[submodel.Role]submodel.Block) (*DynamicInjection, error) {
	required, ok := requiredRoles[kind]
	if !ok {
		return nil, &component.Error{
			Err:       component.ErrTypeMismatch,
			Kind:      component.KindDynamicInjection,
			Component: name,
			Field:     "kind",
			Detail:    fmt.Sprintf("unknown dynamic device kind %q", kind),
		}
	}

	var missing []string
	for _, r := range required {
		if blocks[r] == nil {
			missing = append(missing, string(r))
		}
	}
	if len(missing) > 0 {
		return nil, compositionError(name, missing[0], fmt.Sprintf("%s requires roles [%s]", kind, strings.Join(missing, ", ")))
	}
	present := 0
	for _, b := range blocks {
		if b != nil {
			present++
		}
	}
	if present != len(required) {
		var extra []string
		for _, r := range submodel.Roles() {
			if blocks[r] != nil && !hasRole(required, r) {
				extra = append(extra, string(r))
			}
		}
		var unknown []string
		for r, b := range blocks {
			if b != nil && !r.Valid() {
				unknown = append(unknown, string(r))
			}
		}
		sort.Strings(unknown)
		extra = append(extra, unknown...)
		return nil, compositionError(name, extra[0], fmt.Sprintf("%s does not accept roles [%s]", kind, strings.Join(extra, ", ")))
	}

	ordered := make([]submodel.Block, len(required))
	for i, r := range required {
		b := blocks[r]
		if !submodel.IsValue(b) {
			return nil, &component.Error{
				Err:       component.ErrTypeMismatch,
				Kind:      component.KindDynamicInjection,
				Component: name,
				Field:     string(r),
				Detail:    fmt.Sprintf("block for role %s must be a struct value, got %T", r, b),
			}
		}
		if b.Role() != r {
			return nil, &component.Error{
				Err:       component.ErrTypeMismatch,
				Kind:      component.KindDynamicInjection,
				Component: name,
				Field:     string(r),
				Detail:    fmt.Sprintf("block %s (%s) does not fill role %s", b.Variant(), b.Role(), r),
			}
		}
		ordered[i] = b
	}

	d := &DynamicInjection{
		Base:      component.NewBase(component.KindDynamicInjection, name),
		kind:      kind,
		frequency: referenceFrequency,
		blocks:    ordered,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func hasRole(roles []submodel.Role, r submodel.Role) bool {
	for _, known := range roles {
		if known == r {
			return true
		}
	}
	return false
}

func compositionError(name, role, detail string) error {
	return &component.Error{
		Err:       component.ErrIncompleteComposition,
		Kind:      component.KindDynamicInjection,
		Component: name,
		Field:     role,
		Detail:    detail,
	}
}

func (d *DynamicInjection) Kind() component.Kind { return component.KindDynamicInjection }
func (d *DynamicInjection) Variant() string      { return string(d.kind) }

// DeviceKind returns the device variant.
func (d *DynamicInjection) DeviceKind() Kind { return d.kind }

// ReferenceFrequency returns the reference frequency in Hz.
func (d *DynamicInjection) ReferenceFrequency() float64 { return d.frequency }

// Static returns the name of the attached static injection, or "" when the
// device is orphaned.
func (d *DynamicInjection) Static() string { return d.static }

// Orphaned reports whether the device has no static attachment.
func (d *DynamicInjection) Orphaned() bool { return d.static == "" }

// Block returns the block filling role r.
func (d *DynamicInjection) Block(r submodel.Role) (submodel.Block, bool) {
	for _, b := range d.blocks {
		if b.Role() == r {
			return b, true
		}
	}
	return nil, false
}

// Blocks returns the blocks in role-declaration order.
func (d *DynamicInjection) Blocks() []submodel.Block {
	return append([]submodel.Block(nil), d.blocks...)
}

// BlockMap returns the blocks keyed by role, in the shape Compose accepts.
func (d *DynamicInjection) BlockMap() map[submodel.Role]submodel.Block {
	out := make(map[submodel.Role]submodel.Block, len(d.blocks))
	for _, b := range d.blocks {
		out[b.Role()] = b
	}
	return out
}

// StateDimension is the sum of the blocks' state dimensions.
func (d *DynamicInjection) StateDimension() int {
	n := 0
	for _, b := range d.blocks {
		n += submodel.StateDimension(b)
	}
	return n
}

// AlgebraicCount is the sum of the blocks' algebraic variable counts.
func (d *DynamicInjection) AlgebraicCount() int {
	n := 0
	for _, b := range d.blocks {
		n += submodel.AlgebraicCount(b)
	}
	return n
}

// Slot locates one block's states in the device state vector.
type Slot struct {
	Role    submodel.Role
	Variant string
	Offset  int
	States  []string
}

// StateLayout returns one slot per block in role-declaration order. Slots
// with no states are included with the offset of the next state.
func (d *DynamicInjection) StateLayout() []Slot {
	out := make([]Slot, len(d.blocks))
	offset := 0
	for i, b := range d.blocks {
		states := submodel.StateNames(b)
		out[i] = Slot{Role: b.Role(), Variant: b.Variant(), Offset: offset, States: states}
		offset += len(states)
	}
	return out
}

// References returns the static back-reference, which is exclusive: a static
// injection accepts at most one device.
func (d *DynamicInjection) References() []component.Reference {
	if d.static == "" {
		return nil
	}
	return []component.Reference{{
		Field:     "static_injection",
		Kind:      component.KindStaticInjection,
		Name:      d.static,
		Exclusive: true,
	}}
}

// CheckReference rejects static injections the device kind cannot augment.
func (d *DynamicInjection) CheckReference(ref component.Reference, target component.Component) error {
	if ref.Field != "static_injection" {
		return nil
	}
	static, ok := target.(topology.StaticInjection)
	if !ok {
		return &component.Error{
			Err:       component.ErrTypeMismatch,
			Kind:      component.KindDynamicInjection,
			Component: d.Name,
			Field:     ref.Field,
			Detail:    fmt.Sprintf("%s is not a static injection", component.Label(target)),
		}
	}
	return Compatible(d.kind, d.Name, static)
}

// Compatible returns a TypeMismatchError unless a device of kind may be
// attached to static. Both device kinds augment Generator injections only.
func Compatible(kind Kind, device string, static topology.StaticInjection) error {
	if _, ok := static.(*topology.Generator); ok {
		return nil
	}
	return &component.Error{
		Err:       component.ErrTypeMismatch,
		Kind:      component.KindDynamicInjection,
		Component: device,
		Field:     "static_injection",
		Detail:    fmt.Sprintf("%s cannot be attached to %s", kind, component.Label(static)),
	}
}

// Validate checks the reference frequency and every block in role order.
// The role set itself is fixed by Compose.
func (d *DynamicInjection) Validate() error {
	if err := component.ValidateBase(d); err != nil {
		return err
	}
	if math.IsNaN(d.frequency) || math.IsInf(d.frequency, 0) || d.frequency <= 0 {
		return component.RangeError(d, "frequency", "must be finite and > 0, got %v", d.frequency)
	}
	for _, b := range d.blocks {
		if err := submodel.Validate(b); err != nil {
			return component.WithComponent(err, component.KindDynamicInjection, d.Name)
		}
	}
	return nil
}

// Clone returns a copy that shares no slice with d. Blocks are values and
// need no deeper copy.
func (d *DynamicInjection) Clone() component.Component {
	cp := *d
	cp.blocks = append([]submodel.Block(nil), d.blocks...)
	return &cp
}

// WithStatic returns a copy of d bound to the named static injection. An
// empty name yields an orphaned copy.
func (d *DynamicInjection) WithStatic(name string) *DynamicInjection {
	cp := d.Clone().(*DynamicInjection)
	cp.static = name
	return cp
}

// WithBlock returns a copy of d with the block of b's role replaced by b.
// The device keeps its identity and attachment.
func (d *DynamicInjection) WithBlock(b submodel.Block) (*DynamicInjection, error) {
	if b == nil {
		return nil, compositionError(d.Name, "block", "no block given")
	}
	if !submodel.IsValue(b) {
		return nil, &component.Error{
			Err:       component.ErrTypeMismatch,
			Kind:      component.KindDynamicInjection,
			Component: d.Name,
			Field:     "block",
			Detail:    fmt.Sprintf("blocks are struct values, got %T", b),
		}
	}
	blocks := d.BlockMap()
	if _, ok := blocks[b.Role()]; !ok {
		return nil, compositionError(d.Name, string(b.Role()), fmt.Sprintf("%s does not accept role %s", d.kind, b.Role()))
	}
	blocks[b.Role()] = b
	next, err := Compose(d.kind, d.Name, d.frequency, blocks)
	if err != nil {
		return nil, err
	}
	next.Base = d.Base
	next.static = d.static
	return next, nil
}
