// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package topology

import (
	"fmt"

	"github.com/vk/dynagrid/internal/component"
)

// Arc names the two end buses of a branch.
type Arc struct {
	From string
	To   string
}

// Branch is implemented by every element connecting two buses.
type Branch interface {
	component.Component
	Ends() Arc
}

func arcReferences(a Arc) []component.Reference {
	return []component.Reference{
		{Field: "from", Kind: component.KindBus, Name: a.From},
		{Field: "to", Kind: component.KindBus, Name: a.To},
	}
}

func validateArc(c component.Component, a Arc) error {
	if a.From == "" {
		return &component.Error{Err: component.ErrInvalidReference, Kind: c.Kind(), Component: c.Meta().Name, Field: "from", Detail: "bus name must not be empty"}
	}
	if a.To == "" {
		return &component.Error{Err: component.ErrInvalidReference, Kind: c.Kind(), Component: c.Meta().Name, Field: "to", Detail: "bus name must not be empty"}
	}
	if a.From == a.To {
		return &component.Error{
			Err:       component.ErrInvalidReference,
			Kind:      c.Kind(),
			Component: c.Meta().Name,
			Field:     "to",
			Detail:    fmt.Sprintf("branch endpoints must differ, both are %q", a.From),
		}
	}
	return nil
}

// Line is a pi-model transmission line.
type Line struct {
	component.Base
	Arc
	// R and X are the series resistance and reactance in per-unit.
	R float64
	X float64
	// B is the total shunt susceptance in per-unit.
	B float64
	// Rate is the thermal rating in MVA.
	Rate float64
}

// NewLine returns an available line between two named buses.
func NewLine(name, from, to string, r, x, b, rate float64) *Line {
	return &Line{
		Base: component.NewBase(component.KindBranch, name),
		Arc:  Arc{From: from, To: to},
		R:    r,
		X:    x,
		B:    b,
		Rate: rate,
	}
}

func (l *Line) Kind() component.Kind              { return component.KindBranch }
func (l *Line) Variant() string                   { return "Line" }
func (l *Line) Ends() Arc                         { return l.Arc }
func (l *Line) References() []component.Reference { return arcReferences(l.Arc) }

func (l *Line) Clone() component.Component {
	cp := *l
	return &cp
}

func (l *Line) Validate() error {
	if err := component.ValidateBase(l); err != nil {
		return err
	}
	if err := validateArc(l, l.Arc); err != nil {
		return err
	}
	if err := component.NonNegative(l, "r", l.R); err != nil {
		return err
	}
	if err := component.Finite(l, "x", l.X); err != nil {
		return err
	}
	if err := component.NonNegative(l, "b", l.B); err != nil {
		return err
	}
	return component.NonNegative(l, "rate", l.Rate)
}

// Transformer2W is a two-winding transformer with an off-nominal tap.
type Transformer2W struct {
	component.Base
	Arc
	R    float64
	X    float64
	Rate float64
	// Tap is the off-nominal turns ratio on the From side.
	Tap float64
}

// NewTransformer2W returns an available transformer with a nominal tap.
func NewTransformer2W(name, from, to string, r, x, rate float64) *Transformer2W {
	return &Transformer2W{
		Base: component.NewBase(component.KindBranch, name),
		Arc:  Arc{From: from, To: to},
		R:    r,
		X:    x,
		Rate: rate,
		Tap:  1.0,
	}
}

func (t *Transformer2W) Kind() component.Kind              { return component.KindBranch }
func (t *Transformer2W) Variant() string                   { return "Transformer2W" }
func (t *Transformer2W) Ends() Arc                         { return t.Arc }
func (t *Transformer2W) References() []component.Reference { return arcReferences(t.Arc) }

func (t *Transformer2W) Clone() component.Component {
	cp := *t
	return &cp
}

func (t *Transformer2W) Validate() error {
	if err := component.ValidateBase(t); err != nil {
		return err
	}
	if err := validateArc(t, t.Arc); err != nil {
		return err
	}
	if err := component.NonNegative(t, "r", t.R); err != nil {
		return err
	}
	if err := component.Finite(t, "x", t.X); err != nil {
		return err
	}
	if err := component.NonNegative(t, "rate", t.Rate); err != nil {
		return err
	}
	return component.Positive(t, "tap", t.Tap)
}
