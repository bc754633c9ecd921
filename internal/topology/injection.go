// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package topology

import (
	"fmt"

	"github.com/vk/dynagrid/internal/component"
)

// Injection holds the fields shared by every static injection.
type Injection struct {
	// Bus is the name of the bus the injection connects to.
	Bus           string
	ActivePower   float64
	ReactivePower float64
	// BasePower is the device rating in MVA.
	BasePower float64
}

// Terminal gives access to the shared injection fields.
func (i *Injection) Terminal() *Injection { return i }

// StaticInjection is implemented by every steady-state injection variant.
type StaticInjection interface {
	component.Component
	Terminal() *Injection
}

func (i *Injection) references() []component.Reference {
	return []component.Reference{{Field: "bus", Kind: component.KindBus, Name: i.Bus}}
}

func (i *Injection) validate(c component.Component) error {
	if err := component.ValidateBase(c); err != nil {
		return err
	}
	if i.Bus == "" {
		return &component.Error{
			Err:       component.ErrInvalidReference,
			Kind:      component.KindStaticInjection,
			Component: c.Meta().Name,
			Field:     "bus",
			Detail:    "bus name must not be empty",
		}
	}
	if err := component.Finite(c, "active_power", i.ActivePower); err != nil {
		return err
	}
	if err := component.Finite(c, "reactive_power", i.ReactivePower); err != nil {
		return err
	}
	return component.Positive(c, "base_power", i.BasePower)
}

// Generator is a dispatchable synchronous or converter-interfaced unit. It is
// the static side of a dynamic device.
type Generator struct {
	component.Base
	Injection
	PMin float64
	PMax float64
}

// NewGenerator returns an available generator with limits spanning
// [0, activePower].
func NewGenerator(name, bus string, activePower, reactivePower, basePower float64) *Generator {
	return &Generator{
		Base:      component.NewBase(component.KindStaticInjection, name),
		Injection: Injection{Bus: bus, ActivePower: activePower, ReactivePower: reactivePower, BasePower: basePower},
		PMin:      0,
		PMax:      activePower,
	}
}

func (g *Generator) Kind() component.Kind              { return component.KindStaticInjection }
func (g *Generator) Variant() string                   { return "Generator" }
func (g *Generator) References() []component.Reference { return g.references() }

func (g *Generator) Clone() component.Component {
	cp := *g
	return &cp
}

func (g *Generator) Validate() error {
	if err := g.validate(g); err != nil {
		return err
	}
	if err := component.Finite(g, "p_min", g.PMin); err != nil {
		return err
	}
	if err := component.Finite(g, "p_max", g.PMax); err != nil {
		return err
	}
	if g.PMin > g.PMax {
		return component.RangeError(g, "p_min", "must not exceed p_max (%v > %v)", g.PMin, g.PMax)
	}
	if g.ActivePower < g.PMin || g.ActivePower > g.PMax {
		return component.RangeError(g, "active_power", "must be within [%v, %v], got %v", g.PMin, g.PMax, g.ActivePower)
	}
	return nil
}

// Source is an ideal voltage source behind an impedance, typically an
// infinite bus.
type Source struct {
	component.Base
	Injection
	R float64
	X float64
	// InternalVoltage and InternalAngle set the source EMF in pu and rad.
	InternalVoltage float64
	InternalAngle   float64
}

// NewSource returns an available source with a 1.0 pu internal voltage.
func NewSource(name, bus string, r, x, basePower float64) *Source {
	return &Source{
		Base:            component.NewBase(component.KindStaticInjection, name),
		Injection:       Injection{Bus: bus, BasePower: basePower},
		R:               r,
		X:               x,
		InternalVoltage: 1.0,
	}
}

func (s *Source) Kind() component.Kind              { return component.KindStaticInjection }
func (s *Source) Variant() string                   { return "Source" }
func (s *Source) References() []component.Reference { return s.references() }

func (s *Source) Clone() component.Component {
	cp := *s
	return &cp
}

func (s *Source) Validate() error {
	if err := s.validate(s); err != nil {
		return err
	}
	if err := component.NonNegative(s, "r", s.R); err != nil {
		return err
	}
	if err := component.NonNegative(s, "x", s.X); err != nil {
		return err
	}
	if err := component.Finite(s, "internal_voltage", s.InternalVoltage); err != nil {
		return err
	}
	return component.Finite(s, "internal_angle", s.InternalAngle)
}

// LoadModel selects the voltage dependence of a load.
type LoadModel string

const (
	ConstantPower     LoadModel = "ConstantPower"
	ConstantCurrent   LoadModel = "ConstantCurrent"
	ConstantImpedance LoadModel = "ConstantImpedance"
)

// ParseLoadModel converts a persisted load model.
func ParseLoadModel(s string) (LoadModel, error) {
	switch m := LoadModel(s); m {
	case ConstantPower, ConstantCurrent, ConstantImpedance:
		return m, nil
	}
	return "", fmt.Errorf("unknown load model %q", s)
}

// PowerLoad is a passive consumer.
type PowerLoad struct {
	component.Base
	Injection
	Model LoadModel
}

// NewPowerLoad returns an available constant-power load.
func NewPowerLoad(name, bus string, activePower, reactivePower, basePower float64) *PowerLoad {
	return &PowerLoad{
		Base:      component.NewBase(component.KindStaticInjection, name),
		Injection: Injection{Bus: bus, ActivePower: activePower, ReactivePower: reactivePower, BasePower: basePower},
		Model:     ConstantPower,
	}
}

func (l *PowerLoad) Kind() component.Kind              { return component.KindStaticInjection }
func (l *PowerLoad) Variant() string                   { return "PowerLoad" }
func (l *PowerLoad) References() []component.Reference { return l.references() }

func (l *PowerLoad) Clone() component.Component {
	cp := *l
	return &cp
}

func (l *PowerLoad) Validate() error {
	if err := l.validate(l); err != nil {
		return err
	}
	if _, err := ParseLoadModel(string(l.Model)); err != nil {
		return component.RangeError(l, "model", "%v", err)
	}
	return nil
}
