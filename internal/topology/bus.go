// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package topology

import (
	"fmt"

	"github.com/vk/dynagrid/internal/component"
)

// BusType is the power-flow role of a bus.
type BusType string

const (
	BusREF BusType = "REF"
	BusPV  BusType = "PV"
	BusPQ  BusType = "PQ"
)

// ParseBusType converts a persisted bus type.
func ParseBusType(s string) (BusType, error) {
	switch t := BusType(s); t {
	case BusREF, BusPV, BusPQ:
		return t, nil
	}
	return "", fmt.Errorf("unknown bus type %q, expected one of REF, PV, PQ", s)
}

// Bus is a network node.
type Bus struct {
	component.Base
	// Number is the positive numeric identifier used by exchange formats.
	Number int
	Type   BusType
	// Magnitude is the voltage magnitude in per-unit.
	Magnitude float64
	// Angle is the voltage angle in radians.
	Angle float64
	// BaseVoltage is the nominal voltage in kV.
	BaseVoltage float64
}

// NewBus returns an available bus at 1.0 pu and zero angle.
func NewBus(name string, number int, typ BusType, baseVoltage float64) *Bus {
	return &Bus{
		Base:        component.NewBase(component.KindBus, name),
		Number:      number,
		Type:        typ,
		Magnitude:   1.0,
		BaseVoltage: baseVoltage,
	}
}

func (b *Bus) Kind() component.Kind              { return component.KindBus }
func (b *Bus) Variant() string                   { return "Bus" }
func (b *Bus) References() []component.Reference { return nil }

func (b *Bus) Clone() component.Component {
	cp := *b
	return &cp
}

func (b *Bus) Validate() error {
	if err := component.ValidateBase(b); err != nil {
		return err
	}
	if b.Number <= 0 {
		return component.RangeError(b, "number", "must be a positive integer, got %d", b.Number)
	}
	if _, err := ParseBusType(string(b.Type)); err != nil {
		return component.RangeError(b, "bus_type", "%v", err)
	}
	if err := component.NonNegative(b, "magnitude", b.Magnitude); err != nil {
		return err
	}
	if err := component.Finite(b, "angle", b.Angle); err != nil {
		return err
	}
	return component.Positive(b, "base_voltage", b.BaseVoltage)
}
