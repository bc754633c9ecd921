// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package system defines Document, the top-level aggregate that owns a
// registry together with the global per-unit bases.
package system

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/registry"
	"github.com/vk/dynagrid/internal/submodel"
	"github.com/vk/dynagrid/internal/topology"
)

// Document is a complete system description. All operations receive the
// document they act on explicitly.
type Document struct {
	basePower     float64
	baseFrequency float64
	registry      *registry.Registry
}

// New returns an empty document. Both bases must be finite and > 0.
func New(basePower, baseFrequency float64) (*Document, error) {
	if err := checkBase("base_power", basePower); err != nil {
		return nil, err
	}
	if err := checkBase("base_frequency", baseFrequency); err != nil {
		return nil, err
	}
	return &Document{
		basePower:     basePower,
		baseFrequency: baseFrequency,
		registry:      registry.New(),
	}, nil
}

func checkBase(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &component.Error{
			Err:    component.ErrParameterRange,
			Field:  field,
			Detail: fmt.Sprintf("must be finite and > 0, got %v", v),
		}
	}
	return nil
}

// BasePower returns the system base in MVA.
func (d *Document) BasePower() float64 { return d.basePower }

// BaseFrequency returns the system frequency in Hz.
func (d *Document) BaseFrequency() float64 { return d.baseFrequency }

// Registry returns the live registry of the document.
func (d *Document) Registry() *registry.Registry { return d.registry }

// Add registers a component in the document.
func (d *Document) Add(ctx context.Context, c component.Component) error {
	return d.registry.Add(ctx, c)
}

// Freeze returns an immutable view of the document for long-running
// consumers such as solvers and integrators.
func (d *Document) Freeze() *Frozen {
	return &Frozen{
		BasePower:     d.basePower,
		BaseFrequency: d.baseFrequency,
		Components:    d.registry.Snapshot(),
	}
}

// Frozen is a point-in-time copy of a document.
type Frozen struct {
	BasePower     float64
	BaseFrequency float64
	Components    *registry.Snapshot
}

// Network indexes the frozen topology.
func (f *Frozen) Network() *topology.Network {
	return topology.NewNetwork(f.Components.Iterate(component.KindAny, nil))
}

// Network indexes the current topology of the document.
func (d *Document) Network() *topology.Network {
	return topology.NewNetwork(d.registry.Iterate(component.KindAny, nil))
}

// ValidateConnectivity runs the advisory island check on the current
// topology.
func (d *Document) ValidateConnectivity() topology.Report {
	return d.Network().ValidateConnectivity()
}

// DynamicDevices returns the registered dynamic devices in insertion order.
func (d *Document) DynamicDevices() []*device.DynamicInjection {
	var out []*device.DynamicInjection
	for c := range d.registry.Iterate(component.KindDynamicInjection, nil) {
		if dev, ok := c.(*device.DynamicInjection); ok {
			out = append(out, dev)
		}
	}
	return out
}

// ReplaceBlock edits one sub-model of a registered device by replacing the
// whole block instance. The device keeps its name, identity and attachment.
func (d *Document) ReplaceBlock(ctx context.Context, name string, b submodel.Block) error {
	return d.registry.Update(ctx, func(tx *registry.Tx) error {
		c, err := tx.Get(component.KindDynamicInjection, name)
		if err != nil {
			return err
		}
		dev, ok := c.(*device.DynamicInjection)
		if !ok {
			return &component.Error{
				Err:       component.ErrTypeMismatch,
				Kind:      c.Kind(),
				Component: name,
				Detail:    fmt.Sprintf("%s has no sub-model blocks", component.Label(c)),
			}
		}
		next, err := dev.WithBlock(b)
		if err != nil {
			return err
		}
		return tx.Replace(next)
	})
}

// Equal reports whether two documents hold structurally identical contents
// in the same order.
func Equal(a, b *Document) bool {
	if a.basePower != b.basePower || a.baseFrequency != b.baseFrequency {
		return false
	}
	an, bn := a.registry.Names(), b.registry.Names()
	if len(an) != len(bn) {
		return false
	}
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	as, bs := a.registry.Snapshot(), b.registry.Snapshot()
	for _, name := range an {
		ac, _ := as.Get(component.KindAny, name)
		bc, _ := bs.Get(component.KindAny, name)
		if !reflect.DeepEqual(ac, bc) {
			return false
		}
	}
	return true
}
