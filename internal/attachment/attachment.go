// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package attachment binds dynamic devices to the static injections they
// augment. Binding and registration happen in one registry transaction, so
// either both are visible or neither is.
package attachment

import (
	"context"
	"fmt"

	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/ctxlog"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/registry"
	"github.com/vk/dynagrid/internal/system"
	"github.com/vk/dynagrid/internal/topology"
)

const field = "static_injection"

// Attach binds dyn to the named static injection and registers it. A device
// that is already registered under the same name must be orphaned; it is
// replaced in place by the bound copy.
func Attach(ctx context.Context, doc *system.Document, dyn *device.DynamicInjection, staticName string) error {
	if dyn == nil {
		return &component.Error{
			Err:    component.ErrInvalidReference,
			Kind:   component.KindDynamicInjection,
			Field:  field,
			Detail: "nil dynamic device",
		}
	}
	name := dyn.Name
	err := doc.Registry().Update(ctx, func(tx *registry.Tx) error {
		c, err := tx.Get(component.KindStaticInjection, staticName)
		if err != nil {
			return err
		}
		static := c.(topology.StaticInjection)

		if holder, taken := tx.Holder(field, staticName); taken {
			return &component.Error{
				Err:       component.ErrAlreadyAttached,
				Kind:      component.KindDynamicInjection,
				Component: name,
				Field:     field,
				Detail:    fmt.Sprintf("%s already has %q attached", component.Label(static), holder),
			}
		}
		if err := device.Compatible(dyn.DeviceKind(), name, static); err != nil {
			return err
		}

		existing, err := tx.Get(component.KindAny, name)
		if err != nil {
			return tx.Add(dyn.WithStatic(staticName))
		}
		registered, ok := existing.(*device.DynamicInjection)
		if !ok {
			return &component.Error{
				Err:       component.ErrDuplicateName,
				Kind:      existing.Kind(),
				Component: name,
				Detail:    "name is already registered",
			}
		}
		if !registered.Orphaned() {
			return &component.Error{
				Err:       component.ErrAlreadyAttached,
				Kind:      component.KindDynamicInjection,
				Component: name,
				Field:     field,
				Detail:    fmt.Sprintf("device is already attached to %q", registered.Static()),
			}
		}
		return tx.Replace(dyn.WithStatic(staticName))
	})
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Dynamic device attached", "device", name, "static_injection", staticName)
	return nil
}

// Detach clears the back-reference of the named device. The device stays
// registered, orphaned, until it is attached again or removed.
func Detach(ctx context.Context, doc *system.Document, name string) error {
	err := doc.Registry().Update(ctx, func(tx *registry.Tx) error {
		c, err := tx.Get(component.KindDynamicInjection, name)
		if err != nil {
			return err
		}
		dev := c.(*device.DynamicInjection)
		if dev.Orphaned() {
			return nil
		}
		return tx.Replace(dev.WithStatic(""))
	})
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Dynamic device detached", "device", name)
	return nil
}

// AttachedTo returns the name of the device bound to the static injection.
func AttachedTo(doc *system.Document, staticName string) (string, bool) {
	return doc.Registry().Holder(field, staticName)
}
