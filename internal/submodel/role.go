// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package submodel declares the capability roles that make up a composite
// dynamic device and the closed catalogue of block variants that can fill
// each role.
//
// Every variant is a plain value struct whose float64 fields are its
// parameters. Fields carry two tags: `cty` names the parameter as it appears
// in a persisted document and `bound` declares its valid range. The schema
// table built from those tags at init time drives validation, state
// bookkeeping and (de)serialization; nothing here evaluates dynamics.
package submodel

import "fmt"

// Role is a capability slot of a composite device.
type Role string

const (
	Machine            Role = "Machine"
	Shaft              Role = "Shaft"
	AVR                Role = "AVR"
	Governor           Role = "Governor"
	PSS                Role = "PSS"
	Converter          Role = "Converter"
	OuterControl       Role = "OuterControl"
	InnerControl       Role = "InnerControl"
	DCSource           Role = "DCSource"
	FrequencyEstimator Role = "FrequencyEstimator"
	Filter             Role = "Filter"
)

var roles = []Role{
	Machine, Shaft, AVR, Governor, PSS,
	Converter, OuterControl, InnerControl, DCSource, FrequencyEstimator, Filter,
}

// Roles returns every role in declaration order.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Index returns the declaration position of r, or -1 for unknown roles.
func (r Role) Index() int {
	for i, known := range roles {
		if known == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is a declared role.
func (r Role) Valid() bool { return r.Index() >= 0 }

// ParseRole converts a persisted role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown capability role %q", s)
	}
	return r, nil
}

// Block is one sub-model instance. The set of implementations is closed to
// this package.
type Block interface {
	Role() Role
	Variant() string
	sealed()
}
