// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package submodel

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/vk/dynagrid/internal/component"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Parameters converts b into a cty object keyed by persisted parameter name.
// The block must be valid: non-finite numbers cannot be represented.
func Parameters(b Block) (cty.Value, error) {
	if err := Validate(b); err != nil {
		return cty.NilVal, err
	}
	ty, err := gocty.ImpliedType(b)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %s: %w", b.Variant(), err)
	}
	return gocty.ToCtyValue(b, ty)
}

// New instantiates a variant from a map of persisted parameters. Missing,
// unknown and non-numeric parameters fail with a ParameterRangeError naming
// the field. The returned block is not validated against its bounds.
func New(variant string, params map[string]cty.Value) (Block, error) {
	s, ok := Lookup(variant)
	if !ok {
		return nil, &component.Error{
			Err:    component.ErrParameterRange,
			Kind:   component.KindDynamicInjection,
			Field:  "variant",
			Detail: fmt.Sprintf("unknown sub-model variant %q", variant),
		}
	}

	for _, f := range s.Fields {
		v, ok := params[f.Name]
		if !ok {
			return nil, rangeError(s, f.Name, "missing required parameter")
		}
		if v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.Number) {
			return nil, rangeError(s, f.Name, fmt.Sprintf("must be a number, got %s", v.Type().FriendlyName()))
		}
	}
	var unknown []string
	for name := range params {
		if _, ok := s.Field(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, rangeError(s, unknown[0], "unknown parameter")
	}

	target := reflect.New(s.goType)
	if err := gocty.FromCtyValue(cty.ObjectVal(params), target.Interface()); err != nil {
		return nil, rangeError(s, "", err.Error())
	}
	return target.Elem().Interface().(Block), nil
}

// MustNew is like New but panics on error. It is meant for fixtures.
func MustNew(variant string, params map[string]float64) Block {
	vals := make(map[string]cty.Value, len(params))
	for k, v := range params {
		vals[k] = cty.NumberFloatVal(v)
	}
	b, err := New(variant, vals)
	if err != nil {
		panic(err)
	}
	return b
}
