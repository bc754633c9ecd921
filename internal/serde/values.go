// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package serde

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/dynagrid/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// attr is one ordered attribute of a written block.
type attr struct {
	name  string
	value cty.Value
}

func num(name string, v float64) attr { return attr{name, cty.NumberFloatVal(v)} }
func str(name, v string) attr         { return attr{name, cty.StringVal(v)} }

// evalAttributes evaluates every attribute of an attributes-only block
// without variables or functions. A nil block yields an empty map.
func evalAttributes(b *attrsBlock) (map[string]cty.Value, hcl.Diagnostics) {
	out := map[string]cty.Value{}
	if b == nil || b.Body == nil {
		return out, nil
	}
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	for name, a := range attrs {
		v, valDiags := a.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		out[name] = v
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return out, nil
}

// reader pulls typed values out of an attribute map. The first failure is
// kept and reported by done; later reads become no-ops.
type reader struct {
	kind  component.Kind
	block string
	attrs map[string]cty.Value
	used  map[string]bool
	err   error
}

func newReader(kind component.Kind, block string, attrs map[string]cty.Value) *reader {
	return &reader{kind: kind, block: block, attrs: attrs, used: make(map[string]bool, len(attrs))}
}

func (r *reader) fail(name, format string, args ...any) {
	if r.err != nil {
		return
	}
	r.err = &component.Error{
		Err:    component.ErrParameterRange,
		Kind:   r.kind,
		Field:  r.block + "." + name,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (r *reader) value(name string, ty cty.Type, optional bool) (cty.Value, bool) {
	if r.err != nil {
		return cty.NilVal, false
	}
	v, ok := r.attrs[name]
	if !ok {
		if !optional {
			r.fail(name, "missing required attribute")
		}
		return cty.NilVal, false
	}
	r.used[name] = true
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(ty) {
		r.fail(name, "must be a %s, got %s", ty.FriendlyName(), v.Type().FriendlyName())
		return cty.NilVal, false
	}
	return v, true
}

func (r *reader) float(name string) float64 {
	v, ok := r.value(name, cty.Number, false)
	if !ok {
		return 0
	}
	f, _ := v.AsBigFloat().Float64()
	return f
}

func (r *reader) integer(name string) int {
	v, ok := r.value(name, cty.Number, false)
	if !ok {
		return 0
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		r.fail(name, "must be a whole number, got %s", bf.Text('g', -1))
		return 0
	}
	i, acc := bf.Int64()
	if acc != big.Exact || int64(int(i)) != i {
		r.fail(name, "out of range")
		return 0
	}
	return int(i)
}

func (r *reader) text(name string) string {
	v, ok := r.value(name, cty.String, false)
	if !ok {
		return ""
	}
	return v.AsString()
}

func (r *reader) optionalText(name string) string {
	v, ok := r.value(name, cty.String, true)
	if !ok {
		return ""
	}
	return v.AsString()
}

// done reports the first failure, or the first unknown attribute in name
// order.
func (r *reader) done() error {
	if r.err != nil {
		return r.err
	}
	var unknown []string
	for name := range r.attrs {
		if !r.used[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		r.fail(unknown[0], "unknown attribute")
	}
	return r.err
}
