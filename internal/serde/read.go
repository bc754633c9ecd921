// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package serde

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/ctxlog"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/submodel"
	"github.com/vk/dynagrid/internal/system"
)

// pendingDevice is a dynamic device decoded in the first pass and composed
// in the second.
type pendingDevice struct {
	kind      device.Kind
	base      component.Base
	frequency float64
	blocks    map[submodel.Role]submodel.Block
	static    string
}

type record struct {
	rec  *componentRec
	comp component.Component
	dev  *pendingDevice
}

// Deserialize parses src and rebuilds the document it describes. filename
// is only used in diagnostics. Every failure is a DeserializationError
// wrapping the violated invariant and naming the offending component.
func Deserialize(ctx context.Context, src []byte, filename string) (*system.Document, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, failure(component.KindAny, "", nil, diags)
	}
	var df documentFile
	if diags := gohcl.DecodeBody(file.Body, nil, &df); diags.HasErrors() {
		return nil, failure(component.KindAny, "", nil, diags)
	}
	if df.SchemaVersion != SchemaVersion {
		return nil, failure(component.KindAny, "", nil,
			fmt.Errorf("unsupported schema_version %d, expected %d", df.SchemaVersion, SchemaVersion))
	}
	if err := checkCompositions(df.Compositions); err != nil {
		return nil, err
	}
	doc, err := system.New(df.BasePower, df.BaseFrequency)
	if err != nil {
		return nil, failure(component.KindAny, "", nil, err)
	}

	// Pass 1: instantiate every record without resolving names.
	records := make([]*record, 0, len(df.Components))
	ranges := make(map[string]*hcl.Range, len(df.Components))
	for _, rec := range df.Components {
		r, err := decodeRecord(rec)
		if err != nil {
			return nil, failure(component.Kind(rec.Kind), rec.Name, &rec.DefRange, err)
		}
		records = append(records, r)
		if _, seen := ranges[rec.Name]; !seen {
			ranges[rec.Name] = &rec.DefRange
		}
	}

	// Pass 2: validate, compose and register.
	comps := make([]component.Component, 0, len(records))
	for _, r := range records {
		c := r.comp
		if r.dev != nil {
			c, err = r.dev.compose()
		} else {
			err = c.Validate()
		}
		if err != nil {
			return nil, failure(component.Kind(r.rec.Kind), r.rec.Name, &r.rec.DefRange, err)
		}
		comps = append(comps, c)
	}
	if err := doc.Registry().Load(ctx, comps); err != nil {
		kind, name := component.KindAny, ""
		if e, ok := component.AsError(err); ok {
			kind, name = e.Kind, e.Component
		}
		return nil, failure(kind, name, ranges[name], err)
	}

	logger.Debug("Document deserialized", "file", filename, "components", len(comps))
	return doc, nil
}

func failure(kind component.Kind, name string, rng *hcl.Range, cause error) error {
	e := &component.Error{
		Err:       component.ErrDeserialization,
		Kind:      kind,
		Component: name,
		Cause:     cause,
	}
	if rng != nil {
		e.Detail = rng.String()
	}
	return e
}

// checkCompositions verifies that role tables recorded in the document match
// the built-in ones. Documents without tables use the built-in ones.
func checkCompositions(recs []*compositionRec) error {
	seen := make(map[device.Kind]bool)
	for _, rec := range recs {
		kind, err := device.ParseKind(rec.Kind)
		if err != nil {
			return failure(component.KindDynamicInjection, "", &rec.DefRange, err)
		}
		if seen[kind] {
			return failure(component.KindDynamicInjection, "", &rec.DefRange,
				fmt.Errorf("duplicate composition table for %s", kind))
		}
		seen[kind] = true

		want := make([]string, 0)
		for _, r := range device.RequiredRoles(kind) {
			want = append(want, string(r))
		}
		got := slices.Clone(rec.Roles)
		slices.Sort(got)
		sorted := slices.Clone(want)
		slices.Sort(sorted)
		if !slices.Equal(got, sorted) {
			return failure(component.KindDynamicInjection, "", &rec.DefRange, &component.Error{
				Err:    component.ErrIncompleteComposition,
				Kind:   component.KindDynamicInjection,
				Field:  string(kind),
				Detail: fmt.Sprintf("document roles %q differ from the required roles %q", rec.Roles, want),
			})
		}
	}
	return nil
}

func decodeRecord(rec *componentRec) (*record, error) {
	kind := component.Kind(rec.Kind)
	if !kind.Valid() {
		return nil, &component.Error{
			Err:    component.ErrTypeMismatch,
			Field:  "kind",
			Detail: fmt.Sprintf("unknown component kind %q", rec.Kind),
		}
	}

	base := component.Base{Name: rec.Name, Available: rec.Available}
	if rec.UUID != "" {
		id, err := uuid.Parse(rec.UUID)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q: %w", rec.UUID, err)
		}
		base.UUID = id
	}

	paramAttrs, diags := evalAttributes(rec.Parameters)
	if diags.HasErrors() {
		return nil, diags
	}
	refAttrs, diags := evalAttributes(rec.References)
	if diags.HasErrors() {
		return nil, diags
	}
	params := newReader(kind, "parameters", paramAttrs)
	refs := newReader(kind, "references", refAttrs)

	if kind == component.KindDynamicInjection {
		dev, err := decodeDevice(rec, base, params, refs)
		if err != nil {
			return nil, err
		}
		return &record{rec: rec, dev: dev}, nil
	}

	codec, ok := topologyCodecs[rec.Variant]
	if !ok || codec.kind != kind {
		return nil, &component.Error{
			Err:    component.ErrTypeMismatch,
			Kind:   kind,
			Field:  "variant",
			Detail: fmt.Sprintf("%q is not a %s variant", rec.Variant, kind),
		}
	}
	if len(rec.Blocks) > 0 {
		return nil, fmt.Errorf("%s components have no sub-model blocks", kind)
	}
	c := codec.decode(base, params, refs)
	if err := params.done(); err != nil {
		return nil, err
	}
	if err := refs.done(); err != nil {
		return nil, err
	}
	return &record{rec: rec, comp: c}, nil
}

func decodeDevice(rec *componentRec, base component.Base, params, refs *reader) (*pendingDevice, error) {
	kind, err := device.ParseKind(rec.Variant)
	if err != nil {
		return nil, &component.Error{
			Err:    component.ErrTypeMismatch,
			Kind:   component.KindDynamicInjection,
			Field:  "variant",
			Detail: err.Error(),
		}
	}
	dev := &pendingDevice{
		kind:      kind,
		base:      base,
		frequency: params.float("frequency"),
		static:    refs.optionalText("static_injection"),
		blocks:    make(map[submodel.Role]submodel.Block, len(rec.Blocks)),
	}
	if err := params.done(); err != nil {
		return nil, err
	}
	if err := refs.done(); err != nil {
		return nil, err
	}

	for _, br := range rec.Blocks {
		role, err := submodel.ParseRole(br.Role)
		if err != nil {
			return nil, &component.Error{
				Err:    component.ErrIncompleteComposition,
				Kind:   component.KindDynamicInjection,
				Field:  br.Role,
				Detail: fmt.Sprintf("%s at %s", err, br.DefRange),
			}
		}
		if _, dup := dev.blocks[role]; dup {
			return nil, &component.Error{
				Err:    component.ErrIncompleteComposition,
				Kind:   component.KindDynamicInjection,
				Field:  br.Role,
				Detail: fmt.Sprintf("duplicate block at %s", br.DefRange),
			}
		}
		attrs, diags := evalAttributes(br.Parameters)
		if diags.HasErrors() {
			return nil, diags
		}
		b, err := submodel.New(br.Variant, attrs)
		if err != nil {
			return nil, err
		}
		if b.Role() != role {
			return nil, &component.Error{
				Err:    component.ErrTypeMismatch,
				Kind:   component.KindDynamicInjection,
				Field:  br.Role,
				Detail: fmt.Sprintf("variant %s fills role %s", b.Variant(), b.Role()),
			}
		}
		dev.blocks[role] = b
	}
	return dev, nil
}

// compose runs the composer and restores the persisted identity and
// attachment.
func (p *pendingDevice) compose() (*device.DynamicInjection, error) {
	d, err := device.Compose(p.kind, p.base.Name, p.frequency, p.blocks)
	if err != nil {
		return nil, err
	}
	d = d.WithStatic(p.static)
	meta := d.Meta()
	meta.Available = p.base.Available
	if p.base.UUID != uuid.Nil {
		meta.UUID = p.base.UUID
	}
	return d, nil
}
