// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package serde

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/ctxlog"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/system"
	"github.com/zclconf/go-cty/cty"
)

// Serialize renders doc as HCL from a frozen snapshot, so concurrent
// mutations never produce a torn document.
func Serialize(ctx context.Context, doc *system.Document) ([]byte, error) {
	frozen := doc.Freeze()

	f := hclwrite.NewEmptyFile()
	root := f.Body()
	root.SetAttributeValue("schema_version", cty.NumberIntVal(SchemaVersion))
	root.SetAttributeValue("base_power", cty.NumberFloatVal(frozen.BasePower))
	root.SetAttributeValue("base_frequency", cty.NumberFloatVal(frozen.BaseFrequency))

	for _, kind := range device.Kinds() {
		root.AppendNewline()
		block := root.AppendNewBlock("composition", []string{string(kind)})
		roles := make([]cty.Value, 0)
		for _, r := range device.RequiredRoles(kind) {
			roles = append(roles, cty.StringVal(string(r)))
		}
		block.Body().SetAttributeValue("roles", cty.ListVal(roles))
	}

	count := 0
	for c := range frozen.Components.Iterate(component.KindAny, nil) {
		root.AppendNewline()
		if err := writeComponent(root, c); err != nil {
			return nil, fmt.Errorf("serializing %s: %w", component.Label(c), err)
		}
		count++
	}

	ctxlog.FromContext(ctx).Debug("Document serialized", "components", count)
	return hclwrite.Format(f.Bytes()), nil
}

func writeComponent(root *hclwrite.Body, c component.Component) error {
	params, err := encodeParameters(c)
	if err != nil {
		return err
	}
	meta := c.Meta()

	body := root.AppendNewBlock("component", []string{string(c.Kind()), meta.Name}).Body()
	body.SetAttributeValue("variant", cty.StringVal(c.Variant()))
	body.SetAttributeValue("available", cty.BoolVal(meta.Available))
	body.SetAttributeValue("uuid", cty.StringVal(meta.UUID.String()))
	writeAttrs(body.AppendNewBlock("parameters", nil).Body(), params)

	var refs []attr
	for _, ref := range c.References() {
		if ref.Name != "" {
			refs = append(refs, str(ref.Field, ref.Name))
		}
	}
	writeAttrs(body.AppendNewBlock("references", nil).Body(), refs)

	dev, ok := c.(*device.DynamicInjection)
	if !ok {
		return nil
	}
	for _, b := range dev.Blocks() {
		attrs, err := encodeBlock(b)
		if err != nil {
			return err
		}
		blk := body.AppendNewBlock("block", []string{string(b.Role())}).Body()
		blk.SetAttributeValue("variant", cty.StringVal(b.Variant()))
		writeAttrs(blk.AppendNewBlock("parameters", nil).Body(), attrs)
	}
	return nil
}

func writeAttrs(body *hclwrite.Body, attrs []attr) {
	for _, a := range attrs {
		body.SetAttributeValue(a.name, a.value)
	}
}
