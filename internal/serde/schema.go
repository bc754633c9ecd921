// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package serde

import "github.com/hashicorp/hcl/v2"

// SchemaVersion is the layout version written by Serialize and the only one
// Deserialize accepts.
const SchemaVersion = 1

type attrsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type documentFile struct {
	SchemaVersion int               `hcl:"schema_version"`
	BasePower     float64           `hcl:"base_power"`
	BaseFrequency float64           `hcl:"base_frequency"`
	Compositions  []*compositionRec `hcl:"composition,block"`
	Components    []*componentRec   `hcl:"component,block"`
}

type compositionRec struct {
	Kind     string    `hcl:"kind,label"`
	Roles    []string  `hcl:"roles"`
	DefRange hcl.Range `hcl:",def_range"`
}

type componentRec struct {
	Kind       string      `hcl:"kind,label"`
	Name       string      `hcl:"name,label"`
	Variant    string      `hcl:"variant"`
	Available  bool        `hcl:"available"`
	UUID       string      `hcl:"uuid,optional"`
	Parameters *attrsBlock `hcl:"parameters,block"`
	References *attrsBlock `hcl:"references,block"`
	Blocks     []*blockRec `hcl:"block,block"`
	DefRange   hcl.Range   `hcl:",def_range"`
}

type blockRec struct {
	Role       string      `hcl:"role,label"`
	Variant    string      `hcl:"variant"`
	Parameters *attrsBlock `hcl:"parameters,block"`
	DefRange   hcl.Range   `hcl:",def_range"`
}
