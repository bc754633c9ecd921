// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package serde

import (
	"fmt"

	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/submodel"
	"github.com/vk/dynagrid/internal/topology"
)

// decodeFunc builds a component from its parameter and reference readers.
// Parameter values are copied as read; validation happens in the second
// pass.
type decodeFunc func(base component.Base, params, refs *reader) component.Component

type variantCodec struct {
	kind   component.Kind
	decode decodeFunc
}

var topologyCodecs = map[string]variantCodec{
	"Bus": {component.KindBus, func(base component.Base, p, _ *reader) component.Component {
		return &topology.Bus{
			Base:        base,
			Number:      p.integer("number"),
			Type:        topology.BusType(p.text("bus_type")),
			Magnitude:   p.float("magnitude"),
			Angle:       p.float("angle"),
			BaseVoltage: p.float("base_voltage"),
		}
	}},
	"Line": {component.KindBranch, func(base component.Base, p, refs *reader) component.Component {
		return &topology.Line{
			Base: base,
			Arc:  readArc(refs),
			R:    p.float("r"),
			X:    p.float("x"),
			B:    p.float("b"),
			Rate: p.float("rate"),
		}
	}},
	"Transformer2W": {component.KindBranch, func(base component.Base, p, refs *reader) component.Component {
		return &topology.Transformer2W{
			Base: base,
			Arc:  readArc(refs),
			R:    p.float("r"),
			X:    p.float("x"),
			Rate: p.float("rate"),
			Tap:  p.float("tap"),
		}
	}},
	"Generator": {component.KindStaticInjection, func(base component.Base, p, refs *reader) component.Component {
		return &topology.Generator{
			Base:      base,
			Injection: readInjection(p, refs),
			PMin:      p.float("p_min"),
			PMax:      p.float("p_max"),
		}
	}},
	"Source": {component.KindStaticInjection, func(base component.Base, p, refs *reader) component.Component {
		return &topology.Source{
			Base:            base,
			Injection:       readInjection(p, refs),
			R:               p.float("r"),
			X:               p.float("x"),
			InternalVoltage: p.float("internal_voltage"),
			InternalAngle:   p.float("internal_angle"),
		}
	}},
	"PowerLoad": {component.KindStaticInjection, func(base component.Base, p, refs *reader) component.Component {
		return &topology.PowerLoad{
			Base:      base,
			Injection: readInjection(p, refs),
			Model:     topology.LoadModel(p.text("model")),
		}
	}},
}

func readArc(refs *reader) topology.Arc {
	return topology.Arc{From: refs.text("from"), To: refs.text("to")}
}

func readInjection(p, refs *reader) topology.Injection {
	return topology.Injection{
		Bus:           refs.text("bus"),
		ActivePower:   p.float("active_power"),
		ReactivePower: p.float("reactive_power"),
		BasePower:     p.float("base_power"),
	}
}

func injectionAttrs(i *topology.Injection) []attr {
	return []attr{
		num("active_power", i.ActivePower),
		num("reactive_power", i.ReactivePower),
		num("base_power", i.BasePower),
	}
}

// encodeParameters returns the parameter attributes of c in a fixed order.
func encodeParameters(c component.Component) ([]attr, error) {
	switch v := c.(type) {
	case *topology.Bus:
		return []attr{
			num("number", float64(v.Number)),
			str("bus_type", string(v.Type)),
			num("magnitude", v.Magnitude),
			num("angle", v.Angle),
			num("base_voltage", v.BaseVoltage),
		}, nil
	case *topology.Line:
		return []attr{num("r", v.R), num("x", v.X), num("b", v.B), num("rate", v.Rate)}, nil
	case *topology.Transformer2W:
		return []attr{num("r", v.R), num("x", v.X), num("rate", v.Rate), num("tap", v.Tap)}, nil
	case *topology.Generator:
		return append(injectionAttrs(&v.Injection), num("p_min", v.PMin), num("p_max", v.PMax)), nil
	case *topology.Source:
		return append(injectionAttrs(&v.Injection),
			num("r", v.R),
			num("x", v.X),
			num("internal_voltage", v.InternalVoltage),
			num("internal_angle", v.InternalAngle),
		), nil
	case *topology.PowerLoad:
		return append(injectionAttrs(&v.Injection), str("model", string(v.Model))), nil
	case *device.DynamicInjection:
		return []attr{num("frequency", v.ReferenceFrequency())}, nil
	}
	return nil, fmt.Errorf("no codec for %s", component.Label(c))
}

// encodeBlock returns the parameters of b in schema field order.
func encodeBlock(b submodel.Block) ([]attr, error) {
	obj, err := submodel.Parameters(b)
	if err != nil {
		return nil, err
	}
	s := submodel.SchemaOf(b)
	out := make([]attr, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, attr{f.Name, obj.GetAttr(f.Name)})
	}
	return out, nil
}
