// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/submodel"
	"github.com/vk/dynagrid/internal/topology"
)

// Fixture names of the two-bus system.
const (
	Bus1      = "Bus 1"
	Bus2      = "Bus 2"
	Line12    = "Bus 1-Bus 2-i_1"
	InfBus    = "InfBus"
	Generator = "gen-2-1"
)

// TwoBus returns the components of a two-bus system in dependency order:
// a REF bus and a PV bus joined by a line, an infinite-bus source on bus 1
// and a generator on bus 2.
func TwoBus() []component.Component {
	return []component.Component{
		topology.NewBus(Bus1, 1, topology.BusREF, 230),
		topology.NewBus(Bus2, 2, topology.BusPV, 230),
		topology.NewLine(Line12, Bus1, Bus2, 0.01, 0.05, 0.02, 100),
		topology.NewSource(InfBus, Bus1, 0, 5e-6, 100),
		topology.NewGenerator(Generator, Bus2, 0.5, 0.1, 100),
	}
}

// GeneratorStates is the state dimension of GeneratorBlocks.
const GeneratorStates = 6

// GeneratorBlocks returns a valid machine block set: a one-d-one-q machine (2
// states), a single-mass shaft (2), a simple AVR (1), a type II governor (1)
// and a fixed PSS (0).
func GeneratorBlocks() map[submodel.Role]submodel.Block {
	return map[submodel.Role]submodel.Block{
		submodel.Machine: submodel.OneDOneQMachine{
			R: 0, Xd: 1.3125, Xq: 1.2578, XdP: 0.1813, XqP: 0.25, Td0P: 5.89, Tq0P: 0.6,
		},
		submodel.Shaft:    submodel.SingleMass{H: 3.148, D: 2.0},
		submodel.AVR:      submodel.AVRSimple{Kv: 10},
		submodel.Governor: submodel.TGTypeII{R: 0.05, T1: 1.0, T2: 2.0, TauMin: 0.1, TauMax: 1.5},
		submodel.PSS:      submodel.PSSFixed{Vs: 0},
	}
}

// InverterStates is the state dimension of InverterBlocks.
const InverterStates = 20

// InverterBlocks returns a valid grid-forming inverter block set.
func InverterBlocks() map[submodel.Role]submodel.Block {
	return map[submodel.Role]submodel.Block{
		submodel.Converter:    submodel.AverageConverter{RatedVoltage: 690, RatedCurrent: 2.75},
		submodel.OuterControl: submodel.VirtualInertiaQDroop{Ta: 2.0, Kd: 400, Kw: 20, Kq: 0.2, Wf: 1000},
		submodel.InnerControl: submodel.VoltageModeControl{
			Kpv: 0.59, Kiv: 736, Kffv: 0, Rv: 0, Lv: 0.2, Kpc: 1.27, Kic: 14.3, Kffi: 0, Wad: 50, Kad: 0.2,
		},
		submodel.DCSource:           submodel.FixedDCSource{Voltage: 600},
		submodel.FrequencyEstimator: submodel.KauraPLL{WLp: 500, KpPLL: 0.084, KiPLL: 4.69},
		submodel.Filter:             submodel.LCLFilter{Lf: 0.08, Rf: 0.003, Cf: 0.074, Lg: 0.2, Rg: 0.01},
	}
}
