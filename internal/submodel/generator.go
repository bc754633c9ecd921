// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package submodel

// --- Machine ---

// BaseMachine is the classical constant-voltage-behind-reactance machine.
type BaseMachine struct {
	R   float64 `cty:"r" bound:"nonnegative"`
	XdP float64 `cty:"xd_p" bound:"positive"`
	EqP float64 `cty:"eq_p" bound:"finite"`
}

func (BaseMachine) Role() Role      { return Machine }
func (BaseMachine) Variant() string { return "BaseMachine" }
func (BaseMachine) sealed()         {}

// OneDOneQMachine models one transient circuit on each axis.
type OneDOneQMachine struct {
	R    float64 `cty:"r" bound:"nonnegative"`
	Xd   float64 `cty:"xd" bound:"positive"`
	Xq   float64 `cty:"xq" bound:"positive"`
	XdP  float64 `cty:"xd_p" bound:"positive"`
	XqP  float64 `cty:"xq_p" bound:"positive"`
	Td0P float64 `cty:"td0_p" bound:"positive"`
	Tq0P float64 `cty:"tq0_p" bound:"positive"`
}

func (OneDOneQMachine) Role() Role      { return Machine }
func (OneDOneQMachine) Variant() string { return "OneDOneQMachine" }
func (OneDOneQMachine) sealed()         {}

// RoundRotorMachine is the subtransient round-rotor (GENROU-style) model.
type RoundRotorMachine struct {
	R     float64 `cty:"r" bound:"nonnegative"`
	Td0P  float64 `cty:"td0_p" bound:"positive"`
	Td0PP float64 `cty:"td0_pp" bound:"positive"`
	Tq0P  float64 `cty:"tq0_p" bound:"positive"`
	Tq0PP float64 `cty:"tq0_pp" bound:"positive"`
	Xd    float64 `cty:"xd" bound:"positive"`
	Xq    float64 `cty:"xq" bound:"positive"`
	XdP   float64 `cty:"xd_p" bound:"positive"`
	XqP   float64 `cty:"xq_p" bound:"positive"`
	XdPP  float64 `cty:"xd_pp" bound:"positive"`
	Xl    float64 `cty:"xl" bound:"positive"`
	Se1   float64 `cty:"se_1" bound:"nonnegative"`
	Se12  float64 `cty:"se_12" bound:"nonnegative"`
}

func (RoundRotorMachine) Role() Role      { return Machine }
func (RoundRotorMachine) Variant() string { return "RoundRotorMachine" }
func (RoundRotorMachine) sealed()         {}

// --- Shaft ---

// SingleMass is the swing equation with one lumped inertia.
type SingleMass struct {
	H float64 `cty:"h" bound:"positive"`
	D float64 `cty:"d" bound:"nonnegative"`
}

func (SingleMass) Role() Role      { return Shaft }
func (SingleMass) Variant() string { return "SingleMass" }
func (SingleMass) sealed()         {}

// --- AVR ---

// AVRFixed holds the field voltage constant.
type AVRFixed struct {
	Vf float64 `cty:"vf" bound:"finite"`
}

func (AVRFixed) Role() Role      { return AVR }
func (AVRFixed) Variant() string { return "AVRFixed" }
func (AVRFixed) sealed()         {}

// AVRSimple is a pure integrator on the voltage error.
type AVRSimple struct {
	Kv float64 `cty:"kv" bound:"positive"`
}

func (AVRSimple) Role() Role      { return AVR }
func (AVRSimple) Variant() string { return "AVRSimple" }
func (AVRSimple) sealed()         {}

// AVRTypeI is the IEEE Type I exciter with rate feedback and saturation.
type AVRTypeI struct {
	Ka    float64 `cty:"ka" bound:"positive"`
	Ke    float64 `cty:"ke" bound:"finite"`
	Kf    float64 `cty:"kf" bound:"nonnegative"`
	Ta    float64 `cty:"ta" bound:"positive"`
	Te    float64 `cty:"te" bound:"positive"`
	Tf    float64 `cty:"tf" bound:"positive"`
	Tr    float64 `cty:"tr" bound:"positive"`
	VrMin float64 `cty:"vr_min" bound:"finite"`
	VrMax float64 `cty:"vr_max" bound:"finite"`
	Ae    float64 `cty:"ae" bound:"nonnegative"`
	Be    float64 `cty:"be" bound:"nonnegative"`
}

func (AVRTypeI) Role() Role      { return AVR }
func (AVRTypeI) Variant() string { return "AVRTypeI" }
func (AVRTypeI) sealed()         {}

// --- Governor ---

// TGFixed delivers a constant fraction of the mechanical power reference.
type TGFixed struct {
	Efficiency float64 `cty:"efficiency" bound:"unit"`
}

func (TGFixed) Role() Role      { return Governor }
func (TGFixed) Variant() string { return "TGFixed" }
func (TGFixed) sealed()         {}

// TGTypeI is a steam turbine governor with servo, reheat and power limits.
type TGTypeI struct {
	R    float64 `cty:"r" bound:"positive"`
	Ts   float64 `cty:"ts" bound:"positive"`
	Tc   float64 `cty:"tc" bound:"positive"`
	T3   float64 `cty:"t3" bound:"positive"`
	T4   float64 `cty:"t4" bound:"nonnegative"`
	T5   float64 `cty:"t5" bound:"positive"`
	PMin float64 `cty:"p_min" bound:"finite"`
	PMax float64 `cty:"p_max" bound:"finite"`
}

func (TGTypeI) Role() Role      { return Governor }
func (TGTypeI) Variant() string { return "TGTypeI" }
func (TGTypeI) sealed()         {}

// TGTypeII is a first-order lead-lag governor with torque limits.
type TGTypeII struct {
	R      float64 `cty:"r" bound:"positive"`
	T1     float64 `cty:"t1" bound:"nonnegative"`
	T2     float64 `cty:"t2" bound:"positive"`
	TauMin float64 `cty:"tau_min" bound:"finite"`
	TauMax float64 `cty:"tau_max" bound:"finite"`
}

func (TGTypeII) Role() Role      { return Governor }
func (TGTypeII) Variant() string { return "TGTypeII" }
func (TGTypeII) sealed()         {}

// --- PSS ---

// PSSFixed injects a constant stabilizing signal.
type PSSFixed struct {
	Vs float64 `cty:"vs" bound:"finite"`
}

func (PSSFixed) Role() Role      { return PSS }
func (PSSFixed) Variant() string { return "PSSFixed" }
func (PSSFixed) sealed()         {}

// PSSSimple is a proportional stabilizer on speed and power deviation.
type PSSSimple struct {
	Kw float64 `cty:"k_w" bound:"finite"`
	Kp float64 `cty:"k_p" bound:"finite"`
}

func (PSSSimple) Role() Role      { return PSS }
func (PSSSimple) Variant() string { return "PSSSimple" }
func (PSSSimple) sealed()         {}

func init() {
	register(BaseMachine{}, nil, 2)
	register(OneDOneQMachine{}, []string{"eq_p", "ed_p"}, 2)
	register(RoundRotorMachine{}, []string{"eq_p", "ed_p", "psi_kd", "psi_kq"}, 2)

	register(SingleMass{}, []string{"delta", "omega"}, 0)

	register(AVRFixed{}, nil, 0)
	register(AVRSimple{}, []string{"vf"}, 0)
	register(AVRTypeI{}, []string{"vf", "vr1", "vr2", "vm"}, 0, [2]string{"vr_min", "vr_max"})

	register(TGFixed{}, nil, 0)
	register(TGTypeI{}, []string{"x_g1", "x_g2", "x_g3"}, 0, [2]string{"p_min", "p_max"})
	register(TGTypeII{}, []string{"x_g"}, 0, [2]string{"tau_min", "tau_max"})

	register(PSSFixed{}, nil, 0)
	register(PSSSimple{}, nil, 0)
}
