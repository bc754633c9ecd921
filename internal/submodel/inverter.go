// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package submodel

// --- Converter ---

// AverageConverter is the switching-averaged voltage source converter.
type AverageConverter struct {
	RatedVoltage float64 `cty:"rated_voltage" bound:"positive"`
	RatedCurrent float64 `cty:"rated_current" bound:"positive"`
}

func (AverageConverter) Role() Role      { return Converter }
func (AverageConverter) Variant() string { return "AverageConverter" }
func (AverageConverter) sealed()         {}

// --- OuterControl ---

// VirtualInertiaQDroop combines virtual-inertia active power control with
// reactive power droop.
type VirtualInertiaQDroop struct {
	Ta float64 `cty:"ta" bound:"positive"`
	Kd float64 `cty:"kd" bound:"nonnegative"`
	Kw float64 `cty:"k_w" bound:"nonnegative"`
	Kq float64 `cty:"kq" bound:"nonnegative"`
	Wf float64 `cty:"w_f" bound:"positive"`
}

func (VirtualInertiaQDroop) Role() Role      { return OuterControl }
func (VirtualInertiaQDroop) Variant() string { return "VirtualInertiaQDroop" }
func (VirtualInertiaQDroop) sealed()         {}

// ActivePowerDroopQDroop applies droop on both active and reactive power.
type ActivePowerDroopQDroop struct {
	Rp float64 `cty:"rp" bound:"nonnegative"`
	Wz float64 `cty:"w_z" bound:"positive"`
	Kq float64 `cty:"kq" bound:"nonnegative"`
	Wf float64 `cty:"w_f" bound:"positive"`
}

func (ActivePowerDroopQDroop) Role() Role      { return OuterControl }
func (ActivePowerDroopQDroop) Variant() string { return "ActivePowerDroopQDroop" }
func (ActivePowerDroopQDroop) sealed()         {}

// --- InnerControl ---

// VoltageModeControl is the cascaded voltage and current PI controller with
// virtual impedance and active damping.
type VoltageModeControl struct {
	Kpv  float64 `cty:"kpv" bound:"nonnegative"`
	Kiv  float64 `cty:"kiv" bound:"nonnegative"`
	Kffv float64 `cty:"kffv" bound:"nonnegative"`
	Rv   float64 `cty:"rv" bound:"nonnegative"`
	Lv   float64 `cty:"lv" bound:"nonnegative"`
	Kpc  float64 `cty:"kpc" bound:"nonnegative"`
	Kic  float64 `cty:"kic" bound:"nonnegative"`
	Kffi float64 `cty:"kffi" bound:"nonnegative"`
	Wad  float64 `cty:"w_ad" bound:"positive"`
	Kad  float64 `cty:"kad" bound:"nonnegative"`
}

func (VoltageModeControl) Role() Role      { return InnerControl }
func (VoltageModeControl) Variant() string { return "VoltageModeControl" }
func (VoltageModeControl) sealed()         {}

// CurrentModeControl is a PI current controller with voltage feed-forward.
type CurrentModeControl struct {
	Kpc  float64 `cty:"kpc" bound:"nonnegative"`
	Kic  float64 `cty:"kic" bound:"nonnegative"`
	Kffv float64 `cty:"kffv" bound:"nonnegative"`
}

func (CurrentModeControl) Role() Role      { return InnerControl }
func (CurrentModeControl) Variant() string { return "CurrentModeControl" }
func (CurrentModeControl) sealed()         {}

// --- DCSource ---

// FixedDCSource is an ideal DC link.
type FixedDCSource struct {
	Voltage float64 `cty:"voltage" bound:"positive"`
}

func (FixedDCSource) Role() Role      { return DCSource }
func (FixedDCSource) Variant() string { return "FixedDCSource" }
func (FixedDCSource) sealed()         {}

// --- FrequencyEstimator ---

// KauraPLL is the synchronous-reference-frame PLL with a low-pass filter on
// the q-axis voltage.
type KauraPLL struct {
	WLp   float64 `cty:"w_lp" bound:"positive"`
	KpPLL float64 `cty:"kp_pll" bound:"nonnegative"`
	KiPLL float64 `cty:"ki_pll" bound:"nonnegative"`
}

func (KauraPLL) Role() Role      { return FrequencyEstimator }
func (KauraPLL) Variant() string { return "KauraPLL" }
func (KauraPLL) sealed()         {}

// ReducedOrderPLL drops the d-axis filter state of KauraPLL.
type ReducedOrderPLL struct {
	WLp   float64 `cty:"w_lp" bound:"positive"`
	KpPLL float64 `cty:"kp_pll" bound:"nonnegative"`
	KiPLL float64 `cty:"ki_pll" bound:"nonnegative"`
}

func (ReducedOrderPLL) Role() Role      { return FrequencyEstimator }
func (ReducedOrderPLL) Variant() string { return "ReducedOrderPLL" }
func (ReducedOrderPLL) sealed()         {}

// FixedFrequency reports a constant frequency.
type FixedFrequency struct {
	Frequency float64 `cty:"frequency" bound:"positive"`
}

func (FixedFrequency) Role() Role      { return FrequencyEstimator }
func (FixedFrequency) Variant() string { return "FixedFrequency" }
func (FixedFrequency) sealed()         {}

// --- Filter ---

// LCLFilter is the output LCL filter with dynamic inductor currents and
// capacitor voltage.
type LCLFilter struct {
	Lf float64 `cty:"lf" bound:"positive"`
	Rf float64 `cty:"rf" bound:"nonnegative"`
	Cf float64 `cty:"cf" bound:"positive"`
	Lg float64 `cty:"lg" bound:"positive"`
	Rg float64 `cty:"rg" bound:"nonnegative"`
}

func (LCLFilter) Role() Role      { return Filter }
func (LCLFilter) Variant() string { return "LCLFilter" }
func (LCLFilter) sealed()         {}

// RLFilter is a static series RL filter.
type RLFilter struct {
	Rf float64 `cty:"rf" bound:"nonnegative"`
	Lf float64 `cty:"lf" bound:"positive"`
}

func (RLFilter) Role() Role      { return Filter }
func (RLFilter) Variant() string { return "RLFilter" }
func (RLFilter) sealed()         {}

func init() {
	register(AverageConverter{}, nil, 0)

	register(VirtualInertiaQDroop{}, []string{"theta_oc", "omega_oc", "p_oc", "q_oc"}, 0)
	register(ActivePowerDroopQDroop{}, []string{"p_oc", "q_oc"}, 0)

	register(VoltageModeControl{}, []string{"xi_d_ic", "xi_q_ic", "gamma_d_ic", "gamma_q_ic", "phi_d_ic", "phi_q_ic"}, 0)
	register(CurrentModeControl{}, []string{"gamma_d_ic", "gamma_q_ic"}, 0)

	register(FixedDCSource{}, nil, 0)

	register(KauraPLL{}, []string{"vd_pll", "vq_pll", "epsilon_pll", "theta_pll"}, 0)
	register(ReducedOrderPLL{}, []string{"vq_pll", "epsilon_pll", "theta_pll"}, 0)
	register(FixedFrequency{}, nil, 0)

	register(LCLFilter{}, []string{"ir_cnv", "ii_cnv", "vr_filter", "vi_filter", "ir_filter", "ii_filter"}, 0)
	register(RLFilter{}, nil, 0)
}
