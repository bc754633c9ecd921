package topology

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynagrid/internal/component"
)

func TestBusValidate(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(b *Bus)
		wantField string
	}{
		{name: "valid", mutate: func(*Bus) {}},
		{name: "empty name", mutate: func(b *Bus) { b.Name = "" }, wantField: "name"},
		{name: "zero number", mutate: func(b *Bus) { b.Number = 0 }, wantField: "number"},
		{name: "unknown type", mutate: func(b *Bus) { b.Type = "SLACK" }, wantField: "bus_type"},
		{name: "negative magnitude", mutate: func(b *Bus) { b.Magnitude = -1 }, wantField: "magnitude"},
		{name: "nan angle", mutate: func(b *Bus) { b.Angle = math.NaN() }, wantField: "angle"},
		{name: "zero base voltage", mutate: func(b *Bus) { b.BaseVoltage = 0 }, wantField: "base_voltage"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBus("Bus 1", 1, BusREF, 230)
			tc.mutate(b)

			err := b.Validate()

			if tc.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, component.ErrParameterRange)
			e, ok := component.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tc.wantField, e.Field)
		})
	}
}

func TestBranchEndpointsMustDiffer(t *testing.T) {
	l := NewLine("loop", "Bus 1", "Bus 1", 0, 0.1, 0, 100)

	err := l.Validate()

	require.ErrorIs(t, err, component.ErrInvalidReference)
	assert.Contains(t, err.Error(), `"loop"`)
}

func TestBranchReferences(t *testing.T) {
	tr := NewTransformer2W("T1", "Bus 1", "Bus 2", 0, 0.05, 100)
	require.NoError(t, tr.Validate())

	refs := tr.References()

	require.Len(t, refs, 2)
	assert.Equal(t, component.Reference{Field: "from", Kind: component.KindBus, Name: "Bus 1"}, refs[0])
	assert.Equal(t, component.Reference{Field: "to", Kind: component.KindBus, Name: "Bus 2"}, refs[1])
}

func TestTransformerTapMustBePositive(t *testing.T) {
	tr := NewTransformer2W("T1", "Bus 1", "Bus 2", 0, 0.05, 100)
	tr.Tap = 0

	err := tr.Validate()

	require.ErrorIs(t, err, component.ErrParameterRange)
}

func TestGeneratorLimits(t *testing.T) {
	g := NewGenerator("gen-2-1", "Bus 2", 1.0, 0, 100)
	require.NoError(t, g.Validate())

	g.ActivePower = 1.5
	err := g.Validate()
	require.ErrorIs(t, err, component.ErrParameterRange)
	e, _ := component.AsError(err)
	assert.Equal(t, "active_power", e.Field)

	g.PMin, g.PMax = 2, 1
	err = g.Validate()
	require.ErrorIs(t, err, component.ErrParameterRange)
	e, _ = component.AsError(err)
	assert.Equal(t, "p_min", e.Field)
}

func TestInjectionRequiresBus(t *testing.T) {
	l := NewPowerLoad("load", "", 0.5, 0.1, 100)

	err := l.Validate()

	require.True(t, errors.Is(err, component.ErrInvalidReference))
}

func TestSourceAndLoadValidate(t *testing.T) {
	s := NewSource("InfBus", "Bus 1", 0, 5e-6, 100)
	require.NoError(t, s.Validate())
	s.X = -1
	require.ErrorIs(t, s.Validate(), component.ErrParameterRange)

	l := NewPowerLoad("load", "Bus 2", 0.5, 0.1, 100)
	require.NoError(t, l.Validate())
	l.Model = "ZIP"
	require.ErrorIs(t, l.Validate(), component.ErrParameterRange)
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGenerator("gen", "Bus 2", 1, 0, 100)

	cp := g.Clone().(*Generator)
	cp.ActivePower = 0.2
	cp.Bus = "Bus 9"

	assert.Equal(t, 1.0, g.ActivePower)
	assert.Equal(t, "Bus 2", g.Bus)
}

func TestNetworkQueries(t *testing.T) {
	// --- Arrange ---
	b1 := NewBus("Bus 1", 1, BusREF, 230)
	b2 := NewBus("Bus 2", 2, BusPV, 230)
	b3 := NewBus("Bus 3", 3, BusPQ, 230)
	line := NewLine("1-2", "Bus 1", "Bus 2", 0, 0.1, 0, 100)
	src := NewSource("InfBus", "Bus 1", 0, 5e-6, 100)
	gen := NewGenerator("gen-2-1", "Bus 2", 1, 0, 100)
	comps := []component.Component{b1, b2, b3, line, src, gen}

	// --- Act ---
	n := NewNetwork(slices.Values(comps))

	// --- Assert ---
	assert.Equal(t, 1, n.Degree("Bus 1"))
	assert.Equal(t, 1, n.Degree("Bus 2"))
	assert.Equal(t, 0, n.Degree("Bus 3"))
	assert.Equal(t, []Branch{line}, n.BranchesAt("Bus 2"))
	assert.Equal(t, []StaticInjection{src}, n.InjectionsAt("Bus 1"))
	assert.Equal(t, []*Bus{b3}, n.OrphanBuses())
	assert.Len(t, n.Buses(), 3)
}

func TestIslandsIgnoreUnavailableBranches(t *testing.T) {
	b1 := NewBus("Bus 1", 1, BusREF, 230)
	b2 := NewBus("Bus 2", 2, BusPV, 230)
	b3 := NewBus("Bus 3", 3, BusPQ, 230)
	l12 := NewLine("1-2", "Bus 1", "Bus 2", 0, 0.1, 0, 100)
	l23 := NewLine("2-3", "Bus 2", "Bus 3", 0, 0.1, 0, 100)
	l23.Available = false

	n := NewNetwork(slices.Values([]component.Component{b1, b2, b3, l12, l23}))
	islands := n.Islands()

	require.Len(t, islands, 2)
	assert.Equal(t, []string{"Bus 1", "Bus 2"}, islands[0].Names())
	assert.Equal(t, []string{"Bus 3"}, islands[1].Names())
	assert.Equal(t, 2, n.Degree("Bus 2"), "degree counts unavailable branches")
}

func TestValidateConnectivity(t *testing.T) {
	testCases := []struct {
		name       string
		types      [3]BusType
		wantIssues []string
	}{
		{
			name:  "one reference per island",
			types: [3]BusType{BusREF, BusPV, BusREF},
		},
		{
			name:       "island without reference",
			types:      [3]BusType{BusREF, BusPV, BusPQ},
			wantIssues: []string{"island [Bus 3]: no reference bus"},
		},
		{
			name:       "two references in one island",
			types:      [3]BusType{BusREF, BusREF, BusREF},
			wantIssues: []string{"island [Bus 1, Bus 2]: 2 reference buses (Bus 1, Bus 2)"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			comps := []component.Component{
				NewBus("Bus 1", 1, tc.types[0], 230),
				NewBus("Bus 2", 2, tc.types[1], 230),
				NewBus("Bus 3", 3, tc.types[2], 230),
				NewLine("1-2", "Bus 1", "Bus 2", 0, 0.1, 0, 100),
			}

			report := NewNetwork(slices.Values(comps)).ValidateConnectivity()

			var got []string
			for _, issue := range report.Issues {
				got = append(got, issue.String())
			}
			assert.Equal(t, tc.wantIssues, got)
			assert.Equal(t, len(tc.wantIssues) == 0, report.OK())
			assert.Len(t, report.Islands, 2)
		})
	}
}
