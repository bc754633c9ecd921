package system

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/submodel"
	"github.com/vk/dynagrid/internal/testutil"
	"github.com/vk/dynagrid/internal/topology"
)

func newDocument(t *testing.T) (*Document, context.Context) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	doc, err := New(100, 60)
	require.NoError(t, err)
	for _, c := range testutil.TwoBus() {
		require.NoError(t, doc.Add(ctx, c))
	}
	return doc, ctx
}

func TestNewRejectsInvalidBases(t *testing.T) {
	for _, tc := range []struct {
		name      string
		power     float64
		frequency float64
		field     string
	}{
		{name: "zero power", power: 0, frequency: 60, field: "base_power"},
		{name: "nan frequency", power: 100, frequency: math.NaN(), field: "base_frequency"},
		{name: "infinite power", power: math.Inf(1), frequency: 60, field: "base_power"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.power, tc.frequency)

			require.ErrorIs(t, err, component.ErrParameterRange)
			e, _ := component.AsError(err)
			assert.Equal(t, tc.field, e.Field)
		})
	}
}

func TestFreezeIsolatesConsumers(t *testing.T) {
	doc, ctx := newDocument(t)

	frozen := doc.Freeze()
	require.NoError(t, doc.Add(ctx, topology.NewBus("Bus 3", 3, topology.BusPQ, 230)))

	assert.Equal(t, 5, frozen.Components.Len())
	assert.Len(t, frozen.Network().Buses(), 2)
	assert.Len(t, doc.Network().Buses(), 3)
	assert.Equal(t, 100.0, frozen.BasePower)
}

func TestValidateConnectivityIsAdvisory(t *testing.T) {
	doc, ctx := newDocument(t)
	require.True(t, doc.ValidateConnectivity().OK())

	require.NoError(t, doc.Add(ctx, topology.NewBus("Bus 3", 3, topology.BusPQ, 230)))

	report := doc.ValidateConnectivity()
	assert.False(t, report.OK())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, []string{"Bus 3"}, report.Issues[0].Island.Names())
}

func TestReplaceBlock(t *testing.T) {
	doc, ctx := newDocument(t)
	dev, err := device.Compose(device.Generator, "dyn", 60, testutil.GeneratorBlocks())
	require.NoError(t, err)
	require.NoError(t, doc.Add(ctx, dev.WithStatic(testutil.Generator)))

	require.NoError(t, doc.ReplaceBlock(ctx, "dyn", submodel.AVRFixed{Vf: 1.05}))

	devices := doc.DynamicDevices()
	require.Len(t, devices, 1)
	assert.Equal(t, testutil.GeneratorStates-1, devices[0].StateDimension())
	assert.Equal(t, testutil.Generator, devices[0].Static())

	err = doc.ReplaceBlock(ctx, "dyn", submodel.AVRFixed{Vf: math.Inf(1)})
	require.ErrorIs(t, err, component.ErrParameterRange)
	avr, _ := doc.DynamicDevices()[0].Block(submodel.AVR)
	assert.Equal(t, submodel.AVRFixed{Vf: 1.05}, avr)

	err = doc.ReplaceBlock(ctx, testutil.Bus1, submodel.AVRFixed{Vf: 1})
	require.ErrorIs(t, err, component.ErrNotFound)
}

func TestEqual(t *testing.T) {
	a, _ := newDocument(t)
	b, ctx := newDocument(t)
	assert.True(t, Equal(a, b))

	require.NoError(t, b.Registry().Replace(ctx, topology.NewBus(testutil.Bus2, 2, topology.BusPQ, 230)))
	assert.False(t, Equal(a, b))

	c, err := New(50, 60)
	require.NoError(t, err)
	empty, err := New(100, 60)
	require.NoError(t, err)
	assert.False(t, Equal(c, empty))
}
