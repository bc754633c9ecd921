package registry

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dynagrid/internal/component"
	"github.com/vk/dynagrid/internal/device"
	"github.com/vk/dynagrid/internal/testutil"
	"github.com/vk/dynagrid/internal/topology"
)

func newTwoBus(t *testing.T) (*Registry, context.Context) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	r := New()
	for _, c := range testutil.TwoBus() {
		require.NoError(t, r.Add(ctx, c))
	}
	return r, ctx
}

func collectNames(seq func(func(component.Component) bool)) []string {
	var out []string
	for c := range seq {
		out = append(out, component.Name(c))
	}
	return out
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	r, _ := newTwoBus(t)

	assert.Equal(t, []string{testutil.Bus1, testutil.Bus2, testutil.Line12, testutil.InfBus, testutil.Generator}, r.Names())
	assert.Equal(t, 5, r.Len())
}

func TestAddDuplicateNameAcrossKinds(t *testing.T) {
	testCases := []struct {
		name   string
		first  component.Component
		second component.Component
	}{
		{
			name:   "bus then load",
			first:  topology.NewBus("Bus 3", 3, topology.BusPQ, 230),
			second: topology.NewPowerLoad("Bus 3", testutil.Bus1, 0.1, 0, 100),
		},
		{
			name:   "load then bus",
			first:  topology.NewPowerLoad("Bus 3", testutil.Bus1, 0.1, 0, 100),
			second: topology.NewBus("Bus 3", 3, topology.BusPQ, 230),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ctx := newTwoBus(t)
			require.NoError(t, r.Add(ctx, tc.first))

			err := r.Add(ctx, tc.second)

			require.ErrorIs(t, err, component.ErrDuplicateName)
			assert.Contains(t, err.Error(), `"Bus 3"`)
			assert.Equal(t, 6, r.Len())
		})
	}
}

func TestAddInvalidReference(t *testing.T) {
	r, ctx := newTwoBus(t)

	t.Run("missing bus", func(t *testing.T) {
		err := r.Add(ctx, topology.NewLine("2-9", testutil.Bus2, "Bus 9", 0, 0.1, 0, 100))

		require.ErrorIs(t, err, component.ErrInvalidReference)
		e, _ := component.AsError(err)
		assert.Equal(t, "2-9", e.Component)
		assert.Equal(t, "to", e.Field)
	})

	t.Run("wrong kind", func(t *testing.T) {
		err := r.Add(ctx, topology.NewPowerLoad("load", testutil.Line12, 0.1, 0, 100))

		require.ErrorIs(t, err, component.ErrInvalidReference)
		e, _ := component.AsError(err)
		assert.Equal(t, "bus", e.Field)
	})

	assert.Equal(t, 5, r.Len())
}

func TestAddRunsValidation(t *testing.T) {
	r, ctx := newTwoBus(t)
	load := topology.NewPowerLoad("load", testutil.Bus2, 0.1, 0, 0)

	err := r.Add(ctx, load)

	require.ErrorIs(t, err, component.ErrParameterRange)
	assert.Contains(t, err.Error(), "base_power")
}

func TestAddAssignsDerivedUUID(t *testing.T) {
	r, ctx := newTwoBus(t)
	load := topology.NewPowerLoad("load", testutil.Bus2, 0.1, 0, 100)
	load.UUID = uuid.Nil

	require.NoError(t, r.Add(ctx, load))

	got, err := Lookup[*topology.PowerLoad](r, "load")
	require.NoError(t, err)
	assert.Equal(t, component.DeriveUUID(component.KindStaticInjection, "load"), got.UUID)
}

func TestGet(t *testing.T) {
	r, _ := newTwoBus(t)

	c, err := r.Get(component.KindBus, testutil.Bus1)
	require.NoError(t, err)
	assert.Equal(t, topology.BusREF, c.(*topology.Bus).Type)

	_, err = r.Get(component.KindAny, testutil.Line12)
	require.NoError(t, err)

	_, err = r.Get(component.KindBranch, testutil.Bus1)
	require.ErrorIs(t, err, component.ErrNotFound)

	_, err = r.Get(component.KindAny, "nope")
	require.ErrorIs(t, err, component.ErrNotFound)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestGetReturnsClone(t *testing.T) {
	r, _ := newTwoBus(t)

	c, err := r.Get(component.KindBus, testutil.Bus1)
	require.NoError(t, err)
	c.(*topology.Bus).Magnitude = 0.5

	again, _ := Lookup[*topology.Bus](r, testutil.Bus1)
	assert.Equal(t, 1.0, again.Magnitude)
}

func TestLookupTypeMismatch(t *testing.T) {
	r, _ := newTwoBus(t)

	_, err := Lookup[*topology.Generator](r, testutil.InfBus)

	require.ErrorIs(t, err, component.ErrTypeMismatch)
}

func TestRemoveReferentialIntegrity(t *testing.T) {
	r, ctx := newTwoBus(t)

	err := r.Remove(ctx, testutil.Bus1)

	require.ErrorIs(t, err, component.ErrReferentialIntegrity)
	assert.Contains(t, err.Error(), testutil.Line12)
	assert.Equal(t, 5, r.Len())
	_, err = r.Get(component.KindBus, testutil.Bus1)
	require.NoError(t, err)
}

func TestRemove(t *testing.T) {
	r, ctx := newTwoBus(t)

	require.NoError(t, r.Remove(ctx, testutil.InfBus))
	require.NoError(t, r.Remove(ctx, testutil.Line12))

	assert.Empty(t, r.Referrers(testutil.Bus1))
	require.NoError(t, r.Remove(ctx, testutil.Bus1))
	assert.Equal(t, []string{testutil.Bus2, testutil.Generator}, r.Names())

	err := r.Remove(ctx, testutil.Bus1)
	require.ErrorIs(t, err, component.ErrNotFound)
}

func TestIterate(t *testing.T) {
	r, ctx := newTwoBus(t)

	buses := collectNames(r.Iterate(component.KindBus, nil))
	assert.Equal(t, []string{testutil.Bus1, testutil.Bus2}, buses)

	atBus1 := r.Iterate(component.KindStaticInjection, func(c component.Component) bool {
		return c.(topology.StaticInjection).Terminal().Bus == testutil.Bus1
	})
	assert.Equal(t, []string{testutil.InfBus}, collectNames(atBus1))

	t.Run("restartable", func(t *testing.T) {
		seq := r.Iterate(component.KindAny, nil)
		assert.Equal(t, collectNames(seq), collectNames(seq))
	})

	t.Run("snapshot per range", func(t *testing.T) {
		seq := r.Iterate(component.KindAny, nil)
		var seen []string
		for c := range seq {
			seen = append(seen, component.Name(c))
			if len(seen) == 1 {
				require.NoError(t, r.Add(ctx, topology.NewBus("Bus 3", 3, topology.BusPQ, 230)))
			}
		}
		assert.Len(t, seen, 5)
		assert.Len(t, collectNames(seq), 6)
	})

	t.Run("early stop", func(t *testing.T) {
		for range r.Iterate(component.KindAny, nil) {
			break
		}
	})
}

func TestUpdateRollsBack(t *testing.T) {
	// --- Arrange ---
	r, ctx := newTwoBus(t)
	before := r.Snapshot()

	// --- Act ---
	err := r.Update(ctx, func(tx *Tx) error {
		if err := tx.Add(topology.NewBus("Bus 3", 3, topology.BusPQ, 230)); err != nil {
			return err
		}
		if err := tx.Add(topology.NewLine("2-3", testutil.Bus2, "Bus 3", 0, 0.1, 0, 100)); err != nil {
			return err
		}
		if err := tx.Remove(testutil.InfBus); err != nil {
			return err
		}
		return tx.Add(topology.NewLine("3-9", "Bus 3", "Bus 9", 0, 0.1, 0, 100))
	})

	// --- Assert ---
	require.ErrorIs(t, err, component.ErrInvalidReference)
	assert.Equal(t, before.Names(), r.Names())
	assert.Equal(t, []string{testutil.Line12, testutil.Generator}, r.Referrers(testutil.Bus2))
	assert.Equal(t, []string{testutil.Line12, testutil.InfBus}, r.Referrers(testutil.Bus1))
	for _, name := range before.Names() {
		want, _ := before.Get(component.KindAny, name)
		got, _ := r.Get(component.KindAny, name)
		assert.Equal(t, want, got)
	}
}

func TestReplace(t *testing.T) {
	r, ctx := newTwoBus(t)
	bus := topology.NewBus(testutil.Bus2, 2, topology.BusPQ, 230)

	require.NoError(t, r.Replace(ctx, bus))

	got, _ := Lookup[*topology.Bus](r, testutil.Bus2)
	assert.Equal(t, topology.BusPQ, got.Type)
	assert.Equal(t, []string{testutil.Bus1, testutil.Bus2, testutil.Line12, testutil.InfBus, testutil.Generator}, r.Names())

	err := r.Replace(ctx, topology.NewPowerLoad(testutil.Bus1, testutil.Bus2, 0, 0, 100))
	require.ErrorIs(t, err, component.ErrTypeMismatch)

	err = r.Replace(ctx, topology.NewBus("Bus 9", 9, topology.BusPQ, 230))
	require.ErrorIs(t, err, component.ErrNotFound)
}

func TestReplaceRechecksReferrers(t *testing.T) {
	// --- Arrange ---
	r, ctx := newTwoBus(t)
	dev, err := device.Compose(device.Generator, "gen-dyn", 60, testutil.GeneratorBlocks())
	require.NoError(t, err)
	require.NoError(t, r.Add(ctx, dev.WithStatic(testutil.Generator)))
	before, _ := r.Get(component.KindAny, testutil.Generator)

	// --- Act ---
	err = r.Replace(ctx, topology.NewSource(testutil.Generator, testutil.Bus2, 0, 0.1, 100))

	// --- Assert ---
	require.ErrorIs(t, err, component.ErrTypeMismatch)
	e, _ := component.AsError(err)
	assert.Equal(t, "gen-dyn", e.Component)
	after, _ := r.Get(component.KindAny, testutil.Generator)
	assert.Equal(t, before, after)
	holder, ok := r.Holder("static_injection", testutil.Generator)
	require.True(t, ok)
	assert.Equal(t, "gen-dyn", holder)

	gen := topology.NewGenerator(testutil.Generator, testutil.Bus2, 0.5, 0, 100)
	require.NoError(t, r.Replace(ctx, gen))
}

func TestExclusiveReference(t *testing.T) {
	r, ctx := newTwoBus(t)
	devA, err := device.Compose(device.Generator, "dev-a", 60, testutil.GeneratorBlocks())
	require.NoError(t, err)
	devB, err := device.Compose(device.Generator, "dev-b", 60, testutil.GeneratorBlocks())
	require.NoError(t, err)

	require.NoError(t, r.Add(ctx, devA.WithStatic(testutil.Generator)))
	err = r.Add(ctx, devB.WithStatic(testutil.Generator))

	require.ErrorIs(t, err, component.ErrAlreadyAttached)
	holder, ok := r.Holder("static_injection", testutil.Generator)
	require.True(t, ok)
	assert.Equal(t, "dev-a", holder)

	err = r.Remove(ctx, testutil.Generator)
	require.ErrorIs(t, err, component.ErrReferentialIntegrity)

	require.NoError(t, r.Remove(ctx, "dev-a"))
	_, ok = r.Holder("static_injection", testutil.Generator)
	assert.False(t, ok)
	require.NoError(t, r.Add(ctx, devB.WithStatic(testutil.Generator)))
}

func TestAddChecksAttachmentCompatibility(t *testing.T) {
	r, ctx := newTwoBus(t)
	dev, err := device.Compose(device.Inverter, "inv", 60, testutil.InverterBlocks())
	require.NoError(t, err)

	err = r.Add(ctx, dev.WithStatic(testutil.InfBus))

	require.ErrorIs(t, err, component.ErrTypeMismatch)
	e, _ := component.AsError(err)
	assert.Equal(t, "inv", e.Component)
}

func TestLoadAllowsForwardReferences(t *testing.T) {
	ctx, _ := testutil.Context(t)
	comps := testutil.TwoBus()
	slices.Reverse(comps)
	r := New()

	require.NoError(t, r.Load(ctx, comps))

	assert.Equal(t, []string{testutil.Generator, testutil.InfBus, testutil.Line12, testutil.Bus2, testutil.Bus1}, r.Names())
	assert.Equal(t, []string{testutil.InfBus, testutil.Line12}, r.Referrers(testutil.Bus1))
}

func TestLoadFailsAtomically(t *testing.T) {
	ctx, _ := testutil.Context(t)
	comps := append(testutil.TwoBus(), topology.NewPowerLoad("load", "Bus 9", 0.1, 0, 100))
	r := New()

	err := r.Load(ctx, comps)

	require.ErrorIs(t, err, component.ErrInvalidReference)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Referrers(testutil.Bus1))

	dup := append(testutil.TwoBus(), topology.NewBus(testutil.Bus1, 7, topology.BusPQ, 230))
	err = r.Load(ctx, dup)
	require.ErrorIs(t, err, component.ErrDuplicateName)
}

func TestSnapshotIsImmutable(t *testing.T) {
	r, ctx := newTwoBus(t)
	snap := r.Snapshot()

	require.NoError(t, r.Remove(ctx, testutil.InfBus))

	assert.Equal(t, 5, snap.Len())
	_, err := snap.Get(component.KindStaticInjection, testutil.InfBus)
	require.NoError(t, err)
	assert.Len(t, collectNames(snap.Iterate(component.KindStaticInjection, nil)), 2)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	r, ctx := newTwoBus(t)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			name := "load-" + strings.Repeat("x", i+1)
			if err := r.Add(ctx, topology.NewPowerLoad(name, testutil.Bus2, 0.1, 0, 100)); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			for c := range r.Iterate(component.KindAny, nil) {
				if c.Meta().Name == "" {
					t.Error(errors.New("empty name observed"))
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 13, r.Len())
}

func TestLogsMutations(t *testing.T) {
	ctx, logs := testutil.Context(t)
	r := New()

	require.NoError(t, r.Add(ctx, topology.NewBus("Bus 1", 1, topology.BusREF, 230)))

	assert.Contains(t, logs.String(), "Component added")
	assert.Contains(t, logs.String(), `name="Bus 1"`)
}
