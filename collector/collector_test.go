package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/isolate"
)

func newTestIsolate(t *testing.T) *isolate.Isolate {
	t.Helper()
	iso, err := isolate.New(isolate.IsolateOptions{})
	require.NoError(t, err)
	return iso
}

func TestCollectorIdleCycleReturnsFree(t *testing.T) {
	iso := newTestIsolate(t)
	c := NewCollector(iso)

	require.Equal(t, Free, c.State())
	require.NoError(t, c.RequestToCollect())
	require.Equal(t, Free, c.State())
}

func TestCollectorSweepsUnreachableValues(t *testing.T) {
	iso := newTestIsolate(t)
	c := NewCollector(iso)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	garbage, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(garbage))

	alive, err := iso.IsDirectValueAlive(garbage)
	require.NoError(t, err)
	require.True(t, alive)

	require.NoError(t, c.RequestToCollect())

	alive, err = iso.IsDirectValueAlive(garbage)
	require.NoError(t, err)
	require.False(t, alive)
}

func TestCollectorKeepsRootedValues(t *testing.T) {
	iso := newTestIsolate(t)
	c := NewCollector(iso)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(value))

	r, err := iso.AddRoot(value)
	require.NoError(t, err)

	require.NoError(t, c.RequestToCollect())

	alive, err := iso.IsDirectValueAlive(value)
	require.NoError(t, err)
	require.True(t, alive)

	require.NoError(t, iso.RemoveRoot(r))
	require.NoError(t, c.RequestToCollect())

	alive, err = iso.IsDirectValueAlive(value)
	require.NoError(t, err)
	require.False(t, alive)
}

func TestCollectorKeepsValuesReachableFromARoot(t *testing.T) {
	iso := newTestIsolate(t)
	c := NewCollector(iso)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	parent, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(parent))

	child, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(child))

	symbol := iso.GetTextSymbol("test", "child")
	require.NoError(t, iso.SetOwnProperty(parent, symbol, child))
	require.NoError(t, iso.AddValueReference(parent, child))

	_, err = iso.AddRoot(parent)
	require.NoError(t, err)

	require.NoError(t, c.RequestToCollect())

	alive, err := iso.IsDirectValueAlive(child)
	require.NoError(t, err)
	require.True(t, alive)
}

func TestCollectorStats(t *testing.T) {
	iso := newTestIsolate(t)
	c := NewCollector(iso)

	stats := c.Stats()
	require.Equal(t, Free, stats.State)
	require.Equal(t, 0, stats.GrayQueueDepth)
	require.Zero(t, stats.LastCycleDuration)

	require.NoError(t, c.RequestToCollect())
	stats = c.Stats()
	require.Equal(t, Free, stats.State)
	require.GreaterOrEqual(t, stats.LastCycleDuration, time.Duration(0))
}

func TestCollectorStateStringer(t *testing.T) {
	require.Equal(t, "marking-grays", MarkingGrays.String())
	require.Contains(t, State(99).String(), "State(99)")
}
