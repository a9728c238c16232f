package isolate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragonation/rogiso-go/base"
)

func TestIsolateCreation(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, iso.IsolateID())
	require.Len(t, iso.ListBuiltins(), 8)
}

func TestLoadOptions(t *testing.T) {
	options, err := LoadOptions([]byte("refragmentRatio: 0.25\n"))
	require.NoError(t, err)
	require.Equal(t, 0.25, options.RefragmentRatio)

	_, err = LoadOptions([]byte("refragmentRatio: [not, a, number]\n"))
	require.Error(t, err)
}

func TestIsolateTextSymbol(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	test2 := iso.GetTextSymbol("test", "test2")
	test22 := iso.GetTextSymbol("test", "test2")
	test23 := iso.GetTextSymbol("test", "test3")
	test3 := iso.GetTextSymbol("test2", "test3")

	require.Equal(t, test2, test22)
	require.NotEqual(t, test2, test23)
	require.NotEqual(t, test2, test3)
	require.NotEqual(t, test23, test3)

	info, err := iso.ResolveSymbolInfo(test2)
	require.NoError(t, err)
	require.Equal(t, "test", info.Scope)

	require.Error(t, iso.RecycleSymbol(test2))
	require.NoError(t, iso.AddSymbolReference(test2))
	require.Error(t, iso.RecycleSymbol(test2))
	require.NoError(t, iso.RemoveSymbolReference(test2))
	require.NoError(t, iso.RecycleSymbol(test2))
}

func TestIsolateValueSymbol(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	test2 := iso.GetValueSymbol("test", base.MakeNull())
	test22 := iso.GetValueSymbol("test", base.MakeNull())
	test23 := iso.GetValueSymbol("test", base.MakeFloat(4))
	test3 := iso.GetValueSymbol("test2", base.MakeFloat(4))

	require.Equal(t, test2, test22)
	require.NotEqual(t, test2, test23)
	require.NotEqual(t, test2, test3)
	require.NotEqual(t, test23, test3)

	require.Error(t, iso.RecycleSymbol(test2))
	require.NoError(t, iso.AddSymbolReference(test2))
	require.Error(t, iso.RecycleSymbol(test2))
	require.NoError(t, iso.RemoveSymbolReference(test2))
	require.NoError(t, iso.RecycleSymbol(test2))
}

func TestIsolateRegionManagement(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	// region 0 is reserved for builtins by the constructor's bootstrap pass.
	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.Equal(t, uint32(1), regionID)

	require.Error(t, iso.RecycleRegion(regionID))

	require.NoError(t, iso.UnprotectRegion(regionID))
	require.NoError(t, iso.RecycleRegion(regionID))

	regionID, err = iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))
	require.Equal(t, uint32(2), regionID)

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)

	require.Error(t, iso.RecycleRegion(regionID))

	require.NoError(t, iso.MoveValueOutFromNursery(value))
	require.NoError(t, iso.RecycleSlot(value, true))
	require.NoError(t, iso.RecycleRegion(regionID))
}

func TestIsolateSlotManagement(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(value))

	value2, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(value2))

	require.NoError(t, iso.AddValueReference(value, value2))
	require.Error(t, iso.RecycleSlot(value2, true))

	require.NoError(t, iso.RemoveValueReference(value, value2))
	require.NoError(t, iso.RecycleSlot(value2, true))
	require.NoError(t, iso.RecycleSlot(value, true))
}

func TestIsolateOutlets(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	outletID := iso.AddOutlet(base.MakeUndefined())
	outlet2ID := iso.AddOutlet(base.MakeNull())

	v, ok := iso.GetOutlet(outletID)
	require.True(t, ok)
	require.Equal(t, base.MakeUndefined(), v)

	v, ok = iso.GetOutlet(outlet2ID)
	require.True(t, ok)
	require.Equal(t, base.MakeNull(), v)

	_, ok = iso.ClearOutlet(outletID)
	require.True(t, ok)
	_, ok = iso.GetOutlet(outletID)
	require.False(t, ok)
}

func TestIsolateOwnProperties(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)

	symbol := iso.GetTextSymbol("test", "test")

	require.NoError(t, iso.SetOwnProperty(value, symbol, base.MakeFloat(3.14)))

	got, err := iso.GetOwnProperty(value, symbol, nil)
	require.NoError(t, err)
	require.Equal(t, base.MakeFloat(3.14), got)

	symbols, err := iso.ListOwnPropertySymbols(value)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	_, has := symbols[symbol]
	require.True(t, has)

	require.NoError(t, iso.DeleteOwnProperty(value, symbol))

	symbols, err = iso.ListOwnPropertySymbols(value)
	require.NoError(t, err)
	require.Empty(t, symbols)

	got, err = iso.GetOwnProperty(value, symbol, nil)
	require.NoError(t, err)
	require.Equal(t, base.MakeUndefined(), got)
}

func TestIsolateProperties(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	prototype, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	value, err := iso.GainSlotInRegion(regionID, base.Object, prototype, iso.SlotLayoutToken())
	require.NoError(t, err)

	got, err := iso.GetPrototype(value)
	require.NoError(t, err)
	require.Equal(t, prototype, got)

	symbol := iso.GetTextSymbol("test", "test")
	require.NoError(t, iso.SetOwnProperty(prototype, symbol, base.MakeFloat(3.14)))

	got, err = iso.GetProperty(value, symbol, nil)
	require.NoError(t, err)
	require.Equal(t, base.MakeFloat(3.14), got)

	got, err = iso.GetOwnProperty(value, symbol, nil)
	require.NoError(t, err)
	require.Equal(t, base.MakeUndefined(), got)

	symbols, err := iso.ListPropertySymbols(value)
	require.NoError(t, err)
	_, has := symbols[symbol]
	require.True(t, has)

	ownSymbols, err := iso.ListOwnPropertySymbols(value)
	require.NoError(t, err)
	require.Empty(t, ownSymbols)
}

func TestIsolateSeals(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)

	sealed, err := iso.IsSealed(value)
	require.NoError(t, err)
	require.False(t, sealed)

	require.NoError(t, iso.SealSlot(value))

	sealed, err = iso.IsSealed(value)
	require.NoError(t, err)
	require.True(t, sealed)
}

func TestIsolateRoots(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(value))

	r, err := iso.AddRoot(value)
	require.NoError(t, err)

	require.Error(t, iso.RecycleSlot(value, true))

	require.NoError(t, iso.RemoveRoot(r))
	require.NoError(t, iso.RecycleSlot(value, true))
}

func TestIsolateWeakRoots(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)
	require.NoError(t, iso.MoveValueOutFromNursery(value))

	dropped := false
	weakRoot, err := iso.AddWeakRoot(value, dropListenerFunc(func() {
		dropped = true
	}))
	require.NoError(t, err)

	require.NoError(t, iso.RecycleSlot(value, true))
	require.True(t, dropped)

	require.NoError(t, iso.RemoveWeakRoot(weakRoot))
}

func TestIsolateTextListTuple(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	text, err := iso.MakeText("hello")
	require.NoError(t, err)
	s, err := iso.ExtractText(text)
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	elements := []base.Value{base.MakeFloat(1), base.MakeFloat(2)}
	list, err := iso.MakeList(elements)
	require.NoError(t, err)
	got, err := iso.ExtractList(list)
	require.NoError(t, err)
	require.Equal(t, elements, got)

	tuple, err := iso.MakeTuple(base.MakeNull(), 7, elements)
	require.NoError(t, err)
	prototype, err := iso.GetPrototype(tuple)
	require.NoError(t, err)

	builtins := iso.ListBuiltins()
	require.Equal(t, builtins[len(builtins)-1], prototype)
}

func TestIsolateBaseColor(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	before := iso.GetBaseColor()
	after := iso.FlipBaseColor()
	require.NotEqual(t, before, after)
	require.Equal(t, after, iso.GetBaseColor())
}

type dropListenerFunc func()

func (f dropListenerFunc) NotifyDrop() { f() }

func TestIsolateStats(t *testing.T) {
	iso, err := New(IsolateOptions{})
	require.NoError(t, err)

	before, err := iso.Stats()
	require.NoError(t, err)

	regionID, err := iso.CreateRegion()
	require.NoError(t, err)
	require.NoError(t, iso.UnprotectRegion(regionID))

	value, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), iso.SlotLayoutToken())
	require.NoError(t, err)

	stats, err := iso.Stats()
	require.NoError(t, err)
	require.Equal(t, before.RegionCount+1, stats.RegionCount)
	require.Equal(t, before.NurseryCount+1, stats.NurseryCount)
	require.Equal(t, before.LiveSlotCount+1, stats.LiveSlotCount)

	require.NoError(t, iso.MoveValueOutFromNursery(value))
	stats, err = iso.Stats()
	require.NoError(t, err)
	require.Equal(t, before.NurseryCount, stats.NurseryCount)
}
