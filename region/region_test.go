package region

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/root"
	"github.com/dragonation/rogiso-go/util"
)

// testContext is a minimal stand-in for an isolate, wiring only what
// region-level dispatch actually touches.
type testContext struct {
	token *util.ReentrantToken
}

func newTestContext() *testContext {
	return &testContext{token: util.NewReentrantToken(util.NewReentrantLock())}
}

func (c *testContext) IsolateID() string { return "test-isolate" }

func (c *testContext) SlotLayoutToken() *util.ReentrantToken { return c.token }

func (c *testContext) ProtectPropertyTrap(trap ctx.PropertyTrap) (uint64, ctx.PropertyTrap, error) {
	return 1, trap, nil
}
func (c *testContext) UnprotectPropertyTrap(uint64) error { return nil }

func (c *testContext) ProtectSlotTrap(trap ctx.SlotTrap) (uint64, ctx.SlotTrap, error) {
	return 1, trap, nil
}
func (c *testContext) UnprotectSlotTrap(uint64) error { return nil }

func (c *testContext) ProtectInternalSlot(slot ctx.InternalSlot) (uint64, ctx.InternalSlot, error) {
	return 1, slot, nil
}
func (c *testContext) UnprotectInternalSlot(uint64) error { return nil }

func (c *testContext) ResolveRealValue(value base.Value) (base.Value, error) { return value, nil }

func (c *testContext) AddValueReference(base.Value, base.Value) error    { return nil }
func (c *testContext) RemoveValueReference(base.Value, base.Value) error { return nil }
func (c *testContext) AddSymbolReference(base.Symbol) error              { return nil }
func (c *testContext) RemoveSymbolReference(base.Symbol) error           { return nil }

func (c *testContext) CreateTrapInfo(subject base.Value, parameters []base.Value) ctx.TrapInfo {
	return ctx.NewTrapInfo(subject, parameters)
}

func (c *testContext) GainSlot(base.PrimitiveType, base.Value) (base.Value, error) {
	return base.Value{}, base.NewError(base.FatalError, "not supported in test context")
}

func (c *testContext) GetTextSymbol(string, string) base.Symbol      { return base.NewSymbol(0) }
func (c *testContext) GetValueSymbol(string, base.Value) base.Symbol { return base.NewSymbol(0) }
func (c *testContext) ResolveSymbolInfo(base.Symbol) (ctx.SymbolInfo, error) {
	return ctx.SymbolInfo{}, nil
}

func (c *testContext) GetPrototype(base.Value) (base.Value, error) { return base.MakeUndefined(), nil }
func (c *testContext) SetPrototype(base.Value, base.Value) error   { return nil }

func (c *testContext) SetSlotTrap(base.Value, ctx.SlotTrap) error { return nil }

func (c *testContext) HasOwnProperty(base.Value, base.Symbol) (bool, error) { return false, nil }
func (c *testContext) GetOwnProperty(base.Value, base.Symbol, *fieldshortcuts.FieldToken) (base.Value, error) {
	return base.MakeUndefined(), nil
}
func (c *testContext) DeleteOwnProperty(base.Value, base.Symbol) error         { return nil }
func (c *testContext) SetOwnProperty(base.Value, base.Symbol, base.Value) error { return nil }
func (c *testContext) DefineOwnProperty(base.Value, base.Symbol, ctx.PropertyTrap) error {
	return nil
}
func (c *testContext) ListOwnPropertySymbols(base.Value) (map[base.Symbol]struct{}, error) {
	return nil, nil
}

func (c *testContext) GetOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol) (base.Value, error) {
	return base.MakeUndefined(), nil
}
func (c *testContext) SetOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol, base.Value) error {
	return nil
}
func (c *testContext) DeleteOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol) error { return nil }
func (c *testContext) DefineOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol, ctx.PropertyTrap) error {
	return nil
}
func (c *testContext) ListOwnPropertySymbolsIgnoreSlotTrap(base.Value) (map[base.Symbol]struct{}, error) {
	return nil, nil
}

func (c *testContext) GetInternalSlot(base.Value, uint64) (*ctx.ProtectedInternalSlot, error) {
	return nil, nil
}
func (c *testContext) SetInternalSlot(base.Value, uint64, ctx.InternalSlot) error { return nil }
func (c *testContext) ClearInternalSlot(base.Value, uint64) error                { return nil }

func (c *testContext) ListPropertySymbols(base.Value) (map[base.Symbol]struct{}, error) {
	return nil, nil
}
func (c *testContext) HasProperty(base.Value, base.Symbol) (bool, error) { return false, nil }
func (c *testContext) GetProperty(base.Value, base.Symbol, *fieldshortcuts.FieldToken) (base.Value, error) {
	return base.MakeUndefined(), nil
}

func (c *testContext) MakeText(string) (base.Value, error)      { return base.MakeUndefined(), nil }
func (c *testContext) MakeList([]base.Value) (base.Value, error) { return base.MakeUndefined(), nil }
func (c *testContext) MakeTuple(base.Value, uint32, []base.Value) (base.Value, error) {
	return base.MakeUndefined(), nil
}

func (c *testContext) ExtractText(base.Value) (string, error)       { return "", nil }
func (c *testContext) ExtractList(value base.Value) ([]base.Value, error) {
	return nil, nil
}

func (c *testContext) MakePropertyTrapValue(ctx.PropertyTrap) (base.Value, error) {
	return base.MakeUndefined(), nil
}
func (c *testContext) ExtractPropertyTrap(base.Value) (ctx.PropertyTrap, error) { return nil, nil }

func (c *testContext) AddRoot(base.Value) (*root.Root, error) { return nil, nil }
func (c *testContext) RemoveRoot(*root.Root) error            { return nil }

func (c *testContext) AddWeakRoot(base.Value, root.DropListener) (*root.WeakRoot, error) {
	return nil, nil
}
func (c *testContext) RemoveWeakRoot(*root.WeakRoot) error { return nil }

func (c *testContext) NotifySlotDrop(base.Value) error { return nil }

// namingTrap is a SlotTrap that stores a subset of properties entirely in
// its own map rather than the slot's underlying storage, so clearing the
// trap makes those properties disappear.
type namingTrap struct {
	ctx.DefaultSlotTrap
	values map[base.Symbol]base.Value
}

func newNamingTrap() *namingTrap { return &namingTrap{values: make(map[base.Symbol]base.Value)} }

func (t *namingTrap) GetOwnProperty(trapInfo ctx.TrapInfo, context ctx.Context) (ctx.SlotTrapResult, error) {
	symbolValue := trapInfo.Parameter(0)
	symbolID, err := symbolValue.GetSymbolID()
	if err != nil {
		return ctx.SlotTrapResult{}, err
	}
	symbol := base.NewSymbol(symbolID)
	if symbol.ID() == 1 {
		return ctx.SkippedResult(), nil
	}
	value, ok := t.values[symbol]
	if !ok {
		return ctx.TrappedResult(base.MakeUndefined()), nil
	}
	return ctx.TrappedResult(value), nil
}

func (t *namingTrap) SetOwnProperty(trapInfo ctx.TrapInfo, context ctx.Context) (ctx.SlotTrapResult, error) {
	symbolValue := trapInfo.Parameter(0)
	symbolID, err := symbolValue.GetSymbolID()
	if err != nil {
		return ctx.SlotTrapResult{}, err
	}
	symbol := base.NewSymbol(symbolID)
	if symbol.ID() == 1 {
		return ctx.SkippedResult(), nil
	}
	t.values[symbol] = trapInfo.Parameter(1)
	return ctx.TrappedResult(base.MakeUndefined()), nil
}

func (t *namingTrap) DefineOwnProperty(trapInfo ctx.TrapInfo, context ctx.Context) (ctx.SlotTrapResult, error) {
	symbolValue := trapInfo.Parameter(0)
	symbolID, err := symbolValue.GetSymbolID()
	if err != nil {
		return ctx.SlotTrapResult{}, err
	}
	symbol := base.NewSymbol(symbolID)
	trapValue, err := context.ExtractPropertyTrap(trapInfo.Parameter(1))
	if err != nil {
		return ctx.SlotTrapResult{}, err
	}
	if trapValue == nil {
		t.values[symbol] = base.MakeUndefined()
	}
	return ctx.TrappedResult(base.MakeUndefined()), nil
}

// testInternalSlot is a minimal InternalSlot for exercising set/clear/has.
type testInternalSlot struct {
	ctx.DefaultInternalSlot
	subject base.Value
}

func (s *testInternalSlot) Subject() base.Value { return s.subject }

func readGuard() (*util.ReentrantToken, *util.ReentrantLockReadGuard) {
	token := util.NewReentrantToken(util.NewReentrantLock())
	return token, token.LockRead()
}

func TestRegionBasicSlotManagement(t *testing.T) {
	region := New(0)
	context := newTestContext()

	require.True(t, region.IsEmpty())
	require.False(t, region.IsFull())

	slots := make([]base.Value, 0, SlotCount)
	for i := 0; i < SlotCount; i++ {
		value, err := region.GainSlot(base.Object)
		require.NoError(t, err)
		slots = append(slots, value)

		g := region.lock.LockRead()
		occupied := region.occupied
		g.Unlock()
		require.Equal(t, uint16(i+1), occupied)

		require.Equal(t, i == SlotCount-1, region.IsFull())
		require.False(t, region.IsEmpty())
		require.Equal(t, float32(0), region.NeedRefragment())
		require.Equal(t, i != SlotCount-1, region.CouldGainSlotQuickly())
	}

	_, err := region.GainSlot(base.Object)
	require.Error(t, err)

	for i := 1; i < SlotCount; i++ {
		require.Error(t, region.RecycleSlot(slots[i], true, context))
		require.NoError(t, region.MoveOutFromNursery(slots[i]))
		require.NoError(t, region.RecycleSlot(slots[i], true, context))

		require.False(t, region.IsFull())
		require.False(t, region.IsEmpty())
		require.False(t, region.CouldGainSlotQuickly())
	}

	require.NoError(t, region.RecalculateNextEmptySlotIndex())

	g := region.lock.LockRead()
	next := region.nextEmptySlotIndex
	g.Unlock()
	require.Equal(t, uint16(1), next)

	require.Error(t, region.RecycleSlot(slots[0], true, context))
	require.NoError(t, region.MoveOutFromNursery(slots[0]))
	require.NoError(t, region.RecycleSlot(slots[0], true, context))

	require.True(t, region.IsEmpty())

	require.NoError(t, region.RecalculateNextEmptySlotIndex())
	require.Equal(t, float32(0), region.NeedRefragment())
}

func TestRegionSnapshot(t *testing.T) {
	region := New(0)

	slot, err := region.GainSlot(base.Object)
	require.NoError(t, err)

	snapshot, inNursery, referenceMap, _, _, err := region.FreezeSlot(slot)
	require.NoError(t, err)
	require.True(t, inNursery)

	_, _, _, err = region.RestoreSlot(slot, snapshot, inNursery, referenceMap)
	require.NoError(t, err)

	g := region.lock.LockRead()
	occupied := region.occupied
	next := region.nextEmptySlotIndex
	g.Unlock()
	require.Equal(t, uint16(2), occupied)
	require.Equal(t, uint16(2), next)
}

func TestRegionReferences(t *testing.T) {
	region := New(0)
	context := newTestContext()

	slot, err := region.GainSlot(base.Object)
	require.NoError(t, err)

	func() {
		slot2, err := region.GainSlot(base.Object)
		require.NoError(t, err)
		require.NoError(t, region.AddReference(slot2, slot))
		require.Error(t, region.RecycleSlot(slot2, false, context))
	}()

	func() {
		slot2, err := region.GainSlot(base.Object)
		require.NoError(t, err)
		require.NoError(t, region.AddReference(slot2, slot))

		snapshot, inNursery, referenceMap, _, _, err := region.FreezeSlot(slot2)
		require.NoError(t, err)
		slot3, _, _, err := region.RestoreSlot(slot2, snapshot, inNursery, referenceMap)
		require.NoError(t, err)

		require.Error(t, region.AddReference(slot2, slot))

		require.NoError(t, region.RedirectSlot(slot2, slot3, referenceMap))
		require.NoError(t, region.AddReference(slot2, slot))
		require.Error(t, region.RecycleSlot(slot3, false, context))
	}()

	func() {
		slot2, err := region.GainSlot(base.Object)
		require.NoError(t, err)
		require.NoError(t, region.AddReference(slot2, slot))

		snapshot, inNursery, referenceMap, _, _, err := region.FreezeSlot(slot2)
		require.NoError(t, err)
		slot3, _, _, err := region.RestoreSlot(slot2, snapshot, inNursery, referenceMap)
		require.NoError(t, err)

		require.Error(t, region.AddReference(slot2, slot))

		require.NoError(t, region.RedirectSlot(slot2, slot3, referenceMap))
		require.NoError(t, region.MoveOutFromNursery(slot3))
		require.NoError(t, region.RecycleSlot(slot2, false, context))

		emptied, _, err := region.RemoveReference(slot2, slot)
		require.NoError(t, err)
		require.True(t, emptied)

		require.Error(t, region.AddReference(slot2, slot))

		_, err = region.RemoveRedirectionFrom(slot2, slot3)
		require.NoError(t, err)
		require.NoError(t, region.MoveOutFromNursery(slot3))
		require.NoError(t, region.RecycleSlot(slot3, false, context))
	}()
}

func TestRegionOwnProperty(t *testing.T) {
	region := New(0)
	context := newTestContext()
	_, guard := readGuard()

	slot, err := region.GainSlot(base.Object)
	require.NoError(t, err)

	symbol1 := base.NewSymbol(1)
	require.NoError(t, region.SetOwnPropertyWithLayoutGuard(slot, slot, symbol1, base.MakeFloat(43.0), context, guard, true))

	value, err := region.GetOwnPropertyWithLayoutGuard(slot, slot, symbol1, nil, context, guard, true)
	require.NoError(t, err)
	f, err := value.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 43.0, f)
}

func TestRegionSlotTrapDispatch(t *testing.T) {
	region := New(0)
	context := newTestContext()
	_, guard := readGuard()

	slot, err := region.GainSlot(base.Object)
	require.NoError(t, err)

	symbol1 := base.NewSymbol(1)
	symbol2 := base.NewSymbol(2)

	require.NoError(t, region.SetOwnPropertyWithLayoutGuard(slot, slot, symbol1, base.MakeFloat(1.0), context, guard, true))

	trap := newNamingTrap()
	require.NoError(t, region.SetSlotTrap(slot, trap, context))

	require.NoError(t, region.SetOwnPropertyWithLayoutGuard(slot, slot, symbol2, base.MakeFloat(32.0), context, guard, true))

	value, err := region.GetOwnPropertyWithLayoutGuard(slot, slot, symbol1, nil, context, guard, true)
	require.NoError(t, err)
	f, err := value.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 1.0, f)

	value, err = region.GetOwnPropertyWithLayoutGuard(slot, slot, symbol2, nil, context, guard, true)
	require.NoError(t, err)
	f, err = value.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 32.0, f)

	require.NoError(t, region.ClearSlotTrap(slot, context))

	value, err = region.GetOwnPropertyWithLayoutGuard(slot, slot, symbol1, nil, context, guard, true)
	require.NoError(t, err)
	f, err = value.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 1.0, f)

	value, err = region.GetOwnPropertyWithLayoutGuard(slot, slot, symbol2, nil, context, guard, true)
	require.NoError(t, err)
	require.True(t, value.IsUndefined())
}

func TestRegionFieldShortcuts(t *testing.T) {
	region := New(0)
	context := newTestContext()
	_, guard := readGuard()

	slot, err := region.GainSlot(base.Object)
	require.NoError(t, err)

	template := fieldshortcuts.NewFieldTemplate(1)
	_, err = template.AddSymbol(base.NewSymbol(1))
	require.NoError(t, err)
	shortcuts := fieldshortcuts.NewFieldShortcuts(template)
	fieldToken, ok := shortcuts.GetFieldToken(base.NewSymbol(1))
	require.True(t, ok)
	require.NotNil(t, fieldToken)

	require.NoError(t, region.SetOwnPropertyWithLayoutGuard(slot, slot, base.NewSymbol(1), base.MakeFloat(43.0), context, guard, true))
	require.NoError(t, region.SetOwnPropertyWithLayoutGuard(slot, slot, base.NewSymbol(2), base.MakeFloat(63.0), context, guard, true))

	_, found := fieldToken.GetField(shortcuts)
	require.False(t, found)

	require.NoError(t, region.UpdateFieldShortcuts(slot, shortcuts))

	got, err := region.GetFieldShortcuts(slot)
	require.NoError(t, err)
	require.Same(t, shortcuts, got)

	value, err := region.GetOwnPropertyWithLayoutGuard(slot, slot, base.NewSymbol(1), fieldToken, context, guard, true)
	require.NoError(t, err)
	f, err := value.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 43.0, f)

	field, found := fieldToken.GetField(shortcuts)
	require.True(t, found)
	f, err = field.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 43.0, f)

	require.NoError(t, region.SetOwnPropertyWithLayoutGuard(slot, slot, base.NewSymbol(1), base.MakeFloat(53.0), context, guard, true))

	field, found = fieldToken.GetField(shortcuts)
	require.True(t, found)
	f, err = field.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 53.0, f)

	require.NoError(t, region.ClearFieldShortcuts(slot))

	field, found = fieldToken.GetField(shortcuts)
	require.True(t, found)
	f, err = field.GetFloatData()
	require.NoError(t, err)
	require.Equal(t, 53.0, f)
}

func TestRegionInternalSlot(t *testing.T) {
	region := New(0)
	context := newTestContext()

	slot, err := region.GainSlot(base.Object)
	require.NoError(t, err)

	internalSlot := &testInternalSlot{subject: base.MakeFloat(32.0)}

	require.NoError(t, region.SetInternalSlot(slot, 0, internalSlot, context))

	protected, err := region.GetInternalSlot(slot, 0, context)
	require.NoError(t, err)
	require.NotNil(t, protected)
}

func TestRegionSeal(t *testing.T) {
	region := New(0)
	context := newTestContext()
	_, guard := readGuard()

	slot, err := region.GainSlot(base.Object)
	require.NoError(t, err)

	sealed, err := region.IsSealed(slot)
	require.NoError(t, err)
	require.False(t, sealed)

	require.NoError(t, region.SealSlot(slot))

	sealed, err = region.IsSealed(slot)
	require.NoError(t, err)
	require.True(t, sealed)

	internalSlot := &testInternalSlot{subject: base.MakeFloat(32.0)}
	require.Error(t, region.SetInternalSlot(slot, 0, internalSlot, context))
	require.Error(t, region.ClearInternalSlot(slot, 0, context))

	require.Error(t, region.SetOwnPropertyWithLayoutGuard(slot, slot, base.NewSymbol(1), base.MakeFloat(43.0), context, guard, true))

	trap := newNamingTrap()
	require.Error(t, region.SetSlotTrap(slot, trap, context))
	require.Error(t, region.ClearSlotTrap(slot, context))
}
