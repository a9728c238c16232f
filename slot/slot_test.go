package slot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/root"
	"github.com/dragonation/rogiso-go/util"
)

// testContext is a minimal stand-in for an isolate, wiring only the parts of
// ctx.Context that recycle/slot-trap/internal-slot bookkeeping touches.
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

func (c *testContext) GetTextSymbol(string, string) base.Symbol        { return base.NewSymbol(0) }
func (c *testContext) GetValueSymbol(string, base.Value) base.Symbol   { return base.NewSymbol(0) }
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
func (c *testContext) DeleteOwnProperty(base.Value, base.Symbol) error        { return nil }
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

func (c *testContext) MakeText(string) (base.Value, error) { return base.MakeUndefined(), nil }
func (c *testContext) MakeList([]base.Value) (base.Value, error) { return base.MakeUndefined(), nil }
func (c *testContext) MakeTuple(base.Value, uint32, []base.Value) (base.Value, error) {
	return base.MakeUndefined(), nil
}

func (c *testContext) ExtractText(base.Value) (string, error)        { return "", nil }
func (c *testContext) ExtractList(base.Value) ([]base.Value, error)  { return nil, nil }

func (c *testContext) MakePropertyTrapValue(ctx.PropertyTrap) (base.Value, error) {
	return base.MakeUndefined(), nil
}
func (c *testContext) ExtractPropertyTrap(base.Value) (ctx.PropertyTrap, error) { return nil, nil }

func (c *testContext) AddRoot(base.Value) (*root.Root, error)       { return nil, nil }
func (c *testContext) RemoveRoot(*root.Root) error                  { return nil }
func (c *testContext) AddWeakRoot(base.Value, root.DropListener) (*root.WeakRoot, error) {
	return nil, nil
}
func (c *testContext) RemoveWeakRoot(*root.WeakRoot) error { return nil }

func (c *testContext) NotifySlotDrop(base.Value) error { return nil }

// testSlotTrap is a no-op SlotTrap that records whether it was dropped.
type testSlotTrap struct {
	ctx.DefaultSlotTrap
	dropped bool
}

func (t *testSlotTrap) NotifyDrop() (ctx.SlotTrapResult, error) {
	t.dropped = true
	return ctx.SkippedResult(), nil
}

// testInternalSlot is a minimal InternalSlot for exercising set/clear/has.
type testInternalSlot struct {
	ctx.DefaultInternalSlot
	subject base.Value
}

func (s *testInternalSlot) Subject() base.Value { return s.subject }

func TestAtomicSlotFlags(t *testing.T) {
	s := NewAtomicSlot()

	require.False(t, s.IsAlive())
	require.False(t, s.IsSealed())

	s.SealSlot()
	require.False(t, s.IsAlive())
	require.True(t, s.IsSealed())

	s.MarkAsAlive()
	require.True(t, s.IsAlive())
	require.True(t, s.IsSealed())
}

func TestAtomicSlotPrimitiveType(t *testing.T) {
	s := NewAtomicSlot()
	require.Equal(t, base.Undefined, s.PrimitiveType())

	s.OverwritePrimitiveType(base.Null)
	require.Equal(t, base.Null, s.PrimitiveType())
}

func TestSlotRecordReset(t *testing.T) {
	record := NewSlotRecord(1, 2)

	require.Equal(t, uint32(1), record.regionID)
	require.Equal(t, uint16(2), record.slotIndex)

	record.Reset()

	require.Equal(t, uint32(1), record.regionID)
	require.Equal(t, uint16(2), record.slotIndex)
}

func TestSlotRecordID(t *testing.T) {
	record := NewSlotRecord(1, 2)

	_, err := record.GetID()
	require.Error(t, err)

	require.Error(t, record.OverwritePrimitiveType(base.Null))

	require.NoError(t, record.OverwritePrimitiveType(base.List))

	id, err := record.GetID()
	require.NoError(t, err)
	require.Equal(t, base.List, id.PrimitiveType())
	regionID, err := id.GetRegionID()
	require.NoError(t, err)
	require.Equal(t, uint32(1), regionID)
	slotIndex, err := id.GetRegionSlot()
	require.NoError(t, err)
	require.Equal(t, uint16(2), slotIndex)

	require.NoError(t, record.OverwritePrimitiveType(base.Object))

	id, err = record.GetID()
	require.NoError(t, err)
	require.Equal(t, base.Object, id.PrimitiveType())
}

func TestSlotRecordColor(t *testing.T) {
	record := NewSlotRecord(0, 0)

	record.MarkAsGray(BaseWhite)
	require.False(t, record.IsWhite(BaseWhite))
	require.False(t, record.IsBlack(BaseWhite))
	require.False(t, record.IsWhite(BaseBlack))
	require.False(t, record.IsBlack(BaseBlack))
	require.True(t, record.IsGray(BaseWhite))
	require.True(t, record.IsGray(BaseBlack))

	record.MarkAsWhite(BaseWhite)
	require.True(t, record.IsWhite(BaseWhite))
	require.False(t, record.IsBlack(BaseWhite))
	require.False(t, record.IsWhite(BaseBlack))
	require.True(t, record.IsBlack(BaseBlack))
	require.False(t, record.IsGray(BaseWhite))

	record.MarkAsBlack(BaseWhite)
	require.False(t, record.IsWhite(BaseWhite))
	require.True(t, record.IsBlack(BaseWhite))
	require.True(t, record.IsWhite(BaseBlack))
	require.False(t, record.IsBlack(BaseBlack))
}

func TestSlotRecordReferences(t *testing.T) {
	record := NewSlotRecord(0, 0)
	require.NoError(t, record.OverwritePrimitiveType(base.Object))

	record2 := NewSlotRecord(0, 1)
	require.NoError(t, record2.OverwritePrimitiveType(base.Object))

	id2, err := record2.GetID()
	require.NoError(t, err)

	require.True(t, record.HasNoOuterReferences())

	require.NoError(t, record.AddOuterReference(id2))
	require.False(t, record.HasNoOuterReferences())

	require.NoError(t, record.AddOuterReference(id2))
	require.False(t, record.HasNoOuterReferences())

	require.NoError(t, record.RemoveOuterReference(id2))
	require.False(t, record.HasNoOuterReferences())

	require.NoError(t, record.RemoveOuterReference(id2))
	require.True(t, record.HasNoOuterReferences())
}

func TestRegionSlotManagement(t *testing.T) {
	context := newTestContext()

	slot := NewRegionSlot(1, 1)
	slot.MarkAsAlive()
	require.NoError(t, slot.OverwritePrimitiveType(base.Object))

	require.True(t, slot.IsAlive())
	sealed, err := slot.IsSealed()
	require.NoError(t, err)
	require.False(t, sealed)

	id, err := slot.GetID()
	require.NoError(t, err)
	require.Equal(t, base.Object, id.PrimitiveType())

	require.NoError(t, slot.Recycle(true, context))

	require.False(t, slot.IsAlive())
	_, err = slot.IsSealed()
	require.Error(t, err)
	_, err = slot.GetID()
	require.Error(t, err)
}

func TestRegionSlotSnapshot(t *testing.T) {
	slot := NewRegionSlot(1, 1)
	slot2 := NewRegionSlot(1, 2)

	slot.MarkAsAlive()
	require.NoError(t, slot.OverwritePrimitiveType(base.Object))

	require.False(t, slot2.IsAlive())

	snapshot, _, _, _, err := slot.Freeze()
	require.NoError(t, err)

	_, _, _, err = slot2.Restore(snapshot)
	require.NoError(t, err)

	require.False(t, slot.IsAlive())
	require.True(t, slot2.IsAlive())

	id, err := slot2.GetID()
	require.NoError(t, err)
	require.Equal(t, base.Object, id.PrimitiveType())
}

func TestRegionSlotSlotTrap(t *testing.T) {
	context := newTestContext()

	slot := NewRegionSlot(1, 1)

	_, err := slot.HasSlotTrap()
	require.Error(t, err)

	slot.MarkAsAlive()
	require.NoError(t, slot.OverwritePrimitiveType(base.Object))

	has, err := slot.HasSlotTrap()
	require.NoError(t, err)
	require.False(t, has)

	trap := &testSlotTrap{}
	require.NoError(t, slot.SetSlotTrap(trap, context))

	has, err = slot.HasSlotTrap()
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, slot.ClearSlotTrap(context))

	has, err = slot.HasSlotTrap()
	require.NoError(t, err)
	require.False(t, has)
}

func TestRegionSlotInternalSlot(t *testing.T) {
	context := newTestContext()

	slot := NewRegionSlot(1, 1)

	_, err := slot.HasInternalSlot(1)
	require.Error(t, err)

	slot.MarkAsAlive()
	require.NoError(t, slot.OverwritePrimitiveType(base.Object))

	has, err := slot.HasInternalSlot(1)
	require.NoError(t, err)
	require.False(t, has)

	internalSlot := &testInternalSlot{subject: base.MakeObject(1, 3)}

	require.NoError(t, slot.SetInternalSlot(1, internalSlot, context))

	has, err = slot.HasInternalSlot(1)
	require.NoError(t, err)
	require.True(t, has)

	has, err = slot.HasInternalSlot(2)
	require.NoError(t, err)
	require.False(t, has)

	ids, err := slot.ListInternalSlotIDs()
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, ids)

	require.NoError(t, slot.ClearInternalSlot(1, context))

	has, err = slot.HasInternalSlot(1)
	require.NoError(t, err)
	require.False(t, has)
}

func TestRegionSlotFieldShortcuts(t *testing.T) {
	slot := NewRegionSlot(1, 1)
	slot.MarkAsAlive()
	require.NoError(t, slot.OverwritePrimitiveType(base.Object))

	has, err := slot.HasFieldShortcuts()
	require.NoError(t, err)
	require.False(t, has)

	template := fieldshortcuts.NewFieldTemplate(1)
	shortcuts := fieldshortcuts.NewFieldShortcuts(template)

	_, err = slot.SetFieldShortcuts(shortcuts)
	require.NoError(t, err)

	has, err = slot.HasFieldShortcuts()
	require.NoError(t, err)
	require.True(t, has)

	_, err = slot.ClearFieldShortcuts()
	require.NoError(t, err)

	has, err = slot.HasFieldShortcuts()
	require.NoError(t, err)
	require.False(t, has)
}
