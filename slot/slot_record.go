package slot

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
)

// SlotRecordSnapshot is a detached AtomicSlot pulled out of a SlotRecord by
// Freeze, held by the caller until Restore hands it to the slot's new home.
type SlotRecordSnapshot struct {
	atomicSlot *AtomicSlot
}

// SlotRecord is a slot's region-relative identity (region/index) plus its
// GC color and outer-reference count, wrapping the raw AtomicSlot payload.
type SlotRecord struct {
	regionID          uint32
	slotIndex         uint16
	color             uint8
	outerReferenceMap *base.ReferenceMap
	atomicSlot        *AtomicSlot
}

func NewSlotRecord(regionID uint32, slotIndex uint16) *SlotRecord {
	return &SlotRecord{regionID: regionID, slotIndex: slotIndex, atomicSlot: NewAtomicSlot()}
}

func (r *SlotRecord) Reset() ([]base.Value, []base.Symbol) {
	r.color = 0
	r.outerReferenceMap = nil
	return r.atomicSlot.Reset()
}

// Freeze detaches the live AtomicSlot for zero-copy migration elsewhere,
// leaving a fresh empty one in its place, and reports the references the
// detached payload held so the caller can release them from this record's
// old location.
func (r *SlotRecord) Freeze() (SlotRecordSnapshot, *base.ReferenceMap, []base.Value, []base.Symbol) {
	r.color = 0

	removedValues, removedSymbols := r.atomicSlot.ListSelfReferencesWithoutAutorefresh()

	detached := r.atomicSlot
	r.atomicSlot = NewAtomicSlot()

	outerReferenceMap := r.outerReferenceMap
	r.outerReferenceMap = nil

	return SlotRecordSnapshot{atomicSlot: detached}, outerReferenceMap, removedValues, removedSymbols
}

func (r *SlotRecord) SweepOuterReferenceMap() *base.ReferenceMap {
	m := r.outerReferenceMap
	r.outerReferenceMap = nil
	return m
}

// Restore installs a previously frozen payload into this (necessarily dead)
// record, reviving it at its new region/index.
func (r *SlotRecord) Restore(snapshot SlotRecordSnapshot) {
	r.color = 0
	r.outerReferenceMap = nil
	r.atomicSlot = snapshot.atomicSlot
}

func (r *SlotRecord) GetID() (base.Value, error) {
	switch r.atomicSlot.PrimitiveType() {
	case base.Undefined:
		return base.Value{}, base.NewError(base.FatalError, "slot is not supported for undefined value")
	case base.Null:
		return base.Value{}, base.NewError(base.FatalError, "slot is not supported for null value")
	case base.Boolean:
		return base.Value{}, base.NewError(base.FatalError, "slot is not supported for boolean value")
	case base.Integer:
		return base.Value{}, base.NewError(base.FatalError, "slot is not supported for integer value")
	case base.Float:
		return base.Value{}, base.NewError(base.FatalError, "slot is not supported for float value")
	case base.SymbolTag:
		return base.Value{}, base.NewError(base.FatalError, "slot is not supported for symbol value")
	case base.Text:
		return base.MakeText(r.regionID, r.slotIndex), nil
	case base.List:
		return base.MakeList(r.regionID, r.slotIndex), nil
	case base.Tuple:
		return base.MakeTuple(r.regionID, r.slotIndex), nil
	case base.Object:
		return base.MakeObject(r.regionID, r.slotIndex), nil
	default:
		return base.Value{}, base.NewError(base.FatalError, "slot primitive type not recognized")
	}
}

func (r *SlotRecord) IsSealed() bool { return r.atomicSlot.IsSealed() }

func (r *SlotRecord) SealSlot() { r.atomicSlot.SealSlot() }

func (r *SlotRecord) IsAlive() bool { return r.atomicSlot.IsAlive() }

func (r *SlotRecord) MarkAsAlive() { r.atomicSlot.MarkAsAlive() }

func (r *SlotRecord) OverwritePrimitiveType(primitiveType base.PrimitiveType) error {
	switch primitiveType {
	case base.Undefined, base.Null, base.Boolean, base.Integer, base.Float, base.SymbolTag:
		return base.NewError(base.FatalError, "slot is not supported for this primitive type")
	default:
		r.atomicSlot.OverwritePrimitiveType(primitiveType)
		return nil
	}
}

func (r *SlotRecord) ListSelfReferencesWithoutAutorefresh() ([]base.Value, []base.Symbol) {
	return r.atomicSlot.ListSelfReferencesWithoutAutorefresh()
}

func (r *SlotRecord) ListAndAutorefreshSelfReferences(context ctx.Context) ([]base.Value, []base.Symbol, error) {
	id, err := r.GetID()
	if err != nil {
		return nil, nil, err
	}
	return r.atomicSlot.ListAndAutorefreshSelfReferences(id, context)
}

func (r *SlotRecord) HasNoOuterReferences() bool {
	if r.outerReferenceMap == nil {
		return true
	}
	return r.outerReferenceMap.IsEmpty()
}

func (r *SlotRecord) AddOuterReference(value base.Value) error {
	if r.outerReferenceMap == nil {
		r.outerReferenceMap = base.NewReferenceMap()
	}
	return r.outerReferenceMap.AddReference(value)
}

func (r *SlotRecord) RemoveOuterReference(value base.Value) error {
	if r.outerReferenceMap == nil {
		return base.NewError(base.FatalError, "no reference available")
	}
	if err := r.outerReferenceMap.RemoveReference(value); err != nil {
		return err
	}
	if r.outerReferenceMap.IsEmpty() {
		r.outerReferenceMap = nil
	}
	return nil
}

func (r *SlotRecord) Prototype() base.Value { return r.atomicSlot.Prototype() }

func (r *SlotRecord) SetPrototype(prototype base.Value) base.Value {
	return r.atomicSlot.SetPrototype(prototype)
}

func (r *SlotRecord) GetSlotTrap() ctx.SlotTrap { return r.atomicSlot.GetSlotTrap() }

func (r *SlotRecord) SetSlotTrap(trap ctx.SlotTrap) ctx.SlotTrap { return r.atomicSlot.SetSlotTrap(trap) }

func (r *SlotRecord) ClearSlotTrap() ctx.SlotTrap { return r.atomicSlot.ClearSlotTrap() }

func (r *SlotRecord) GetInternalSlot(id uint64) ctx.InternalSlot { return r.atomicSlot.GetInternalSlot(id) }

func (r *SlotRecord) SetInternalSlot(id uint64, is ctx.InternalSlot) ctx.InternalSlot {
	return r.atomicSlot.SetInternalSlot(id, is)
}

func (r *SlotRecord) ClearInternalSlot(id uint64) ctx.InternalSlot {
	return r.atomicSlot.ClearInternalSlot(id)
}

func (r *SlotRecord) IterateInternalSlotIDs() []uint64 { return r.atomicSlot.InternalSlotIDs() }

func (r *SlotRecord) GetOwnPropertyTrap(symbol base.Symbol) ctx.PropertyTrap {
	return r.atomicSlot.GetOwnPropertyTrap(symbol)
}

func (r *SlotRecord) DefineOwnPropertyTrap(symbol base.Symbol, trap ctx.PropertyTrap) ctx.PropertyTrap {
	return r.atomicSlot.DefineOwnPropertyTrap(symbol, trap)
}

func (r *SlotRecord) ClearOwnPropertyTrap(symbol base.Symbol) ctx.PropertyTrap {
	return r.atomicSlot.ClearOwnPropertyTrap(symbol)
}

func (r *SlotRecord) IterateOwnPropertySymbols() []base.Symbol { return r.atomicSlot.OwnPropertySymbols() }

func (r *SlotRecord) GetFieldShortcuts() *fieldshortcuts.FieldShortcuts {
	return r.atomicSlot.GetFieldShortcuts()
}

func (r *SlotRecord) SetFieldShortcuts(f *fieldshortcuts.FieldShortcuts) *fieldshortcuts.FieldShortcuts {
	return r.atomicSlot.SetFieldShortcuts(f)
}

func (r *SlotRecord) ClearFieldShortcuts() *fieldshortcuts.FieldShortcuts {
	return r.atomicSlot.ClearFieldShortcuts()
}

func (r *SlotRecord) MarkAsWhite(base_ uint8) { r.color = (BaseWhite ^ base_) & 0b11 }

func (r *SlotRecord) MarkAsBlack(base_ uint8) { r.color = (BaseBlack ^ base_) & 0b11 }

func (r *SlotRecord) MarkAsGray(uint8) { r.color = baseGray }

func (r *SlotRecord) IsWhite(base_ uint8) bool { return (r.color^base_)&0b11 == BaseWhite }

func (r *SlotRecord) IsBlack(base_ uint8) bool { return (r.color^base_)&0b11 == BaseBlack }

func (r *SlotRecord) IsGray(uint8) bool { return r.color == baseGray }
