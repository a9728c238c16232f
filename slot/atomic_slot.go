// Package slot implements the mutable payload every slotted value carries:
// an AtomicSlot (prototype, slot trap, own-property traps, internal slots,
// field shortcuts), wrapped by SlotRecord with the region/index/GC-color
// bookkeeping, wrapped again by RegionSlot which adds the lock and the
// property-access algorithm callers actually invoke.
package slot

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
)

const (
	liveFlag uint32 = 0b1
	sealFlag uint32 = 0b10
)

const (
	BaseWhite uint8 = 0b00
	BaseBlack uint8 = 0b11
	baseGray  uint8 = 0b01
)

// AtomicSlot is the raw, lock-free payload of one slot. Every accessor that
// could race a concurrent collector pass is exposed only through SlotRecord
// and RegionSlot, which add the locking AtomicSlot itself does not.
//
// The source additionally carries a 16-byte union scratch area reserved for
// an unimplemented "optimization" fast path (its own comments mark it
// dead_code and "TODO: add optimization supports"); Go has no safe
// equivalent to a C-style union and nothing in this codebase ever reads
// that area, so it is dropped rather than faithfully reproduced.
type AtomicSlot struct {
	flags uint32

	primitiveType base.PrimitiveType
	prototype     base.Value

	slotTrap          ctx.SlotTrap
	ownPropertyTraps  map[base.Symbol]ctx.PropertyTrap
	fieldShortcuts    *fieldshortcuts.FieldShortcuts
	internalSlots     map[uint64]ctx.InternalSlot
}

func NewAtomicSlot() *AtomicSlot {
	return &AtomicSlot{primitiveType: base.Undefined, prototype: base.MakeUndefined()}
}

// Reset clears every field back to its just-allocated state, returning the
// values and symbols this slot was referencing so the caller can drop those
// outer references. The removed-reference snapshot MUST be taken before any
// field is cleared: clearing first would hand back an empty snapshot and
// leak every reference this slot held.
func (s *AtomicSlot) Reset() ([]base.Value, []base.Symbol) {
	values, symbols := s.ListSelfReferencesWithoutAutorefresh()

	s.primitiveType = base.Undefined
	s.prototype = base.MakeUndefined()
	s.slotTrap = nil
	s.ownPropertyTraps = nil
	s.internalSlots = nil
	s.fieldShortcuts = nil
	s.flags = 0

	return values, symbols
}

func (s *AtomicSlot) IsSealed() bool { return s.flags&sealFlag != 0 }

func (s *AtomicSlot) SealSlot() { s.flags |= sealFlag }

func (s *AtomicSlot) IsAlive() bool { return s.flags&liveFlag != 0 }

func (s *AtomicSlot) MarkAsAlive() { s.flags |= liveFlag }

func (s *AtomicSlot) PrimitiveType() base.PrimitiveType { return s.primitiveType }

func (s *AtomicSlot) Prototype() base.Value { return s.prototype }

func (s *AtomicSlot) SetPrototype(prototype base.Value) base.Value {
	old := s.prototype
	s.prototype = prototype
	return old
}

func (s *AtomicSlot) OverwritePrimitiveType(primitiveType base.PrimitiveType) {
	s.primitiveType = primitiveType
}

// ListSelfReferencesWithoutAutorefresh returns every Value/Symbol this slot
// references, without resolving any of them through redirection first.
func (s *AtomicSlot) ListSelfReferencesWithoutAutorefresh() ([]base.Value, []base.Symbol) {
	var values []base.Value
	var symbols []base.Symbol

	values = append(values, s.prototype)

	if s.slotTrap != nil {
		values = append(values, s.slotTrap.ListInternalReferencedValues()...)
		symbols = append(symbols, s.slotTrap.ListInternalReferencedSymbols()...)
	}
	for _, trap := range s.ownPropertyTraps {
		values = append(values, trap.ListReferencedValues()...)
		symbols = append(symbols, trap.ListInternalReferencedSymbols()...)
	}
	for _, is := range s.internalSlots {
		values = append(values, is.ListReferencedValues()...)
		symbols = append(symbols, is.ListReferencedSymbols()...)
	}

	return values, symbols
}

// ListAndAutorefreshSelfReferences resolves every referenced value through
// redirection, rewiring the reference table for anything that moved, and
// returns the resolved set.
func (s *AtomicSlot) ListAndAutorefreshSelfReferences(selfID base.Value, context ctx.Context) ([]base.Value, []base.Symbol, error) {
	var values []base.Value
	var symbols []base.Symbol

	prototype, err := context.ResolveRealValue(s.prototype)
	if err != nil {
		return nil, nil, err
	}
	if prototype != s.prototype {
		if err := context.AddValueReference(selfID, prototype); err != nil {
			return nil, nil, err
		}
		oldPrototype := s.prototype
		s.prototype = prototype
		if err := context.RemoveValueReference(selfID, oldPrototype); err != nil {
			return nil, nil, err
		}
	}
	values = append(values, prototype)

	if s.slotTrap != nil {
		refreshed, err := s.slotTrap.ListAndAutorefreshInternalReferencedValues(selfID, context)
		if err != nil {
			return nil, nil, err
		}
		values = append(values, refreshed...)
		symbols = append(symbols, s.slotTrap.ListInternalReferencedSymbols()...)
	}
	for _, trap := range s.ownPropertyTraps {
		refreshed, err := trap.ListAndAutorefreshReferencedValues(selfID, context)
		if err != nil {
			return nil, nil, err
		}
		values = append(values, refreshed...)
		symbols = append(symbols, trap.ListInternalReferencedSymbols()...)
	}
	for _, is := range s.internalSlots {
		refreshed, err := is.ListAndAutorefreshReferencedValues(selfID, context)
		if err != nil {
			return nil, nil, err
		}
		values = append(values, refreshed...)
		symbols = append(symbols, is.ListReferencedSymbols()...)
	}

	return values, symbols, nil
}

func (s *AtomicSlot) SetSlotTrap(trap ctx.SlotTrap) ctx.SlotTrap {
	old := s.slotTrap
	s.slotTrap = trap
	return old
}

func (s *AtomicSlot) ClearSlotTrap() ctx.SlotTrap {
	old := s.slotTrap
	s.slotTrap = nil
	return old
}

func (s *AtomicSlot) GetSlotTrap() ctx.SlotTrap { return s.slotTrap }

func (s *AtomicSlot) SetInternalSlot(id uint64, is ctx.InternalSlot) ctx.InternalSlot {
	if s.internalSlots == nil {
		s.internalSlots = make(map[uint64]ctx.InternalSlot)
	}
	old := s.internalSlots[id]
	s.internalSlots[id] = is
	return old
}

func (s *AtomicSlot) ClearInternalSlot(id uint64) ctx.InternalSlot {
	if s.internalSlots == nil {
		return nil
	}
	old := s.internalSlots[id]
	delete(s.internalSlots, id)
	return old
}

func (s *AtomicSlot) GetInternalSlot(id uint64) ctx.InternalSlot {
	if s.internalSlots == nil {
		return nil
	}
	return s.internalSlots[id]
}

func (s *AtomicSlot) InternalSlotIDs() []uint64 {
	ids := make([]uint64, 0, len(s.internalSlots))
	for id := range s.internalSlots {
		ids = append(ids, id)
	}
	return ids
}

func (s *AtomicSlot) GetOwnPropertyTrap(symbol base.Symbol) ctx.PropertyTrap {
	if s.ownPropertyTraps == nil {
		return nil
	}
	return s.ownPropertyTraps[symbol]
}

func (s *AtomicSlot) DefineOwnPropertyTrap(symbol base.Symbol, trap ctx.PropertyTrap) ctx.PropertyTrap {
	if s.ownPropertyTraps == nil {
		s.ownPropertyTraps = make(map[base.Symbol]ctx.PropertyTrap)
	}
	old := s.ownPropertyTraps[symbol]
	s.ownPropertyTraps[symbol] = trap
	return old
}

func (s *AtomicSlot) ClearOwnPropertyTrap(symbol base.Symbol) ctx.PropertyTrap {
	if s.ownPropertyTraps == nil {
		return nil
	}
	old := s.ownPropertyTraps[symbol]
	delete(s.ownPropertyTraps, symbol)
	return old
}

func (s *AtomicSlot) OwnPropertySymbols() []base.Symbol {
	symbols := make([]base.Symbol, 0, len(s.ownPropertyTraps))
	for symbol := range s.ownPropertyTraps {
		symbols = append(symbols, symbol)
	}
	return symbols
}

func (s *AtomicSlot) GetFieldShortcuts() *fieldshortcuts.FieldShortcuts { return s.fieldShortcuts }

func (s *AtomicSlot) SetFieldShortcuts(f *fieldshortcuts.FieldShortcuts) *fieldshortcuts.FieldShortcuts {
	old := s.fieldShortcuts
	s.fieldShortcuts = f
	return old
}

func (s *AtomicSlot) ClearFieldShortcuts() *fieldshortcuts.FieldShortcuts {
	old := s.fieldShortcuts
	s.fieldShortcuts = nil
	return old
}
