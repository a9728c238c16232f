package slot

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/util"
)

// RegionSlot is the locked, callable front of one slot: an RwLock guarding a
// SlotRecord, plus the full own-property access algorithm (field-shortcut
// fast path, simple-field trap fast path, slot-trap dispatch, plain
// fallback) that every slotted Value's property access runs through.
type RegionSlot struct {
	lock   *util.RwLock
	record *SlotRecord
}

func NewRegionSlot(regionID uint32, slotIndex uint16) *RegionSlot {
	return &RegionSlot{lock: util.NewRwLock(), record: NewSlotRecord(regionID, slotIndex)}
}

// Constructor, snapshot and initialization.

func (s *RegionSlot) Recycle(dropValue bool, context ctx.Context) error {
	g := s.lock.LockWrite()
	if !s.record.IsAlive() {
		g.Unlock()
		return nil
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	slotTrap := s.record.GetSlotTrap()
	removedValues, removedSymbols := s.record.Reset()
	g.Unlock()

	for _, value := range removedValues {
		if err := context.RemoveValueReference(id, value); err != nil {
			return err
		}
	}
	for _, symbol := range removedSymbols {
		if err := context.RemoveSymbolReference(symbol); err != nil {
			return err
		}
	}

	if dropValue {
		if slotTrap != nil {
			if _, err := slotTrap.NotifyDrop(); err != nil {
				return err
			}
		}
		if err := context.NotifySlotDrop(id); err != nil {
			return err
		}
	}

	return nil
}

func (s *RegionSlot) Freeze() (SlotRecordSnapshot, *base.ReferenceMap, []base.Value, []base.Symbol, error) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return SlotRecordSnapshot{}, nil, nil, nil, base.NewError(base.FatalError, "slot not alive")
	}

	snapshot, outerReferenceMap, removedValues, removedSymbols := s.record.Freeze()
	return snapshot, outerReferenceMap, removedValues, removedSymbols, nil
}

func (s *RegionSlot) Restore(snapshot SlotRecordSnapshot) (base.Value, []base.Value, []base.Symbol, error) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if s.record.IsAlive() {
		return base.Value{}, nil, nil, base.NewError(base.FatalError, "slot is alive")
	}

	s.record.Restore(snapshot)

	addedValues, addedSymbols := s.record.ListSelfReferencesWithoutAutorefresh()

	id, err := s.record.GetID()
	if err != nil {
		return base.Value{}, nil, nil, err
	}
	return id, addedValues, addedSymbols, nil
}

// Basic information.

func (s *RegionSlot) GetID() (base.Value, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.Value{}, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.GetID()
}

func (s *RegionSlot) IsSealed() (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.IsSealed(), nil
}

func (s *RegionSlot) SealSlot() error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	s.record.SealSlot()
	return nil
}

func (s *RegionSlot) IsAlive() bool {
	g := s.lock.LockRead()
	defer g.Unlock()
	return s.record.IsAlive()
}

func (s *RegionSlot) MarkAsAlive() {
	g := s.lock.LockWrite()
	defer g.Unlock()
	s.record.MarkAsAlive()
}

func (s *RegionSlot) OverwritePrimitiveType(primitiveType base.PrimitiveType) error {
	g := s.lock.LockWrite()
	defer g.Unlock()
	return s.record.OverwritePrimitiveType(primitiveType)
}

// Slot trap.

func (s *RegionSlot) SetSlotTrap(slotTrap ctx.SlotTrap, context ctx.Context) error {
	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}

	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}

	for _, value := range slotTrap.ListInternalReferencedValues() {
		if err := context.AddValueReference(id, value); err != nil {
			g.Unlock()
			return err
		}
	}
	for _, symbol := range slotTrap.ListInternalReferencedSymbols() {
		if err := context.AddSymbolReference(symbol); err != nil {
			g.Unlock()
			return err
		}
	}

	oldSlotTrap := s.record.SetSlotTrap(slotTrap)
	g.Unlock()

	if oldSlotTrap != nil {
		for _, symbol := range oldSlotTrap.ListInternalReferencedSymbols() {
			if err := context.RemoveSymbolReference(symbol); err != nil {
				return err
			}
		}
		for _, value := range oldSlotTrap.ListInternalReferencedValues() {
			if err := context.RemoveValueReference(id, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *RegionSlot) ClearSlotTrap(context ctx.Context) error {
	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}

	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	oldSlotTrap := s.record.ClearSlotTrap()
	g.Unlock()

	if oldSlotTrap != nil {
		for _, symbol := range oldSlotTrap.ListInternalReferencedSymbols() {
			if err := context.RemoveSymbolReference(symbol); err != nil {
				return err
			}
		}
		for _, value := range oldSlotTrap.ListInternalReferencedValues() {
			if err := context.RemoveValueReference(id, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *RegionSlot) HasSlotTrap() (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.GetSlotTrap() != nil, nil
}

// Internal slot.

func (s *RegionSlot) SetInternalSlot(id uint64, internalSlot ctx.InternalSlot, context ctx.Context) error {
	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}

	slotID, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}

	for _, value := range internalSlot.ListReferencedValues() {
		if err := context.AddValueReference(slotID, value); err != nil {
			g.Unlock()
			return err
		}
	}
	for _, symbol := range internalSlot.ListReferencedSymbols() {
		if err := context.AddSymbolReference(symbol); err != nil {
			g.Unlock()
			return err
		}
	}

	oldInternalSlot := s.record.SetInternalSlot(id, internalSlot)
	g.Unlock()

	if oldInternalSlot != nil {
		for _, symbol := range oldInternalSlot.ListReferencedSymbols() {
			if err := context.RemoveSymbolReference(symbol); err != nil {
				return err
			}
		}
		for _, value := range oldInternalSlot.ListReferencedValues() {
			if err := context.RemoveValueReference(slotID, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *RegionSlot) ClearInternalSlot(id uint64, context ctx.Context) error {
	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}

	slotID, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	oldInternalSlot := s.record.ClearInternalSlot(id)
	g.Unlock()

	if oldInternalSlot != nil {
		for _, symbol := range oldInternalSlot.ListReferencedSymbols() {
			if err := context.RemoveSymbolReference(symbol); err != nil {
				return err
			}
		}
		for _, value := range oldInternalSlot.ListReferencedValues() {
			if err := context.RemoveValueReference(slotID, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *RegionSlot) GetInternalSlot(id uint64, context ctx.Context) (*ctx.ProtectedInternalSlot, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, base.NewError(base.FatalError, "slot not alive")
	}

	internalSlot := s.record.GetInternalSlot(id)
	if internalSlot == nil {
		return nil, nil
	}
	return ctx.NewProtectedInternalSlot(internalSlot, context)
}

func (s *RegionSlot) HasInternalSlot(id uint64) (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.GetInternalSlot(id) != nil, nil
}

func (s *RegionSlot) ListInternalSlotIDs() ([]uint64, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.IterateInternalSlotIDs(), nil
}

// Prototype.

// GetPrototypeWithLayoutGuard resolves this slot's prototype, giving an
// installed slot trap's GetPrototype hook first refusal before returning the
// stored field. layoutGuard is released before the trap callback runs.
func (s *RegionSlot) GetPrototypeWithLayoutGuard(
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
) (base.Value, error) {

	g := s.lock.LockRead()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.Value{}, base.NewError(base.FatalError, "slot not alive")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return base.Value{}, err
	}
	slotTrap := s.record.GetSlotTrap()

	if slotTrap == nil {
		prototype := s.record.Prototype()
		g.Unlock()
		return prototype, nil
	}

	protectedTrap, err := ctx.NewProtectedSlotTrap(slotTrap, context)
	g.Unlock()
	if err != nil {
		return base.Value{}, err
	}

	layoutGuard.Unlock()

	trap := protectedTrap.Trap()
	if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
		return base.Value{}, err
	}
	trapInfo := context.CreateTrapInfo(id, nil)
	result, err := trap.GetPrototype(trapInfo, context)
	if err != nil {
		return base.Value{}, err
	}
	switch result.Outcome {
	case ctx.Trapped:
		return result.Value, nil
	case ctx.Thrown:
		return base.Value{}, base.NewError(base.RogicError, "rogic error happened")
	default:
		g = s.lock.LockRead()
		defer g.Unlock()
		if !s.record.IsAlive() {
			return base.Value{}, base.NewError(base.FatalError, "slot not alive")
		}
		return s.record.Prototype(), nil
	}
}

func (s *RegionSlot) SetPrototypeWithLayoutGuard(
	prototype base.Value,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {

	prototype, err := context.ResolveRealValue(prototype)
	if err != nil {
		return err
	}

	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedPrototype, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	slotTrap := s.record.GetSlotTrap()

	if slotTrap == nil {
		return s.setPrototypeDirectly(g, id, prototype, context)
	}

	protectedTrap, err := ctx.NewProtectedSlotTrap(slotTrap, context)
	g.Unlock()
	if err != nil {
		return err
	}

	layoutGuard.Unlock()

	trap := protectedTrap.Trap()
	if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
		return err
	}
	trapInfo := context.CreateTrapInfo(id, []base.Value{prototype})
	result, err := trap.SetPrototype(trapInfo, context)
	if err != nil {
		return err
	}
	switch result.Outcome {
	case ctx.Trapped:
		return nil
	case ctx.Thrown:
		return base.NewError(base.RogicError, "rogic error happened")
	}

	if noRedirection {
		return s.SetPrototypeIgnoreSlotTrap(prototype, context)
	}
	return context.SetPrototype(id, prototype)
}

func (s *RegionSlot) SetPrototypeIgnoreSlotTrap(prototype base.Value, context ctx.Context) error {
	prototype, err := context.ResolveRealValue(prototype)
	if err != nil {
		return err
	}

	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedPrototype, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	return s.setPrototypeDirectly(g, id, prototype, context)
}

// setPrototypeDirectly overwrites the stored prototype field and rebalances
// the outer reference it holds. Callers must already hold s.lock for write
// and have verified the slot is alive and unsealed; it releases the guard.
func (s *RegionSlot) setPrototypeDirectly(g *util.RwLockWriteGuard, id base.Value, prototype base.Value, context ctx.Context) error {
	oldPrototype := s.record.SetPrototype(prototype)
	g.Unlock()

	if prototype == oldPrototype {
		return nil
	}
	if err := context.AddValueReference(id, prototype); err != nil {
		return err
	}
	return context.RemoveValueReference(id, oldPrototype)
}

// Own properties.

func (s *RegionSlot) HasOwnProperty(symbol base.Symbol, context ctx.Context) (bool, error) {
	g := s.lock.LockRead()

	if !s.record.IsAlive() {
		g.Unlock()
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return false, err
	}
	slotTrap := s.record.GetSlotTrap()
	hasPropertyTrap := s.record.GetOwnPropertyTrap(symbol) != nil

	if slotTrap == nil {
		g.Unlock()
		return hasPropertyTrap, nil
	}

	protectedTrap, err := ctx.NewProtectedSlotTrap(slotTrap, context)
	g.Unlock()
	if err != nil {
		return false, err
	}
	trap := protectedTrap.Trap()

	symbolValue := base.MakeSymbol(symbol.ID())
	if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
		return false, err
	}
	trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue})
	result, err := trap.HasOwnProperty(trapInfo, context)
	if err != nil {
		return false, err
	}
	switch result.Outcome {
	case ctx.Trapped:
		return result.Value.ExtractInteger(0) != 0, nil
	case ctx.Thrown:
		return false, base.NewError(base.RogicError, "rogic error happened")
	default:
		return hasPropertyTrap, nil
	}
}

// GetOwnPropertyWithLayoutGuard is the full own-property read path: the
// field-shortcut fast path, then the simple-field trap fast path, then
// slot-trap dispatch, falling back to the plain stored property. layoutGuard
// is released as soon as the fast paths are ruled out, before any trap
// callback runs (trap callbacks may themselves touch the slot layout).
func (s *RegionSlot) GetOwnPropertyWithLayoutGuard(
	symbol base.Symbol,
	fieldToken *fieldshortcuts.FieldToken,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) (base.Value, error) {

	if fieldToken != nil && fieldToken.Symbol() != symbol {
		return base.Value{}, base.NewError(base.FatalError, "field token not match the symbol expected")
	}

	g := s.lock.LockRead()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.Value{}, base.NewError(base.FatalError, "slot not alive")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return base.Value{}, err
	}
	slotTrap := s.record.GetSlotTrap()
	propertyTrap := s.record.GetOwnPropertyTrap(symbol)
	fieldShortcuts := s.record.GetFieldShortcuts()

	if slotTrap == nil && propertyTrap != nil && fieldToken != nil && fieldShortcuts != nil {
		if fieldValue, found := fieldToken.GetField(fieldShortcuts); found {
			g.Unlock()
			newValue, err := context.ResolveRealValue(fieldValue)
			if err != nil {
				return base.Value{}, err
			}
			if newValue != fieldValue {
				if err := context.AddValueReference(id, newValue); err != nil {
					return base.Value{}, err
				}
				fieldToken.SetField(fieldShortcuts, newValue)
				propertyTrap.RefreshReferencedValue(fieldValue, newValue)
				if err := context.RemoveValueReference(id, fieldValue); err != nil {
					return base.Value{}, err
				}
			}
			return newValue, nil
		}

		if propertyTrap.IsSimpleField() {
			g.Unlock()
			symbolValue := base.MakeSymbol(symbol.ID())
			trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue})
			fieldValue, err := propertyTrap.GetProperty(trapInfo, context)
			if err != nil {
				return base.Value{}, err
			}
			newValue, err := context.ResolveRealValue(fieldValue)
			if err != nil {
				return base.Value{}, err
			}
			if newValue != fieldValue {
				if err := context.AddValueReference(id, newValue); err != nil {
					return base.Value{}, err
				}
				fieldToken.SetField(fieldShortcuts, newValue)
				propertyTrap.RefreshReferencedValue(fieldValue, newValue)
				if err := context.RemoveValueReference(id, fieldValue); err != nil {
					return base.Value{}, err
				}
			} else {
				fieldToken.SetField(fieldShortcuts, newValue)
			}
			return newValue, nil
		}
	}

	var protectedTrap *ctx.ProtectedSlotTrap
	if slotTrap != nil {
		protectedTrap, err = ctx.NewProtectedSlotTrap(slotTrap, context)
		if err != nil {
			g.Unlock()
			return base.Value{}, err
		}
	}
	g.Unlock()

	layoutGuard.Unlock()

	symbolValue := base.MakeSymbol(symbol.ID())
	if protectedTrap != nil {
		trap := protectedTrap.Trap()
		if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
			return base.Value{}, err
		}
		trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue})
		result, err := trap.GetOwnProperty(trapInfo, context)
		if err != nil {
			return base.Value{}, err
		}
		switch result.Outcome {
		case ctx.Trapped:
			return result.Value, nil
		case ctx.Thrown:
			return base.Value{}, base.NewError(base.RogicError, "rogic error happened")
		}
	}

	if noRedirection {
		return s.GetOwnPropertyIgnoreSlotTrap(symbol, context)
	}
	return context.GetOwnPropertyIgnoreSlotTrap(id, symbol)
}

func (s *RegionSlot) GetOwnPropertyIgnoreSlotTrap(symbol base.Symbol, context ctx.Context) (base.Value, error) {
	g := s.lock.LockRead()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.Value{}, base.NewError(base.FatalError, "slot not alive")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return base.Value{}, err
	}
	propertyTrap := s.record.GetOwnPropertyTrap(symbol)
	if propertyTrap == nil {
		g.Unlock()
		return base.MakeUndefined(), nil
	}
	protectedTrap, err := ctx.NewProtectedPropertyTrap(propertyTrap, context)
	g.Unlock()
	if err != nil {
		return base.Value{}, err
	}
	trap := protectedTrap.Trap()

	if _, err := trap.ListAndAutorefreshReferencedValues(id, context); err != nil {
		return base.Value{}, err
	}

	symbolValue := base.MakeSymbol(symbol.ID())
	trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue})
	return trap.GetProperty(trapInfo, context)
}

func (s *RegionSlot) OverwriteOwnProperty(symbol base.Symbol, value base.Value) ([]base.Value, []base.Symbol, []base.Value, []base.Symbol, error) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, nil, nil, nil, base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		return nil, nil, nil, nil, base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}

	propertyTrap := s.record.GetOwnPropertyTrap(symbol)

	var removedValues []base.Value
	var removedSymbols []base.Symbol
	var addedSymbols []base.Symbol
	if propertyTrap != nil {
		removedValues = propertyTrap.ListReferencedValues()
		removedSymbols = propertyTrap.ListInternalReferencedSymbols()
		addedSymbols = []base.Symbol{symbol}
	}

	if fieldShortcuts := s.record.GetFieldShortcuts(); fieldShortcuts != nil {
		fieldShortcuts.SetSymbolField(symbol, value)
	}

	s.record.DefineOwnPropertyTrap(symbol, ctx.NewFieldPropertyTrap(value))

	return removedValues, removedSymbols, []base.Value{value}, addedSymbols, nil
}

func (s *RegionSlot) SetOwnPropertyWithLayoutGuard(
	symbol base.Symbol,
	value base.Value,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {

	value, err := context.ResolveRealValue(value)
	if err != nil {
		return err
	}

	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	slotTrap := s.record.GetSlotTrap()
	propertyTrap := s.record.GetOwnPropertyTrap(symbol)
	fieldShortcuts := s.record.GetFieldShortcuts()

	if slotTrap == nil {
		if propertyTrap == nil {
			newTrap := ctx.NewFieldPropertyTrap(value)
			for _, v := range newTrap.ListReferencedValues() {
				if err := context.AddValueReference(id, v); err != nil {
					g.Unlock()
					return err
				}
			}
			for _, sym := range newTrap.ListInternalReferencedSymbols() {
				if err := context.AddSymbolReference(sym); err != nil {
					g.Unlock()
					return err
				}
			}
			if err := context.AddSymbolReference(symbol); err != nil {
				g.Unlock()
				return err
			}
			s.record.DefineOwnPropertyTrap(symbol, newTrap)
			g.Unlock()
			return nil
		}

		if fieldShortcuts != nil {
			if propertyTrap.IsSimpleField() {
				symbolValue := base.MakeSymbol(symbol.ID())
				trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue, value})
				removedValues, addedValues, removedSymbols, addedSymbols, err := propertyTrap.SetProperty(trapInfo, context)
				if err != nil {
					g.Unlock()
					return err
				}
				for _, v := range addedValues {
					if err := context.AddValueReference(id, v); err != nil {
						g.Unlock()
						return err
					}
				}
				for _, sym := range addedSymbols {
					if err := context.AddSymbolReference(sym); err != nil {
						g.Unlock()
						return err
					}
				}
				fieldShortcuts.SetSymbolField(symbol, value)
				for _, sym := range removedSymbols {
					if err := context.RemoveSymbolReference(sym); err != nil {
						g.Unlock()
						return err
					}
				}
				for _, v := range removedValues {
					if err := context.RemoveValueReference(id, v); err != nil {
						g.Unlock()
						return err
					}
				}
				g.Unlock()
				return nil
			}
			fieldShortcuts.ClearField(symbol)
		}
	}

	var protectedTrap *ctx.ProtectedSlotTrap
	if slotTrap != nil {
		protectedTrap, err = ctx.NewProtectedSlotTrap(slotTrap, context)
		if err != nil {
			g.Unlock()
			return err
		}
	}
	g.Unlock()

	layoutGuard.Unlock()

	symbolValue := base.MakeSymbol(symbol.ID())
	if protectedTrap != nil {
		trap := protectedTrap.Trap()
		if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
			return err
		}
		trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue, value})
		result, err := trap.SetOwnProperty(trapInfo, context)
		if err != nil {
			return err
		}
		switch result.Outcome {
		case ctx.Trapped:
			return nil
		case ctx.Thrown:
			return base.NewError(base.RogicError, "rogic error happened")
		}
	}

	if noRedirection {
		return s.SetOwnPropertyIgnoreSlotTrap(symbol, value, context)
	}
	return context.SetOwnPropertyIgnoreSlotTrap(id, symbol, value)
}

func (s *RegionSlot) SetOwnPropertyIgnoreSlotTrap(symbol base.Symbol, value base.Value, context ctx.Context) error {
	value, err := context.ResolveRealValue(value)
	if err != nil {
		return err
	}

	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	propertyTrap := s.record.GetOwnPropertyTrap(symbol)
	fieldShortcuts := s.record.GetFieldShortcuts()

	if propertyTrap == nil {
		newTrap := ctx.NewFieldPropertyTrap(value)
		for _, v := range newTrap.ListReferencedValues() {
			if err := context.AddValueReference(id, v); err != nil {
				g.Unlock()
				return err
			}
		}
		for _, sym := range newTrap.ListInternalReferencedSymbols() {
			if err := context.AddSymbolReference(sym); err != nil {
				g.Unlock()
				return err
			}
		}
		if err := context.AddSymbolReference(symbol); err != nil {
			g.Unlock()
			return err
		}
		s.record.DefineOwnPropertyTrap(symbol, newTrap)
		g.Unlock()
		return nil
	}

	if fieldShortcuts != nil {
		if propertyTrap.IsSimpleField() {
			symbolValue := base.MakeSymbol(symbol.ID())
			trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue, value})
			removedValues, addedValues, removedSymbols, addedSymbols, err := propertyTrap.SetProperty(trapInfo, context)
			if err != nil {
				g.Unlock()
				return err
			}
			for _, v := range addedValues {
				if err := context.AddValueReference(id, v); err != nil {
					g.Unlock()
					return err
				}
			}
			for _, sym := range addedSymbols {
				if err := context.AddSymbolReference(sym); err != nil {
					g.Unlock()
					return err
				}
			}
			fieldShortcuts.SetSymbolField(symbol, value)
			for _, sym := range removedSymbols {
				if err := context.RemoveSymbolReference(sym); err != nil {
					g.Unlock()
					return err
				}
			}
			for _, v := range removedValues {
				if err := context.RemoveValueReference(id, v); err != nil {
					g.Unlock()
					return err
				}
			}
			g.Unlock()
			return nil
		}
		fieldShortcuts.ClearField(symbol)
	}

	protectedTrap, err := ctx.NewProtectedPropertyTrap(propertyTrap, context)
	g.Unlock()
	if err != nil {
		return err
	}
	trap := protectedTrap.Trap()

	symbolValue := base.MakeSymbol(symbol.ID())
	trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue, value})
	removedValues, addedValues, removedSymbols, addedSymbols, err := trap.SetProperty(trapInfo, context)
	if err != nil {
		return err
	}
	for _, v := range addedValues {
		if err := context.AddValueReference(id, v); err != nil {
			return err
		}
	}
	for _, sym := range addedSymbols {
		if err := context.AddSymbolReference(sym); err != nil {
			return err
		}
	}

	wg := s.lock.LockWrite()
	if fieldShortcuts := s.record.GetFieldShortcuts(); fieldShortcuts != nil {
		fieldShortcuts.ClearField(symbol)
	}
	wg.Unlock()

	for _, sym := range removedSymbols {
		if err := context.RemoveSymbolReference(sym); err != nil {
			return err
		}
	}
	for _, v := range removedValues {
		if err := context.RemoveValueReference(id, v); err != nil {
			return err
		}
	}

	return nil
}

func (s *RegionSlot) DefineOwnPropertyWithLayoutGuard(
	symbol base.Symbol,
	propertyTrap ctx.PropertyTrap,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {

	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	slotTrap := s.record.GetSlotTrap()
	fieldShortcuts := s.record.GetFieldShortcuts()

	if slotTrap == nil {
		for _, v := range propertyTrap.ListReferencedValues() {
			if err := context.AddValueReference(id, v); err != nil {
				g.Unlock()
				return err
			}
		}
		for _, sym := range propertyTrap.ListInternalReferencedSymbols() {
			if err := context.AddSymbolReference(sym); err != nil {
				g.Unlock()
				return err
			}
		}
		if fieldShortcuts != nil {
			if propertyTrap.IsSimpleField() {
				symbolValue := base.MakeSymbol(symbol.ID())
				trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue})
				value, err := propertyTrap.GetProperty(trapInfo, context)
				if err != nil {
					g.Unlock()
					return err
				}
				fieldShortcuts.SetSymbolField(symbol, value)
			} else {
				fieldShortcuts.ClearField(symbol)
			}
		}
		oldPropertyTrap := s.record.DefineOwnPropertyTrap(symbol, propertyTrap)
		if oldPropertyTrap != nil {
			for _, v := range oldPropertyTrap.ListReferencedValues() {
				if err := context.RemoveValueReference(id, v); err != nil {
					g.Unlock()
					return err
				}
			}
			for _, sym := range oldPropertyTrap.ListInternalReferencedSymbols() {
				if err := context.RemoveSymbolReference(sym); err != nil {
					g.Unlock()
					return err
				}
			}
		} else {
			if err := context.AddSymbolReference(symbol); err != nil {
				g.Unlock()
				return err
			}
		}
		g.Unlock()
		return nil
	}

	protectedTrap, err := ctx.NewProtectedSlotTrap(slotTrap, context)
	g.Unlock()
	if err != nil {
		return err
	}

	layoutGuard.Unlock()

	trap := protectedTrap.Trap()
	symbolValue := base.MakeSymbol(symbol.ID())
	if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
		return err
	}
	trapValue, err := context.MakePropertyTrapValue(propertyTrap)
	if err != nil {
		return err
	}
	trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue, trapValue})
	result, err := trap.DefineOwnProperty(trapInfo, context)
	if err != nil {
		return err
	}
	switch result.Outcome {
	case ctx.Trapped:
		return nil
	case ctx.Thrown:
		return base.NewError(base.RogicError, "rogic error happened")
	}

	if noRedirection {
		return s.DefineOwnPropertyIgnoreSlotTrap(symbol, propertyTrap, context)
	}
	return context.DefineOwnPropertyIgnoreSlotTrap(id, symbol, propertyTrap)
}

func (s *RegionSlot) DefineOwnPropertyIgnoreSlotTrap(symbol base.Symbol, propertyTrap ctx.PropertyTrap, context ctx.Context) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		return err
	}
	fieldShortcuts := s.record.GetFieldShortcuts()

	for _, v := range propertyTrap.ListReferencedValues() {
		if err := context.AddValueReference(id, v); err != nil {
			return err
		}
	}
	for _, sym := range propertyTrap.ListInternalReferencedSymbols() {
		if err := context.AddSymbolReference(sym); err != nil {
			return err
		}
	}
	if fieldShortcuts != nil {
		if propertyTrap.IsSimpleField() {
			symbolValue := base.MakeSymbol(symbol.ID())
			trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue})
			value, err := propertyTrap.GetProperty(trapInfo, context)
			if err != nil {
				return err
			}
			fieldShortcuts.SetSymbolField(symbol, value)
		} else {
			fieldShortcuts.ClearField(symbol)
		}
	}
	oldPropertyTrap := s.record.DefineOwnPropertyTrap(symbol, propertyTrap)
	if oldPropertyTrap != nil {
		for _, v := range oldPropertyTrap.ListReferencedValues() {
			if err := context.RemoveValueReference(id, v); err != nil {
				return err
			}
		}
		for _, sym := range oldPropertyTrap.ListInternalReferencedSymbols() {
			if err := context.RemoveSymbolReference(sym); err != nil {
				return err
			}
		}
	} else {
		if err := context.AddSymbolReference(symbol); err != nil {
			return err
		}
	}

	return nil
}

func (s *RegionSlot) DeleteOwnPropertyWithLayoutGuard(
	symbol base.Symbol,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {

	g := s.lock.LockWrite()

	if !s.record.IsAlive() {
		g.Unlock()
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		g.Unlock()
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return err
	}
	slotTrap := s.record.GetSlotTrap()
	fieldShortcuts := s.record.GetFieldShortcuts()

	if slotTrap == nil {
		if fieldShortcuts != nil {
			fieldShortcuts.ClearField(symbol)
		}
		oldPropertyTrap := s.record.ClearOwnPropertyTrap(symbol)
		if oldPropertyTrap != nil {
			for _, v := range oldPropertyTrap.ListReferencedValues() {
				if err := context.RemoveValueReference(id, v); err != nil {
					g.Unlock()
					return err
				}
			}
			for _, sym := range oldPropertyTrap.ListInternalReferencedSymbols() {
				if err := context.RemoveSymbolReference(sym); err != nil {
					g.Unlock()
					return err
				}
			}
			if err := context.RemoveSymbolReference(symbol); err != nil {
				g.Unlock()
				return err
			}
		}
		g.Unlock()
		return nil
	}

	protectedTrap, err := ctx.NewProtectedSlotTrap(slotTrap, context)
	g.Unlock()
	if err != nil {
		return err
	}

	layoutGuard.Unlock()

	trap := protectedTrap.Trap()
	symbolValue := base.MakeSymbol(symbol.ID())
	if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
		return err
	}
	trapInfo := context.CreateTrapInfo(id, []base.Value{symbolValue})
	result, err := trap.DeleteOwnProperty(trapInfo, context)
	if err != nil {
		return err
	}
	switch result.Outcome {
	case ctx.Trapped:
		return nil
	case ctx.Thrown:
		return base.NewError(base.RogicError, "rogic error happened")
	}

	if noRedirection {
		return s.DeleteOwnPropertyIgnoreSlotTrap(symbol, context)
	}
	return context.DeleteOwnPropertyIgnoreSlotTrap(id, symbol)
}

func (s *RegionSlot) DeleteOwnPropertyIgnoreSlotTrap(symbol base.Symbol, context ctx.Context) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	if s.record.IsSealed() {
		return base.NewError(base.MutatingSealedProperty, "slot is sealed")
	}
	id, err := s.record.GetID()
	if err != nil {
		return err
	}
	fieldShortcuts := s.record.GetFieldShortcuts()

	if fieldShortcuts != nil {
		fieldShortcuts.ClearField(symbol)
	}
	oldPropertyTrap := s.record.ClearOwnPropertyTrap(symbol)
	if oldPropertyTrap != nil {
		for _, v := range oldPropertyTrap.ListReferencedValues() {
			if err := context.RemoveValueReference(id, v); err != nil {
				return err
			}
		}
		for _, sym := range oldPropertyTrap.ListInternalReferencedSymbols() {
			if err := context.RemoveSymbolReference(sym); err != nil {
				return err
			}
		}
		if err := context.RemoveSymbolReference(symbol); err != nil {
			return err
		}
	}

	return nil
}

func (s *RegionSlot) ListOwnPropertySymbolsWithLayoutGuard(
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) (map[base.Symbol]struct{}, error) {

	g := s.lock.LockRead()

	if !s.record.IsAlive() {
		g.Unlock()
		return nil, base.NewError(base.FatalError, "slot not alive")
	}
	id, err := s.record.GetID()
	if err != nil {
		g.Unlock()
		return nil, err
	}
	slotTrap := s.record.GetSlotTrap()

	if slotTrap == nil {
		symbols := make(map[base.Symbol]struct{})
		for _, symbol := range s.record.IterateOwnPropertySymbols() {
			symbols[symbol] = struct{}{}
		}
		g.Unlock()
		return symbols, nil
	}

	protectedTrap, err := ctx.NewProtectedSlotTrap(slotTrap, context)
	g.Unlock()
	if err != nil {
		return nil, err
	}

	layoutGuard.Unlock()

	trap := protectedTrap.Trap()
	if _, err := trap.ListAndAutorefreshInternalReferencedValues(id, context); err != nil {
		return nil, err
	}
	trapInfo := context.CreateTrapInfo(id, nil)
	result, err := trap.ListOwnPropertySymbols(trapInfo, context)
	if err != nil {
		return nil, err
	}
	switch result.Outcome {
	case ctx.Trapped:
		elements, err := context.ExtractList(result.Value)
		if err != nil {
			return nil, err
		}
		symbols := make(map[base.Symbol]struct{}, len(elements))
		for _, value := range elements {
			if !value.IsSymbol() {
				return nil, base.NewError(base.RogicRuntimeError, "invalid symbols")
			}
			symbolID, err := value.GetSymbolID()
			if err != nil {
				return nil, err
			}
			symbols[base.NewSymbol(symbolID)] = struct{}{}
		}
		return symbols, nil
	case ctx.Thrown:
		return nil, base.NewError(base.RogicError, "rogic error happened")
	}

	if noRedirection {
		return s.ListOwnPropertySymbolsIgnoreSlotTrap(context)
	}
	return context.ListOwnPropertySymbolsIgnoreSlotTrap(id)
}

func (s *RegionSlot) ListOwnPropertySymbolsIgnoreSlotTrap(ctx.Context) (map[base.Symbol]struct{}, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, base.NewError(base.FatalError, "slot not alive")
	}
	symbols := make(map[base.Symbol]struct{})
	for _, symbol := range s.record.IterateOwnPropertySymbols() {
		symbols[symbol] = struct{}{}
	}
	return symbols, nil
}

// Field shortcuts.

func (s *RegionSlot) HasFieldShortcuts() (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.GetFieldShortcuts() != nil, nil
}

func (s *RegionSlot) GetFieldShortcuts() (*fieldshortcuts.FieldShortcuts, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.GetFieldShortcuts(), nil
}

func (s *RegionSlot) SetFieldShortcuts(fieldShortcuts *fieldshortcuts.FieldShortcuts) (*fieldshortcuts.FieldShortcuts, error) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.SetFieldShortcuts(fieldShortcuts), nil
}

func (s *RegionSlot) ClearFieldShortcuts() (*fieldshortcuts.FieldShortcuts, error) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.ClearFieldShortcuts(), nil
}

// References.

func (s *RegionSlot) SweepOuterReferenceMap() (*base.ReferenceMap, error) {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return nil, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.SweepOuterReferenceMap(), nil
}

func (s *RegionSlot) HasNoOuterReferences() (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.HasNoOuterReferences(), nil
}

func (s *RegionSlot) AddOuterReference(value base.Value) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.AddOuterReference(value)
}

func (s *RegionSlot) RemoveOuterReference(value base.Value) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.RemoveOuterReference(value)
}

// Colors.

func (s *RegionSlot) ListAndAutorefreshSelfReferences(context ctx.Context) ([]base.Value, []base.Symbol, error) {
	g := s.lock.LockWrite()
	defer g.Unlock()
	return s.record.ListAndAutorefreshSelfReferences(context)
}

func (s *RegionSlot) MarkAsWhite(base_ uint8) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	s.record.MarkAsWhite(base_)
	return nil
}

func (s *RegionSlot) MarkAsBlack(base_ uint8) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	s.record.MarkAsBlack(base_)
	return nil
}

func (s *RegionSlot) MarkAsGray(base_ uint8) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return base.NewError(base.FatalError, "slot not alive")
	}
	s.record.MarkAsGray(base_)
	return nil
}

func (s *RegionSlot) IsWhite(base_ uint8) (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.IsWhite(base_), nil
}

func (s *RegionSlot) IsBlack(base_ uint8) (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.IsBlack(base_), nil
}

func (s *RegionSlot) IsGray(base_ uint8) (bool, error) {
	g := s.lock.LockRead()
	defer g.Unlock()

	if !s.record.IsAlive() {
		return false, base.NewError(base.FatalError, "slot not alive")
	}
	return s.record.IsGray(base_), nil
}
