// Package region implements one fixed-capacity arena of slots: the
// occupancy/empty bitmaps, the nursery of not-yet-referenced allocations,
// the redirection table left behind by refragmentation, and the thin
// delegation layer that forwards every per-slot operation to the matching
// slot.RegionSlot once the region-level bookkeeping around it is settled.
package region

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/slot"
	"github.com/dragonation/rogiso-go/util"
)

// SlotCount is the number of slots a region holds, chosen upstream so a
// region's footprint rounds to a whole number of 32 KiB allocator pages.
const SlotCount = 578

// bitmapWords is ceil(SlotCount/64), the number of uint64 words needed for
// one occupancy or empty bitmap.
const bitmapWords = 10

type redirectionReference struct {
	redirection  base.Value
	referenceMap *base.ReferenceMap
}

// Region is one fixed-size arena of slots plus the bookkeeping a collector
// needs to refragment it: which slots are occupied, which are free, which
// newly gained values have not yet been reached by any reference (the
// nursery), and which recycled slots still have a live redirection pointing
// elsewhere.
type Region struct {
	id uint32

	lock *util.RwLock

	occupied           uint16
	nextEmptySlotIndex uint16

	bitmap  [bitmapWords]uint64
	empties [bitmapWords]uint64

	redirectionLock  *util.RwLock
	redirections     map[base.Value]*redirectionReference
	redirectionFroms map[base.Value]map[base.Value]struct{}

	nursery map[base.Value]struct{}

	slots [SlotCount]*slot.RegionSlot
}

func New(id uint32) *Region {
	r := &Region{
		id:               id,
		lock:             util.NewRwLock(),
		redirectionLock:  util.NewRwLock(),
		redirections:     make(map[base.Value]*redirectionReference),
		redirectionFroms: make(map[base.Value]map[base.Value]struct{}),
		nursery:          make(map[base.Value]struct{}),
	}
	for i := 0; i < bitmapWords; i++ {
		r.empties[i] = ^uint64(0)
	}
	for index := range r.slots {
		r.slots[index] = slot.NewRegionSlot(id, uint16(index))
	}
	return r
}

// Basic properties.

func (r *Region) IsFull() bool {
	g := r.lock.LockRead()
	defer g.Unlock()
	return r.isFullWithoutLock()
}

func (r *Region) isFullWithoutLock() bool { return int(r.occupied) == SlotCount }

func (r *Region) IsEmpty() bool {
	g := r.lock.LockRead()
	defer g.Unlock()
	return r.isEmptyWithoutLock()
}

func (r *Region) isEmptyWithoutLock() bool {
	return r.occupied == 0 && len(r.redirections) == 0
}

func (r *Region) NeedRefragment() float32 {
	g := r.lock.LockRead()
	defer g.Unlock()
	return r.needRefragmentWithoutLock()
}

func (r *Region) needRefragmentWithoutLock() float32 {
	next := r.nextEmptySlotIndex
	switch {
	case next == 0:
		return 0
	case int(next) < SlotCount:
		return 1 - float32(r.occupied)/float32(next)
	default:
		return 1 - float32(r.occupied)/float32(SlotCount)
	}
}

func (r *Region) CouldGainSlotQuickly() bool {
	g := r.lock.LockRead()
	defer g.Unlock()
	return r.couldGainSlotQuicklyWithoutLock()
}

func (r *Region) couldGainSlotQuicklyWithoutLock() bool {
	return int(r.nextEmptySlotIndex) != SlotCount
}

// Slot checkers.

func bitmapOffsetShift(index uint16) (int, uint) {
	return int(index >> 6), uint(index & 0x3f)
}

// ensureSlotReferencable validates value belongs to this region and is not
// currently in the free set, returning its slot index.
func (r *Region) ensureSlotReferencable(value base.Value) (uint16, error) {
	regionID, err := value.GetRegionID()
	if err != nil {
		return 0, err
	}
	if r.id != regionID {
		return 0, base.NewError(base.FatalError, "incorrect region id")
	}
	index, err := value.GetRegionSlot()
	if err != nil {
		return 0, err
	}
	offset, shift := bitmapOffsetShift(index)
	if (r.empties[offset]>>shift)&0b1 != 0 {
		return 0, base.NewError(base.FatalError, "incorrect slot state")
	}
	return index, nil
}

// ensureSlotAvailable validates value belongs to this region and is both
// occupied and not free, returning its slot index.
func (r *Region) ensureSlotAvailable(value base.Value) (uint16, error) {
	regionID, err := value.GetRegionID()
	if err != nil {
		return 0, err
	}
	if r.id != regionID {
		return 0, base.NewError(base.FatalError, "incorrect region id")
	}
	index, err := value.GetRegionSlot()
	if err != nil {
		return 0, err
	}
	offset, shift := bitmapOffsetShift(index)
	if (r.bitmap[offset]>>shift)&0b1 == 0 {
		return 0, base.NewError(base.FatalError, "incorrect slot state")
	}
	if (r.empties[offset]>>shift)&0b1 != 0 {
		return 0, base.NewError(base.FatalError, "incorrect slot state")
	}
	return index, nil
}

// Slot allocation and recycling.

func (r *Region) GainSlot(primitiveType base.PrimitiveType) (base.Value, error) {
	switch primitiveType {
	case base.Text, base.List, base.Tuple, base.Object:
	default:
		return base.Value{}, base.NewError(base.FatalError, "region slot is not available for this primitive type")
	}

	g := r.lock.LockWrite()

	if r.isFullWithoutLock() {
		g.Unlock()
		return base.Value{}, base.NewError(base.OutOfSpace, "out of slots")
	}
	if !r.couldGainSlotQuicklyWithoutLock() {
		g.Unlock()
		return base.Value{}, base.NewError(base.OutOfSpace, "out of slots")
	}

	index := r.nextEmptySlotIndex
	offset, shift := bitmapOffsetShift(index)

	if (r.bitmap[offset]>>shift)&0b1 != 0 {
		g.Unlock()
		return base.Value{}, base.NewError(base.FatalError, "incorrect slot state")
	}
	if (r.empties[offset]>>shift)&0b1 == 0 {
		g.Unlock()
		return base.Value{}, base.NewError(base.FatalError, "incorrect slot state")
	}

	r.bitmap[offset] |= 0b1 << shift
	r.empties[offset] &^= 0b1 << shift

	r.occupied++
	r.nextEmptySlotIndex++

	var id base.Value
	switch primitiveType {
	case base.Text:
		id = base.MakeText(r.id, index)
	case base.List:
		id = base.MakeList(r.id, index)
	case base.Tuple:
		id = base.MakeTuple(r.id, index)
	case base.Object:
		id = base.MakeObject(r.id, index)
	}

	r.nursery[id] = struct{}{}

	record := r.slots[index]

	g.Unlock()

	record.MarkAsAlive()
	if err := record.OverwritePrimitiveType(primitiveType); err != nil {
		return base.Value{}, err
	}

	return id, nil
}

func (r *Region) RecycleSlot(value base.Value, dropValue bool, context ctx.Context) error {
	g := r.lock.LockWrite()

	regionID, err := value.GetRegionID()
	if err != nil {
		g.Unlock()
		return err
	}
	if r.id != regionID {
		g.Unlock()
		return base.NewError(base.FatalError, "incorrect region id")
	}
	index, err := value.GetRegionSlot()
	if err != nil {
		g.Unlock()
		return err
	}
	offset, shift := bitmapOffsetShift(index)

	if (r.bitmap[offset]>>shift)&0b1 == 0 {
		g.Unlock()
		return base.NewError(base.FatalError, "incorrect slot state")
	}
	if _, inNursery := r.nursery[value]; inNursery {
		g.Unlock()
		return base.NewError(base.FatalError, "value in nursery")
	}

	record := r.slots[index]

	hasNoOuterReferences, err := record.HasNoOuterReferences()
	if err != nil {
		g.Unlock()
		return err
	}
	isAlive := record.IsAlive()
	if isAlive && !hasNoOuterReferences {
		g.Unlock()
		return base.NewError(base.FatalError, "slot has outer references")
	}

	rg := r.redirectionLock.LockRead()
	_, hasRedirectionFrom := r.redirectionFroms[value]
	rg.Unlock()
	if hasRedirectionFrom {
		g.Unlock()
		return base.NewError(base.FatalError, "slot has outer references")
	}

	if dropValue {
		r.empties[offset] |= 1 << shift
		r.occupied--
	}

	r.bitmap[offset] &^= 1 << shift
	delete(r.nursery, value)

	g.Unlock()

	return record.Recycle(dropValue, context)
}

func (r *Region) RecalculateNextEmptySlotIndex() error {
	g := r.lock.LockWrite()
	defer g.Unlock()

	if r.isFullWithoutLock() {
		return nil
	}

	index := int(r.nextEmptySlotIndex)
	for {
		offset, shift := bitmapOffsetShift(uint16(index))
		if (r.bitmap[offset]>>shift)&0b1 == 1 || (r.empties[offset]>>shift)&0b1 == 0 {
			index++
			break
		}
		if index == 0 {
			break
		}
		index--
	}

	r.nextEmptySlotIndex = uint16(index)
	return nil
}

// Redirections.

func (r *Region) ResolveRedirection(value base.Value) (base.Value, error) {
	g := r.lock.LockRead()
	defer g.Unlock()

	regionID, err := value.GetRegionID()
	if err != nil {
		return base.Value{}, err
	}
	if r.id != regionID {
		return base.Value{}, base.NewError(base.FatalError, "incorrect region id")
	}

	rg := r.redirectionLock.LockRead()
	defer rg.Unlock()

	index, err := value.GetRegionSlot()
	if err != nil {
		return base.Value{}, err
	}
	offset, shift := bitmapOffsetShift(index)

	reference, ok := r.redirections[value]
	if !ok {
		if (r.bitmap[offset]>>shift)&0b1 == 0 {
			return base.Value{}, base.NewError(base.FatalError, "incorrect slot state")
		}
		return value, nil
	}
	return reference.redirection, nil
}

func (r *Region) RedirectSlot(value, redirection base.Value, referenceMap *base.ReferenceMap) error {
	g := r.lock.LockWrite()
	defer g.Unlock()
	return r.redirectSlotWithoutLock(value, redirection, referenceMap)
}

func (r *Region) redirectSlotWithoutLock(value, redirection base.Value, referenceMap *base.ReferenceMap) error {
	regionID, err := value.GetRegionID()
	if err != nil {
		return err
	}
	if r.id != regionID {
		return base.NewError(base.FatalError, "incorrect region id")
	}
	index, err := value.GetRegionSlot()
	if err != nil {
		return err
	}
	offset, shift := bitmapOffsetShift(index)

	if (r.bitmap[offset]>>shift)&0b1 == 0 {
		return base.NewError(base.FatalError, "incorrect slot state")
	}

	record := r.slots[index]
	if record.IsAlive() {
		return base.NewError(base.FatalError, "incorrect slot state")
	}

	if referenceMap != nil {
		rg := r.redirectionLock.LockWrite()
		r.redirections[value] = &redirectionReference{redirection: redirection, referenceMap: referenceMap}
		rg.Unlock()
	}

	delete(r.nursery, value)

	return nil
}

func (r *Region) MoveOutFromNursery(value base.Value) error {
	g := r.lock.LockWrite()
	defer g.Unlock()

	regionID, err := value.GetRegionID()
	if err != nil {
		return err
	}
	if r.id != regionID {
		return base.NewError(base.FatalError, "incorrect region id")
	}
	index, err := value.GetRegionSlot()
	if err != nil {
		return err
	}
	offset, shift := bitmapOffsetShift(index)
	if (r.bitmap[offset]>>shift)&0b1 == 0 {
		return base.NewError(base.FatalError, "incorrect slot state")
	}

	delete(r.nursery, value)
	return nil
}

func (r *Region) IsValueAlive(value base.Value) (bool, error) {
	g := r.lock.LockRead()
	defer g.Unlock()

	regionID, err := value.GetRegionID()
	if err != nil {
		return false, err
	}
	if r.id != regionID {
		return false, base.NewError(base.FatalError, "incorrect region id")
	}
	index, err := value.GetRegionSlot()
	if err != nil {
		return false, err
	}
	offset, shift := bitmapOffsetShift(index)
	if (r.bitmap[offset]>>shift)&0b1 == 0 {
		return false, nil
	}
	return r.slots[index].IsAlive(), nil
}

func (r *Region) IsValueOccupied(value base.Value) (bool, error) {
	g := r.lock.LockRead()
	defer g.Unlock()

	regionID, err := value.GetRegionID()
	if err != nil {
		return false, err
	}
	if r.id != regionID {
		return false, base.NewError(base.FatalError, "incorrect region id")
	}
	index, err := value.GetRegionSlot()
	if err != nil {
		return false, err
	}
	offset, shift := bitmapOffsetShift(index)
	return (r.empties[offset]>>shift)&0b1 == 0, nil
}

func (r *Region) RemoveRedirectionFrom(from, to base.Value) (bool, error) {
	g := r.lock.LockWrite()
	defer g.Unlock()
	rg := r.redirectionLock.LockWrite()
	defer rg.Unlock()

	froms, ok := r.redirectionFroms[to]
	if !ok {
		return false, base.NewError(base.FatalError, "no redirection from found")
	}
	delete(froms, from)
	if len(froms) == 0 {
		delete(r.redirectionFroms, to)
		return true, nil
	}
	return false, nil
}

// Snapshots.

func (r *Region) FreezeSlot(value base.Value) (slot.SlotRecordSnapshot, bool, *base.ReferenceMap, []base.Value, []base.Symbol, error) {
	g := r.lock.LockWrite()
	defer g.Unlock()

	index, err := r.ensureSlotAvailable(value)
	if err != nil {
		return slot.SlotRecordSnapshot{}, false, nil, nil, nil, err
	}

	record := r.slots[index]

	id, err := record.GetID()
	if err != nil {
		return slot.SlotRecordSnapshot{}, false, nil, nil, nil, err
	}
	_, inNursery := r.nursery[id]

	snapshot, referenceMap, removedValues, removedSymbols, err := record.Freeze()
	if err != nil {
		return slot.SlotRecordSnapshot{}, false, nil, nil, nil, err
	}

	return snapshot, inNursery, referenceMap, removedValues, removedSymbols, nil
}

func (r *Region) RestoreSlot(
	from base.Value,
	snapshot slot.SlotRecordSnapshot,
	inNursery bool,
	referenceMap *base.ReferenceMap,
) (base.Value, []base.Value, []base.Symbol, error) {

	g := r.lock.LockWrite()

	if r.isFullWithoutLock() {
		g.Unlock()
		return base.Value{}, nil, nil, base.NewError(base.OutOfSpace, "out of slots")
	}

	index := uint16(0)
	var offset int
	var shift uint
	for {
		offset, shift = bitmapOffsetShift(index)
		if (r.bitmap[offset]>>shift)&0b1 == 0 && (r.empties[offset]>>shift)&0b1 == 1 {
			break
		}
		index++
		if int(index) >= SlotCount {
			g.Unlock()
			return base.Value{}, nil, nil, base.NewError(base.OutOfSpace, "no empty slot is available")
		}
	}

	if index >= r.nextEmptySlotIndex {
		r.nextEmptySlotIndex = index + 1
	}

	r.bitmap[offset] |= 0b1 << shift
	r.empties[offset] &^= 0b1 << shift
	r.occupied++

	record := r.slots[index]

	g.Unlock()

	id, addedValues, addedSymbols, err := record.Restore(snapshot)
	if err != nil {
		return base.Value{}, nil, nil, err
	}

	if inNursery {
		wg := r.lock.LockWrite()
		r.nursery[id] = struct{}{}
		wg.Unlock()
	}

	if referenceMap != nil {
		wg := r.lock.LockWrite()
		rg := r.redirectionLock.LockWrite()
		if _, ok := r.redirectionFroms[id]; !ok {
			r.redirectionFroms[id] = make(map[base.Value]struct{})
		}
		r.redirectionFroms[id][from] = struct{}{}
		rg.Unlock()
		wg.Unlock()
	}

	return id, addedValues, addedSymbols, nil
}

// References.

func (r *Region) AddReference(reference, from base.Value) error {
	g := r.lock.LockRead()

	index, err := r.ensureSlotReferencable(reference)
	if err != nil {
		g.Unlock()
		return err
	}

	rg := r.redirectionLock.LockRead()
	redirectionReference, hasRedirection := r.redirections[reference]
	rg.Unlock()
	if hasRedirection {
		g.Unlock()
		return redirectionReference.referenceMap.AddReference(from)
	}

	record := r.slots[index]
	_, removingNursery := r.nursery[reference]

	g.Unlock()

	if err := record.AddOuterReference(from); err != nil {
		return err
	}

	if removingNursery {
		wg := r.lock.LockWrite()
		delete(r.nursery, reference)
		wg.Unlock()
	}

	return nil
}

func (r *Region) RemoveReference(reference, from base.Value) (bool, base.Value, error) {
	g := r.lock.LockRead()

	index, err := r.ensureSlotReferencable(reference)
	if err != nil {
		g.Unlock()
		return false, base.Value{}, err
	}

	offset, shift := bitmapOffsetShift(index)

	rg := r.redirectionLock.LockRead()
	redirectionReference, hasRedirection := r.redirections[reference]
	rg.Unlock()

	if hasRedirection {
		if (r.empties[offset]>>shift)&0b1 == 1 {
			g.Unlock()
			return false, base.Value{}, base.NewError(base.FatalError, "invalid slot state")
		}
		if err := redirectionReference.referenceMap.RemoveReference(from); err != nil {
			g.Unlock()
			return false, base.Value{}, err
		}
		isEmpty := redirectionReference.referenceMap.IsEmpty()
		g.Unlock()

		if isEmpty {
			wg := r.lock.LockWrite()
			rg := r.redirectionLock.LockWrite()
			delete(r.redirections, reference)
			rg.Unlock()
			r.empties[offset] |= 1 << shift
			r.occupied--
			wg.Unlock()
		}

		return isEmpty, redirectionReference.redirection, nil
	}

	record := r.slots[index]
	g.Unlock()

	if err := record.RemoveOuterReference(from); err != nil {
		return false, base.Value{}, err
	}
	return false, base.MakeUndefined(), nil
}

// Seal.

func (r *Region) IsSealed(value base.Value) (bool, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return false, err
	}
	return record.IsSealed()
}

func (r *Region) SealSlot(value base.Value) error {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return err
	}
	return record.SealSlot()
}

func (r *Region) slotAvailableRecord(value base.Value) (*slot.RegionSlot, error) {
	g := r.lock.LockRead()
	defer g.Unlock()

	index, err := r.ensureSlotAvailable(value)
	if err != nil {
		return nil, err
	}
	return r.slots[index], nil
}

// Slot trap.

func (r *Region) HasSlotTrap(value base.Value) (bool, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return false, err
	}
	return record.HasSlotTrap()
}

func (r *Region) SetSlotTrap(value base.Value, slotTrap ctx.SlotTrap, context ctx.Context) error {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return err
	}
	return record.SetSlotTrap(slotTrap, context)
}

func (r *Region) ClearSlotTrap(value base.Value, context ctx.Context) error {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return err
	}
	return record.ClearSlotTrap(context)
}

// Field shortcuts.

func (r *Region) HasFieldShortcuts(value base.Value) (bool, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return false, err
	}
	return record.HasFieldShortcuts()
}

func (r *Region) GetFieldShortcuts(value base.Value) (*fieldshortcuts.FieldShortcuts, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return nil, err
	}
	return record.GetFieldShortcuts()
}

func (r *Region) UpdateFieldShortcuts(value base.Value, fieldShortcuts *fieldshortcuts.FieldShortcuts) error {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return err
	}
	_, err = record.SetFieldShortcuts(fieldShortcuts)
	return err
}

func (r *Region) ClearFieldShortcuts(value base.Value) error {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return err
	}
	_, err = record.ClearFieldShortcuts()
	return err
}

// Internal slots.

func (r *Region) HasInternalSlot(subject base.Value, id uint64) (bool, error) {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return false, err
	}
	return record.HasInternalSlot(id)
}

func (r *Region) ListInternalSlotIDs(subject base.Value) ([]uint64, error) {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return nil, err
	}
	return record.ListInternalSlotIDs()
}

func (r *Region) SetInternalSlot(subject base.Value, id uint64, internalSlot ctx.InternalSlot, context ctx.Context) error {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return err
	}
	return record.SetInternalSlot(id, internalSlot, context)
}

func (r *Region) ClearInternalSlot(subject base.Value, id uint64, context ctx.Context) error {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return err
	}
	return record.ClearInternalSlot(id, context)
}

func (r *Region) GetInternalSlot(subject base.Value, id uint64, context ctx.Context) (*ctx.ProtectedInternalSlot, error) {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return nil, err
	}
	return record.GetInternalSlot(id, context)
}

// Prototype.

func (r *Region) GetPrototypeWithLayoutGuard(
	subject base.Value,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
) (base.Value, error) {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return base.Value{}, err
	}
	return record.GetPrototypeWithLayoutGuard(context, layoutGuard)
}

func (r *Region) SetPrototypeWithLayoutGuard(
	subject, prototype base.Value,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return err
	}
	return record.SetPrototypeWithLayoutGuard(prototype, context, layoutGuard, noRedirection)
}

func (r *Region) SetPrototypeIgnoreSlotTrap(subject, prototype base.Value, context ctx.Context) error {
	record, err := r.slotAvailableRecord(subject)
	if err != nil {
		return err
	}
	return record.SetPrototypeIgnoreSlotTrap(prototype, context)
}

// Own properties.

func (r *Region) GetOwnPropertyWithLayoutGuard(
	id, subject base.Value,
	symbol base.Symbol,
	fieldToken *fieldshortcuts.FieldToken,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) (base.Value, error) {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return base.Value{}, err
	}
	return record.GetOwnPropertyWithLayoutGuard(symbol, fieldToken, context, layoutGuard, noRedirection)
}

func (r *Region) GetOwnPropertyIgnoreSlotTrap(id, subject base.Value, symbol base.Symbol, context ctx.Context) (base.Value, error) {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return base.Value{}, err
	}
	return record.GetOwnPropertyIgnoreSlotTrap(symbol, context)
}

func (r *Region) OverwriteOwnProperty(id base.Value, symbol base.Symbol, value base.Value) ([]base.Value, []base.Symbol, []base.Value, []base.Symbol, error) {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return record.OverwriteOwnProperty(symbol, value)
}

func (r *Region) SetOwnPropertyWithLayoutGuard(
	id, subject base.Value,
	symbol base.Symbol,
	value base.Value,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return err
	}
	return record.SetOwnPropertyWithLayoutGuard(symbol, value, context, layoutGuard, noRedirection)
}

func (r *Region) SetOwnPropertyIgnoreSlotTrap(id, subject base.Value, symbol base.Symbol, value base.Value, context ctx.Context) error {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return err
	}
	return record.SetOwnPropertyIgnoreSlotTrap(symbol, value, context)
}

func (r *Region) DefineOwnPropertyWithLayoutGuard(
	id, subject base.Value,
	symbol base.Symbol,
	propertyTrap ctx.PropertyTrap,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return err
	}
	return record.DefineOwnPropertyWithLayoutGuard(symbol, propertyTrap, context, layoutGuard, noRedirection)
}

func (r *Region) DefineOwnPropertyIgnoreSlotTrap(id, subject base.Value, symbol base.Symbol, propertyTrap ctx.PropertyTrap, context ctx.Context) error {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return err
	}
	return record.DefineOwnPropertyIgnoreSlotTrap(symbol, propertyTrap, context)
}

func (r *Region) DeleteOwnPropertyWithLayoutGuard(
	id, subject base.Value,
	symbol base.Symbol,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) error {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return err
	}
	return record.DeleteOwnPropertyWithLayoutGuard(symbol, context, layoutGuard, noRedirection)
}

func (r *Region) DeleteOwnPropertyIgnoreSlotTrap(id, subject base.Value, symbol base.Symbol, context ctx.Context) error {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return err
	}
	return record.DeleteOwnPropertyIgnoreSlotTrap(symbol, context)
}

func (r *Region) HasOwnPropertyWithLayoutGuard(id, subject base.Value, symbol base.Symbol, context ctx.Context) (bool, error) {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return false, err
	}
	return record.HasOwnProperty(symbol, context)
}

func (r *Region) ListOwnPropertySymbolsWithLayoutGuard(
	id, subject base.Value,
	context ctx.Context,
	layoutGuard *util.ReentrantLockReadGuard,
	noRedirection bool,
) (map[base.Symbol]struct{}, error) {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return nil, err
	}
	return record.ListOwnPropertySymbolsWithLayoutGuard(context, layoutGuard, noRedirection)
}

func (r *Region) ListOwnPropertySymbolsIgnoreSlotTrap(id, subject base.Value, context ctx.Context) (map[base.Symbol]struct{}, error) {
	record, err := r.slotAvailableRecord(id)
	if err != nil {
		return nil, err
	}
	return record.ListOwnPropertySymbolsIgnoreSlotTrap(context)
}

// Colors.

func (r *Region) ListAliveValues() ([]base.Value, error) {
	g := r.lock.LockWrite()
	defer g.Unlock()

	var values []base.Value
	for index := 0; index < SlotCount; index++ {
		record := r.slots[index]
		offset, shift := bitmapOffsetShift(uint16(index))
		if (r.bitmap[offset]>>shift)&0b1 == 1 && record.IsAlive() {
			id, err := record.GetID()
			if err != nil {
				return nil, err
			}
			values = append(values, id)
		}
	}
	return values, nil
}

func (r *Region) ListAndAutorefreshReferencedValues(value base.Value, context ctx.Context) ([]base.Value, []base.Symbol, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return nil, nil, err
	}
	return record.ListAndAutorefreshSelfReferences(context)
}

func (r *Region) ListValuesInNursery() []base.Value {
	g := r.lock.LockRead()
	defer g.Unlock()

	values := make([]base.Value, 0, len(r.nursery))
	for value := range r.nursery {
		values = append(values, value)
	}
	return values
}

// SweepValues recycles every slot still marked white relative to base,
// redirecting slots that still carry an outer reference map instead of
// recycling them outright.
func (r *Region) SweepValues(base_ uint8, context ctx.Context) error {
	var records []*slot.RegionSlot

	g := r.lock.LockWrite()
	for index := 0; index < SlotCount; index++ {
		record := r.slots[index]
		offset, shift := bitmapOffsetShift(uint16(index))

		if (r.bitmap[offset]>>shift)&0b1 != 1 || !record.IsAlive() {
			continue
		}
		isWhite, err := record.IsWhite(base_)
		if err != nil {
			g.Unlock()
			return err
		}
		if !isWhite {
			continue
		}

		id, err := record.GetID()
		if err != nil {
			g.Unlock()
			return err
		}
		referenceMap, err := record.SweepOuterReferenceMap()
		if err != nil {
			g.Unlock()
			return err
		}

		referenceMapIsNil := referenceMap == nil
		if err := r.redirectSlotWithoutLock(id, base.MakeUndefined(), referenceMap); err != nil {
			g.Unlock()
			return err
		}
		if referenceMapIsNil {
			records = append(records, record)
		}

		r.empties[offset] |= 1 << shift
		r.occupied--
		r.bitmap[offset] &^= 1 << shift
		delete(r.nursery, id)
	}
	g.Unlock()

	for _, record := range records {
		if err := record.Recycle(true, context); err != nil {
			return err
		}
	}

	return nil
}

func (r *Region) MarkAsWhite(value base.Value, base_ uint8) error {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return err
	}
	return record.MarkAsWhite(base_)
}

func (r *Region) MarkAsBlack(value base.Value, base_ uint8) error {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return err
	}
	return record.MarkAsBlack(base_)
}

// MarkAsGray marks value gray if it is currently white, reporting whether it
// did so (a collector uses this to decide whether to push value onto its
// gray worklist).
func (r *Region) MarkAsGray(value base.Value, base_ uint8) (bool, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return false, err
	}
	isWhite, err := record.IsWhite(base_)
	if err != nil {
		return false, err
	}
	if !isWhite {
		return false, nil
	}
	if err := record.MarkAsGray(base_); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Region) IsWhite(value base.Value, base_ uint8) (bool, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return false, err
	}
	return record.IsWhite(base_)
}

func (r *Region) IsBlack(value base.Value, base_ uint8) (bool, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return false, err
	}
	return record.IsBlack(base_)
}

func (r *Region) IsGray(value base.Value, base_ uint8) (bool, error) {
	record, err := r.slotAvailableRecord(value)
	if err != nil {
		return false, err
	}
	return record.IsGray(base_)
}
