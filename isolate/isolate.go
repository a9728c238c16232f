// Package isolate implements the managed heap's single entry point: the
// region table, symbol scopes, roots and weak roots, protected trap/internal
// slot registries, and outlets, all exposed through ctx.Context so every
// other package (storage, internalslot, collector) can drive it without
// importing a concrete isolate type.
package isolate

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v2"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/internalslot"
	"github.com/dragonation/rogiso-go/region"
	"github.com/dragonation/rogiso-go/root"
	"github.com/dragonation/rogiso-go/slot"
	"github.com/dragonation/rogiso-go/util"
)

// Internal slot indices reserved for builtin primitive payloads. Every other
// internal slot index is free for addon/userland use.
const (
	textListTupleSlotIndex = 0
	propertyTrapSlotIndex  = 1
)

// DefaultRefragmentRatio is the fraction of a region's slots (up to its
// next-empty index) left unoccupied above which the collector drains it
// into fuller regions during compaction.
const DefaultRefragmentRatio = 0.4

// IsolateOptions configures an Isolate at construction. A zero-value
// IsolateOptions is valid and yields the documented defaults; load one from
// YAML via LoadOptions to override them.
type IsolateOptions struct {
	RefragmentRatio float64 `yaml:"refragmentRatio"`
	Logger          hclog.Logger
}

// LoadOptions parses YAML configuration into an IsolateOptions. Logger is
// never set by this path; callers that want structured logging attach one
// to the result themselves before passing it to New.
func LoadOptions(data []byte) (IsolateOptions, error) {
	var options IsolateOptions
	if err := yaml.Unmarshal(data, &options); err != nil {
		return IsolateOptions{}, base.NewErrorf(base.TypeNotMatch, "invalid isolate options: %v", err)
	}
	return options, nil
}

func (o IsolateOptions) refragmentRatio() float64 {
	if o.RefragmentRatio <= 0 {
		return DefaultRefragmentRatio
	}
	return o.RefragmentRatio
}

func (o IsolateOptions) logger() hclog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return hclog.NewNullLogger()
}

type regionFactory struct{}

func (regionFactory) CreateItem(id int) *region.Region { return region.New(uint32(id)) }

// Isolate is one managed heap: a region table, symbol interning, root
// tables, and the trap/internal-slot protection registries the collector
// and property dispatch rely on. Isolate implements ctx.Context directly;
// the collector instead builds a narrower Context that only supports
// reference-counting operations (see the collector package).
type Isolate struct {
	id     string
	logger hclog.Logger

	refragmentRatio float64

	barrier     ctx.Barrier
	barrierLock *util.RwLock

	regionRWLock        *util.RwLock
	regions             *util.PageMap[region.Region, regionFactory]
	protectedRegionIDs  map[uint32]struct{}
	currentRegionID     uint32

	baseColor uint32 // holds a slot.BaseWhite/slot.BaseBlack value, accessed atomically

	nextInternalSlotID uint64

	slotLayoutLock *util.ReentrantLock
	contextToken   *util.ReentrantToken

	symbolRWLock      *util.RwLock
	symbolIDGenerator *base.SymbolIDGenerator
	symbolScopes      map[string]*base.SymbolScope
	symbolLUT         map[base.Symbol]*base.SymbolScope

	booleanPrototype base.Value
	integerPrototype base.Value
	floatPrototype   base.Value
	textPrototype    base.Value
	symbolPrototype  base.Value
	listPrototype    base.Value
	tuplePrototype   base.Value
	objectPrototype  base.Value
	prototypeSymbol  base.Symbol

	rootsRWLock *util.RwLock
	roots       map[base.Value]*root.Roots

	weakIDGenerator *root.WeakIDGenerator
	weakRoots       map[base.Value]map[*root.WeakRoot]struct{}

	nextProtectedID        uint64
	protectionRWLock       *util.RwLock
	protectedInternalSlots map[uint64]ctx.InternalSlot
	protectedSlotTraps     map[uint64]ctx.SlotTrap
	protectedPropertyTraps map[uint64]ctx.PropertyTrap

	outletsRWLock *util.RwLock
	nextOutletID  uint64
	outlets       map[uint64]interface{}
}

var _ ctx.Context = (*Isolate)(nil)

// New creates an Isolate and runs its builtin bootstrap: one protected
// region holding the eight builtin prototype slots, installed in dependency
// order (object first, since every other prototype's own prototype is
// object_prototype), then unprotected for ordinary allocation. Mirrors the
// teacher's NewVM staged init* sequence.
func New(options IsolateOptions) (*Isolate, error) {
	iso := &Isolate{
		id:     uuid.New().String(),
		logger: options.logger(),

		refragmentRatio: options.refragmentRatio(),

		barrierLock: util.NewRwLock(),

		regionRWLock:       util.NewRwLock(),
		regions:             util.NewPageMap[region.Region, regionFactory](regionFactory{}),
		protectedRegionIDs: make(map[uint32]struct{}),

		baseColor: uint32(slot.BaseWhite),

		slotLayoutLock: util.NewReentrantLock(),

		symbolRWLock:      util.NewRwLock(),
		symbolIDGenerator: base.NewSymbolIDGenerator(),
		symbolScopes:      make(map[string]*base.SymbolScope),
		symbolLUT:         make(map[base.Symbol]*base.SymbolScope),

		booleanPrototype: base.MakeUndefined(),
		integerPrototype: base.MakeUndefined(),
		floatPrototype:   base.MakeUndefined(),
		textPrototype:    base.MakeUndefined(),
		symbolPrototype:  base.MakeUndefined(),
		listPrototype:    base.MakeUndefined(),
		tuplePrototype:   base.MakeUndefined(),
		objectPrototype:  base.MakeUndefined(),

		rootsRWLock: util.NewRwLock(),
		roots:       make(map[base.Value]*root.Roots),

		weakIDGenerator: root.NewWeakIDGenerator(),
		weakRoots:       make(map[base.Value]map[*root.WeakRoot]struct{}),

		protectionRWLock:       util.NewRwLock(),
		protectedInternalSlots: make(map[uint64]ctx.InternalSlot),
		protectedSlotTraps:     make(map[uint64]ctx.SlotTrap),
		protectedPropertyTraps: make(map[uint64]ctx.PropertyTrap),

		outletsRWLock: util.NewRwLock(),
		outlets:       make(map[uint64]interface{}),
	}

	iso.contextToken = util.NewReentrantToken(iso.slotLayoutLock)

	regionID, err := iso.CreateRegion()
	if err != nil {
		return nil, err
	}
	iso.currentRegionID = regionID

	layoutToken := iso.contextToken

	objectPrototype, err := iso.GainSlotInRegion(regionID, base.Object, base.MakeNull(), layoutToken)
	if err != nil {
		return nil, err
	}
	iso.objectPrototype = objectPrototype

	for _, assign := range []func(base.Value){
		func(v base.Value) { iso.booleanPrototype = v },
		func(v base.Value) { iso.integerPrototype = v },
		func(v base.Value) { iso.floatPrototype = v },
		func(v base.Value) { iso.symbolPrototype = v },
		func(v base.Value) { iso.textPrototype = v },
		func(v base.Value) { iso.listPrototype = v },
		func(v base.Value) { iso.tuplePrototype = v },
	} {
		v, err := iso.GainSlotInRegion(regionID, base.Object, objectPrototype, layoutToken)
		if err != nil {
			return nil, err
		}
		assign(v)
	}

	iso.prototypeSymbol = iso.GetTextSymbol("isolate.prototype", "prototype")

	if err := iso.UnprotectRegion(regionID); err != nil {
		return nil, err
	}

	iso.logger.Debug("isolate created", "id", iso.id, "bootstrapRegion", regionID)

	return iso, nil
}

// IsolateID implements ctx.Context.
func (iso *Isolate) IsolateID() string { return iso.id }

// SlotLayoutToken implements ctx.Context, returning the one shared token the
// isolate uses for its own direct Context implementation. The collector
// mints its own independent token via CreateSlotLayoutToken instead, so its
// reentrant locking never interacts with calls made directly against the
// isolate.
func (iso *Isolate) SlotLayoutToken() *util.ReentrantToken { return iso.contextToken }

// CreateSlotLayoutToken mints a fresh reentrant-lock token for a caller that
// needs its own independent layout-lock identity (the collector keeps one
// for its whole lifetime, mirroring the source's create_slot_layout_token).
func (iso *Isolate) CreateSlotLayoutToken() *util.ReentrantToken {
	return util.NewReentrantToken(iso.slotLayoutLock)
}

// Region management.

func (iso *Isolate) getRegion(id uint32) (*region.Region, error) {
	r := iso.regions.Get(int(id))
	if r == nil {
		return nil, base.NewError(base.FatalError, "region not found")
	}
	return r, nil
}

func regionIDOf(value base.Value) (uint32, error) { return value.GetRegionID() }

// CreateRegion gains a fresh page-map slot for a region and immediately
// protects it, since a region under construction must not be swept or
// refragmented until its caller is done filling it.
func (iso *Isolate) CreateRegion() (uint32, error) {
	g := iso.regionRWLock.LockWrite()
	defer g.Unlock()

	id, err := iso.regions.GainItem()
	if err != nil {
		return 0, err
	}
	iso.protectedRegionIDs[uint32(id)] = struct{}{}

	iso.logger.Debug("region created", "region", id)

	return uint32(id), nil
}

// RecycleRegion releases a region's page-map slot back for reuse. Fails
// FatalError if the region is still protected or not empty.
func (iso *Isolate) RecycleRegion(id uint32) error {
	g := iso.regionRWLock.LockWrite()
	defer g.Unlock()

	if _, protected := iso.protectedRegionIDs[id]; protected {
		return base.NewError(base.FatalError, "region is protected")
	}

	r, err := iso.getRegion(id)
	if err != nil {
		return err
	}
	if !r.IsEmpty() {
		return base.NewError(base.FatalError, "region is not empty")
	}

	return iso.regions.RecycleItem(int(id))
}

func (iso *Isolate) ProtectRegion(id uint32) error {
	g := iso.regionRWLock.LockWrite()
	defer g.Unlock()
	if _, err := iso.getRegion(id); err != nil {
		return err
	}
	iso.protectedRegionIDs[id] = struct{}{}
	return nil
}

func (iso *Isolate) UnprotectRegion(id uint32) error {
	g := iso.regionRWLock.LockWrite()
	defer g.Unlock()
	if _, err := iso.getRegion(id); err != nil {
		return err
	}
	delete(iso.protectedRegionIDs, id)
	return nil
}

func (iso *Isolate) IsRegionProtected(id uint32) bool {
	g := iso.regionRWLock.LockRead()
	defer g.Unlock()
	_, protected := iso.protectedRegionIDs[id]
	return protected
}

func (iso *Isolate) ListRegionIDs() []uint32 {
	g := iso.regionRWLock.LockRead()
	defer g.Unlock()
	ids := make([]uint32, 0, iso.regions.Size())
	iso.regions.Iterate(func(index int, _ *region.Region) { ids = append(ids, uint32(index)) })
	return ids
}

func (iso *Isolate) IsRegionEmpty(id uint32) (bool, error) {
	r, err := iso.getRegion(id)
	if err != nil {
		return false, err
	}
	return r.IsEmpty(), nil
}

func (iso *Isolate) IsRegionFull(id uint32) (bool, error) {
	r, err := iso.getRegion(id)
	if err != nil {
		return false, err
	}
	return r.IsFull(), nil
}

// NeedRegionRefragment reports the fraction of id's slots, up to its
// next-empty index, that are no longer occupied. The caller (the collector,
// using its own configured ratio) decides whether that fraction is high
// enough to be worth draining.
func (iso *Isolate) NeedRegionRefragment(id uint32) (float32, error) {
	r, err := iso.getRegion(id)
	if err != nil {
		return 0, err
	}
	return r.NeedRefragment(), nil
}

func (iso *Isolate) PeekNextRegionID() uint32 {
	return uint32(iso.regions.PeekNextItemIndex())
}

func (iso *Isolate) ShrinkNextRegionID(from, to uint32) uint32 {
	return uint32(iso.regions.ShrinkNextItemIndex(int(from), int(to)))
}

// RefragmentRegion drains sourceID's alive values into targetID, stopping
// early and reporting allFinished=false the moment targetID fills up (the
// collector then advances to the next target region and calls again).
// Mirrors the source's refragment_region(region_id, target_region_id, ...).
func (iso *Isolate) RefragmentRegion(sourceID, targetID uint32) (bool, error) {
	source, err := iso.getRegion(sourceID)
	if err != nil {
		return false, err
	}
	target, err := iso.getRegion(targetID)
	if err != nil {
		return false, err
	}

	values, err := source.ListAliveValues()
	if err != nil {
		return false, err
	}

	moved := 0
	for _, value := range values {
		if target.IsFull() {
			return false, nil
		}
		if _, err := iso.MoveSlot(value, targetID); err != nil {
			return false, err
		}
		moved++
	}

	if err := source.RecalculateNextEmptySlotIndex(); err != nil {
		return false, err
	}

	iso.logger.Debug("region refragmented", "source", sourceID, "target", targetID, "movedSlots", moved)

	return true, nil
}

// Slot allocation.

// GainSlotInRegion allocates a slot of primitiveType in a specific region
// and sets its prototype under layoutToken, bypassing the "current
// allocation region" tracking used by GainSlot. It is the building block the
// constructor uses to seed the builtin prototypes.
func (iso *Isolate) GainSlotInRegion(regionID uint32, primitiveType base.PrimitiveType, prototype base.Value, layoutToken *util.ReentrantToken) (base.Value, error) {
	r, err := iso.getRegion(regionID)
	if err != nil {
		return base.Value{}, err
	}

	value, err := r.GainSlot(primitiveType)
	if err != nil {
		return base.Value{}, err
	}

	guard := layoutToken.LockRead()
	err = r.SetPrototypeWithLayoutGuard(value, prototype, iso, guard, true)
	guard.Unlock()
	if err != nil {
		return base.Value{}, err
	}

	return value, nil
}

// ensureNewBornRegion finds or creates a region the isolate is currently
// allocating into, mirroring the source test harness's
// ensure_new_born_region/new_born_region_id pattern: keep reusing the same
// region across calls to GainSlot as long as it can still gain a slot
// quickly, and mint a fresh one once it can't.
func (iso *Isolate) ensureNewBornRegion() (uint32, error) {
	g := iso.regionRWLock.LockRead()
	regionID := iso.currentRegionID
	if regionID != 0 {
		r, err := iso.getRegion(regionID)
		if err == nil && r.CouldGainSlotQuickly() {
			g.Unlock()
			return regionID, nil
		}
	}
	g.Unlock()

	newRegionID, err := iso.CreateRegion()
	if err != nil {
		return 0, err
	}

	wg := iso.regionRWLock.LockWrite()
	iso.currentRegionID = newRegionID
	wg.Unlock()

	if err := iso.UnprotectRegion(newRegionID); err != nil {
		return 0, err
	}

	return newRegionID, nil
}

// GainSlot implements ctx.Context, allocating into whichever region the
// isolate currently considers its allocation target.
func (iso *Isolate) GainSlot(primitiveType base.PrimitiveType, prototype base.Value) (base.Value, error) {
	regionID, err := iso.ensureNewBornRegion()
	if err != nil {
		return base.Value{}, err
	}
	value, err := iso.GainSlotInRegion(regionID, primitiveType, prototype, iso.contextToken)
	if err != nil {
		return base.Value{}, err
	}

	g := iso.barrierLock.LockRead()
	barrier := iso.barrier
	g.Unlock()
	if barrier != nil {
		if err := barrier.PostgainValue(value); err != nil {
			return base.Value{}, err
		}
	}

	return value, nil
}

// RecycleSlot releases value's slot back to its region. dropValue controls
// whether the underlying record is also notified to release its own
// references (false is used when a value is being moved rather than
// destroyed). A value that is still rooted is refused with FatalError.
func (iso *Isolate) RecycleSlot(value base.Value, dropValue bool) error {
	regionID, err := regionIDOf(value)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	rg := iso.rootsRWLock.LockRead()
	_, rooted := iso.roots[value]
	rg.Unlock()
	if rooted {
		return base.NewError(base.FatalError, "slot is rooted")
	}
	return r.RecycleSlot(value, dropValue, iso)
}

// MoveSlot relocates value into targetRegionID via freeze/restore, leaving a
// redirection behind so existing references keep resolving, and re-homes
// every root and reference accordingly. Mirrors the source's
// move_slot(value, target_region_id).
func (iso *Isolate) MoveSlot(value base.Value, targetRegionID uint32) (base.Value, error) {
	fromRegionID, err := regionIDOf(value)
	if err != nil {
		return base.Value{}, err
	}
	fromRegion, err := iso.getRegion(fromRegionID)
	if err != nil {
		return base.Value{}, err
	}

	snapshot, inNursery, referenceMap, removedValues, removedSymbols, err := fromRegion.FreezeSlot(value)
	if err != nil {
		return base.Value{}, err
	}

	toRegion, err := iso.getRegion(targetRegionID)
	if err != nil {
		return base.Value{}, err
	}

	newValue, addedValues, addedSymbols, err := toRegion.RestoreSlot(value, snapshot, inNursery, referenceMap)
	if err != nil {
		return base.Value{}, err
	}

	for _, added := range addedValues {
		if err := iso.AddValueReference(newValue, added); err != nil {
			return base.Value{}, err
		}
	}
	for _, symbol := range addedSymbols {
		if err := iso.AddSymbolReference(symbol); err != nil {
			return base.Value{}, err
		}
	}

	noRedirection := referenceMap == nil
	if err := fromRegion.RedirectSlot(value, newValue, referenceMap); err != nil {
		return base.Value{}, err
	}
	if noRedirection {
		if err := fromRegion.RecycleSlot(value, false, iso); err != nil {
			return base.Value{}, err
		}
	}

	iso.RefreshRoot(value, newValue)

	for _, removed := range removedValues {
		if err := iso.RemoveValueReference(value, removed); err != nil {
			return base.Value{}, err
		}
	}
	for _, symbol := range removedSymbols {
		if err := iso.RemoveSymbolReference(symbol); err != nil {
			return base.Value{}, err
		}
	}

	iso.logger.Debug("slot moved", "from", fromRegionID, "to", targetRegionID)

	return newValue, nil
}

// MoveValueOutFromNursery promotes value out of its region's nursery
// generation, the prerequisite for it ever being recycled or swept: a value
// still in the nursery is assumed reachable from whatever just allocated it.
func (iso *Isolate) MoveValueOutFromNursery(value base.Value) error {
	regionID, err := regionIDOf(value)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.MoveOutFromNursery(value)
}

func (iso *Isolate) IsDirectValueAlive(value base.Value) (bool, error) {
	regionID, err := regionIDOf(value)
	if err != nil {
		return false, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return false, err
	}
	return r.IsValueAlive(value)
}

func (iso *Isolate) IsDirectValueOccupied(value base.Value) (bool, error) {
	regionID, err := regionIDOf(value)
	if err != nil {
		return false, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return false, err
	}
	return r.IsValueOccupied(value)
}

// ResolveRealValue implements ctx.Context, following any redirection left by
// refragmentation until reaching the value's current slot. A chain that
// revisits a value is a cycle and fails with FatalError.
func (iso *Isolate) ResolveRealValue(value base.Value) (base.Value, error) {
	if !value.IsSlotted() {
		return value, nil
	}
	var visited map[base.Value]struct{}
	for {
		regionID, err := regionIDOf(value)
		if err != nil {
			return base.Value{}, err
		}
		r, err := iso.getRegion(regionID)
		if err != nil {
			return base.Value{}, err
		}
		resolved, err := r.ResolveRedirection(value)
		if err != nil {
			return base.Value{}, err
		}
		if resolved == value || !resolved.IsSlotted() {
			return resolved, nil
		}
		if visited == nil {
			visited = make(map[base.Value]struct{})
		}
		visited[value] = struct{}{}
		if _, seen := visited[resolved]; seen {
			return base.Value{}, base.NewError(base.FatalError, "redirection cycle")
		}
		value = resolved
	}
}

// NotifySlotDrop implements ctx.Context: once a value's slot is actually
// recycled, every weak root still watching it fires its drop listener and is
// discarded. Strong roots are never dropped this way; a root keeping a value
// alive prevents its slot from ever reaching this call.
func (iso *Isolate) NotifySlotDrop(value base.Value) error {
	g := iso.rootsRWLock.LockWrite()
	weakRoots := iso.weakRoots[value]
	delete(iso.weakRoots, value)
	g.Unlock()

	for weakRoot := range weakRoots {
		if err := weakRoot.NotifyDrop(); err != nil {
			return err
		}
	}
	return nil
}

// References.

func (iso *Isolate) AddValueReference(from, to base.Value) error {
	if !to.IsSlotted() {
		return nil
	}
	regionID, err := regionIDOf(to)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.AddReference(to, from)
}

func (iso *Isolate) RemoveValueReference(from, to base.Value) error {
	if !to.IsSlotted() {
		return nil
	}

	g := iso.barrierLock.LockRead()
	barrier := iso.barrier
	g.Unlock()
	if barrier != nil {
		if err := barrier.PreremoveValueReference(to); err != nil {
			return err
		}
	}

	regionID, err := regionIDOf(to)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	_, _, err = r.RemoveReference(to, from)
	return err
}

// Symbols.

func (iso *Isolate) scope(name string) *base.SymbolScope {
	g := iso.symbolRWLock.LockRead()
	s, ok := iso.symbolScopes[name]
	g.Unlock()
	if ok {
		return s
	}

	g2 := iso.symbolRWLock.LockWrite()
	defer g2.Unlock()
	if s, ok := iso.symbolScopes[name]; ok {
		return s
	}
	s = base.NewSymbolScope(iso.symbolIDGenerator, name)
	iso.symbolScopes[name] = s
	return s
}

func (iso *Isolate) GetTextSymbol(scope, text string) base.Symbol {
	s := iso.scope(scope)
	symbol := s.GetTextSymbol(text)

	g := iso.symbolRWLock.LockWrite()
	iso.symbolLUT[symbol] = s
	g.Unlock()

	return symbol
}

func (iso *Isolate) GetValueSymbol(scope string, value base.Value) base.Symbol {
	s := iso.scope(scope)
	symbol := s.GetValueSymbol(value)

	g := iso.symbolRWLock.LockWrite()
	iso.symbolLUT[symbol] = s
	g.Unlock()

	return symbol
}

func (iso *Isolate) ResolveSymbolInfo(symbol base.Symbol) (ctx.SymbolInfo, error) {
	g := iso.symbolRWLock.LockRead()
	s, ok := iso.symbolLUT[symbol]
	g.Unlock()
	if !ok {
		return ctx.SymbolInfo{}, base.NewError(base.FatalError, "symbol not found")
	}
	record, ok := s.GetSymbolRecord(symbol)
	if !ok {
		return ctx.SymbolInfo{}, base.NewError(base.FatalError, "symbol not found")
	}
	return ctx.SymbolInfo{Scope: s.ID(), Record: record}, nil
}

func (iso *Isolate) AddSymbolReference(symbol base.Symbol) error {
	g := iso.symbolRWLock.LockRead()
	s, ok := iso.symbolLUT[symbol]
	g.Unlock()
	if !ok {
		return base.NewError(base.FatalError, "symbol not found")
	}
	return s.AddSymbolReference(symbol)
}

func (iso *Isolate) RemoveSymbolReference(symbol base.Symbol) error {
	g := iso.symbolRWLock.LockRead()
	s, ok := iso.symbolLUT[symbol]
	g.Unlock()
	if !ok {
		return base.NewError(base.FatalError, "symbol not found")
	}
	return s.RemoveSymbolReference(symbol)
}

// RecycleSymbol removes an unreferenced, non-nursery symbol entirely. Not
// part of ctx.Context: only whoever minted a symbol decides when it is safe
// to drop, never a value dispatching through it.
func (iso *Isolate) RecycleSymbol(symbol base.Symbol) error {
	g := iso.symbolRWLock.LockWrite()
	defer g.Unlock()
	s, ok := iso.symbolLUT[symbol]
	if !ok {
		return base.NewError(base.FatalError, "symbol not found")
	}
	if err := s.RecycleSymbol(symbol); err != nil {
		return err
	}
	delete(iso.symbolLUT, symbol)
	return nil
}

// Protected trap and internal-slot registries.

func (iso *Isolate) ProtectPropertyTrap(trap ctx.PropertyTrap) (uint64, ctx.PropertyTrap, error) {
	id := atomic.AddUint64(&iso.nextProtectedID, 1)
	g := iso.protectionRWLock.LockWrite()
	iso.protectedPropertyTraps[id] = trap
	g.Unlock()
	return id, trap, nil
}

func (iso *Isolate) UnprotectPropertyTrap(protectedID uint64) error {
	g := iso.protectionRWLock.LockWrite()
	defer g.Unlock()
	if _, ok := iso.protectedPropertyTraps[protectedID]; !ok {
		return base.NewError(base.FatalError, "property trap not protected")
	}
	delete(iso.protectedPropertyTraps, protectedID)
	return nil
}

func (iso *Isolate) ProtectSlotTrap(trap ctx.SlotTrap) (uint64, ctx.SlotTrap, error) {
	id := atomic.AddUint64(&iso.nextProtectedID, 1)
	g := iso.protectionRWLock.LockWrite()
	iso.protectedSlotTraps[id] = trap
	g.Unlock()
	return id, trap, nil
}

func (iso *Isolate) UnprotectSlotTrap(protectedID uint64) error {
	g := iso.protectionRWLock.LockWrite()
	defer g.Unlock()
	if _, ok := iso.protectedSlotTraps[protectedID]; !ok {
		return base.NewError(base.FatalError, "slot trap not protected")
	}
	delete(iso.protectedSlotTraps, protectedID)
	return nil
}

func (iso *Isolate) ProtectInternalSlot(slot ctx.InternalSlot) (uint64, ctx.InternalSlot, error) {
	id := atomic.AddUint64(&iso.nextProtectedID, 1)
	g := iso.protectionRWLock.LockWrite()
	iso.protectedInternalSlots[id] = slot
	g.Unlock()
	return id, slot, nil
}

func (iso *Isolate) UnprotectInternalSlot(protectedID uint64) error {
	g := iso.protectionRWLock.LockWrite()
	defer g.Unlock()
	if _, ok := iso.protectedInternalSlots[protectedID]; !ok {
		return base.NewError(base.FatalError, "internal slot not protected")
	}
	delete(iso.protectedInternalSlots, protectedID)
	return nil
}

func (iso *Isolate) CreateTrapInfo(subject base.Value, parameters []base.Value) ctx.TrapInfo {
	return ctx.NewTrapInfo(subject, parameters)
}

// Prototype.

func (iso *Isolate) GetPrototype(value base.Value) (base.Value, error) {
	regionID, err := regionIDOf(value)
	if err != nil {
		return base.Value{}, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return base.Value{}, err
	}
	guard := iso.contextToken.LockRead()
	defer guard.Unlock()
	return r.GetPrototypeWithLayoutGuard(value, iso, guard)
}

func (iso *Isolate) SetPrototype(value, prototype base.Value) error {
	regionID, err := regionIDOf(value)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	guard := iso.contextToken.LockRead()
	defer guard.Unlock()
	return r.SetPrototypeWithLayoutGuard(value, prototype, iso, guard, false)
}

func (iso *Isolate) SetSlotTrap(value base.Value, trap ctx.SlotTrap) error {
	regionID, err := regionIDOf(value)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.SetSlotTrap(value, trap, iso)
}

// Own properties.

func (iso *Isolate) HasOwnProperty(subject base.Value, symbol base.Symbol) (bool, error) {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return false, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return false, err
	}
	return r.HasOwnPropertyWithLayoutGuard(subject, subject, symbol, iso)
}

func (iso *Isolate) GetOwnProperty(subject base.Value, symbol base.Symbol, fieldToken *fieldshortcuts.FieldToken) (base.Value, error) {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return base.Value{}, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return base.Value{}, err
	}
	guard := iso.contextToken.LockRead()
	defer guard.Unlock()
	return r.GetOwnPropertyWithLayoutGuard(subject, subject, symbol, fieldToken, iso, guard, false)
}

func (iso *Isolate) DeleteOwnProperty(subject base.Value, symbol base.Symbol) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	guard := iso.contextToken.LockRead()
	defer guard.Unlock()
	return r.DeleteOwnPropertyWithLayoutGuard(subject, subject, symbol, iso, guard, false)
}

func (iso *Isolate) SetOwnProperty(subject base.Value, symbol base.Symbol, value base.Value) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	guard := iso.contextToken.LockRead()
	defer guard.Unlock()
	return r.SetOwnPropertyWithLayoutGuard(subject, subject, symbol, value, iso, guard, false)
}

func (iso *Isolate) DefineOwnProperty(subject base.Value, symbol base.Symbol, trap ctx.PropertyTrap) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	guard := iso.contextToken.LockRead()
	defer guard.Unlock()
	return r.DefineOwnPropertyWithLayoutGuard(subject, subject, symbol, trap, iso, guard, false)
}

func (iso *Isolate) ListOwnPropertySymbols(subject base.Value) (map[base.Symbol]struct{}, error) {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return nil, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return nil, err
	}
	guard := iso.contextToken.LockRead()
	defer guard.Unlock()
	return r.ListOwnPropertySymbolsWithLayoutGuard(subject, subject, iso, guard, false)
}

func (iso *Isolate) GetOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol) (base.Value, error) {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return base.Value{}, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return base.Value{}, err
	}
	return r.GetOwnPropertyIgnoreSlotTrap(subject, subject, symbol, iso)
}

func (iso *Isolate) SetOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol, value base.Value) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.SetOwnPropertyIgnoreSlotTrap(subject, subject, symbol, value, iso)
}

func (iso *Isolate) DeleteOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.DeleteOwnPropertyIgnoreSlotTrap(subject, subject, symbol, iso)
}

func (iso *Isolate) DefineOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol, trap ctx.PropertyTrap) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.DefineOwnPropertyIgnoreSlotTrap(subject, subject, symbol, trap, iso)
}

func (iso *Isolate) ListOwnPropertySymbolsIgnoreSlotTrap(subject base.Value) (map[base.Symbol]struct{}, error) {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return nil, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return nil, err
	}
	return r.ListOwnPropertySymbolsIgnoreSlotTrap(subject, subject, iso)
}

// Property (prototype-chain) dispatch.

func (iso *Isolate) ListPropertySymbols(subject base.Value) (map[base.Symbol]struct{}, error) {
	symbols := make(map[base.Symbol]struct{})
	current := subject
	for !current.IsNil() {
		own, err := iso.ListOwnPropertySymbols(current)
		if err != nil {
			return nil, err
		}
		for symbol := range own {
			symbols[symbol] = struct{}{}
		}
		current, err = iso.GetPrototype(current)
		if err != nil {
			return nil, err
		}
	}
	return symbols, nil
}

func (iso *Isolate) HasProperty(subject base.Value, symbol base.Symbol) (bool, error) {
	current := subject
	for !current.IsNil() {
		has, err := iso.HasOwnProperty(current, symbol)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
		var err2 error
		current, err2 = iso.GetPrototype(current)
		if err2 != nil {
			return false, err2
		}
	}
	return false, nil
}

func (iso *Isolate) GetProperty(subject base.Value, symbol base.Symbol, fieldToken *fieldshortcuts.FieldToken) (base.Value, error) {
	current := subject
	for !current.IsNil() {
		has, err := iso.HasOwnProperty(current, symbol)
		if err != nil {
			return base.Value{}, err
		}
		if has {
			return iso.GetOwnProperty(current, symbol, fieldToken)
		}
		current, err = iso.GetPrototype(current)
		if err != nil {
			return base.Value{}, err
		}
	}
	return base.MakeUndefined(), nil
}

// Internal slots.

func (iso *Isolate) GetInternalSlot(subject base.Value, id uint64) (*ctx.ProtectedInternalSlot, error) {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return nil, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return nil, err
	}
	return r.GetInternalSlot(subject, id, iso)
}

func (iso *Isolate) SetInternalSlot(subject base.Value, id uint64, slot ctx.InternalSlot) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.SetInternalSlot(subject, id, slot, iso)
}

func (iso *Isolate) ClearInternalSlot(subject base.Value, id uint64) error {
	regionID, err := regionIDOf(subject)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.ClearInternalSlot(subject, id, iso)
}

// Text/List/Tuple construction and extraction.

func (iso *Isolate) MakeText(text string) (base.Value, error) {
	value, err := iso.GainSlot(base.Text, iso.textPrototype)
	if err != nil {
		return base.Value{}, err
	}
	if err := iso.SetInternalSlot(value, textListTupleSlotIndex, internalslot.NewText(text)); err != nil {
		return base.Value{}, err
	}
	return value, nil
}

func (iso *Isolate) MakeList(elements []base.Value) (base.Value, error) {
	value, err := iso.GainSlot(base.List, iso.listPrototype)
	if err != nil {
		return base.Value{}, err
	}
	list := internalslot.NewList(value, elements)
	if err := iso.SetInternalSlot(value, textListTupleSlotIndex, list); err != nil {
		return base.Value{}, err
	}
	for _, element := range elements {
		if err := iso.AddValueReference(value, element); err != nil {
			return base.Value{}, err
		}
	}
	return value, nil
}

func (iso *Isolate) MakeTuple(prototype base.Value, id uint32, elements []base.Value) (base.Value, error) {
	if prototype.IsNil() {
		prototype = iso.tuplePrototype
	}
	value, err := iso.GainSlot(base.Tuple, prototype)
	if err != nil {
		return base.Value{}, err
	}
	tuple := internalslot.NewTuple(value, id, elements)
	if err := iso.SetInternalSlot(value, textListTupleSlotIndex, tuple); err != nil {
		return base.Value{}, err
	}
	for _, element := range elements {
		if err := iso.AddValueReference(value, element); err != nil {
			return base.Value{}, err
		}
	}
	return value, nil
}

func (iso *Isolate) ExtractText(value base.Value) (string, error) {
	protected, err := iso.GetInternalSlot(value, textListTupleSlotIndex)
	if err != nil {
		return "", err
	}
	defer protected.Close()
	text, ok := protected.Slot().(*internalslot.Text)
	if !ok {
		return "", base.NewError(base.TypeNotMatch, "value is not a text")
	}
	return text.String(), nil
}

func (iso *Isolate) ExtractList(value base.Value) ([]base.Value, error) {
	protected, err := iso.GetInternalSlot(value, textListTupleSlotIndex)
	if err != nil {
		return nil, err
	}
	defer protected.Close()
	list, ok := protected.Slot().(*internalslot.List)
	if !ok {
		return nil, base.NewError(base.TypeNotMatch, "value is not a list")
	}
	return list.GetValueList(), nil
}

// Property traps as values.

type propertyTrapSlot struct {
	ctx.DefaultInternalSlot
	trap ctx.PropertyTrap
}

func (p *propertyTrapSlot) ListReferencedValues() []base.Value { return p.trap.ListReferencedValues() }

func (p *propertyTrapSlot) ListAndAutorefreshReferencedValues(selfID base.Value, context ctx.Context) ([]base.Value, error) {
	return p.trap.ListAndAutorefreshReferencedValues(selfID, context)
}

func (p *propertyTrapSlot) ListReferencedSymbols() []base.Symbol {
	return p.trap.ListInternalReferencedSymbols()
}

func (p *propertyTrapSlot) RefreshReferencedValue(oldValue, newValue base.Value) {
	p.trap.RefreshReferencedValue(oldValue, newValue)
}

func (iso *Isolate) MakePropertyTrapValue(trap ctx.PropertyTrap) (base.Value, error) {
	value, err := iso.GainSlot(base.Object, iso.objectPrototype)
	if err != nil {
		return base.Value{}, err
	}
	if err := iso.SetInternalSlot(value, propertyTrapSlotIndex, &propertyTrapSlot{trap: trap}); err != nil {
		return base.Value{}, err
	}
	return value, nil
}

func (iso *Isolate) ExtractPropertyTrap(value base.Value) (ctx.PropertyTrap, error) {
	protected, err := iso.GetInternalSlot(value, propertyTrapSlotIndex)
	if err != nil {
		return nil, err
	}
	defer protected.Close()
	holder, ok := protected.Slot().(*propertyTrapSlot)
	if !ok {
		return nil, base.NewError(base.TypeNotMatch, "value does not hold a property trap")
	}
	return holder.trap, nil
}

// Roots.

// AddRoot roots value, resolving through any pending redirection first so
// the returned Root always tracks the value's current slot. A value still
// in the nursery is promoted out of it: a rooted value can no longer rely
// on its allocator implicitly keeping it alive.
func (iso *Isolate) AddRoot(value base.Value) (*root.Root, error) {
	if !value.IsSlotted() {
		return nil, base.NewError(base.FatalError, "only a slotted value can be rooted")
	}

	value, err := iso.ResolveRealValue(value)
	if err != nil {
		return nil, err
	}

	g := iso.rootsRWLock.LockWrite()
	group, ok := iso.roots[value]
	if !ok {
		group = root.NewRoots(value)
		iso.roots[value] = group
	}
	r := group.GetAnyRoot()
	g.Unlock()

	if _, err := r.IncreaseReference(); err != nil {
		return nil, err
	}

	if err := iso.MoveValueOutFromNursery(value); err != nil {
		return nil, err
	}

	return r, nil
}

func (iso *Isolate) RemoveRoot(r *root.Root) error {
	g := iso.rootsRWLock.LockWrite()
	defer g.Unlock()

	if _, err := r.DecreaseReference(); err != nil {
		return err
	}

	value := r.GetValue()

	bg := iso.barrierLock.LockRead()
	barrier := iso.barrier
	bg.Unlock()
	if barrier != nil {
		if err := barrier.PreremoveValueReference(value); err != nil {
			return err
		}
	}

	group, ok := iso.roots[value]
	if !ok {
		return base.NewError(base.FatalError, "root not found")
	}
	if group.IsAlone() {
		delete(iso.roots, value)
	}

	return nil
}

func (iso *Isolate) AddWeakRoot(value base.Value, listener root.DropListener) (*root.WeakRoot, error) {
	if !value.IsSlotted() {
		return nil, base.NewError(base.FatalError, "only a slotted value can be rooted")
	}

	value, err := iso.ResolveRealValue(value)
	if err != nil {
		return nil, err
	}

	weakRoot := root.NewWeakRoot(iso.weakIDGenerator, value, listener)

	g := iso.rootsRWLock.LockWrite()
	defer g.Unlock()

	set, ok := iso.weakRoots[value]
	if !ok {
		set = make(map[*root.WeakRoot]struct{})
		iso.weakRoots[value] = set
	}
	set[weakRoot] = struct{}{}

	return weakRoot, nil
}

func (iso *Isolate) RemoveWeakRoot(r *root.WeakRoot) error {
	g := iso.rootsRWLock.LockWrite()
	defer g.Unlock()

	value, dropped := r.Value()
	if dropped {
		return nil
	}
	if set, ok := iso.weakRoots[value]; ok {
		delete(set, r)
		if len(set) == 0 {
			delete(iso.weakRoots, value)
		}
	}
	return nil
}

// RefreshRoot updates every root (strong and weak) currently pointing at
// oldValue to point at newValue instead, used after a slot move leaves a
// redirection behind.
func (iso *Isolate) RefreshRoot(oldValue, newValue base.Value) {
	g := iso.rootsRWLock.LockWrite()
	defer g.Unlock()

	if group, ok := iso.roots[oldValue]; ok {
		group.RefreshValue(oldValue, newValue)
		delete(iso.roots, oldValue)
		iso.roots[newValue] = group
	}

	if set, ok := iso.weakRoots[oldValue]; ok {
		for weakRoot := range set {
			weakRoot.RefreshValue(oldValue, newValue)
		}
		delete(iso.weakRoots, oldValue)
		iso.weakRoots[newValue] = set
	}
}

func (iso *Isolate) ListRoots() []base.Value {
	g := iso.rootsRWLock.LockRead()
	defer g.Unlock()
	values := make([]base.Value, 0, len(iso.roots))
	for value := range iso.roots {
		values = append(values, value)
	}
	return values
}

// Outlets.

func (iso *Isolate) AddOutlet(outlet interface{}) uint64 {
	id := atomic.AddUint64(&iso.nextOutletID, 1)
	g := iso.outletsRWLock.LockWrite()
	iso.outlets[id] = outlet
	g.Unlock()
	return id
}

func (iso *Isolate) GetOutlet(id uint64) (interface{}, bool) {
	g := iso.outletsRWLock.LockRead()
	defer g.Unlock()
	outlet, ok := iso.outlets[id]
	return outlet, ok
}

func (iso *Isolate) ClearOutlet(id uint64) (interface{}, bool) {
	g := iso.outletsRWLock.LockWrite()
	defer g.Unlock()
	outlet, ok := iso.outlets[id]
	if ok {
		delete(iso.outlets, id)
	}
	return outlet, ok
}

// Seals.

func (iso *Isolate) IsSealed(value base.Value) (bool, error) {
	regionID, err := regionIDOf(value)
	if err != nil {
		return false, err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return false, err
	}
	return r.IsSealed(value)
}

func (iso *Isolate) SealSlot(value base.Value) error {
	regionID, err := regionIDOf(value)
	if err != nil {
		return err
	}
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.SealSlot(value)
}

// Colors.

func (iso *Isolate) GetBaseColor() uint8 {
	return uint8(atomic.LoadUint32(&iso.baseColor))
}

// FlipBaseColor swaps white and black for the next collection cycle,
// instantly reinterpreting every previously-black slot as white without
// having to walk the heap.
func (iso *Isolate) FlipBaseColor() uint8 {
	for {
		old := atomic.LoadUint32(&iso.baseColor)
		flipped := uint32(slot.BaseWhite)
		if uint8(old) == slot.BaseWhite {
			flipped = uint32(slot.BaseBlack)
		}
		if atomic.CompareAndSwapUint32(&iso.baseColor, old, flipped) {
			return uint8(flipped)
		}
	}
}

func (iso *Isolate) MarkAsWhite(value base.Value, base_ uint8) error {
	r, err := iso.regionFor(value)
	if err != nil {
		return err
	}
	return r.MarkAsWhite(value, base_)
}

func (iso *Isolate) MarkAsBlack(value base.Value, base_ uint8) error {
	r, err := iso.regionFor(value)
	if err != nil {
		return err
	}
	return r.MarkAsBlack(value, base_)
}

func (iso *Isolate) MarkAsGray(value base.Value, base_ uint8) (bool, error) {
	r, err := iso.regionFor(value)
	if err != nil {
		return false, err
	}
	return r.MarkAsGray(value, base_)
}

func (iso *Isolate) IsWhite(value base.Value, base_ uint8) (bool, error) {
	r, err := iso.regionFor(value)
	if err != nil {
		return false, err
	}
	return r.IsWhite(value, base_)
}

func (iso *Isolate) IsBlack(value base.Value, base_ uint8) (bool, error) {
	r, err := iso.regionFor(value)
	if err != nil {
		return false, err
	}
	return r.IsBlack(value, base_)
}

func (iso *Isolate) IsGray(value base.Value, base_ uint8) (bool, error) {
	r, err := iso.regionFor(value)
	if err != nil {
		return false, err
	}
	return r.IsGray(value, base_)
}

func (iso *Isolate) regionFor(value base.Value) (*region.Region, error) {
	regionID, err := regionIDOf(value)
	if err != nil {
		return nil, err
	}
	return iso.getRegion(regionID)
}

func (iso *Isolate) ListAndAutorefreshReferencedValues(value base.Value) ([]base.Value, []base.Symbol, error) {
	r, err := iso.regionFor(value)
	if err != nil {
		return nil, nil, err
	}
	return r.ListAndAutorefreshReferencedValues(value, iso)
}

// ListValuesInNursery collects every not-yet-referenced value across every
// region, the collector's root-marking pass treats these as implicitly
// alive since nothing has had a chance to reference them yet.
func (iso *Isolate) ListValuesInNursery() []base.Value {
	g := iso.regionRWLock.LockRead()
	defer g.Unlock()

	var values []base.Value
	iso.regions.Iterate(func(_ int, r *region.Region) {
		values = append(values, r.ListValuesInNursery()...)
	})
	return values
}

func (iso *Isolate) SweepRegion(regionID uint32, base_ uint8) error {
	r, err := iso.getRegion(regionID)
	if err != nil {
		return err
	}
	return r.SweepValues(base_, iso)
}

// ListBuiltins returns the eight builtin prototype values seeded at
// construction, in the order the collector should treat them as permanent
// roots.
func (iso *Isolate) ListBuiltins() []base.Value {
	return []base.Value{
		iso.objectPrototype,
		iso.booleanPrototype,
		iso.integerPrototype,
		iso.floatPrototype,
		iso.symbolPrototype,
		iso.textPrototype,
		iso.listPrototype,
		iso.tuplePrototype,
	}
}

// Barrier.

func (iso *Isolate) SetBarrier(barrier ctx.Barrier) {
	g := iso.barrierLock.LockWrite()
	iso.barrier = barrier
	g.Unlock()
}

func (iso *Isolate) ClearBarrier() {
	g := iso.barrierLock.LockWrite()
	iso.barrier = nil
	g.Unlock()
}

func (iso *Isolate) Logger() hclog.Logger { return iso.logger }

// RefragmentRatio is the configured threshold (IsolateOptions.RefragmentRatio,
// defaulting to DefaultRefragmentRatio) the collector compares
// NeedRegionRefragment's result against during its refragmentation phase.
func (iso *Isolate) RefragmentRatio() float64 { return iso.refragmentRatio }

// Stats is a point-in-time snapshot of isolate occupancy, cheap enough to
// take on every diagnostic CLI invocation.
type Stats struct {
	RegionCount   int
	LiveSlotCount int
	NurseryCount  int
	RootCount     int
	SymbolScopes  int
}

// Stats walks every live region to report current occupancy. It takes the
// same locks ListAliveValues does per region, so it is not free, but it
// never allocates more than the regions themselves already hold.
func (iso *Isolate) Stats() (Stats, error) {
	stats := Stats{
		RootCount: len(iso.ListRoots()),
	}

	ids := iso.ListRegionIDs()
	stats.RegionCount = len(ids)
	for _, id := range ids {
		r, err := iso.getRegion(id)
		if err != nil {
			return Stats{}, err
		}
		alive, err := r.ListAliveValues()
		if err != nil {
			return Stats{}, err
		}
		stats.LiveSlotCount += len(alive)
	}

	stats.NurseryCount = len(iso.ListValuesInNursery())

	g := iso.symbolRWLock.LockRead()
	stats.SymbolScopes = len(iso.symbolScopes)
	g.Unlock()

	return stats, nil
}
