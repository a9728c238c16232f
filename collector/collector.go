// Package collector implements the tri-color mark-sweep-refragment cycle
// that reclaims slots an isolate can no longer reach and compacts the
// regions left fragmented by that reclamation.
//
// A Collector owns a single CollectorContext, a narrow Context
// implementation that only answers reference-counting calls and panics on
// everything else, and installs a CollectorBarrier onto the isolate for
// the duration of the mark phase so that reference writes racing with
// marking are caught and folded into the gray set rather than lost.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/zephyrtronium/contains"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dragonation/rogiso-go/base"
	rctx "github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/isolate"
	"github.com/dragonation/rogiso-go/root"
	"github.com/dragonation/rogiso-go/util"
)

// maxSliceSize bounds how many values a single gray slice batches together
// before it is pushed onto the shared stack, and how many a single
// list-grays call drains back off of it.
const maxSliceSize = 128

// defaultFanout caps how many regions a sweep pass drives concurrently. Kept modest: region work is itself lock-bound against the
// isolate's region table, so a wide fan-out mostly adds contention.
const defaultFanout = 8

// State is the phase a Collector is currently in.
type State int

const (
	Free State = iota
	Pending
	MarkingRoots
	MarkingGrays
	RemarkingGrays
	Sweeping
	Refragmenting
)

var stateNames = [...]string{
	"free", "pending", "marking-roots", "marking-grays",
	"remarking-grays", "sweeping", "refragmenting",
}

func (s State) String() string {
	if s < Free || s > Refragmenting {
		return fmt.Sprintf("State(%d)", s)
	}
	return stateNames[s]
}

// valueSlice is a lock-guarded batch of values awaiting a push onto the
// gray stack. Kept as its own type so mark_roots and the mark/remark loops
// can each hold one independently of the collector's shared stack.
type valueSlice struct {
	lock   *util.SpinLock
	values []base.Value
}

func newValueSlice() *valueSlice {
	return &valueSlice{lock: util.NewSpinLock()}
}

// push appends value and reports whether the slice just reached
// maxSliceSize, the caller's cue to flush it.
func (s *valueSlice) push(value base.Value) bool {
	g := s.lock.Lock()
	s.values = append(s.values, value)
	full := len(s.values) >= maxSliceSize
	g.Unlock()
	return full
}

// drain empties the slice and returns what it held.
func (s *valueSlice) drain() []base.Value {
	g := s.lock.Lock()
	values := s.values
	s.values = nil
	g.Unlock()
	return values
}

// CollectorBarrier is installed onto the isolate for the duration of a mark
// phase so that a reference write racing the collector's traversal is
// folded into the gray set instead of being missed.
type CollectorBarrier struct {
	collector *Collector
}

var _ rctx.Barrier = (*CollectorBarrier)(nil)

func (b *CollectorBarrier) PreremoveValueReference(value base.Value) error {
	return b.collector.preremoveValueReference(value)
}

func (b *CollectorBarrier) PostgainValue(value base.Value) error {
	return b.collector.postgainValue(value)
}

const collectorContextPanicMessage = "collector context only supports reference operations"

// CollectorContext is the narrow Context implementation a Collector threads
// through the isolate calls it actually needs (reference and symbol
// bookkeeping, real-value resolution, weak-root drop notification) while
// holding its own slot-layout token independent of the isolate's. Every
// other Context method panics: nothing during a collection cycle should be
// gaining slots, defining properties, or otherwise mutating the object
// graph through a collector's own context.
type CollectorContext struct {
	isolate         *isolate.Isolate
	slotLayoutToken *util.ReentrantToken
}

var _ rctx.Context = (*CollectorContext)(nil)

func newCollectorContext(iso *isolate.Isolate) *CollectorContext {
	return &CollectorContext{
		isolate:         iso,
		slotLayoutToken: iso.CreateSlotLayoutToken(),
	}
}

func (c *CollectorContext) IsolateID() string { return c.isolate.IsolateID() }

func (c *CollectorContext) SlotLayoutToken() *util.ReentrantToken { return c.slotLayoutToken }

func (c *CollectorContext) ResolveRealValue(value base.Value) (base.Value, error) {
	return c.isolate.ResolveRealValue(value)
}

func (c *CollectorContext) AddValueReference(from, to base.Value) error {
	return c.isolate.AddValueReference(from, to)
}

func (c *CollectorContext) RemoveValueReference(from, to base.Value) error {
	return c.isolate.RemoveValueReference(from, to)
}

func (c *CollectorContext) AddSymbolReference(symbol base.Symbol) error {
	return c.isolate.AddSymbolReference(symbol)
}

func (c *CollectorContext) RemoveSymbolReference(symbol base.Symbol) error {
	return c.isolate.RemoveSymbolReference(symbol)
}

func (c *CollectorContext) NotifySlotDrop(value base.Value) error {
	return c.isolate.NotifySlotDrop(value)
}

func (c *CollectorContext) ProtectPropertyTrap(rctx.PropertyTrap) (uint64, rctx.PropertyTrap, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) UnprotectPropertyTrap(uint64) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ProtectSlotTrap(rctx.SlotTrap) (uint64, rctx.SlotTrap, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) UnprotectSlotTrap(uint64) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ProtectInternalSlot(rctx.InternalSlot) (uint64, rctx.InternalSlot, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) UnprotectInternalSlot(uint64) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) CreateTrapInfo(base.Value, []base.Value) rctx.TrapInfo {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GainSlot(base.PrimitiveType, base.Value) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GetTextSymbol(string, string) base.Symbol {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GetValueSymbol(string, base.Value) base.Symbol {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ResolveSymbolInfo(base.Symbol) (rctx.SymbolInfo, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GetPrototype(base.Value) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) SetPrototype(base.Value, base.Value) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) SetSlotTrap(base.Value, rctx.SlotTrap) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) HasOwnProperty(base.Value, base.Symbol) (bool, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GetOwnProperty(base.Value, base.Symbol, *fieldshortcuts.FieldToken) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) DeleteOwnProperty(base.Value, base.Symbol) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) SetOwnProperty(base.Value, base.Symbol, base.Value) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) DefineOwnProperty(base.Value, base.Symbol, rctx.PropertyTrap) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ListOwnPropertySymbols(base.Value) (map[base.Symbol]struct{}, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GetOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) SetOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol, base.Value) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) DeleteOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) DefineOwnPropertyIgnoreSlotTrap(base.Value, base.Symbol, rctx.PropertyTrap) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ListOwnPropertySymbolsIgnoreSlotTrap(base.Value) (map[base.Symbol]struct{}, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GetInternalSlot(base.Value, uint64) (*rctx.ProtectedInternalSlot, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) SetInternalSlot(base.Value, uint64, rctx.InternalSlot) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ClearInternalSlot(base.Value, uint64) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ListPropertySymbols(base.Value) (map[base.Symbol]struct{}, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) HasProperty(base.Value, base.Symbol) (bool, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) GetProperty(base.Value, base.Symbol, *fieldshortcuts.FieldToken) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) MakeText(string) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) MakeList([]base.Value) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) MakeTuple(base.Value, uint32, []base.Value) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ExtractText(base.Value) (string, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ExtractList(base.Value) ([]base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) MakePropertyTrapValue(rctx.PropertyTrap) (base.Value, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) ExtractPropertyTrap(base.Value) (rctx.PropertyTrap, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) AddRoot(base.Value) (*root.Root, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) RemoveRoot(*root.Root) error {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) AddWeakRoot(base.Value, root.DropListener) (*root.WeakRoot, error) {
	panic(collectorContextPanicMessage)
}

func (c *CollectorContext) RemoveWeakRoot(*root.WeakRoot) error {
	panic(collectorContextPanicMessage)
}

// Collector drives one isolate's mark-sweep-refragment cycle. It is not
// safe to call RequestToCollect from more than one goroutine at a time;
// callers serialize collection requests themselves (typically from a
// single scheduler goroutine, the same way the isolate itself expects its
// slot-layout token to be held by one logical caller per cycle).
type Collector struct {
	isolate *isolate.Isolate
	context *CollectorContext
	logger  hclog.Logger

	fanout int64

	barrierRemarkingLock  *util.SpinLock
	barrierRemarkingSlice *valueSlice

	stateLock *util.SpinLock
	state     State

	requestedToCollect bool

	graySlicesLock *util.SpinLock
	graySlices     [][]base.Value

	symbolRWLock *util.RwLock
	symbolMarks  contains.Set

	statsLock         *util.SpinLock
	lastCycleDuration time.Duration
}

// NewCollector builds a Collector bound to iso. The collector mints its own
// reentrant slot-layout token (isolate.CreateSlotLayoutToken) rather than
// reusing the isolate's default one, so that the write-lock it holds across
// mark_roots and remark_grays properly blocks ordinary isolate callers
// instead of silently reentering past them.
func NewCollector(iso *isolate.Isolate) *Collector {
	return &Collector{
		isolate:               iso,
		context:               newCollectorContext(iso),
		logger:                iso.Logger().Named("collector"),
		fanout:                defaultFanout,
		barrierRemarkingLock:  util.NewSpinLock(),
		barrierRemarkingSlice: newValueSlice(),
		stateLock:             util.NewSpinLock(),
		state:                 Free,
		graySlicesLock:        util.NewSpinLock(),
		symbolRWLock:          util.NewRwLock(),
		statsLock:             util.NewSpinLock(),
	}
}

// State reports the collector's current phase.
func (c *Collector) State() State {
	g := c.stateLock.Lock()
	state := c.state
	g.Unlock()
	return state
}

func (c *Collector) setState(state State) {
	g := c.stateLock.Lock()
	c.state = state
	g.Unlock()
	c.logger.Debug("collector phase", "state", state)
}

// Barrier hooks.

func (c *Collector) preremoveValueReference(value base.Value) error {
	value, err := c.context.ResolveRealValue(value)
	if err != nil {
		return err
	}
	if c.State() != MarkingGrays {
		return nil
	}
	g := c.barrierRemarkingLock.Lock()
	defer g.Unlock()
	return c.markAsGray(value, c.barrierRemarkingSlice)
}

func (c *Collector) postgainValue(value base.Value) error {
	value, err := c.context.ResolveRealValue(value)
	if err != nil {
		return err
	}
	if c.State() != MarkingGrays {
		return nil
	}
	g := c.barrierRemarkingLock.Lock()
	defer g.Unlock()
	return c.markAsGray(value, c.barrierRemarkingSlice)
}

// RequestToCollect asks the collector to run a full cycle if it is
// currently idle. If a cycle is already underway, the request is recorded
// (requestedToCollect) but otherwise has no effect: iolang-style
// incremental scheduling of a queued follow-up cycle is left to a future
// caller, the same way the original leaves this flag unread within a
// single cycle.
func (c *Collector) RequestToCollect() error {
	g := c.stateLock.Lock()
	c.requestedToCollect = true
	shouldRun := c.state == Free
	if shouldRun {
		c.state = Pending
	}
	g.Unlock()

	if !shouldRun {
		return nil
	}

	return c.fullCollectGarbages(c.isolate.RefragmentRatio())
}

func (c *Collector) fullCollectGarbages(refragmentRatio float64) error {
	g := c.stateLock.Lock()
	c.requestedToCollect = false
	g.Unlock()

	started := time.Now()

	if err := c.markRoots(); err != nil {
		return err
	}
	if err := c.fullMarkGrays(); err != nil {
		return err
	}
	if err := c.remarkGrays(); err != nil {
		return err
	}
	if err := c.fullSweepValues(); err != nil {
		return err
	}
	if err := c.fullRefragmentSlots(refragmentRatio); err != nil {
		return err
	}

	c.isolate.FlipBaseColor()

	g = c.statsLock.Lock()
	c.lastCycleDuration = time.Since(started)
	g.Unlock()

	c.setState(Free)

	return nil
}

// Stats is a point-in-time snapshot of collector activity, for diagnostic
// reporting alongside isolate.Stats.
type Stats struct {
	State             State
	GrayQueueDepth    int
	LastCycleDuration time.Duration
}

// Stats reports the collector's current phase, how many values are
// presently queued gray awaiting a mark pass, and how long the most
// recently completed full cycle took.
func (c *Collector) Stats() Stats {
	g := c.graySlicesLock.Lock()
	depth := 0
	for _, slice := range c.graySlices {
		depth += len(slice)
	}
	g.Unlock()

	gs := c.statsLock.Lock()
	lastCycleDuration := c.lastCycleDuration
	gs.Unlock()

	return Stats{
		State:             c.State(),
		GrayQueueDepth:    depth,
		LastCycleDuration: lastCycleDuration,
	}
}

func (c *Collector) markRoots() error {
	c.setState(MarkingRoots)

	guard := c.context.SlotLayoutToken().LockWrite()
	defer guard.Unlock()

	slice := newValueSlice()

	for _, value := range c.isolate.ListBuiltins() {
		if err := c.markAsGray(value, slice); err != nil {
			return err
		}
	}
	for _, value := range c.isolate.ListRoots() {
		if err := c.markAsGray(value, slice); err != nil {
			return err
		}
	}
	for _, value := range c.isolate.ListValuesInNursery() {
		if err := c.markAsGray(value, slice); err != nil {
			return err
		}
	}

	if err := c.flushSlice(slice); err != nil {
		return err
	}

	c.isolate.SetBarrier(&CollectorBarrier{collector: c})

	return nil
}

func (c *Collector) fullMarkGrays() error {
	c.setState(MarkingGrays)

	slice := newValueSlice()

	for {
		values := c.listGrays(maxSliceSize)
		if len(values) == 0 {
			break
		}
		for _, value := range values {
			if err := c.markAsBlack(value); err != nil {
				return err
			}
			referenced, _, err := c.isolate.ListAndAutorefreshReferencedValues(value)
			if err != nil {
				return err
			}
			for _, referencedValue := range referenced {
				if err := c.markAsGray(referencedValue, slice); err != nil {
					return err
				}
			}
		}
		if err := c.flushSlice(slice); err != nil {
			return err
		}
	}

	return nil
}

func (c *Collector) remarkGrays() error {
	c.setState(RemarkingGrays)

	guard := c.context.SlotLayoutToken().LockWrite()
	defer guard.Unlock()

	c.isolate.ClearBarrier()

	if err := c.flushSlice(c.barrierRemarkingSlice); err != nil {
		return err
	}

	slice := newValueSlice()
	for {
		values := c.listGrays(maxSliceSize)
		if len(values) == 0 {
			break
		}
		for _, value := range values {
			if err := c.markAsBlack(value); err != nil {
				return err
			}
			referenced, _, err := c.isolate.ListAndAutorefreshReferencedValues(value)
			if err != nil {
				return err
			}
			for _, referencedValue := range referenced {
				if err := c.markAsGray(referencedValue, slice); err != nil {
					return err
				}
			}
		}
		if err := c.flushSlice(slice); err != nil {
			return err
		}
	}

	return nil
}

func (c *Collector) fullSweepValues() error {
	c.setState(Sweeping)

	ids := c.isolate.ListRegionIDs()
	base_ := c.isolate.GetBaseColor()

	group, gctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(c.fanout)

	for _, id := range ids {
		id := id
		if err := sem.Acquire(gctx, 1); err != nil {
			return err
		}
		group.Go(func() error {
			defer sem.Release(1)
			return c.isolate.SweepRegion(id, base_)
		})
	}

	return group.Wait()
}

func (c *Collector) fullRefragmentSlots(refragmentRatio float64) error {
	c.setState(Refragmenting)

	ids := c.isolate.ListRegionIDs()
	if len(ids) == 0 {
		return nil
	}

	nextRegionID := c.isolate.PeekNextRegionID()

	var maxAliveRegionID uint32
	targetID := uint32(0)
	sourceID := uint32(len(ids) - 1)

	// Refragmentation walks the live region ids from the top down, draining
	// any region needing it into the lowest not-yet-full target it can
	// find; this is a strictly sequential two-pointer scan (target and
	// source both move across the same index space) and does not parallelize
	// the way sweeping does.
	for {
		need, err := c.isolate.NeedRegionRefragment(sourceID)
		if err != nil {
			return err
		}

		if float64(need) > refragmentRatio {
			for {
				allFinished, err := c.isolate.RefragmentRegion(sourceID, targetID)
				if err != nil {
					return err
				}
				if allFinished {
					break
				}
				for targetID < sourceID {
					full, err := c.isolate.IsRegionFull(targetID)
					if err != nil {
						return err
					}
					if !full {
						break
					}
					targetID++
				}
				if targetID > sourceID {
					break
				}
			}

			protected := c.isolate.IsRegionProtected(sourceID)
			empty, err := c.isolate.IsRegionEmpty(sourceID)
			if err != nil {
				return err
			}
			if !protected && empty {
				if err := c.isolate.RecycleRegion(sourceID); err != nil {
					return err
				}
			} else if sourceID > maxAliveRegionID {
				maxAliveRegionID = sourceID
			}
		}

		if sourceID == 0 || targetID > sourceID {
			break
		}
		sourceID--
	}

	c.isolate.ShrinkNextRegionID(nextRegionID, maxAliveRegionID+1)

	return nil
}

func (c *Collector) markAsBlack(value base.Value) error {
	return c.isolate.MarkAsBlack(value, c.isolate.GetBaseColor())
}

func (c *Collector) markAsGray(value base.Value, slice *valueSlice) error {
	if value.IsSymbol() {
		id, err := value.GetSymbolID()
		if err != nil {
			return err
		}
		g := c.symbolRWLock.LockWrite()
		c.symbolMarks.Add(base.NewSymbol(id))
		g.Unlock()
		return nil
	}

	newlyGray, err := c.isolate.MarkAsGray(value, c.isolate.GetBaseColor())
	if err != nil {
		return err
	}
	if newlyGray && slice.push(value) {
		if err := c.flushSlice(slice); err != nil {
			return err
		}
	}

	return nil
}

func (c *Collector) flushSlice(slice *valueSlice) error {
	values := slice.drain()
	if len(values) == 0 {
		return nil
	}
	g := c.graySlicesLock.Lock()
	c.graySlices = append(c.graySlices, values)
	g.Unlock()
	return nil
}

// listGrays pops up to count values off the gray stack, splitting the last
// slice it pops if draining it whole would overflow count.
func (c *Collector) listGrays(count int) []base.Value {
	grays := make([]base.Value, 0, count)

	g := c.graySlicesLock.Lock()
	defer g.Unlock()

	for len(grays) < count {
		n := len(c.graySlices)
		if n == 0 {
			return grays
		}
		values := c.graySlices[n-1]
		c.graySlices = c.graySlices[:n-1]

		if len(grays)+len(values) > count {
			splitPosition := count - len(grays)
			grays = append(grays, values[:splitPosition]...)
			c.graySlices = append(c.graySlices, values[splitPosition:])
		} else {
			grays = append(grays, values...)
		}
	}

	return grays
}
