package root

import (
	"sync/atomic"

	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/util"
	"github.com/google/uuid"
)

// DropListener is notified exactly once when the value behind a WeakRoot is
// reclaimed by the collector.
type DropListener interface {
	NotifyDrop()
}

// WeakIDGenerator hands out monotonically increasing weak-root ids.
type WeakIDGenerator struct {
	nextID uint32
}

func NewWeakIDGenerator() *WeakIDGenerator { return &WeakIDGenerator{nextID: 1} }

func (g *WeakIDGenerator) Generate() uint32 {
	return atomic.AddUint32(&g.nextID, 1) - 1
}

// WeakRoot observes a Value without keeping it alive. Once the collector
// reclaims the slot, Value() starts returning (zero, false) and the
// DropListener (if any) fires exactly once.
type WeakRoot struct {
	lock         *util.RwLock
	weakID       uint32
	instanceID   uuid.UUID
	value        *base.Value
	dropListener DropListener
}

func NewWeakRoot(generator *WeakIDGenerator, value base.Value, listener DropListener) *WeakRoot {
	v := value
	return &WeakRoot{
		lock:         util.NewRwLock(),
		weakID:       generator.Generate(),
		instanceID:   uuid.New(),
		value:        &v,
		dropListener: listener,
	}
}

func (w *WeakRoot) WeakID() uint32 { return w.weakID }

func (w *WeakRoot) IsDropped() bool {
	g := w.lock.LockRead()
	defer g.Unlock()
	return w.value == nil
}

// NotifyDrop marks the root dropped and fires the listener exactly once.
// Fails FatalError if the value was already dropped.
func (w *WeakRoot) NotifyDrop() error {
	g := w.lock.LockWrite()
	defer g.Unlock()
	if w.value == nil {
		return base.NewError(base.FatalError, "value already dropped")
	}
	w.value = nil
	if w.dropListener != nil {
		w.dropListener.NotifyDrop()
		w.dropListener = nil
	}
	return nil
}

// Value returns the live value and true, or (zero, false) once dropped.
func (w *WeakRoot) Value() (base.Value, bool) {
	g := w.lock.LockRead()
	defer g.Unlock()
	if w.value == nil {
		return base.Value{}, false
	}
	return *w.value, true
}

func (w *WeakRoot) RefreshValue(oldValue, newValue base.Value) {
	g := w.lock.LockWrite()
	defer g.Unlock()
	if w.value == nil || *w.value != oldValue {
		return
	}
	v := newValue
	w.value = &v
}
