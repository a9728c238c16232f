package storage

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/root"
)

// Weak observes a Value without rooting it: once the collector reclaims the
// slot, ToLocal starts returning (nil, nil) instead of a Local. Close
// releases the underlying weak root; there is no destructor, so callers
// must defer Close.
type Weak struct {
	isolateID string
	root      *root.WeakRoot
}

func WeakFromLocal(local *Local, listener root.DropListener) (*Weak, error) {
	r, err := local.context.AddWeakRoot(local.Value(), listener)
	if err != nil {
		return nil, err
	}
	return &Weak{isolateID: local.context.IsolateID(), root: r}, nil
}

// ToLocal promotes the weak root to a call-scoped Local, or returns
// (nil, nil) if the observed value has already been collected.
func (w *Weak) ToLocal(context ctx.Context) (*Local, error) {
	if w.root.IsDropped() {
		return nil, nil
	}
	if context.IsolateID() != w.isolateID {
		return nil, base.NewError(base.FatalError, "invalid context with different isolate")
	}
	value, ok := w.root.Value()
	if !ok {
		return nil, nil
	}
	return NewLocal(context, value)
}

func (w *Weak) Close(context ctx.Context) error {
	return context.RemoveWeakRoot(w.root)
}
