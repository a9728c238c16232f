package storage

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/root"
)

// Persistent roots a Value for as long as the handle itself lives, outside
// the scope of any single call. Close releases the root; there is no
// destructor, so callers must defer Close the way they would a file handle.
type Persistent struct {
	isolateID string
	root      *root.Root
}

func PersistentFromLocal(local *Local) (*Persistent, error) {
	r, err := local.context.AddRoot(local.Value())
	if err != nil {
		return nil, err
	}
	return &Persistent{isolateID: local.context.IsolateID(), root: r}, nil
}

// ToLocal promotes the persistent root to a call-scoped Local. Fails
// FatalError if context belongs to a different isolate than the one this
// Persistent was created against.
func (p *Persistent) ToLocal(context ctx.Context) (*Local, error) {
	if context.IsolateID() != p.isolateID {
		return nil, base.NewError(base.FatalError, "invalid context with different isolate")
	}
	return NewLocal(context, p.root.GetValue())
}

func (p *Persistent) Close(context ctx.Context) error {
	return context.RemoveRoot(p.root)
}
