package storage

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/root"
)

// Local roots a Value for the lifetime of the call that created it. It is
// the native-stack equivalent of a local variable: callers that hold a Go
// reference to a Local keep the Value alive across any GC cycle that runs
// while the call is in progress. Close releases the underlying root; Go has
// no destructor to do this automatically the way the source's Drop impl
// does, so every Local must be closed, typically via defer.
type Local struct {
	context ctx.Context
	root    *root.Root
}

func NewLocal(context ctx.Context, value base.Value) (*Local, error) {
	if !value.IsSlotted() {
		return nil, base.NewError(base.FatalError, "value not slotted")
	}
	r, err := context.AddRoot(value)
	if err != nil {
		return nil, err
	}
	return &Local{context: context, root: r}, nil
}

func LocalForSymbol(context ctx.Context, symbol base.Symbol) (*Local, error) {
	return NewLocal(context, base.MakeSymbol(symbol.ID()))
}

func LocalFromPinned(context ctx.Context, pinned Pinned) (*Local, error) {
	return NewLocal(context, pinned.Value())
}

func (l *Local) Value() base.Value { return l.root.GetValue() }

func (l *Local) Close() error {
	return l.context.RemoveRoot(l.root)
}

func (l *Local) GetPrototype() (base.Value, error) {
	return l.context.GetPrototype(l.root.GetValue())
}

func (l *Local) SetPrototype(prototype base.Value) error {
	return l.context.SetPrototype(l.root.GetValue(), prototype)
}

func (l *Local) SetSlotTrap(trap ctx.SlotTrap) error {
	return l.context.SetSlotTrap(l.root.GetValue(), trap)
}

func (l *Local) HasOwnProperty(symbol base.Symbol) (bool, error) {
	return l.context.HasOwnProperty(l.root.GetValue(), symbol)
}

func (l *Local) GetOwnProperty(symbol base.Symbol, fieldToken *fieldshortcuts.FieldToken) (base.Value, error) {
	return l.context.GetOwnProperty(l.root.GetValue(), symbol, fieldToken)
}

func (l *Local) SetOwnProperty(symbol base.Symbol, value base.Value) error {
	return l.context.SetOwnProperty(l.root.GetValue(), symbol, value)
}

func (l *Local) DefineOwnProperty(symbol base.Symbol, trap ctx.PropertyTrap) error {
	return l.context.DefineOwnProperty(l.root.GetValue(), symbol, trap)
}

func (l *Local) ListOwnPropertySymbols() (map[base.Symbol]struct{}, error) {
	return l.context.ListOwnPropertySymbols(l.root.GetValue())
}

func (l *Local) ListPropertySymbols() (map[base.Symbol]struct{}, error) {
	return l.context.ListPropertySymbols(l.root.GetValue())
}

func (l *Local) HasProperty(symbol base.Symbol) (bool, error) {
	return l.context.HasProperty(l.root.GetValue(), symbol)
}

func (l *Local) GetProperty(symbol base.Symbol, fieldToken *fieldshortcuts.FieldToken) (base.Value, error) {
	return l.context.GetProperty(l.root.GetValue(), symbol, fieldToken)
}

func (l *Local) GetInternalSlot(index uint64) (*ctx.ProtectedInternalSlot, error) {
	return l.context.GetInternalSlot(l.root.GetValue(), index)
}

func (l *Local) SetInternalSlot(index uint64, slot ctx.InternalSlot) error {
	return l.context.SetInternalSlot(l.root.GetValue(), index, slot)
}

func (l *Local) ClearInternalSlot(index uint64) error {
	return l.context.ClearInternalSlot(l.root.GetValue(), index)
}
