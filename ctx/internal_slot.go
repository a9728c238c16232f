package ctx

import "github.com/dragonation/rogiso-go/base"

// InternalSlot is a native payload hung off a slot at a fixed internal-slot
// index (index 0 for Text/List/Tuple, per-builtin indices for others). It
// defined here rather than in its own package because slots and traps need
// to see it through Context without creating an import cycle with whatever
// package implements Text/List/Tuple.
type InternalSlot interface {
	Subject() base.Value
	RefreshSubject(subject base.Value)
	ListReferencedValues() []base.Value
	ListAndAutorefreshReferencedValues(selfID base.Value, context Context) ([]base.Value, error)
	ListReferencedSymbols() []base.Symbol
	RefreshReferencedValue(oldValue, newValue base.Value)
}

// DefaultInternalSlot supplies the source's trait defaults: no subject, no
// references. Embed it and override what differs.
type DefaultInternalSlot struct{}

func (DefaultInternalSlot) Subject() base.Value { return base.MakeUndefined() }

func (DefaultInternalSlot) RefreshSubject(base.Value) {}

func (DefaultInternalSlot) ListReferencedValues() []base.Value { return nil }

func (DefaultInternalSlot) ListAndAutorefreshReferencedValues(base.Value, Context) ([]base.Value, error) {
	return nil, nil
}

func (DefaultInternalSlot) ListReferencedSymbols() []base.Symbol { return nil }

func (DefaultInternalSlot) RefreshReferencedValue(base.Value, base.Value) {}

// ProtectedInternalSlot pins an InternalSlot against concurrent recycling
// for the duration of one call. The caller must defer Close.
type ProtectedInternalSlot struct {
	context     Context
	slot        InternalSlot
	protectedID uint64
}

func NewProtectedInternalSlot(slot InternalSlot, context Context) (*ProtectedInternalSlot, error) {
	protectedID, protectedSlot, err := context.ProtectInternalSlot(slot)
	if err != nil {
		return nil, err
	}
	return &ProtectedInternalSlot{context: context, slot: protectedSlot, protectedID: protectedID}, nil
}

func (p *ProtectedInternalSlot) Slot() InternalSlot { return p.slot }

func (p *ProtectedInternalSlot) Close() error {
	return p.context.UnprotectInternalSlot(p.protectedID)
}
