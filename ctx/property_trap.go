package ctx

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/util"
)

// PropertyTrap is a getter/setter pair bound to one symbol on one slot.
//
// IsSimpleField reports whether the trap qualifies for the isolate's
// field-shortcut fast path: no side effects beyond the explicit SetProperty
// call, no references besides the property value itself, and a stable value
// the isolate may cache behind a prepared FieldToken.
type PropertyTrap interface {
	IsSimpleField() bool

	GetProperty(trapInfo TrapInfo, context Context) (base.Value, error)

	// SetProperty returns reference deltas as
	// (removedValues, addedValues, removedSymbols, addedSymbols).
	SetProperty(trapInfo TrapInfo, context Context) ([]base.Value, []base.Value, []base.Symbol, []base.Symbol, error)

	ListAndAutorefreshReferencedValues(selfID base.Value, context Context) ([]base.Value, error)
	ListReferencedValues() []base.Value
	ListInternalReferencedSymbols() []base.Symbol
	RefreshReferencedValue(oldValue, newValue base.Value)
}

// DefaultPropertyTrap supplies the source's trait defaults: a complex,
// read-only, reference-free property. Embed it and override what differs.
type DefaultPropertyTrap struct{}

func (DefaultPropertyTrap) IsSimpleField() bool { return false }

func (DefaultPropertyTrap) GetProperty(TrapInfo, Context) (base.Value, error) {
	return base.MakeUndefined(), nil
}

func (DefaultPropertyTrap) SetProperty(TrapInfo, Context) ([]base.Value, []base.Value, []base.Symbol, []base.Symbol, error) {
	return nil, nil, nil, nil, base.NewError(base.MutatingReadOnlyProperty, "property immutable")
}

func (DefaultPropertyTrap) ListAndAutorefreshReferencedValues(base.Value, Context) ([]base.Value, error) {
	return nil, nil
}

func (DefaultPropertyTrap) ListReferencedValues() []base.Value { return nil }

func (DefaultPropertyTrap) ListInternalReferencedSymbols() []base.Symbol { return nil }

func (DefaultPropertyTrap) RefreshReferencedValue(base.Value, base.Value) {}

// ProtectedPropertyTrap pins a PropertyTrap against concurrent recycling for
// the duration of one call. The caller must defer Close.
type ProtectedPropertyTrap struct {
	context     Context
	trap        PropertyTrap
	protectedID uint64
}

func NewProtectedPropertyTrap(trap PropertyTrap, context Context) (*ProtectedPropertyTrap, error) {
	protectedID, protectedTrap, err := context.ProtectPropertyTrap(trap)
	if err != nil {
		return nil, err
	}
	return &ProtectedPropertyTrap{context: context, trap: protectedTrap, protectedID: protectedID}, nil
}

func (p *ProtectedPropertyTrap) Trap() PropertyTrap { return p.trap }

func (p *ProtectedPropertyTrap) Close() error {
	return p.context.UnprotectPropertyTrap(p.protectedID)
}

// FieldPropertyTrap is the concrete simple-field PropertyTrap: a single
// value behind a lock, with no side effects beyond its own reference.
type FieldPropertyTrap struct {
	lock  *util.RwLock
	value base.Value
}

func NewFieldPropertyTrap(value base.Value) *FieldPropertyTrap {
	return &FieldPropertyTrap{lock: util.NewRwLock(), value: value}
}

func (f *FieldPropertyTrap) IsSimpleField() bool { return true }

func (f *FieldPropertyTrap) GetProperty(TrapInfo, Context) (base.Value, error) {
	g := f.lock.LockRead()
	defer g.Unlock()
	return f.value, nil
}

func (f *FieldPropertyTrap) SetProperty(trapInfo TrapInfo, context Context) ([]base.Value, []base.Value, []base.Symbol, []base.Symbol, error) {
	g := f.lock.LockWrite()
	defer g.Unlock()

	oldValue := f.value
	value := trapInfo.Parameter(1)
	f.value = value

	if oldValue != value {
		return []base.Value{oldValue}, []base.Value{value}, nil, nil, nil
	}
	return nil, nil, nil, nil, nil
}

func (f *FieldPropertyTrap) ListAndAutorefreshReferencedValues(selfID base.Value, context Context) ([]base.Value, error) {
	g := f.lock.LockRead()
	value := f.value
	g.Unlock()

	newValue, err := context.ResolveRealValue(value)
	if err != nil {
		return nil, err
	}

	if value != newValue {
		if err := context.AddValueReference(selfID, newValue); err != nil {
			return nil, err
		}
		wg := f.lock.LockWrite()
		f.value = newValue
		wg.Unlock()
		if err := context.RemoveValueReference(selfID, value); err != nil {
			return nil, err
		}
	}

	return []base.Value{newValue}, nil
}

func (f *FieldPropertyTrap) ListReferencedValues() []base.Value {
	g := f.lock.LockRead()
	defer g.Unlock()
	return []base.Value{f.value}
}

func (f *FieldPropertyTrap) ListInternalReferencedSymbols() []base.Symbol { return nil }

func (f *FieldPropertyTrap) RefreshReferencedValue(oldValue, newValue base.Value) {
	g := f.lock.LockRead()
	if f.value != oldValue {
		g.Unlock()
		return
	}
	g.Unlock()

	wg := f.lock.LockWrite()
	defer wg.Unlock()
	if f.value != oldValue {
		return
	}
	f.value = newValue
}
