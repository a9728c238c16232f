package internalslot

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/util"
)

// Tuple is the internal slot backing every Tuple value: a fixed-length,
// immutable-length sequence of element references distinguished from other
// tuples of the same shape by id (a tuple's "kind").
type Tuple struct {
	lock    *util.RwLock
	subject base.Value
	id      uint32
	values  []base.Value
}

func NewTuple(subject base.Value, id uint32, values []base.Value) *Tuple {
	owned := make([]base.Value, len(values))
	copy(owned, values)
	return &Tuple{lock: util.NewRwLock(), subject: subject, id: id, values: owned}
}

func (t *Tuple) ID() uint32 { return t.id }

func (t *Tuple) Subject() base.Value { return t.subject }

func (t *Tuple) RefreshSubject(subject base.Value) {
	guard := t.lock.LockWrite()
	defer guard.Unlock()
	t.subject = subject
}

func (t *Tuple) ListAndAutorefreshReferencedValues(selfID base.Value, context ctx.Context) ([]base.Value, error) {
	guard := t.lock.LockWrite()
	defer guard.Unlock()

	result := make([]base.Value, len(t.values))
	for i, oldValue := range t.values {
		newValue, err := context.ResolveRealValue(oldValue)
		if err != nil {
			return nil, err
		}
		if newValue != oldValue {
			if err := context.AddValueReference(selfID, newValue); err != nil {
				return nil, err
			}
			t.values[i] = newValue
			if err := context.RemoveValueReference(selfID, oldValue); err != nil {
				return nil, err
			}
		}
		result[i] = newValue
	}
	return result, nil
}

func (t *Tuple) ListReferencedValues() []base.Value { return t.GetValueList() }

func (t *Tuple) ListReferencedSymbols() []base.Symbol { return nil }

func (t *Tuple) RefreshReferencedValue(oldValue, newValue base.Value) {
	guard := t.lock.LockWrite()
	defer guard.Unlock()
	for i, value := range t.values {
		if value == oldValue {
			t.values[i] = newValue
		}
	}
}

func (t *Tuple) Length() int {
	guard := t.lock.LockRead()
	defer guard.Unlock()
	return len(t.values)
}

func (t *Tuple) GetElement(index int) base.Value {
	guard := t.lock.LockRead()
	defer guard.Unlock()
	if index < 0 || index >= len(t.values) {
		return base.MakeUndefined()
	}
	return t.values[index]
}

func (t *Tuple) GetValueList() []base.Value {
	guard := t.lock.LockRead()
	defer guard.Unlock()
	result := make([]base.Value, len(t.values))
	copy(result, t.values)
	return result
}
