package internalslot

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/ctx"
	"github.com/dragonation/rogiso-go/util"
)

// List is the internal slot backing every List value: a growable, indexable
// sequence of element references.
type List struct {
	lock    *util.RwLock
	subject base.Value
	values  []base.Value
}

// NewList builds a List internal slot owned by subject, with an initial
// element set.
func NewList(subject base.Value, values []base.Value) *List {
	owned := make([]base.Value, len(values))
	copy(owned, values)
	return &List{lock: util.NewRwLock(), subject: subject, values: owned}
}

func (l *List) Subject() base.Value { return l.subject }

func (l *List) RefreshSubject(subject base.Value) {
	guard := l.lock.LockWrite()
	defer guard.Unlock()
	l.subject = subject
}

func (l *List) ListAndAutorefreshReferencedValues(selfID base.Value, context ctx.Context) ([]base.Value, error) {
	guard := l.lock.LockWrite()
	defer guard.Unlock()

	result := make([]base.Value, len(l.values))
	for i, oldValue := range l.values {
		newValue, err := context.ResolveRealValue(oldValue)
		if err != nil {
			return nil, err
		}
		if newValue != oldValue {
			if err := context.AddValueReference(selfID, newValue); err != nil {
				return nil, err
			}
			l.values[i] = newValue
			if err := context.RemoveValueReference(selfID, oldValue); err != nil {
				return nil, err
			}
		}
		result[i] = newValue
	}
	return result, nil
}

func (l *List) ListReferencedValues() []base.Value { return l.GetValueList() }

func (l *List) ListReferencedSymbols() []base.Symbol { return nil }

func (l *List) RefreshReferencedValue(oldValue, newValue base.Value) {
	guard := l.lock.LockWrite()
	defer guard.Unlock()
	for i, value := range l.values {
		if value == oldValue {
			l.values[i] = newValue
		}
	}
}

func (l *List) Length() int {
	guard := l.lock.LockRead()
	defer guard.Unlock()
	return len(l.values)
}

func (l *List) GetElement(index int) base.Value {
	guard := l.lock.LockRead()
	defer guard.Unlock()
	if index < 0 || index >= len(l.values) {
		return base.MakeUndefined()
	}
	return l.values[index]
}

// SetElement overwrites (or grows to accommodate) the element at index,
// padding any gap with undefined, and reports the removed/added reference
// so the caller can update the GC reference graph.
func (l *List) SetElement(index int, value base.Value) (removed, added []base.Value) {
	guard := l.lock.LockWrite()
	defer guard.Unlock()

	for index >= len(l.values) {
		l.values = append(l.values, base.MakeUndefined())
	}

	old := l.values[index]
	l.values[index] = value

	return []base.Value{old}, []base.Value{value}
}

func (l *List) GetValueList() []base.Value {
	guard := l.lock.LockRead()
	defer guard.Unlock()
	result := make([]base.Value, len(l.values))
	copy(result, l.values)
	return result
}
