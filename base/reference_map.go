package base

import "github.com/dragonation/rogiso-go/util"

// ReferenceMap is a small multiset of inbound Value references, used both as
// a slot's outer-reference count and as the per-redirection reference table
// recorded when a slot is frozen for migration.
type ReferenceMap struct {
	lock   *util.SpinLock
	count  uint32
	counts map[Value]uint32
}

func NewReferenceMap() *ReferenceMap {
	return &ReferenceMap{lock: util.NewSpinLock(), counts: make(map[Value]uint32)}
}

func (m *ReferenceMap) IsEmpty() bool {
	g := m.lock.Lock()
	defer g.Unlock()
	return m.count == 0
}

func (m *ReferenceMap) AddReference(value Value) error {
	g := m.lock.Lock()
	defer g.Unlock()
	m.counts[value] = m.counts[value] + 1
	m.count++
	return nil
}

// RemoveReference decrements value's count. Fails FatalError if value has no
// recorded references, or (defensively) if a zero count was ever recorded.
func (m *ReferenceMap) RemoveReference(value Value) error {
	g := m.lock.Lock()
	defer g.Unlock()

	count, ok := m.counts[value]
	if !ok {
		return NewError(FatalError, "no references recorded")
	}
	if count == 0 {
		return NewError(FatalError, "reference count should always be greater than or equal to zero")
	}

	if count > 1 {
		m.counts[value] = count - 1
	} else {
		delete(m.counts, value)
	}
	m.count--
	return nil
}
