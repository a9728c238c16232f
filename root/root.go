// Package root implements the isolate's strong and weak rooting tables: a
// rooted Value survives garbage collection for as long as at least one Root
// handle referencing it remains alive, and a WeakRoot observes collection
// without preventing it.
package root

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/util"
)

// Root is one refcounted handle onto a rooted Value.
type Root struct {
	lock       *util.RwLock
	value      base.Value
	references uint32
}

func NewRoot(value base.Value) *Root {
	return &Root{lock: util.NewRwLock(), value: value}
}

func (r *Root) GetValue() base.Value {
	g := r.lock.LockRead()
	defer g.Unlock()
	return r.value
}

// RefreshValue migrates the root onto new_value, but only if it currently
// points at old_value (a stale caller racing a concurrent move is a no-op).
func (r *Root) RefreshValue(oldValue, newValue base.Value) {
	g := r.lock.LockWrite()
	defer g.Unlock()
	if r.value != oldValue {
		return
	}
	r.value = newValue
}

func (r *Root) IncreaseReference() (uint32, error) {
	g := r.lock.LockWrite()
	defer g.Unlock()
	r.references++
	return r.references, nil
}

func (r *Root) DecreaseReference() (uint32, error) {
	g := r.lock.LockWrite()
	defer g.Unlock()
	if r.references == 0 {
		return 0, base.NewError(base.FatalError, "reference count over released")
	}
	r.references--
	return r.references, nil
}

func (r *Root) IsAlone() bool {
	g := r.lock.LockRead()
	defer g.Unlock()
	return r.references == 0
}

// Roots aggregates every Root handle sharing one logical rooted Value. The
// isolate keeps exactly one Roots per distinct rooted Value.
type Roots struct {
	lock  *util.RwLock
	value base.Value
	roots []*Root
}

func NewRoots(value base.Value) *Roots {
	return &Roots{lock: util.NewRwLock(), value: value}
}

// GetAnyRoot returns an existing member Root, lazily creating the first one
// if the group is still empty.
func (rs *Roots) GetAnyRoot() *Root {
	g := rs.lock.LockRead()
	if len(rs.roots) > 0 {
		r := rs.roots[0]
		g.Unlock()
		return r
	}
	g.Unlock()

	wg := rs.lock.LockWrite()
	defer wg.Unlock()
	if len(rs.roots) > 0 {
		return rs.roots[0]
	}
	r := NewRoot(rs.value)
	rs.roots = append(rs.roots, r)
	return r
}

func (rs *Roots) GetValue() base.Value {
	g := rs.lock.LockRead()
	defer g.Unlock()
	return rs.value
}

// RefreshValue propagates a move to the group and to every member Root, but
// only if the group currently points at old_value.
func (rs *Roots) RefreshValue(oldValue, newValue base.Value) {
	g := rs.lock.LockWrite()
	defer g.Unlock()
	if rs.value != oldValue {
		return
	}
	rs.value = newValue
	for _, r := range rs.roots {
		r.RefreshValue(oldValue, newValue)
	}
}

// MergeRoots absorbs another group's member Roots into this one. Both groups
// must already point at the same Value.
func (rs *Roots) MergeRoots(other *Roots) error {
	g := rs.lock.LockWrite()
	defer g.Unlock()
	og := other.lock.LockRead()
	defer og.Unlock()

	if rs.value != other.value {
		return base.NewError(base.FatalError, "root value different")
	}
	rs.roots = append(rs.roots, other.roots...)
	return nil
}

func (rs *Roots) IsAlone() bool {
	g := rs.lock.LockRead()
	defer g.Unlock()
	for _, r := range rs.roots {
		if !r.IsAlone() {
			return false
		}
	}
	return true
}
