// Package storage holds the handle types through which callers keep a Value
// alive and observe it across redirections: Pinned (call-scoped), Local
// (stack-scoped, auto-rooted), Persistent (isolate-lifetime root), and Weak.
package storage

import "github.com/dragonation/rogiso-go/base"

// Pinned is a short-lived handle to a Value, valid for the duration of the
// call that produced it. It carries no rooting by itself; callers that need
// a value to survive a GC cycle must promote it to a Local/Persistent root.
type Pinned struct {
	value base.Value
}

func NewPinned(value base.Value) Pinned { return Pinned{value: value} }

func (p Pinned) Value() base.Value { return p.value }
