// Package util holds the non-fair ticket-style locking primitives that the
// slot store and collector are built on, plus the sparse page map used to
// index regions.
package util

import "sync/atomic"

// SpinLock is a ticket lock intended for short critical sections: reference
// map updates and the collector's barrier remarking slice.
type SpinLock struct {
	flag uint32
	next uint32 // starts at 1; ticket 0 always means "unlocked"
}

// NewSpinLock returns a ready-to-use SpinLock.
func NewSpinLock() *SpinLock { return &SpinLock{next: 1} }

// SpinLockGuard releases the lock when Unlock is called. A zero-value guard
// (Locked() == false) means the lock was contended and nothing was acquired;
// only TryLock returns one of those.
type SpinLockGuard struct {
	lock *SpinLock
	flag uint32
}

func (g *SpinLockGuard) Locked() bool { return g.flag != 0 }

func (g *SpinLockGuard) Unlock() {
	if g.flag == 0 {
		return
	}
	if !atomic.CompareAndSwapUint32(&g.lock.flag, g.flag, 0) {
		panic("util: invalid spin lock guard to unlock")
	}
	g.flag = 0
}

// Lock blocks until the lock is acquired.
func (l *SpinLock) Lock() *SpinLockGuard {
	flag := atomic.AddUint32(&l.next, 1) - 1
	for !atomic.CompareAndSwapUint32(&l.flag, 0, flag) {
	}
	return &SpinLockGuard{lock: l, flag: flag}
}

// TryLock returns immediately; check Locked() on the result.
func (l *SpinLock) TryLock() *SpinLockGuard {
	flag := atomic.AddUint32(&l.next, 1) - 1
	if atomic.CompareAndSwapUint32(&l.flag, 0, flag) {
		return &SpinLockGuard{lock: l, flag: flag}
	}
	return &SpinLockGuard{lock: l, flag: 0}
}
