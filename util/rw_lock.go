package util

import "sync/atomic"

// RwLock is a non-reentrant reader/writer ticket lock. Readers briefly hold
// the ticket only long enough to register themselves and then release it
// immediately, so many readers can be registered concurrently; a writer
// holds the ticket until every registered reader has drained.
type RwLock struct {
	reading uint32
	flag    uint32
	next    uint32
}

func NewRwLock() *RwLock { return &RwLock{next: 1} }

type RwLockReadGuard struct {
	lock *RwLock
	flag uint32
}

func (g *RwLockReadGuard) Locked() bool { return g.flag != 0 }

func (g *RwLockReadGuard) Unlock() {
	if g.flag == 0 {
		return
	}
	atomic.AddUint32(&g.lock.reading, ^uint32(0))
	g.flag = 0
}

type RwLockWriteGuard struct {
	lock *RwLock
	flag uint32
}

func (g *RwLockWriteGuard) Locked() bool { return g.flag != 0 }

func (g *RwLockWriteGuard) Unlock() {
	if g.flag == 0 {
		return
	}
	if !atomic.CompareAndSwapUint32(&g.lock.flag, g.flag, 0) {
		panic("util: invalid rw lock write guard to unlock")
	}
	g.flag = 0
}

func (l *RwLock) LockRead() *RwLockReadGuard {
	flag := atomic.AddUint32(&l.next, 1) - 1
	for !atomic.CompareAndSwapUint32(&l.flag, 0, flag) {
	}
	atomic.AddUint32(&l.reading, 1)
	if !atomic.CompareAndSwapUint32(&l.flag, flag, 0) {
		panic("util: invalid rw lock read guard to unlock")
	}
	return &RwLockReadGuard{lock: l, flag: flag}
}

func (l *RwLock) TryLockRead() *RwLockReadGuard {
	flag := atomic.AddUint32(&l.next, 1) - 1
	if atomic.CompareAndSwapUint32(&l.flag, 0, flag) {
		atomic.AddUint32(&l.reading, 1)
		if !atomic.CompareAndSwapUint32(&l.flag, flag, 0) {
			panic("util: invalid rw lock read guard to unlock")
		}
		return &RwLockReadGuard{lock: l, flag: flag}
	}
	return &RwLockReadGuard{lock: l, flag: 0}
}

func (l *RwLock) LockWrite() *RwLockWriteGuard {
	flag := atomic.AddUint32(&l.next, 1) - 1
	for !atomic.CompareAndSwapUint32(&l.flag, 0, flag) {
	}
	for atomic.LoadUint32(&l.reading) != 0 {
	}
	return &RwLockWriteGuard{lock: l, flag: flag}
}

func (l *RwLock) TryLockWrite() *RwLockWriteGuard {
	flag := atomic.AddUint32(&l.next, 1) - 1
	if atomic.CompareAndSwapUint32(&l.flag, 0, flag) {
		if atomic.LoadUint32(&l.reading) == 0 {
			return &RwLockWriteGuard{lock: l, flag: flag}
		}
		if !atomic.CompareAndSwapUint32(&l.flag, flag, 0) {
			panic("util: invalid rw lock write guard to unlock")
		}
	}
	return &RwLockWriteGuard{lock: l, flag: 0}
}
