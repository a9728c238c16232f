package fieldshortcuts

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/util"
)

// FieldToken is a prepared, cacheable reference to one symbol's shortcut
// slot. Callers that expect to touch the same property repeatedly (a loop
// body, a hot accessor) keep a token around instead of re-resolving the
// symbol's index on every access.
type FieldToken struct {
	lock     *util.RwLock
	template uint32
	version  uint16
	index    uint8
	symbol   base.Symbol
}

func (t *FieldToken) Template() uint32 { return t.template }

func (t *FieldToken) Symbol() base.Symbol { return t.symbol }

func (t *FieldToken) Version() uint16 {
	g := t.lock.LockRead()
	defer g.Unlock()
	return t.version
}

func (t *FieldToken) Index() uint8 {
	g := t.lock.LockRead()
	defer g.Unlock()
	return t.index
}

// GetField reads the cached value through shortcuts. If shortcuts reports
// the token stale, the read misses and the token is then refreshed against
// its owning template, so a later read can hit; the stale read is not retried.
func (t *FieldToken) GetField(shortcuts *FieldShortcuts) (base.Value, bool) {
	g := t.lock.LockRead()
	template, version, index := t.template, t.version, t.index
	g.Unlock()

	value, found, needUpdate := shortcuts.getField(template, version, index)
	if needUpdate {
		shortcuts.RefreshFieldToken(t)
	}
	return value, found
}

func (t *FieldToken) SetField(shortcuts *FieldShortcuts, value base.Value) {
	g := t.lock.LockRead()
	template, version, index := t.template, t.version, t.index
	g.Unlock()

	needUpdate := shortcuts.setField(template, version, index, value)
	if needUpdate {
		shortcuts.RefreshFieldToken(t)
	}
}
