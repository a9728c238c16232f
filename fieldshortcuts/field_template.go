// Package fieldshortcuts implements the isolate's per-prototype field-shortcut
// cache: a FieldTemplate records which symbols a prototype chain has promoted
// to fixed slot indices, and each instance's FieldShortcuts caches the
// current values at those indices so that property access through a
// FieldToken can skip the full property-trap dispatch when the token is
// still fresh.
package fieldshortcuts

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/util"
)

// MaxShortcutsSize bounds how many symbols one template may promote to
// shortcut fields; the source picks 26 so the owning FieldShortcuts struct
// fits one 256-byte cache-friendly allocation, a layout invariant specific
// to Rust's inline-array representation that Go does not reproduce.
const MaxShortcutsSize = 26

// FieldTemplate assigns stable shortcut indices to a fixed set of symbols,
// shared by every FieldShortcuts instance built against the same prototype
// shape. Removing a symbol bumps Version so that existing FieldShortcuts
// instances and FieldTokens can detect staleness and refresh.
type FieldTemplate struct {
	lock    *util.RwLock
	id      uint32
	version uint16
	bitmap  uint64
	fields  map[base.Symbol]uint8
}

func NewFieldTemplate(id uint32) *FieldTemplate {
	return &FieldTemplate{
		lock:    util.NewRwLock(),
		id:      id,
		version: 1,
		fields:  make(map[base.Symbol]uint8),
	}
}

func (t *FieldTemplate) ID() uint32 { return t.id }

func (t *FieldTemplate) Version() uint16 {
	g := t.lock.LockRead()
	defer g.Unlock()
	return t.version
}

// GetFieldToken returns a fresh token bound to symbol's current index, or
// false if the template has not promoted that symbol.
func (t *FieldTemplate) GetFieldToken(symbol base.Symbol) (*FieldToken, bool) {
	g := t.lock.LockRead()
	defer g.Unlock()

	index, ok := t.fields[symbol]
	if !ok {
		return nil, false
	}
	return &FieldToken{
		lock:     util.NewRwLock(),
		template: t.id,
		version:  t.version,
		index:    index,
		symbol:   symbol,
	}, true
}

// RefreshFieldToken rewrites token's cached version/index in place if the
// template still promotes its symbol.
func (t *FieldTemplate) RefreshFieldToken(token *FieldToken) {
	g := t.lock.LockRead()
	defer g.Unlock()

	index, ok := t.fields[token.symbol]
	if !ok {
		return
	}
	wg := token.lock.LockWrite()
	defer wg.Unlock()
	token.version = t.version
	token.index = index
}

func (t *FieldTemplate) GetSymbolIndex(symbol base.Symbol) (uint8, bool) {
	g := t.lock.LockRead()
	defer g.Unlock()
	index, ok := t.fields[symbol]
	return index, ok
}

func (t *FieldTemplate) SymbolCount() uint8 {
	g := t.lock.LockRead()
	defer g.Unlock()
	return uint8(len(t.fields))
}

// AddSymbol promotes symbol to the next free shortcut index. Fails
// FatalError once MaxShortcutsSize symbols are already promoted, or if
// symbol is already promoted.
func (t *FieldTemplate) AddSymbol(symbol base.Symbol) (uint8, error) {
	g := t.lock.LockWrite()
	defer g.Unlock()

	if len(t.fields) >= MaxShortcutsSize {
		return 0, base.NewError(base.FatalError, "fields overflow")
	}
	if _, ok := t.fields[symbol]; ok {
		return 0, base.NewError(base.FatalError, "fields duplicated")
	}

	var index uint8
	for index < 64 && (t.bitmap>>index)&1 == 1 {
		index++
	}
	if index >= 64 {
		return 0, base.NewError(base.FatalError, "fields overflow")
	}

	t.bitmap |= 1 << index
	t.fields[symbol] = index
	return index, nil
}

func (t *FieldTemplate) HasSymbol(symbol base.Symbol) bool {
	g := t.lock.LockWrite()
	defer g.Unlock()
	_, ok := t.fields[symbol]
	return ok
}

// RemoveSymbol demotes symbol and bumps Version, invalidating every
// FieldShortcuts instance and FieldToken cached against the old version.
func (t *FieldTemplate) RemoveSymbol(symbol base.Symbol) error {
	g := t.lock.LockWrite()
	defer g.Unlock()

	index, ok := t.fields[symbol]
	if !ok {
		return base.NewError(base.FatalError, "fields not found")
	}

	t.version++
	t.bitmap &^= 1 << index
	delete(t.fields, symbol)
	return nil
}
