package base

import (
	"sync/atomic"

	"github.com/dragonation/rogiso-go/util"
)

// Symbol is a property symbol, scope-qualified by whichever SymbolScope
// interned it.
type Symbol struct {
	id uint32
}

func NewSymbol(id uint32) Symbol { return Symbol{id: id} }

func (s Symbol) ID() uint32 { return s.id }

// SymbolIDGenerator hands out monotonically increasing symbol ids starting
// at 1, shared across every SymbolScope in an isolate so that ids never
// collide between scopes.
type SymbolIDGenerator struct {
	nextID uint32
}

func NewSymbolIDGenerator() *SymbolIDGenerator {
	return &SymbolIDGenerator{nextID: 1}
}

// Generate returns the next id, post-incrementing the counter the same way
// the source's AtomicU32::fetch_add does (the caller receives the
// pre-increment value).
func (g *SymbolIDGenerator) Generate() uint32 {
	return atomic.AddUint32(&g.nextID, 1) - 1
}

// SymbolRecord is either a text-keyed or a value-keyed interned symbol.
type SymbolRecord struct {
	Text  *string
	Value *Value
}

// SymbolScope maps text or Value keys to interned Symbols for one named
// scope, tracking reference counts and a "nursery" of not-yet-referenced
// symbols so a scope that is still being constructed cannot have its
// just-created symbols reclaimed out from under it. All state is guarded by
// a single RwLock; readers take it only to look a key up, writers to intern
// or mutate bookkeeping.
type SymbolScope struct {
	id        string
	lock      *util.RwLock
	generator *SymbolIDGenerator

	textSymbols  map[string]Symbol
	valueSymbols map[Value]Symbol
	records      map[Symbol]SymbolRecord
	references   map[Symbol]uint32
	nursery      map[Symbol]struct{}
}

func NewSymbolScope(generator *SymbolIDGenerator, id string) *SymbolScope {
	return &SymbolScope{
		id:           id,
		lock:         util.NewRwLock(),
		generator:    generator,
		textSymbols:  make(map[string]Symbol),
		valueSymbols: make(map[Value]Symbol),
		records:      make(map[Symbol]SymbolRecord),
		references:   make(map[Symbol]uint32),
		nursery:      make(map[Symbol]struct{}),
	}
}

func (s *SymbolScope) ID() string { return s.id }

// GetSymbolRecord returns the interned text/value behind a symbol, if any.
func (s *SymbolScope) GetSymbolRecord(symbol Symbol) (SymbolRecord, bool) {
	g := s.lock.LockRead()
	defer g.Unlock()
	r, ok := s.records[symbol]
	return r, ok
}

// GetTextSymbol interns text, returning the existing symbol if present.
func (s *SymbolScope) GetTextSymbol(text string) Symbol {
	if sym, ok := s.lookupText(text); ok {
		return sym
	}

	g := s.lock.LockWrite()
	defer g.Unlock()
	if sym, ok := s.textSymbols[text]; ok {
		return sym
	}
	sym := NewSymbol(s.generator.Generate())
	s.textSymbols[text] = sym
	t := text
	s.records[sym] = SymbolRecord{Text: &t}
	s.nursery[sym] = struct{}{}
	return sym
}

func (s *SymbolScope) lookupText(text string) (Symbol, bool) {
	g := s.lock.LockRead()
	defer g.Unlock()
	sym, ok := s.textSymbols[text]
	return sym, ok
}

// GetValueSymbol interns a Value key, returning the existing symbol if present.
func (s *SymbolScope) GetValueSymbol(value Value) Symbol {
	if sym, ok := s.lookupValue(value); ok {
		return sym
	}

	g := s.lock.LockWrite()
	defer g.Unlock()
	if sym, ok := s.valueSymbols[value]; ok {
		return sym
	}
	sym := NewSymbol(s.generator.Generate())
	s.valueSymbols[value] = sym
	v := value
	s.records[sym] = SymbolRecord{Value: &v}
	s.nursery[sym] = struct{}{}
	return sym
}

func (s *SymbolScope) lookupValue(value Value) (Symbol, bool) {
	g := s.lock.LockRead()
	defer g.Unlock()
	sym, ok := s.valueSymbols[value]
	return sym, ok
}

// AddSymbolReference increments symbol's refcount and removes it from the
// nursery (a symbol is recyclable only once something actually holds it).
func (s *SymbolScope) AddSymbolReference(symbol Symbol) error {
	g := s.lock.LockWrite()
	defer g.Unlock()
	s.references[symbol] = s.references[symbol] + 1
	delete(s.nursery, symbol)
	return nil
}

// RemoveSymbolReference decrements symbol's refcount. Fails FatalError if
// the symbol has no references to remove.
func (s *SymbolScope) RemoveSymbolReference(symbol Symbol) error {
	g := s.lock.LockWrite()
	defer g.Unlock()
	count, ok := s.references[symbol]
	if !ok {
		return NewError(FatalError, "symbol has no references")
	}
	if count == 1 {
		delete(s.references, symbol)
	} else {
		s.references[symbol] = count - 1
	}
	return nil
}

// RecycleSymbol removes an unreferenced, non-nursery symbol entirely. Fails
// FatalError if the symbol is still in the nursery, still referenced, or was
// never interned.
func (s *SymbolScope) RecycleSymbol(symbol Symbol) error {
	g := s.lock.LockWrite()
	defer g.Unlock()

	if _, ok := s.nursery[symbol]; ok {
		return NewError(FatalError, "symbol in nursery")
	}
	if _, ok := s.references[symbol]; ok {
		return NewError(FatalError, "symbol referenced by other objects")
	}

	record, ok := s.records[symbol]
	if !ok {
		return NewError(FatalError, "symbol not found")
	}
	if record.Text != nil {
		delete(s.textSymbols, *record.Text)
	} else if record.Value != nil {
		delete(s.valueSymbols, *record.Value)
	}
	delete(s.records, symbol)
	return nil
}
