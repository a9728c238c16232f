package ctx

import (
	"github.com/dragonation/rogiso-go/base"
	"github.com/dragonation/rogiso-go/fieldshortcuts"
	"github.com/dragonation/rogiso-go/root"
	"github.com/dragonation/rogiso-go/util"
)

// SymbolInfo resolves a Symbol back to the scope and text/value it was
// interned from.
type SymbolInfo struct {
	Scope  string
	Record base.SymbolRecord
}

// Context is the capability surface every isolate operation is threaded
// through: slot layout access, reference bookkeeping, property and
// internal-slot dispatch, symbol interning, and root management. The
// isolate implements Context directly; a second, narrower implementation
// used only during collection implements just the reference-counting
// methods and panics on everything else (see the collector package).
//
// Every accessor that can observe a value moved by slot refragmentation
// returns base.Value rather than a storage.Pinned: Context cannot depend on
// the storage package (storage depends on Context to resolve and pin
// values), so pinning happens one layer up, in storage, around these calls.
type Context interface {
	// IsolateID identifies the owning isolate so storage handles that must
	// outlive any single call (Persistent, Weak) can check they are being
	// redeemed against the isolate they were created in, without holding a
	// reference to a concrete isolate type (storage cannot import the
	// isolate package that implements Context without a cycle).
	IsolateID() string

	SlotLayoutToken() *util.ReentrantToken

	ProtectPropertyTrap(trap PropertyTrap) (uint64, PropertyTrap, error)
	UnprotectPropertyTrap(protectedID uint64) error

	ProtectSlotTrap(trap SlotTrap) (uint64, SlotTrap, error)
	UnprotectSlotTrap(protectedID uint64) error

	ProtectInternalSlot(slot InternalSlot) (uint64, InternalSlot, error)
	UnprotectInternalSlot(protectedID uint64) error

	// ResolveRealValue follows redirections left behind by slot
	// refragmentation until it reaches the value's current location.
	ResolveRealValue(value base.Value) (base.Value, error)

	AddValueReference(from, to base.Value) error
	RemoveValueReference(from, to base.Value) error

	AddSymbolReference(symbol base.Symbol) error
	RemoveSymbolReference(symbol base.Symbol) error

	CreateTrapInfo(subject base.Value, parameters []base.Value) TrapInfo

	// GainSlot allocates a new slot of primitiveType with prototype preset.
	GainSlot(primitiveType base.PrimitiveType, prototype base.Value) (base.Value, error)

	GetTextSymbol(scope, text string) base.Symbol
	GetValueSymbol(scope string, value base.Value) base.Symbol
	ResolveSymbolInfo(symbol base.Symbol) (SymbolInfo, error)

	GetPrototype(value base.Value) (base.Value, error)
	SetPrototype(value, prototype base.Value) error

	SetSlotTrap(value base.Value, trap SlotTrap) error

	HasOwnProperty(subject base.Value, symbol base.Symbol) (bool, error)
	GetOwnProperty(subject base.Value, symbol base.Symbol, fieldToken *fieldshortcuts.FieldToken) (base.Value, error)
	DeleteOwnProperty(subject base.Value, symbol base.Symbol) error
	SetOwnProperty(subject base.Value, symbol base.Symbol, value base.Value) error
	DefineOwnProperty(subject base.Value, symbol base.Symbol, trap PropertyTrap) error
	ListOwnPropertySymbols(subject base.Value) (map[base.Symbol]struct{}, error)

	GetOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol) (base.Value, error)
	SetOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol, value base.Value) error
	DeleteOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol) error
	DefineOwnPropertyIgnoreSlotTrap(subject base.Value, symbol base.Symbol, trap PropertyTrap) error
	ListOwnPropertySymbolsIgnoreSlotTrap(subject base.Value) (map[base.Symbol]struct{}, error)

	GetInternalSlot(subject base.Value, index uint64) (*ProtectedInternalSlot, error)
	SetInternalSlot(subject base.Value, index uint64, slot InternalSlot) error
	ClearInternalSlot(subject base.Value, index uint64) error

	ListPropertySymbols(subject base.Value) (map[base.Symbol]struct{}, error)
	HasProperty(subject base.Value, symbol base.Symbol) (bool, error)
	GetProperty(subject base.Value, symbol base.Symbol, fieldToken *fieldshortcuts.FieldToken) (base.Value, error)

	MakeText(text string) (base.Value, error)
	MakeList(elements []base.Value) (base.Value, error)
	MakeTuple(prototype base.Value, id uint32, elements []base.Value) (base.Value, error)

	ExtractText(value base.Value) (string, error)
	ExtractList(value base.Value) ([]base.Value, error)

	MakePropertyTrapValue(trap PropertyTrap) (base.Value, error)
	ExtractPropertyTrap(value base.Value) (PropertyTrap, error)

	AddRoot(value base.Value) (*root.Root, error)
	RemoveRoot(r *root.Root) error

	AddWeakRoot(value base.Value, listener root.DropListener) (*root.WeakRoot, error)
	RemoveWeakRoot(r *root.WeakRoot) error

	NotifySlotDrop(value base.Value) error
}
