package ctx

import "github.com/dragonation/rogiso-go/base"

// SlotTrapOutcome tags the three ways a SlotTrap hook can resolve.
type SlotTrapOutcome int

const (
	Skipped SlotTrapOutcome = iota
	Trapped
	Thrown
)

// SlotTrapResult is the outcome of one SlotTrap hook call. A Skipped result
// carries no value and tells the caller to fall through to the isolate's
// default handling.
type SlotTrapResult struct {
	Outcome SlotTrapOutcome
	Value   base.Value
}

func SkippedResult() SlotTrapResult { return SlotTrapResult{Outcome: Skipped} }

func TrappedResult(value base.Value) SlotTrapResult {
	return SlotTrapResult{Outcome: Trapped, Value: value}
}

func ThrownResult(value base.Value) SlotTrapResult {
	return SlotTrapResult{Outcome: Thrown, Value: value}
}

// SlotTrap intercepts the whole-slot operations (prototype access, own
// property dispatch, drop notification) ahead of the isolate's default
// handling. Every hook defaults to Skipped so implementations only need to
// override what they actually intercept; embed DefaultSlotTrap to get the
// defaults for free.
type SlotTrap interface {
	GetPrototype(trapInfo TrapInfo, context Context) (SlotTrapResult, error)
	SetPrototype(trapInfo TrapInfo, context Context) (SlotTrapResult, error)
	HasOwnProperty(trapInfo TrapInfo, context Context) (SlotTrapResult, error)
	GetOwnProperty(trapInfo TrapInfo, context Context) (SlotTrapResult, error)
	SetOwnProperty(trapInfo TrapInfo, context Context) (SlotTrapResult, error)
	DefineOwnProperty(trapInfo TrapInfo, context Context) (SlotTrapResult, error)
	DeleteOwnProperty(trapInfo TrapInfo, context Context) (SlotTrapResult, error)
	ListOwnPropertySymbols(trapInfo TrapInfo, context Context) (SlotTrapResult, error)

	NotifyDrop() (SlotTrapResult, error)

	ListInternalReferencedSymbols() []base.Symbol
	ListInternalReferencedValues() []base.Value
	ListAndAutorefreshInternalReferencedValues(selfID base.Value, context Context) ([]base.Value, error)
	RefreshReferencedValue(oldValue, newValue base.Value)
}

// DefaultSlotTrap implements every SlotTrap hook as a no-op/Skipped default,
// so a concrete trap can embed it and override only the hooks it needs.
type DefaultSlotTrap struct{}

func (DefaultSlotTrap) GetPrototype(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) SetPrototype(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) HasOwnProperty(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) GetOwnProperty(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) SetOwnProperty(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) DefineOwnProperty(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) DeleteOwnProperty(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) ListOwnPropertySymbols(TrapInfo, Context) (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) NotifyDrop() (SlotTrapResult, error) {
	return SkippedResult(), nil
}

func (DefaultSlotTrap) ListInternalReferencedSymbols() []base.Symbol { return nil }

func (DefaultSlotTrap) ListInternalReferencedValues() []base.Value { return nil }

func (DefaultSlotTrap) ListAndAutorefreshInternalReferencedValues(base.Value, Context) ([]base.Value, error) {
	return nil, nil
}

func (DefaultSlotTrap) RefreshReferencedValue(base.Value, base.Value) {}

// ProtectedSlotTrap pins a SlotTrap against concurrent recycling for the
// duration of one call. Unlike the source's Drop-based RAII guard, the
// caller must explicitly defer Close.
type ProtectedSlotTrap struct {
	context     Context
	trap        SlotTrap
	protectedID uint64
}

func NewProtectedSlotTrap(trap SlotTrap, context Context) (*ProtectedSlotTrap, error) {
	protectedID, protectedTrap, err := context.ProtectSlotTrap(trap)
	if err != nil {
		return nil, err
	}
	return &ProtectedSlotTrap{context: context, trap: protectedTrap, protectedID: protectedID}, nil
}

func (p *ProtectedSlotTrap) Trap() SlotTrap { return p.trap }

func (p *ProtectedSlotTrap) Close() error {
	return p.context.UnprotectSlotTrap(p.protectedID)
}
