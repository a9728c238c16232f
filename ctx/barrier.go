package ctx

import "github.com/dragonation/rogiso-go/base"

// Barrier is the collector's write-barrier hook, invoked by Context around
// every reference mutation so the collector can keep tri-color invariants
// while MarkingGrays is active.
type Barrier interface {
	PreremoveValueReference(value base.Value) error
	PostgainValue(value base.Value) error
}
