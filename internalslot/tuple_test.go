package internalslot

import (
	"testing"

	"github.com/dragonation/rogiso-go/base"
)

func TestTupleReferencedValues(t *testing.T) {
	tuple := NewTuple(base.MakeNull(), 0, []base.Value{base.MakeCardinal(23), base.MakeCardinal(34)})
	values := tuple.ListReferencedValues()
	if len(values) != 2 || values[0] != base.MakeCardinal(23) || values[1] != base.MakeCardinal(34) {
		t.Fatalf("unexpected referenced values: %v", values)
	}
}

func TestTupleRefreshReference(t *testing.T) {
	tuple := NewTuple(base.MakeNull(), 0, []base.Value{base.MakeCardinal(23), base.MakeCardinal(34)})
	tuple.RefreshReferencedValue(base.MakeCardinal(34), base.MakeFloat(3.14))
	if tuple.Length() != 2 || tuple.GetElement(1) != base.MakeFloat(3.14) {
		t.Fatalf("refresh did not apply")
	}
}

func TestTupleGetElement(t *testing.T) {
	tuple := NewTuple(base.MakeNull(), 0, []base.Value{base.MakeCardinal(23), base.MakeCardinal(34)})
	if tuple.GetElement(0) != base.MakeCardinal(23) || tuple.GetElement(1) != base.MakeCardinal(34) {
		t.Fatalf("unexpected elements")
	}
	if tuple.GetElement(2) != base.MakeUndefined() {
		t.Fatalf("expected undefined past bounds")
	}
}
