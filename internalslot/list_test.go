package internalslot

import (
	"testing"

	"github.com/dragonation/rogiso-go/base"
)

func TestListReferencedValues(t *testing.T) {
	list := NewList(base.MakeNull(), []base.Value{base.MakeCardinal(23), base.MakeCardinal(34)})
	values := list.ListReferencedValues()
	if len(values) != 2 || values[0] != base.MakeCardinal(23) || values[1] != base.MakeCardinal(34) {
		t.Fatalf("unexpected referenced values: %v", values)
	}
}

func TestListRefreshReference(t *testing.T) {
	list := NewList(base.MakeNull(), []base.Value{base.MakeCardinal(23), base.MakeCardinal(34)})
	list.RefreshReferencedValue(base.MakeCardinal(34), base.MakeFloat(3.14))
	if list.GetElement(1) != base.MakeFloat(3.14) {
		t.Fatalf("refresh did not apply")
	}
}

func TestListElements(t *testing.T) {
	list := NewList(base.MakeNull(), []base.Value{base.MakeCardinal(23), base.MakeCardinal(34)})

	if list.GetElement(2) != base.MakeUndefined() {
		t.Fatalf("expected undefined past bounds")
	}

	removed, added := list.SetElement(0, base.MakeFloat(3.14))
	if list.GetElement(0) != base.MakeFloat(3.14) {
		t.Fatalf("set did not apply")
	}
	if len(removed) != 1 || removed[0] != base.MakeCardinal(23) {
		t.Fatalf("unexpected removed: %v", removed)
	}
	if len(added) != 1 || added[0] != base.MakeFloat(3.14) {
		t.Fatalf("unexpected added: %v", added)
	}

	removed, added = list.SetElement(4, base.MakeFloat(6.14))
	if list.GetElement(4) != base.MakeFloat(6.14) {
		t.Fatalf("set past length did not apply")
	}
	if removed[0] != base.MakeUndefined() || added[0] != base.MakeFloat(6.14) {
		t.Fatalf("unexpected grow bookkeeping")
	}
	if list.GetElement(3) != base.MakeUndefined() {
		t.Fatalf("expected padding gap to be undefined")
	}
}
