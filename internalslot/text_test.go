package internalslot

import "testing"

func TestTextSimple(t *testing.T) {
	text := NewText("test")
	if text.String() != "test" {
		t.Fatalf("String() = %q", text.String())
	}
	if text.UTF8Length() != 4 || text.RuneCount() != 4 {
		t.Fatalf("unexpected lengths")
	}
}

func TestTextSlice(t *testing.T) {
	text := NewText("test")
	if got := text.Slice(1, 3).String(); got != "es" {
		t.Fatalf("Slice(1,3) = %q", got)
	}
}

func TestTextConcatenate(t *testing.T) {
	fooBar := Concatenate(NewText("foo"), NewText(" "), NewText("bar"))
	if fooBar.String() != "foo bar" {
		t.Fatalf("got %q", fooBar.String())
	}
	if got := fooBar.Slice(2, 5).String(); got != "o b" {
		t.Fatalf("Slice(2,5) = %q", got)
	}
}

func TestTextRepeat(t *testing.T) {
	if got := Repeat(NewText("a "), 4).String(); got != "a a a a " {
		t.Fatalf("got %q", got)
	}
}

func TestTextEqual(t *testing.T) {
	fooBar := Concatenate(NewText("foo"), NewText(" "), NewText("bar"))
	if !fooBar.Equal(NewText("foo bar")) {
		t.Fatalf("expected equal")
	}
}

func TestTextOrdering(t *testing.T) {
	if NewText("a").Compare(NewText("b")) >= 0 {
		t.Fatalf("expected a < b")
	}
	if NewText("ab").Compare(NewText("a")) <= 0 {
		t.Fatalf("expected ab > a")
	}
}

func TestTextShrink(t *testing.T) {
	abc := Concatenate(NewText("a"), NewText("bc"))
	if abc.String() != "abc" {
		t.Fatalf("got %q", abc.String())
	}
	if len(abc.slices) != 1 {
		t.Fatalf("expected autoshrink to one slice, got %d", len(abc.slices))
	}
}
