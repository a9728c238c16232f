package internalslot

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dragonation/rogiso-go/ctx"
)

// rootCollator orders Text values by Unicode collation rules rather than
// raw byte order, so sorting and comparison behave the way a user
// reading the text would expect across scripts, not just for ASCII.
var rootCollator = collate.New(language.Und)

// autoshrinkLength is the UTF-8 length below which a concatenated Text
// collapses its backing slices into a single string, trading the O(1)
// concatenation of short-lived rope segments for cheaper iteration and
// hashing once a value has stabilized.
const autoshrinkLength = 64

type textSlice struct {
	string   string
	from, to int
}

func (s textSlice) length() int { return s.to - s.from }

func (s textSlice) runes() []rune { return []rune(s.string[s.from:s.to]) }

// Text is the internal slot backing every Text value: an immutable,
// structurally-shared rope of UTF-8 byte ranges over shared backing
// strings, so slicing and concatenation avoid copying until the result is
// small enough to be worth flattening.
type Text struct {
	ctx.DefaultInternalSlot

	slices     []textSlice
	utf8Length int
}

func newTextFromSlices(slices []textSlice) *Text {
	t := &Text{slices: slices}
	t.utf8Length = t.calculateUTF8Length()
	if t.utf8Length < autoshrinkLength {
		t.shrink()
	}
	return t
}

// NewText wraps a plain string as a Text value.
func NewText(s string) *Text {
	if len(s) == 0 {
		return newTextFromSlices(nil)
	}
	return newTextFromSlices([]textSlice{{string: s, from: 0, to: len(s)}})
}

// NewTextFromRunes builds a Text from individual characters.
func NewTextFromRunes(runes []rune) *Text {
	return NewText(string(runes))
}

// Concatenate joins several Text values without copying their backing
// strings, deferring any flattening to the autoshrink threshold.
func Concatenate(parts ...*Text) *Text {
	slices := make([]textSlice, 0, len(parts))
	for _, part := range parts {
		slices = append(slices, part.slices...)
	}
	return newTextFromSlices(slices)
}

// Repeat concatenates pattern with itself count times.
func Repeat(pattern *Text, count int) *Text {
	slices := make([]textSlice, 0, len(pattern.slices)*count)
	for i := 0; i < count; i++ {
		slices = append(slices, pattern.slices...)
	}
	return newTextFromSlices(slices)
}

func (t *Text) calculateUTF8Length() int {
	length := 0
	for _, slice := range t.slices {
		length += slice.length()
	}
	return length
}

func (t *Text) shrink() {
	if len(t.slices) <= 1 {
		return
	}
	s := t.String()
	t.slices = []textSlice{{string: s, from: 0, to: len(s)}}
}

// String flattens the rope into a plain Go string.
func (t *Text) String() string {
	var builder strings.Builder
	builder.Grow(t.utf8Length)
	for _, slice := range t.slices {
		builder.WriteString(slice.string[slice.from:slice.to])
	}
	return builder.String()
}

// Runes flattens the rope into individual characters.
func (t *Text) Runes() []rune {
	runes := make([]rune, 0, t.utf8Length)
	for _, slice := range t.slices {
		runes = append(runes, slice.runes()...)
	}
	return runes
}

func (t *Text) IsEmpty() bool { return t.utf8Length == 0 }

// UTF8Length is the cached byte length across every slice.
func (t *Text) UTF8Length() int { return t.utf8Length }

// RuneCount walks every character; unlike UTF8Length it is not cached.
func (t *Text) RuneCount() int { return len(t.Runes()) }

func (t *Text) RuneAt(index int) (rune, bool) {
	runes := t.Runes()
	if index < 0 || index >= len(runes) {
		return 0, false
	}
	return runes[index], true
}

// Slice returns the sub-text between the utf8From/utf8To byte offsets of
// the flattened rope, sharing backing storage with the original slices it
// overlaps rather than copying them outright.
func (t *Text) Slice(utf8From, utf8To int) *Text {
	newSlices := make([]textSlice, 0, len(t.slices))
	index := 0
	for _, slice := range t.slices {
		sliceEnd := index + slice.length()
		if index < utf8To {
			if index >= utf8From {
				if sliceEnd > utf8To {
					newSlices = append(newSlices, textSlice{string: slice.string, from: slice.from, to: slice.from + (utf8To - index)})
				} else {
					newSlices = append(newSlices, textSlice{string: slice.string, from: slice.from, to: slice.to})
				}
			} else if sliceEnd > utf8From {
				if sliceEnd > utf8To {
					newSlices = append(newSlices, textSlice{string: slice.string, from: slice.from + (utf8From - index), to: slice.from + (utf8To - index)})
				} else {
					newSlices = append(newSlices, textSlice{string: slice.string, from: slice.from + (utf8From - index), to: slice.to})
				}
			}
		}
		index = sliceEnd
		if index >= utf8To {
			break
		}
	}
	return newTextFromSlices(newSlices)
}

func (t *Text) Equal(other *Text) bool { return t.String() == other.String() }

// Compare orders t against other by Unicode collation, falling back to
// byte comparison only to break ties the collator considers equal (so
// texts differing solely in case or accents, which collate as equal,
// still sort deterministically).
func (t *Text) Compare(other *Text) int {
	a, b := t.String(), other.String()
	if c := rootCollator.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
