package base

import "math"

// Value is a NaN-boxed 64-bit tagged union. Exactly one of Undefined, Null,
// Boolean, Integer, Float, Symbol, Text, List, Tuple, Object is represented.
//
// Encoding: if the bit pattern is not a quiet-NaN, the value is a Float.
// Otherwise the high 16 bits select a tag; everything below is PrimitiveType.
type Value struct {
	bits uint64
}

// PrimitiveType names the tag a Value decodes to.
type PrimitiveType int

const (
	Undefined PrimitiveType = iota
	Null
	Boolean
	Integer
	Float
	SymbolTag
	Text
	List
	Tuple
	Object
)

func (t PrimitiveType) String() string {
	switch t {
	case Undefined:
		return "Undefined"
	case Null:
		return "Null"
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case SymbolTag:
		return "Symbol"
	case Text:
		return "Text"
	case List:
		return "List"
	case Tuple:
		return "Tuple"
	case Object:
		return "Object"
	default:
		return "PrimitiveType(?)"
	}
}

const (
	nanPrefix          uint64 = 0x7ff8
	nilOrBooleanPrefix        = nanPrefix | 0b001
	integerPrefix             = nanPrefix | 0b010
	textPrefix                = nanPrefix | 0b011
	symbolPrefix              = nanPrefix | 0b100
	tuplePrefix               = nanPrefix | 0b101
	listPrefix                = nanPrefix | 0b110
	objectPrefix              = nanPrefix | 0b111

	undefinedSuffix uint64 = 0x0
	nullSuffix      uint64 = 0x1
	noSuffix        uint64 = 0x2
	yesSuffix       uint64 = 0x3
)

func fromBits(bits uint64) Value { return Value{bits: bits} }

func (v Value) data() uint64 { return v.bits }

func (v Value) prefix() uint64 { return v.data() >> 48 }

// PrimitiveType decodes the tag. It never fails.
func (v Value) PrimitiveType() PrimitiveType {
	if !math.IsNaN(math.Float64frombits(v.bits)) {
		return Float
	}
	switch v.prefix() {
	case nanPrefix:
		return Float
	case nilOrBooleanPrefix:
		switch v.data() & 0xff {
		case undefinedSuffix:
			return Undefined
		case nullSuffix:
			return Null
		case noSuffix, yesSuffix:
			return Boolean
		}
	case integerPrefix:
		return Integer
	case textPrefix:
		return Text
	case symbolPrefix:
		return SymbolTag
	case listPrefix:
		return List
	case tuplePrefix:
		return Tuple
	case objectPrefix:
		return Object
	}
	return Float
}

// Constructors.

func MakeUndefined() Value { return fromBits(nilOrBooleanPrefix<<48 | undefinedSuffix) }

func MakeNull() Value { return fromBits(nilOrBooleanPrefix<<48 | nullSuffix) }

func MakeBoolean(b bool) Value {
	if b {
		return fromBits(nilOrBooleanPrefix<<48 | yesSuffix)
	}
	return fromBits(nilOrBooleanPrefix<<48 | noSuffix)
}

// MakeSymbol boxes an interned symbol id.
func MakeSymbol(id uint32) Value {
	return fromBits(symbolPrefix<<48 | uint64(id))
}

// MakeCardinal boxes an unsigned 32-bit integer (the "is-signed" bit, bit 32
// of the payload, is left clear).
func MakeCardinal(value uint32) Value {
	return fromBits(integerPrefix<<48 | uint64(value))
}

// MakeInteger boxes a signed 32-bit integer, setting the independent
// "is-signed" marker (bit 32 of the payload) whenever the value is negative.
// This bit is distinct from the sign bit (bit 31) carried within the 32-bit
// payload itself; both bits must round-trip for signed and cardinal values
// to be told apart (spec §3/§4.1, open question 4).
func MakeInteger(value int32) Value {
	uvalue := uint64(uint32(value))
	if value < 0 {
		uvalue |= 1 << 32
	}
	return fromBits(integerPrefix<<48 | uvalue)
}

// MakeFloat boxes a float64, canonicalizing every NaN bit pattern to the
// single reserved Float-NaN encoding so no user NaN collides with a tag.
func MakeFloat(value float64) Value {
	if math.IsNaN(value) {
		return fromBits(nanPrefix << 48)
	}
	return Value{bits: math.Float64bits(value)}
}

func makeSlotted(prefix uint64, region uint32, slot uint16) Value {
	d := prefix << 48
	d |= uint64(region) << 16
	d |= uint64(slot)
	return fromBits(d)
}

func MakeList(region uint32, slot uint16) Value   { return makeSlotted(listPrefix, region, slot) }
func MakeTuple(region uint32, slot uint16) Value  { return makeSlotted(tuplePrefix, region, slot) }
func MakeText(region uint32, slot uint16) Value   { return makeSlotted(textPrefix, region, slot) }
func MakeObject(region uint32, slot uint16) Value { return makeSlotted(objectPrefix, region, slot) }

// Bits exposes the raw 64-bit representation, e.g. for hashing or use as a
// map key alongside Value's own Comparable equality.
func (v Value) Bits() uint64 { return v.bits }

// Classification predicates.

func (v Value) IsUndefined() bool { return v.PrimitiveType() == Undefined }
func (v Value) IsNull() bool      { return v.PrimitiveType() == Null }
func (v Value) IsNil() bool       { return v.IsUndefined() || v.IsNull() }
func (v Value) IsBoolean() bool   { return v.PrimitiveType() == Boolean }
func (v Value) IsFloat() bool     { return v.PrimitiveType() == Float }
func (v Value) IsSymbol() bool    { return v.PrimitiveType() == SymbolTag }
func (v Value) IsText() bool      { return v.PrimitiveType() == Text }
func (v Value) IsTuple() bool     { return v.PrimitiveType() == Tuple }
func (v Value) IsObject() bool    { return v.PrimitiveType() == Object }
func (v Value) IsInteger() bool   { return v.PrimitiveType() == Integer }

// IsList reports true only for the List tag. The distilled source this was
// ported from also reports true for Boolean; that is a defect, fixed here.
func (v Value) IsList() bool { return v.PrimitiveType() == List }

func (v Value) IsNumber() bool {
	switch v.PrimitiveType() {
	case Integer, Float:
		return true
	}
	return false
}

func (v Value) IsSlotted() bool {
	switch v.PrimitiveType() {
	case Text, List, Tuple, Object:
		return true
	}
	return false
}

func (v Value) IsNaN() bool {
	switch v.PrimitiveType() {
	case Integer:
		return false
	case Float:
		return math.IsNaN(math.Float64frombits(v.bits))
	default:
		return true
	}
}

func (v Value) IsCardinal() bool {
	if v.PrimitiveType() != Integer {
		return false
	}
	d := v.data()
	return (d>>32)&0b1 == 0
}

// Extraction, following the coercion table in spec §4.1; each Get* variant
// fails strictly on tag or range mismatch, each Extract* variant falls back
// to a caller-supplied default instead of failing.

func (v Value) GetBooleanData() (bool, error) {
	if v.PrimitiveType() != Boolean {
		return false, NewError(TypeNotMatch, "not a boolean value")
	}
	return v.data()&0xff == yesSuffix, nil
}

func (v Value) GetIntegerData() (int32, error) {
	if v.PrimitiveType() != Integer {
		return 0, NewError(TypeNotMatch, "not an integer value")
	}
	d := v.data()
	value := int32(uint32(d & 0xffff_ffff))
	if (d>>32)&0b1 == 1 || value >= 0 {
		return value, nil
	}
	return 0, NewError(IntegerOutOfRange, "integer out of range")
}

func (v Value) GetCardinalData() (uint32, error) {
	if v.PrimitiveType() != Integer {
		return 0, NewError(TypeNotMatch, "not a cardinal value")
	}
	d := v.data()
	if (d>>32)&0b1 == 0 {
		return uint32(d & 0xffff_ffff), nil
	}
	return 0, NewError(IntegerOutOfRange, "cardinal out of range")
}

func (v Value) GetFloatData() (float64, error) {
	if v.PrimitiveType() != Float {
		return 0, NewError(TypeNotMatch, "not a float value")
	}
	return math.Float64frombits(v.bits), nil
}

func (v Value) GetSymbolID() (uint32, error) {
	if v.PrimitiveType() != SymbolTag {
		return 0, NewError(TypeNotMatch, "not a symbol value")
	}
	return uint32(v.data() & 0xffff_ffff), nil
}

func (v Value) GetRegionID() (uint32, error) {
	if !v.IsSlotted() {
		return 0, NewError(TypeNotMatch, "not a slotted value")
	}
	return uint32((v.data() >> 16) & 0xffff_ffff), nil
}

func (v Value) GetRegionSlot() (uint16, error) {
	if !v.IsSlotted() {
		return 0, NewError(TypeNotMatch, "not a slotted value")
	}
	return uint16(v.data() & 0xffff), nil
}

func (v Value) ExtractInteger(def int32) int32 {
	switch v.PrimitiveType() {
	case Boolean:
		if v.data()&0xff == yesSuffix {
			return 1
		}
		return 0
	case Integer:
		if n, err := v.GetIntegerData(); err == nil {
			return n
		}
		return def
	case Float:
		f := math.Float64frombits(v.bits)
		if f >= math.MinInt32 && f <= math.MaxInt32 {
			return int32(f)
		}
		return def
	default:
		return def
	}
}

// ExtractCardinal extracts a non-negative integer, following the coercion
// table in spec §4.1: cardinal integers pass through, signed-negative
// integers fall back to def, and floats in [0, 0xffffffff] truncate.
func (v Value) ExtractCardinal(def uint32) uint32 {
	switch v.PrimitiveType() {
	case Boolean:
		if v.data()&0xff == yesSuffix {
			return 1
		}
		return 0
	case Integer:
		if n, err := v.GetCardinalData(); err == nil {
			return n
		}
		return def
	case Float:
		f := math.Float64frombits(v.bits)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > float64(math.MaxUint32) {
			return def
		}
		return uint32(f)
	default:
		return def
	}
}

// ExtractSymbol extracts a symbol id, falling back to def instead of
// failing. The infallible counterpart to GetSymbolID, for the round-trip
// law extract_symbol(make_symbol(s)) == s.
func (v Value) ExtractSymbol(def uint32) uint32 {
	if id, err := v.GetSymbolID(); err == nil {
		return id
	}
	return def
}

// NumberEq compares two values as numbers after float conversion, so +0 and
// -0 compare equal even though they differ structurally.
func (v Value) NumberEq(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		return v.ExtractFloat(0) == other.ExtractFloat(0)
	}
	return false
}

func (v Value) ExtractFloat(def float64) float64 {
	switch v.PrimitiveType() {
	case Boolean:
		if v.data()&0xff == yesSuffix {
			return 1
		}
		return 0
	case Integer:
		if n, err := v.GetIntegerData(); err == nil {
			return float64(n)
		}
		if n, err := v.GetCardinalData(); err == nil {
			return float64(n)
		}
		return def
	case Float:
		return math.Float64frombits(v.bits)
	default:
		return def
	}
}
