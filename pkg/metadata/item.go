package metadata

import (
	"fmt"
	"math"
)

// Type identifies the value type of a metadata item.
type Type uint32

const (
	TypeByte Type = iota
	TypeInt32
	TypeUInt32
	TypeFloat
	TypeInt64
	TypeDouble
	TypeRational
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeInt32:
		return "int32"
	case TypeUInt32:
		return "uint32"
	case TypeFloat:
		return "float"
	case TypeInt64:
		return "int64"
	case TypeDouble:
		return "double"
	case TypeRational:
		return "rational"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// ParseType returns the Type named by s ("byte", "int32", ...).
func ParseType(s string) (Type, bool) {
	for t := TypeByte; t <= TypeRational; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// IsValid returns true for the seven known types.
func (t Type) IsValid() bool {
	return t <= TypeRational
}

// elemSize returns the encoded size in bytes of one element.
func (t Type) elemSize() int {
	switch t {
	case TypeByte:
		return 1
	case TypeInt32, TypeUInt32, TypeFloat:
		return 4
	case TypeInt64, TypeDouble, TypeRational:
		return 8
	default:
		return 0
	}
}

// Rational is a numerator/denominator pair.
type Rational struct {
	Numerator   int32
	Denominator int32
}

// Float64 returns the rational as a float. A zero denominator yields 0.
func (r Rational) Float64() float64 {
	if r.Denominator == 0 {
		return 0
	}
	return float64(r.Numerator) / float64(r.Denominator)
}

// String returns "n/d".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

// Item is one tagged, typed metadata entry.
//
// Data holds an owned slice whose element type matches Type:
// []uint8, []int32, []uint32, []float32, []int64, []float64 or []Rational.
// Count must equal len(Data); the constructors guarantee this.
type Item struct {
	Tag   uint32
	Type  Type
	Count uint32
	Data  any
}

// NewByteItem creates a Byte item holding a copy of values.
func NewByteItem(tag uint32, values ...uint8) Item {
	return Item{Tag: tag, Type: TypeByte, Count: uint32(len(values)), Data: append(make([]uint8, 0, len(values)), values...)}
}

// NewInt32Item creates an Int32 item holding a copy of values.
func NewInt32Item(tag uint32, values ...int32) Item {
	return Item{Tag: tag, Type: TypeInt32, Count: uint32(len(values)), Data: append(make([]int32, 0, len(values)), values...)}
}

// NewUInt32Item creates a UInt32 item holding a copy of values.
func NewUInt32Item(tag uint32, values ...uint32) Item {
	return Item{Tag: tag, Type: TypeUInt32, Count: uint32(len(values)), Data: append(make([]uint32, 0, len(values)), values...)}
}

// NewFloatItem creates a Float item holding a copy of values.
func NewFloatItem(tag uint32, values ...float32) Item {
	return Item{Tag: tag, Type: TypeFloat, Count: uint32(len(values)), Data: append(make([]float32, 0, len(values)), values...)}
}

// NewInt64Item creates an Int64 item holding a copy of values.
func NewInt64Item(tag uint32, values ...int64) Item {
	return Item{Tag: tag, Type: TypeInt64, Count: uint32(len(values)), Data: append(make([]int64, 0, len(values)), values...)}
}

// NewDoubleItem creates a Double item holding a copy of values.
func NewDoubleItem(tag uint32, values ...float64) Item {
	return Item{Tag: tag, Type: TypeDouble, Count: uint32(len(values)), Data: append(make([]float64, 0, len(values)), values...)}
}

// NewRationalItem creates a Rational item holding a copy of values.
func NewRationalItem(tag uint32, values ...Rational) Item {
	return Item{Tag: tag, Type: TypeRational, Count: uint32(len(values)), Data: append(make([]Rational, 0, len(values)), values...)}
}

// Validate checks that Data matches Type and that Count matches the number of values.
func (it Item) Validate() error {
	n, ok := dataLen(it.Type, it.Data)
	if !ok {
		return fmt.Errorf("tag %#x: data %T does not match type %s", it.Tag, it.Data, it.Type)
	}
	if uint32(n) != it.Count {
		return fmt.Errorf("tag %#x: count %d does not match %d values", it.Tag, it.Count, n)
	}
	return nil
}

// dataLen returns the number of values in data if its element type matches t.
func dataLen(t Type, data any) (int, bool) {
	switch t {
	case TypeByte:
		v, ok := data.([]uint8)
		return len(v), ok
	case TypeInt32:
		v, ok := data.([]int32)
		return len(v), ok
	case TypeUInt32:
		v, ok := data.([]uint32)
		return len(v), ok
	case TypeFloat:
		v, ok := data.([]float32)
		return len(v), ok
	case TypeInt64:
		v, ok := data.([]int64)
		return len(v), ok
	case TypeDouble:
		v, ok := data.([]float64)
		return len(v), ok
	case TypeRational:
		v, ok := data.([]Rational)
		return len(v), ok
	default:
		return 0, false
	}
}

// Bytes returns the values of a Byte item.
func (it Item) Bytes() ([]uint8, bool) {
	v, ok := it.Data.([]uint8)
	return v, ok && it.Type == TypeByte
}

// Int32s returns the values of an Int32 item.
func (it Item) Int32s() ([]int32, bool) {
	v, ok := it.Data.([]int32)
	return v, ok && it.Type == TypeInt32
}

// UInt32s returns the values of a UInt32 item.
func (it Item) UInt32s() ([]uint32, bool) {
	v, ok := it.Data.([]uint32)
	return v, ok && it.Type == TypeUInt32
}

// Floats returns the values of a Float item.
func (it Item) Floats() ([]float32, bool) {
	v, ok := it.Data.([]float32)
	return v, ok && it.Type == TypeFloat
}

// Int64s returns the values of an Int64 item.
func (it Item) Int64s() ([]int64, bool) {
	v, ok := it.Data.([]int64)
	return v, ok && it.Type == TypeInt64
}

// Doubles returns the values of a Double item.
func (it Item) Doubles() ([]float64, bool) {
	v, ok := it.Data.([]float64)
	return v, ok && it.Type == TypeDouble
}

// Rationals returns the values of a Rational item.
func (it Item) Rationals() ([]Rational, bool) {
	v, ok := it.Data.([]Rational)
	return v, ok && it.Type == TypeRational
}

// dataSize returns the encoded payload size in bytes.
func (it Item) dataSize() int {
	return int(it.Count) * it.Type.elemSize()
}

// clone returns a deep copy of the item.
func (it Item) clone() Item {
	out := it
	switch v := it.Data.(type) {
	case []uint8:
		out.Data = append([]uint8(nil), v...)
	case []int32:
		out.Data = append([]int32(nil), v...)
	case []uint32:
		out.Data = append([]uint32(nil), v...)
	case []float32:
		out.Data = append([]float32(nil), v...)
	case []int64:
		out.Data = append([]int64(nil), v...)
	case []float64:
		out.Data = append([]float64(nil), v...)
	case []Rational:
		out.Data = append([]Rational(nil), v...)
	}
	if out.Data != nil {
		normalizeEmpty(&out)
	}
	return out
}

// normalizeEmpty replaces a nil slice produced by append on an empty source
// with an empty non-nil slice so that clones compare equal to constructors.
func normalizeEmpty(it *Item) {
	switch v := it.Data.(type) {
	case []uint8:
		if v == nil {
			it.Data = []uint8{}
		}
	case []int32:
		if v == nil {
			it.Data = []int32{}
		}
	case []uint32:
		if v == nil {
			it.Data = []uint32{}
		}
	case []float32:
		if v == nil {
			it.Data = []float32{}
		}
	case []int64:
		if v == nil {
			it.Data = []int64{}
		}
	case []float64:
		if v == nil {
			it.Data = []float64{}
		}
	case []Rational:
		if v == nil {
			it.Data = []Rational{}
		}
	}
}

// Equal reports whether two items have the same tag, type, count and values.
// Float values are compared bitwise so that NaN payloads survive round trips.
func (it Item) Equal(other Item) bool {
	if it.Tag != other.Tag || it.Type != other.Type || it.Count != other.Count {
		return false
	}
	switch a := it.Data.(type) {
	case []uint8:
		b, ok := other.Data.([]uint8)
		return ok && equalSlices(a, b)
	case []int32:
		b, ok := other.Data.([]int32)
		return ok && equalSlices(a, b)
	case []uint32:
		b, ok := other.Data.([]uint32)
		return ok && equalSlices(a, b)
	case []int64:
		b, ok := other.Data.([]int64)
		return ok && equalSlices(a, b)
	case []Rational:
		b, ok := other.Data.([]Rational)
		return ok && equalSlices(a, b)
	case []float32:
		b, ok := other.Data.([]float32)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
				return false
			}
		}
		return true
	case []float64:
		b, ok := other.Data.([]float64)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
