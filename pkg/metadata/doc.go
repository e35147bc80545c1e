// Package metadata implements the camera property-set model and its wire codec.
//
// A Store is a bag of typed items keyed by a 32-bit tag. It is used both for
// device capabilities (read-only snapshots reported by the service) and for
// pending control settings built up inside a locked transaction.
//
// # Item types
//
// Each item carries one of seven value types:
//
//	Byte      []uint8
//	Int32     []int32
//	UInt32    []uint32
//	Float     []float32
//	Int64     []int64
//	Double    []float64
//	Rational  []Rational (numerator/denominator int32 pairs)
//
// # Wire format
//
// Encode writes little-endian fields with no padding:
//
//	item_count    u32
//	item_capacity u32   (omitted when item_count is 0)
//	data_capacity u32   (omitted when item_count is 0)
//	repeated item_count times:
//	  index u32, tag u32, type u32, count u32, payload
//
// The payload holds count values of the item type; a Rational contributes two
// int32 values (numerator, denominator) per element. Tags are opaque to the
// codec.
package metadata
