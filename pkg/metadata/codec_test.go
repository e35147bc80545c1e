package metadata

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/camkit-project/camkit-go/pkg/camerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStore(t *testing.T, items ...Item) *Store {
	t.Helper()
	s, err := NewStoreFromItems(items...)
	require.NoError(t, err)
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{"byte", []Item{NewByteItem(7, 1, 2, 3)}},
		{"int32", []Item{NewInt32Item(TagZoomRatioRange, 100, 300)}},
		{"uint32", []Item{NewUInt32Item(0x10, 0, math.MaxUint32)}},
		{"float", []Item{NewFloatItem(TagFocusPoint, 0.25, 0.75)}},
		{"int64", []Item{NewInt64Item(TagSensorTimestamp, math.MinInt64, 42)}},
		{"double", []Item{NewDoubleItem(TagJPEGGPSLocation, 48.1, 11.5, 520.0)}},
		{"rational", []Item{NewRationalItem(TagExposureBiasStep, Rational{1, 3}, Rational{-2, 7})}},
		{"zero count", []Item{NewInt32Item(0x20)}},
		{"mixed", []Item{
			NewByteItem(TagFlashModes, 0, 1, 2, 3),
			NewInt32Item(TagStreamConfigurations, 0, 1, 1920, 1080, 1, 2, 4000, 3000),
			NewFloatItem(TagZoomRatio, 2.5),
			NewRationalItem(TagFocalLength, Rational{47, 10}),
			NewInt64Item(TagSensorTimestamp, 123456789),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := mustStore(t, tt.items...)

			data, err := Encode(in)
			require.NoError(t, err)

			out, err := Decode(data)
			require.NoError(t, err)

			assert.True(t, in.Equal(out), "decoded store differs")
			for _, want := range tt.items {
				got, ok := out.Get(want.Tag)
				require.True(t, ok, "missing tag %#x", want.Tag)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestEncodeByteItemScenario(t *testing.T) {
	in := mustStore(t, NewByteItem(7, 1, 2, 3))

	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)

	it, ok := out.Get(7)
	require.True(t, ok)
	assert.Equal(t, TypeByte, it.Type)
	assert.Equal(t, uint32(3), it.Count)
	v, ok := it.Bytes()
	require.True(t, ok)
	assert.Equal(t, []uint8{1, 2, 3}, v)
}

func TestEncodeLayout(t *testing.T) {
	in := mustStore(t, NewRationalItem(99, Rational{1, 2}, Rational{-3, 4}))

	data, err := Encode(in)
	require.NoError(t, err)

	// header (3 x u32) + item header (4 x u32) + 4 x i32 payload
	require.Len(t, data, 12+16+16)

	le := binary.LittleEndian
	assert.Equal(t, uint32(1), le.Uint32(data[0:]), "item_count")
	assert.Equal(t, uint32(0), le.Uint32(data[12:]), "index")
	assert.Equal(t, uint32(99), le.Uint32(data[16:]), "tag")
	assert.Equal(t, uint32(TypeRational), le.Uint32(data[20:]), "type")
	assert.Equal(t, uint32(2), le.Uint32(data[24:]), "count")

	payload := []int32{
		int32(le.Uint32(data[28:])),
		int32(le.Uint32(data[32:])),
		int32(le.Uint32(data[36:])),
		int32(le.Uint32(data[40:])),
	}
	assert.Equal(t, []int32{1, 2, -3, 4}, payload)
}

func TestEncodeEmptyStore(t *testing.T) {
	data, err := Encode(NewStore(8, 64))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, data)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestEncodeNilStore(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrNilStore)
}

func TestEncodeCountMismatch(t *testing.T) {
	s := NewStore(1, 4)
	// Bypass Add validation to simulate a corrupted item.
	s.items[5] = Item{Tag: 5, Type: TypeInt32, Count: 3, Data: []int32{1}}

	_, err := Encode(s)
	assert.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	good, err := Encode(mustStore(t, NewInt32Item(1, 10, 20)))
	require.NoError(t, err)

	unknownType := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(unknownType[20:], 42)

	// One rational declared but only a numerator present.
	oddRational := binary.LittleEndian.AppendUint32(nil, 1)
	oddRational = binary.LittleEndian.AppendUint32(oddRational, 1)
	oddRational = binary.LittleEndian.AppendUint32(oddRational, 8)
	oddRational = binary.LittleEndian.AppendUint32(oddRational, 0)
	oddRational = binary.LittleEndian.AppendUint32(oddRational, 3)
	oddRational = binary.LittleEndian.AppendUint32(oddRational, uint32(TypeRational))
	oddRational = binary.LittleEndian.AppendUint32(oddRational, 1)
	oddRational = binary.LittleEndian.AppendUint32(oddRational, 7)

	tests := []struct {
		name   string
		data   []byte
		reason string
	}{
		{"empty buffer", nil, "item_count"},
		{"missing capacities", good[:4], "item_capacity"},
		{"truncated header", good[:14], "truncated"},
		{"truncated payload", good[:len(good)-2], "truncated payload"},
		{"unknown type", unknownType, "unknown item type"},
		{"odd rational", oddRational, "odd-length rational"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, camerr.ErrFormat)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestDecodeDuplicateTag(t *testing.T) {
	one, err := Encode(mustStore(t, NewByteItem(3, 9)))
	require.NoError(t, err)

	item := one[12:]
	data := binary.LittleEndian.AppendUint32(nil, 2)
	data = append(data, one[4:12]...)
	data = append(data, item...)
	data = append(data, item...)

	_, err = Decode(data)
	assert.ErrorIs(t, err, camerr.ErrFormat)
}

func TestDecodeDoesNotAlias(t *testing.T) {
	data, err := Encode(mustStore(t, NewByteItem(1, 5, 6, 7)))
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)

	for i := range data {
		data[i] = 0xFF
	}

	v, ok := out.ByteList(1)
	require.True(t, ok)
	assert.Equal(t, []uint8{5, 6, 7}, v)
}

func TestDecodeHugeCountRejected(t *testing.T) {
	data := binary.LittleEndian.AppendUint32(nil, math.MaxUint32)
	data = binary.LittleEndian.AppendUint32(data, math.MaxUint32)
	data = binary.LittleEndian.AppendUint32(data, math.MaxUint32)

	_, err := Decode(data)
	assert.ErrorIs(t, err, camerr.ErrFormat)
}

func TestRoundTripPreservesNaN(t *testing.T) {
	in := mustStore(t, NewDoubleItem(1, math.NaN()), NewFloatItem(2, float32(math.Inf(-1))))

	data, err := Encode(in)
	require.NoError(t, err)
	out, err := Decode(data)
	require.NoError(t, err)

	assert.True(t, in.Equal(out))
}
