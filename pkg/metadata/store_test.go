package metadata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddUpdateSet(t *testing.T) {
	s := NewStore(2, 8)

	require.NoError(t, s.Add(NewByteItem(TagFlashMode, 1)))
	assert.ErrorIs(t, s.Add(NewByteItem(TagFlashMode, 2)), ErrDuplicateTag)

	assert.ErrorIs(t, s.Update(NewByteItem(TagFocusMode, 1)), ErrTagNotFound)
	require.NoError(t, s.Update(NewByteItem(TagFlashMode, 3)))

	v, ok := s.Byte(TagFlashMode)
	require.True(t, ok)
	assert.Equal(t, uint8(3), v)

	require.NoError(t, s.Set(NewByteItem(TagFocusMode, 2)))
	require.NoError(t, s.Set(NewByteItem(TagFocusMode, 4)))
	v, ok = s.Byte(TagFocusMode)
	require.True(t, ok)
	assert.Equal(t, uint8(4), v)
	assert.Equal(t, 2, s.Len())
}

func TestStoreRejectsInvalidItem(t *testing.T) {
	s := NewStore(1, 1)
	err := s.Add(Item{Tag: 1, Type: TypeByte, Count: 2, Data: []uint8{1}})
	assert.ErrorIs(t, err, ErrInvalidItem)

	err = s.Set(Item{Tag: 1, Type: TypeInt32, Count: 1, Data: []uint8{1}})
	assert.ErrorIs(t, err, ErrInvalidItem)
	assert.Equal(t, 0, s.Len())
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := mustStore(t, NewInt32Item(1, 1, 2))

	it, ok := s.Get(1)
	require.True(t, ok)
	v, _ := it.Int32s()
	v[0] = 99

	again, _ := s.Int32List(1)
	assert.Equal(t, []int32{1, 2}, again)
}

func TestStoreAddCopiesInput(t *testing.T) {
	values := []float32{0.5, 0.5}
	it := NewFloatItem(TagFocusPoint, values...)
	s := mustStore(t, it)

	it.Data.([]float32)[0] = 1
	got, _ := s.FloatList(TagFocusPoint)
	assert.Equal(t, []float32{0.5, 0.5}, got)
}

func TestStoreMergeAndClone(t *testing.T) {
	base := mustStore(t, NewByteItem(TagFlashMode, 0), NewFloatItem(TagZoomRatio, 1))
	changes := mustStore(t, NewFloatItem(TagZoomRatio, 2.5), NewByteItem(TagFocusMode, 1))

	snapshot := base.Clone()
	tags := base.Merge(changes)

	assert.ElementsMatch(t, []uint32{TagZoomRatio, TagFocusMode}, tags)
	zoom, _ := base.Float(TagZoomRatio)
	assert.Equal(t, float32(2.5), zoom)
	assert.Equal(t, 3, base.Len())

	zoom, _ = snapshot.Float(TagZoomRatio)
	assert.Equal(t, float32(1), zoom)
	assert.Equal(t, 2, snapshot.Len())

	assert.Nil(t, base.Merge(base))
	assert.Nil(t, base.Merge(nil))
}

func TestStoreTagsSorted(t *testing.T) {
	s := mustStore(t, NewByteItem(30, 1), NewByteItem(10, 1), NewByteItem(20, 1))
	assert.Equal(t, []uint32{10, 20, 30}, s.Tags())

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, uint32(10), items[0].Tag)
}

func TestStoreDeleteAndClear(t *testing.T) {
	s := mustStore(t, NewByteItem(1, 1), NewByteItem(2, 2))

	require.NoError(t, s.Delete(1))
	assert.ErrorIs(t, s.Delete(1), ErrTagNotFound)
	assert.False(t, s.Has(1))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestStoreCapacityGrows(t *testing.T) {
	s := NewStore(1, 1)
	require.NoError(t, s.Add(NewInt64Item(1, 1, 2)))
	require.NoError(t, s.Add(NewInt64Item(2, 3)))

	assert.Equal(t, uint32(2), s.ItemCapacity())
	assert.Equal(t, uint32(24), s.DataCapacity())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(4, 16)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = s.Set(NewInt32Item(uint32(n%4), int32(n)))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = Encode(s)
			_ = s.Items()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Len(), 4)
}

func TestStoreEqual(t *testing.T) {
	a := mustStore(t, NewByteItem(1, 1))
	b := mustStore(t, NewByteItem(1, 1))
	c := mustStore(t, NewByteItem(1, 2))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*Store)(nil).Equal(nil))
}

func TestRationalFloat64(t *testing.T) {
	assert.InDelta(t, 0.3333, Rational{1, 3}.Float64(), 0.001)
	assert.Equal(t, 0.0, Rational{1, 0}.Float64())
	assert.Equal(t, "1/3", Rational{1, 3}.String())
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "zoom.ratio", TagName(TagZoomRatio))
	assert.Equal(t, "tag(0x80000001)", TagName(SectionVendor|1))
}

func TestParseTypeAndTagByName(t *testing.T) {
	typ, ok := ParseType("rational")
	assert.True(t, ok)
	assert.Equal(t, TypeRational, typ)

	_, ok = ParseType("complex")
	assert.False(t, ok)

	tag, ok := TagByName("zoom.ratioRange")
	assert.True(t, ok)
	assert.Equal(t, uint32(TagZoomRatioRange), tag)

	_, ok = TagByName("nope")
	assert.False(t, ok)
}
