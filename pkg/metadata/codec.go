package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/camkit-project/camkit-go/pkg/camerr"
)

// Wire layout sizes.
const (
	headerFieldSize = 4
	itemHeaderSize  = 16 // index, tag, type, count
)

// ErrNilStore is returned when encoding a nil store.
var ErrNilStore = errors.New("nil metadata store")

var le = binary.LittleEndian

// Encode serializes the store. Items are written in ascending tag order and
// indexed by their position in that order.
//
// An empty store encodes to a single item_count field of zero.
func Encode(s *Store) ([]byte, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := s.sortedTagsLocked()
	if len(tags) == 0 {
		return le.AppendUint32(nil, 0), nil
	}

	size := 3 * headerFieldSize
	for _, tag := range tags {
		it := s.items[tag]
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		size += itemHeaderSize + it.dataSize()
	}

	buf := make([]byte, 0, size)
	buf = le.AppendUint32(buf, uint32(len(tags)))
	buf = le.AppendUint32(buf, max(s.itemCapacity, uint32(len(tags))))
	buf = le.AppendUint32(buf, s.dataCapacity)

	for index, tag := range tags {
		it := s.items[tag]
		buf = le.AppendUint32(buf, uint32(index))
		buf = le.AppendUint32(buf, it.Tag)
		buf = le.AppendUint32(buf, uint32(it.Type))
		buf = le.AppendUint32(buf, it.Count)
		buf = appendPayload(buf, it)
	}
	return buf, nil
}

func appendPayload(buf []byte, it Item) []byte {
	switch v := it.Data.(type) {
	case []uint8:
		buf = append(buf, v...)
	case []int32:
		for _, x := range v {
			buf = le.AppendUint32(buf, uint32(x))
		}
	case []uint32:
		for _, x := range v {
			buf = le.AppendUint32(buf, x)
		}
	case []float32:
		for _, x := range v {
			buf = le.AppendUint32(buf, math.Float32bits(x))
		}
	case []int64:
		for _, x := range v {
			buf = le.AppendUint64(buf, uint64(x))
		}
	case []float64:
		for _, x := range v {
			buf = le.AppendUint64(buf, math.Float64bits(x))
		}
	case []Rational:
		for _, r := range v {
			buf = le.AppendUint32(buf, uint32(r.Numerator))
			buf = le.AppendUint32(buf, uint32(r.Denominator))
		}
	}
	return buf
}

// decoder walks a wire buffer and reports the offset of any failure.
type decoder struct {
	data []byte
	off  int
}

func (d *decoder) remaining() int { return len(d.data) - d.off }

func (d *decoder) fail(format string, args ...any) error {
	return &camerr.FormatError{Offset: d.off, Reason: fmt.Sprintf(format, args...)}
}

func (d *decoder) uint32(field string) (uint32, error) {
	if d.remaining() < 4 {
		return 0, d.fail("truncated %s", field)
	}
	v := le.Uint32(d.data[d.off:])
	d.off += 4
	return v, nil
}

// Decode parses a wire buffer into a new Store. Every decoded payload is a
// freshly allocated slice; nothing aliases data.
func Decode(data []byte) (*Store, error) {
	d := &decoder{data: data}

	count, err := d.uint32("item_count")
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return NewStore(0, 0), nil
	}

	itemCap, err := d.uint32("item_capacity")
	if err != nil {
		return nil, err
	}
	dataCap, err := d.uint32("data_capacity")
	if err != nil {
		return nil, err
	}

	// Each item needs at least its header; reject counts the buffer cannot hold
	// before sizing anything from them.
	if uint64(count)*itemHeaderSize > uint64(d.remaining()) {
		return nil, d.fail("truncated: %d items declared, %d bytes remain", count, d.remaining())
	}

	s := &Store{
		itemCapacity: itemCap,
		dataCapacity: dataCap,
		items:        make(map[uint32]Item, min(itemCap, count)),
	}

	for i := uint32(0); i < count; i++ {
		it, err := d.item()
		if err != nil {
			return nil, err
		}
		if _, dup := s.items[it.Tag]; dup {
			return nil, d.fail("duplicate tag %#x", it.Tag)
		}
		s.items[it.Tag] = it
	}
	return s, nil
}

func (d *decoder) item() (Item, error) {
	if _, err := d.uint32("item index"); err != nil {
		return Item{}, err
	}
	tag, err := d.uint32("item tag")
	if err != nil {
		return Item{}, err
	}
	rawType, err := d.uint32("item type")
	if err != nil {
		return Item{}, err
	}
	typ := Type(rawType)
	if !typ.IsValid() {
		return Item{}, d.fail("unknown item type %d for tag %#x", rawType, tag)
	}
	count, err := d.uint32("item count")
	if err != nil {
		return Item{}, err
	}

	need := uint64(count) * uint64(typ.elemSize())
	if need > uint64(d.remaining()) {
		if typ == TypeRational && (d.remaining()/4)%2 == 1 {
			return Item{}, d.fail("odd-length rational payload for tag %#x", tag)
		}
		return Item{}, d.fail("truncated payload for tag %#x: need %d bytes, have %d", tag, need, d.remaining())
	}

	p := d.data[d.off : d.off+int(need)]
	d.off += int(need)

	it := Item{Tag: tag, Type: typ, Count: count}
	n := int(count)
	switch typ {
	case TypeByte:
		v := make([]uint8, n)
		copy(v, p)
		it.Data = v
	case TypeInt32:
		v := make([]int32, n)
		for i := range v {
			v[i] = int32(le.Uint32(p[4*i:]))
		}
		it.Data = v
	case TypeUInt32:
		v := make([]uint32, n)
		for i := range v {
			v[i] = le.Uint32(p[4*i:])
		}
		it.Data = v
	case TypeFloat:
		v := make([]float32, n)
		for i := range v {
			v[i] = math.Float32frombits(le.Uint32(p[4*i:]))
		}
		it.Data = v
	case TypeInt64:
		v := make([]int64, n)
		for i := range v {
			v[i] = int64(le.Uint64(p[8*i:]))
		}
		it.Data = v
	case TypeDouble:
		v := make([]float64, n)
		for i := range v {
			v[i] = math.Float64frombits(le.Uint64(p[8*i:]))
		}
		it.Data = v
	case TypeRational:
		v := make([]Rational, n)
		for i := range v {
			v[i] = Rational{
				Numerator:   int32(le.Uint32(p[8*i:])),
				Denominator: int32(le.Uint32(p[8*i+4:])),
			}
		}
		it.Data = v
	}
	return it, nil
}
