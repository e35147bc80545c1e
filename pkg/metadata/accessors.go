package metadata

// Typed single-value helpers used by the device layer. Each returns false if
// the tag is absent, has a different type, or holds fewer values than needed.

// Byte returns the first value of a Byte item.
func (s *Store) Byte(tag uint32) (uint8, bool) {
	it, ok := s.Get(tag)
	if !ok {
		return 0, false
	}
	v, ok := it.Bytes()
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// ByteList returns all values of a Byte item.
func (s *Store) ByteList(tag uint32) ([]uint8, bool) {
	it, ok := s.Get(tag)
	if !ok {
		return nil, false
	}
	return it.Bytes()
}

// Int32 returns the first value of an Int32 item.
func (s *Store) Int32(tag uint32) (int32, bool) {
	v, ok := s.Int32List(tag)
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// Int32List returns all values of an Int32 item.
func (s *Store) Int32List(tag uint32) ([]int32, bool) {
	it, ok := s.Get(tag)
	if !ok {
		return nil, false
	}
	return it.Int32s()
}

// FloatList returns all values of a Float item.
func (s *Store) FloatList(tag uint32) ([]float32, bool) {
	it, ok := s.Get(tag)
	if !ok {
		return nil, false
	}
	return it.Floats()
}

// Float returns the first value of a Float item.
func (s *Store) Float(tag uint32) (float32, bool) {
	v, ok := s.FloatList(tag)
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// Int64 returns the first value of an Int64 item.
func (s *Store) Int64(tag uint32) (int64, bool) {
	it, ok := s.Get(tag)
	if !ok {
		return 0, false
	}
	v, ok := it.Int64s()
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// DoubleList returns all values of a Double item.
func (s *Store) DoubleList(tag uint32) ([]float64, bool) {
	it, ok := s.Get(tag)
	if !ok {
		return nil, false
	}
	return it.Doubles()
}

// Rational returns the first value of a Rational item.
func (s *Store) Rational(tag uint32) (Rational, bool) {
	it, ok := s.Get(tag)
	if !ok {
		return Rational{}, false
	}
	v, ok := it.Rationals()
	if !ok || len(v) == 0 {
		return Rational{}, false
	}
	return v[0], true
}
