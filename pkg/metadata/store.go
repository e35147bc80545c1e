package metadata

import (
	"errors"
	"sort"
	"sync"
)

// Store errors.
var (
	ErrDuplicateTag = errors.New("metadata tag already present")
	ErrTagNotFound  = errors.New("metadata tag not found")
	ErrInvalidItem  = errors.New("invalid metadata item")
)

// Default capacity hints for stores created by transactions.
const (
	DefaultItemCapacity = 16
	DefaultDataCapacity = 256
)

// Store is a mutable, concurrency-safe set of metadata items keyed by tag.
//
// The item and data capacities are sizing hints carried on the wire; they do
// not limit how many items a Store can hold.
type Store struct {
	mu sync.RWMutex

	itemCapacity uint32
	dataCapacity uint32
	items        map[uint32]Item
}

// NewStore creates an empty store with the given capacity hints.
func NewStore(itemCapacity, dataCapacity uint32) *Store {
	return &Store{
		itemCapacity: itemCapacity,
		dataCapacity: dataCapacity,
		items:        make(map[uint32]Item, itemCapacity),
	}
}

// NewStoreFromItems creates a store sized for items and adds each of them.
func NewStoreFromItems(items ...Item) (*Store, error) {
	var data uint32
	for _, it := range items {
		data += uint32(it.dataSize())
	}
	s := NewStore(uint32(len(items)), data)
	for _, it := range items {
		if err := s.Add(it); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ItemCapacity returns the item capacity hint.
func (s *Store) ItemCapacity() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemCapacity
}

// DataCapacity returns the data capacity hint.
func (s *Store) DataCapacity() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataCapacity
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Add inserts a new item. It fails if the tag is already present.
func (s *Store) Add(it Item) error {
	if err := it.Validate(); err != nil {
		return errors.Join(ErrInvalidItem, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[it.Tag]; exists {
		return ErrDuplicateTag
	}
	s.insertLocked(it)
	return nil
}

// Update replaces an existing item. It fails if the tag is absent.
func (s *Store) Update(it Item) error {
	if err := it.Validate(); err != nil {
		return errors.Join(ErrInvalidItem, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[it.Tag]; !exists {
		return ErrTagNotFound
	}
	s.insertLocked(it)
	return nil
}

// Set adds the item or replaces an existing item with the same tag.
func (s *Store) Set(it Item) error {
	if err := it.Validate(); err != nil {
		return errors.Join(ErrInvalidItem, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(it)
	return nil
}

// insertLocked stores a private copy of it and grows the capacity hints.
func (s *Store) insertLocked(it Item) {
	s.items[it.Tag] = it.clone()
	if n := uint32(len(s.items)); n > s.itemCapacity {
		s.itemCapacity = n
	}
	var data uint32
	for _, v := range s.items {
		data += uint32(v.dataSize())
	}
	if data > s.dataCapacity {
		s.dataCapacity = data
	}
}

// Get returns a copy of the item with the given tag.
func (s *Store) Get(tag uint32) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[tag]
	if !ok {
		return Item{}, false
	}
	return it.clone(), true
}

// Has reports whether the tag is present.
func (s *Store) Has(tag uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[tag]
	return ok
}

// Delete removes the item with the given tag.
func (s *Store) Delete(tag uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[tag]; !ok {
		return ErrTagNotFound
	}
	delete(s.items, tag)
	return nil
}

// Tags returns the item tags in ascending order.
func (s *Store) Tags() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedTagsLocked()
}

func (s *Store) sortedTagsLocked() []uint32 {
	tags := make([]uint32, 0, len(s.items))
	for tag := range s.items {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Items returns copies of all items ordered by tag.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := s.sortedTagsLocked()
	out := make([]Item, 0, len(tags))
	for _, tag := range tags {
		out = append(out, s.items[tag].clone())
	}
	return out
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Store{
		itemCapacity: s.itemCapacity,
		dataCapacity: s.dataCapacity,
		items:        make(map[uint32]Item, len(s.items)),
	}
	for tag, it := range s.items {
		c.items[tag] = it.clone()
	}
	return c
}

// Merge adds or updates every item of other into s.
// Returns the tags that were written.
func (s *Store) Merge(other *Store) []uint32 {
	if other == nil || other == s {
		return nil
	}
	items := other.Items()

	s.mu.Lock()
	defer s.mu.Unlock()

	tags := make([]uint32, 0, len(items))
	for _, it := range items {
		s.insertLocked(it)
		tags = append(tags, it.Tag)
	}
	return tags
}

// Clear removes all items, keeping the capacity hints.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[uint32]Item, s.itemCapacity)
}

// Equal reports whether both stores hold the same items.
// Capacity hints are not compared.
func (s *Store) Equal(other *Store) bool {
	if s == nil || other == nil {
		return s == other
	}
	a, b := s.Items(), other.Items()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
