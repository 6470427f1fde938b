// Package store keeps the ordered set of images the map is editing.
package store

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrEmptyStore is returned when navigating a store without records.
	ErrEmptyStore = errors.New("image store is empty")
	// ErrDuplicateID is returned when adding a record whose ID is already present.
	ErrDuplicateID = errors.New("duplicate image id")
)

// Store is an ordered collection of image records, unique by ID. Order is
// insertion order.
type Store struct {
	mu      sync.RWMutex
	records []*ImageRecord
	byID    map[int]*ImageRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{
		records: make([]*ImageRecord, 0),
		byID:    make(map[int]*ImageRecord),
	}
}

// Add appends rec.
func (s *Store) Add(rec *ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[rec.ID]; ok {
		return fmt.Errorf("add image %d: %w", rec.ID, ErrDuplicateID)
	}
	s.records = append(s.records, rec)
	s.byID[rec.ID] = rec
	return nil
}

// Get returns the record at index.
func (s *Store) Get(index int) (*ImageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.records) {
		return nil, false
	}
	return s.records[index], true
}

// GetByID returns the record with the given ID.
func (s *Store) GetByID(id int) (*ImageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec, ok
}

// IndexOf returns the position of rec, or -1.
func (s *Store) IndexOf(rec *ImageRecord) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(rec)
}

func (s *Store) indexOf(rec *ImageRecord) int {
	if rec == nil {
		return -1
	}
	for i, r := range s.records {
		if r.ID == rec.ID {
			return i
		}
	}
	return -1
}

// Size returns the number of records.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// IDs returns the record IDs in order.
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, len(s.records))
	for i, r := range s.records {
		ids[i] = r.ID
	}
	return ids
}

// All returns a snapshot of the records in order.
func (s *Store) All() []*ImageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ImageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Remove deletes the record with the given ID and returns it.
func (s *Store) Remove(id int) (*ImageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	delete(s.byID, id)
	i := s.indexOf(rec)
	s.records = append(s.records[:i], s.records[i+1:]...)
	return rec, true
}

// Next returns the record after rec, wrapping to the first one. A rec that is
// not in the store yields the first record.
func (s *Store) Next(rec *ImageRecord) (*ImageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.records)
	if n == 0 {
		return nil, ErrEmptyStore
	}
	return s.records[(s.indexOf(rec)+1)%n], nil
}

// Previous returns the record before rec, wrapping to the last one. A rec
// that is not in the store yields the last record.
func (s *Store) Previous(rec *ImageRecord) (*ImageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.records)
	if n == 0 {
		return nil, ErrEmptyStore
	}
	i := s.indexOf(rec)
	if i < 0 {
		return s.records[n-1], nil
	}
	return s.records[(i-1+n)%n], nil
}
