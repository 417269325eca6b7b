// Package memory provides the process-lifetime in-memory house store. Records
// keep insertion order; every lookup is a linear scan.
package memory

import (
	"errors"
	"fmt"
	"housingapi/pkg/domain"
	"sync"
)

// ErrNotFound is returned when no record carries the requested id.
var ErrNotFound = errors.New("house not found")

// Store holds house records in insertion order. All methods are safe for
// concurrent use; mutations hold the write lock for the whole
// read-modify-write so id assignment cannot race.
type Store struct {
	mu     sync.RWMutex
	houses []domain.House
}

// NewStore constructs a store seeded with rows; see Load.
func NewStore(rows []domain.House) *Store {
	s := &Store{}
	s.Load(rows)
	return s
}

// Load replaces the store contents with rows, assigning each record an id
// equal to its 0-based row position.
func (s *Store) Load(rows []domain.House) {
	houses := make([]domain.House, len(rows))
	for i, h := range rows {
		h.ID = i
		houses[i] = h
	}
	s.mu.Lock()
	s.houses = houses
	s.mu.Unlock()
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.houses)
}

// List returns every record accepted by match, in store order. A nil match
// accepts all records.
func (s *Store) List(match func(domain.House) bool) []domain.House {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.House, 0, len(s.houses))
	for _, h := range s.houses {
		if match == nil || match(h) {
			out = append(out, h)
		}
	}
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (domain.House, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.House{}, false
	}
	return s.houses[i], true
}

// Append stores h under id 1 + max(existing ids) and returns the stored
// record. The first record of an empty store gets id 0.
func (s *Store) Append(h domain.House) domain.House {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.nextID()
	s.houses = append(s.houses, h)
	return h
}

// Replace overwrites every field of the record with the given id, keeping
// the id and its position.
func (s *Store) Replace(id int, h domain.House) (domain.House, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.House{}, fmt.Errorf("replace house %d: %w", id, ErrNotFound)
	}
	h.ID = id
	s.houses[i] = h
	return h, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete house %d: %w", id, ErrNotFound)
	}
	s.houses = append(s.houses[:i], s.houses[i+1:]...)
	return nil
}

// caller holds s.mu.
func (s *Store) indexOf(id int) int {
	for i, h := range s.houses {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// caller holds s.mu.
func (s *Store) nextID() int {
	if len(s.houses) == 0 {
		return 0
	}
	maxID := s.houses[0].ID
	for _, h := range s.houses[1:] {
		if h.ID > maxID {
			maxID = h.ID
		}
	}
	return maxID + 1
}
