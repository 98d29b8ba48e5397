package eop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Store provides thread-safe access to the current EOP dataset.
type Store struct {
	dataset atomic.Pointer[Dataset]
	mu      sync.Mutex // serializes refreshes
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current dataset, or nil if none has been loaded.
func (s *Store) Get() *Dataset {
	return s.dataset.Load()
}

// Set atomically replaces the current dataset.
func (s *Store) Set(ds *Dataset) {
	s.dataset.Store(ds)
}

// Loaded reports whether a dataset is available.
func (s *Store) Loaded() bool {
	return s.dataset.Load() != nil
}

// At looks up the Earth orientation at t in the current dataset.
func (s *Store) At(t time.Time) (Orientation, error) {
	ds := s.dataset.Load()
	if ds == nil {
		return Orientation{}, ErrNoDataset
	}
	return ds.At(t)
}

// AgeSeconds returns the age of the current dataset in seconds.
// Returns -1 if no dataset is loaded.
func (s *Store) AgeSeconds() float64 {
	ds := s.dataset.Load()
	if ds == nil {
		return -1
	}
	return time.Since(ds.FetchedAt).Seconds()
}
