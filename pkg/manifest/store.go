package manifest

import (
	"sync/atomic"

	"art-showcase/pkg/models"
)

// Store holds the working image sequence.
// Readers observe either the previous sequence or the replacement in full.
type Store struct {
	images  atomic.Pointer[[]models.ImageEntry]
	version atomic.Uint64
}

// NewStore creates a store holding initial, which may be nil
func NewStore(initial []models.ImageEntry) *Store {
	s := &Store{}
	seq := Clean(initial)
	s.images.Store(&seq)
	return s
}

// Images returns the current sequence. Callers must treat it as read-only.
func (s *Store) Images() []models.ImageEntry {
	return *s.images.Load()
}

// Replace swaps in a cleaned copy of seq
func (s *Store) Replace(seq []models.ImageEntry) {
	cleaned := Clean(seq)
	s.images.Store(&cleaned)
	s.version.Add(1)
}

// Version counts replacements; zero means nothing has been loaded yet
func (s *Store) Version() uint64 {
	return s.version.Load()
}
