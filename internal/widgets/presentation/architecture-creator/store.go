package architecturecreator

import (
	"sync"

	apperrors "solution-creator/internal/common/errors"
)

// Store holds one session's form input.
type Store struct {
	mu   sync.RWMutex
	data FormData
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces one field. Unknown names return UNKNOWN_FIELD and leave the
// form untouched.
func (s *Store) Set(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ptr := s.data.field(field)
	if ptr == nil {
		return apperrors.NewUnknownFieldError(field)
	}
	*ptr = value
	return nil
}

func (s *Store) Get(field string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ptr := s.data.field(field)
	if ptr == nil {
		return "", apperrors.NewUnknownFieldError(field)
	}
	return *ptr, nil
}

// Reset restores the all-empty form.
func (s *Store) Reset() {
	s.mu.Lock()
	s.data = FormData{}
	s.mu.Unlock()
}

func (s *Store) Snapshot() FormData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}
