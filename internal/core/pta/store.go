package pta

import "sync/atomic"

// Store holds the current Validator and lets configuration reloads replace
// it without locking the request path. In-flight validations keep using the
// Validator they loaded.
type Store struct {
	current atomic.Pointer[Validator]
}

// NewStore creates a Store holding v, which may be nil.
func NewStore(v *Validator) *Store {
	s := &Store{}
	if v != nil {
		s.current.Store(v)
	}
	return s
}

// Load returns the current Validator, or nil if none has been installed.
func (s *Store) Load() *Validator {
	return s.current.Load()
}

// Swap installs v and returns the previous Validator.
func (s *Store) Swap(v *Validator) *Validator {
	return s.current.Swap(v)
}
