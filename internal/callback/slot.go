// Package callback holds a process-wide callback for code paths that cannot
// carry per-call context.
package callback

import (
	"errors"
	"sync"
)

var (
	// ErrNotSet is returned by Get when no callback is stored.
	ErrNotSet = errors.New("callback not set")
	// ErrBusy is returned by Bind while another binding is live.
	ErrBusy = errors.New("callback slot busy")
)

// Slot holds at most one callback of type F.
type Slot[F any] struct {
	mu    sync.Mutex
	fn    F
	set   bool
	bound bool
}

// Set stores fn, replacing any previous value.
func (s *Slot[F]) Set(fn F) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
	s.set = true
}

// Get returns the stored callback.
func (s *Slot[F]) Get() (F, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		var zero F
		return zero, ErrNotSet
	}
	return s.fn, nil
}

// Bind stores fn for the duration of one invocation. The returned release
// function clears the slot; it is safe to call more than once. Bind fails
// with ErrBusy if the slot is already bound, including from inside the
// callback itself.
func (s *Slot[F]) Bind(fn F) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound {
		return nil, ErrBusy
	}
	s.fn = fn
	s.set = true
	s.bound = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			var zero F
			s.fn = zero
			s.set = false
			s.bound = false
		})
	}, nil
}

// Bound reports whether an invocation currently holds the slot.
func (s *Slot[F]) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}
