package client

import (
	"context"
	"sync"
)

// State is a collection state container: the data, whether a fetch is in
// flight, and the last failure message. Failure and data are mutually
// exclusive: a failed Handle resets data to the initial value.
type State[T any] struct {
	mu      sync.Mutex
	initial T
	data    T
	loading bool
	err     string
}

// NewState returns a container holding initial, with no error and not loading.
func NewState[T any](initial T) *State[T] {
	return &State[T]{initial: initial, data: initial}
}

// Data returns the current value.
func (s *State[T]) Data() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLoading reports whether a Handle call is in flight.
func (s *State[T]) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last failure message, empty after a success.
func (s *State[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetData replaces the value directly, e.g. for an optimistic mutation.
func (s *State[T]) SetData(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = v
}

// Clear resets the container to its initial state.
func (s *State[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = s.initial
	s.err = ""
	s.loading = false
}

// Handle runs fn through the container lifecycle: loading on and error
// cleared up front; on success the resolved value becomes the data; on
// failure the error message is recorded (falling back to "Something went
// wrong") and the data resets to the initial value. Overlapping calls are
// not coalesced; callers guard if they need single-flight.
func (s *State[T]) Handle(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	result, err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Something went wrong"
		}
		s.err = msg
		s.data = s.initial
		return s.initial, err
	}
	s.data = result
	return result, nil
}
