// ABOUTME: No-op KV for platforms that cannot persist anything
// ABOUTME: Every read reports absence and every write is silently dropped

package store

import "context"

// Ensure StubStore implements Backend.
var _ Backend = StubStore{}

// StubStore never holds a value. Callers cannot tell "never set" apart from
// "could not persist", so code built on it must tolerate permanent absence.
type StubStore struct{}

// NewStubStore returns a StubStore.
func NewStubStore() StubStore {
	return StubStore{}
}

// Get always reports absence.
func (StubStore) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// Set discards the value.
func (StubStore) Set(context.Context, string, string) error {
	return nil
}

// Remove does nothing.
func (StubStore) Remove(context.Context, string) error {
	return nil
}

// Close does nothing.
func (StubStore) Close() error {
	return nil
}
