package store

import (
	"context"
	"sync"

	"github.com/alexcho121/expense/internal/core"
)

// MemoryStore is the ephemeral backend used in tests and when no database
// path is configured. It round-trips through the codec so it behaves exactly
// like the durable backends, including tolerance on load.
type MemoryStore struct {
	mu     sync.Mutex
	record []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed installs a raw record, handy for exercising corrupt-data paths.
func (s *MemoryStore) Seed(record []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = append([]byte(nil), record...)
}

func (s *MemoryStore) Load(_ context.Context) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return core.DefaultState(), nil
	}
	return DecodeState(s.record)
}

func (s *MemoryStore) Save(_ context.Context, state core.State) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = data
	return nil
}
