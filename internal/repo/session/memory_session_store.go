package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	token string
	set   bool
	m     sync.Mutex
}

var _ Store = (*MemoryStore)(nil)

// MemoryStoreFactory returns a factory that always yields the same MemoryStore.
func MemoryStoreFactory(store *MemoryStore) StoreFactory {
	return func() (Store, error) {
		return store, nil
	}
}

// NewMemoryStore creates a MemoryStore, optionally pre-seeded with a token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token, set: token != ""}
}

func (s *MemoryStore) Get(context.Context) (string, bool, error) {
	s.m.Lock()
	defer s.m.Unlock()

	return s.token, s.set, nil
}

func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.token, s.set = token, true

	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.token, s.set = "", false

	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
