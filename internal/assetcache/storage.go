package assetcache

import (
	"context"
	"sync"
)

// Entry is one cached asset response.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

// CacheStorage is the backing key-value service for cache generations. It is
// shared by concurrently running request handlers, so implementations must
// tolerate concurrent Put and Match calls.
type CacheStorage interface {
	// Put stores an entry under (cache, url), overwriting any prior value.
	Put(ctx context.Context, cache, url string, e Entry) error
	// Match looks up (cache, url); ok is false on a miss.
	Match(ctx context.Context, cache, url string) (e Entry, ok bool, err error)
	// Names lists every cache generation currently holding entries.
	Names(ctx context.Context) ([]string, error)
	// Delete drops a whole cache generation.
	Delete(ctx context.Context, cache string) error
}

// MemoryStorage is the in-process CacheStorage used in tests and with the
// memory backend.
type MemoryStorage struct {
	mu     sync.Mutex
	caches map[string]map[string]Entry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{caches: make(map[string]map[string]Entry)}
}

func (s *MemoryStorage) Put(_ context.Context, cache, url string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[cache]
	if !ok {
		c = make(map[string]Entry)
		s.caches[cache] = c
	}
	e.Body = append([]byte(nil), e.Body...)
	c[url] = e
	return nil
}

func (s *MemoryStorage) Match(_ context.Context, cache, url string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.caches[cache][url]
	return e, ok, nil
}

func (s *MemoryStorage) Names(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.caches))
	for name := range s.caches {
		names = append(names, name)
	}
	return names, nil
}

func (s *MemoryStorage) Delete(_ context.Context, cache string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.caches, cache)
	return nil
}
