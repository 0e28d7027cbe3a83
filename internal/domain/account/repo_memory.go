package account

import (
	"context"
	"sync"
)

type memoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryStorage returns a process-local Storage. Entries do not survive a
// restart.
func NewMemoryStorage() Storage {
	return &memoryStorage{data: make(map[string]map[string]string)}
}

func (s *memoryStorage) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[sessionID][key]
	return v, ok, nil
}

func (s *memoryStorage) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data[sessionID]
	if !ok {
		m = make(map[string]string)
		s.data[sessionID] = m
	}
	m[key] = value
	return nil
}

func (s *memoryStorage) Delete(_ context.Context, sessionID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data[sessionID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(m, k)
	}
	if len(m) == 0 {
		delete(s.data, sessionID)
	}
	return nil
}
