package highscore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process HighScoreRepository used when the server
// runs without a database. Scores last until the process exits.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]int),
	}
}

func (m *MemoryStore) Read(ctx context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemoryStore) Write(ctx context.Context, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value > m.values[key] {
		m.values[key] = value
	}
	return nil
}
