package store

import (
	"context"
	"sync"

	"bigboss/internal/game"
)

// Memory is a process-local store, used by the simulator and tests.
type Memory struct {
	mu  sync.Mutex
	doc []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil, game.ErrNoSave
	}
	return append([]byte(nil), m.doc...), nil
}

func (m *Memory) Save(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = append([]byte(nil), doc...)
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = nil
	return nil
}
