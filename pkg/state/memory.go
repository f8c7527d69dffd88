package state

import (
	"context"
	"fmt"
	"sync"
)

type InMemoryStateManager struct {
	lock     sync.RWMutex
	snapshot *Snapshot
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		snapshot: &Snapshot{Phase: PhaseIdle},
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*Snapshot, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.Copy(), nil
}

// Set stores a copy so the caller may keep mutating its own state.
func (m *InMemoryStateManager) Set(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}
	c := snapshot.Copy()

	m.lock.Lock()
	defer m.lock.Unlock()
	m.snapshot = c
	return nil
}
