// Package session keeps the per-chat conversation state between events.
package session

import (
	"context"
	"sync"

	"qartelbot/models"
)

// Store maps chat ids to their active wizard state.
type Store interface {
	// Get returns the state for chatID; ok is false when no wizard is active.
	Get(ctx context.Context, chatID int64) (s *models.Session, ok bool, err error)
	// Set replaces the state for chatID.
	Set(ctx context.Context, chatID int64, s *models.Session) error
	// Delete forgets chatID. Deleting an absent chat is not an error.
	Delete(ctx context.Context, chatID int64) error
}

// MemoryStore is a process-local Store. State is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]models.Session)}
}

// Get returns a copy so callers cannot mutate stored state without Set.
func (m *MemoryStore) Get(_ context.Context, chatID int64) (*models.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return nil, false, nil
	}
	return clone(&s), true, nil
}

func (m *MemoryStore) Set(_ context.Context, chatID int64, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = *clone(s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

// Len reports the number of active wizards.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
