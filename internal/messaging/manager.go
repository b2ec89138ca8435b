package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Manager hands out one live Session per user, creating it on first use.
type Manager struct {
	store    Store
	notifier Notifier
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store Store, notifier Notifier, log *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Session(ctx context.Context, user Identity) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[user.ID]; ok {
		return s
	}
	s := NewSession(ctx, m.store, m.notifier, user, m.log)
	m.sessions[user.ID] = s
	return s
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
