// Package prefs stores each user's preferred target language.
package prefs

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the user has no stored preference.
var ErrNotFound = errors.New("preference not found")

// Store persists user ID -> language code.
type Store interface {
	Get(ctx context.Context, userID int64) (string, error)
	Set(ctx context.Context, userID int64, code string) error
	Close() error
}

// Memory is an in-process Store. Preferences are lost on restart.
type Memory struct {
	mu    sync.RWMutex
	langs map[int64]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{langs: make(map[int64]string)}
}

// Get returns the stored language for userID.
func (m *Memory) Get(_ context.Context, userID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.langs[userID]
	if !ok {
		return "", ErrNotFound
	}
	return code, nil
}

// Set stores code for userID, replacing any previous value.
func (m *Memory) Set(_ context.Context, userID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.langs[userID] = code
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
