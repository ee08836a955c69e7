// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store persists sessions.  Implementations must be concurrently safe and
// must not share mutable state with the sessions passed in or returned, which
// likely means copying them.
type Store interface {
	// Load returns the session with the given id.  It returns ErrNotFound
	// when there's no such session or it has expired.
	Load(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Delete removes a session.  Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory Store.  Concurrent saves of the same session
// are last-write-wins.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
//
// Supported options: WithNow
func NewMemoryStore(opt ...Option) *MemoryStore {
	opts := getOpts(opt...)
	return &MemoryStore{
		sessions: map[string]*Session{},
		now:      opts.withNow,
	}
}

// Load returns a copy of the session.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	const op = "MemoryStore.Load"
	if id == "" {
		return nil, fmt.Errorf("%s: id is empty: %w", op, ErrInvalidParameter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok || s.Expired(m.now()) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return s.clone(), nil
}

// Save stores a copy of the session.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	const op = "MemoryStore.Save"
	if s == nil {
		return fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	}
	if s.id == "" {
		return fmt.Errorf("%s: session id is empty: %w", op, ErrInvalidParameter)
	}
	c := s.clone()
	c.isNew = false
	m.mu.Lock()
	m.sessions[s.id] = c
	m.mu.Unlock()
	return nil
}

// Delete removes the session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet
// cleaned up.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes expired sessions and returns how many were removed.
func (m *MemoryStore) Cleanup() int {
	now := m.now()
	removed := 0
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (m *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
}
