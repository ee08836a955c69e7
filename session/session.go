// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/capweb/sdk/id"
)

// idSize is the number of random bytes in a session id.
const idSize = 32

var (
	ErrNotFound         = errors.New("session not found")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
)

// Session is a server side session.  A Session returned by a Store or the
// Manager is the caller's private copy: changes are only visible to other
// requests after it's saved.
type Session struct {
	id        string
	values    map[string]interface{}
	expiresAt time.Time
	isNew     bool
}

// New creates a new, empty session which expires after ttl.
func New(ttl time.Duration) (*Session, error) {
	const op = "session.New"
	if ttl <= 0 {
		return nil, fmt.Errorf("%s: ttl must be greater than zero: %w", op, ErrInvalidParameter)
	}
	sid, err := id.NewToken(idSize)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate session id: %w", op, err)
	}
	return &Session{
		id:        sid,
		values:    map[string]interface{}{},
		expiresAt: time.Now().Add(ttl),
		isNew:     true,
	}, nil
}

// ID returns the session's id.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session has never been saved.
func (s *Session) IsNew() bool { return s.isNew }

// ExpiresAt returns when the session expires.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// Expired reports whether the session has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// Get returns the value of a session attribute.
func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set sets a session attribute.  A nil value deletes it.
func (s *Session) Set(key string, value interface{}) {
	if value == nil {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Delete removes a session attribute.
func (s *Session) Delete(key string) {
	delete(s.values, key)
}

// Keys returns the names of the session's attributes.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// clone copies the attribute map.  Attribute values are expected to be
// immutable (strings, *auth0.Tokens, *auth0.User).
func (s *Session) clone() *Session {
	c := &Session{
		id:        s.id,
		values:    make(map[string]interface{}, len(s.values)),
		expiresAt: s.expiresAt,
		isNew:     s.isNew,
	}
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}
