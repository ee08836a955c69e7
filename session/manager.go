// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/capweb/sdk/id"
	"github.com/hashicorp/go-hclog"
)

// Manager finds a request's session through a cookie holding the session id.
type Manager struct {
	store      Store
	cookieName string
	cookiePath string
	ttl        time.Duration
	secure     bool
	sameSite   http.SameSite
	logger     hclog.Logger
	now        func() time.Time
}

// NewManager creates a Manager backed by store.
//
// Supported options: WithCookieName, WithCookiePath, WithTTL, WithSecure,
// WithSameSite, WithLogger, WithNow
func NewManager(store Store, opt ...Option) (*Manager, error) {
	const op = "session.NewManager"
	if store == nil {
		return nil, fmt.Errorf("%s: store is nil: %w", op, ErrNilParameter)
	}
	opts := getOpts(opt...)
	if opts.withTTL <= 0 {
		return nil, fmt.Errorf("%s: ttl must be greater than zero: %w", op, ErrInvalidParameter)
	}
	return &Manager{
		store:      store,
		cookieName: opts.withCookieName,
		cookiePath: opts.withCookiePath,
		ttl:        opts.withTTL,
		secure:     opts.withSecure,
		sameSite:   opts.withSameSite,
		logger:     opts.withLogger,
		now:        opts.withNow,
	}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.cookieName }

// Load returns a private copy of the request's session, or a new session when
// the request has none or it has expired.
func (m *Manager) Load(req *http.Request) (*Session, error) {
	const op = "Manager.Load"
	if req == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if c, err := req.Cookie(m.cookieName); err == nil && c.Value != "" {
		s, err := m.store.Load(req.Context(), c.Value)
		switch {
		case err == nil:
			return s, nil
		case errors.Is(err, ErrNotFound):
			m.logger.Trace("session not found, starting a new one", "op", op)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	s, err := New(m.ttl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Save persists the session, extends its expiry and sets the session cookie.
// It must be called before anything is written to the response body.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	const op = "Manager.Save"
	if s == nil {
		return fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	}
	s.expiresAt = m.now().Add(m.ttl)
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.isNew = false
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.id,
		Path:     m.cookiePath,
		Expires:  s.expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
	return nil
}

// Renew moves the session to a new id and saves it, so an id issued before a
// privilege change (a login) no longer refers to the session.  The old id is
// deleted from the store before the session is saved under its new id, and
// the session cookie is set to the new id.
func (m *Manager) Renew(ctx context.Context, w http.ResponseWriter, s *Session) error {
	const op = "Manager.Renew"
	if s == nil {
		return fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	}
	newID, err := id.NewToken(idSize)
	if err != nil {
		return fmt.Errorf("%s: unable to generate session id: %w", op, err)
	}
	if !s.isNew {
		if err := m.store.Delete(ctx, s.id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	s.id = newID
	if err := m.Save(ctx, w, s); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Destroy deletes the request's session, if any, and expires the session
// cookie.
func (m *Manager) Destroy(w http.ResponseWriter, req *http.Request) error {
	const op = "Manager.Destroy"
	if req == nil {
		return fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if c, err := req.Cookie(m.cookieName); err == nil && c.Value != "" {
		if err := m.store.Delete(req.Context(), c.Value); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     m.cookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: m.sameSite,
	})
	return nil
}
