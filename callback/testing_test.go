// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/session"
	"github.com/stretchr/testify/require"
)

// testClient is an auth0.Client which returns canned results.
type testClient struct {
	tokens      *auth0.Tokens
	user        *auth0.User
	exchangeErr error
	profileErr  error

	gotCode        string
	gotRedirectURI string
	gotOpts        int
}

func (c *testClient) Exchange(_ context.Context, code, redirectURI string, opt ...auth0.Option) (*auth0.Tokens, error) {
	c.gotCode, c.gotRedirectURI, c.gotOpts = code, redirectURI, len(opt)
	if c.exchangeErr != nil {
		return nil, c.exchangeErr
	}
	return c.tokens, nil
}

func (c *testClient) UserProfile(context.Context, *auth0.Tokens) (*auth0.User, error) {
	if c.profileErr != nil {
		return nil, c.profileErr
	}
	return c.user, nil
}

// testSessionWithState saves a session holding st and returns its cookie.
func testSessionWithState(t *testing.T, sm *session.Manager, st string, verifier string) *http.Cookie {
	t.Helper()
	require := require.New(t)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	s, err := sm.Load(req)
	require.NoError(err)
	session.SetState(s, st)
	session.SetPKCEVerifier(s, verifier)
	rec := httptest.NewRecorder()
	require.NoError(sm.Save(req.Context(), rec, s))
	cookies := rec.Result().Cookies()
	require.Len(cookies, 1)
	return cookies[0]
}

// testLoadSession loads the session a cookie refers to.
func testLoadSession(t *testing.T, sm *session.Manager, c *http.Cookie) *session.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	s, err := sm.Load(req)
	require.NoError(t, err)
	return s
}

// testResponseCookie returns the cookie named name set by a response.
func testResponseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.FailNowf(t, "missing cookie", "response did not set cookie %q", name)
	return nil
}
