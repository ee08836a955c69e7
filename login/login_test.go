// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package login

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/session"
	"github.com/hashicorp/capweb/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"
)

type failingAuthURLer struct{}

func (failingAuthURLer) AuthURL(context.Context, string, ...auth0.Option) (string, error) {
	return "", auth0.NewError(auth0.ErrInvalidParameter)
}

func testManager(t *testing.T) *session.Manager {
	t.Helper()
	sm, err := session.NewManager(session.NewMemoryStore())
	require.NoError(t, err)
	return sm
}

func testSessionCookie(t *testing.T, sm *session.Manager, st string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s, err := sm.Load(req)
	require.NoError(t, err)
	session.SetState(s, st)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Save(req.Context(), rec, s))
	return rec.Result().Cookies()[0]
}

func testLoadSession(t *testing.T, sm *session.Manager, c *http.Cookie) *session.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	s, err := sm.Load(req)
	require.NoError(t, err)
	return s
}

func TestHandler_New(t *testing.T) {
	t.Parallel()
	sm := testManager(t)
	tests := []struct {
		name      string
		p         AuthURLer
		sm        *session.Manager
		wantIsErr error
	}{
		{name: "valid", p: failingAuthURLer{}, sm: sm},
		{name: "nil-provider", sm: sm, wantIsErr: auth0.ErrInvalidParameter},
		{name: "nil-manager", p: failingAuthURLer{}, wantIsErr: auth0.ErrInvalidParameter},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			h, err := Handler(tt.p, tt.sm)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			assert.NotNil(h)
		})
	}
}

func TestHandler(t *testing.T) {
	t.Parallel()
	tp := auth0.StartTestProvider(t)
	p, err := auth0.NewProvider(tp.Config())
	require.NoError(t, err)
	t.Cleanup(p.Done)

	tests := []struct {
		name         string
		storedState  string
		opt          []Option
		wantRedirect string
		wantPKCE     bool
		wantNonce    bool
		wantExtra    map[string]string
	}{
		{
			name:         "defaults",
			opt:          []Option{WithCallbackPath("/callback")},
			wantRedirect: "http://app.example.com/callback",
			wantNonce:    true,
		},
		{
			name:         "keeps-stored-values",
			storedState:  "returnTo=%2Fportal",
			opt:          []Option{WithRedirectURL("https://app.example.com/cb"), WithCallbackPath("/ignored")},
			wantRedirect: "https://app.example.com/cb",
			wantNonce:    true,
		},
		{
			name:         "pkce-audience-connection",
			opt:          []Option{WithCallbackPath("/callback"), WithPKCE(), WithAudience("https://api.example.com"), WithConnection("github")},
			wantRedirect: "http://app.example.com/callback",
			wantPKCE:     true,
			wantNonce:    true,
			wantExtra:    map[string]string{"audience": "https://api.example.com", "connection": "github"},
		},
		{
			name:         "without-nonce",
			opt:          []Option{WithCallbackPath("/callback"), WithoutNonce()},
			wantRedirect: "http://app.example.com/callback",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			sm := testManager(t)
			h, err := Handler(p, sm, tt.opt...)
			require.NoError(err)

			req := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
			if tt.storedState != "" {
				req.AddCookie(testSessionCookie(t, sm, tt.storedState))
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			require.Equal(http.StatusFound, rec.Code)
			assert.Equal("no-store", rec.Header().Get("Cache-Control"))

			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(err)
			assert.True(strings.HasPrefix(loc.String(), tp.Addr()+auth0.AuthorizePath))
			q := loc.Query()
			assert.Equal(tt.wantRedirect, q.Get("redirect_uri"))
			assert.Equal("code", q.Get("response_type"))

			cookies := rec.Result().Cookies()
			require.Len(cookies, 1)
			s := testLoadSession(t, sm, cookies[0])
			stored := session.State(s)
			assert.Equal(stored, q.Get("state"))
			nonce, found, err := state.Nonce(stored)
			require.NoError(err)
			require.True(found)
			assert.Len(nonce, 32)
			if tt.storedState != "" {
				v, found, err := state.Extract(stored, "returnTo")
				require.NoError(err)
				assert.True(found)
				assert.Equal("/portal", v)
			}
			if tt.wantNonce {
				assert.Equal(nonce, q.Get("nonce"))
			} else {
				assert.Empty(q.Get("nonce"))
			}
			verifier := session.PKCEVerifier(s)
			if tt.wantPKCE {
				require.NotEmpty(verifier)
				assert.Equal(oauth2.S256ChallengeFromVerifier(verifier), q.Get("code_challenge"))
				assert.Equal("S256", q.Get("code_challenge_method"))
			} else {
				assert.Empty(verifier)
				assert.Empty(q.Get("code_challenge"))
			}
			for k, v := range tt.wantExtra {
				assert.Equal(v, q.Get(k))
			}
		})
	}
}

func TestHandler_ReusesNonce(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	tp := auth0.StartTestProvider(t)
	p, err := auth0.NewProvider(tp.Config())
	require.NoError(err)
	defer p.Done()

	sm := testManager(t)
	const stored = "nonce=0123456789ABCDEF0123456789ABCDEF"
	c := testSessionCookie(t, sm, stored)
	h, err := Handler(p, sm, WithCallbackPath("/callback"))
	require.NoError(err)

	req := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	h(rec, req)
	require.Equal(http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(err)
	assert.Equal(stored, loc.Query().Get("state"))
	assert.Equal(stored, session.State(testLoadSession(t, sm, c)))
}

func TestHandler_UILocales(t *testing.T) {
	t.Parallel()
	tp := auth0.StartTestProvider(t)
	p, err := auth0.NewProvider(tp.Config())
	require.NoError(t, err)
	t.Cleanup(p.Done)

	tests := []struct {
		name           string
		opt            []Option
		acceptLanguage string
		want           string
	}{
		{name: "none", want: ""},
		{name: "fixed", opt: []Option{WithUILocales(language.French, language.German)}, want: "fr de"},
		{name: "header-ignored", opt: []Option{WithUILocales(language.French)}, acceptLanguage: "es", want: "fr"},
		{name: "accept-language", opt: []Option{WithAcceptLanguage()}, acceptLanguage: "es-MX, en;q=0.8", want: "es-MX en"},
		{name: "accept-language-fallback", opt: []Option{WithAcceptLanguage(), WithUILocales(language.French)}, want: "fr"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			h, err := Handler(p, testManager(t), append(tt.opt, WithCallbackPath("/callback"))...)
			require.NoError(err)
			req := httptest.NewRequest(http.MethodGet, "http://app.example.com/login", nil)
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			require.Equal(http.StatusFound, rec.Code)
			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(err)
			assert.Equal(tt.want, loc.Query().Get("ui_locales"))
		})
	}
}

func TestHandler_AuthURLError(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	sm := testManager(t)
	h, err := Handler(failingAuthURLer{}, sm)
	require.NoError(err)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(http.StatusInternalServerError, rec.Code)
	assert.Empty(rec.Result().Cookies())
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	assert.Nil(ConfigOptions(nil))

	cfg := auth0.DefaultConfig()
	got := getLoginOpts(ConfigOptions(cfg)...)
	assert.False(got.withPKCE)
	assert.Equal(auth0.DefaultLoginCallback, got.withCallbackPath)
	assert.Empty(got.withRedirectURL)

	cfg.UsePKCE = true
	cfg.RedirectURL = "https://app.example.com/callback"
	got = getLoginOpts(ConfigOptions(cfg)...)
	assert.True(got.withPKCE)
	assert.Equal("https://app.example.com/callback", got.withRedirectURL)
	assert.Empty(got.withCallbackPath)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	tp := auth0.StartTestProvider(t)
	p, err := auth0.NewProvider(tp.Config())
	require.NoError(t, err)
	t.Cleanup(p.Done)

	tests := []struct {
		name         string
		redirectTo   string
		opt          []Option
		wantLocation func() string
	}{
		{
			name:         "local",
			redirectTo:   "/login",
			wantLocation: func() string { return "/login" },
		},
		{
			name:       "provider-logout",
			redirectTo: "/login",
			opt:        []Option{WithProviderLogout(p)},
			wantLocation: func() string {
				u, err := p.LogoutURL("http://app.example.com/login")
				require.NoError(t, err)
				return u
			},
		},
		{
			name:       "provider-logout-absolute",
			redirectTo: "https://www.example.com/bye",
			opt:        []Option{WithProviderLogout(p)},
			wantLocation: func() string {
				u, err := p.LogoutURL("https://www.example.com/bye")
				require.NoError(t, err)
				return u
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			store := session.NewMemoryStore()
			sm, err := session.NewManager(store)
			require.NoError(err)
			c := testSessionCookie(t, sm, "nonce=ABC")
			require.Equal(1, store.Len())

			h, err := Logout(sm, tt.redirectTo, tt.opt...)
			require.NoError(err)
			req := httptest.NewRequest(http.MethodGet, "http://app.example.com/logout", nil)
			req.AddCookie(c)
			rec := httptest.NewRecorder()
			h(rec, req)

			assert.Equal(http.StatusFound, rec.Code)
			assert.Equal(tt.wantLocation(), rec.Header().Get("Location"))
			assert.Equal(0, store.Len())
			cookies := rec.Result().Cookies()
			require.Len(cookies, 1)
			assert.Equal(-1, cookies[0].MaxAge)
			assert.Empty(session.State(testLoadSession(t, sm, c)))
		})
	}

	_, err = Logout(nil, "/login")
	assert.True(t, errors.Is(err, auth0.ErrInvalidParameter))
	_, err = Logout(testManager(t), "")
	assert.True(t, errors.Is(err, auth0.ErrInvalidParameter))
}
