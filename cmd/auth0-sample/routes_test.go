// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/jwt"
	"github.com/hashicorp/capweb/session"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yhat/scrape"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/publicsuffix"
)

// testClients returns a client which follows redirects and one which doesn't.
// Both share a cookie jar and trust the test provider's certificate.
func testClients(t *testing.T, tp *auth0.TestProvider) (follow, noFollow *http.Client) {
	t.Helper()
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	require.NoError(t, err)
	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM([]byte(tp.CACert())))
	tr := &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool}}
	t.Cleanup(tr.CloseIdleConnections)
	follow = &http.Client{Transport: tr, Jar: jar}
	noFollow = &http.Client{
		Transport: tr,
		Jar:       jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return follow, noFollow
}

func testGet(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRouter_LoginFlow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		rsa   bool
		setup func(tp *auth0.TestProvider, cfg *auth0.Config)
	}{
		{
			name: "hs256",
		},
		{
			name: "rs256-pkce",
			rsa:  true,
			setup: func(tp *auth0.TestProvider, cfg *auth0.Config) {
				tp.RequirePKCE()
				cfg.UsePKCE = true
			},
		},
		{
			name: "skip-discovery",
			setup: func(tp *auth0.TestProvider, cfg *auth0.Config) {
				cfg.SkipDiscovery = true
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			tp := auth0.StartTestProvider(t)
			if tt.rsa {
				tp.UseRSA(jwt.RS256)
			}
			cfg := tp.Config()
			if tt.setup != nil {
				tt.setup(tp, cfg)
			}
			p, err := auth0.NewProvider(cfg)
			require.NoError(err)
			defer p.Done()
			sm, err := session.NewManager(session.NewMemoryStore())
			require.NoError(err)
			h, err := newRouter(cfg, p, sm, hclog.NewNullLogger())
			require.NoError(err)
			srv := httptest.NewServer(h)
			defer srv.Close()

			follow, noFollow := testClients(t, tp)

			// the portal is protected before login
			resp, _ := testGet(t, noFollow, srv.URL+portalPath)
			assert.Equal(http.StatusFound, resp.StatusCode)
			assert.Equal(auth0.DefaultLoginRedirectOnFail, resp.Header.Get("Location"))

			// login: /login -> /authorize -> /callback -> /
			resp, body := testGet(t, follow, srv.URL+loginPath)
			require.Equal(http.StatusOK, resp.StatusCode)
			assert.Equal(homePath, resp.Request.URL.Path)
			assert.Contains(body, "Signed in as Alice Doe")
			assert.Equal(srv.URL+cfg.LoginCallback, tp.LastAuthRequest().Get("redirect_uri"))
			assert.NotEmpty(tp.LastAuthRequest().Get("nonce"))

			resp, body = testGet(t, noFollow, srv.URL+portalPath)
			require.Equal(http.StatusOK, resp.StatusCode)
			root, err := html.Parse(strings.NewReader(body))
			require.NoError(err)
			h1, ok := scrape.Find(root, scrape.ByTag(atom.H1))
			require.True(ok)
			assert.Equal("Welcome alice", scrape.Text(h1))
			for id, want := range map[string]string{
				"name":    "Alice Doe",
				"email":   "alice@example.com (verified)",
				"user_id": "auth0|5f7c8ec7c33c6c004bbafe82",
			} {
				n, ok := scrape.Find(root, scrape.ById(id))
				require.Truef(ok, "missing #%s", id)
				assert.Equal(want, scrape.Text(n))
			}

			// logout goes through Auth0 and drops the session
			resp, _ = testGet(t, noFollow, srv.URL+logoutPath)
			require.Equal(http.StatusFound, resp.StatusCode)
			assert.True(strings.HasPrefix(resp.Header.Get("Location"), tp.Addr()+auth0.LogoutPath))
			resp, _ = testGet(t, noFollow, resp.Header.Get("Location"))
			assert.Equal(http.StatusFound, resp.StatusCode)
			assert.Equal(srv.URL+auth0.DefaultOnLogoutRedirectTo, tp.LastLogoutReturnTo())

			resp, _ = testGet(t, noFollow, srv.URL+portalPath)
			assert.Equal(http.StatusFound, resp.StatusCode)
			assert.Equal(auth0.DefaultLoginRedirectOnFail, resp.Header.Get("Location"))
		})
	}
}

func TestRouter_AccessDenied(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	tp := auth0.StartTestProvider(t)
	tp.SetExpectedAuthCode("")
	cfg := tp.Config()
	cfg.LoginRedirectOnFail = "/failed"
	p, err := auth0.NewProvider(cfg)
	require.NoError(err)
	defer p.Done()
	sm, err := session.NewManager(session.NewMemoryStore())
	require.NoError(err)
	h, err := newRouter(cfg, p, sm, hclog.NewNullLogger())
	require.NoError(err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	_, noFollow := testClients(t, tp)
	resp, _ := testGet(t, noFollow, srv.URL+loginPath)
	require.Equal(http.StatusFound, resp.StatusCode)
	resp, _ = testGet(t, noFollow, resp.Header.Get("Location"))
	require.Equal(http.StatusFound, resp.StatusCode)
	cb := resp.Header.Get("Location")
	assert.Contains(cb, "error=access_denied")
	resp, _ = testGet(t, noFollow, cb)
	assert.Equal(http.StatusFound, resp.StatusCode)
	assert.Equal("/failed", resp.Header.Get("Location"))

	resp, _ = testGet(t, noFollow, srv.URL+portalPath)
	assert.Equal(http.StatusFound, resp.StatusCode)
	assert.Equal("/failed", resp.Header.Get("Location"))
}

func TestHomeHandler_NotFound(t *testing.T) {
	t.Parallel()
	sm, err := session.NewManager(session.NewMemoryStore())
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	homeHandler(sm, hclog.NewNullLogger())(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
