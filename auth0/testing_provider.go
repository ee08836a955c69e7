// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"bytes"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/capweb/internal/strutils"
	"github.com/hashicorp/capweb/jwt"
	"github.com/hashicorp/capweb/sdk/id"
	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2"
)

// TestProvider is a local TLS server that acts like an Auth0 tenant, which
// makes writing tests much easier.  It serves OIDC discovery, /authorize,
// /oauth/token, /userinfo, /.well-known/jwks.json and /v2/logout.
//
// By default id_tokens are signed HS256 with the (base64url encoded) client
// secret, the way Auth0 signs them for HS256 applications.  Use UseRSA for
// RS256/384/512.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string
	t          *testing.T

	mu                  sync.Mutex
	clientId            string
	clientSecret        string
	base64Secret        bool
	alg                 jwt.Alg
	rsaKey              *rsa.PrivateKey
	rsaPublicKeyPEM     string
	expectedAuthCode    string
	allowedRedirectURIs []string
	replySubject        string
	replyUserinfo       map[string]interface{}
	customClaims        map[string]interface{}
	customAudience      string
	idTokenExpiry       time.Duration
	nonce               string
	codeChallenge       string
	issuedAccessTokens  map[string]bool
	lastAuthRequest     url.Values
	lastLogoutReturnTo  string
	omitIdToken         bool
	disableUserInfo     bool
	disableToken        bool
	requirePKCE         bool
	tokenRequests       int
}

// StartTestProvider creates and starts a disposable TestProvider which is
// stopped when the test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	secret, err := id.NewToken(32)
	require.NoError(err)
	code, err := id.New("code")
	require.NoError(err)

	p := &TestProvider{
		t:                t,
		clientId:         "test-client-id",
		clientSecret:     secret,
		base64Secret:     true,
		alg:              jwt.HS256,
		expectedAuthCode: code,
		replySubject:     "auth0|5f7c8ec7c33c6c004bbafe82",
		replyUserinfo: map[string]interface{}{
			"name":           "Alice Doe",
			"nickname":       "alice",
			"email":          "alice@example.com",
			"email_verified": true,
			"picture":        "https://example.com/alice.png",
			"identities": []interface{}{
				map[string]interface{}{
					"connection": "Username-Password-Authentication",
					"user_id":    "5f7c8ec7c33c6c004bbafe82",
					"provider":   "auth0",
					"isSocial":   false,
				},
			},
		},
		idTokenExpiry:      5 * time.Minute,
		issuedAccessTokens: map[string]bool{},
	}

	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	var buf bytes.Buffer
	err = pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: p.httpServer.Certificate().Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// Addr returns the base URL of the running provider, e.g. https://127.0.0.1:4321
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// Domain returns the provider's "tenant domain", its host and port.
func (p *TestProvider) Domain() string { return strings.TrimPrefix(p.Addr(), "https://") }

// Issuer returns the iss claim of the provider's id_tokens.
func (p *TestProvider) Issuer() string { return p.Addr() + "/" }

// CACert returns the pem-encoded CA certificate used by the provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// ClientCreds returns the client id and secret the provider accepts.
func (p *TestProvider) ClientCreds() (clientId string, clientSecret ClientSecret) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clientId, ClientSecret(p.clientSecret)
}

// SetClientCreds configures the client id and secret the provider accepts.
// base64Encoded must be true when the secret is base64url encoded.
func (p *TestProvider) SetClientCreds(clientId, clientSecret string, base64Encoded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientId = clientId
	p.clientSecret = clientSecret
	p.base64Secret = base64Encoded
}

// UseRSA generates an RSA key which is used to sign id_tokens with alg and
// is published at /.well-known/jwks.json.
func (p *TestProvider) UseRSA(alg jwt.Alg) {
	p.t.Helper()
	require.False(p.t, alg.IsSymmetric(), "%s is not an RSA algorithm", alg)
	priv, pub := TestGenerateRSAKey(p.t)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alg = alg
	p.rsaKey = priv
	p.rsaPublicKeyPEM = pub
}

// UseHMAC signs id_tokens with alg and the client secret.  This is the
// default, with HS256.
func (p *TestProvider) UseHMAC(alg jwt.Alg) {
	p.t.Helper()
	require.True(p.t, alg.IsSymmetric(), "%s is not an HMAC algorithm", alg)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alg = alg
	p.rsaKey = nil
	p.rsaPublicKeyPEM = ""
}

// Alg returns the algorithm used to sign id_tokens.
func (p *TestProvider) Alg() jwt.Alg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alg
}

// PublicKeyPEM returns the pem-encoded RSA public key set by UseRSA.
func (p *TestProvider) PublicKeyPEM() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rsaPublicKeyPEM
}

// Config returns a Config for the provider's tenant.  RSA providers get their
// public key written to a temp file for PublicKeyPath.
func (p *TestProvider) Config() *Config {
	p.t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	c := DefaultConfig()
	c.Domain = p.Domain()
	c.ClientId = p.clientId
	c.ClientSecret = ClientSecret(p.clientSecret)
	c.Base64EncodedSecret = p.base64Secret
	c.SigningAlgorithm = string(p.alg)
	c.ProviderCA = p.caCert
	if p.rsaKey != nil {
		c.PublicKeyPath = TestWritePublicKeyFile(p.t, p.rsaPublicKeyPEM)
	}
	return c
}

// ExpectedAuthCode returns the code returned from /authorize and accepted by
// /oauth/token.
func (p *TestProvider) ExpectedAuthCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expectedAuthCode
}

// SetExpectedAuthCode configures the code returned from /authorize and
// accepted by /oauth/token.  An empty code makes /authorize deny every
// request.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetIdTokenNonce configures the nonce claim of issued id_tokens.  /authorize
// also sets it from its nonce parameter.
func (p *TestProvider) SetIdTokenNonce(nonce string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nonce = nonce
}

// SetAllowedRedirectURIs limits the redirect URIs accepted by /authorize and
// /oauth/token.  By default any redirect URI is allowed.
func (p *TestProvider) SetAllowedRedirectURIs(uris []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allowedRedirectURIs = uris
}

// SetSubject configures the sub claim of id_tokens and userinfo replies.
func (p *TestProvider) SetSubject(sub string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replySubject = sub
}

// SetUserInfoReply configures the claims returned from /userinfo.  The sub
// claim is always the provider's subject.
func (p *TestProvider) SetUserInfoReply(claims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replyUserinfo = claims
}

// SetCustomClaims lets you set claims to add to the issued id_tokens.
func (p *TestProvider) SetCustomClaims(customClaims map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customClaims = customClaims
}

// SetCustomAudience configures the aud claim of issued id_tokens.
func (p *TestProvider) SetCustomAudience(customAudience string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customAudience = customAudience
}

// SetIdTokenExpiry configures how long issued id_tokens are valid.  A
// negative duration issues expired tokens.
func (p *TestProvider) SetIdTokenExpiry(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idTokenExpiry = d
}

// OmitIdTokens forces an error state where /oauth/token does not return an
// id_token.
func (p *TestProvider) OmitIdTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitIdToken = true
}

// DisableUserInfo makes /userinfo return 404 and omits it from the
// discovery document.
func (p *TestProvider) DisableUserInfo() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disableUserInfo = true
}

// DisableTokenEndpoint makes /oauth/token fail with a server_error.
func (p *TestProvider) DisableTokenEndpoint() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disableToken = true
}

// RequirePKCE makes /authorize reject requests without an S256 code
// challenge.
func (p *TestProvider) RequirePKCE() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requirePKCE = true
}

// LastAuthRequest returns the query of the last /authorize request.
func (p *TestProvider) LastAuthRequest() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := url.Values{}
	for k, v := range p.lastAuthRequest {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// LastLogoutReturnTo returns the returnTo of the last /v2/logout request.
func (p *TestProvider) LastLogoutReturnTo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLogoutReturnTo
}

// TokenRequests returns the number of requests /oauth/token has served.
func (p *TestProvider) TokenRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenRequests
}

// IssueIdToken returns an id_token signed the way the provider signs them.
// overrides replace the default claims; a nil value removes the claim.
func (p *TestProvider) IssueIdToken(overrides map[string]interface{}) string {
	p.t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	claims := p.idTokenClaims()
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	raw, err := p.signIdToken(claims)
	require.NoError(p.t, err)
	return raw
}

// idTokenClaims must be called with the lock held.
func (p *TestProvider) idTokenClaims() map[string]interface{} {
	now := time.Now()
	aud := p.clientId
	if p.customAudience != "" {
		aud = p.customAudience
	}
	claims := map[string]interface{}{
		"iss": p.Issuer(),
		"sub": p.replySubject,
		"aud": aud,
		"iat": now.Unix(),
		"exp": now.Add(p.idTokenExpiry).Unix(),
	}
	for _, k := range []string{"name", "nickname", "email", "email_verified", "picture"} {
		if v, ok := p.replyUserinfo[k]; ok {
			claims[k] = v
		}
	}
	if p.nonce != "" {
		claims["nonce"] = p.nonce
	}
	for k, v := range p.customClaims {
		claims[k] = v
	}
	return claims
}

// signIdToken must be called with the lock held.
func (p *TestProvider) signIdToken(claims map[string]interface{}) (string, error) {
	if p.rsaKey != nil {
		return signJWT(p.rsaKey, p.alg, claims)
	}
	key, err := jwt.NewHMACKey(p.clientSecret, p.base64Secret)
	if err != nil {
		return "", err
	}
	return signJWT(key, p.alg, claims)
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

func (p *TestProvider) writeAuthErrorResponse(w http.ResponseWriter, req *http.Request, errorCode, errorMessage string) {
	qv := req.URL.Query()
	redirectURI := qv.Get("redirect_uri")
	if redirectURI == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	q := url.Values{}
	q.Set("state", qv.Get("state"))
	q.Set("error", errorCode)
	if errorMessage != "" {
		q.Set("error_description", errorMessage)
	}
	http.Redirect(w, req, redirectURI+"?"+q.Encode(), http.StatusFound)
}

func (p *TestProvider) writeTokenErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string) {
	body := struct {
		Code string `json:"error"`
		Desc string `json:"error_description,omitempty"`
	}{
		Code: errorCode,
		Desc: errorMessage,
	}
	w.WriteHeader(statusCode)
	_ = p.writeJSON(w, &body)
}

func (p *TestProvider) redirectAllowed(uri string) bool {
	return len(p.allowedRedirectURIs) == 0 || strutils.StrListContains(p.allowedRedirectURIs, uri)
}

// clientAuthenticated accepts client_secret_basic and client_secret_post.
func (p *TestProvider) clientAuthenticated(req *http.Request) bool {
	clientId, clientSecret, ok := req.BasicAuth()
	if ok {
		clientId, _ = url.QueryUnescape(clientId)
		clientSecret, _ = url.QueryUnescape(clientSecret)
	} else {
		clientId = req.PostFormValue("client_id")
		clientSecret = req.PostFormValue("client_secret")
	}
	return clientId == p.clientId && clientSecret == p.clientSecret
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch req.URL.Path {
	case "/.well-known/openid-configuration":
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		reply := struct {
			Issuer           string   `json:"issuer"`
			AuthEndpoint     string   `json:"authorization_endpoint"`
			TokenEndpoint    string   `json:"token_endpoint"`
			JWKSURI          string   `json:"jwks_uri"`
			UserinfoEndpoint string   `json:"userinfo_endpoint,omitempty"`
			Algorithms       []string `json:"id_token_signing_alg_values_supported"`
		}{
			Issuer:           p.Issuer(),
			AuthEndpoint:     p.Addr() + AuthorizePath,
			TokenEndpoint:    p.Addr() + TokenPath,
			JWKSURI:          p.Addr() + JWKSPath,
			UserinfoEndpoint: p.Addr() + UserInfoPath,
			Algorithms:       []string{string(p.alg)},
		}
		if p.disableUserInfo {
			reply.UserinfoEndpoint = ""
		}
		_ = p.writeJSON(w, &reply)

	case AuthorizePath:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		qv := req.URL.Query()
		p.lastAuthRequest = qv

		redirectURI := qv.Get("redirect_uri")
		switch {
		case redirectURI == "":
			w.WriteHeader(http.StatusBadRequest)
			return
		case !p.redirectAllowed(redirectURI):
			w.WriteHeader(http.StatusBadRequest)
			return
		case qv.Get("response_type") != "code":
			p.writeAuthErrorResponse(w, req, "unsupported_response_type", "")
			return
		case qv.Get("client_id") != p.clientId:
			p.writeAuthErrorResponse(w, req, "unauthorized_client", "unknown client_id")
			return
		case !strutils.StrListContains(strings.Fields(qv.Get("scope")), "openid"):
			p.writeAuthErrorResponse(w, req, "invalid_scope", "openid scope is required")
			return
		case qv.Get("state") == "":
			p.writeAuthErrorResponse(w, req, "invalid_request", "missing state parameter")
			return
		case p.expectedAuthCode == "":
			p.writeAuthErrorResponse(w, req, "access_denied", "user denied access")
			return
		}

		p.codeChallenge = ""
		if challenge := qv.Get("code_challenge"); challenge != "" {
			if qv.Get("code_challenge_method") != "S256" {
				p.writeAuthErrorResponse(w, req, "invalid_request", "code_challenge_method must be S256")
				return
			}
			p.codeChallenge = challenge
		} else if p.requirePKCE {
			p.writeAuthErrorResponse(w, req, "invalid_request", "code_challenge is required")
			return
		}
		p.nonce = qv.Get("nonce")

		q := url.Values{}
		q.Set("code", p.expectedAuthCode)
		q.Set("state", qv.Get("state"))
		http.Redirect(w, req, redirectURI+"?"+q.Encode(), http.StatusFound)

	case TokenPath:
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.tokenRequests++
		if err := req.ParseForm(); err != nil {
			p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
			return
		}
		switch {
		case p.disableToken:
			p.writeTokenErrorResponse(w, http.StatusInternalServerError, "server_error", "token endpoint is disabled")
			return
		case !p.clientAuthenticated(req):
			p.writeTokenErrorResponse(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
			return
		case req.PostFormValue("grant_type") != "authorization_code":
			p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "bad grant_type")
			return
		case !p.redirectAllowed(req.PostFormValue("redirect_uri")):
			p.writeTokenErrorResponse(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not allowed")
			return
		case p.expectedAuthCode == "" || req.PostFormValue("code") != p.expectedAuthCode:
			p.writeTokenErrorResponse(w, http.StatusForbidden, "invalid_grant", "unexpected auth code")
			return
		}
		if p.codeChallenge != "" {
			sum := sha256.Sum256([]byte(req.PostFormValue("code_verifier")))
			if base64.RawURLEncoding.EncodeToString(sum[:]) != p.codeChallenge {
				p.writeTokenErrorResponse(w, http.StatusForbidden, "invalid_grant", "code_verifier does not match code_challenge")
				return
			}
		}

		accessToken, err := id.NewToken(24)
		if err != nil {
			p.writeTokenErrorResponse(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		p.issuedAccessTokens[accessToken] = true

		reply := struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			ExpiresIn   int    `json:"expires_in"`
			IdToken     string `json:"id_token,omitempty"`
		}{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		}
		if !p.omitIdToken {
			reply.IdToken, err = p.signIdToken(p.idTokenClaims())
			if err != nil {
				p.writeTokenErrorResponse(w, http.StatusInternalServerError, "server_error", err.Error())
				return
			}
		}
		_ = p.writeJSON(w, &reply)

	case UserInfoPath:
		if p.disableUserInfo {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodGet && req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		bearer := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
		if !p.issuedAccessTokens[bearer] {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		reply := map[string]interface{}{}
		for k, v := range p.replyUserinfo {
			reply[k] = v
		}
		reply["sub"] = p.replySubject
		_ = p.writeJSON(w, reply)

	case JWKSPath:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		keys := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{}}
		if p.rsaKey != nil {
			keys.Keys = append(keys.Keys, jose.JSONWebKey{
				Key:       &p.rsaKey.PublicKey,
				Algorithm: string(p.alg),
				Use:       "sig",
			})
		}
		_ = p.writeJSON(w, &keys)

	case LogoutPath:
		qv := req.URL.Query()
		if qv.Get("client_id") != p.clientId {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		p.lastLogoutReturnTo = qv.Get("returnTo")
		if p.lastLogoutReturnTo != "" {
			http.Redirect(w, req, p.lastLogoutReturnTo, http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
