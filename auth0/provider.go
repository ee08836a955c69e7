// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/capweb/jwt"
	sdkhttp "github.com/hashicorp/capweb/sdk/http"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

// Auth0 endpoint paths, relative to the tenant domain.
const (
	AuthorizePath = "/authorize"
	TokenPath     = "/oauth/token"
	UserInfoPath  = "/userinfo"
	JWKSPath      = "/.well-known/jwks.json"
	LogoutPath    = "/v2/logout"
)

// Provider talks to an Auth0 tenant: it builds authorization URLs, exchanges
// codes for verified tokens, and fetches user profiles.
type Provider struct {
	config      *Config
	alg         jwt.Alg
	client      *http.Client
	provider    *oidc.Provider
	userInfoURL string
	logger      hclog.Logger

	// hmacVerifier is set for HS256/384/512 tenants; RS tenants verify with
	// the JWKS published by Auth0.
	hmacVerifier *jwt.Verifier

	// backgroundCtx carries the http client and is used by the remote key
	// set, which outlives any single request.
	backgroundCtx       context.Context
	backgroundCtxCancel context.CancelFunc
}

// NewProvider creates a Provider.  Unless c.SkipDiscovery is set, the Auth0
// OIDC discovery document is fetched, so the tenant must be reachable.
//
// Supported options: WithLogger
func NewProvider(c *Config, opt ...Option) (*Provider, error) {
	const op = "auth0.NewProvider"
	if c == nil {
		return nil, NewError(ErrNilParameter, WithOp(op), WithKind(ErrParameterViolation), WithMsg("config is nil"))
	}
	if err := c.Validate(); err != nil {
		return nil, WrapError(err, WithOp(op), WithKind(ErrParameterViolation), WithMsg("invalid config"))
	}
	opts := getProviderOpts(opt...)
	alg, err := c.Alg()
	if err != nil {
		return nil, NewError(ErrInvalidParameter, WithOp(op), WithKind(ErrParameterViolation), WithWrap(err))
	}
	client, err := sdkhttp.NewClient(c.ProviderCA)
	if err != nil {
		return nil, NewError(ErrInvalidCACert, WithOp(op), WithKind(ErrParameterViolation), WithWrap(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Provider{
		config:              c,
		alg:                 alg,
		client:              client,
		logger:              opts.withLogger,
		backgroundCtx:       sdkhttp.ClientContext(ctx, client),
		backgroundCtxCancel: cancel,
	}

	if c.SkipDiscovery {
		d := c.DomainURL()
		pc := oidc.ProviderConfig{
			IssuerURL:   c.IssuerURL(),
			AuthURL:     d + AuthorizePath,
			TokenURL:    d + TokenPath,
			UserInfoURL: d + UserInfoPath,
			JWKSURL:     d + JWKSPath,
			Algorithms:  []string{string(alg)},
		}
		p.provider = pc.NewProvider(p.backgroundCtx)
		p.userInfoURL = pc.UserInfoURL
	} else {
		p.provider, err = oidc.NewProvider(p.backgroundCtx, c.IssuerURL())
		if err != nil {
			cancel()
			return nil, NewError(ErrInvalidIssuer, WithOp(op), WithKind(ErrParameterViolation), WithMsg("unable to discover %s", c.IssuerURL()), WithWrap(err))
		}
		var discovered struct {
			UserInfoURL string `json:"userinfo_endpoint"`
		}
		if err := p.provider.Claims(&discovered); err != nil {
			cancel()
			return nil, NewError(ErrInvalidIssuer, WithOp(op), WithKind(ErrInternal), WithMsg("unable to decode discovery document"), WithWrap(err))
		}
		p.userInfoURL = discovered.UserInfoURL
	}

	if alg.IsSymmetric() {
		key, err := jwt.NewHMACKey(string(c.ClientSecret), c.Base64EncodedSecret)
		if err == nil {
			p.hmacVerifier, err = jwt.NewVerifier(alg, key, c.IssuerURL(), c.ClientId)
		}
		if err != nil {
			cancel()
			return nil, NewError(ErrInvalidParameter, WithOp(op), WithKind(ErrParameterViolation), WithMsg("unable to create id_token verifier"), WithWrap(err))
		}
	}
	return p, nil
}

// Done releases the provider's background resources.
func (p *Provider) Done() {
	if p.backgroundCtxCancel != nil {
		p.backgroundCtxCancel()
	}
	p.client.CloseIdleConnections()
}

// HTTPClient returns the client used for every request to Auth0.
func (p *Provider) HTTPClient() *http.Client { return p.client }

// AuthURL returns the Auth0 /authorize URL which starts a login with the given
// state.  The redirect_uri comes from WithRedirectURL, or Config.RedirectURL.
//
// Supported options: WithRedirectURL, WithAudience, WithConnection,
// WithPrompt, WithNonce, WithPKCEVerifier, WithUILocales
func (p *Provider) AuthURL(_ context.Context, state string, opt ...Option) (string, error) {
	const op = "Provider.AuthURL"
	if state == "" {
		return "", NewError(ErrInvalidParameter, WithOp(op), WithKind(ErrParameterViolation), WithMsg("state is empty"))
	}
	opts := getAuthURLOpts(opt...)
	redirectURL := opts.withRedirectURL
	if redirectURL == "" {
		redirectURL = p.config.RedirectURL
	}
	if redirectURL == "" {
		return "", NewError(ErrInvalidParameter, WithOp(op), WithKind(ErrParameterViolation), WithMsg("redirect URL is empty"))
	}

	var params []oauth2.AuthCodeOption
	audience := opts.withAudience
	if audience == "" {
		audience = p.config.Audience
	}
	if audience != "" {
		params = append(params, oauth2.SetAuthURLParam("audience", audience))
	}
	if opts.withConnection != "" {
		params = append(params, oauth2.SetAuthURLParam("connection", opts.withConnection))
	}
	if opts.withPrompt != "" {
		params = append(params, oauth2.SetAuthURLParam("prompt", opts.withPrompt))
	}
	if opts.withNonce != "" {
		params = append(params, oauth2.SetAuthURLParam("nonce", opts.withNonce))
	}
	if len(opts.withUILocales) > 0 {
		locales := make([]string, 0, len(opts.withUILocales))
		for _, l := range opts.withUILocales {
			locales = append(locales, l.String())
		}
		params = append(params, oauth2.SetAuthURLParam("ui_locales", strings.Join(locales, " ")))
	}
	if opts.withPKCEVerifier != "" {
		params = append(params, oauth2.S256ChallengeOption(opts.withPKCEVerifier))
	}
	return p.oauth2Config(redirectURL).AuthCodeURL(state, params...), nil
}

// Exchange trades an authorization code for tokens and verifies the returned
// id_token.
//
// Supported options: WithPKCEVerifier, WithNonce
func (p *Provider) Exchange(ctx context.Context, code, redirectURI string, opt ...Option) (*Tokens, error) {
	const op = "Provider.Exchange"
	if code == "" {
		return nil, NewError(ErrInvalidParameter, WithOp(op), WithKind(ErrParameterViolation), WithMsg("authorization code is empty"))
	}
	if redirectURI == "" {
		return nil, NewError(ErrInvalidParameter, WithOp(op), WithKind(ErrParameterViolation), WithMsg("redirect URI is empty"))
	}
	opts := getExchangeOpts(opt...)

	var params []oauth2.AuthCodeOption
	if opts.withPKCEVerifier != "" {
		params = append(params, oauth2.VerifierOption(opts.withPKCEVerifier))
	}
	oauth2Token, err := p.oauth2Config(redirectURI).Exchange(p.clientContext(ctx), code, params...)
	if err != nil {
		return nil, NewError(ErrExchangeFailed, WithOp(op), WithKind(ErrExchangeFailure), WithWrap(err))
	}
	rawIdToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIdToken == "" {
		return nil, NewError(ErrMissingIdToken, WithOp(op), WithKind(ErrExchangeFailure), WithMsg("token response has no id_token"))
	}
	claims, err := p.verifyIdToken(ctx, rawIdToken)
	if err != nil {
		return nil, NewError(ErrIdTokenVerificationFailed, WithOp(op), WithKind(ErrExchangeFailure), WithWrap(err))
	}
	if opts.withNonce != "" {
		if got, _ := claims["nonce"].(string); got != opts.withNonce {
			return nil, NewError(ErrInvalidNonce, WithOp(op), WithKind(ErrStateViolation), WithMsg("id_token nonce does not match"))
		}
	}
	t, err := NewTokens(IdToken(rawIdToken), oauth2Token)
	if err != nil {
		return nil, WrapError(err, WithOp(op), WithKind(ErrInternal))
	}
	return t, nil
}

// UserProfile returns the user's profile from the userinfo endpoint, called
// with the access_token.  When the tenant doesn't advertise a userinfo
// endpoint, or there's no access_token, the profile is built from the
// id_token's claims.
func (p *Provider) UserProfile(ctx context.Context, t *Tokens) (*User, error) {
	const op = "Provider.UserProfile"
	if t == nil {
		return nil, NewError(ErrNilParameter, WithOp(op), WithKind(ErrParameterViolation), WithMsg("tokens are nil"))
	}
	idClaims := map[string]interface{}{}
	if err := t.IdToken().Claims(&idClaims); err != nil {
		return nil, NewError(ErrUserInfoFailed, WithOp(op), WithKind(ErrExchangeFailure), WithWrap(err))
	}

	if p.userInfoURL == "" || t.AccessToken() == "" {
		p.logger.Debug("building profile from id_token claims", "op", op, "userinfo_advertised", p.userInfoURL != "")
		u, err := NewUser(idClaims)
		if err != nil {
			return nil, NewError(ErrUserInfoFailed, WithOp(op), WithKind(ErrExchangeFailure), WithWrap(err))
		}
		return u, nil
	}

	info, err := p.provider.UserInfo(p.clientContext(ctx), t.StaticTokenSource())
	if err != nil {
		return nil, NewError(ErrUserInfoFailed, WithOp(op), WithKind(ErrExchangeFailure), WithWrap(err))
	}
	if sub := stringClaim(idClaims, "sub"); sub != "" && info.Subject != sub {
		return nil, NewError(ErrSubjectMismatch, WithOp(op), WithKind(ErrExchangeFailure))
	}
	infoClaims := map[string]interface{}{}
	if err := info.Claims(&infoClaims); err != nil {
		return nil, NewError(ErrUserInfoFailed, WithOp(op), WithKind(ErrExchangeFailure), WithWrap(err))
	}
	for k, v := range infoClaims {
		idClaims[k] = v
	}
	u, err := NewUser(idClaims)
	if err != nil {
		return nil, NewError(ErrUserInfoFailed, WithOp(op), WithKind(ErrExchangeFailure), WithWrap(err))
	}
	return u, nil
}

// LogoutURL returns the Auth0 /v2/logout URL, which ends the user's Auth0
// session and then redirects to returnTo.  returnTo must be registered as an
// allowed logout URL with Auth0.
func (p *Provider) LogoutURL(returnTo string) (string, error) {
	const op = "Provider.LogoutURL"
	u, err := url.Parse(p.config.DomainURL() + LogoutPath)
	if err != nil {
		return "", NewError(ErrInvalidParameter, WithOp(op), WithKind(ErrParameterViolation), WithWrap(err))
	}
	q := url.Values{}
	q.Set("client_id", p.config.ClientId)
	if returnTo != "" {
		q.Set("returnTo", returnTo)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *Provider) oauth2Config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.config.ClientId,
		ClientSecret: string(p.config.ClientSecret),
		RedirectURL:  redirectURL,
		Endpoint:     p.provider.Endpoint(),
		Scopes:       p.config.AllScopes(),
	}
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return sdkhttp.ClientContext(ctx, p.client)
}

func (p *Provider) verifyIdToken(ctx context.Context, raw string) (map[string]interface{}, error) {
	const op = "Provider.verifyIdToken"
	if p.hmacVerifier != nil {
		return p.hmacVerifier.Verify(ctx, raw)
	}
	v := p.provider.Verifier(&oidc.Config{
		ClientID:             p.config.ClientId,
		SupportedSigningAlgs: []string{string(p.alg)},
	})
	tok, err := v.Verify(p.clientContext(ctx), raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims := map[string]interface{}{}
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}
