// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package filter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/jwt"
	"github.com/hashicorp/capweb/session"
	"github.com/hashicorp/go-hclog"
	"github.com/ryanuber/go-glob"
)

// TokenVerifier verifies a raw id_token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (map[string]interface{}, error)
}

var _ TokenVerifier = (*jwt.Verifier)(nil)

// Filter guards protected paths.  A request to a protected path proceeds only
// when its session holds tokens whose id_token verifies.
type Filter struct {
	sm       *session.Manager
	verifier TokenVerifier
	patterns []string
	redirect string
	logger   hclog.Logger
}

// New creates a Filter.  Every check happens here, so a Filter that exists is
// ready to serve:
//   - the redirect path, the issuer and the client id are not empty
//   - the signing algorithm is supported
//   - HS256, HS384 and HS512 have a client secret, which is base64url decoded
//     when Base64EncodedSecret is set
//   - RS256, RS384 and RS512 have a readable PEM file at PublicKeyPath holding
//     an RSA public key
//
// Supported options: WithVerifier, WithVerifierOptions, WithPattern,
// WithRedirectOnAuthError, WithLogger
func New(cfg *auth0.Config, sm *session.Manager, opt ...Option) (*Filter, error) {
	const op = "filter.New"
	switch {
	case cfg == nil:
		return nil, fmt.Errorf("%s: config is nil: %w", op, auth0.ErrNilParameter)
	case sm == nil:
		return nil, fmt.Errorf("%s: session manager is nil: %w", op, auth0.ErrNilParameter)
	}
	opts := getOpts(opt...)

	redirect := opts.withRedirectOnAuthError
	if redirect == "" {
		redirect = cfg.LoginRedirectOnFail
	}
	patterns := opts.withPatterns
	if len(patterns) == 0 && cfg.SecuredRoute != "" {
		patterns = []string{cfg.SecuredRoute}
	}
	switch {
	case strings.TrimSpace(redirect) == "":
		return nil, fmt.Errorf("%s: redirect on auth error is empty: %w", op, auth0.ErrInvalidParameter)
	case strings.TrimSpace(cfg.Domain) == "" && strings.TrimSpace(cfg.Issuer) == "":
		return nil, fmt.Errorf("%s: issuer is empty: %w", op, auth0.ErrInvalidParameter)
	case strings.TrimSpace(cfg.ClientId) == "":
		return nil, fmt.Errorf("%s: client id is empty: %w", op, auth0.ErrInvalidParameter)
	case len(patterns) == 0:
		return nil, fmt.Errorf("%s: no protected path pattern: %w", op, auth0.ErrInvalidParameter)
	}

	verifier := opts.withVerifier
	if verifier == nil {
		v, err := newVerifier(cfg, opts.withVerifierOpts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		verifier = v
	}
	return &Filter{
		sm:       sm,
		verifier: verifier,
		patterns: patterns,
		redirect: redirect,
		logger:   opts.withLogger,
	}, nil
}

func newVerifier(cfg *auth0.Config, opt ...jwt.Option) (*jwt.Verifier, error) {
	const op = "filter.newVerifier"
	alg, err := cfg.Alg()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var key interface{}
	if alg.IsSymmetric() {
		if cfg.ClientSecret == "" {
			return nil, fmt.Errorf("%s: client secret is empty: %w", op, jwt.ErrInvalidKey)
		}
		if key, err = jwt.NewHMACKey(string(cfg.ClientSecret), cfg.Base64EncodedSecret); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		if cfg.PublicKeyPath == "" {
			return nil, fmt.Errorf("%s: public key path is empty: %w", op, jwt.ErrInvalidKey)
		}
		if key, err = jwt.ReadPublicKeyFile(cfg.PublicKeyPath); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	v, err := jwt.NewVerifier(alg, key, cfg.IssuerURL(), cfg.ClientId, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// Protected reports whether path matches one of the protected patterns.  A
// pattern ending in "/*" also matches the path without it, so "/portal/*"
// protects "/portal".
func (f *Filter) Protected(path string) bool {
	for _, p := range f.patterns {
		if glob.Glob(p, path) {
			return true
		}
		if prefix := strings.TrimSuffix(p, "/*"); prefix != p && path == prefix {
			return true
		}
	}
	return false
}

// Handler wraps next.  Requests to unprotected paths pass through untouched.
// Protected requests reach next only when the session's id_token verifies,
// and then carry the session's user in their context.  Every other request is
// redirected to the auth error path and next is never invoked.
func (f *Filter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		const op = "Filter.Handler"
		if !f.Protected(req.URL.Path) {
			next.ServeHTTP(w, req)
			return
		}
		u, err := f.authenticate(req)
		if err != nil {
			args := []interface{}{"op", op, "path", req.URL.Path, "error", err}
			var ve *jwt.VerificationError
			if errors.As(err, &ve) {
				args = append(args, "reason", ve.Reason.String())
			}
			f.logger.Debug("rejecting request", args...)
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, req, f.redirect, http.StatusFound)
			return
		}
		next.ServeHTTP(w, req.WithContext(NewContext(req.Context(), u)))
	})
}

func (f *Filter) authenticate(req *http.Request) (*auth0.User, error) {
	const op = "Filter.authenticate"
	s, err := f.sm.Load(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t := session.Tokens(s)
	switch {
	case t == nil:
		return nil, fmt.Errorf("%s: session has no tokens: %w", op, auth0.ErrNotFound)
	case t.IdToken() == "":
		return nil, fmt.Errorf("%s: %w", op, auth0.ErrMissingIdToken)
	case t.AccessToken() == "":
		return nil, fmt.Errorf("%s: %w", op, auth0.ErrMissingAccessToken)
	}
	claims, err := f.verifier.Verify(req.Context(), string(t.IdToken()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u := session.User(s); u != nil {
		return u, nil
	}
	u, err := auth0.NewUser(claims)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

type userKey struct{}

// NewContext returns a copy of ctx carrying u.
func NewContext(ctx context.Context, u *auth0.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the user attached by Filter.Handler.
func UserFromContext(ctx context.Context) (*auth0.User, bool) {
	u, ok := ctx.Value(userKey{}).(*auth0.User)
	return u, ok && u != nil
}
