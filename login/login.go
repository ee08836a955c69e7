// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package login

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/callback"
	"github.com/hashicorp/capweb/session"
	"github.com/hashicorp/capweb/state"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"
)

// AuthURLer builds the provider's authorization URL for a state.
type AuthURLer interface {
	AuthURL(ctx context.Context, state string, opt ...auth0.Option) (string, error)
}

// LogoutURLer builds the provider's logout URL.
type LogoutURLer interface {
	LogoutURL(returnTo string) (string, error)
}

var (
	_ AuthURLer   = (*auth0.Provider)(nil)
	_ LogoutURLer = (*auth0.Provider)(nil)
)

// Handler creates a handler which starts a login.  It adds a nonce to the
// session's state, saves the session and redirects the user to Auth0.  An
// existing nonce is reused, so a user with two login tabs open can complete
// either one.
//
// Supported options: WithPKCE, WithCallbackPath, WithRedirectURL,
// WithAudience, WithConnection, WithUILocales, WithAcceptLanguage,
// WithoutNonce, WithLogger
func Handler(p AuthURLer, sm *session.Manager, opt ...Option) (http.HandlerFunc, error) {
	const op = "login.Handler"
	switch {
	case p == nil:
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("provider is nil"))
	case sm == nil:
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("session manager is nil"))
	}
	opts := getLoginOpts(opt...)
	logger := opts.withLogger

	return func(w http.ResponseWriter, req *http.Request) {
		const op = "login.Handler"
		ctx := req.Context()
		s, err := sm.Load(req)
		if err != nil {
			logger.Error("unable to load session", "op", op, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		st, nonce, err := state.EnsureNonce(session.State(s))
		if err != nil {
			logger.Error("unable to add nonce to state", "op", op, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		var authOpts []auth0.Option
		switch {
		case opts.withRedirectURL != "":
			authOpts = append(authOpts, auth0.WithRedirectURL(opts.withRedirectURL))
		case opts.withCallbackPath != "":
			authOpts = append(authOpts, auth0.WithRedirectURL(callback.AbsoluteURL(req, opts.withCallbackPath)))
		}
		if opts.withAudience != "" {
			authOpts = append(authOpts, auth0.WithAudience(opts.withAudience))
		}
		if opts.withConnection != "" {
			authOpts = append(authOpts, auth0.WithConnection(opts.withConnection))
		}
		if locales := uiLocales(req, opts); len(locales) > 0 {
			authOpts = append(authOpts, auth0.WithUILocales(locales...))
		}
		if !opts.withoutNonce {
			authOpts = append(authOpts, auth0.WithNonce(nonce))
		}
		if opts.withPKCE {
			verifier := oauth2.GenerateVerifier()
			session.SetPKCEVerifier(s, verifier)
			authOpts = append(authOpts, auth0.WithPKCEVerifier(verifier))
		}

		authURL, err := p.AuthURL(ctx, st, authOpts...)
		if err != nil {
			logger.Error("unable to create authorization URL", "op", op, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		session.SetState(s, st)
		if err := sm.Save(ctx, w, s); err != nil {
			logger.Error("unable to save session", "op", op, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, req, authURL, http.StatusFound)
	}, nil
}

func uiLocales(req *http.Request, opts loginOptions) []language.Tag {
	if opts.withAcceptLang {
		if tags, _, err := language.ParseAcceptLanguage(req.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
			return tags
		}
	}
	return opts.withUILocales
}

// Logout creates a handler which destroys the session, dropping its tokens,
// user and state, and redirects to redirectTo.  With WithProviderLogout the
// redirect goes through the provider's logout endpoint first, which returns
// the user to redirectTo made absolute on the request's host.
//
// Supported options: WithProviderLogout, WithLogger
func Logout(sm *session.Manager, redirectTo string, opt ...Option) (http.HandlerFunc, error) {
	const op = "login.Logout"
	switch {
	case sm == nil:
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("session manager is nil"))
	case redirectTo == "":
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("redirect is empty"))
	}
	opts := getLogoutOpts(opt...)
	logger := opts.withLogger

	return func(w http.ResponseWriter, req *http.Request) {
		const op = "login.Logout"
		if err := sm.Destroy(w, req); err != nil {
			logger.Error("unable to destroy session", "op", op, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		target := redirectTo
		if opts.withProviderLogout != nil {
			returnTo := redirectTo
			if strings.HasPrefix(returnTo, "/") {
				returnTo = callback.AbsoluteURL(req, returnTo)
			}
			u, err := opts.withProviderLogout.LogoutURL(returnTo)
			if err != nil {
				logger.Error("unable to create logout URL", "op", op, "error", err)
			} else {
				target = u
			}
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, req, target, http.StatusFound)
	}, nil
}
