// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"
	"strings"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/session"
	"github.com/hashicorp/capweb/state"
)

// AuthCode creates an Auth0 authorization code callback handler.  The
// request's state must carry the nonce of the state stored in the request's
// session.  On success the tokens and user profile are stored in the session,
// the nonce is removed from its state, and the session is saved exactly once
// under a new session id.  Nothing is saved on failure.
//
// The SuccessResponseFunc is used to create a response when callback is
// successful. The ErrorResponseFunc is to create a response when the callback
// fails.
//
// Supported options: WithRedirectURL, WithoutIdTokenNonce
func AuthCode(c auth0.Client, sm *session.Manager, sFn SuccessResponseFunc, eFn ErrorResponseFunc, opt ...Option) (http.HandlerFunc, error) {
	const op = "callback.AuthCode"
	switch {
	case c == nil:
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("client is nil"))
	case sm == nil:
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("session manager is nil"))
	case sFn == nil:
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("success response func is nil"))
	case eFn == nil:
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("error response func is nil"))
	}
	opts := getOpts(opt...)

	return func(w http.ResponseWriter, req *http.Request) {
		const op = "callback.AuthCode"
		ctx := req.Context()

		// get parameters from either the body or query parameters.
		// FormValue prioritizes body values, if found
		reqState := req.FormValue("state")

		if errParam := req.FormValue("error"); errParam != "" {
			reqError := &AuthenErrorResponse{
				Error:       errParam,
				Description: req.FormValue("error_description"),
				Uri:         req.FormValue("error_uri"),
			}
			eFn(reqState, reqError, nil, w, req)
			return
		}

		s, err := sm.Load(req)
		if err != nil {
			responseErr := auth0.NewError(auth0.ErrCodeUnknown, auth0.WithOp(op), auth0.WithKind(auth0.ErrInternal), auth0.WithMsg("unable to load session"), auth0.WithWrap(err))
			eFn(reqState, nil, responseErr, w, req)
			return
		}
		stored := session.State(s)
		storedNonce, found, err := state.Nonce(stored)
		if err != nil || !found || !state.MatchNonce(stored, reqState) {
			responseErr := auth0.NewError(auth0.ErrResponseStateInvalid, auth0.WithOp(op), auth0.WithKind(auth0.ErrStateViolation), auth0.WithMsg("response state nonce does not match the session"))
			eFn(reqState, nil, responseErr, w, req)
			return
		}

		reqCode := req.FormValue("code")
		if reqCode == "" {
			responseErr := auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("authorization code is missing"))
			eFn(reqState, nil, responseErr, w, req)
			return
		}

		var exchangeOpts []auth0.Option
		if !opts.withoutTokenNonce {
			exchangeOpts = append(exchangeOpts, auth0.WithNonce(storedNonce))
		}
		if v := session.PKCEVerifier(s); v != "" {
			exchangeOpts = append(exchangeOpts, auth0.WithPKCEVerifier(v))
		}
		redirectURI := opts.withRedirectURL
		if redirectURI == "" {
			redirectURI = RequestURL(req)
		}
		tokens, err := c.Exchange(ctx, reqCode, redirectURI, exchangeOpts...)
		if err != nil {
			responseErr := auth0.WrapError(err, auth0.WithOp(op), auth0.WithKind(kindOr(err, auth0.ErrExchangeFailure)), auth0.WithMsg("unable to exchange authorization code"))
			eFn(reqState, nil, responseErr, w, req)
			return
		}

		user, err := c.UserProfile(ctx, tokens)
		if err != nil {
			responseErr := auth0.WrapError(err, auth0.WithOp(op), auth0.WithKind(kindOr(err, auth0.ErrExchangeFailure)), auth0.WithMsg("unable to fetch user profile"))
			eFn(reqState, nil, responseErr, w, req)
			return
		}

		remaining, err := state.RemoveNonce(stored)
		if err != nil {
			responseErr := auth0.NewError(auth0.ErrCodeUnknown, auth0.WithOp(op), auth0.WithKind(auth0.ErrInternal), auth0.WithMsg("unable to remove nonce from state"), auth0.WithWrap(err))
			eFn(reqState, nil, responseErr, w, req)
			return
		}
		session.SetTokens(s, tokens)
		session.SetUser(s, user)
		session.SetState(s, remaining)
		session.ClearPKCEVerifier(s)
		if err := sm.Renew(ctx, w, s); err != nil {
			responseErr := auth0.NewError(auth0.ErrCodeUnknown, auth0.WithOp(op), auth0.WithKind(auth0.ErrInternal), auth0.WithMsg("unable to save session"), auth0.WithWrap(err))
			eFn(reqState, nil, responseErr, w, req)
			return
		}
		sFn(reqState, tokens, user, w, req)
	}, nil
}

// Handler creates an AuthCode handler which redirects to
// cfg.LoginRedirectOnSuccess on success and to cfg.LoginRedirectOnFail on
// failure.  cfg.RedirectURL, when set, is used as the exchange redirect_uri.
//
// Supported options: WithRedirectURL, WithLogger, WithoutIdTokenNonce
func Handler(c auth0.Client, sm *session.Manager, cfg *auth0.Config, opt ...Option) (http.HandlerFunc, error) {
	const op = "callback.Handler"
	if cfg == nil {
		return nil, auth0.NewError(auth0.ErrInvalidParameter, auth0.WithOp(op), auth0.WithKind(auth0.ErrParameterViolation), auth0.WithMsg("config is nil"))
	}
	opts := getOpts(opt...)
	if cfg.RedirectURL != "" && opts.withRedirectURL == "" {
		opt = append(opt, WithRedirectURL(cfg.RedirectURL))
	}
	return AuthCode(
		c,
		sm,
		RedirectOnSuccess(cfg.LoginRedirectOnSuccess),
		RedirectOnError(cfg.LoginRedirectOnFail, opts.withLogger),
		opt...,
	)
}

// RequestURL returns the absolute URL of the request without its query.
func RequestURL(req *http.Request) string {
	return AbsoluteURL(req, req.URL.Path)
}

// AbsoluteURL returns the absolute URL of path on the request's host.  The
// scheme is https when the request came over TLS or X-Forwarded-Proto says so.
func AbsoluteURL(req *http.Request, path string) string {
	scheme := "http"
	if req.TLS != nil || strings.EqualFold(req.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + req.Host + path
}

func kindOr(err error, def auth0.Kind) auth0.Kind {
	if k := auth0.KindOf(err); k != auth0.ErrOther {
		return k
	}
	return def
}
