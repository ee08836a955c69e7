// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/go-hclog"
)

// SuccessResponseFunc is used by AuthCode to create a http response when the
// callback is successful.
//
// The function state parameter will contain the state that was returned as
// part of a successful authentication response.  The tokens and user are the
// result of a successful token exchange and profile fetch, and are already
// stored in the session.  The function should use the http.ResponseWriter to
// send back whatever content (headers, html, JSON, etc) it wishes to the
// client that originated the login.
type SuccessResponseFunc func(state string, t *auth0.Tokens, u *auth0.User, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by AuthCode to create a http response when the
// callback fails.
//
// The function receives the state returned as part of the authentication
// response.  It also gets parameters for the authentication error response
// and/or the callback error raised while processing the request.  Errors may
// describe internals, so they should be logged rather than shown to users.
type ErrorResponseFunc func(state string, respErr *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request)

// AuthenErrorResponse represents Oauth2 error responses.  See:
// https://openid.net/specs/openid-connect-core-1_0.html#AuthError
type AuthenErrorResponse struct {
	Error       string
	Description string
	Uri         string
}

// RedirectOnSuccess returns a SuccessResponseFunc which redirects to path.
func RedirectOnSuccess(path string) SuccessResponseFunc {
	return func(_ string, _ *auth0.Tokens, _ *auth0.User, w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, req, path, http.StatusFound)
	}
}

// RedirectOnError returns an ErrorResponseFunc which logs the failure and
// redirects to path.  A nil logger discards the log.
func RedirectOnError(path string, logger hclog.Logger) ErrorResponseFunc {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return func(_ string, respErr *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
		if respErr != nil {
			logger.Warn("authentication error response", "path", req.URL.Path, "error", respErr.Error, "description", respErr.Description, "uri", respErr.Uri)
		}
		if e != nil {
			logger.Error("login callback failed", "path", req.URL.Path, "kind", auth0.KindOf(e).String(), "error", e)
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, req, path, http.StatusFound)
	}
}
