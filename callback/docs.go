// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package callback provides the http.HandlerFunc that completes an Auth0 login:
it checks the returned state against the session, exchanges the code for
tokens, fetches the user's profile and stores both in the session.

Example usage:

	p, err := auth0.NewProvider(cfg)
	if err != nil {
		// handle error
	}
	cb, err := callback.Handler(p, sessionManager, cfg, callback.WithLogger(logger))
	if err != nil {
		// handle error
	}
	http.Handle(cfg.LoginCallback, cb)
*/
package callback
