// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
login provides the handlers that start and end a user's Auth0 login.

Handler adds a nonce to the session's state and redirects to Auth0's
/authorize endpoint.  The callback package finishes the login.  Logout
destroys the session and optionally ends the Auth0 session as well.

	h, err := login.Handler(p, sm, login.ConfigOptions(cfg)...)
	if err != nil {
	  // handle error
	}
	mux.Handle("/login", h)
*/
package login
