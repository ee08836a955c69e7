// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package session provides server side sessions for the Auth0 login flow.  A
cookie carries only the session id; the login state, tokens and user profile
stay in a Store.

A request loads its own copy of the session, changes it, and commits the
changes with a single Save:

	s, err := mgr.Load(req)
	if err != nil {
		// handle error
	}
	session.SetState(s, st)
	if err := mgr.Save(req.Context(), w, s); err != nil {
		// handle error
	}
*/
package session
