// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
filter provides middleware which restricts protected paths to logged in users.

A request is let through when its session holds the tokens stored by the
callback package and the id_token still verifies: signature, issuer, audience
and expiry.  The user is then available to downstream handlers:

	f, err := filter.New(cfg, sm, filter.WithLogger(logger))
	if err != nil {
	  // handle error
	}
	mux.Handle("/portal/", f.Handler(portal))

	func portal(w http.ResponseWriter, req *http.Request) {
	  u, _ := filter.UserFromContext(req.Context())
	  fmt.Fprintf(w, "hello %s", u.Name())
	}
*/
package filter
