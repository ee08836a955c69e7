// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
auth0 is a package for logging users in with Auth0 using the OAuth2
authorization code flow.

Primary types provided by the package:

* Config: provides the Auth0 tenant and application settings, including the
paths used by the login flow and the id_token signing algorithm.

* Provider: the default Client.  It discovers the tenant's endpoints (or
derives them from the domain), builds authorization and logout URLs,
exchanges authorization codes for Tokens and fetches the user's profile.

* Tokens: the id_token, access_token and refresh_token returned by a code
exchange.  The token types are redacted when printed or marshaled to JSON.

* User: the user's Auth0 profile, built from the userinfo response merged
over the id_token claims.

* Err: an error with a Code and a Kind, so callers can tell parameter
violations from state violations and failed exchanges.

* TestProvider: a local Auth0 tenant for tests.  It supports discovery,
/authorize, /oauth/token, /userinfo, /.well-known/jwks.json and /v2/logout,
and signs id_tokens with HS256, HS384, HS512, RS256, RS384 or RS512.

Example:

	c, err := auth0.NewConfig("example.auth0.com", "your_client_id", "your_client_secret")
	if err != nil {
	  // handle error
	}
	c.RedirectURL = "https://app.example.com/callback"

	p, err := auth0.NewProvider(c)
	if err != nil {
	  // handle error
	}
	defer p.Done()

	authURL, err := p.AuthURL(ctx, "nonce=0123456789ABCDEF0123456789ABCDEF")
	...
	tokens, err := p.Exchange(ctx, code, c.RedirectURL)
	...
	user, err := p.UserProfile(ctx, tokens)
*/
package auth0
