// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import "context"

// Client is the token and profile capability the callback handler depends
// on.  Provider is the default implementation.
type Client interface {
	// Exchange trades an authorization code for tokens.  redirectURI must be
	// the redirect_uri sent with the authorization request.
	Exchange(ctx context.Context, code, redirectURI string, opt ...Option) (*Tokens, error)

	// UserProfile returns the profile of the user the tokens were issued to.
	UserProfile(ctx context.Context, t *Tokens) (*User, error)
}

var _ Client = (*Provider)(nil)
