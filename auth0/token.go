// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// expirySkew is subtracted from an access token's expiry when checking it.
const expirySkew = 10 * time.Second

// IdToken is an oidc id_token.
// See https://openid.net/specs/openid-connect-core-1_0.html#IDToken.
type IdToken string

// RedactedIdToken is the redacted string or json for an oidc id_token.
const RedactedIdToken = "[REDACTED: id_token]"

// String will redact the token.
func (t IdToken) String() string { return RedactedIdToken }

// MarshalJSON will redact the token.
func (t IdToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedIdToken) }

// Claims decodes the id_token's claims into claims WITHOUT verifying its
// signature.  Only use it on tokens that were already verified.
func (t IdToken) Claims(claims interface{}) error {
	const op = "IdToken.Claims"
	if t == "" {
		return fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if claims == nil {
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	parsed, err := jwt.ParseSigned(string(t))
	if err != nil {
		return fmt.Errorf("%s: unable to parse id_token: %w: %s", op, ErrInvalidParameter, err)
	}
	if err := parsed.UnsafeClaimsWithoutVerification(claims); err != nil {
		return fmt.Errorf("%s: unable to decode id_token claims: %w: %s", op, ErrInvalidParameter, err)
	}
	return nil
}

// AccessToken is an oauth access_token.
type AccessToken string

// RedactedAccessToken is the redacted string or json for an oauth access_token.
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token.
func (t AccessToken) String() string { return RedactedAccessToken }

// MarshalJSON will redact the token.
func (t AccessToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedAccessToken) }

// RefreshToken is an oauth refresh_token.
type RefreshToken string

// RedactedRefreshToken is the redacted string or json for an oauth refresh_token.
const RedactedRefreshToken = "[REDACTED: refresh_token]"

// String will redact the token.
func (t RefreshToken) String() string { return RedactedRefreshToken }

// MarshalJSON will redact the token.
func (t RefreshToken) MarshalJSON() ([]byte, error) { return json.Marshal(RedactedRefreshToken) }

// Tokens is the immutable bundle returned by a successful code exchange.
type Tokens struct {
	idToken      IdToken
	accessToken  AccessToken
	refreshToken RefreshToken
	tokenType    string
	expiry       time.Time
}

// NewTokens creates a new Tokens from the id_token and oauth2 token returned
// by a code exchange.
func NewTokens(i IdToken, t *oauth2.Token) (*Tokens, error) {
	const op = "auth0.NewTokens"
	if t == nil {
		return nil, fmt.Errorf("%s: oauth2 token is nil: %w", op, ErrNilParameter)
	}
	if i == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingIdToken)
	}
	return &Tokens{
		idToken:      i,
		accessToken:  AccessToken(t.AccessToken),
		refreshToken: RefreshToken(t.RefreshToken),
		tokenType:    t.Type(),
		expiry:       t.Expiry,
	}, nil
}

// IdToken returns the id_token.
func (t *Tokens) IdToken() IdToken { return t.idToken }

// AccessToken returns the access_token.
func (t *Tokens) AccessToken() AccessToken { return t.accessToken }

// RefreshToken returns the refresh_token, which is empty unless the
// offline_access scope was requested.
func (t *Tokens) RefreshToken() RefreshToken { return t.refreshToken }

// Type returns the access_token's type, e.g. "Bearer".
func (t *Tokens) Type() string { return t.tokenType }

// Expiry returns the access_token's expiry.  A zero time means it doesn't
// expire.
func (t *Tokens) Expiry() time.Time { return t.expiry }

// Expired reports whether the access_token has expired, allowing for a small
// clock skew.
func (t *Tokens) Expired() bool {
	if t.expiry.IsZero() {
		return false
	}
	return t.expiry.Round(0).Before(time.Now().Add(expirySkew))
}

// Valid reports whether the bundle holds an id_token and an unexpired
// access_token.
func (t *Tokens) Valid() bool {
	if t == nil {
		return false
	}
	if t.idToken == "" || t.accessToken == "" {
		return false
	}
	return !t.Expired()
}

// StaticTokenSource returns an oauth2.TokenSource which always returns the
// bundle's access_token.
func (t *Tokens) StaticTokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken:  string(t.accessToken),
		TokenType:    t.tokenType,
		RefreshToken: string(t.refreshToken),
		Expiry:       t.expiry,
	})
}
