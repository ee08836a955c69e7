// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Identity is one of the identity provider accounts linked to an Auth0 user.
type Identity struct {
	Connection string
	UserId     string
	Provider   string
	IsSocial   bool
}

// User is the immutable Auth0 profile of an authenticated user.
type User struct {
	claims     map[string]interface{}
	identities []Identity
}

// NewUser creates a User from profile claims, as returned by the userinfo
// endpoint or carried by an id_token.  The claims must identify the user with
// "sub" or "user_id".
func NewUser(claims map[string]interface{}) (*User, error) {
	const op = "auth0.NewUser"
	if claims == nil {
		return nil, fmt.Errorf("%s: claims are nil: %w", op, ErrNilParameter)
	}
	u := &User{claims: copyClaims(claims)}
	if u.UserId() == "" {
		return nil, fmt.Errorf("%s: claims have no sub or user_id: %w", op, ErrInvalidParameter)
	}
	if raw, ok := claims["identities"].([]interface{}); ok {
		for _, r := range raw {
			m, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			u.identities = append(u.identities, Identity{
				Connection: stringClaim(m, "connection"),
				UserId:     stringClaim(m, "user_id"),
				Provider:   stringClaim(m, "provider"),
				IsSocial:   boolClaim(m, "isSocial"),
			})
		}
	}
	return u, nil
}

// UserId returns the user's subject identifier.
func (u *User) UserId() string {
	if sub := stringClaim(u.claims, "sub"); sub != "" {
		return sub
	}
	return stringClaim(u.claims, "user_id")
}

func (u *User) Name() string        { return stringClaim(u.claims, "name") }
func (u *User) Nickname() string    { return stringClaim(u.claims, "nickname") }
func (u *User) Email() string       { return stringClaim(u.claims, "email") }
func (u *User) EmailVerified() bool { return boolClaim(u.claims, "email_verified") }
func (u *User) Picture() string     { return stringClaim(u.claims, "picture") }

// Identities returns a copy of the user's linked identities.
func (u *User) Identities() []Identity {
	if len(u.identities) == 0 {
		return nil
	}
	out := make([]Identity, len(u.identities))
	copy(out, u.identities)
	return out
}

// Claim returns a copy of a single profile claim.
func (u *User) Claim(key string) (interface{}, bool) {
	v, ok := u.claims[key]
	return copyClaim(v), ok
}

// Claims returns a deep copy of every profile claim.
func (u *User) Claims() map[string]interface{} {
	return copyClaims(u.claims)
}

func copyClaims(claims map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(claims))
	for k, v := range claims {
		out[k] = copyClaim(v)
	}
	return out
}

// copyClaim copies the JSON container types (objects and arrays) a claim can
// hold.  Scalars are returned as is.
func copyClaim(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyClaims(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = copyClaim(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the profile's claims.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.claims)
}

// stringClaim tolerates numeric ids, which some connections return.
func stringClaim(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func boolClaim(m map[string]interface{}, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}
