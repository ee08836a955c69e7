// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"github.com/hashicorp/capweb/auth0"
)

// Session attribute names.
const (
	StateAttr        = "state"
	TokensAttr       = "tokens"
	UserAttr         = "auth0User"
	PKCEVerifierAttr = "pkceVerifier"
)

// State returns the session's login state, or "" when there's none.
func State(s *Session) string {
	v, _ := s.values[StateAttr].(string)
	return v
}

// SetState replaces the session's login state.
func SetState(s *Session, state string) {
	if state == "" {
		s.Delete(StateAttr)
		return
	}
	s.Set(StateAttr, state)
}

// Tokens returns the session's tokens, or nil.
func Tokens(s *Session) *auth0.Tokens {
	v, _ := s.values[TokensAttr].(*auth0.Tokens)
	return v
}

// SetTokens replaces the session's tokens.
func SetTokens(s *Session, t *auth0.Tokens) {
	if t == nil {
		s.Delete(TokensAttr)
		return
	}
	s.Set(TokensAttr, t)
}

// User returns the session's user profile, or nil.
func User(s *Session) *auth0.User {
	v, _ := s.values[UserAttr].(*auth0.User)
	return v
}

// SetUser replaces the session's user profile.
func SetUser(s *Session, u *auth0.User) {
	if u == nil {
		s.Delete(UserAttr)
		return
	}
	s.Set(UserAttr, u)
}

// PKCEVerifier returns the PKCE code verifier of a pending login, or "".
func PKCEVerifier(s *Session) string {
	v, _ := s.values[PKCEVerifierAttr].(string)
	return v
}

// SetPKCEVerifier stores the PKCE code verifier of a pending login.
func SetPKCEVerifier(s *Session, verifier string) {
	if verifier == "" {
		s.Delete(PKCEVerifierAttr)
		return
	}
	s.Set(PKCEVerifierAttr, verifier)
}

// ClearPKCEVerifier removes the PKCE code verifier.
func ClearPKCEVerifier(s *Session) {
	s.Delete(PKCEVerifierAttr)
}

// ClearLogin removes the login state, tokens, user and PKCE verifier.
func ClearLogin(s *Session) {
	for _, k := range []string{StateAttr, TokensAttr, UserAttr, PKCEVerifierAttr} {
		s.Delete(k)
	}
}
