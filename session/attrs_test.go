// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"testing"
	"time"

	"github.com/hashicorp/capweb/auth0"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAttrs(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	s, err := New(time.Hour)
	require.NoError(err)

	assert.Empty(State(s))
	assert.Nil(Tokens(s))
	assert.Nil(User(s))
	assert.Empty(PKCEVerifier(s))

	tk, err := auth0.NewTokens("id", &oauth2.Token{AccessToken: "access"})
	require.NoError(err)
	u, err := auth0.NewUser(map[string]interface{}{"sub": "auth0|1"})
	require.NoError(err)

	SetState(s, "nonce=ABC")
	SetTokens(s, tk)
	SetUser(s, u)
	SetPKCEVerifier(s, "verifier")

	assert.Equal("nonce=ABC", State(s))
	assert.Same(tk, Tokens(s))
	assert.Same(u, User(s))
	assert.Equal("verifier", PKCEVerifier(s))
	assert.ElementsMatch([]string{StateAttr, TokensAttr, UserAttr, PKCEVerifierAttr}, s.Keys())

	ClearPKCEVerifier(s)
	assert.Empty(PKCEVerifier(s))

	SetState(s, "")
	_, ok := s.Get(StateAttr)
	assert.False(ok)

	s.Set("other", "kept")
	ClearLogin(s)
	assert.Nil(Tokens(s))
	assert.Nil(User(s))
	assert.Equal([]string{"other"}, s.Keys())

	s.Set(TokensAttr, "not tokens")
	assert.Nil(Tokens(s))
	s.Set("other", nil)
	_, ok = s.Get("other")
	assert.False(ok)
}
