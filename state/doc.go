// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
state is a package for the OAuth "state" parameter used to protect the
authorization code callback against CSRF.

A state is a query string like sequence of url encoded key/value entries, for
example:

	nonce=B4AD596E418F7CE02A703B42F60BAD8F
	returnTo=%2Fportal%2Fhome
	returnTo=%2Fportal%2Fhome&nonce=B4AD596E418F7CE02A703B42F60BAD8F

A nonce is added when a login is started and kept in the user's session. The
identity provider echoes the state back to the callback, where the nonce it
carries must match the session's nonce.  The nonce is removed once the callback
completes successfully, so it can only be used once.
*/
package state
