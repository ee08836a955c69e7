// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"fmt"
	"strings"
)

// Alg represents a signing algorithm used to sign id_tokens.
type Alg string

// JOSE signing algorithm values as defined by RFC 7518.
// See: https://tools.ietf.org/html/rfc7518#section-3.1
const (
	HS256 Alg = "HS256" // HMAC using SHA-256
	HS384 Alg = "HS384" // HMAC using SHA-384
	HS512 Alg = "HS512" // HMAC using SHA-512
	RS256 Alg = "RS256" // RSASSA-PKCS-v1.5 using SHA-256
	RS384 Alg = "RS384" // RSASSA-PKCS-v1.5 using SHA-384
	RS512 Alg = "RS512" // RSASSA-PKCS-v1.5 using SHA-512
)

var supportedAlgorithms = map[Alg]bool{
	HS256: true,
	HS384: true,
	HS512: true,
	RS256: true,
	RS384: true,
	RS512: true,
}

// ParseAlg returns the supported Alg named by s.  Surrounding whitespace and
// case are ignored.
func ParseAlg(s string) (Alg, error) {
	const op = "jwt.ParseAlg"
	a := Alg(strings.ToUpper(strings.TrimSpace(s)))
	if !supportedAlgorithms[a] {
		return "", fmt.Errorf("%s: %w: %q", op, ErrUnsupportedAlg, s)
	}
	return a, nil
}

// IsSymmetric returns true for the HMAC algorithms, which verify with a shared
// secret rather than a public key.
func (a Alg) IsSymmetric() bool {
	switch a {
	case HS256, HS384, HS512:
		return true
	default:
		return false
	}
}
