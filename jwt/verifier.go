// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"gopkg.in/square/go-jose.v2/jwt"
)

// Verifier verifies compact serialized JWTs signed with a single configured
// algorithm and key, and validates the iss, aud and exp claims.
type Verifier struct {
	alg      Alg
	key      interface{}
	issuer   string
	clientID string
	leeway   time.Duration
	now      func() time.Time
}

// NewVerifier creates a Verifier.  For HS256/384/512 the key must be a
// non-empty []byte (see NewHMACKey).  For RS256/384/512 it must be an
// *rsa.PublicKey (see ReadPublicKeyFile).  Tokens must carry issuer as their
// iss claim and include clientID in their aud claim.
//
// Supported options: WithLeeway, WithNow
func NewVerifier(alg Alg, key interface{}, issuer, clientID string, opt ...Option) (*Verifier, error) {
	const op = "jwt.NewVerifier"
	if !supportedAlgorithms[alg] {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedAlg, alg)
	}
	switch k := key.(type) {
	case []byte:
		if !alg.IsSymmetric() {
			return nil, fmt.Errorf("%s: %s requires an RSA public key: %w", op, alg, ErrInvalidKey)
		}
		if len(k) == 0 {
			return nil, fmt.Errorf("%s: hmac key is empty: %w", op, ErrInvalidKey)
		}
	case *rsa.PublicKey:
		if alg.IsSymmetric() {
			return nil, fmt.Errorf("%s: %s requires an hmac secret: %w", op, alg, ErrInvalidKey)
		}
		if k == nil {
			return nil, fmt.Errorf("%s: public key is nil: %w", op, ErrInvalidKey)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported key type %T: %w", op, key, ErrInvalidKey)
	}
	if issuer == "" {
		return nil, fmt.Errorf("%s: issuer is empty: %w", op, ErrInvalidParameter)
	}
	if clientID == "" {
		return nil, fmt.Errorf("%s: client ID is empty: %w", op, ErrInvalidParameter)
	}
	opts := getVerifierOpts(opt...)
	if opts.withLeeway < 0 {
		return nil, fmt.Errorf("%s: leeway must not be negative: %w", op, ErrInvalidParameter)
	}
	return &Verifier{
		alg:      alg,
		key:      key,
		issuer:   issuer,
		clientID: clientID,
		leeway:   opts.withLeeway,
		now:      opts.withNow,
	}, nil
}

// Alg returns the algorithm the verifier accepts.
func (v *Verifier) Alg() Alg { return v.alg }

// Verify checks the token's signature and claims, and returns all of its
// claims on success.  Every failure is a *VerificationError, so
// errors.Is(err, ErrVerificationFailed) holds for all of them.
func (v *Verifier) Verify(_ context.Context, token string) (map[string]interface{}, error) {
	const op = "jwt.(Verifier).Verify"
	if token == "" {
		return nil, newVerificationError(ReasonMalformed, fmt.Errorf("%s: token is empty", op))
	}
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, newVerificationError(ReasonMalformed, fmt.Errorf("%s: %w", op, err))
	}
	if len(parsed.Headers) != 1 {
		return nil, newVerificationError(ReasonMalformed, fmt.Errorf("%s: expected exactly one signature", op))
	}
	if got := Alg(parsed.Headers[0].Algorithm); got != v.alg {
		return nil, newVerificationError(ReasonAlgorithm, fmt.Errorf("%s: token alg %q does not match %q", op, got, v.alg))
	}
	// signature first, with no destinations, so decode failures are not
	// reported as signature failures.
	if err := parsed.Claims(v.key); err != nil {
		return nil, newVerificationError(ReasonSignature, fmt.Errorf("%s: %w", op, err))
	}

	var std jwt.Claims
	all := map[string]interface{}{}
	if err := parsed.UnsafeClaimsWithoutVerification(&std, &all); err != nil {
		return nil, newVerificationError(ReasonMalformed, fmt.Errorf("%s: unable to decode claims: %w", op, err))
	}
	if std.Expiry == nil {
		return nil, newVerificationError(ReasonClaims, fmt.Errorf("%s: exp claim is missing", op))
	}
	expected := jwt.Expected{
		Issuer:   v.issuer,
		Audience: jwt.Audience{v.clientID},
		Time:     v.now(),
	}
	if err := std.ValidateWithLeeway(expected, v.leeway); err != nil {
		reason := ReasonClaims
		if errors.Is(err, jwt.ErrExpired) {
			reason = ReasonExpired
		}
		return nil, newVerificationError(reason, fmt.Errorf("%s: %w", op, err))
	}
	return all, nil
}
