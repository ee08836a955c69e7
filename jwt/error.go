// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrUnsupportedAlg     = errors.New("unsupported signing algorithm")
	ErrInvalidKey         = errors.New("invalid key")
	ErrVerificationFailed = errors.New("token verification failed")
)

// Reason classifies why a token failed verification.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonMalformed
	ReasonAlgorithm
	ReasonSignature
	ReasonClaims
	ReasonExpired
)

func (r Reason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed token"
	case ReasonAlgorithm:
		return "unexpected algorithm"
	case ReasonSignature:
		return "invalid signature"
	case ReasonClaims:
		return "invalid claims"
	case ReasonExpired:
		return "token expired"
	default:
		return "unknown"
	}
}

// VerificationError is the single error type returned by Verifier.Verify.
// Reason tags the failure, and Err carries the underlying cause.  The cause
// may describe the token, so it's meant for logs and not for end users.
type VerificationError struct {
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrVerificationFailed, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrVerificationFailed, e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrVerificationFailed, so callers can match any
// verification failure without caring about the Reason.
func (e *VerificationError) Is(target error) bool {
	return target == ErrVerificationFailed
}

func newVerificationError(r Reason, err error) *VerificationError {
	return &VerificationError{Reason: r, Err: err}
}
