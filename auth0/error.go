// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCodeUnknown               = errors.New("unknown error")
	ErrInvalidParameter          = errors.New("invalid parameter")
	ErrNilParameter              = errors.New("nil parameter")
	ErrInvalidCACert             = errors.New("invalid CA certificate")
	ErrInvalidIssuer             = errors.New("invalid issuer")
	ErrResponseStateInvalid      = errors.New("auth0 response state")
	ErrMissingIdToken            = errors.New("id_token is missing")
	ErrMissingAccessToken        = errors.New("access_token is missing")
	ErrIdTokenVerificationFailed = errors.New("id_token verification failed")
	ErrInvalidNonce              = errors.New("invalid nonce")
	ErrExchangeFailed            = errors.New("code exchange failed")
	ErrUserInfoFailed            = errors.New("user info failed")
	ErrSubjectMismatch           = errors.New("user info subject does not match id_token subject")
	ErrLoginFailed               = errors.New("login failed")
	ErrNotFound                  = errors.New("not found")
)

// Kind classifies an Err so callers can decide how to respond without
// matching every Code.
type Kind uint32

const (
	ErrOther Kind = iota
	ErrParameterViolation
	ErrStateViolation
	ErrExchangeFailure
	ErrInternal
)

func (k Kind) String() string {
	switch k {
	case ErrParameterViolation:
		return "parameter violation"
	case ErrStateViolation:
		return "state violation"
	case ErrExchangeFailure:
		return "exchange failure"
	case ErrInternal:
		return "internal error"
	default:
		return "other"
	}
}

// Err is the error type returned by the login flow.  Code is one of the
// package's sentinel errors, so errors.Is(err, ErrMissingIdToken) works.
type Err struct {
	Code    error
	Kind    Kind
	Op      string
	Msg     string
	Wrapped error
}

var _ error = (*Err)(nil)

// NewError creates a new Err with the given code.  A nil code becomes
// ErrCodeUnknown.
//
// Supported options: WithOp, WithKind, WithMsg, WithWrap
func NewError(code error, opt ...Option) error {
	opts := getErrOpts(opt...)
	if code == nil {
		code = ErrCodeUnknown
	}
	return &Err{
		Code:    code,
		Kind:    opts.withKind,
		Op:      opts.withOp,
		Msg:     opts.withErrMsg,
		Wrapped: opts.withErrWrapped,
	}
}

// WrapError wraps e in a new Err.  When e is already an Err its Code and Kind
// are carried forward unless overridden by options.
//
// Supported options: WithOp, WithKind, WithMsg
func WrapError(e error, opt ...Option) error {
	if e == nil {
		return nil
	}
	code := ErrCodeUnknown
	kind := ErrOther
	var existing *Err
	if errors.As(e, &existing) {
		code = existing.Code
		kind = existing.Kind
	}
	opts := getErrOpts(append([]Option{WithKind(kind)}, opt...)...)
	return &Err{
		Code:    code,
		Kind:    opts.withKind,
		Op:      opts.withOp,
		Msg:     opts.withErrMsg,
		Wrapped: e,
	}
}

// Error satisfies the error interface and returns a string with the op, msg,
// code and wrapped error.
func (e *Err) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Code != nil && (e.Wrapped == nil || !errors.Is(e.Wrapped, e.Code)) {
		parts = append(parts, e.Code.Error())
	}
	if e.Wrapped != nil {
		parts = append(parts, e.Wrapped.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the wrapped error, if any.
func (e *Err) Unwrap() error { return e.Wrapped }

// Is reports whether target is the error's Code.
func (e *Err) Is(target error) bool {
	return e.Code != nil && target == e.Code
}

// KindOf returns the Kind of the first Err in the chain, or ErrOther.
func KindOf(err error) Kind {
	var e *Err
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrOther
}

type errOptions struct {
	withOp         string
	withKind       Kind
	withErrMsg     string
	withErrWrapped error
}

func errDefaults() errOptions {
	return errOptions{}
}

func getErrOpts(opt ...Option) errOptions {
	opts := errDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithOp provides an optional op (operation) for the error.
func WithOp(op string) Option {
	return func(o interface{}) {
		if v, ok := o.(*errOptions); ok {
			v.withOp = op
		}
	}
}

// WithKind provides an optional Kind for the error.
func WithKind(k Kind) Option {
	return func(o interface{}) {
		if v, ok := o.(*errOptions); ok {
			v.withKind = k
		}
	}
}

// WithMsg provides an optional message for the error.
func WithMsg(format string, args ...interface{}) Option {
	return func(o interface{}) {
		if v, ok := o.(*errOptions); ok {
			if len(args) > 0 {
				v.withErrMsg = fmt.Sprintf(format, args...)
				return
			}
			v.withErrMsg = format
		}
	}
}

// WithWrap provides an optional error to wrap.
func WithWrap(e error) Option {
	return func(o interface{}) {
		if v, ok := o.(*errOptions); ok {
			v.withErrWrapped = e
		}
	}
}
