// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import "time"

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

type verifierOptions struct {
	withLeeway time.Duration
	withNow    func() time.Time
}

func verifierDefaults() verifierOptions {
	return verifierOptions{
		withNow: time.Now,
	}
}

// getVerifierOpts gets the defaults and applies the opt overrides passed
// in.
func getVerifierOpts(opt ...Option) verifierOptions {
	opts := verifierDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// WithLeeway provides an optional clock skew allowance used when validating
// the exp, nbf and iat claims.
func WithLeeway(d time.Duration) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *verifierOptions:
			v.withLeeway = d
		}
	}
}

// WithNow provides an optional function which returns the current time.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *verifierOptions:
			if now != nil {
				v.withNow = now
			}
		}
	}
}
