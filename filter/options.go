// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package filter

import (
	"github.com/hashicorp/capweb/jwt"
	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

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

type options struct {
	withVerifier            TokenVerifier
	withPatterns            []string
	withRedirectOnAuthError string
	withLogger              hclog.Logger
	withVerifierOpts        []jwt.Option
}

func getOpts(opt ...Option) options {
	opts := options{
		withLogger: hclog.NewNullLogger(),
	}
	ApplyOpts(&opts, opt...)
	return opts
}

// WithVerifier provides the id_token verifier.  By default one is built from
// the config's signing algorithm and key.
func WithVerifier(v TokenVerifier) Option {
	return func(o interface{}) {
		if opts, ok := o.(*options); ok {
			opts.withVerifier = v
		}
	}
}

// WithPattern provides the protected path patterns, replacing the config's
// SecuredRoute.
func WithPattern(patterns ...string) Option {
	return func(o interface{}) {
		if opts, ok := o.(*options); ok {
			opts.withPatterns = patterns
		}
	}
}

// WithRedirectOnAuthError provides the path rejected requests are redirected
// to.  Default: the config's LoginRedirectOnFail.
func WithRedirectOnAuthError(path string) Option {
	return func(o interface{}) {
		if opts, ok := o.(*options); ok {
			opts.withRedirectOnAuthError = path
		}
	}
}

// WithVerifierOptions provides options, such as jwt.WithLeeway, for the
// default verifier.  They're ignored when WithVerifier is used.
func WithVerifierOptions(opt ...jwt.Option) Option {
	return func(o interface{}) {
		if opts, ok := o.(*options); ok {
			opts.withVerifierOpts = append(opts.withVerifierOpts, opt...)
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if opts, ok := o.(*options); ok && l != nil {
			opts.withLogger = l
		}
	}
}
