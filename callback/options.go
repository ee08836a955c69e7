// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package callback

import "github.com/hashicorp/go-hclog"

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
	withRedirectURL   string
	withLogger        hclog.Logger
	withoutTokenNonce bool
}

func getOpts(opt ...Option) options {
	opts := options{
		withLogger: hclog.NewNullLogger(),
	}
	ApplyOpts(&opts, opt...)
	return opts
}

// WithRedirectURL provides the redirect_uri sent with the code exchange.  It
// must equal the redirect_uri of the authorization request.  By default it's
// the callback request's own URL, without its query.
func WithRedirectURL(u string) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withRedirectURL = u
		}
	}
}

// WithLogger provides an optional logger for the default ErrorResponseFunc
// created by Handler.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok && l != nil {
			v.withLogger = l
		}
	}
}

// WithoutIdTokenNonce stops requiring the id_token's nonce claim to equal the
// session's nonce.  Use it only when logins are started without sending the
// nonce to Auth0.
func WithoutIdTokenNonce() Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withoutTokenNonce = true
		}
	}
}
