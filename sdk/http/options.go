// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import "time"

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

type options struct {
	withTimeout   time.Duration
	withUserAgent string
}

func getOpts(opt ...Option) options {
	opts := options{
		withTimeout:   DefaultTimeout,
		withUserAgent: DefaultUserAgent,
	}
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	return opts
}

// WithTimeout bounds every request, including reading the response body.
// Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok && d >= 0 {
			v.withTimeout = d
		}
	}
}

// WithUserAgent sets the User-Agent of requests which don't already carry
// one.
func WithUserAgent(ua string) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withUserAgent = ua
		}
	}
}
