// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	DefaultCookieName = "capweb_session"
	DefaultTTL        = 8 * time.Hour
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
	withCookieName string
	withCookiePath string
	withTTL        time.Duration
	withSecure     bool
	withSameSite   http.SameSite
	withLogger     hclog.Logger
	withNow        func() time.Time
}

func getDefaultOptions() options {
	return options{
		withCookieName: DefaultCookieName,
		withCookiePath: "/",
		withTTL:        DefaultTTL,
		withSameSite:   http.SameSiteLaxMode,
		withLogger:     hclog.NewNullLogger(),
		withNow:        time.Now,
	}
}

func getOpts(opt ...Option) options {
	opts := getDefaultOptions()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithCookieName provides an optional session cookie name.
func WithCookieName(name string) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok && name != "" {
			v.withCookieName = name
		}
	}
}

// WithCookiePath provides an optional session cookie path.  Default: "/"
func WithCookiePath(path string) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok && path != "" {
			v.withCookiePath = path
		}
	}
}

// WithTTL provides an optional session lifetime, which is extended every
// time the session is saved.
func WithTTL(ttl time.Duration) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withTTL = ttl
		}
	}
}

// WithSecure marks the session cookie Secure, so it's only sent over https.
func WithSecure(secure bool) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withSecure = secure
		}
	}
}

// WithSameSite provides an optional SameSite mode. It must allow the
// cross-site navigation back from Auth0, so Strict will break logins.
func WithSameSite(mode http.SameSite) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withSameSite = mode
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok && l != nil {
			v.withLogger = l
		}
	}
}

// WithNow provides an optional function which returns the current time.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok && now != nil {
			v.withNow = now
		}
	}
}
