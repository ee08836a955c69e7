// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package login

import (
	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/language"
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

// loginOptions is the set of available options for Handler
type loginOptions struct {
	withPKCE         bool
	withCallbackPath string
	withRedirectURL  string
	withAudience     string
	withConnection   string
	withoutNonce     bool
	withUILocales    []language.Tag
	withAcceptLang   bool
	withLogger       hclog.Logger
}

func loginDefaults() loginOptions {
	return loginOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getLoginOpts(opt ...Option) loginOptions {
	opts := loginDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// logoutOptions is the set of available options for Logout
type logoutOptions struct {
	withProviderLogout LogoutURLer
	withLogger         hclog.Logger
}

func logoutDefaults() logoutOptions {
	return logoutOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getLogoutOpts(opt ...Option) logoutOptions {
	opts := logoutDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithPKCE generates a PKCE code verifier for every login.  The verifier is
// kept in the session and its S256 challenge is sent to Auth0.
//
// Valid for: Handler
func WithPKCE() Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withPKCE = true
		}
	}
}

// WithCallbackPath derives the redirect_uri from the login request's host and
// the callback path.  WithRedirectURL takes precedence.
//
// Valid for: Handler
func WithCallbackPath(path string) Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withCallbackPath = path
		}
	}
}

// WithRedirectURL provides the absolute redirect_uri sent to Auth0.
//
// Valid for: Handler
func WithRedirectURL(u string) Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withRedirectURL = u
		}
	}
}

// WithAudience requests an access token for the given API audience.
//
// Valid for: Handler
func WithAudience(audience string) Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withAudience = audience
		}
	}
}

// WithConnection sends the user straight to the named Auth0 connection.
//
// Valid for: Handler
func WithConnection(connection string) Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withConnection = connection
		}
	}
}

// WithoutNonce stops sending the state's nonce as the OIDC nonce parameter.
// The callback must then be created with callback.WithoutIdTokenNonce.
//
// Valid for: Handler
func WithoutNonce() Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withoutNonce = true
		}
	}
}

// WithUILocales provides the languages of the Auth0 login pages.
//
// Valid for: Handler
func WithUILocales(locales ...language.Tag) Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withUILocales = locales
		}
	}
}

// WithAcceptLanguage shows the Auth0 login pages in the languages of the
// request's Accept-Language header.  Locales from WithUILocales are used
// when the header is missing or malformed.
//
// Valid for: Handler
func WithAcceptLanguage() Option {
	return func(o interface{}) {
		if v, ok := o.(*loginOptions); ok {
			v.withAcceptLang = true
		}
	}
}

// WithProviderLogout redirects through the provider's logout endpoint so the
// user's Auth0 session ends too.
//
// Valid for: Logout
func WithProviderLogout(p LogoutURLer) Option {
	return func(o interface{}) {
		if v, ok := o.(*logoutOptions); ok {
			v.withProviderLogout = p
		}
	}
}

// WithLogger provides an optional logger.
//
// Valid for: Handler and Logout
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if l == nil {
			return
		}
		switch v := o.(type) {
		case *loginOptions:
			v.withLogger = l
		case *logoutOptions:
			v.withLogger = l
		}
	}
}

// ConfigOptions returns the Handler options implied by the config.
func ConfigOptions(cfg *auth0.Config) []Option {
	if cfg == nil {
		return nil
	}
	var opts []Option
	if cfg.UsePKCE {
		opts = append(opts, WithPKCE())
	}
	if cfg.RedirectURL != "" {
		opts = append(opts, WithRedirectURL(cfg.RedirectURL))
	} else {
		opts = append(opts, WithCallbackPath(cfg.LoginCallback))
	}
	return opts
}
