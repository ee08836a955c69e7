// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
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

type providerOptions struct {
	withLogger hclog.Logger
}

func providerDefaults() providerOptions {
	return providerOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

type authURLOptions struct {
	withRedirectURL  string
	withAudience     string
	withConnection   string
	withPKCEVerifier string
	withNonce        string
	withPrompt       string
	withUILocales    []language.Tag
}

func getAuthURLOpts(opt ...Option) authURLOptions {
	var opts authURLOptions
	ApplyOpts(&opts, opt...)
	return opts
}

type exchangeOptions struct {
	withPKCEVerifier string
	withNonce        string
}

func getExchangeOpts(opt ...Option) exchangeOptions {
	var opts exchangeOptions
	ApplyOpts(&opts, opt...)
	return opts
}

// WithLogger provides an optional logger.
//
// Valid for: NewProvider
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if v, ok := o.(*providerOptions); ok && l != nil {
			v.withLogger = l
		}
	}
}

// WithRedirectURL provides the redirect_uri sent with the authorization
// request.
//
// Valid for: Provider.AuthURL
func WithRedirectURL(u string) Option {
	return func(o interface{}) {
		if v, ok := o.(*authURLOptions); ok {
			v.withRedirectURL = u
		}
	}
}

// WithAudience provides the API audience requested from Auth0.
//
// Valid for: Provider.AuthURL and NewConfig
func WithAudience(audience string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authURLOptions:
			v.withAudience = audience
		case *configOptions:
			v.withAudience = audience
		}
	}
}

// WithConnection asks Auth0 to skip its login page and use the named
// connection (e.g. "github").
//
// Valid for: Provider.AuthURL
func WithConnection(connection string) Option {
	return func(o interface{}) {
		if v, ok := o.(*authURLOptions); ok {
			v.withConnection = connection
		}
	}
}

// WithPrompt provides the optional OIDC prompt parameter (e.g. "login").
//
// Valid for: Provider.AuthURL
func WithPrompt(prompt string) Option {
	return func(o interface{}) {
		if v, ok := o.(*authURLOptions); ok {
			v.withPrompt = prompt
		}
	}
}

// WithUILocales provides the end user's preferred languages for the Universal
// Login pages, in order of preference.  Auth0 falls back to the tenant's
// default language for tags it doesn't support.
//
// Valid for: Provider.AuthURL
func WithUILocales(locales ...language.Tag) Option {
	return func(o interface{}) {
		if v, ok := o.(*authURLOptions); ok {
			v.withUILocales = locales
		}
	}
}

// WithPKCEVerifier provides a PKCE code verifier.  AuthURL sends its S256
// challenge and Exchange sends the verifier itself.
//
// Valid for: Provider.AuthURL and Provider.Exchange
func WithPKCEVerifier(verifier string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authURLOptions:
			v.withPKCEVerifier = verifier
		case *exchangeOptions:
			v.withPKCEVerifier = verifier
		}
	}
}

// WithNonce provides an OIDC nonce.  AuthURL sends it to Auth0 and Exchange
// requires the returned id_token to carry the same value.
//
// Valid for: Provider.AuthURL and Provider.Exchange
func WithNonce(nonce string) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *authURLOptions:
			v.withNonce = nonce
		case *exchangeOptions:
			v.withNonce = nonce
		}
	}
}
