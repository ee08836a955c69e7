// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/capweb/internal/strutils"
	"github.com/hashicorp/capweb/jwt"
	"github.com/hashicorp/go-multierror"
)

// ClientSecret is an oauth client Secret.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret.
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret.
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret.
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Default paths used when a Config doesn't set them.
const (
	DefaultLoginCallback          = "/callback"
	DefaultLoginRedirectOnSuccess = "/"
	DefaultLoginRedirectOnFail    = "/login"
	DefaultOnLogoutRedirectTo     = "/login"
	DefaultSecuredRoute           = "/portal/*"
	DefaultSigningAlgorithm       = jwt.HS256
)

// Config represents the configuration for an Auth0 tenant application.  The
// yaml and env tags are used by the config package.
type Config struct {
	// Domain is the Auth0 tenant domain, e.g. "example.auth0.com".
	Domain string `yaml:"domain" env:"DOMAIN"`

	// Issuer overrides the expected id_token issuer.  Default: https://{Domain}/
	Issuer string `yaml:"issuer" env:"ISSUER"`

	ClientId     string       `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret ClientSecret `yaml:"client_secret" env:"CLIENT_SECRET"`

	OnLogoutRedirectTo     string `yaml:"on_logout_redirect_to" env:"ON_LOGOUT_REDIRECT_TO"`
	LoginRedirectOnSuccess string `yaml:"login_redirect_on_success" env:"LOGIN_REDIRECT_ON_SUCCESS"`
	LoginRedirectOnFail    string `yaml:"login_redirect_on_fail" env:"LOGIN_REDIRECT_ON_FAIL"`
	LoginCallback          string `yaml:"login_callback" env:"LOGIN_CALLBACK"`
	SecuredRoute           string `yaml:"secured_route" env:"SECURED_ROUTE"`

	// Base64EncodedSecret is true when the ClientSecret must be base64url
	// decoded before it's used as an HMAC key.
	Base64EncodedSecret bool `yaml:"base64_encoded_secret" env:"BASE64_ENCODED_SECRET"`

	// SigningAlgorithm is the id_token signing algorithm. HS256/384/512 verify
	// with the client secret and RS256/384/512 with the key at PublicKeyPath.
	SigningAlgorithm string `yaml:"signing_algorithm" env:"SIGNING_ALGORITHM"`
	PublicKeyPath    string `yaml:"public_key_path" env:"PUBLIC_KEY_PATH"`

	// RedirectURL is the absolute callback URL registered with Auth0. When
	// empty it's derived from each request.
	RedirectURL string   `yaml:"redirect_url" env:"REDIRECT_URL"`
	Scopes      []string `yaml:"scopes" env:"SCOPES" envSeparator:","`
	Audience    string   `yaml:"audience" env:"AUDIENCE"`
	UsePKCE     bool     `yaml:"use_pkce" env:"USE_PKCE"`

	// SkipDiscovery builds the Auth0 endpoints from the Domain instead of
	// fetching the OIDC discovery document.
	SkipDiscovery bool `yaml:"skip_discovery" env:"SKIP_DISCOVERY"`

	// ProviderCA is an optional PEM encoded CA used to verify Auth0's TLS
	// certificate.
	ProviderCA string `yaml:"provider_ca" env:"PROVIDER_CA"`
}

// DefaultConfig returns a Config with every default set and no tenant
// details.
func DefaultConfig() *Config {
	return &Config{
		OnLogoutRedirectTo:     DefaultOnLogoutRedirectTo,
		LoginRedirectOnSuccess: DefaultLoginRedirectOnSuccess,
		LoginRedirectOnFail:    DefaultLoginRedirectOnFail,
		LoginCallback:          DefaultLoginCallback,
		SecuredRoute:           DefaultSecuredRoute,
		Base64EncodedSecret:    true,
		SigningAlgorithm:       string(DefaultSigningAlgorithm),
		Scopes:                 []string{"openid", "profile", "email"},
	}
}

type configOptions struct {
	withAudience      string
	withProviderCA    string
	withScopes        []string
	withSkipDiscovery bool
	withPlainSecret   bool
}

func getConfigOpts(opt ...Option) configOptions {
	var opts configOptions
	ApplyOpts(&opts, opt...)
	return opts
}

// WithProviderCA provides a PEM encoded CA for the Auth0 TLS connection.
//
// Valid for: NewConfig
func WithProviderCA(caPEM string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withProviderCA = caPEM
		}
	}
}

// WithScopes provides additional scopes.  "openid" is always requested.
//
// Valid for: NewConfig
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withScopes = scopes
		}
	}
}

// WithSkipDiscovery builds the Auth0 endpoints from the domain.
//
// Valid for: NewConfig
func WithSkipDiscovery() Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withSkipDiscovery = true
		}
	}
}

// WithPlainSecret marks the client secret as not base64 encoded.
//
// Valid for: NewConfig
func WithPlainSecret() Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withPlainSecret = true
		}
	}
}

// NewConfig composes a new, valid Config for an HS256 application.
//
// Supported options: WithAudience, WithProviderCA, WithScopes,
// WithSkipDiscovery, WithPlainSecret
func NewConfig(domain, clientId string, clientSecret ClientSecret, opt ...Option) (*Config, error) {
	const op = "auth0.NewConfig"
	opts := getConfigOpts(opt...)
	c := DefaultConfig()
	c.Domain = domain
	c.ClientId = clientId
	c.ClientSecret = clientSecret
	c.Audience = opts.withAudience
	c.ProviderCA = opts.withProviderCA
	c.SkipDiscovery = opts.withSkipDiscovery
	c.Base64EncodedSecret = !opts.withPlainSecret
	if len(opts.withScopes) > 0 {
		c.Scopes = opts.withScopes
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return c, nil
}

// Validate checks the Config and reports every problem found.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	add := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidParameter))
	}

	if c.Domain == "" {
		add("domain is empty")
	}
	if c.ClientId == "" {
		add("client id is empty")
	}
	if c.Domain != "" || c.Issuer != "" {
		if err := validateIssuer(c.IssuerURL()); err != nil {
			result = multierror.Append(result, err)
		}
	}
	alg, err := jwt.ParseAlg(c.SigningAlgorithm)
	switch {
	case err != nil:
		result = multierror.Append(result, err)
	case alg.IsSymmetric():
		if c.ClientSecret == "" {
			add("client secret is empty and required by %s", alg)
		} else if _, err := jwt.NewHMACKey(string(c.ClientSecret), c.Base64EncodedSecret); err != nil {
			result = multierror.Append(result, err)
		}
	default:
		if c.PublicKeyPath == "" {
			add("public key path is empty and required by %s", alg)
		}
	}
	for name, p := range map[string]string{
		"login callback":            c.LoginCallback,
		"login redirect on success": c.LoginRedirectOnSuccess,
		"login redirect on fail":    c.LoginRedirectOnFail,
		"secured route":             c.SecuredRoute,
	} {
		if p == "" {
			add("%s is empty", name)
		}
	}
	if c.RedirectURL != "" {
		if u, err := url.Parse(c.RedirectURL); err != nil || !u.IsAbs() {
			add("redirect URL %q is not an absolute URL", c.RedirectURL)
		}
	}
	if c.ProviderCA != "" {
		if ok := x509.NewCertPool().AppendCertsFromPEM([]byte(c.ProviderCA)); !ok {
			result = multierror.Append(result, fmt.Errorf("provider CA: %w", ErrInvalidCACert))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Alg returns the parsed SigningAlgorithm.
func (c *Config) Alg() (jwt.Alg, error) {
	return jwt.ParseAlg(c.SigningAlgorithm)
}

// DomainURL returns the tenant's base URL without a trailing slash, e.g.
// https://example.auth0.com
func (c *Config) DomainURL() string {
	d := strings.TrimSuffix(strings.TrimSpace(c.Domain), "/")
	if d == "" {
		return ""
	}
	if !strings.HasPrefix(d, "https://") && !strings.HasPrefix(d, "http://") {
		d = "https://" + d
	}
	return d
}

// IssuerURL returns the expected id_token issuer: Issuer when set, otherwise
// DomainURL with a trailing slash.
func (c *Config) IssuerURL() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	if d := c.DomainURL(); d != "" {
		return d + "/"
	}
	return ""
}

// AllScopes returns "openid" followed by the configured scopes, without
// duplicates.
func (c *Config) AllScopes() []string {
	return strutils.RemoveDuplicatesStable(append([]string{"openid"}, c.Scopes...), false)
}

func validateIssuer(issuer string) error {
	u, err := url.Parse(issuer)
	if err != nil {
		return fmt.Errorf("issuer %q is invalid: %w: %s", issuer, ErrInvalidIssuer, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("issuer %q scheme %q is not http or https: %w", issuer, u.Scheme, ErrInvalidIssuer)
	}
	if u.Host == "" {
		return fmt.Errorf("issuer %q has no host: %w", issuer, ErrInvalidIssuer)
	}
	return nil
}
