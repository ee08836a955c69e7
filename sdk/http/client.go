// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-cleanhttp"
)

var ErrInvalidCertificatePem = errors.New("invalid certificate PEM")

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "capweb"
)

// NewClient creates the client used to reach an Auth0 tenant.  It trusts the
// optional CA certificate PEM when provided, otherwise the installed system CA
// chain.  Every request carries the client's User-Agent and is bounded by its
// timeout.
//
// Supported options: WithTimeout, WithUserAgent
func NewClient(caPEM string, opt ...Option) (*http.Client, error) {
	const op = "http.NewClient"
	opts := getOpts(opt...)
	tr := cleanhttp.DefaultPooledTransport()
	if caPEM != "" {
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM([]byte(caPEM)); !ok {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCertificatePem)
		}
		tr.TLSClientConfig = &tls.Config{
			RootCAs:    certPool,
			MinVersion: tls.VersionTLS12,
		}
	}
	return &http.Client{
		Transport: &userAgentTransport{next: tr, userAgent: opts.withUserAgent},
		Timeout:   opts.withTimeout,
	}, nil
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" || req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// a RoundTripper must not modify the caller's request
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(r)
}

// ClientContext returns a new Context carrying the client.  go-oidc and
// golang.org/x/oauth2 share the context key, so both use the client for
// discovery, token, userinfo and JWKS requests.
func ClientContext(ctx context.Context, client *http.Client) context.Context {
	return oidc.ClientContext(ctx, client)
}
