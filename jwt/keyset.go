// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
)

// NewHMACKey returns the key used to verify HS256/384/512 signatures.  When
// base64Encoded is true the secret is decoded first; both the url safe and
// the standard base64 alphabets are accepted, with or without padding.
func NewHMACKey(secret string, base64Encoded bool) ([]byte, error) {
	const op = "jwt.NewHMACKey"
	if secret == "" {
		return nil, fmt.Errorf("%s: secret is empty: %w", op, ErrInvalidKey)
	}
	if !base64Encoded {
		return []byte(secret), nil
	}
	normalized := strings.NewReplacer("+", "-", "/", "_", "=", "").Replace(strings.TrimSpace(secret))
	key, err := base64.RawURLEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%s: secret is not base64 encoded: %w: %s", op, ErrInvalidKey, err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%s: decoded secret is empty: %w", op, ErrInvalidKey)
	}
	return key, nil
}

// ReadPublicKeyFile reads a PEM encoded public key from path.  See
// ParsePublicKeyPEM for the supported forms.
func ReadPublicKeyFile(path string) (crypto.PublicKey, error) {
	const op = "jwt.ReadPublicKeyFile"
	if path == "" {
		return nil, fmt.Errorf("%s: path is empty: %w", op, ErrInvalidParameter)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read public key: %w", op, err)
	}
	key, err := ParsePublicKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return key, nil
}

// ParsePublicKeyPEM is used to parse RSA and ECDSA public keys from PEMs.  The
// given data must be of PEM-encoded x509 certificate, PKIX public key or
// PKCS #1 RSA public key form.  It returns a *rsa.PublicKey or
// *ecdsa.PublicKey.
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block != nil {
		var rawKey interface{}
		var err error
		switch block.Type {
		case "RSA PUBLIC KEY":
			if rawKey, err = x509.ParsePKCS1PublicKey(block.Bytes); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidKey, err)
			}
		default:
			if rawKey, err = x509.ParsePKIXPublicKey(block.Bytes); err != nil {
				if cert, err := x509.ParseCertificate(block.Bytes); err == nil {
					rawKey = cert.PublicKey
				} else {
					return nil, fmt.Errorf("%w: %s", ErrInvalidKey, err)
				}
			}
		}

		if rsaPublicKey, ok := rawKey.(*rsa.PublicKey); ok {
			return rsaPublicKey, nil
		}
		if ecPublicKey, ok := rawKey.(*ecdsa.PublicKey); ok {
			return ecPublicKey, nil
		}
	}

	return nil, fmt.Errorf("%w: data does not contain any valid RSA or ECDSA public keys", ErrInvalidKey)
}
