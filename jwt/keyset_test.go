// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHMACKey(t *testing.T) {
	t.Parallel()
	raw := []byte{0xfb, 0xff, 0x01, 0x02, 0x03}
	tests := []struct {
		name    string
		secret  string
		encoded bool
		want    []byte
		wantErr bool
	}{
		{name: "plain", secret: "my-secret", want: []byte("my-secret")},
		{name: "url-alphabet", secret: base64.RawURLEncoding.EncodeToString(raw), encoded: true, want: raw},
		{name: "std-alphabet-padded", secret: base64.StdEncoding.EncodeToString(raw), encoded: true, want: raw},
		{name: "empty", secret: "", wantErr: true},
		{name: "empty-encoded", secret: "", encoded: true, wantErr: true},
		{name: "not-base64", secret: "not base64!", encoded: true, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := NewHMACKey(tt.secret, tt.encoded)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, ErrInvalidKey), "wanted \"%s\" but got \"%s\"", ErrInvalidKey, err)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestParsePublicKeyPEM(t *testing.T) {
	t.Parallel()
	getPubKeyPEM := func(t *testing.T, pub interface{}) []byte {
		derBytes, err := x509.MarshalPKIXPublicKey(pub)
		require.NoError(t, err)
		return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: derBytes})
	}
	getCertPEM := func(t *testing.T, pub interface{}, priv interface{}) []byte {
		template := &x509.Certificate{
			SerialNumber: big.NewInt(1),
			Subject:      pkix.Name{Organization: []string{"Acme Co"}},
			NotBefore:    time.Now(),
			NotAfter:     time.Now().Add(time.Hour),
		}
		derBytes, err := x509.CreateCertificate(rand.Reader, template, template, pub, priv)
		require.NoError(t, err)
		return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	}

	tests := []struct {
		name    string
		data    func(t *testing.T) ([]byte, interface{})
		wantErr bool
	}{
		{
			name: "parse-pkix-rsa",
			data: func(t *testing.T) ([]byte, interface{}) {
				k := testGenerateRSAKey(t)
				return getPubKeyPEM(t, &k.PublicKey), &k.PublicKey
			},
		},
		{
			name: "parse-pkcs1-rsa",
			data: func(t *testing.T) ([]byte, interface{}) {
				k := testGenerateRSAKey(t)
				b := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&k.PublicKey)})
				return b, &k.PublicKey
			},
		},
		{
			name: "parse-pkix-ecdsa",
			data: func(t *testing.T) ([]byte, interface{}) {
				k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
				require.NoError(t, err)
				return getPubKeyPEM(t, &k.PublicKey), &k.PublicKey
			},
		},
		{
			name: "parse-cert-rsa",
			data: func(t *testing.T) ([]byte, interface{}) {
				k := testGenerateRSAKey(t)
				return getCertPEM(t, &k.PublicKey, k), &k.PublicKey
			},
		},
		{
			name: "parse-cert-ecdsa",
			data: func(t *testing.T) ([]byte, interface{}) {
				k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
				require.NoError(t, err)
				return getCertPEM(t, &k.PublicKey, k), &k.PublicKey
			},
		},
		{
			name: "malformed-pem",
			data: func(t *testing.T) ([]byte, interface{}) {
				return []byte("not a pem"), nil
			},
			wantErr: true,
		},
		{
			name: "garbage-block",
			data: func(t *testing.T) ([]byte, interface{}) {
				return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: []byte("garbage")}), nil
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			data, want := tt.data(t)
			got, err := ParsePublicKeyPEM(data)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, ErrInvalidKey), "wanted \"%s\" but got \"%s\"", ErrInvalidKey, err)
				return
			}
			require.NoError(err)
			assert.Equal(want, got)
		})
	}
}

func TestReadPublicKeyFile(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	k := testGenerateRSAKey(t)
	der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
	require.NoError(err)
	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	got, err := ReadPublicKeyFile(path)
	require.NoError(err)
	pub, ok := got.(*rsa.PublicKey)
	require.True(ok)
	assert.Equal(k.PublicKey.N, pub.N)

	_, err = ReadPublicKeyFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(err)

	_, err = ReadPublicKeyFile("")
	assert.Truef(errors.Is(err, ErrInvalidParameter), "wanted \"%s\" but got \"%s\"", ErrInvalidParameter, err)
}
