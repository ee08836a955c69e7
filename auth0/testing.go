// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/capweb/jwt"
	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2"
	josejwt "gopkg.in/square/go-jose.v2/jwt"
)

// TestGenerateRSAKey will generate a test RSA 2048 key and return it along
// with its pem-encoded PKIX public key.
func TestGenerateRSAKey(t *testing.T) (priv *rsa.PrivateKey, pubPEM string) {
	t.Helper()
	require := require.New(t)
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)
	derBytes, err := x509.MarshalPKIXPublicKey(priv.Public())
	require.NoError(err)
	return priv, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: derBytes}))
}

// TestWritePublicKeyFile writes pubPEM to a file in a temp dir which is
// removed when the test completes, and returns the file's path.
func TestWritePublicKeyFile(t *testing.T, pubPEM string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth0-public-key.pem")
	require.NoError(t, os.WriteFile(path, []byte(pubPEM), 0o600))
	return path
}

// TestSignJWT will bundle the provided claims into a test signed JWT.  The
// key must be a []byte for the HS algorithms and an *rsa.PrivateKey for the
// RS algorithms.
func TestSignJWT(t *testing.T, key interface{}, alg jwt.Alg, claims map[string]interface{}) string {
	t.Helper()
	raw, err := signJWT(key, alg, claims)
	require.NoError(t, err)
	return raw
}

func signJWT(key interface{}, alg jwt.Alg, claims map[string]interface{}) (string, error) {
	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.SignatureAlgorithm(alg), Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", err
	}
	return josejwt.Signed(sig).Claims(claims).CompactSerialize()
}
