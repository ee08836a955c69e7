// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hashicorp/go-uuid"
)

// DefaultSize is the number of random bytes used by New.
const DefaultSize = 16

// New generates a random, upper case hex ID with an optional prefix.  The ID
// has DefaultSize bytes of entropy and is suitable for a nonce.
func New(optionalPrefix string) (string, error) {
	b, err := uuid.GenerateRandomBytes(DefaultSize)
	if err != nil {
		return "", fmt.Errorf("unable to generate id: %w", err)
	}
	id := strings.ToUpper(hex.EncodeToString(b))
	switch {
	case optionalPrefix != "":
		return fmt.Sprintf("%s_%s", optionalPrefix, id), nil
	default:
		return id, nil
	}
}

// NewToken generates a url safe (unpadded base64) random token with size
// bytes of entropy.
func NewToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("unable to generate token: size %d must be greater than zero", size)
	}
	b, err := uuid.GenerateRandomBytes(size)
	if err != nil {
		return "", fmt.Errorf("unable to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
