// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package state

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/capweb/sdk/id"
)

// NonceKey is the key of the nonce entry within a state.
const NonceKey = "nonce"

var (
	ErrMalformedState = errors.New("malformed state")
	ErrNonceGenerator = errors.New("nonce generation failed")
)

// pair is a single decoded key/value entry of a state.
type pair struct {
	key   string
	value string
}

// NewNonce returns a new random nonce suitable for a state.
func NewNonce() (string, error) {
	const op = "state.NewNonce"
	n, err := id.New("")
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", op, ErrNonceGenerator, err)
	}
	return n, nil
}

// AddNonce returns the state with a newly generated nonce appended.  If the
// state already has a nonce entry, it's returned unchanged.  An empty state
// has no entries.
func AddNonce(current string) (string, error) {
	const op = "state.AddNonce"
	st, _, err := EnsureNonce(current)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// EnsureNonce is AddNonce which also returns the nonce of the returned state:
// the existing one, or the one it generated.
func EnsureNonce(current string) (st string, nonce string, err error) {
	const op = "state.EnsureNonce"
	pairs, err := parse(current)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range pairs {
		if p.key == NonceKey {
			return current, p.value, nil
		}
	}
	n, err := NewNonce()
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return format(append(pairs, pair{key: NonceKey, value: n})), n, nil
}

// RemoveNonce returns the state without its nonce entry.  Removing the nonce
// from a state without one is not an error.
func RemoveNonce(current string) (string, error) {
	const op = "state.RemoveNonce"
	pairs, err := parse(current)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	kept := make([]pair, 0, len(pairs))
	for _, p := range pairs {
		if p.key != NonceKey {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(pairs) {
		return current, nil
	}
	return format(kept), nil
}

// Extract returns the value of the first entry for key.  found is false when
// the state has no such entry.
func Extract(s, key string) (value string, found bool, err error) {
	const op = "state.Extract"
	pairs, err := parse(s)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range pairs {
		if p.key == key {
			return p.value, true, nil
		}
	}
	return "", false, nil
}

// Nonce returns the state's nonce.
func Nonce(s string) (string, bool, error) {
	return Extract(s, NonceKey)
}

// MatchNonce reports whether the received state carries a non-empty nonce
// equal to the nonce of the stored state.
func MatchNonce(stored, received string) bool {
	receivedNonce, ok, err := Nonce(received)
	if err != nil || !ok || receivedNonce == "" {
		return false
	}
	storedNonce, ok, err := Nonce(stored)
	if err != nil || !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(receivedNonce), []byte(storedNonce)) == 1
}

// parse decodes the state into its entries, in order.  Entries are delimited by
// "&" and split on the first "=".
func parse(s string) ([]pair, error) {
	var pairs []pair
	for s != "" {
		var entry string
		entry, s, _ = strings.Cut(s, "&")
		if entry == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(entry, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %s", ErrMalformedState, rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("%w: value for %q: %s", ErrMalformedState, key, err)
		}
		pairs = append(pairs, pair{key: key, value: value})
	}
	return pairs, nil
}

func format(pairs []pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
