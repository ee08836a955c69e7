// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlg(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in            string
		want          Alg
		wantSymmetric bool
		wantErr       bool
	}{
		{in: "HS256", want: HS256, wantSymmetric: true},
		{in: "hs384", want: HS384, wantSymmetric: true},
		{in: " HS512 ", want: HS512, wantSymmetric: true},
		{in: "RS256", want: RS256},
		{in: "RS384", want: RS384},
		{in: "rs512", want: RS512},
		{in: "ES256", wantErr: true},
		{in: "none", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			got, err := ParseAlg(tt.in)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, ErrUnsupportedAlg), "wanted \"%s\" but got \"%s\"", ErrUnsupportedAlg, err)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
			assert.Equal(tt.wantSymmetric, got.IsSymmetric())
		})
	}
}
