// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	type args struct {
		prefix string
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
		wantLen int
	}{
		{
			name: "valid",
			args: args{
				prefix: "id",
			},
			wantErr: false,
			wantLen: DefaultSize*2 + len("id_"),
		},
		{
			name: "no-prefix",
			args: args{
				prefix: "",
			},
			wantErr: false,
			wantLen: DefaultSize * 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.args.prefix)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.args.prefix != "" && !strings.HasPrefix(got, tt.args.prefix+"_") {
				t.Errorf("New() = %v, wanted it to start with %v", got, tt.args.prefix)
			}
			if len(got) != tt.wantLen {
				t.Errorf("New() = %v, with len of %d and wanted len of %v", got, len(got), tt.wantLen)
			}
			id := strings.TrimPrefix(got, tt.args.prefix+"_")
			if id != strings.ToUpper(id) {
				t.Errorf("New() = %v, wanted upper case hex", got)
			}
		})
	}
	t.Run("unique", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		first, err := New("")
		require.NoError(err)
		second, err := New("")
		require.NoError(err)
		assert.NotEqual(first, second)
	})
}

func TestNewToken(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"valid", 32, false},
		{"one-byte", 1, false},
		{"zero", 0, true},
		{"negative", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewToken(tt.size)
			if tt.wantErr {
				require.Error(err)
				assert.Empty(got)
				return
			}
			require.NoError(err)
			raw, err := base64.RawURLEncoding.DecodeString(got)
			require.NoError(err)
			assert.Len(raw, tt.size)
		})
	}
}
