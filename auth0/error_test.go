// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package auth0

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewError(t *testing.T) {
	t.Parallel()
	isNilParameter := NewError(ErrNilParameter, WithMsg("missing config"), WithOp("alice.bob"), WithKind(ErrParameterViolation))
	tests := []struct {
		name string
		code error
		opt  []Option
		want error
	}{
		{
			name: "all-options",
			code: ErrNilParameter,
			opt: []Option{
				WithOp("alice.Bob"),
				WithWrap(isNilParameter),
				WithMsg("test msg"),
				WithKind(ErrInternal),
			},
			want: &Err{
				Op:      "alice.Bob",
				Wrapped: isNilParameter,
				Msg:     "test msg",
				Code:    ErrNilParameter,
				Kind:    ErrInternal,
			},
		},
		{
			name: "formatted-msg",
			code: ErrInvalidParameter,
			opt:  []Option{WithMsg("missing %s", "domain")},
			want: &Err{Code: ErrInvalidParameter, Msg: "missing domain"},
		},
		{
			name: "no-options",
			opt:  nil,
			want: &Err{
				Code: ErrCodeUnknown,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			err := NewError(tt.code, tt.opt...)
			require.Error(err)
			assert.Equal(tt.want, err)
		})
	}
}

func TestErr_Is(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	cause := errors.New("connection refused")
	err := NewError(ErrExchangeFailed, WithOp("Provider.Exchange"), WithKind(ErrExchangeFailure), WithWrap(cause))
	assert.True(errors.Is(err, ErrExchangeFailed))
	assert.True(errors.Is(err, cause))
	assert.False(errors.Is(err, ErrMissingIdToken))
	assert.Equal(ErrExchangeFailure, KindOf(err))
	assert.Equal("Provider.Exchange: code exchange failed: connection refused", err.Error())

	wrapped := fmt.Errorf("callback: %w", err)
	assert.True(errors.Is(wrapped, ErrExchangeFailed))
	assert.Equal(ErrExchangeFailure, KindOf(wrapped))
	assert.Equal(ErrOther, KindOf(cause))
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	assert.Nil(WrapError(nil))

	inner := NewError(ErrMissingIdToken, WithKind(ErrExchangeFailure))
	err := WrapError(inner, WithOp("outer"))
	var e *Err
	require.True(errors.As(err, &e))
	assert.Equal(ErrMissingIdToken, e.Code)
	assert.Equal(ErrExchangeFailure, e.Kind)
	assert.Equal("outer", e.Op)
	assert.True(errors.Is(err, ErrMissingIdToken))

	err = WrapError(inner, WithKind(ErrInternal))
	assert.Equal(ErrInternal, KindOf(err))

	plain := errors.New("boom")
	err = WrapError(plain, WithMsg("context"))
	require.True(errors.As(err, &e))
	assert.Equal(ErrCodeUnknown, e.Code)
	assert.True(errors.Is(err, plain))
}
