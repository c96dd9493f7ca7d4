package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		Internal:        http.StatusInternalServerError,
		Unauthenticated: http.StatusUnauthorized,
		Forbidden:       http.StatusForbidden,
		NotFound:        http.StatusNotFound,
		Validation:      http.StatusBadRequest,
		Conflict:        http.StatusConflict,
	}
	for kind, want := range tests {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, want, kind.HTTPStatus())
			assert.Equal(t, want, New(kind, "x").HTTPStatus())
		})
	}
}

func TestError(t *testing.T) {
	cause := errors.New("connection reset")

	wrapped := Wrap(Internal, MsgInternal, cause)
	assert.Equal(t, "Server error: connection reset", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)

	assert.Equal(t, "Post not found", NewNotFound(MsgPostNotFound).Error())
	assert.Equal(t, "File too large. Maximum size is 5 MiB", Newf(Validation, "File too large. Maximum size is %d MiB", 5).Message)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("protect: %w", New(Unauthenticated, MsgNotAuthorized))

	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.NotErrorIs(t, err, New(Unauthenticated, "Invalid credentials"))
	assert.NotErrorIs(t, NewForbidden(MsgNotAuthorized), ErrUnauthenticated)
}

func TestAs(t *testing.T) {
	t.Run("typed error in chain", func(t *testing.T) {
		inner := NewConflict("User with this email already exists")

		got := As(fmt.Errorf("signup: %w", inner))

		assert.Same(t, inner, got)
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		cause := errors.New("boom")

		got := As(cause)

		require.NotNil(t, got)
		assert.Equal(t, Internal, got.Kind)
		assert.Equal(t, MsgInternal, got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.Equal(t, Validation, KindOf(NewValidation("bad")))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", NewNotFound(MsgUserNotFound))))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(NewConflict("dup")))
}
