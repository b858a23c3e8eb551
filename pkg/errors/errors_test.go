package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrConflict,
		ErrInternal, ErrServiceUnavail, ErrRateLimited,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "catalog read", Err: fmt.Errorf("connection reset")}
	assert.Equal(t, "INTERNAL_ERROR: catalog read: connection reset", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", bare.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("product", "42"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("bad sort key"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"conflict", Conflict("stale"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"unavailable", Unavailable("catalog down", nil), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}

	assert.Equal(t, "product with id 42 not found", NotFound("product", "42").Message)
}

func TestUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("circuit breaker is open")
	err := Unavailable("catalog is temporarily unavailable", cause)

	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, cause))
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, cause))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("product", "1")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Wrap(ErrInvalidInput, "parse")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrConflict))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(fmt.Errorf("x: %w", ErrServiceUnavail)))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrRateLimited))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "get product")
	require.Error(t, err)
	assert.Equal(t, "get product: resource not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
