package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		want     int
	}{
		{"not found", http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"42"}}`, apperrors.ErrNotFound, http.StatusNotFound},
		{"bad request", http.StatusBadRequest, `{"message":"bad limit"}`, apperrors.ErrInvalidInput, http.StatusBadRequest},
		{"conflict", http.StatusConflict, `conflict`, apperrors.ErrConflict, http.StatusConflict},
		{"rate limited", http.StatusTooManyRequests, ``, apperrors.ErrRateLimited, http.StatusTooManyRequests},
		{"unavailable", http.StatusServiceUnavailable, `maintenance`, apperrors.ErrServiceUnavail, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(response(tt.status, tt.body), "catalog")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Equal(t, tt.want, apperrors.HTTPStatus(err))
		})
	}
}

func TestParseResponseError_MessageSources(t *testing.T) {
	err := ParseResponseError(response(http.StatusBadRequest, `{"message":"limit must be positive"}`), "catalog")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "catalog: limit must be positive", appErr.Message)

	err = ParseResponseError(response(http.StatusBadRequest, "  plain text  "), "catalog")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "catalog: plain text", appErr.Message)

	err = ParseResponseError(response(http.StatusBadRequest, ""), "catalog")
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "catalog: Bad Request", appErr.Message)
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(response(http.StatusBadGateway, `{"error":{"code":"UPSTREAM","message":"down"}}`), "catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog server error (502/UPSTREAM): down")
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
}

func TestParseResponseError_OtherClientError(t *testing.T) {
	err := ParseResponseError(response(http.StatusTeapot, "short and stout"), "catalog")
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
	assert.Equal(t, http.StatusTeapot, appErr.Status)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
