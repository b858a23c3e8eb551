package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// downstreamErrorResponse matches the {"error":{"code","message"}} envelope.
// Upstreams that return plain text or {"message": "..."} are handled too.
type downstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError. The body is consumed and closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	code, message := "", strings.TrimSpace(string(body))
	var downstream downstreamErrorResponse
	if json.Unmarshal(body, &downstream) == nil {
		switch {
		case downstream.Error != nil:
			code, message = downstream.Error.Code, downstream.Error.Message
		case downstream.Message != "":
			message = downstream.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return mapDownstreamError(resp.StatusCode, code, message, upstream)
}

func mapDownstreamError(status int, code, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream+" resource", message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusTooManyRequests:
		return &apperrors.AppError{
			Code:    "RATE_LIMITED",
			Message: qualified,
			Status:  http.StatusTooManyRequests,
			Err:     apperrors.ErrRateLimited,
		}
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualified, nil)
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	default:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{
			Code:    code,
			Message: qualified,
			Status:  status,
		}
	}
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
