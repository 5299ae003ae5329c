package httpapi

import (
	"net/http"

	"github.com/anchorvcs/anchor/internal/apperr"
	"github.com/anchorvcs/anchor/internal/logger"
)

// errorResponse is the JSON body written for every failed request.
type errorResponse struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Code      string         `json:"code"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// statusFor maps an apperr.Code to the HTTP status it surfaces as.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeInvalid:
		return http.StatusBadRequest
	case apperr.CodeRateLimited:
		return http.StatusTooManyRequests
	case apperr.CodeReplay:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the standard JSON error envelope, logging
// server-side failures that aren't just ordinary client rejections.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	status := statusFor(code)

	resp := errorResponse{
		Error:     string(code),
		Message:   err.Error(),
		Code:      string(code),
		RequestID: requestIDFrom(r),
	}
	var appErr *apperr.Error
	if asAppErr, ok := err.(*apperr.Error); ok {
		appErr = asAppErr
		resp.Message = appErr.Message
		resp.Details = appErr.Details
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %s %s: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, resp)
}
