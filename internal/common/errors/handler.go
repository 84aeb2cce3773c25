package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler turns errors raised by HTTP handlers into JSON responses with a
// status derived from the error category.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError normalizes err, logs it and writes the JSON body.
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := AsStandardError(err)
	status := StatusFor(stdErr.Code)

	h.logError(r, stdErr, status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(stdErr)
}

// StatusFor maps an error code onto the HTTP status returned to browsers.
func StatusFor(code ErrorCode) int {
	switch GetErrorCategory(code) {
	case CategoryValidation:
		return http.StatusUnprocessableEntity
	case CategoryConcurrency:
		if code == ErrCodeGuardUnavailable || code == ErrCodeSessionLimitReached {
			return http.StatusServiceUnavailable
		}
		return http.StatusConflict
	case CategoryRequest, CategoryTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	if h.logger == nil {
		return
	}
	h.logger.Error("Request failed", map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}
