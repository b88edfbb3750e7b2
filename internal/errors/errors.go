// Package errors defines the application error type and the JSON envelopes
// the HTTP layer writes for successes and failures.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeInput          ErrorCode = "INPUT_ERROR"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeRateLimit      ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavail ErrorCode = "SERVICE_UNAVAILABLE"
	CodeTimeout        ErrorCode = "TIMEOUT"
)

var statusCodes = map[ErrorCode]int{
	CodeInput:          http.StatusUnprocessableEntity,
	CodeValidation:     http.StatusBadRequest,
	CodeBadRequest:     http.StatusBadRequest,
	CodeNotFound:       http.StatusNotFound,
	CodeRateLimit:      http.StatusTooManyRequests,
	CodeServiceUnavail: http.StatusServiceUnavailable,
	CodeTimeout:        http.StatusGatewayTimeout,
}

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches a client-facing hint, such as the accepted values.
func (e *AppError) WithDetails(format string, args ...any) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

func New(code ErrorCode, message string) *AppError {
	return Wrap(nil, code, message)
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	status, ok := statusCodes[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Cause:      err,
		Timestamp:  time.Now().UTC(),
	}
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

// Input reports an unusable brand catalog. Generation aborts on it and no
// partial dataset is produced.
func Input(message string) *AppError {
	return New(CodeInput, message)
}

func InputWrap(err error, message string) *AppError {
	return Wrap(err, CodeInput, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func ValidationWrap(err error, message string) *AppError {
	return Wrap(err, CodeValidation, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func BadRequestWrap(err error, message string) *AppError {
	return Wrap(err, CodeBadRequest, message)
}

func RateLimit(message string) *AppError {
	return New(CodeRateLimit, message)
}

func ServiceUnavailable(message string) *AppError {
	return New(CodeServiceUnavail, message)
}

// Is reports whether err, or any error it wraps, is an AppError with code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// From finds the AppError inside err. Deadline errors become timeouts and
// anything else is reported as internal.
func From(err error) *AppError {
	var appErr *AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, context.DeadlineExceeded):
		return Wrap(err, CodeTimeout, "The operation timed out")
	default:
		return Wrap(err, CodeInternal, "An unexpected error occurred")
	}
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	appErr := *From(err)
	appErr.RequestID = requestID

	if encodeErr := writeJSON(w, appErr.StatusCode, ErrorResponse{Error: &appErr}); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
		return
	}

	logLevel := slog.LevelError
	if appErr.StatusCode < http.StatusInternalServerError {
		logLevel = slog.LevelWarn
	}

	logger.Log(context.Background(), logLevel, "request failed",
		"error_code", appErr.Code,
		"error_message", appErr.Message,
		"status_code", appErr.StatusCode,
		"request_id", requestID,
		"cause", appErr.Cause,
	)
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, SuccessResponse{Data: data, Success: true})
}

func WriteSuccessWithHeaders(w http.ResponseWriter, data any, headers map[string]string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	WriteSuccess(w, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
