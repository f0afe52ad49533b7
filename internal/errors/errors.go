package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeUpstream    ErrorType = "upstream"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypePersistence ErrorType = "persistence"
)

// UpstreamKind classifies failures of the completion backend
type UpstreamKind string

const (
	UpstreamTimeout   UpstreamKind = "timeout"
	UpstreamHTTP      UpstreamKind = "http_error"
	UpstreamMalformed UpstreamKind = "malformed_response"
)

// UpstreamError is a classified failure from the completion backend.
// It is never retried; the caller decides how to surface it.
type UpstreamError struct {
	Kind       UpstreamKind
	Detail     string
	StatusCode int // backend HTTP status, only set for UpstreamHTTP
	Cause      error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("upstream %s: %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying cause
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NewUpstreamTimeout reports that the backend did not answer within the bound
func NewUpstreamTimeout(cause error) *UpstreamError {
	return &UpstreamError{Kind: UpstreamTimeout, Detail: "no response within the request timeout", Cause: cause}
}

// NewUpstreamHTTP reports a non-2xx backend response
func NewUpstreamHTTP(status int, body string) *UpstreamError {
	return &UpstreamError{Kind: UpstreamHTTP, StatusCode: status, Detail: body}
}

// NewUpstreamMalformed reports a 2xx response that lacked completion text
func NewUpstreamMalformed(detail string) *UpstreamError {
	return &UpstreamError{Kind: UpstreamMalformed, Detail: detail}
}

// AsUpstream extracts an UpstreamError from an error chain
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"-"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: statusCodeForErrorType(errorType),
		Timestamp:  time.Now(),
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// statusCodeForErrorType maps error types to HTTP status codes
func statusCodeForErrorType(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	case ErrorTypePersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewAppError(ErrorTypeValidation, "VALIDATION_FAILED", message, nil).WithDetails(details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, "RESOURCE_NOT_FOUND", fmt.Sprintf("%s not found", resource), nil)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, "CONFLICT", message, nil)
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeInternal, "INTERNAL_ERROR", message, cause)
}

// NewPersistenceError creates a document store error for the read path
func NewPersistenceError(message string, cause error) *AppError {
	return NewAppError(ErrorTypePersistence, "PERSISTENCE_ERROR", message, cause)
}

// FromUpstream converts a classified backend failure into the API error shape.
// The kind stays visible so a caller can tell "backend unavailable" from "bad input".
func FromUpstream(err *UpstreamError) *AppError {
	details := map[string]interface{}{
		"kind":   string(err.Kind),
		"detail": err.Detail,
	}
	if err.StatusCode != 0 {
		details["upstream_status"] = err.StatusCode
	}

	errorType := ErrorTypeUpstream
	if err.Kind == UpstreamTimeout {
		errorType = ErrorTypeTimeout
	}
	return NewAppError(errorType, "ANALYSIS_FAILED", "analysis failed", err).WithDetails(details)
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// SendError sends a standardized error response
func SendError(w http.ResponseWriter, appErr *AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Error:     http.StatusText(appErr.StatusCode),
			Message:   appErr.Message,
			Code:      appErr.Code,
			Details:   appErr.Details,
			Timestamp: appErr.Timestamp,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// SendSuccess sends a standardized success response
func SendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := APIResponse{
		Success: true,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}
