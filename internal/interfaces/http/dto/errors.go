package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Domain
// errors carry their codes straight through; anything unknown falls
// back to 422 so business rule rejections never read as server faults.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeRateLimited:   http.StatusTooManyRequests,

	// Validation-style domain codes -> 400
	"INVALID_NAME":     http.StatusBadRequest,
	"INVALID_EMAIL":    http.StatusBadRequest,
	"INVALID_SLUG":     http.StatusBadRequest,
	"INVALID_NUMBER":   http.StatusBadRequest,
	"INVALID_CUSTOMER": http.StatusBadRequest,
	"INVALID_ITEM":     http.StatusBadRequest,
	"INVALID_TAX":      http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"INVALID_TITLE":    http.StatusBadRequest,
	"INVALID_SUBJECT":  http.StatusBadRequest,
	"INVALID_TYPE":     http.StatusBadRequest,
	"INVALID_STATUS":   http.StatusBadRequest,
	"INVALID_PRIORITY": http.StatusBadRequest,
	"INVALID_STAGE":    http.StatusBadRequest,
	"INVALID_VALUE":    http.StatusBadRequest,
	"WEAK_PASSWORD":    http.StatusBadRequest,

	// Auth domain codes
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"TENANT_SUSPENDED":    http.StatusForbidden,
	"TENANT_MISMATCH":     http.StatusForbidden,

	// Business rule codes
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"PAYMENT_EXCEEDS_TOTAL": http.StatusUnprocessableEntity,
	"HAS_DEPENDENT_RECORDS": http.StatusConflict,
	"SYSTEM_ROLE":           http.StatusUnprocessableEntity,
	"LAST_USER":             http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
