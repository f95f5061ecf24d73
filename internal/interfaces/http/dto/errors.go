package dto

import "net/http"

// API error codes
const (
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeConflict         = "ERR_CONFLICT"
	ErrCodeUnprocessable    = "ERR_UNPROCESSABLE"
	ErrCodeLocked           = "ERR_LOCKED"
	ErrCodePayloadTooLarge  = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeInternal         = "ERR_INTERNAL"
	ErrCodeNotImplemented   = "ERR_NOT_IMPLEMENTED"
	ErrCodeTooManyRequests  = "ERR_TOO_MANY_REQUESTS"
	ErrCodeServiceUnhealthy = "ERR_SERVICE_UNHEALTHY"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeUnprocessable:    http.StatusUnprocessableEntity,
	ErrCodeLocked:           http.StatusConflict,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeNotImplemented:   http.StatusNotImplemented,
	ErrCodeTooManyRequests:  http.StatusTooManyRequests,
	ErrCodeServiceUnhealthy: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an API error code.
// Unknown codes default to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here default to 422: the request was well formed but
// the domain refused it.
var domainCodeHTTPStatus = map[string]int{
	"NOT_FOUND":             http.StatusNotFound,
	"CUSTOMER_NOT_FOUND":    http.StatusNotFound,
	"ACCOUNT_NOT_FOUND":     http.StatusNotFound,
	"TRANSACTION_NOT_FOUND": http.StatusNotFound,
	"UNKNOWN_DOCUMENT_TYPE": http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"EMAIL_EXISTS":         http.StatusConflict,
	"IBAN_EXISTS":          http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DOCUMENT_LOCKED":      http.StatusConflict,
	"ALREADY_CANCELLED":    http.StatusConflict,
	"ALREADY_CORRECTED":    http.StatusConflict,
	"ALREADY_PAID":         http.StatusConflict,

	"INVALID_INPUT":     http.StatusBadRequest,
	"MISSING_COLUMNS":   http.StatusBadRequest,
	"FILE_TOO_LARGE":    http.StatusRequestEntityTooLarge,
	"INVALID_FILE_NAME": http.StatusBadRequest,
}

// DomainErrorHTTPStatus returns the HTTP status for a domain error code
func DomainErrorHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
