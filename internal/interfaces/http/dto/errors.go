package dto

import (
	"net/http"
	"strings"
)

// API error codes. Every code sent to clients has the ERR_ prefix; domain
// codes are translated through domainCodes or passed through unchanged.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"
	ErrCodeEmptyCart          = "ERR_EMPTY_CART"
	ErrCodeProductUnavailable = "ERR_PRODUCT_UNAVAILABLE"

	ErrCodeUnavailable     = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeTimeout         = "ERR_TIMEOUT"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

var codeStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:          http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable: http.StatusUnprocessableEntity,

	ErrCodeUnavailable:     http.StatusServiceUnavailable,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// domainCodes maps domain error codes onto API codes
var domainCodes = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":  ErrCodeConflict,
	"OPTIMISTIC_LOCK_ERROR": ErrCodeConflict,
	"INVALID_INPUT":         ErrCodeBadRequest,
	"INVALID_STATE":         ErrCodeInvalidState,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"INSUFFICIENT_STOCK":    ErrCodeInsufficientStock,
	"EMPTY_CART":            ErrCodeEmptyCart,
	"PRODUCT_UNAVAILABLE":   ErrCodeProductUnavailable,
	"TOKEN_EXPIRED":         ErrCodeTokenExpired,
	"TOKEN_INVALID":         ErrCodeTokenInvalid,
	"TOKEN_REVOKED":         ErrCodeTokenInvalid,
	"INVALID_CREDENTIALS":   ErrCodeUnauthorized,
	"INVOICES_DISABLED":     ErrCodeUnavailable,
	"REQUEST_TOO_LARGE":     ErrCodeRequestTooLarge,
}

// conflictCodes are domain codes that describe a clash with existing state
var conflictCodes = map[string]bool{
	"EMAIL_TAKEN":           true,
	"CHECKOUT_IN_PROGRESS":  true,
	"CATEGORY_HAS_CHILDREN": true,
}

// NormalizeErrorCode converts a domain code to its API code. Unknown codes
// are returned unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	return code
}

// StatusForDomainCode resolves the HTTP status of a domain error code.
// Mapped codes use their API status; other codes are classified by naming
// convention and fall back to 422.
func StatusForDomainCode(code string) int {
	if status, ok := codeStatus[NormalizeErrorCode(code)]; ok {
		return status
	}
	switch {
	case code == "ACCOUNT_DEACTIVATED":
		return http.StatusForbidden
	case strings.HasPrefix(code, "TOKEN_"):
		return http.StatusUnauthorized
	case conflictCodes[code],
		strings.HasPrefix(code, "ALREADY_"),
		strings.HasSuffix(code, "_IN_USE"),
		strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"),
		code == "UNSUPPORTED_LOCALE":
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
