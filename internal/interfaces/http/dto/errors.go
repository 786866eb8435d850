package dto

import "net/http"

// API error codes use the form ERR_<CATEGORY>_<DESCRIPTION>.

// General codes.
const (
	// ErrCodeUnknown covers errors no other code fits.
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal covers unexpected server-side failures.
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation codes.
const (
	// ErrCodeValidation is the generic validation failure code.
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired flags a missing required field.
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat flags a malformed field value.
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange flags an out-of-range value.
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Resource codes.
const (
	// ErrCodeNotFound flags a missing resource.
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists flags an attempted duplicate create.
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict flags a general resource conflict.
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict flags a lost optimistic-lock race.
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Stock rule codes.
const (
	// ErrCodeInvalidState flags an operation the record's current
	// status forbids.
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule flags other business rule violations.
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientStock flags a reservation exceeding
	// available stock.
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeInsufficientReserved flags a release exceeding the
	// reserved pool.
	ErrCodeInsufficientReserved = "ERR_INSUFFICIENT_RESERVED"
	// ErrCodeInsufficientOnHand flags a reduction exceeding on-hand
	// stock.
	ErrCodeInsufficientOnHand = "ERR_INSUFFICIENT_ON_HAND"
	// ErrCodeDiscontinued flags a mutation on a discontinued record.
	ErrCodeDiscontinued = "ERR_DISCONTINUED"
)

// Input codes.
const (
	// ErrCodeBadRequest flags a malformed request.
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput flags semantically invalid input.
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON flags a body that failed to parse.
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps each API error code to its response status.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Guard failures are well-formed requests the stock state
	// rejects, so they map to 422 rather than 400.
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeInsufficientReserved: http.StatusUnprocessableEntity,
	ErrCodeInsufficientOnHand:   http.StatusUnprocessableEntity,
	ErrCodeDiscontinued:         http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus resolves an error code to its HTTP status, defaulting
// to 500 for unregistered codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates domain error codes into API codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":    ErrCodeInsufficientStock,
	"INSUFFICIENT_RESERVED": ErrCodeInsufficientReserved,
	"INSUFFICIENT_ON_HAND":  ErrCodeInsufficientOnHand,
	"DISCONTINUED":          ErrCodeDiscontinued,
	"VALIDATION_ERROR":      ErrCodeValidation,
	"BAD_REQUEST":           ErrCodeBadRequest,
	"INTERNAL_ERROR":        ErrCodeInternal,
}

// NormalizeErrorCode maps a domain code to its API code, passing
// through codes that already look like API codes or are unknown.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
