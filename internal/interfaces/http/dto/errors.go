package dto

import "net/http"

// Error codes returned in the error envelope. Domain errors carry the same
// codes, so handlers can translate them without a second mapping layer.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeUnauthorized is used when authentication is required but missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeAccessDenied is used when the caller is not assigned to the installation
	ErrCodeAccessDenied = "ACCESS_DENIED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when creating a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeIntegrationNotFound is used when no active marketplace integration exists
	ErrCodeIntegrationNotFound = "INTEGRATION_NOT_FOUND"
	// ErrCodeInvalidCredentials is used when the marketplace rejects stored credentials
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// ErrCodeAccountInactive is used when the marketplace account is not active
	ErrCodeAccountInactive = "ACCOUNT_INACTIVE"
	// ErrCodeMarketplaceError is used when the marketplace returns an unexpected status
	ErrCodeMarketplaceError = "MARKETPLACE_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeAccessDenied:        http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeIntegrationNotFound: http.StatusNotFound,
	ErrCodeInvalidCredentials:  http.StatusBadGateway,
	ErrCodeAccountInactive:     http.StatusBadGateway,
	ErrCodeMarketplaceError:    http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code, defaulting
// to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
