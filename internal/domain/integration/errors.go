package integration

import (
	"errors"
	"fmt"
)

var (
	// ErrIntegrationNotFound is returned when no active integration exists
	// for an (installation, platform) pair
	ErrIntegrationNotFound = errors.New("integration: no active marketplace integration for installation")

	// ErrInvalidCredentialBlob is returned when a stored credential blob
	// cannot be deserialized or misses required fields
	ErrInvalidCredentialBlob = errors.New("integration: stored credential blob is invalid")

	// ErrUnsupportedPlatform is returned for platform codes without a typed
	// credential schema
	ErrUnsupportedPlatform = errors.New("integration: unsupported platform")

	// ErrInvalidCredentials is returned when the marketplace rejects the
	// client id / client secret pair. The message is user-facing and shown
	// verbatim in the dashboard.
	ErrInvalidCredentials = errors.New("de bol.com client id of client secret is ongeldig, controleer de integratie-instellingen")

	// ErrAccountInactive is returned when the marketplace refuses API access
	// for the account. The message is user-facing and shown verbatim.
	ErrAccountInactive = errors.New("het bol.com account is niet actief, neem contact op met het bol.com partnerteam")
)

// AuthError is returned when the token endpoint fails with a status other
// than 401. It carries the raw response for diagnostics.
type AuthError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return fmt.Sprintf("integration: token request failed with status %d: %s", e.Status, e.Body)
}

// APIError is returned for any other non-2xx marketplace response. Detail
// holds the "detail" field of the JSON error body when it was parseable.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("integration: marketplace request failed with status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("integration: marketplace request failed with status %d", e.Status)
}
