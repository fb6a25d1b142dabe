package integration

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Credentials is the typed variant of a stored credential blob. The shape
// varies per platform, so the blob is deserialized once at the boundary
// keyed by the integration's platform code instead of being passed around
// as an untyped map.
type Credentials interface {
	// Platform returns the platform this credential set belongs to
	Platform() PlatformCode

	// Validate checks that the required fields are present
	Validate() error
}

// BolCredentials is the client-credentials pair for the bol.com retailer API
type BolCredentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Platform returns PlatformBol
func (c BolCredentials) Platform() PlatformCode {
	return PlatformBol
}

// Validate checks that both halves of the credential pair are present
func (c BolCredentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrInvalidCredentialBlob
	}
	return nil
}

// Fingerprint returns a stable hash of the credential pair, used as a
// cache key so tokens are never shared across credential sets.
func (c BolCredentials) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.ClientID + ":" + c.ClientSecret))
	return hex.EncodeToString(sum[:])
}

// ParseCredentials deserializes a stored credential blob into the typed
// variant for the given platform.
func ParseCredentials(platform PlatformCode, blob string) (Credentials, error) {
	switch platform {
	case PlatformBol:
		var creds BolCredentials
		if err := json.Unmarshal([]byte(blob), &creds); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentialBlob, err)
		}
		if err := creds.Validate(); err != nil {
			return nil, err
		}
		return creds, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
}
