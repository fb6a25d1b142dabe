package integration

import (
	"context"
	"time"
)

// PlatformCode identifies an external marketplace platform.
type PlatformCode string

const (
	// PlatformBol represents the bol.com retailer platform
	PlatformBol PlatformCode = "bol.com"
)

// IsValid returns true if the platform code is known
func (c PlatformCode) IsValid() bool {
	return c == PlatformBol
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// Integration binds one installation to one marketplace platform: it
// carries the serialized credential and settings blobs entered by an
// administrator. Multiple integrations per (installation, platform) are
// permitted; the sync subsystem consumes the first active one and treats
// the record as read-only.
type Integration struct {
	ID             int64
	InstallationID int64
	Platform       PlatformCode
	Active         bool
	Credentials    string
	Settings       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ParseCredentials deserializes the stored credential blob into the typed
// variant for this integration's platform. A malformed blob is a fatal
// configuration error, not something to retry.
func (i *Integration) ParseCredentials() (Credentials, error) {
	return ParseCredentials(i.Platform, i.Credentials)
}

// IntegrationRepository defines persistence operations for integrations
type IntegrationRepository interface {
	// FindActiveByInstallationAndPlatform returns the active integration for
	// the (installation, platform) pair, or ErrIntegrationNotFound when no
	// active row exists
	FindActiveByInstallationAndPlatform(ctx context.Context, installationID int64, platform PlatformCode) (*Integration, error)
}
