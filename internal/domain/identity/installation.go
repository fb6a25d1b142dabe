package identity

import (
	"context"
	"time"
)

// Installation is a tenant context: either a self-owned storefront or a
// fulfilment client. Orders, products and marketplace integrations belong
// to exactly one installation.
type Installation struct {
	ID        int64
	Name      string
	Active    bool
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InstallationRepository defines persistence operations for installations
type InstallationRepository interface {
	// FindByID finds an installation by its ID
	FindByID(ctx context.Context, id int64) (*Installation, error)

	// IDsWithActiveIntegration returns the distinct IDs of installations that
	// have at least one active integration for the given platform
	IDsWithActiveIntegration(ctx context.Context, platform string) ([]int64, error)
}
