package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/fulfilhub/backend/internal/domain/integration"
	"github.com/fulfilhub/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationRepository implements IntegrationRepository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindActiveByInstallationAndPlatform returns the active integration for
// the (installation, platform) pair. When several active rows exist the
// oldest wins, so sync behavior is stable across cycles.
func (r *GormIntegrationRepository) FindActiveByInstallationAndPlatform(ctx context.Context, installationID int64, platform integration.PlatformCode) (*integration.Integration, error) {
	var model models.IntegrationModel
	err := r.db.WithContext(ctx).
		Where("installation_id = ? AND platform = ? AND active = ?", installationID, string(platform), true).
		Order("id").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormIntegrationRepository implements IntegrationRepository
var _ integration.IntegrationRepository = (*GormIntegrationRepository)(nil)
