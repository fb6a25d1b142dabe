package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/fulfilhub/backend/internal/domain/identity"
	"github.com/fulfilhub/backend/internal/domain/shared"
	"github.com/fulfilhub/backend/internal/infrastructure/persistence/models"
)

// GormInstallationRepository implements InstallationRepository using GORM
type GormInstallationRepository struct {
	db *gorm.DB
}

// NewGormInstallationRepository creates a new GormInstallationRepository
func NewGormInstallationRepository(db *gorm.DB) *GormInstallationRepository {
	return &GormInstallationRepository{db: db}
}

// FindByID finds an installation by its ID
func (r *GormInstallationRepository) FindByID(ctx context.Context, id int64) (*identity.Installation, error) {
	var model models.InstallationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// IDsWithActiveIntegration returns the distinct IDs of installations that
// have at least one active integration for the given platform
func (r *GormInstallationRepository) IDsWithActiveIntegration(ctx context.Context, platform string) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.IntegrationModel{}).
		Where("platform = ? AND active = ?", platform, true).
		Distinct("installation_id").
		Order("installation_id").
		Pluck("installation_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormInstallationRepository implements InstallationRepository
var _ identity.InstallationRepository = (*GormInstallationRepository)(nil)
