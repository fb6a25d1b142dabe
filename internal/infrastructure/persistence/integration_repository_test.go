package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fulfilhub/backend/internal/domain/integration"
	"github.com/fulfilhub/backend/internal/infrastructure/persistence/models"
)

func newTestIntegrationRepository(t *testing.T) (*GormIntegrationRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.IntegrationModel{}))
	return NewGormIntegrationRepository(db), db
}

func TestGormIntegrationRepository_FindActiveByInstallationAndPlatform(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the active integration", func(t *testing.T) {
		repo, db := newTestIntegrationRepository(t)
		require.NoError(t, db.Create(&models.IntegrationModel{
			InstallationID: 42,
			Platform:       "bol.com",
			Active:         true,
			Credentials:    `{"clientId":"id-1","clientSecret":"sec-1"}`,
		}).Error)

		integ, err := repo.FindActiveByInstallationAndPlatform(ctx, 42, integration.PlatformBol)
		require.NoError(t, err)
		assert.Equal(t, int64(42), integ.InstallationID)
		assert.Equal(t, integration.PlatformBol, integ.Platform)
		assert.True(t, integ.Active)
	})

	t.Run("inactive integrations are skipped", func(t *testing.T) {
		repo, db := newTestIntegrationRepository(t)
		require.NoError(t, db.Create(&models.IntegrationModel{
			InstallationID: 42,
			Platform:       "bol.com",
			Active:         false,
			Credentials:    `{}`,
		}).Error)

		_, err := repo.FindActiveByInstallationAndPlatform(ctx, 42, integration.PlatformBol)
		assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	})

	t.Run("oldest active row wins", func(t *testing.T) {
		repo, db := newTestIntegrationRepository(t)
		require.NoError(t, db.Create(&models.IntegrationModel{
			InstallationID: 42,
			Platform:       "bol.com",
			Active:         true,
			Credentials:    `{"clientId":"first"}`,
		}).Error)
		require.NoError(t, db.Create(&models.IntegrationModel{
			InstallationID: 42,
			Platform:       "bol.com",
			Active:         true,
			Credentials:    `{"clientId":"second"}`,
		}).Error)

		integ, err := repo.FindActiveByInstallationAndPlatform(ctx, 42, integration.PlatformBol)
		require.NoError(t, err)
		assert.Contains(t, integ.Credentials, "first")
	})

	t.Run("other installation is not visible", func(t *testing.T) {
		repo, db := newTestIntegrationRepository(t)
		require.NoError(t, db.Create(&models.IntegrationModel{
			InstallationID: 43,
			Platform:       "bol.com",
			Active:         true,
			Credentials:    `{}`,
		}).Error)

		_, err := repo.FindActiveByInstallationAndPlatform(ctx, 42, integration.PlatformBol)
		assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	})
}
