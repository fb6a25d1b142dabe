package models

import (
	"time"

	"github.com/fulfilhub/backend/internal/domain/integration"
)

// IntegrationModel is the persistence model for the Integration entity
type IntegrationModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	InstallationID int64  `gorm:"not null;index:idx_integration_installation_platform,priority:1"`
	Platform       string `gorm:"type:varchar(50);not null;index:idx_integration_installation_platform,priority:2"`
	Active         bool   `gorm:"not null;default:true"`
	Credentials    string `gorm:"type:text;not null"`
	Settings       string `gorm:"type:jsonb"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (IntegrationModel) TableName() string {
	return "integrations"
}

// ToDomain converts the persistence model to a domain Integration entity
func (m *IntegrationModel) ToDomain() *integration.Integration {
	return &integration.Integration{
		ID:             m.ID,
		InstallationID: m.InstallationID,
		Platform:       integration.PlatformCode(m.Platform),
		Active:         m.Active,
		Credentials:    m.Credentials,
		Settings:       m.Settings,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Integration entity
func (m *IntegrationModel) FromDomain(integ *integration.Integration) {
	m.ID = integ.ID
	m.InstallationID = integ.InstallationID
	m.Platform = string(integ.Platform)
	m.Active = integ.Active
	m.Credentials = integ.Credentials
	m.Settings = integ.Settings
	m.CreatedAt = integ.CreatedAt
	m.UpdatedAt = integ.UpdatedAt
}
