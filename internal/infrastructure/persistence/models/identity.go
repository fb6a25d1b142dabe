package models

import (
	"time"

	"github.com/fulfilhub/backend/internal/domain/identity"
)

// InstallationModel is the persistence model for the Installation entity
type InstallationModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"type:varchar(200);not null"`
	Active    bool   `gorm:"not null;default:true"`
	Country   string `gorm:"type:varchar(2);not null;default:'NL'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (InstallationModel) TableName() string {
	return "installations"
}

// ToDomain converts the persistence model to a domain Installation entity
func (m *InstallationModel) ToDomain() *identity.Installation {
	return &identity.Installation{
		ID:        m.ID,
		Name:      m.Name,
		Active:    m.Active,
		Country:   m.Country,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Installation entity
func (m *InstallationModel) FromDomain(installation *identity.Installation) {
	m.ID = installation.ID
	m.Name = installation.Name
	m.Active = installation.Active
	m.Country = installation.Country
	m.CreatedAt = installation.CreatedAt
	m.UpdatedAt = installation.UpdatedAt
}

// UserModel is the persistence model for the User entity
type UserModel struct {
	ID            int64                   `gorm:"primaryKey;autoIncrement"`
	Email         string                  `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name          string                  `gorm:"type:varchar(200);not null"`
	Admin         bool                    `gorm:"not null;default:false"`
	Active        bool                    `gorm:"not null;default:true"`
	Installations []UserInstallationModel `gorm:"foreignKey:UserID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// UserInstallationModel links a user to an installation it may operate on
type UserInstallationModel struct {
	UserID         int64 `gorm:"primaryKey"`
	InstallationID int64 `gorm:"primaryKey"`
}

// TableName returns the table name for GORM
func (UserInstallationModel) TableName() string {
	return "user_installations"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	installationIDs := make([]int64, 0, len(m.Installations))
	for _, link := range m.Installations {
		installationIDs = append(installationIDs, link.InstallationID)
	}

	return &identity.User{
		ID:              m.ID,
		Email:           m.Email,
		Name:            m.Name,
		Admin:           m.Admin,
		Active:          m.Active,
		InstallationIDs: installationIDs,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
