package identity

import (
	"context"
	"time"
)

// User is a back-office operator. Admins can act on every installation;
// regular users only on the installations they are assigned to.
type User struct {
	ID              int64
	Email           string
	Name            string
	Admin           bool
	Active          bool
	InstallationIDs []int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanAccessInstallation reports whether the user may operate on the
// given installation.
func (u *User) CanAccessInstallation(installationID int64) bool {
	if u.Admin {
		return true
	}
	for _, id := range u.InstallationIDs {
		if id == installationID {
			return true
		}
	}
	return false
}

// UserRepository defines persistence operations for users
type UserRepository interface {
	// FindByID finds a user by ID, including installation assignments
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail finds a user by email address
	FindByEmail(ctx context.Context, email string) (*User, error)
}
