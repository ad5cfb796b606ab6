package models

import (
	"time"
)

const (
	RoleDeveloper = "developer"
	RoleManager   = "manager"
	RoleViewer    = "viewer"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         string    `gorm:"size:20;default:'viewer'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsElevated reports whether the user may see every album regardless of
// visibility.
func (u *User) IsElevated() bool {
	return u.Role == RoleDeveloper
}

// CanManageMedia reports whether the user may upload, edit and delete media.
func (u *User) CanManageMedia() bool {
	return u.Role == RoleDeveloper || u.Role == RoleManager
}
