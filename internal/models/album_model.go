package models

import (
	"time"
)

const (
	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
	VisibilityPublic   = "public"
)

// ValidVisibility reports whether v is one of the three visibility tiers.
func ValidVisibility(v string) bool {
	return v == VisibilityPrivate || v == VisibilityUnlisted || v == VisibilityPublic
}

type Album struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OwnerID    uint   `gorm:"index;not null" json:"owner_id"`
	Owner      *User  `gorm:"foreignKey:OwnerID" json:"-"`
	Title      string `gorm:"size:255" json:"title"`
	Visibility string `gorm:"size:16;default:'private'" json:"visibility"`
	// CoverMediaID is a plain reference, not a gorm association: media already
	// references albums and a second FK the other way would be cyclic. The
	// "cover must belong to the album" invariant is enforced in the handler.
	CoverMediaID *uint     `json:"cover_media_id"`
	CreatedAt    time.Time `json:"created_at"`
}
