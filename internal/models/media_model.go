package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type Media struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"-"`
	AlbumID     *uint          `gorm:"index" json:"album_id"`
	Type        string         `gorm:"size:16;index" json:"type"`
	Filename    string         `gorm:"size:255" json:"filename"`
	Title       string         `gorm:"size:255" json:"title"`
	MimeType    string         `gorm:"size:128" json:"mime_type"`
	Bytes       int64          `json:"bytes"`
	Width       *int           `json:"width,omitempty"`
	Height      *int           `json:"height,omitempty"`
	DurationSec *int           `json:"duration_sec,omitempty"`
	SHA256      string         `gorm:"column:sha256;size:64;uniqueIndex" json:"sha256"`
	TakenAt     *time.Time     `gorm:"index" json:"taken_at"`
	StoragePath string         `gorm:"size:512" json:"storage_path"`
	PreviewPath string         `gorm:"size:512" json:"preview_path"`
	Probe       datatypes.JSON `json:"-"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	Tags        []Tag          `gorm:"many2many:media_tags" json:"tags,omitempty"`
}

// TableName keeps gorm from pluralizing "media".
func (Media) TableName() string { return "media" }

// IsVideo reports whether the row is currently classified as video.
func (m *Media) IsVideo() bool { return m.Type == MediaTypeVideo }

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
