package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Visibility is the authorization tier of a stored object.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityPrivate    Visibility = "private"
	VisibilityRestricted Visibility = "restricted"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityRestricted:
		return true
	}
	return false
}

// FileRecord is the metadata row for one stored object, keyed by its
// storage path. All access decisions read visibility from here, never
// from the blob backend.
type FileRecord struct {
	Path         string            `json:"path" gorm:"type:varchar(1024);primaryKey"`
	ContentType  string            `json:"content_type" gorm:"type:varchar(255);not null"`
	Size         int64             `json:"size" gorm:"not null"`
	Visibility   Visibility        `json:"visibility" gorm:"type:varchar(16);not null;default:'private';index"`
	OwnerID      *uuid.UUID        `json:"owner_id,omitempty" gorm:"type:uuid;index"`
	ResourceID   string            `json:"resource_id,omitempty" gorm:"type:varchar(255);index"`
	ResourceType string            `json:"resource_type,omitempty" gorm:"type:varchar(64)"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	AccessCount  int64             `json:"access_count" gorm:"not null;default:0"`
	LastAccessed *time.Time        `json:"last_accessed,omitempty"`
	UploadedAt   time.Time         `json:"uploaded_at" gorm:"not null;autoCreateTime"`
}

func (FileRecord) TableName() string {
	return "file_records"
}

func (r *FileRecord) IsVideo() bool {
	return strings.HasPrefix(r.ContentType, "video/")
}

// FileName returns the basename of the storage path.
func (r *FileRecord) FileName() string {
	if idx := strings.LastIndex(r.Path, "/"); idx >= 0 {
		return r.Path[idx+1:]
	}
	return r.Path
}
