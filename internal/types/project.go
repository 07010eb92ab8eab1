package types

import (
	"time"

	"github.com/google/uuid"
)

// Project is the tenancy boundary: archival records and entities scope
// to at most one project, and cross-project merges and links are refused.
type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	Slug      string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "project" }
