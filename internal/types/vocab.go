package types

import (
	"time"

	"github.com/google/uuid"
)

// Controlled vocabulary terms. Each is a small titled table looked up (or
// created) by title during import; external thesauri (UKAT, VIAF) are only
// ever consulted through these rows.

type EntityType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntityType) TableName() string { return "entity_type" }

type EntityRelationType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EntityRelationType) TableName() string { return "entity_relation_type" }

type ResourceRelationType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ResourceRelationType) TableName() string { return "resource_relation_type" }

type NamePartType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (NamePartType) TableName() string { return "name_part_type" }

// MaintenanceStatus carries the soft-delete flag: a record whose status
// title is "deleted" stays in the store but is no longer canonical.
type MaintenanceStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MaintenanceStatus) TableName() string { return "maintenance_status" }

type PublicationStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PublicationStatus) TableName() string { return "publication_status" }

type RecordType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (RecordType) TableName() string { return "record_type" }

// ReferenceSource names an external catalogue numbering scheme ("RA",
// "CALM", ...).
type ReferenceSource struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ReferenceSource) TableName() string { return "reference_source" }

type Repository struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      int       `gorm:"not null;column:code" json:"code"`
	Title     string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Repository) TableName() string { return "repository" }

// Status titles with meaning to the lifecycle code.
const (
	StatusNew       = "new"
	StatusDeleted   = "deleted"
	StatusInProcess = "inProcess"
	StatusPublished = "published"
)
