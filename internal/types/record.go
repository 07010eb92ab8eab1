package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Archival levels. Level is a closed tag on ArchivalRecord; the former
// Collection/Series/File/Item class-per-level hierarchy is folded into one
// table with level-specific columns left null where they do not apply.
type Level string

const (
	LevelCollection Level = "collection"
	LevelSeries     Level = "series"
	LevelFile       Level = "file"
	LevelItem       Level = "item"
)

// ArchivalRecord is one unit of the Collection > Series > File > Item
// hierarchy. UUID is the externally stable identifier (import is idempotent
// on it); the row is never hard-deleted, only flagged via the deleted
// maintenance status.
type ArchivalRecord struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UUID  string    `gorm:"uniqueIndex;not null;column:uuid" json:"uuid"`
	Level Level     `gorm:"not null;index;column:level" json:"level"`

	ProjectID    *uuid.UUID  `gorm:"type:uuid;column:project_id;index" json:"project_id,omitempty"`
	Project      *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	RepositoryID *uuid.UUID  `gorm:"type:uuid;column:repository_id" json:"repository_id,omitempty"`
	Repository   *Repository `gorm:"foreignKey:RepositoryID" json:"repository,omitempty"`

	References    []*Reference `gorm:"many2many:archival_record_reference" json:"references,omitempty"`
	CalmReference *string      `gorm:"uniqueIndex;column:calm_reference" json:"calm_reference,omitempty"`
	RCIN          string       `gorm:"column:rcin" json:"rcin,omitempty"`

	Title         string `gorm:"not null;column:title" json:"title"`
	CreationDates string `gorm:"column:creation_dates" json:"creation_dates,omitempty"`
	// Normalized partial ISO dates: YYYY, YYYY-MM or YYYY-MM-DD. Left empty
	// when the free-text creation dates fail every parse pattern.
	StartDate string `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate   string `gorm:"column:end_date" json:"end_date,omitempty"`

	Description string         `gorm:"column:description" json:"description,omitempty"`
	Notes       string         `gorm:"column:notes" json:"notes,omitempty"`
	Extent      string         `gorm:"column:extent" json:"extent,omitempty"`
	Languages   datatypes.JSON `gorm:"column:languages;type:jsonb" json:"languages,omitempty"`
	Language    string         `gorm:"column:language" json:"language,omitempty"`
	Script      string         `gorm:"column:script" json:"script,omitempty"`

	// Collection-level fields.
	AdministrativeHistory string `gorm:"column:administrative_history" json:"administrative_history,omitempty"`
	Arrangement           string `gorm:"column:arrangement" json:"arrangement,omitempty"`
	// Series-level and below.
	Publications string `gorm:"column:publications" json:"publications,omitempty"`
	// File/Item-level fields.
	PhysicalDescription string `gorm:"column:physical_description" json:"physical_description,omitempty"`
	Withheld            string `gorm:"column:withheld" json:"withheld,omitempty"`
	CopyrightStatus     string `gorm:"column:copyright_status" json:"copyright_status,omitempty"`
	URL                 string `gorm:"column:url" json:"url,omitempty"`

	// Parent pointers. At most one is set, matching the level above this
	// record's own.
	ParentCollectionID *uuid.UUID      `gorm:"type:uuid;column:parent_collection_id" json:"parent_collection_id,omitempty"`
	ParentSeriesID     *uuid.UUID      `gorm:"type:uuid;column:parent_series_id" json:"parent_series_id,omitempty"`
	ParentFileID       *uuid.UUID      `gorm:"type:uuid;column:parent_file_id" json:"parent_file_id,omitempty"`
	ParentCollection   *ArchivalRecord `gorm:"foreignKey:ParentCollectionID" json:"-"`
	ParentSeries       *ArchivalRecord `gorm:"foreignKey:ParentSeriesID" json:"-"`
	ParentFile         *ArchivalRecord `gorm:"foreignKey:ParentFileID" json:"-"`

	RecordTypes []*RecordType `gorm:"many2many:archival_record_record_type" json:"record_types,omitempty"`

	// Entity linkage roles. The merge engine repoints all of these with
	// set-union semantics.
	Creators                []*Entity `gorm:"many2many:archival_record_creator" json:"creators,omitempty"`
	PersonsAsRelations      []*Entity `gorm:"many2many:archival_record_person_relation" json:"persons_as_relations,omitempty"`
	PersonsAsSubjects       []*Entity `gorm:"many2many:archival_record_person_subject" json:"persons_as_subjects,omitempty"`
	OrganisationsAsSubjects []*Entity `gorm:"many2many:archival_record_organisation_subject" json:"organisations_as_subjects,omitempty"`
	RelatedEntities         []*Entity `gorm:"many2many:archival_record_related_entity" json:"related_entities,omitempty"`

	MaintenanceStatusID *uuid.UUID         `gorm:"type:uuid;column:maintenance_status_id" json:"maintenance_status_id,omitempty"`
	MaintenanceStatus   *MaintenanceStatus `gorm:"foreignKey:MaintenanceStatusID" json:"maintenance_status,omitempty"`
	PublicationStatusID *uuid.UUID         `gorm:"type:uuid;column:publication_status_id" json:"publication_status_id,omitempty"`
	PublicationStatus   *PublicationStatus `gorm:"foreignKey:PublicationStatusID" json:"publication_status,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ArchivalRecord) TableName() string { return "archival_record" }

func (r *ArchivalRecord) IsDeleted() bool {
	return r.MaintenanceStatus != nil && r.MaintenanceStatus.Title == StatusDeleted
}

// ParseLevel maps the free-text "Level" cell onto the closed level tags.
// Matching is case-insensitive; "fonds" is a collection, anything ending in
// "series" is a series and anything containing "file" is a file, which
// tolerates the source data's "sub-series", "Sub File" etc.
func ParseLevel(s string) (Level, bool) {
	level := strings.ToLower(strings.TrimSpace(s))
	switch {
	case level == "collection" || level == "fonds":
		return LevelCollection, true
	case strings.HasSuffix(level, "series"):
		return LevelSeries, true
	case strings.Contains(level, "file"):
		return LevelFile, true
	case level == "item":
		return LevelItem, true
	}
	return "", false
}
