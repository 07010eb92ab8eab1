package types

import (
	"time"

	"github.com/google/uuid"
)

// Entity is an authority record for a person, organisation or family,
// independent of any archival item. Its dependent graph (identities, names,
// descriptions, relations, resources, control) hangs off it by foreign key.
type Entity struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	EntityTypeID uuid.UUID   `gorm:"type:uuid;not null;column:entity_type_id" json:"entity_type_id"`
	EntityType   *EntityType `gorm:"foreignKey:EntityTypeID" json:"entity_type,omitempty"`
	ProjectID    *uuid.UUID  `gorm:"type:uuid;column:project_id;index" json:"project_id,omitempty"`
	Project      *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	Identities []*Identity `gorm:"foreignKey:EntityID" json:"identities,omitempty"`
	Control    *Control    `gorm:"foreignKey:EntityID" json:"control,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Entity) TableName() string { return "entity" }

// DisplayName is the display name of the authorised name entry of the
// preferred identity, when one exists.
func (e *Entity) DisplayName() string {
	var preferred *Identity
	for _, identity := range e.Identities {
		if preferred == nil || (identity.PreferredIdentity && !preferred.PreferredIdentity) {
			preferred = identity
		}
	}
	if preferred == nil {
		return "Unnamed object"
	}
	if entry := preferred.AuthorisedForm(); entry != nil {
		return entry.DisplayName
	}
	return "Unnamed object"
}

func (e *Entity) IsDeleted() bool {
	return e.Control != nil && e.Control.MaintenanceStatus != nil &&
		e.Control.MaintenanceStatus.Title == StatusDeleted
}

// Identity is one naming "face" of an entity over a date range. Exactly one
// identity per entity carries PreferredIdentity once any identity exists.
type Identity struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID uuid.UUID `gorm:"type:uuid;not null;column:entity_id;index" json:"entity_id"`

	PreferredIdentity bool `gorm:"not null;column:preferred_identity" json:"preferred_identity"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	NameEntries  []*NameEntry   `gorm:"foreignKey:IdentityID" json:"name_entries,omitempty"`
	Descriptions []*Description `gorm:"foreignKey:IdentityID" json:"descriptions,omitempty"`
	Relations    []*Relation    `gorm:"foreignKey:IdentityID" json:"relations,omitempty"`
	Resources    []*Resource    `gorm:"foreignKey:IdentityID" json:"resources,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Identity) TableName() string { return "identity" }

func (i *Identity) AuthorisedForm() *NameEntry {
	for _, entry := range i.NameEntries {
		if entry.AuthorisedForm {
			return entry
		}
	}
	if len(i.NameEntries) > 0 {
		return i.NameEntries[0]
	}
	return nil
}

// NameEntry is one form of name under an identity; at most one entry per
// identity is the authorised form.
type NameEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;column:identity_id;index" json:"identity_id"`

	DisplayName    string `gorm:"not null;index;column:display_name" json:"display_name"`
	AuthorisedForm bool   `gorm:"not null;column:authorised_form" json:"authorised_form"`
	IsRoyalName    bool   `gorm:"not null;default:false;column:is_royal_name" json:"is_royal_name"`
	Language       string `gorm:"column:language" json:"language,omitempty"`
	Script         string `gorm:"column:script" json:"script,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	Parts []*NamePart `gorm:"foreignKey:NameEntryID" json:"parts,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (NameEntry) TableName() string { return "name_entry" }

// NamePart is a typed fragment (surname, forename, proper title, ...) of a
// name entry's display name.
type NamePart struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	NameEntryID    uuid.UUID     `gorm:"type:uuid;not null;column:name_entry_id;index" json:"name_entry_id"`
	NamePartTypeID uuid.UUID     `gorm:"type:uuid;not null;column:name_part_type_id" json:"name_part_type_id"`
	NamePartType   *NamePartType `gorm:"foreignKey:NamePartTypeID" json:"name_part_type,omitempty"`
	Part           string        `gorm:"not null;column:part" json:"part"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updated_at"`
}

func (NamePart) TableName() string { return "name_part" }

// Description is a per-identity block of biographical and contextual data.
type Description struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;column:identity_id;index" json:"identity_id"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	BiographyHistory  *BiographyHistory   `gorm:"foreignKey:DescriptionID" json:"biography_history,omitempty"`
	Places            []*Place            `gorm:"foreignKey:DescriptionID" json:"places,omitempty"`
	Events            []*Event            `gorm:"foreignKey:DescriptionID" json:"events,omitempty"`
	Functions         []*Function         `gorm:"foreignKey:DescriptionID" json:"functions,omitempty"`
	LanguagesScripts  []*LanguageScript   `gorm:"foreignKey:DescriptionID" json:"languages_scripts,omitempty"`
	LocalDescriptions []*LocalDescription `gorm:"foreignKey:DescriptionID" json:"local_descriptions,omitempty"`
	LegalStatuses     []*LegalStatus      `gorm:"foreignKey:DescriptionID" json:"legal_statuses,omitempty"`
	Mandates          []*Mandate          `gorm:"foreignKey:DescriptionID" json:"mandates,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Description) TableName() string { return "description" }

type BiographyHistory struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:description_id" json:"description_id"`

	Abstract             string `gorm:"column:abstract" json:"abstract,omitempty"`
	Content              string `gorm:"column:content" json:"content,omitempty"`
	StructureOrGenealogy string `gorm:"column:structure_or_genealogy" json:"structure_or_genealogy,omitempty"`
	Sources              string `gorm:"column:sources" json:"sources,omitempty"`
	Copyright            string `gorm:"column:copyright" json:"copyright,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (BiographyHistory) TableName() string { return "biography_history" }

// Place holds a place name associated with a description. The GeoNames
// lookup happens outside this model; only its outcome is stored.
type Place struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;column:description_id;index" json:"description_id"`

	PlaceName  string `gorm:"not null;column:place_name" json:"place_name"`
	GeonamesID string `gorm:"column:geonames_id" json:"geonames_id,omitempty"`
	Address    string `gorm:"column:address" json:"address,omitempty"`
	Role       string `gorm:"column:role" json:"role,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Place) TableName() string { return "place" }

type Event struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;column:description_id;index" json:"description_id"`

	Event     string `gorm:"not null;column:event" json:"event"`
	PlaceName string `gorm:"column:place_name" json:"place_name,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Event) TableName() string { return "event" }

type Function struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;column:description_id;index" json:"description_id"`

	Title string `gorm:"not null;column:title" json:"title"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Function) TableName() string { return "function" }

type LanguageScript struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;column:description_id;index" json:"description_id"`

	Language string `gorm:"not null;column:language" json:"language"`
	Script   string `gorm:"not null;column:script" json:"script"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LanguageScript) TableName() string { return "language_script" }

type LocalDescription struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;column:description_id;index" json:"description_id"`

	Gender   string `gorm:"not null;column:gender" json:"gender"`
	Notes    string `gorm:"column:notes" json:"notes,omitempty"`
	Citation string `gorm:"column:citation" json:"citation,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LocalDescription) TableName() string { return "local_description" }

type LegalStatus struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;column:description_id;index" json:"description_id"`

	Term     string `gorm:"column:term" json:"term,omitempty"`
	Notes    string `gorm:"column:notes" json:"notes,omitempty"`
	Citation string `gorm:"column:citation" json:"citation,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LegalStatus) TableName() string { return "legal_status" }

type Mandate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DescriptionID uuid.UUID `gorm:"type:uuid;not null;column:description_id;index" json:"description_id"`

	Term     string `gorm:"column:term" json:"term,omitempty"`
	Notes    string `gorm:"column:notes" json:"notes,omitempty"`
	Citation string `gorm:"column:citation" json:"citation,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Mandate) TableName() string { return "mandate" }

// Relation is a directed, typed edge from an identity to another entity.
// This is the graph the merge engine repoints.
type Relation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;column:identity_id;index" json:"identity_id"`

	RelationTypeID  uuid.UUID           `gorm:"type:uuid;not null;column:relation_type_id" json:"relation_type_id"`
	RelationType    *EntityRelationType `gorm:"foreignKey:RelationTypeID" json:"relation_type,omitempty"`
	RelatedEntityID *uuid.UUID          `gorm:"type:uuid;column:related_entity_id;index" json:"related_entity_id,omitempty"`
	RelatedEntity   *Entity             `gorm:"foreignKey:RelatedEntityID" json:"related_entity,omitempty"`
	RelationDetail  string              `gorm:"column:relation_detail" json:"relation_detail,omitempty"`
	PlaceName       string              `gorm:"column:place_name" json:"place_name,omitempty"`
	Notes           string              `gorm:"column:notes" json:"notes,omitempty"`

	DateFrom    *time.Time `gorm:"column:date_from" json:"date_from,omitempty"`
	DateTo      *time.Time `gorm:"column:date_to" json:"date_to,omitempty"`
	DisplayDate string     `gorm:"column:display_date" json:"display_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Relation) TableName() string { return "relation" }

type Resource struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;column:identity_id;index" json:"identity_id"`

	RelationTypeID uuid.UUID             `gorm:"type:uuid;not null;column:relation_type_id" json:"relation_type_id"`
	RelationType   *ResourceRelationType `gorm:"foreignKey:RelationTypeID" json:"relation_type,omitempty"`
	URL            string                `gorm:"column:url" json:"url,omitempty"`
	Citation       string                `gorm:"column:citation" json:"citation,omitempty"`
	Notes          string                `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Resource) TableName() string { return "resource" }

// Control is the one-to-one maintenance block of an entity: statuses,
// language/script of the record itself, and source citations.
type Control struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:entity_id" json:"entity_id"`

	MaintenanceStatusID uuid.UUID          `gorm:"type:uuid;not null;column:maintenance_status_id" json:"maintenance_status_id"`
	MaintenanceStatus   *MaintenanceStatus `gorm:"foreignKey:MaintenanceStatusID" json:"maintenance_status,omitempty"`
	PublicationStatusID uuid.UUID          `gorm:"type:uuid;not null;column:publication_status_id" json:"publication_status_id"`
	PublicationStatus   *PublicationStatus `gorm:"foreignKey:PublicationStatusID" json:"publication_status,omitempty"`

	Language string `gorm:"column:language" json:"language,omitempty"`
	Script   string `gorm:"column:script" json:"script,omitempty"`

	RightsDeclaration string `gorm:"column:rights_declaration" json:"rights_declaration,omitempty"`

	Sources []*Source `gorm:"foreignKey:ControlID" json:"sources,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Control) TableName() string { return "control" }

type Source struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ControlID uuid.UUID `gorm:"type:uuid;not null;column:control_id;index" json:"control_id"`

	Name  string `gorm:"not null;column:name" json:"name"`
	URL   string `gorm:"column:url" json:"url,omitempty"`
	Notes string `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Source) TableName() string { return "source" }
