package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reference is an external catalogue citation: a (source, unitid) pair,
// many-to-many with archival records.
type Reference struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID  uuid.UUID        `gorm:"type:uuid;not null;column:source_id;uniqueIndex:idx_reference_source_unitid,priority:1" json:"source_id"`
	Source    *ReferenceSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
	Unitid    string           `gorm:"not null;column:unitid;uniqueIndex:idx_reference_source_unitid,priority:2" json:"unitid"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

func (Reference) TableName() string { return "reference" }

func (r *Reference) String() string {
	if r.Source != nil {
		return fmt.Sprintf("%s: %s", r.Source.Title, r.Unitid)
	}
	return r.Unitid
}
