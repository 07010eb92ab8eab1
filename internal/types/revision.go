package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Revision is one immutable audit event: who did what to which object, with
// a JSON snapshot of the object as it stood. Merges write exactly one
// revision naming both entity identifiers in the comment.
type Revision struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ObjectType string         `gorm:"not null;index:idx_revision_object,priority:1;column:object_type" json:"object_type"`
	ObjectID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_revision_object,priority:2;column:object_id" json:"object_id"`
	Actor      string         `gorm:"not null;column:actor" json:"actor"`
	Comment    string         `gorm:"not null;column:comment" json:"comment"`
	Snapshot   datatypes.JSON `gorm:"column:snapshot;type:jsonb" json:"snapshot,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (Revision) TableName() string { return "revision" }
