package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

// Object type tags recorded on revisions.
const (
	RevisionObjectEntity = "entity"
	RevisionObjectRecord = "archival_record"
)

// RevisionService is the audit collaborator: it records an immutable
// snapshot of an object together with the actor and a comment describing
// the change.
type RevisionService interface {
	Record(ctx context.Context, tx *gorm.DB, objectType string, objectID uuid.UUID, actor, comment string, snapshot interface{}) (*types.Revision, error)
}

type revisionService struct {
	db           *gorm.DB
	log          *logger.Logger
	revisionRepo repos.RevisionRepo
}

func NewRevisionService(db *gorm.DB, baseLog *logger.Logger, revisionRepo repos.RevisionRepo) RevisionService {
	serviceLog := baseLog.With("service", "RevisionService")
	return &revisionService{db: db, log: serviceLog, revisionRepo: revisionRepo}
}

func (s *revisionService) Record(ctx context.Context, tx *gorm.DB, objectType string, objectID uuid.UUID, actor, comment string, snapshot interface{}) (*types.Revision, error) {
	var payload []byte
	if snapshot != nil {
		var err error
		payload, err = json.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("marshal revision snapshot: %w", err)
		}
	}
	revision := &types.Revision{
		ID:         uuid.New(),
		ObjectType: objectType,
		ObjectID:   objectID,
		Actor:      actor,
		Comment:    comment,
		Snapshot:   payload,
	}
	return s.revisionRepo.Create(ctx, tx, revision)
}
