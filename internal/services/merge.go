package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gpp-archive/autharch/internal/logger"
	"github.com/gpp-archive/autharch/internal/repos"
	"github.com/gpp-archive/autharch/internal/types"
)

// MergeReason distinguishes the precondition violations that abort a merge.
type MergeReason string

const (
	MergeReasonNotEntity        MergeReason = "not_entity"
	MergeReasonSelfMerge        MergeReason = "self_merge"
	MergeReasonDifferentType    MergeReason = "different_type"
	MergeReasonDifferentProject MergeReason = "different_project"
	MergeReasonAlreadyDeleted   MergeReason = "already_deleted"
)

// MergeError is raised when a merge's preconditions do not hold. It names
// the conflicting attribute so the operator can see what went wrong.
type MergeError struct {
	Reason MergeReason
	Detail string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("cannot merge entities (%s): %s", e.Reason, e.Detail)
}

// MergeService consolidates two duplicate authority entities into one. The
// survivor keeps its own graph and absorbs the loser's; the loser is soft
// deleted and stays queryable for audit purposes.
type MergeService interface {
	Merge(ctx context.Context, survivorID, loserID uuid.UUID, actor string) (*types.Entity, error)
}

type mergeService struct {
	db           *gorm.DB
	log          *logger.Logger
	entityRepo   repos.EntityRepo
	recordRepo   repos.RecordRepo
	vocabRepo    repos.VocabRepo
	revisionSvc  RevisionService
}

func NewMergeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	entityRepo repos.EntityRepo,
	recordRepo repos.RecordRepo,
	vocabRepo repos.VocabRepo,
	revisionSvc RevisionService,
) MergeService {
	serviceLog := baseLog.With("service", "MergeService")
	return &mergeService{
		db:          db,
		log:         serviceLog,
		entityRepo:  entityRepo,
		recordRepo:  recordRepo,
		vocabRepo:   vocabRepo,
		revisionSvc: revisionSvc,
	}
}

// Merge merges the loser entity into the survivor inside a single
// transaction; either the whole merge applies or none of it does.
//
// The re-parenting trick: moving each of the loser's identities onto the
// survivor carries the identity's entire name-entry/description/relation/
// resource subtree with it, because everything below hangs off Identity by
// foreign key. No per-row cloning is needed.
func (s *mergeService) Merge(ctx context.Context, survivorID, loserID uuid.UUID, actor string) (*types.Entity, error) {
	if survivorID == loserID {
		return nil, &MergeError{
			Reason: MergeReasonSelfMerge,
			Detail: fmt.Sprintf("entity %s cannot be merged into itself", survivorID),
		}
	}

	var merged *types.Entity
	err := s.db.Transaction(func(tx *gorm.DB) error {
		survivor, err := s.entityRepo.GetByID(ctx, tx, survivorID)
		if err != nil {
			return &MergeError{
				Reason: MergeReasonNotEntity,
				Detail: fmt.Sprintf("no entity with id %s: %v", survivorID, err),
			}
		}
		loser, err := s.entityRepo.GetByID(ctx, tx, loserID)
		if err != nil {
			return &MergeError{
				Reason: MergeReasonNotEntity,
				Detail: fmt.Sprintf("no entity with id %s: %v", loserID, err),
			}
		}
		if err := validateMerge(survivor, loser); err != nil {
			return err
		}

		// Authorised names already on the survivor, for step 3 dedup.
		retained := map[string]*types.NameEntry{}
		for _, identity := range survivor.Identities {
			for _, entry := range identity.NameEntries {
				if entry.AuthorisedForm {
					retained[entry.DisplayName] = entry
				}
			}
		}

		for _, identity := range loser.Identities {
			// The survivor's own preferred identity is untouched; everything
			// arriving from the loser attaches as non-preferred.
			if err := s.entityRepo.ReparentIdentity(ctx, tx, identity.ID, survivor.ID, false); err != nil {
				return fmt.Errorf("reparent identity %s: %w", identity.ID, err)
			}
			for _, entry := range identity.NameEntries {
				if !entry.AuthorisedForm {
					continue
				}
				kept, ok := retained[entry.DisplayName]
				if !ok {
					continue
				}
				// Visually duplicate authorised name: consolidate the typed
				// name parts onto the retained entry and drop the duplicate
				// row.
				if err := s.entityRepo.MoveNameParts(ctx, tx, entry.ID, kept.ID); err != nil {
					return fmt.Errorf("consolidate name parts for %q: %w", entry.DisplayName, err)
				}
				if err := s.entityRepo.DeleteNameEntry(ctx, tx, entry.ID); err != nil {
					return fmt.Errorf("delete duplicate name entry %q: %w", entry.DisplayName, err)
				}
			}
		}

		if err := s.entityRepo.RepointRelations(ctx, tx, loser.ID, survivor.ID); err != nil {
			return fmt.Errorf("repoint relations: %w", err)
		}
		if err := s.recordRepo.ReplaceEntityLinks(ctx, tx, loser.ID, survivor.ID); err != nil {
			return fmt.Errorf("repoint record links: %w", err)
		}
		if loser.Control != nil && survivor.Control != nil {
			if err := s.entityRepo.CopySources(ctx, tx, loser.Control.ID, survivor.Control.ID); err != nil {
				return fmt.Errorf("copy sources: %w", err)
			}
		}

		deleted, err := s.vocabRepo.GetOrCreateMaintenanceStatus(ctx, tx, types.StatusDeleted)
		if err != nil {
			return fmt.Errorf("resolve deleted status: %w", err)
		}
		if err := s.entityRepo.SetMaintenanceStatus(ctx, tx, loser.ID, deleted.ID); err != nil {
			return fmt.Errorf("soft-delete merged entity: %w", err)
		}

		merged, err = s.entityRepo.GetByID(ctx, tx, survivor.ID)
		if err != nil {
			return fmt.Errorf("reload survivor: %w", err)
		}
		comment := fmt.Sprintf("Merged entity %s into entity %s.", loser.ID, survivor.ID)
		if _, err := s.revisionSvc.Record(ctx, tx, RevisionObjectEntity, survivor.ID, actor, comment, merged); err != nil {
			return fmt.Errorf("record merge revision: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Merged entities", "survivor", survivorID, "merged", loserID)
	return merged, nil
}

func validateMerge(survivor, loser *types.Entity) error {
	if loser.IsDeleted() {
		return &MergeError{
			Reason: MergeReasonAlreadyDeleted,
			Detail: fmt.Sprintf("entity %s is already deleted", loser.ID),
		}
	}
	if survivor.EntityTypeID != loser.EntityTypeID {
		return &MergeError{
			Reason: MergeReasonDifferentType,
			Detail: fmt.Sprintf("entity_type %s != %s", survivor.EntityTypeID, loser.EntityTypeID),
		}
	}
	// The loser may be projectless; a project mismatch is refused.
	if loser.ProjectID != nil {
		if survivor.ProjectID == nil || *survivor.ProjectID != *loser.ProjectID {
			return &MergeError{
				Reason: MergeReasonDifferentProject,
				Detail: fmt.Sprintf("project %v != %v", survivor.ProjectID, loser.ProjectID),
			}
		}
	}
	return nil
}
