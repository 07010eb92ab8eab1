package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gpp-archive/autharch/internal/types"
)

func TestMergeMovesLoserGraphToSurvivor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.project(t, "georgian-papers")
	survivor := env.makeEntity(t, "person", "George III, King of Great Britain, 1738-1820", &project.ID)
	loser := env.makeEntity(t, "person", "George, Prince of Wales", &project.ID)
	bystander := env.makeEntity(t, "person", "Charlotte, Queen, consort of George III", &project.ID)

	// A relation pointing at the loser, which the merge must repoint.
	relType, err := env.vocabRepo.GetOrCreateEntityRelationType(ctx, nil, "associative")
	if err != nil {
		t.Fatalf("failed to create relation type: %v", err)
	}
	relation := &types.Relation{
		ID:              uuid.New(),
		IdentityID:      bystander.Identities[0].ID,
		RelationTypeID:  relType.ID,
		RelatedEntityID: &loser.ID,
	}
	if err := env.db.Create(relation).Error; err != nil {
		t.Fatalf("failed to create relation: %v", err)
	}

	// A record crediting the loser as creator, which the merge must repoint.
	record := &types.ArchivalRecord{
		ID:        uuid.New(),
		UUID:      uuid.New().String(),
		Level:     types.LevelItem,
		ProjectID: &project.ID,
		Title:     "Letter from the Prince of Wales",
	}
	if _, err := env.recordRepo.Create(ctx, nil, record); err != nil {
		t.Fatalf("failed to create record: %v", err)
	}
	if err := env.recordRepo.AddEntityLink(ctx, nil, "archival_record_creator", record.ID, loser.ID); err != nil {
		t.Fatalf("failed to link creator: %v", err)
	}

	// A source on the loser's control, which the merge must copy.
	source := &types.Source{
		ID:        uuid.New(),
		ControlID: loser.Control.ID,
		Name:      "ODNB entry",
		URL:       "https://www.oxforddnb.com/",
	}
	if err := env.db.Create(source).Error; err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	merged, err := env.merger.Merge(ctx, survivor.ID, loser.ID, "editor@example.org")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if len(merged.Identities) != 2 {
		t.Fatalf("expected 2 identities on survivor, got %d", len(merged.Identities))
	}
	preferred := 0
	for _, identity := range merged.Identities {
		if identity.PreferredIdentity {
			preferred++
		}
	}
	if preferred != 1 {
		t.Errorf("expected exactly 1 preferred identity, got %d", preferred)
	}
	if got := merged.DisplayName(); got != "George III, King of Great Britain, 1738-1820" {
		t.Errorf("survivor display name changed: %q", got)
	}

	reloadedLoser, err := env.entityRepo.GetByID(ctx, nil, loser.ID)
	if err != nil {
		t.Fatalf("failed to reload merged-away entity: %v", err)
	}
	if !reloadedLoser.IsDeleted() {
		t.Error("merged-away entity is not soft-deleted")
	}
	if len(reloadedLoser.Identities) != 0 {
		t.Errorf("merged-away entity retains %d identities", len(reloadedLoser.Identities))
	}

	var reloadedRelation types.Relation
	if err := env.db.First(&reloadedRelation, "id = ?", relation.ID).Error; err != nil {
		t.Fatalf("failed to reload relation: %v", err)
	}
	if reloadedRelation.RelatedEntityID == nil || *reloadedRelation.RelatedEntityID != survivor.ID {
		t.Errorf("relation not repointed to survivor: %v", reloadedRelation.RelatedEntityID)
	}

	var creatorCount int64
	if err := env.db.Table("archival_record_creator").
		Where("entity_id = ?", survivor.ID).Count(&creatorCount).Error; err != nil {
		t.Fatalf("failed to count creator links: %v", err)
	}
	if creatorCount != 1 {
		t.Errorf("expected 1 creator link on survivor, got %d", creatorCount)
	}
	if err := env.db.Table("archival_record_creator").
		Where("entity_id = ?", loser.ID).Count(&creatorCount).Error; err != nil {
		t.Fatalf("failed to count stale creator links: %v", err)
	}
	if creatorCount != 0 {
		t.Errorf("expected 0 creator links on merged-away entity, got %d", creatorCount)
	}

	if len(merged.Control.Sources) != 1 || merged.Control.Sources[0].Name != "ODNB entry" {
		t.Errorf("source not copied to survivor: %+v", merged.Control.Sources)
	}

	revisions, err := env.revRepo.ListByObject(ctx, nil, RevisionObjectEntity, survivor.ID)
	if err != nil {
		t.Fatalf("failed to list revisions: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("expected 1 revision, got %d", len(revisions))
	}
	if !strings.Contains(revisions[0].Comment, loser.ID.String()) ||
		!strings.Contains(revisions[0].Comment, survivor.ID.String()) {
		t.Errorf("revision comment does not name both entities: %q", revisions[0].Comment)
	}
}

func TestMergeUnionsDuplicateRecordLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.project(t, "georgian-papers")
	survivor := env.makeEntity(t, "person", "Smith, John", &project.ID)
	loser := env.makeEntity(t, "person", "Smith, J.", &project.ID)

	record := &types.ArchivalRecord{
		ID:        uuid.New(),
		UUID:      uuid.New().String(),
		Level:     types.LevelFile,
		ProjectID: &project.ID,
		Title:     "Household accounts",
	}
	if _, err := env.recordRepo.Create(ctx, nil, record); err != nil {
		t.Fatalf("failed to create record: %v", err)
	}
	// Both entities are linked to the same record in the same role.
	for _, entityID := range []uuid.UUID{survivor.ID, loser.ID} {
		if err := env.recordRepo.AddEntityLink(ctx, nil, "archival_record_person_subject", record.ID, entityID); err != nil {
			t.Fatalf("failed to link subject: %v", err)
		}
	}

	if _, err := env.merger.Merge(ctx, survivor.ID, loser.ID, "editor@example.org"); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	var count int64
	if err := env.db.Table("archival_record_person_subject").
		Where("archival_record_id = ?", record.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count subject links: %v", err)
	}
	if count != 1 {
		t.Errorf("expected a single subject link after union, got %d", count)
	}
}

func TestMergeDeduplicatesAuthorisedNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.project(t, "georgian-papers")
	survivor := env.makeEntity(t, "person", "Smith, John", &project.ID)
	loser := env.makeEntity(t, "person", "Smith, John", &project.ID)

	partType, err := env.vocabRepo.GetOrCreateNamePartType(ctx, nil, "surname")
	if err != nil {
		t.Fatalf("failed to create name part type: %v", err)
	}
	loserEntry := loser.Identities[0].NameEntries[0]
	part := &types.NamePart{
		ID:             uuid.New(),
		NameEntryID:    loserEntry.ID,
		NamePartTypeID: partType.ID,
		Part:           "Smith",
	}
	if err := env.db.Create(part).Error; err != nil {
		t.Fatalf("failed to create name part: %v", err)
	}

	merged, err := env.merger.Merge(ctx, survivor.ID, loser.ID, "editor@example.org")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	var entryIDs []uuid.UUID
	var parts int
	for _, identity := range merged.Identities {
		for _, entry := range identity.NameEntries {
			entryIDs = append(entryIDs, entry.ID)
			parts += len(entry.Parts)
		}
	}
	if len(entryIDs) != 1 {
		t.Fatalf("expected duplicate authorised name to collapse to 1 entry, got %d", len(entryIDs))
	}
	if entryIDs[0] != survivor.Identities[0].NameEntries[0].ID {
		t.Error("retained entry is not the survivor's original")
	}
	if parts != 1 {
		t.Errorf("expected the name part to move to the retained entry, got %d parts", parts)
	}

	var stale int64
	if err := env.db.Model(&types.NameEntry{}).
		Where("id = ?", loserEntry.ID).Count(&stale).Error; err != nil {
		t.Fatalf("failed to count stale entries: %v", err)
	}
	if stale != 0 {
		t.Error("duplicate name entry row was not removed")
	}
}

func TestMergeRefusesSelfMerge(t *testing.T) {
	env := newTestEnv(t)
	project := env.project(t, "georgian-papers")
	entity := env.makeEntity(t, "person", "Smith, John", &project.ID)

	_, err := env.merger.Merge(context.Background(), entity.ID, entity.ID, "editor@example.org")
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) || mergeErr.Reason != MergeReasonSelfMerge {
		t.Fatalf("expected self_merge error, got %v", err)
	}
}

func TestMergeRefusesDifferentTypes(t *testing.T) {
	env := newTestEnv(t)
	project := env.project(t, "georgian-papers")
	survivor := env.makeEntity(t, "person", "Smith, John", &project.ID)
	loser := env.makeEntity(t, "corporateBody", "Board of Trade", &project.ID)

	_, err := env.merger.Merge(context.Background(), survivor.ID, loser.ID, "editor@example.org")
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) || mergeErr.Reason != MergeReasonDifferentType {
		t.Fatalf("expected different_type error, got %v", err)
	}
}

func TestMergeRefusesDifferentProjects(t *testing.T) {
	env := newTestEnv(t)
	projectA := env.project(t, "georgian-papers")
	projectB := env.project(t, "stuart-papers")
	survivor := env.makeEntity(t, "person", "Smith, John", &projectA.ID)
	loser := env.makeEntity(t, "person", "Smith, J.", &projectB.ID)

	_, err := env.merger.Merge(context.Background(), survivor.ID, loser.ID, "editor@example.org")
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) || mergeErr.Reason != MergeReasonDifferentProject {
		t.Fatalf("expected different_project error, got %v", err)
	}
}

func TestMergeRefusesDeletedLoser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.project(t, "georgian-papers")
	survivor := env.makeEntity(t, "person", "Smith, John", &project.ID)
	loser := env.makeEntity(t, "person", "Smith, J.", &project.ID)

	deleted, err := env.vocabRepo.GetOrCreateMaintenanceStatus(ctx, nil, types.StatusDeleted)
	if err != nil {
		t.Fatalf("failed to create deleted status: %v", err)
	}
	if err := env.entityRepo.SetMaintenanceStatus(ctx, nil, loser.ID, deleted.ID); err != nil {
		t.Fatalf("failed to soft-delete loser: %v", err)
	}

	_, err = env.merger.Merge(ctx, survivor.ID, loser.ID, "editor@example.org")
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) || mergeErr.Reason != MergeReasonAlreadyDeleted {
		t.Fatalf("expected already_deleted error, got %v", err)
	}
}

func TestMergeRefusesUnknownEntity(t *testing.T) {
	env := newTestEnv(t)
	project := env.project(t, "georgian-papers")
	survivor := env.makeEntity(t, "person", "Smith, John", &project.ID)

	_, err := env.merger.Merge(context.Background(), survivor.ID, uuid.New(), "editor@example.org")
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) || mergeErr.Reason != MergeReasonNotEntity {
		t.Fatalf("expected not_entity error, got %v", err)
	}
}

func TestMergePreservesDependentRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	project := env.project(t, "georgian-papers")
	survivor := env.makeEntity(t, "person", "North, Frederick, 1732-1792", &project.ID)
	loser := env.makeEntity(t, "person", "Lord North", &project.ID)

	loserIdentity := loser.Identities[0]
	extraEntry := &types.NameEntry{
		ID:          uuid.New(),
		IdentityID:  loserIdentity.ID,
		DisplayName: "Guilford, Earl of",
		Language:    "eng",
		Script:      "Latin",
	}
	if err := env.db.Create(extraEntry).Error; err != nil {
		t.Fatalf("failed to create extra name entry: %v", err)
	}
	description := &types.Description{
		ID:         uuid.New(),
		IdentityID: loserIdentity.ID,
		Places: []*types.Place{
			{ID: uuid.New(), PlaceName: "London", Role: "residence"},
			{ID: uuid.New(), PlaceName: "Wroxton", Role: "death"},
		},
	}
	if err := env.db.Create(description).Error; err != nil {
		t.Fatalf("failed to create description: %v", err)
	}

	countRows := func(model interface{}) int64 {
		var n int64
		if err := env.db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		return n
	}
	identitiesBefore := countRows(&types.Identity{})
	entriesBefore := countRows(&types.NameEntry{})
	descriptionsBefore := countRows(&types.Description{})
	placesBefore := countRows(&types.Place{})

	if _, err := env.merger.Merge(ctx, survivor.ID, loser.ID, "editor@example.org"); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if got := countRows(&types.Identity{}); got != identitiesBefore {
		t.Fatalf("expected %d identities after merge, got %d", identitiesBefore, got)
	}
	if got := countRows(&types.NameEntry{}); got != entriesBefore {
		t.Fatalf("expected %d name entries after merge, got %d", entriesBefore, got)
	}
	if got := countRows(&types.Description{}); got != descriptionsBefore {
		t.Fatalf("expected %d descriptions after merge, got %d", descriptionsBefore, got)
	}
	if got := countRows(&types.Place{}); got != placesBefore {
		t.Fatalf("expected %d places after merge, got %d", placesBefore, got)
	}

	merged, err := env.entityRepo.GetByID(ctx, nil, survivor.ID)
	if err != nil {
		t.Fatalf("failed to reload survivor: %v", err)
	}
	if len(merged.Identities) != 2 {
		t.Fatalf("expected 2 identities on survivor, got %d", len(merged.Identities))
	}
	var moved *types.Identity
	for _, identity := range merged.Identities {
		if identity.ID == loserIdentity.ID {
			moved = identity
		}
	}
	if moved == nil {
		t.Fatalf("loser identity not reachable from survivor")
	}
	if len(moved.NameEntries) != 2 {
		t.Fatalf("expected 2 name entries on moved identity, got %d", len(moved.NameEntries))
	}
	if len(moved.Descriptions) != 1 || len(moved.Descriptions[0].Places) != 2 {
		t.Fatalf("expected description with 2 places on moved identity, got %+v", moved.Descriptions)
	}
}
