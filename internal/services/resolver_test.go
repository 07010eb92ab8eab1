package services

import (
	"context"
	"testing"
)

func TestResolverCreatesThenFinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project := env.project(t, "georgian-papers")

	entity, created, err := env.resolver.GetOrCreateByDisplayName(
		ctx, nil, "Pitt, William", "eng", "Latin", &project.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !created {
		t.Fatal("expected first resolution to create the entity")
	}
	if got := entity.DisplayName(); got != "Pitt, William" {
		t.Errorf("created entity display name = %q", got)
	}
	if entity.Control == nil {
		t.Fatal("created entity has no control block")
	}

	again, created, err := env.resolver.GetOrCreateByDisplayName(
		ctx, nil, "Pitt, William", "eng", "Latin", &project.ID)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if created {
		t.Error("expected second resolution to find, not create")
	}
	if again.ID != entity.ID {
		t.Errorf("second resolution returned a different entity: %s != %s", again.ID, entity.ID)
	}
}

func TestResolverEmptyNameResolvesToNothing(t *testing.T) {
	env := newTestEnv(t)
	entity, created, err := env.resolver.GetOrCreateByDisplayName(
		context.Background(), nil, "", "eng", "Latin", nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if entity != nil || created {
		t.Errorf("expected empty name to resolve to nothing, got %v created=%v", entity, created)
	}
}

func TestResolverAmbiguousNameResolvesToNothing(t *testing.T) {
	env := newTestEnv(t)
	project := env.project(t, "georgian-papers")
	env.makeEntity(t, "person", "Smith, John", &project.ID)
	env.makeEntity(t, "person", "Smith, John", &project.ID)

	entity, created, err := env.resolver.GetOrCreateByDisplayName(
		context.Background(), nil, "Smith, John", "eng", "Latin", &project.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if entity != nil || created {
		t.Error("expected ambiguous name to resolve to nothing")
	}
}

func TestResolverScopesToProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	projectA := env.project(t, "georgian-papers")
	projectB := env.project(t, "stuart-papers")
	existing := env.makeEntity(t, "person", "Smith, John", &projectA.ID)

	entity, created, err := env.resolver.GetOrCreateByDisplayName(
		ctx, nil, "Smith, John", "eng", "Latin", &projectB.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !created {
		t.Fatal("expected a fresh entity in the other project")
	}
	if entity.ID == existing.ID {
		t.Error("resolver crossed the project boundary")
	}

	// Only authorised forms count: a non-authorised matching entry on
	// another entity must not make the name ambiguous.
	matches, err := env.entityRepo.FindByAuthorisedName(ctx, nil, "Smith, John", &projectA.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match in original project, got %d", len(matches))
	}
}
