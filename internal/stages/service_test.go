package stages

import (
	"context"
	"errors"
	"testing"
)

func TestSeedIsIdempotent(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	first, created, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !created {
		t.Fatal("first seed should create stages")
	}
	if len(first) != len(DefaultStages) {
		t.Fatalf("seeded %d stages, want %d", len(first), len(DefaultStages))
	}
	if first[0].Name != "Sourcing" || first[0].Color != "#6366f1" {
		t.Fatalf("unexpected first stage: %+v", first[0])
	}

	second, created, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if created {
		t.Fatal("second seed must not create anything")
	}
	if len(second) != len(first) {
		t.Fatalf("second seed returned %d stages, want %d", len(second), len(first))
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	stage, err := svc.Create(context.Background(), Stage{Name: "  Exclusivity  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stage.ID == "" {
		t.Fatal("id not assigned")
	}
	if stage.Name != "Exclusivity" {
		t.Fatalf("name not trimmed: %q", stage.Name)
	}
	if stage.Color != defaultColor {
		t.Fatalf("color = %q, want default", stage.Color)
	}

	if _, err := svc.Create(context.Background(), Stage{Name: "   "}); err == nil {
		t.Fatal("blank name must be rejected")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	stage, err := svc.Create(context.Background(), Stage{Name: "Screening"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Initial Screening"
	updated, err := svc.Update(context.Background(), stage.ID, Patch{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("name = %q", updated.Name)
	}

	empty := " "
	if _, err := svc.Update(context.Background(), stage.ID, Patch{Name: &empty}); err == nil {
		t.Fatal("blank rename must be rejected")
	}

	if err := svc.Delete(context.Background(), stage.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), stage.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
