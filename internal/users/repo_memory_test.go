package users

import (
	"context"
	"errors"
	"testing"
)

func TestUpsertDefaultsRoleAndPreservesIt(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.Upsert(ctx, User{ID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Role != RoleAnalyst {
		t.Fatalf("expected default role %q, got %q", RoleAnalyst, got.Role)
	}

	if _, err := repo.SetRole(ctx, "u1", RoleApprover); err != nil {
		t.Fatalf("set role: %v", err)
	}

	// A later OAuth upsert must not clobber the assigned role.
	if err := repo.Upsert(ctx, User{ID: "u1", Email: "a@example.com", FullName: "Ayu"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err = repo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Role != RoleApprover {
		t.Fatalf("expected role preserved as %q, got %q", RoleApprover, got.Role)
	}
	if got.FullName != "Ayu" {
		t.Fatalf("expected profile updated, got %q", got.FullName)
	}
}

func TestSetRoleUnknownUser(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.SetRole(context.Background(), "ghost", RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAnalyst, RoleApprover, RoleAdmin} {
		if !ValidRole(role) {
			t.Fatalf("expected %q valid", role)
		}
	}
	if ValidRole("manajer") {
		t.Fatalf("expected unknown role invalid")
	}
}
