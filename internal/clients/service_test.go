package clients

import (
	"context"
	"errors"
	"testing"
)

func TestCreateRejectsDuplicateMemberNumber(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{MemberNumber: "A-0001", FullName: "Siti Rahma"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{MemberNumber: "A-0001", FullName: "Budi Santoso"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateRequiresMemberNumberAndName(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FullName: "Siti Rahma"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing member number, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{MemberNumber: "A-0002"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing name, got %v", err)
	}
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		MemberNumber: "A-0003",
		FullName:     "Siti Rahma",
		Phone:        "0812000111",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, CreateInput{Address: "Jl. Melati 5"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != "0812000111" {
		t.Fatalf("expected phone preserved, got %q", updated.Phone)
	}
	if updated.Address != "Jl. Melati 5" {
		t.Fatalf("expected address updated, got %q", updated.Address)
	}
}

func TestGetUnknownClient(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
