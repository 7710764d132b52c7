package applications

import (
	"context"
	"errors"
	"math"
	"testing"

	"lending-backend/internal/clients"
	"lending-backend/internal/scoring"
)

func seedApplication(t *testing.T, svc *Service) Application {
	t.Helper()
	app, err := svc.Create(context.Background(), "analyst-1", CreateInput{
		ClientID:   "client-1",
		Amount:     10000000,
		TermMonths: 10,
		Purpose:    "renovasi rumah",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return app
}

func TestCreateValidatesClientWhenLookupConfigured(t *testing.T) {
	clientSvc := clients.NewService(clients.NewMemoryRepo())
	member, err := clientSvc.Create(context.Background(), clients.CreateInput{
		MemberNumber: "A-0001",
		FullName:     "Siti Rahma",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	svc := &Service{Repo: NewMemoryRepo(), Clients: clientSvc}

	if _, err := svc.Create(context.Background(), "analyst-1", CreateInput{
		ClientID:   "ghost",
		Amount:     5000000,
		TermMonths: 6,
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown client, got %v", err)
	}

	app, err := svc.Create(context.Background(), "analyst-1", CreateInput{
		ClientID:   member.ID,
		Amount:     5000000,
		TermMonths: 6,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if app.Status != StatusSubmitted {
		t.Fatalf("expected submitted, got %s", app.Status)
	}
}

func TestSaveCapacityStandardProfile(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo(), MonthlyRate: 0.0125}
	app := seedApplication(t, svc)

	record := scoring.IncomeExpenseRecord{
		PrimaryIncome:  6000000,
		SpouseIncome:   2000000,
		PrimaryExpense: 1500000,
		FoodExpense:    1200000,
		UtilityExpense: 300000,
	}

	updated, err := svc.SaveCapacity(context.Background(), app.ID, "standard", record)
	if err != nil {
		t.Fatalf("SaveCapacity: %v", err)
	}
	if updated.CapacityProfile != scoring.ProfileStandard {
		t.Fatalf("expected standard profile, got %s", updated.CapacityProfile)
	}
	if updated.Capacity == nil {
		t.Fatalf("expected capacity stored")
	}
	if updated.Capacity.NetIncome != 5000000 {
		t.Fatalf("expected net income 5000000, got %f", updated.Capacity.NetIncome)
	}

	// Annuity present value with r=0.0125, n=10 against a 40 percent ceiling.
	maxInstallment := 5000000 * 0.40
	r := 0.0125
	want := maxInstallment * (1 - math.Pow(1+r, -10)) / r
	if math.Abs(updated.Capacity.MaxLoanPrincipal-want) > 1 {
		t.Fatalf("expected principal %.0f, got %.0f", want, updated.Capacity.MaxLoanPrincipal)
	}

	stored, err := svc.Get(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Capacity == nil || stored.CapacityProfile != scoring.ProfileStandard {
		t.Fatalf("capacity not persisted")
	}
}

func TestSaveCapacityLegacyProfileIsFlat(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo(), MonthlyRate: 0.0125}
	app := seedApplication(t, svc)

	record := scoring.IncomeExpenseRecord{PrimaryIncome: 4000000, PrimaryExpense: 1000000}
	updated, err := svc.SaveCapacity(context.Background(), app.ID, "legacy", record)
	if err != nil {
		t.Fatalf("SaveCapacity: %v", err)
	}
	if updated.CapacityProfile != scoring.ProfileLegacy {
		t.Fatalf("expected legacy profile, got %s", updated.CapacityProfile)
	}
	// Flat ceiling: 70 percent of net, times the term.
	want := 3000000 * 0.70 * 10
	if math.Abs(updated.Capacity.MaxLoanPrincipal-want) > 0.001 {
		t.Fatalf("expected principal %.0f, got %.0f", want, updated.Capacity.MaxLoanPrincipal)
	}
}

func TestDecideRejectsSelfApproval(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	app := seedApplication(t, svc)

	if _, err := svc.Decide(context.Background(), app.ID, "analyst-1", "approved", ""); !errors.Is(err, ErrSelfApproval) {
		t.Fatalf("expected ErrSelfApproval, got %v", err)
	}
}

func TestDecideApprovesOnce(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	app := seedApplication(t, svc)

	decided, err := svc.Decide(context.Background(), app.ID, "approver-1", "approved", "lengkap")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", decided.Status)
	}
	if decided.DecidedAt == nil {
		t.Fatalf("expected decidedAt set")
	}

	if _, err := svc.Decide(context.Background(), app.ID, "approver-2", "rejected", ""); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestDecideValidatesDecision(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	app := seedApplication(t, svc)

	if _, err := svc.Decide(context.Background(), app.ID, "approver-1", "maybe", ""); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestMarkInReviewIsIdempotent(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	app := seedApplication(t, svc)

	if err := svc.MarkInReview(context.Background(), app.ID); err != nil {
		t.Fatalf("MarkInReview: %v", err)
	}
	if err := svc.MarkInReview(context.Background(), app.ID); err != nil {
		t.Fatalf("MarkInReview twice: %v", err)
	}

	got, err := svc.Get(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusInReview {
		t.Fatalf("expected in_review, got %s", got.Status)
	}
}
