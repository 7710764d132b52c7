package applications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateInsertsApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	app := Application{
		ID:          "app-1",
		ClientID:    "client-1",
		AnalystID:   "analyst-1",
		Amount:      12000000,
		TermMonths:  12,
		Installment: 1000000,
		Purpose:     "modal usaha",
		Status:      StatusSubmitted,
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO applications").
		WithArgs(
			app.ID,
			app.ClientID,
			app.AnalystID,
			app.Amount,
			app.TermMonths,
			app.Installment,
			app.Purpose,
			app.Status,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), app); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateDecisionUnknownApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	decidedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE applications").
		WithArgs("ghost", StatusApproved, DecisionApproved, nil, "approver-1", decidedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateDecision(context.Background(), "ghost", StatusApproved, DecisionApproved, "", "approver-1", decidedAt)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansCapacity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	columns := []string{
		"id", "client_id", "analyst_id", "amount", "term_months", "installment", "purpose", "status",
		"capacity_profile", "capacity", "decision", "decision_note", "approver_id", "decided_at",
		"created_at", "updated_at",
	}
	capacityJSON := []byte(`{"pendapatanBersih":5000000,"angsuranMaksimal":2000000,"plafonMaksimal":18737081.57,"jangkaPembiayaan":12}`)

	mock.ExpectQuery("SELECT (.+) FROM applications").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"app-1", "client-1", "analyst-1", 12000000.0, 12, 1000000.0, "modal usaha", StatusInReview,
			"standard", capacityJSON, nil, nil, nil, nil,
			now, now,
		))

	app, err := repo.GetByID(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if app.CapacityProfile != "standard" {
		t.Fatalf("expected capacity profile standard, got %q", app.CapacityProfile)
	}
	if app.Capacity == nil || app.Capacity.MaxInstallment != 2000000 {
		t.Fatalf("unexpected capacity: %+v", app.Capacity)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
