package applications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lending-backend/internal/scoring"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new application.
func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (
    id,
    client_id,
    analyst_id,
    amount,
    term_months,
    installment,
    purpose,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		app.ID,
		app.ClientID,
		app.AnalystID,
		app.Amount,
		app.TermMonths,
		app.Installment,
		nullableString(app.Purpose),
		app.Status,
		app.CreatedAt,
	)
	return err
}

// GetByID returns an application by ID.
func (r *PGRepo) GetByID(ctx context.Context, applicationID string) (Application, error) {
	query := selectColumns + `
WHERE id = $1
LIMIT 1`
	return scanApplication(r.DB.QueryRowContext(ctx, query, applicationID))
}

// List returns applications newest-first, optionally filtered.
func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Application, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := selectColumns + `
WHERE ($1 = '' OR client_id = $1)
  AND ($2 = '' OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`
	rows, err := r.DB.QueryContext(ctx, query, filter.ClientID, filter.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// UpdateStatus sets the lifecycle status.
func (r *PGRepo) UpdateStatus(ctx context.Context, applicationID, status string) error {
	const query = `
UPDATE applications SET status = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, applicationID, status)
}

// UpdateCapacity records the affordability snapshot as JSONB.
func (r *PGRepo) UpdateCapacity(ctx context.Context, applicationID, profile string, capacity scoring.AffordabilityResult) error {
	payload, err := json.Marshal(capacity)
	if err != nil {
		return fmt.Errorf("marshal capacity: %w", err)
	}
	const query = `
UPDATE applications
SET capacity_profile = $2, capacity = $3::jsonb, updated_at = now()
WHERE id = $1`
	return r.exec(ctx, query, applicationID, profile, string(payload))
}

// UpdateDecision records the approver decision.
func (r *PGRepo) UpdateDecision(ctx context.Context, applicationID, status, decision, note, approverID string, decidedAt time.Time) error {
	const query = `
UPDATE applications
SET status = $2, decision = $3, decision_note = $4, approver_id = $5, decided_at = $6, updated_at = now()
WHERE id = $1`
	return r.exec(ctx, query, applicationID, status, decision, nullableString(note), approverID, decidedAt)
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `
SELECT id, client_id, analyst_id, amount, term_months, installment, purpose, status,
       capacity_profile, capacity, decision, decision_note, approver_id, decided_at,
       created_at, updated_at
FROM applications`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var purpose, capacityProfile, decision, decisionNote, approverID sql.NullString
	var capacityRaw []byte
	var decidedAt sql.NullTime
	var updatedAt sql.NullTime
	err := row.Scan(
		&app.ID,
		&app.ClientID,
		&app.AnalystID,
		&app.Amount,
		&app.TermMonths,
		&app.Installment,
		&purpose,
		&app.Status,
		&capacityProfile,
		&capacityRaw,
		&decision,
		&decisionNote,
		&approverID,
		&decidedAt,
		&app.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	app.Purpose = purpose.String
	app.CapacityProfile = capacityProfile.String
	app.Decision = decision.String
	app.DecisionNote = decisionNote.String
	app.ApproverID = approverID.String
	if len(capacityRaw) > 0 {
		var capacity scoring.AffordabilityResult
		if err := json.Unmarshal(capacityRaw, &capacity); err != nil {
			return Application{}, fmt.Errorf("unmarshal capacity: %w", err)
		}
		app.Capacity = &capacity
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		app.DecidedAt = &t
	}
	if updatedAt.Valid {
		app.UpdatedAt = updatedAt.Time
	}
	return app, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
