package assessments

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

// Create inserts a new assessment.
func (r *PGRepo) Create(ctx context.Context, assessment Assessment) error {
	surveyJSON, err := json.Marshal(assessment.Survey)
	if err != nil {
		return fmt.Errorf("marshal survey: %w", err)
	}
	ratingsJSON, err := json.Marshal(assessment.SurveyRatings)
	if err != nil {
		return fmt.Errorf("marshal ratings: %w", err)
	}
	scoresJSON, err := json.Marshal(assessment.AspectScores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	const query = `
INSERT INTO assessments (
    id,
    application_id,
    analyst_id,
    scoring_version,
    status,
    survey,
    survey_ratings,
    aspect_scores,
    assessment_average,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb, $9, $10, $10)`
	_, err = r.DB.ExecContext(
		ctx,
		query,
		assessment.ID,
		assessment.ApplicationID,
		assessment.AnalystID,
		assessment.ScoringVersion,
		assessment.Status,
		string(surveyJSON),
		string(ratingsJSON),
		string(scoresJSON),
		assessment.AssessmentAverage,
		assessment.CreatedAt,
	)
	return err
}

// GetByID returns an assessment by ID.
func (r *PGRepo) GetByID(ctx context.Context, assessmentID string) (Assessment, error) {
	query := selectColumns + `
WHERE id = $1
LIMIT 1`
	return scanAssessment(r.DB.QueryRowContext(ctx, query, assessmentID))
}

// ListByApplication returns assessments for an application, newest first.
func (r *PGRepo) ListByApplication(ctx context.Context, applicationID string, limit, offset int) ([]Assessment, error) {
	query := selectColumns + `
WHERE application_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, applicationID, limit, offset)
}

// ListByAnalyst returns assessments created by an analyst, newest first.
func (r *PGRepo) ListByAnalyst(ctx context.Context, analystID string, limit, offset int) ([]Assessment, error) {
	query := selectColumns + `
WHERE analyst_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, analystID, limit, offset)
}

func (r *PGRepo) listQuery(ctx context.Context, query, key string, limit, offset int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, query, key, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Assessment, 0)
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, assessment)
	}
	return out, rows.Err()
}

// UpdateStatusResultAndError updates status/result/error fields and timestamps.
// Timestamps not supplied are filled from the status transition.
func (r *PGRepo) UpdateStatusResultAndError(ctx context.Context, assessmentID, status string, result *scoring.Outcome, errorCode, errorMessage *string, retryable *bool, startedAt, completedAt *time.Time) error {
	var resultJSON any
	if result != nil {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		resultJSON = string(payload)
	}

	if startedAt == nil && status == StatusProcessing {
		now := time.Now().UTC()
		startedAt = &now
	}
	if completedAt == nil && (status == StatusCompleted || status == StatusFailed) {
		now := time.Now().UTC()
		completedAt = &now
	}

	const query = `
UPDATE assessments
SET status = $2,
    result = COALESCE($3::jsonb, result),
    error_code = COALESCE($4, error_code),
    error_message = COALESCE($5, error_message),
    retryable = COALESCE($6, retryable),
    started_at = COALESCE($7, started_at),
    completed_at = COALESCE($8, completed_at),
    updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, assessmentID, status, resultJSON, errorCode, errorMessage, retryable, startedAt, completedAt)
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
SELECT id, application_id, analyst_id, scoring_version, status,
       survey, survey_ratings, aspect_scores, assessment_average,
       result, error_code, error_message, retryable,
       started_at, completed_at, created_at, updated_at
FROM assessments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (Assessment, error) {
	var a Assessment
	var surveyRaw, ratingsRaw, scoresRaw, resultRaw []byte
	var assessmentAverage sql.NullFloat64
	var errorCode, errorMessage sql.NullString
	var retryable sql.NullBool
	var startedAt, completedAt, updatedAt sql.NullTime
	err := row.Scan(
		&a.ID,
		&a.ApplicationID,
		&a.AnalystID,
		&a.ScoringVersion,
		&a.Status,
		&surveyRaw,
		&ratingsRaw,
		&scoresRaw,
		&assessmentAverage,
		&resultRaw,
		&errorCode,
		&errorMessage,
		&retryable,
		&startedAt,
		&completedAt,
		&a.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNotFound
		}
		return Assessment{}, err
	}

	if len(surveyRaw) > 0 {
		if err := json.Unmarshal(surveyRaw, &a.Survey); err != nil {
			return Assessment{}, fmt.Errorf("unmarshal survey: %w", err)
		}
	}
	if len(ratingsRaw) > 0 {
		if err := json.Unmarshal(ratingsRaw, &a.SurveyRatings); err != nil {
			return Assessment{}, fmt.Errorf("unmarshal ratings: %w", err)
		}
	}
	if len(scoresRaw) > 0 {
		if err := json.Unmarshal(scoresRaw, &a.AspectScores); err != nil {
			return Assessment{}, fmt.Errorf("unmarshal scores: %w", err)
		}
	}
	if len(resultRaw) > 0 {
		var outcome scoring.Outcome
		if err := json.Unmarshal(resultRaw, &outcome); err != nil {
			return Assessment{}, fmt.Errorf("unmarshal result: %w", err)
		}
		a.Result = &outcome
	}
	if assessmentAverage.Valid {
		v := assessmentAverage.Float64
		a.AssessmentAverage = &v
	}
	if errorCode.Valid {
		v := errorCode.String
		a.ErrorCode = &v
	}
	if errorMessage.Valid {
		v := errorMessage.String
		a.ErrorMessage = &v
	}
	if retryable.Valid {
		v := retryable.Bool
		a.Retryable = &v
	}
	if startedAt.Valid {
		t := startedAt.Time
		a.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return a, nil
}
