package assessments

import (
	"context"
	"time"

	"lending-backend/internal/scoring"
)

// Repo defines persistence operations for assessments.
type Repo interface {
	Create(ctx context.Context, assessment Assessment) error
	GetByID(ctx context.Context, assessmentID string) (Assessment, error)
	ListByApplication(ctx context.Context, applicationID string, limit, offset int) ([]Assessment, error)
	ListByAnalyst(ctx context.Context, analystID string, limit, offset int) ([]Assessment, error)
	UpdateStatusResultAndError(ctx context.Context, assessmentID, status string, result *scoring.Outcome, errorCode, errorMessage *string, retryable *bool, startedAt, completedAt *time.Time) error
}
