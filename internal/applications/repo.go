package applications

import (
	"context"
	"time"

	"lending-backend/internal/scoring"
)

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	ClientID string
	Status   string
	Limit    int
	Offset   int
}

// Repo defines persistence operations for applications.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, applicationID string) (Application, error)
	List(ctx context.Context, filter ListFilter) ([]Application, error)
	UpdateStatus(ctx context.Context, applicationID, status string) error
	UpdateCapacity(ctx context.Context, applicationID, profile string, capacity scoring.AffordabilityResult) error
	UpdateDecision(ctx context.Context, applicationID, status, decision, note, approverID string, decidedAt time.Time) error
}
