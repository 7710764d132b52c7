package assessments

import (
	"context"
	"sort"
	"sync"
	"time"

	"lending-backend/internal/scoring"
)

// MemoryRepo stores assessments in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu            sync.RWMutex
	byID          map[string]Assessment
	byApplication map[string][]string
	byAnalyst     map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:          make(map[string]Assessment),
		byApplication: make(map[string][]string),
		byAnalyst:     make(map[string][]string),
	}
}

// Create stores the assessment.
func (r *MemoryRepo) Create(ctx context.Context, assessment Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[assessment.ID] = assessment
	r.byApplication[assessment.ApplicationID] = append(r.byApplication[assessment.ApplicationID], assessment.ID)
	r.byAnalyst[assessment.AnalystID] = append(r.byAnalyst[assessment.AnalystID], assessment.ID)
	return nil
}

// GetByID returns an assessment by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, assessmentID string) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	assessment, ok := r.byID[assessmentID]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return assessment, nil
}

// ListByApplication returns assessments for an application, newest first.
func (r *MemoryRepo) ListByApplication(ctx context.Context, applicationID string, limit, offset int) ([]Assessment, error) {
	return r.list(ctx, r.byApplication, applicationID, limit, offset)
}

// ListByAnalyst returns assessments created by an analyst, newest first.
func (r *MemoryRepo) ListByAnalyst(ctx context.Context, analystID string, limit, offset int) ([]Assessment, error) {
	return r.list(ctx, r.byAnalyst, analystID, limit, offset)
}

func (r *MemoryRepo) list(ctx context.Context, index map[string][]string, key string, limit, offset int) ([]Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := index[key]
	out := make([]Assessment, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Assessment{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// UpdateStatusResultAndError updates status/result/error fields and timestamps.
func (r *MemoryRepo) UpdateStatusResultAndError(ctx context.Context, assessmentID, status string, result *scoring.Outcome, errorCode, errorMessage *string, retryable *bool, startedAt, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.byID[assessmentID]
	if !ok {
		return ErrNotFound
	}
	assessment.Status = status
	if result != nil {
		assessment.Result = result
	}
	if errorCode != nil {
		assessment.ErrorCode = errorCode
	}
	if errorMessage != nil {
		assessment.ErrorMessage = errorMessage
	}
	if retryable != nil {
		assessment.Retryable = retryable
	}
	if startedAt != nil {
		assessment.StartedAt = startedAt
	} else if status == StatusProcessing && assessment.StartedAt == nil {
		now := time.Now().UTC()
		assessment.StartedAt = &now
	}
	if completedAt != nil {
		assessment.CompletedAt = completedAt
	} else if (status == StatusCompleted || status == StatusFailed) && assessment.CompletedAt == nil {
		now := time.Now().UTC()
		assessment.CompletedAt = &now
	}
	assessment.UpdatedAt = time.Now().UTC()
	r.byID[assessmentID] = assessment
	return nil
}
