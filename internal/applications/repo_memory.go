package applications

import (
	"context"
	"sort"
	"sync"
	"time"

	"lending-backend/internal/scoring"
)

// MemoryRepo stores applications in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Application
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Application)}
}

// Create stores the application.
func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[app.ID] = app
	return nil
}

// GetByID returns an application by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, applicationID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.byID[applicationID]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

// List returns applications newest-first, optionally filtered.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := make([]Application, 0, len(r.byID))
	for _, app := range r.byID {
		if filter.ClientID != "" && app.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		all = append(all, app)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []Application{}, nil
	}
	end := len(all)
	if filter.Limit > 0 && offset+filter.Limit < end {
		end = offset + filter.Limit
	}
	return all[offset:end], nil
}

// UpdateStatus sets the lifecycle status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, applicationID, status string) error {
	return r.mutate(ctx, applicationID, func(app *Application) {
		app.Status = status
	})
}

// UpdateCapacity records the affordability snapshot.
func (r *MemoryRepo) UpdateCapacity(ctx context.Context, applicationID, profile string, capacity scoring.AffordabilityResult) error {
	return r.mutate(ctx, applicationID, func(app *Application) {
		app.CapacityProfile = profile
		app.Capacity = &capacity
	})
}

// UpdateDecision records the approver decision.
func (r *MemoryRepo) UpdateDecision(ctx context.Context, applicationID, status, decision, note, approverID string, decidedAt time.Time) error {
	return r.mutate(ctx, applicationID, func(app *Application) {
		app.Status = status
		app.Decision = decision
		app.DecisionNote = note
		app.ApproverID = approverID
		app.DecidedAt = &decidedAt
	})
}

func (r *MemoryRepo) mutate(ctx context.Context, applicationID string, fn func(*Application)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[applicationID]
	if !ok {
		return ErrNotFound
	}
	fn(&app)
	app.UpdatedAt = time.Now().UTC()
	r.byID[applicationID] = app
	return nil
}
