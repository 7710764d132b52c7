package clients

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores clients in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]Client
	byNumber map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]Client),
		byNumber: make(map[string]string),
	}
}

// Create stores the client.
func (r *MemoryRepo) Create(ctx context.Context, client Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[client.MemberNumber]; ok {
		return ErrDuplicate
	}
	r.byID[client.ID] = client
	r.byNumber[client.MemberNumber] = client.ID
	return nil
}

// GetByID returns a client by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, clientID string) (Client, error) {
	if err := ctx.Err(); err != nil {
		return Client{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.byID[clientID]
	if !ok {
		return Client{}, ErrNotFound
	}
	return client, nil
}

// GetByMemberNumber returns a client by its member number.
func (r *MemoryRepo) GetByMemberNumber(ctx context.Context, memberNumber string) (Client, error) {
	if err := ctx.Err(); err != nil {
		return Client{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[memberNumber]
	if !ok {
		return Client{}, ErrNotFound
	}
	return r.byID[id], nil
}

// List returns clients newest-first with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Client, error) {
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
	all := make([]Client, 0, len(r.byID))
	for _, c := range r.byID {
		all = append(all, c)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Client{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// Update replaces the stored client.
func (r *MemoryRepo) Update(ctx context.Context, client Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[client.ID]
	if !ok {
		return ErrNotFound
	}
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now().UTC()
	if existing.MemberNumber != client.MemberNumber {
		if _, taken := r.byNumber[client.MemberNumber]; taken {
			return ErrDuplicate
		}
		delete(r.byNumber, existing.MemberNumber)
		r.byNumber[client.MemberNumber] = client.ID
	}
	r.byID[client.ID] = client
	return nil
}
