package clients

import "context"

// Repo defines persistence operations for clients.
type Repo interface {
	Create(ctx context.Context, client Client) error
	GetByID(ctx context.Context, clientID string) (Client, error)
	GetByMemberNumber(ctx context.Context, memberNumber string) (Client, error)
	List(ctx context.Context, limit, offset int) ([]Client, error)
	Update(ctx context.Context, client Client) error
}
