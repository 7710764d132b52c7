package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for clients.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateInput carries the fields needed to register a client.
type CreateInput struct {
	MemberNumber string `json:"memberNumber"`
	FullName     string `json:"fullName"`
	NIK          string `json:"nik"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Occupation   string `json:"occupation"`
}

// Create registers a new cooperative member.
func (s *Service) Create(ctx context.Context, in CreateInput) (Client, error) {
	in.MemberNumber = strings.TrimSpace(in.MemberNumber)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.MemberNumber == "" {
		return Client{}, fmt.Errorf("%w: memberNumber is required", ErrInvalidInput)
	}
	if in.FullName == "" {
		return Client{}, fmt.Errorf("%w: fullName is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	client := Client{
		ID:           uuid.NewString(),
		MemberNumber: in.MemberNumber,
		FullName:     in.FullName,
		NIK:          strings.TrimSpace(in.NIK),
		Address:      strings.TrimSpace(in.Address),
		Phone:        strings.TrimSpace(in.Phone),
		Occupation:   strings.TrimSpace(in.Occupation),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, client); err != nil {
		return Client{}, err
	}
	return client, nil
}

// Get returns a client by ID.
func (s *Service) Get(ctx context.Context, clientID string) (Client, error) {
	if strings.TrimSpace(clientID) == "" {
		return Client{}, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, clientID)
}

// List returns clients newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Client, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Update rewrites the mutable fields of an existing client.
func (s *Service) Update(ctx context.Context, clientID string, in CreateInput) (Client, error) {
	existing, err := s.Get(ctx, clientID)
	if err != nil {
		return Client{}, err
	}
	if v := strings.TrimSpace(in.MemberNumber); v != "" {
		existing.MemberNumber = v
	}
	if v := strings.TrimSpace(in.FullName); v != "" {
		existing.FullName = v
	}
	if v := strings.TrimSpace(in.NIK); v != "" {
		existing.NIK = v
	}
	if v := strings.TrimSpace(in.Address); v != "" {
		existing.Address = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		existing.Phone = v
	}
	if v := strings.TrimSpace(in.Occupation); v != "" {
		existing.Occupation = v
	}
	if err := s.Repo.Update(ctx, existing); err != nil {
		return Client{}, err
	}
	return existing, nil
}
