package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lending-backend/internal/clients"
	"lending-backend/internal/scoring"
	"lending-backend/internal/shared/telemetry"
)

// ClientLookup resolves referenced cooperative members.
type ClientLookup interface {
	Get(ctx context.Context, clientID string) (clients.Client, error)
}

// Service contains business logic for applications.
type Service struct {
	Repo        Repo
	Clients     ClientLookup
	MonthlyRate float64
}

// CreateInput carries the fields needed to submit an application.
type CreateInput struct {
	ClientID    string  `json:"clientId"`
	Amount      float64 `json:"pengajuan"`
	TermMonths  int     `json:"jangkaPembiayaan"`
	Installment float64 `json:"angsuran"`
	Purpose     string  `json:"tujuan"`
}

// Create submits a new application on behalf of an analyst.
func (s *Service) Create(ctx context.Context, analystID string, in CreateInput) (Application, error) {
	if strings.TrimSpace(analystID) == "" {
		return Application{}, fmt.Errorf("%w: analyst id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.ClientID) == "" {
		return Application{}, fmt.Errorf("%w: clientId is required", ErrInvalidInput)
	}
	if in.Amount <= 0 {
		return Application{}, fmt.Errorf("%w: pengajuan must be positive", ErrInvalidInput)
	}
	if in.TermMonths <= 0 {
		return Application{}, fmt.Errorf("%w: jangkaPembiayaan must be positive", ErrInvalidInput)
	}

	if s.Clients != nil {
		if _, err := s.Clients.Get(ctx, in.ClientID); err != nil {
			if errors.Is(err, clients.ErrNotFound) {
				return Application{}, fmt.Errorf("%w: client %s not found", ErrInvalidInput, in.ClientID)
			}
			return Application{}, err
		}
	}

	now := time.Now().UTC()
	app := Application{
		ID:          uuid.NewString(),
		ClientID:    in.ClientID,
		AnalystID:   analystID,
		Amount:      in.Amount,
		TermMonths:  in.TermMonths,
		Installment: in.Installment,
		Purpose:     strings.TrimSpace(in.Purpose),
		Status:      StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	telemetry.Info("application.submitted", map[string]any{
		"application_id": app.ID,
		"client_id":      app.ClientID,
		"analyst_id":     app.AnalystID,
		"term_months":    app.TermMonths,
	})
	return app, nil
}

// Get returns an application by ID.
func (s *Service) Get(ctx context.Context, applicationID string) (Application, error) {
	if strings.TrimSpace(applicationID) == "" {
		return Application{}, fmt.Errorf("%w: application id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, applicationID)
}

// List returns applications newest-first, optionally filtered.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Application, error) {
	return s.Repo.List(ctx, filter)
}

// MarkInReview moves a submitted application into review.
func (s *Service) MarkInReview(ctx context.Context, applicationID string) error {
	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.Status == StatusApproved || app.Status == StatusRejected {
		return ErrAlreadyDecided
	}
	if app.Status == StatusInReview {
		return nil
	}
	return s.Repo.UpdateStatus(ctx, applicationID, StatusInReview)
}

// SaveCapacity computes and stores the affordability snapshot for an application.
// Profile "legacy" keeps the flat 70 percent ceiling used for older books,
// anything else uses the standard annuity profile at the configured rate.
func (s *Service) SaveCapacity(ctx context.Context, applicationID, profileName string, record scoring.IncomeExpenseRecord) (Application, error) {
	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}

	profile := scoring.StandardProfile(s.MonthlyRate)
	if strings.EqualFold(strings.TrimSpace(profileName), scoring.ProfileLegacy) {
		profile = scoring.LegacyProfile()
	}

	capacity, err := scoring.ComputeAffordability(record, app.TermMonths, profile.InstallmentFraction, profile.MonthlyRate)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidTerm) {
			return Application{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Application{}, err
	}

	if err := s.Repo.UpdateCapacity(ctx, applicationID, profile.Name, capacity); err != nil {
		return Application{}, err
	}
	app.CapacityProfile = profile.Name
	app.Capacity = &capacity
	telemetry.Info("application.capacity", map[string]any{
		"application_id": app.ID,
		"profile":        profile.Name,
		"net_income":     capacity.NetIncome,
	})
	return app, nil
}

// Decide records the approver decision. The approver must differ from the
// analyst who submitted the application.
func (s *Service) Decide(ctx context.Context, applicationID, approverID, decision, note string) (Application, error) {
	if strings.TrimSpace(approverID) == "" {
		return Application{}, fmt.Errorf("%w: approver id is required", ErrInvalidInput)
	}
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != DecisionApproved && decision != DecisionRejected {
		return Application{}, ErrInvalidDecision
	}

	app, err := s.Get(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	if app.Status == StatusApproved || app.Status == StatusRejected {
		return Application{}, ErrAlreadyDecided
	}
	if app.AnalystID == approverID {
		return Application{}, ErrSelfApproval
	}

	status := StatusRejected
	if decision == DecisionApproved {
		status = StatusApproved
	}
	decidedAt := time.Now().UTC()
	if err := s.Repo.UpdateDecision(ctx, applicationID, status, decision, strings.TrimSpace(note), approverID, decidedAt); err != nil {
		return Application{}, err
	}

	app.Status = status
	app.Decision = decision
	app.DecisionNote = strings.TrimSpace(note)
	app.ApproverID = approverID
	app.DecidedAt = &decidedAt
	telemetry.Info("application.decided", map[string]any{
		"application_id": app.ID,
		"decision":       decision,
		"approver_id":    approverID,
	})
	return app, nil
}
