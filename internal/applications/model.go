package applications

import (
	"time"

	"lending-backend/internal/scoring"
)

// Application statuses follow the intake lifecycle.
const (
	StatusSubmitted = "submitted"
	StatusInReview  = "in_review"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Decision values recorded by an approver.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Application represents a financing request from a cooperative member.
type Application struct {
	ID              string                        `json:"id"`
	ClientID        string                        `json:"clientId"`
	AnalystID       string                        `json:"analystId"`
	Amount          float64                       `json:"pengajuan"`
	TermMonths      int                           `json:"jangkaPembiayaan"`
	Installment     float64                       `json:"angsuran"`
	Purpose         string                        `json:"tujuan,omitempty"`
	Status          string                        `json:"status"`
	CapacityProfile string                        `json:"capacityProfile,omitempty"`
	Capacity        *scoring.AffordabilityResult  `json:"kapasitas,omitempty"`
	Decision        string                        `json:"decision,omitempty"`
	DecisionNote    string                        `json:"decisionNote,omitempty"`
	ApproverID      string                        `json:"approverId,omitempty"`
	DecidedAt       *time.Time                    `json:"decidedAt,omitempty"`
	CreatedAt       time.Time                     `json:"createdAt"`
	UpdatedAt       time.Time                     `json:"updatedAt"`
}
