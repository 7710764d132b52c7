package assessments

import (
	"time"

	"lending-backend/internal/scoring"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Assessment represents one character-and-capacity scoring job for an
// application.
type Assessment struct {
	ID                string                  `json:"id"`
	ApplicationID     string                  `json:"applicationId"`
	AnalystID         string                  `json:"analystId"`
	ScoringVersion    string                  `json:"scoringVersion"`
	Status            string                  `json:"status"`
	Survey            scoring.CharacterSurvey `json:"survei"`
	SurveyRatings     []string                `json:"penilaianSurveyor,omitempty"`
	AspectScores      []float64               `json:"skorAspek,omitempty"`
	AssessmentAverage *float64                `json:"rataRataAspek,omitempty"`
	Result            *scoring.Outcome        `json:"result,omitempty"`
	ErrorCode         *string                 `json:"errorCode,omitempty"`
	ErrorMessage      *string                 `json:"errorMessage,omitempty"`
	Retryable         *bool                   `json:"retryable,omitempty"`
	StartedAt         *time.Time              `json:"startedAt,omitempty"`
	CompletedAt       *time.Time              `json:"completedAt,omitempty"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

// AverageScore is the mean of the recorded aspect scores, zero when none
// were recorded.
func (a Assessment) AverageScore() float64 {
	if len(a.AspectScores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range a.AspectScores {
		sum += s
	}
	return sum / float64(len(a.AspectScores))
}
