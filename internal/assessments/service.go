package assessments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lending-backend/internal/applications"
	"lending-backend/internal/queue"
	"lending-backend/internal/scoring"
	"lending-backend/internal/shared/metrics"
	"lending-backend/internal/shared/telemetry"
	"lending-backend/internal/usage"
)

// ApplicationSource resolves the application a job scores against.
type ApplicationSource interface {
	Get(ctx context.Context, applicationID string) (applications.Application, error)
	MarkInReview(ctx context.Context, applicationID string) error
}

// DocumentTextSource supplies extracted text from an application's
// survey-note uploads.
type DocumentTextSource interface {
	SurveyNoteTexts(ctx context.Context, applicationID string) ([]string, error)
}

// Service contains business logic for assessments.
type Service struct {
	Repo           Repo
	Apps           ApplicationSource
	Usage          *usage.Service
	Queue          queue.Client
	Synth          *scoring.Synthesizer
	Docs           DocumentTextSource
	ScoringVersion string
}

// CreateInput carries the analyst-entered survey material for one job.
type CreateInput struct {
	Survey            scoring.CharacterSurvey `json:"survei"`
	SurveyRatings     []string                `json:"penilaianSurveyor"`
	AspectScores      []float64               `json:"skorAspek"`
	AssessmentAverage *float64                `json:"rataRataAspek"`
}

// Create queues a new assessment and kicks off asynchronous completion.
// When a job queue is configured the work is handed to the worker fleet,
// otherwise it completes in-process.
func (s *Service) Create(ctx context.Context, applicationID, analystID string, in CreateInput) (Assessment, error) {
	if applicationID == "" || analystID == "" {
		return Assessment{}, errors.New("applicationID and analystID are required")
	}

	if s.Apps != nil {
		if _, err := s.Apps.Get(ctx, applicationID); err != nil {
			return Assessment{}, err
		}
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, analystID, 1)
		if err != nil {
			return Assessment{}, err
		}
		if !ok {
			return Assessment{}, usage.ErrLimitReached
		}
	}

	assessment := Assessment{
		ID:                uuid.NewString(),
		ApplicationID:     applicationID,
		AnalystID:         analystID,
		ScoringVersion:    normalizeScoringVersion(s.ScoringVersion),
		Status:            StatusQueued,
		Survey:            in.Survey,
		SurveyRatings:     in.SurveyRatings,
		AspectScores:      in.AspectScores,
		AssessmentAverage: in.AssessmentAverage,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, assessment); err != nil {
		return Assessment{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, analystID, 1); err != nil {
			return Assessment{}, err
		}
	}

	if s.Apps != nil {
		if err := s.Apps.MarkInReview(ctx, applicationID); err != nil && !errors.Is(err, applications.ErrAlreadyDecided) {
			telemetry.Warn("assessment.mark_in_review", map[string]any{
				"application_id": applicationID,
				"assessment_id":  assessment.ID,
				"err":            err.Error(),
			})
		}
	}

	if s.Queue != nil {
		msg := queue.Message{
			AssessmentID: assessment.ID,
			RequestID:    requestIDFromContext(ctx),
			EnqueuedAt:   time.Now().UTC().Format(time.RFC3339),
			Version:      1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			s.failAssessment(ctx, assessment.ID, analystID, applicationID, fmt.Errorf("enqueue: %w", err), nil)
			return Assessment{}, err
		}
		return assessment, nil
	}

	go s.completeAsync(backgroundWithRequestID(ctx), assessment.ID)

	return assessment, nil
}

// Get returns an assessment by ID.
func (s *Service) Get(ctx context.Context, assessmentID string) (Assessment, error) {
	if assessmentID == "" {
		return Assessment{}, errors.New("assessmentID is required")
	}
	return s.Repo.GetByID(ctx, assessmentID)
}

// ListByApplication returns assessments for an application, newest first.
func (s *Service) ListByApplication(ctx context.Context, applicationID string, limit, offset int) ([]Assessment, error) {
	if applicationID == "" {
		return nil, errors.New("applicationID is required")
	}
	return s.Repo.ListByApplication(ctx, applicationID, limit, offset)
}

// ListByAnalyst returns assessments created by an analyst, newest first.
func (s *Service) ListByAnalyst(ctx context.Context, analystID string, limit, offset int) ([]Assessment, error) {
	if analystID == "" {
		return nil, errors.New("analystID is required")
	}
	return s.Repo.ListByAnalyst(ctx, analystID, limit, offset)
}

func normalizeScoringVersion(version string) string {
	if strings.TrimSpace(version) == "" {
		return "unknown"
	}
	return strings.TrimSpace(version)
}

func (s *Service) completeAsync(ctx context.Context, assessmentID string) {
	_ = s.ProcessAssessment(ctx, assessmentID)
}

// ProcessAssessment runs the scoring pipeline for one queued assessment.
// It is called by both the in-process path and the queue worker.
func (s *Service) ProcessAssessment(ctx context.Context, assessmentID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.failAssessment(ctx, assessmentID, "", "", err, nil)
		}
	}()

	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatusResultAndError(ctx, assessmentID, StatusProcessing, nil, nil, nil, nil, &startedAt, nil); err != nil {
		s.failAssessment(ctx, assessmentID, "", "", fmt.Errorf("set processing failed: %w", err), &startedAt)
		return err
	}

	assessment, err := s.Repo.GetByID(ctx, assessmentID)
	if err != nil {
		s.failAssessment(ctx, assessmentID, "", "", fmt.Errorf("assessment lookup: %w", err), &startedAt)
		return err
	}
	metrics.IncAssessmentStarted()
	telemetry.Info("assessment.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analyst_id":        assessment.AnalystID,
		"application_id":    assessment.ApplicationID,
		"assessment_id":     assessment.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.Apps == nil {
		err := errors.New("missing application source")
		s.failAssessment(ctx, assessmentID, assessment.AnalystID, assessment.ApplicationID, err, &startedAt)
		return err
	}
	if s.Synth == nil {
		err := errors.New("missing synthesizer")
		s.failAssessment(ctx, assessmentID, assessment.AnalystID, assessment.ApplicationID, err, &startedAt)
		return err
	}

	app, err := s.Apps.Get(ctx, assessment.ApplicationID)
	if err != nil {
		wrapped := fmt.Errorf("application lookup id=%s: %w", assessment.ApplicationID, err)
		s.failAssessment(ctx, assessmentID, assessment.AnalystID, assessment.ApplicationID, wrapped, &startedAt)
		return wrapped
	}

	survey := assessment.Survey
	if s.Docs != nil {
		texts, err := s.Docs.SurveyNoteTexts(ctx, assessment.ApplicationID)
		if err != nil {
			telemetry.Warn("assessment.document_text", map[string]any{
				"assessment_id":  assessment.ID,
				"application_id": assessment.ApplicationID,
				"err":            err.Error(),
			})
		} else {
			survey.Additional = append(survey.Additional, texts...)
		}
	}

	input := scoring.Input{
		AverageScore:      assessment.AverageScore(),
		Survey:            survey,
		SurveyRatings:     assessment.SurveyRatings,
		AssessmentAverage: assessment.AssessmentAverage,
		SubAnalysis:       app.Capacity,
		Planned: &scoring.PlannedLoan{
			Amount:      app.Amount,
			TermMonths:  app.TermMonths,
			Installment: app.Installment,
		},
	}
	outcome := s.Synth.Synthesize(input)

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatusResultAndError(ctx, assessmentID, StatusCompleted, &outcome, nil, nil, nil, nil, &completedAt); err != nil {
		wrapped := fmt.Errorf("set assessment result failed: %w", err)
		s.failAssessment(ctx, assessmentID, assessment.AnalystID, assessment.ApplicationID, wrapped, &startedAt)
		return wrapped
	}
	metrics.IncAssessmentCompleted()
	metrics.ObserveAssessmentDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("assessment.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analyst_id":        assessment.AnalystID,
		"application_id":    assessment.ApplicationID,
		"assessment_id":     assessment.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"recommendation":    outcome.Recommendation,
		"band":              string(outcome.Band),
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

func (s *Service) failAssessment(ctx context.Context, assessmentID, analystID, applicationID string, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateStatusResultAndError(context.Background(), assessmentID, StatusFailed, nil, &code, &msg, &retryable, nil, &completedAt); updateErr != nil {
		telemetry.Error("assessment.fail_update", map[string]any{
			"assessment_id": assessmentID,
			"err":           updateErr.Error(),
			"orig":          msg,
		})
	}
	metrics.IncAssessmentFailed()
	if startedAt != nil {
		metrics.ObserveAssessmentDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("assessment.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analyst_id":        analystID,
		"application_id":    applicationID,
		"assessment_id":     assessmentID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, applications.ErrNotFound) {
		return ErrorCodeValidation, false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "validation") {
		return ErrorCodeValidation, false
	}
	if strings.Contains(msg, "synthesize") || strings.Contains(msg, "scoring") {
		return ErrorCodeScoring, false
	}
	if strings.Contains(msg, "application") || strings.Contains(msg, "assessment result") ||
		strings.Contains(msg, "set processing") || strings.Contains(msg, "lookup") ||
		strings.Contains(msg, "enqueue") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
