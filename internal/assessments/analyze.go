package assessments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lending-backend/internal/scoring"
	"lending-backend/internal/shared/telemetry"
)

// AnalyzeRequest is the synchronous scoring boundary: one self-contained
// payload, one deterministic outcome, nothing persisted. The documented
// fields (averageScore, characterSurvey, subAnalysis, assessments,
// applicationId, surveyRatings) take precedence; the analyst-form fields
// (skorAspek, pendapatan, rencana) fill the same inputs when the direct
// ones are absent.
type AnalyzeRequest struct {
	AverageScore      *float64                     `json:"averageScore"`
	CharacterSurvey   *scoring.CharacterSurvey     `json:"characterSurvey"`
	Survey            scoring.CharacterSurvey      `json:"survei"`
	SurveyRatings     []string                     `json:"surveyRatings"`
	SubAnalysis       *scoring.AffordabilityResult `json:"subAnalysis"`
	Assessments       []float64                    `json:"assessments"`
	ApplicationID     string                       `json:"applicationId"`
	AspectScores      []float64                    `json:"skorAspek"`
	AssessmentAverage *float64                     `json:"rataRataAspek"`
	Record            *scoring.IncomeExpenseRecord `json:"pendapatan"`
	Profile           string                       `json:"profile"`
	MonthlyRate       float64                      `json:"margin"`
	Planned           *scoring.PlannedLoan         `json:"rencana"`
}

// Analyze scores one request without persisting anything.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (scoring.Outcome, error) {
	if s.Synth == nil {
		return scoring.Outcome{}, errors.New("missing synthesizer")
	}

	input := scoring.Input{
		AverageScore:      averageScoreFor(req),
		Survey:            req.Survey,
		SurveyRatings:     req.SurveyRatings,
		AssessmentAverage: req.AssessmentAverage,
		SubAnalysis:       req.SubAnalysis,
		Planned:           req.Planned,
	}
	if req.CharacterSurvey != nil {
		input.Survey = *req.CharacterSurvey
	}
	if input.AssessmentAverage == nil && len(req.Assessments) > 0 {
		avg := mean(req.Assessments)
		input.AssessmentAverage = &avg
	}

	if input.SubAnalysis == nil && req.Record != nil {
		termMonths := 0
		if req.Planned != nil {
			termMonths = req.Planned.TermMonths
		}
		profile := scoring.StandardProfile(req.MonthlyRate)
		if strings.EqualFold(strings.TrimSpace(req.Profile), scoring.ProfileLegacy) {
			profile = scoring.LegacyProfile()
		}
		capacity, err := profile.Compute(*req.Record, termMonths)
		if err != nil {
			return scoring.Outcome{}, fmt.Errorf("capacity: %w", err)
		}
		input.SubAnalysis = &capacity
	}

	if req.ApplicationID != "" && s.Apps != nil && (input.SubAnalysis == nil || input.Planned == nil) {
		app, err := s.Apps.Get(ctx, req.ApplicationID)
		if err != nil {
			// Missing application is not fatal here; score what was sent.
			telemetry.Warn("analyze.application_lookup", map[string]any{
				"application_id": req.ApplicationID,
				"err":            err.Error(),
			})
		} else {
			if input.SubAnalysis == nil {
				input.SubAnalysis = app.Capacity
			}
			if input.Planned == nil {
				input.Planned = &scoring.PlannedLoan{
					Amount:      app.Amount,
					TermMonths:  app.TermMonths,
					Installment: app.Installment,
				}
			}
		}
	}

	return s.Synth.Synthesize(input), nil
}

func averageScoreFor(req AnalyzeRequest) float64 {
	if req.AverageScore != nil {
		return *req.AverageScore
	}
	if len(req.AspectScores) > 0 {
		return mean(req.AspectScores)
	}
	return 0
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
