package assessments

import (
	"context"
	"errors"
	"testing"

	"lending-backend/internal/applications"
	"lending-backend/internal/queue"
	"lending-backend/internal/scoring"
	"lending-backend/internal/usage"
)

type captureQueue struct {
	sent []queue.Message
	err  error
}

func (q *captureQueue) Send(ctx context.Context, msg queue.Message) error {
	_ = ctx
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

func newAppSource(t *testing.T) (*applications.Service, applications.Application) {
	t.Helper()
	appSvc := &applications.Service{Repo: applications.NewMemoryRepo()}
	app, err := appSvc.Create(context.Background(), "analyst-1", applications.CreateInput{
		ClientID:   "client-1",
		Amount:     12000000,
		TermMonths: 12,
		Purpose:    "modal usaha",
	})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	return appSvc, app
}

func TestCreateEnqueuesWhenQueueConfigured(t *testing.T) {
	appSvc, app := newAppSource(t)
	q := &captureQueue{}
	svc := &Service{
		Repo:           NewMemoryRepo(),
		Apps:           appSvc,
		Usage:          usage.NewService(),
		Queue:          q,
		Synth:          scoring.NewSynthesizer(scoring.DefaultLexicon()),
		ScoringVersion: "penilaian-5c:v1",
	}

	created, err := svc.Create(context.Background(), app.ID, "analyst-1", CreateInput{
		AspectScores: []float64{4.5, 4.0, 4.2},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != StatusQueued {
		t.Fatalf("expected status queued, got %s", created.Status)
	}
	if len(q.sent) != 1 {
		t.Fatalf("expected 1 queued message, got %d", len(q.sent))
	}
	if q.sent[0].AssessmentID != created.ID {
		t.Fatalf("queued message carries wrong id: %s", q.sent[0].AssessmentID)
	}

	got, err := appSvc.Get(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if got.Status != applications.StatusInReview {
		t.Fatalf("expected application in_review, got %s", got.Status)
	}

	u, err := svc.Usage.Get(context.Background(), "analyst-1")
	if err != nil {
		t.Fatalf("usage get: %v", err)
	}
	if u.Used != 1 {
		t.Fatalf("expected 1 consumed, got %d", u.Used)
	}
}

func TestProcessAssessmentCompletesWithOutcome(t *testing.T) {
	appSvc, app := newAppSource(t)
	svc := &Service{
		Repo:           NewMemoryRepo(),
		Apps:           appSvc,
		Queue:          &captureQueue{},
		Synth:          scoring.NewSynthesizer(scoring.DefaultLexicon()),
		ScoringVersion: "penilaian-5c:v1",
	}

	created, err := svc.Create(context.Background(), app.ID, "analyst-1", CreateInput{
		Survey: scoring.CharacterSurvey{
			Religious:  "rajin ibadah dan jujur",
			Experience: "usaha berjalan lancar",
		},
		AspectScores: []float64{4.6, 4.4, 4.5},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.ProcessAssessment(context.Background(), created.ID); err != nil {
		t.Fatalf("ProcessAssessment: %v", err)
	}

	final, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", final.Status)
	}
	if final.Result == nil {
		t.Fatalf("expected a result")
	}
	if final.Result.Band != scoring.BandSangatBaik {
		t.Fatalf("expected band sangat_baik for avg 4.5, got %s", final.Result.Band)
	}
	if final.StartedAt == nil || final.CompletedAt == nil {
		t.Fatalf("expected timestamps recorded")
	}
}

func TestProcessAssessmentFailsWhenApplicationGone(t *testing.T) {
	appSvc := &applications.Service{Repo: applications.NewMemoryRepo()}
	repo := NewMemoryRepo()
	svc := &Service{
		Repo:  repo,
		Apps:  appSvc,
		Synth: scoring.NewSynthesizer(scoring.DefaultLexicon()),
	}

	assessment := Assessment{
		ID:            "as-1",
		ApplicationID: "missing-app",
		AnalystID:     "analyst-1",
		Status:        StatusQueued,
	}
	if err := repo.Create(context.Background(), assessment); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.ProcessAssessment(context.Background(), "as-1"); err == nil {
		t.Fatalf("expected error for missing application")
	}

	final, err := svc.Get(context.Background(), "as-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", final.Status)
	}
	if final.ErrorCode == nil {
		t.Fatalf("expected an error code")
	}
}

func TestCreateRejectsWhenQuotaExhausted(t *testing.T) {
	appSvc, app := newAppSource(t)
	usageSvc := usage.NewService()
	ctx := context.Background()
	u, err := usageSvc.Get(ctx, "analyst-1")
	if err != nil {
		t.Fatalf("usage get: %v", err)
	}
	if _, err := usageSvc.Consume(ctx, "analyst-1", u.Limit); err != nil {
		t.Fatalf("exhaust quota: %v", err)
	}

	svc := &Service{
		Repo:  NewMemoryRepo(),
		Apps:  appSvc,
		Usage: usageSvc,
		Queue: &captureQueue{},
		Synth: scoring.NewSynthesizer(scoring.DefaultLexicon()),
	}

	if _, err := svc.Create(ctx, app.ID, "analyst-1", CreateInput{}); !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestCreateRejectsUnknownApplication(t *testing.T) {
	appSvc := &applications.Service{Repo: applications.NewMemoryRepo()}
	svc := &Service{
		Repo:  NewMemoryRepo(),
		Apps:  appSvc,
		Queue: &captureQueue{},
		Synth: scoring.NewSynthesizer(scoring.DefaultLexicon()),
	}

	if _, err := svc.Create(context.Background(), "nope", "analyst-1", CreateInput{}); !errors.Is(err, applications.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeDocTexts struct {
	texts map[string][]string
	err   error
}

func (f *fakeDocTexts) SurveyNoteTexts(ctx context.Context, applicationID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.texts[applicationID], nil
}

func TestProcessAssessmentScansSurveyNoteDocuments(t *testing.T) {
	appSvc, app := newAppSource(t)
	docs := &fakeDocTexts{texts: map[string][]string{
		app.ID: {"pembayaran nunggak tiga bulan", "riwayat kredit macet"},
	}}
	svc := &Service{
		Repo:           NewMemoryRepo(),
		Apps:           appSvc,
		Queue:          &captureQueue{},
		Synth:          scoring.NewSynthesizer(scoring.DefaultLexicon()),
		Docs:           docs,
		ScoringVersion: "penilaian-5c:v1",
	}

	created, err := svc.Create(context.Background(), app.ID, "analyst-1", CreateInput{
		Survey:       scoring.CharacterSurvey{Notes: "jujur dan amanah"},
		AspectScores: []float64{4.6, 4.4, 4.5},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.ProcessAssessment(context.Background(), created.ID); err != nil {
		t.Fatalf("ProcessAssessment: %v", err)
	}

	final, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Result == nil {
		t.Fatalf("expected a result")
	}
	// Two fields with negative terms arrived via the uploaded notes; they
	// must outweigh the otherwise clean analyst survey.
	if final.Result.Signals.Negative != 2 {
		t.Fatalf("expected 2 negative signals from document text, got %d", final.Result.Signals.Negative)
	}
	if final.Result.Recommendation != scoring.RecommendationTidakLayak {
		t.Fatalf("expected tidak_layak, got %s", final.Result.Recommendation)
	}
}

func TestProcessAssessmentToleratesDocumentTextFailure(t *testing.T) {
	appSvc, app := newAppSource(t)
	svc := &Service{
		Repo:           NewMemoryRepo(),
		Apps:           appSvc,
		Queue:          &captureQueue{},
		Synth:          scoring.NewSynthesizer(scoring.DefaultLexicon()),
		Docs:           &fakeDocTexts{err: errors.New("storage offline")},
		ScoringVersion: "penilaian-5c:v1",
	}

	created, err := svc.Create(context.Background(), app.ID, "analyst-1", CreateInput{
		AspectScores: []float64{4.6, 4.4, 4.5},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.ProcessAssessment(context.Background(), created.ID); err != nil {
		t.Fatalf("ProcessAssessment: %v", err)
	}

	final, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Status != StatusCompleted {
		t.Fatalf("expected completed despite document text failure, got %s", final.Status)
	}
}
