package assessments_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"lending-backend/internal/bootstrap"
	"lending-backend/internal/shared/config"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func postAnalyze(t *testing.T, router *gin.Engine, payload string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestAnalyzeAcceptsAverageScoreAndCharacterSurvey(t *testing.T) {
	router := newRouter(t)

	out := postAnalyze(t, router, `{
		"averageScore": 4.5,
		"characterSurvey": {"catatan": "jujur dan amanah"}
	}`)

	if out["recommendation"] != "layak" {
		t.Fatalf("expected layak, got %v", out["recommendation"])
	}
	if out["band"] != "sangat_baik" {
		t.Fatalf("expected sangat_baik, got %v", out["band"])
	}
	signals, ok := out["signals"].(map[string]any)
	if !ok {
		t.Fatalf("missing signals in %v", out)
	}
	if positive, _ := signals["positiveSignals"].(float64); positive != 1 {
		t.Fatalf("expected positive signals from survey notes, got %v", signals["positiveSignals"])
	}
}

func TestAnalyzeAcceptsSubAnalysisAndAssessments(t *testing.T) {
	router := newRouter(t)

	out := postAnalyze(t, router, `{
		"averageScore": 4.5,
		"characterSurvey": {"catatan": "lingkungan rukun dan harmonis"},
		"subAnalysis": {"pendapatanBersih": 1000000, "angsuranMaksimal": 400000, "jangkaPembiayaan": 12},
		"assessments": [4.0, 4.4],
		"surveyRatings": ["baik", "baik"]
	}`)

	// Planned installment is absent, so the capacity override cannot fire;
	// the sangat_baik baseline stands.
	if out["recommendation"] != "layak" {
		t.Fatalf("expected layak, got %v", out["recommendation"])
	}
	factors, ok := out["factors"].([]any)
	if !ok || len(factors) == 0 {
		t.Fatalf("expected factors, got %v", out["factors"])
	}
	var sawNetIncome bool
	for _, f := range factors {
		if s, ok := f.(string); ok && s == "pendapatanBersih=1000000" {
			sawNetIncome = true
		}
	}
	if !sawNetIncome {
		t.Fatalf("expected net income factor from subAnalysis, got %v", factors)
	}
}

func TestAnalyzeResolvesStoredCapacityFromApplication(t *testing.T) {
	router := newRouter(t)

	clientID := createClient(t, router)
	applicationID := createApplication(t, router, clientID)
	saveCapacity(t, router, applicationID)

	out := postAnalyze(t, router, fmt.Sprintf(`{
		"averageScore": 4.5,
		"characterSurvey": {"catatan": "jujur"},
		"applicationId": %q
	}`, applicationID))

	factors, ok := out["factors"].([]any)
	if !ok {
		t.Fatalf("expected factors, got %v", out["factors"])
	}
	var sawNetIncome bool
	for _, f := range factors {
		if s, ok := f.(string); ok && len(s) > len("pendapatanBersih=") && s[:len("pendapatanBersih=")] == "pendapatanBersih=" {
			sawNetIncome = true
		}
	}
	if !sawNetIncome {
		t.Fatalf("expected stored capacity to surface as a factor, got %v", factors)
	}
}

func TestAnalyzeToleratesUnknownApplication(t *testing.T) {
	router := newRouter(t)

	out := postAnalyze(t, router, `{
		"averageScore": 3.0,
		"characterSurvey": {"catatan": "biasa saja"},
		"applicationId": "ghost"
	}`)

	if out["recommendation"] != "pertimbangan" {
		t.Fatalf("expected pertimbangan, got %v", out["recommendation"])
	}
}

func createClient(t *testing.T, router *gin.Engine) string {
	t.Helper()
	body := `{"memberNumber": "A-100", "fullName": "Budi Santoso"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode client: %v", err)
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("missing client id in %v", out)
	}
	return id
}

func createApplication(t *testing.T, router *gin.Engine, clientID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"clientId": %q, "pengajuan": 12000000, "jangkaPembiayaan": 12, "tujuan": "modal usaha"}`, clientID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create application: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode application: %v", err)
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("missing application id in %v", out)
	}
	return id
}

func saveCapacity(t *testing.T, router *gin.Engine, applicationID string) {
	t.Helper()
	body := `{"profile": "legacy", "pendapatan": {"pendapatanUtama": 6000000, "pengeluaranUtama": 2000000}}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/applications/"+applicationID+"/capacity", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("save capacity: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}
