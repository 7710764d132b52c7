package assessments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lending-backend/internal/applications"
	"lending-backend/internal/scoring"
	"lending-backend/internal/shared/server/middleware"
	"lending-backend/internal/shared/server/respond"
	"lending-backend/internal/usage"
)

// Handler wires HTTP handlers to the assessments service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications/:id/assessments", h.startAssessment)
	rg.POST("/applications/:id/risk", h.analyzeRisk)
	rg.GET("/assessments", h.listAssessments)
	rg.GET("/assessments/:id", h.getAssessment)
	rg.POST("/analyze", h.analyze)
}

func (h *Handler) startAssessment(c *gin.Context) {
	analystID := middleware.UserIDFromContext(c)
	applicationID := c.Param("id")
	if applicationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "application id is required", nil)
		return
	}

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	assessment, err := h.Svc.Create(ctx, applicationID, analystID, in)
	if err != nil {
		switch {
		case errors.Is(err, applications.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your assessment limit for this period.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start assessment", nil)
		}
		return
	}

	c.Set("applicationId", applicationID)
	c.Set("assessmentId", assessment.ID)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"assessmentId": assessment.ID,
		"status":       assessment.Status,
	})
}

func (h *Handler) getAssessment(c *gin.Context) {
	assessmentID := c.Param("id")
	if assessmentID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "assessment id is required", nil)
		return
	}

	assessment, err := h.Svc.Get(c.Request.Context(), assessmentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "assessment not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch assessment", nil)
		}
		return
	}

	c.Set("assessmentId", assessment.ID)
	resp := gin.H{
		"id":            assessment.ID,
		"applicationId": assessment.ApplicationID,
		"status":        assessment.Status,
	}
	if assessment.Status == StatusCompleted && assessment.Result != nil {
		resp["result"] = assessment.Result
	}
	if assessment.Status == StatusFailed {
		if assessment.ErrorCode != nil {
			resp["errorCode"] = *assessment.ErrorCode
		}
		if assessment.Retryable != nil {
			resp["retryable"] = *assessment.Retryable
		}
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listAssessments(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	var list []Assessment
	var err error
	if applicationID := c.Query("applicationId"); applicationID != "" {
		list, err = h.Svc.ListByApplication(c.Request.Context(), applicationID, limit, offset)
	} else {
		list, err = h.Svc.ListByAnalyst(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assessments", nil)
		return
	}

	resp := make([]gin.H, 0, len(list))
	for _, a := range list {
		item := gin.H{
			"assessmentId":  a.ID,
			"applicationId": a.ApplicationID,
			"status":        a.Status,
			"createdAt":     a.CreatedAt,
		}
		if a.Status == StatusCompleted && a.Result != nil {
			item["recommendation"] = a.Result.Recommendation
			item["band"] = a.Result.Band
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	outcome, err := h.Svc.Analyze(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrInvalidTerm):
			respond.Error(c, http.StatusBadRequest, "validation_error", "jangkaWaktu must be positive when pendapatan is supplied", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, outcome)
}

func (h *Handler) analyzeRisk(c *gin.Context) {
	applicationID := c.Param("id")
	if applicationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "application id is required", nil)
		return
	}

	var in scoring.RiskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if h.Svc.Apps != nil {
		app, err := h.Svc.Apps.Get(c.Request.Context(), applicationID)
		if err != nil {
			switch {
			case errors.Is(err, applications.ErrNotFound):
				respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
			default:
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch application", nil)
			}
			return
		}
		if in.RequestedAmount == 0 {
			in.RequestedAmount = app.Amount
		}
		if in.TermMonths == 0 {
			in.TermMonths = app.TermMonths
		}
		c.Set("applicationId", app.ID)
	}

	respond.JSON(c, http.StatusOK, scoring.AnalyzeRisk(in))
}
