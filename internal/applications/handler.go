package applications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lending-backend/internal/scoring"
	"lending-backend/internal/shared/server/middleware"
	"lending-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the applications service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches application routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.create)
	rg.GET("/applications", h.list)
	rg.GET("/applications/:id", h.get)
	rg.PUT("/applications/:id/capacity", h.saveCapacity)
	rg.POST("/applications/:id/decision", middleware.RequireRole("approver", "admin"), h.decide)
}

func (h *Handler) create(c *gin.Context) {
	analystID := middleware.UserIDFromContext(c)

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Svc.Create(c.Request.Context(), analystID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create application", nil)
		}
		return
	}
	c.Set("applicationId", app.ID)
	respond.JSON(c, http.StatusCreated, app)
}

func (h *Handler) get(c *gin.Context) {
	app, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch application", nil)
		}
		return
	}
	c.Set("applicationId", app.ID)
	respond.JSON(c, http.StatusOK, app)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		ClientID: c.Query("clientId"),
		Status:   c.Query("status"),
		Limit:    20,
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Limit = parsed
		}
	}
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	if filter.Limit > 50 {
		filter.Limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filter.Offset = parsed
		}
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list applications", nil)
		return
	}
	respond.JSON(c, http.StatusOK, list)
}

type saveCapacityRequest struct {
	Profile string                      `json:"profile"`
	Record  scoring.IncomeExpenseRecord `json:"pendapatan"`
}

func (h *Handler) saveCapacity(c *gin.Context) {
	var req saveCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Svc.SaveCapacity(c.Request.Context(), c.Param("id"), req.Profile, req.Record)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save capacity", nil)
		}
		return
	}
	c.Set("applicationId", app.ID)
	respond.JSON(c, http.StatusOK, app)
}

type decideRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

func (h *Handler) decide(c *gin.Context) {
	approverID := middleware.UserIDFromContext(c)

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	app, err := h.Svc.Decide(c.Request.Context(), c.Param("id"), approverID, req.Decision, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "application not found", nil)
		case errors.Is(err, ErrInvalidDecision), errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrAlreadyDecided):
			respond.Error(c, http.StatusConflict, "already_decided", "application already decided", nil)
		case errors.Is(err, ErrSelfApproval):
			respond.Error(c, http.StatusForbidden, "self_approval", "approver must differ from analyst", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record decision", nil)
		}
		return
	}
	c.Set("applicationId", app.ID)
	respond.JSON(c, http.StatusOK, app)
}
