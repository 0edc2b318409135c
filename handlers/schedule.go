package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tavolo/models"
	schedule "tavolo/services/schedule"
	"tavolo/utils"
)

// ScheduleHandler exposes the schedule manager and query service over HTTP.
type ScheduleHandler struct {
	Manager schedule.ScheduleManager
	Query   schedule.ScheduleQueryService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(manager schedule.ScheduleManager, query schedule.ScheduleQueryService) *ScheduleHandler {
	return &ScheduleHandler{Manager: manager, Query: query}
}

// CreateScheduleHandler handles POST /api/schedules. A "replace=true" query
// parameter (or body flag) swaps out an existing active schedule atomically
// instead of returning 409.
func (h *ScheduleHandler) CreateScheduleHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	if c.Query("replace") == "true" {
		req.Replace = true
	}

	created, err := h.Manager.Create(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Failed to create schedule", zap.Error(err))
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListSchedulesHandler handles GET /api/schedules?type=&entityId=. It returns
// the binding's full history, newest first, for administrative views.
func (h *ScheduleHandler) ListSchedulesHandler(c *gin.Context) {
	boundType := models.BoundType(c.Query("type"))
	entityID := c.Query("entityId")
	if !boundType.Valid() || entityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameters type (MENU|VENUE) and entityId are required"})
		return
	}

	schedules, err := h.Manager.ListForBinding(c.Request.Context(), boundType, entityID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": schedules})
}

// GetScheduleHandler handles GET /api/schedules/id/:id.
func (h *ScheduleHandler) GetScheduleHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing schedule ID in path"})
		return
	}

	s, err := h.Manager.GetByID(c.Request.Context(), id)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, s)
}

// UpdateScheduleHandler handles PATCH /api/schedules/update/:id. The body is
// a partial patch; the manager merges and re-validates the whole schedule.
func (h *ScheduleHandler) UpdateScheduleHandler(c *gin.Context) {
	logger := utils.GetLogger()

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing schedule ID in path"})
		return
	}

	var patch models.SchedulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	updated, err := h.Manager.Update(c.Request.Context(), id, patch)
	if err != nil {
		logger.Warn("Failed to update schedule", zap.String("scheduleID", id), zap.Error(err))
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeactivateScheduleHandler handles POST /api/schedules/:id/deactivate.
// Deactivation is idempotent, so repeated calls all return 204.
func (h *ScheduleHandler) DeactivateScheduleHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing schedule ID in path"})
		return
	}

	if err := h.Manager.Deactivate(c.Request.Context(), id); err != nil {
		respondScheduleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ScheduleStatusHandler handles GET /api/schedules/:id/status?at=. The "at"
// instant is RFC 3339 and defaults to now.
func (h *ScheduleHandler) ScheduleStatusHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing schedule ID in path"})
		return
	}

	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' instant; expected RFC 3339", "message": err.Error()})
			return
		}
		at = parsed
	}

	status, err := h.Query.Status(c.Request.Context(), id, at)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// EntityOpenHandler handles GET /api/schedules/open?type=&entityId= — the
// consumer-facing "is this entity open right now" question. "scheduled":
// false tells the caller nothing governs the entity, and the caller's own
// default (typically open) applies.
func (h *ScheduleHandler) EntityOpenHandler(c *gin.Context) {
	boundType := models.BoundType(c.Query("type"))
	entityID := c.Query("entityId")
	if !boundType.Valid() || entityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameters type (MENU|VENUE) and entityId are required"})
		return
	}

	open, scheduled, err := h.Query.IsEntityOpenNow(c.Request.Context(), boundType, entityID)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"open": open, "scheduled": scheduled})
}

// respondScheduleError maps the schedule service's error taxonomy onto HTTP
// statuses. Anything untyped coming out of the manager is a validation
// failure of the submitted aggregate.
func respondScheduleError(c *gin.Context, err error) {
	var (
		patternErr  *schedule.InvalidPatternError
		timezoneErr *schedule.InvalidTimezoneError
		conflictErr *schedule.ConflictError
		notFoundErr *schedule.NotFoundError
		repoErr     *schedule.RepositoryError
	)

	switch {
	case errors.As(err, &patternErr), errors.As(err, &timezoneErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule", "message": err.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": "Schedule conflict", "message": err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found", "message": err.Error()})
	case errors.As(err, &repoErr):
		utils.GetLogger().Error("Schedule repository failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage failure", "message": "Please retry the request"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule", "message": err.Error()})
	}
}
