package handlers

import (
	"context"
	"net/http"

	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/careforms/intake-service/internal/services"
	"github.com/careforms/intake-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession opens a new intake session on an active form
// @Summary Start intake session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session data"
// @Success 201 {object} services.SessionStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	state, err := h.sessionService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, state)
}

// GetSessionState returns the current state and progress of a session
// @Summary Get session state
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/state [get]
func (h *SessionHandler) GetSessionState(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	state, err := h.sessionService.GetState(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// SubmitAnswer records one answer and returns the recomputed progress
// @Summary Submit answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param answer body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} services.SessionStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers [post]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	state, err := h.sessionService.SubmitAnswer(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// NextSection advances to the next section when the current one is complete
// @Summary Advance section
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/next [post]
func (h *SessionHandler) NextSection(c *gin.Context) {
	h.navigate(c, h.sessionService.Next)
}

// PrevSection steps back one section
// @Summary Step back a section
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/prev [post]
func (h *SessionHandler) PrevSection(c *gin.Context) {
	h.navigate(c, h.sessionService.Prev)
}

// SubmitSession completes the session when every required question is answered
// @Summary Submit session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionStateResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	state, err := h.sessionService.Submit(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// AbandonSession marks the session as abandoned
// @Summary Abandon session
// @Tags sessions
// @Param id path uint true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/abandon [post]
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.sessionService.Abandon(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSessions lists sessions with filters
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} services.SessionListResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	response, err := h.sessionService.List(c.Request.Context(), h.parseSessionFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SessionHandler) navigate(c *gin.Context, step func(ctx context.Context, id uint) (*services.SessionStateResponse, error)) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	state, err := step(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) parseSessionFilters(c *gin.Context) repositories.SessionFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.SessionFilters{
		FormID: h.parseUintQueryPtr(c, "form_id"),
		Limit:  size,
		Offset: (page - 1) * size,
		SortBy: c.Query("sort_by"),
	}

	if status := c.Query("status"); status != "" {
		s := models.SessionStatus(status)
		filters.Status = &s
	}
	if ref := c.Query("customer_ref"); ref != "" {
		filters.CustomerRef = &ref
	}

	return filters
}
