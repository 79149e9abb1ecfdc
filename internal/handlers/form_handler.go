package handlers

import (
	"net/http"
	"time"

	"github.com/careforms/intake-service/internal/repositories"
	"github.com/careforms/intake-service/internal/services"
	"github.com/careforms/intake-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	BaseHandler
	formService   services.FormService
	exportService services.ExportService
}

func NewFormHandler(formService services.FormService, exportService services.ExportService, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler:   NewBaseHandler(logger),
		formService:   formService,
		exportService: exportService,
	}
}

// CreateForm creates a new intake form
// @Summary Create intake form
// @Description Creates a new intake form version for a service offering
// @Tags forms
// @Accept json
// @Produce json
// @Param form body services.CreateFormRequest true "Form data"
// @Success 201 {object} models.IntakeForm
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	intakeForm, err := h.formService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, intakeForm)
}

// GetForm retrieves an intake form by ID
// @Summary Get intake form
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} models.IntakeForm
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	intakeForm, err := h.formService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intakeForm)
}

// GetFormQuestions returns the normalized question list for a form
// @Summary Get normalized questions
// @Description Returns the flat ordered question list derived from the stored schema
// @Tags forms
// @Produce json
// @Param id path uint true "Form ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/questions [get]
func (h *FormHandler) GetFormQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	questions, err := h.formService.Questions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}

// UpdateForm updates an intake form, bumping its version
// @Summary Update intake form
// @Tags forms
// @Accept json
// @Produce json
// @Param id path uint true "Form ID"
// @Param form body services.UpdateFormRequest true "Form updates"
// @Success 200 {object} models.IntakeForm
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	intakeForm, err := h.formService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intakeForm)
}

// DeleteForm soft-deletes an intake form without sessions
// @Summary Delete intake form
// @Tags forms
// @Param id path uint true "Form ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.formService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListForms lists intake forms with filters
// @Summary List intake forms
// @Tags forms
// @Produce json
// @Success 200 {object} services.FormListResponse
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	response, err := h.formService.List(c.Request.Context(), h.parseFormFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExportSessions downloads the completed sessions of a form as xlsx
// @Summary Export completed sessions
// @Tags forms
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Form ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/export/sessions.xlsx [get]
func (h *FormHandler) ExportSessions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting form sessions", "form_id", id)

	data, filename, err := h.exportService.ExportSessions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *FormHandler) parseFormFilters(c *gin.Context) repositories.FormFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.FormFilters{
		OfferingID: h.parseUintQueryPtr(c, "offering_id"),
		Active:     h.parseBoolQueryPtr(c, "active"),
		Limit:      size,
		Offset:     (page - 1) * size,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}

	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}
