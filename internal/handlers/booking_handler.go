package handlers

import (
	"net/http"
	"time"

	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/careforms/intake-service/internal/services"
	"github.com/careforms/intake-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	BaseHandler
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService, logger utils.Logger) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    NewBaseHandler(logger),
		bookingService: bookingService,
	}
}

// ===== OFFERINGS =====

// CreateOffering creates a bookable service offering
// @Summary Create service offering
// @Tags offerings
// @Accept json
// @Produce json
// @Param offering body services.CreateOfferingRequest true "Offering data"
// @Success 201 {object} models.ServiceOffering
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /offerings [post]
func (h *BookingHandler) CreateOffering(c *gin.Context) {
	var req services.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	offering, err := h.bookingService.CreateOffering(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offering)
}

// GetOffering retrieves an offering by ID
// @Summary Get service offering
// @Tags offerings
// @Produce json
// @Param id path uint true "Offering ID"
// @Success 200 {object} models.ServiceOffering
// @Failure 404 {object} ErrorResponse
// @Router /offerings/{id} [get]
func (h *BookingHandler) GetOffering(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	offering, err := h.bookingService.GetOffering(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offering)
}

// GetOfferingBySlug retrieves an offering by its public slug
// @Summary Get service offering by slug
// @Tags offerings
// @Produce json
// @Param slug path string true "Offering slug"
// @Success 200 {object} models.ServiceOffering
// @Failure 404 {object} ErrorResponse
// @Router /offerings/slug/{slug} [get]
func (h *BookingHandler) GetOfferingBySlug(c *gin.Context) {
	slug := ParseStringIDParam(c, "slug")
	if slug == "" {
		return
	}

	offering, err := h.bookingService.GetOfferingBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offering)
}

// UpdateOffering updates an offering
// @Summary Update service offering
// @Tags offerings
// @Accept json
// @Produce json
// @Param id path uint true "Offering ID"
// @Param offering body services.UpdateOfferingRequest true "Offering updates"
// @Success 200 {object} models.ServiceOffering
// @Failure 404 {object} ErrorResponse
// @Router /offerings/{id} [put]
func (h *BookingHandler) UpdateOffering(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	offering, err := h.bookingService.UpdateOffering(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, offering)
}

// ListOfferings lists service offerings
// @Summary List service offerings
// @Tags offerings
// @Produce json
// @Param active query bool false "Only active offerings"
// @Success 200 {array} models.ServiceOffering
// @Router /offerings [get]
func (h *BookingHandler) ListOfferings(c *gin.Context) {
	activeOnly := false
	if v := h.parseBoolQueryPtr(c, "active"); v != nil {
		activeOnly = *v
	}

	offerings, err := h.bookingService.ListOfferings(c.Request.Context(), activeOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offerings": offerings})
}

// ===== SLOTS =====

// GetSlots builds the bookable slots for an offering on a given date
// @Summary Get day slots
// @Tags offerings
// @Produce json
// @Param id path uint true "Offering ID"
// @Param date query string true "Date in YYYY-MM-DD"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /offerings/{id}/slots [get]
func (h *BookingHandler) GetSlots(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid date, expected YYYY-MM-DD",
			Details: err.Error(),
		})
		return
	}

	slots, err := h.bookingService.Slots(c.Request.Context(), id, day)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  day.Format("2006-01-02"),
		"slots": slots,
	})
}

// ===== APPOINTMENTS =====

// BookAppointment books a slot for a completed intake session
// @Summary Book appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointment body services.BookAppointmentRequest true "Booking data"
// @Success 201 {object} models.Appointment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /appointments [post]
func (h *BookingHandler) BookAppointment(c *gin.Context) {
	var req services.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	appointment, err := h.bookingService.Book(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// GetAppointment retrieves an appointment by ID
// @Summary Get appointment
// @Tags appointments
// @Produce json
// @Param id path uint true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 404 {object} ErrorResponse
// @Router /appointments/{id} [get]
func (h *BookingHandler) GetAppointment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	appointment, err := h.bookingService.GetAppointment(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// CancelAppointment cancels a booked appointment
// @Summary Cancel appointment
// @Tags appointments
// @Param id path uint true "Appointment ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /appointments/{id} [delete]
func (h *BookingHandler) CancelAppointment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.bookingService.Cancel(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAppointments lists appointments with filters
// @Summary List appointments
// @Tags appointments
// @Produce json
// @Success 200 {object} services.AppointmentListResponse
// @Router /appointments [get]
func (h *BookingHandler) ListAppointments(c *gin.Context) {
	response, err := h.bookingService.ListAppointments(c.Request.Context(), h.parseAppointmentFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *BookingHandler) parseAppointmentFilters(c *gin.Context) repositories.AppointmentFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.AppointmentFilters{
		OfferingID: h.parseUintQueryPtr(c, "offering_id"),
		Limit:      size,
		Offset:     (page - 1) * size,
	}

	if status := c.Query("status"); status != "" {
		s := models.AppointmentStatus(status)
		filters.Status = &s
	}
	if date := c.Query("date"); date != "" {
		if day, err := time.Parse("2006-01-02", date); err == nil {
			end := day.AddDate(0, 0, 1)
			filters.DateFrom = &day
			filters.DateTo = &end
		}
	}

	return filters
}
