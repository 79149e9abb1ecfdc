package handlers

import (
	"github.com/careforms/intake-service/internal/services"
	"github.com/careforms/intake-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	formHandler    *FormHandler
	sessionHandler *SessionHandler
	bookingHandler *BookingHandler
}

func NewHandlerManager(
	formService services.FormService,
	sessionService services.SessionService,
	bookingService services.BookingService,
	exportService services.ExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		formHandler:    NewFormHandler(formService, exportService, logger),
		sessionHandler: NewSessionHandler(sessionService, logger),
		bookingHandler: NewBookingHandler(bookingService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Intake form routes
		forms := v1.Group("/forms")
		{
			forms.POST("", hm.formHandler.CreateForm)
			forms.GET("", hm.formHandler.ListForms)
			forms.GET("/:id", hm.formHandler.GetForm)
			forms.PUT("/:id", hm.formHandler.UpdateForm)
			forms.DELETE("/:id", hm.formHandler.DeleteForm)
			forms.GET("/:id/questions", hm.formHandler.GetFormQuestions)
			forms.GET("/:id/export/sessions.xlsx", hm.formHandler.ExportSessions)
		}

		// Intake session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id/state", hm.sessionHandler.GetSessionState)
			sessions.POST("/:id/answers", hm.sessionHandler.SubmitAnswer)
			sessions.POST("/:id/next", hm.sessionHandler.NextSection)
			sessions.POST("/:id/prev", hm.sessionHandler.PrevSection)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)
			sessions.POST("/:id/abandon", hm.sessionHandler.AbandonSession)
		}

		// Service offering and slot routes
		offerings := v1.Group("/offerings")
		{
			offerings.POST("", hm.bookingHandler.CreateOffering)
			offerings.GET("", hm.bookingHandler.ListOfferings)
			offerings.GET("/:id", hm.bookingHandler.GetOffering)
			offerings.PUT("/:id", hm.bookingHandler.UpdateOffering)
			offerings.GET("/:id/slots", hm.bookingHandler.GetSlots)
			offerings.GET("/slug/:slug", hm.bookingHandler.GetOfferingBySlug)
		}

		// Appointment routes
		appointments := v1.Group("/appointments")
		{
			appointments.POST("", hm.bookingHandler.BookAppointment)
			appointments.GET("", hm.bookingHandler.ListAppointments)
			appointments.GET("/:id", hm.bookingHandler.GetAppointment)
			appointments.DELETE("/:id", hm.bookingHandler.CancelAppointment)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "intake-service",
		})
	})
}
