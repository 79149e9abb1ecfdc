package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/careforms/intake-service/internal/form"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/careforms/intake-service/internal/scheduling"
)

// ===== FORM SERVICE =====

type CreateFormRequest struct {
	OfferingID uint            `json:"offering_id" validate:"required"`
	Title      string          `json:"title" validate:"required,min=1,max=200"`
	Schema     json.RawMessage `json:"schema" validate:"required"`
}

type UpdateFormRequest struct {
	Title  *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Schema json.RawMessage `json:"schema"`
	Active *bool           `json:"active"`
}

type FormListResponse struct {
	Forms  []*models.IntakeForm `json:"forms"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

type FormService interface {
	Create(ctx context.Context, req *CreateFormRequest) (*models.IntakeForm, error)
	GetByID(ctx context.Context, id uint) (*models.IntakeForm, error)
	Update(ctx context.Context, id uint, req *UpdateFormRequest) (*models.IntakeForm, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.FormFilters) (*FormListResponse, error)

	// Questions returns the normalized question list for a form version,
	// cached per version.
	Questions(ctx context.Context, id uint) ([]form.Question, error)
}

// ===== SESSION SERVICE =====

type StartSessionRequest struct {
	FormID      uint   `json:"form_id" validate:"required"`
	CustomerRef string `json:"customer_ref" validate:"required,max=255"`
}

type SubmitAnswerRequest struct {
	QuestionID string      `json:"question_id" validate:"required"`
	Value      interface{} `json:"value"`
}

// SessionStateResponse is the full client-facing view of a session: the
// stored record plus the progress read model derived from the current
// answers.
type SessionStateResponse struct {
	Session            *models.IntakeSession `json:"session"`
	Questions          []form.Question       `json:"questions"`
	Sections           []form.Section        `json:"sections"`
	SectionIdx         int                   `json:"section_idx"`
	RequiredUnanswered []string              `json:"required_unanswered"`
	PercentComplete    int                   `json:"percent_complete"`
	CanSubmit          bool                  `json:"can_submit"`
}

type SessionListResponse struct {
	Sessions []*models.IntakeSession `json:"sessions"`
	Total    int64                   `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
}

type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionStateResponse, error)
	GetState(ctx context.Context, id uint) (*SessionStateResponse, error)
	SubmitAnswer(ctx context.Context, id uint, req *SubmitAnswerRequest) (*SessionStateResponse, error)
	Next(ctx context.Context, id uint) (*SessionStateResponse, error)
	Prev(ctx context.Context, id uint) (*SessionStateResponse, error)
	Submit(ctx context.Context, id uint) (*SessionStateResponse, error)
	Abandon(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error)
}

// ===== BOOKING SERVICE =====

type CreateOfferingRequest struct {
	Slug        string                 `json:"slug" validate:"required,service_slug"`
	Name        string                 `json:"name" validate:"required,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=1000"`
	Schedule    *models.ScheduleConfig `json:"schedule"`
}

type UpdateOfferingRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description" validate:"omitempty,max=1000"`
	Schedule    *models.ScheduleConfig `json:"schedule"`
	Active      *bool                  `json:"active"`
}

type BookAppointmentRequest struct {
	SessionID  uint      `json:"session_id" validate:"required"`
	OfferingID uint      `json:"offering_id" validate:"required"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
}

type AppointmentListResponse struct {
	Appointments []*models.Appointment `json:"appointments"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

type BookingService interface {
	CreateOffering(ctx context.Context, req *CreateOfferingRequest) (*models.ServiceOffering, error)
	GetOffering(ctx context.Context, id uint) (*models.ServiceOffering, error)
	GetOfferingBySlug(ctx context.Context, slug string) (*models.ServiceOffering, error)
	UpdateOffering(ctx context.Context, id uint, req *UpdateOfferingRequest) (*models.ServiceOffering, error)
	ListOfferings(ctx context.Context, activeOnly bool) ([]*models.ServiceOffering, error)

	// Slots builds the bookable slots for one offering on one day, with
	// already-booked starts marked unavailable.
	Slots(ctx context.Context, offeringID uint, day time.Time) ([]scheduling.Slot, error)

	Book(ctx context.Context, req *BookAppointmentRequest) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	Cancel(ctx context.Context, id uint) error
	ListAppointments(ctx context.Context, filters repositories.AppointmentFilters) (*AppointmentListResponse, error)
}

// ===== EXPORT SERVICE =====

type ExportService interface {
	// ExportSessions renders the completed sessions of a form as an xlsx
	// workbook, one row per session and one column per answerable question.
	ExportSessions(ctx context.Context, formID uint) ([]byte, string, error)
}
