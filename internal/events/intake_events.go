package events

import (
	"time"
)

// EventType represents the domain events the intake service emits
type EventType string

const (
	// Session events
	EventSessionStarted         EventType = "session.started"
	EventSessionAnswerSubmitted EventType = "session.answer_submitted"
	EventSessionCompleted       EventType = "session.completed"
	EventSessionAbandoned       EventType = "session.abandoned"

	// Appointment events
	EventAppointmentBooked    EventType = "appointment.booked"
	EventAppointmentCancelled EventType = "appointment.cancelled"

	// Form lifecycle events
	EventFormPublished EventType = "form.published"
)

// IntakeEvent is the envelope shared by every event on the intake topic
type IntakeEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID   uint      `json:"session_id"`
	FormID      uint      `json:"form_id"`
	FormVersion int       `json:"form_version"`
	CustomerRef string    `json:"customer_ref"`
	StartedAt   time.Time `json:"started_at"`
}

type SessionAnswerSubmittedEvent struct {
	SessionID       uint   `json:"session_id"`
	FormID          uint   `json:"form_id"`
	QuestionID      string `json:"question_id"`
	SectionIdx      int    `json:"section_idx"`
	PercentComplete int    `json:"percent_complete"`
}

type SessionCompletedEvent struct {
	SessionID   uint      `json:"session_id"`
	FormID      uint      `json:"form_id"`
	CustomerRef string    `json:"customer_ref"`
	CompletedAt time.Time `json:"completed_at"`
	Answered    int       `json:"answered"`
}

type SessionAbandonedEvent struct {
	SessionID       uint `json:"session_id"`
	FormID          uint `json:"form_id"`
	PercentComplete int  `json:"percent_complete"`
}

// Appointment event payloads

type AppointmentBookedEvent struct {
	AppointmentID uint      `json:"appointment_id"`
	SessionID     uint      `json:"session_id"`
	OfferingID    uint      `json:"offering_id"`
	OfferingSlug  string    `json:"offering_slug"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

type AppointmentCancelledEvent struct {
	AppointmentID uint      `json:"appointment_id"`
	SessionID     uint      `json:"session_id"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

// Form event payloads

type FormPublishedEvent struct {
	FormID     uint   `json:"form_id"`
	OfferingID uint   `json:"offering_id"`
	Version    int    `json:"version"`
	Title      string `json:"title"`
}
