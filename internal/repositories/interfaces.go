package repositories

import (
	"errors"
	"time"

	"github.com/careforms/intake-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	OfferingID *uint      `json:"offering_id"`
	Active     *bool      `json:"active"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	SortBy     string     `json:"sort_by"`    // "created_at", "title", "version"
	SortOrder  string     `json:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	FormID      *uint                 `json:"form_id"`
	Status      *models.SessionStatus `json:"status"`
	CustomerRef *string               `json:"customer_ref"`
	DateFrom    *time.Time            `json:"date_from"`
	DateTo      *time.Time            `json:"date_to"`
	Limit       int                   `json:"limit"`
	Offset      int                   `json:"offset"`
	SortBy      string                `json:"sort_by"`
	SortOrder   string                `json:"sort_order"`
}

type AppointmentFilters struct {
	OfferingID *uint                     `json:"offering_id"`
	Status     *models.AppointmentStatus `json:"status"`
	DateFrom   *time.Time                `json:"date_from"`
	DateTo     *time.Time                `json:"date_to"`
	Limit      int                       `json:"limit"`
	Offset     int                       `json:"offset"`
}

// ===== AGGREGATE =====

// Repository bundles the per-entity repositories behind one dependency the
// service layer can take.
type Repository interface {
	Form() FormRepository
	Session() SessionRepository
	Offering() OfferingRepository
	Appointment() AppointmentRepository
}

// IsNotFoundError reports whether err is the storage layer's record-missing
// condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
