package repositories

import (
	"context"
	"time"

	"github.com/careforms/intake-service/internal/models"
)

// OfferingRepository interface for pharmacy service offerings
type OfferingRepository interface {
	Create(ctx context.Context, offering *models.ServiceOffering) error
	GetByID(ctx context.Context, id uint) (*models.ServiceOffering, error)
	GetBySlug(ctx context.Context, slug string) (*models.ServiceOffering, error)
	Update(ctx context.Context, offering *models.ServiceOffering) error
	List(ctx context.Context, activeOnly bool) ([]*models.ServiceOffering, error)

	// Validation helpers
	ExistsBySlug(ctx context.Context, slug string, excludeID *uint) (bool, error)
}

// AppointmentRepository interface for appointment bookings
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error

	// Query operations
	List(ctx context.Context, filters AppointmentFilters) ([]*models.Appointment, int64, error)
	GetBookedStarts(ctx context.Context, offeringID uint, dayStart, dayEnd time.Time) ([]time.Time, error)

	// Conflict checks
	ExistsAtSlot(ctx context.Context, offeringID uint, startsAt time.Time) (bool, error)

	// Status management
	UpdateStatus(ctx context.Context, id uint, status models.AppointmentStatus) error
}
