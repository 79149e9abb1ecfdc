package repositories

import (
	"context"

	"github.com/careforms/intake-service/internal/models"
)

// FormRepository interface for intake form operations
type FormRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, form *models.IntakeForm) error
	GetByID(ctx context.Context, id uint) (*models.IntakeForm, error)
	Update(ctx context.Context, form *models.IntakeForm) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters FormFilters) ([]*models.IntakeForm, int64, error)
	GetActiveByOffering(ctx context.Context, offeringID uint) (*models.IntakeForm, error)

	// Validation helpers
	HasSessions(ctx context.Context, id uint) (bool, error)
}

// SessionRepository interface for intake session operations
type SessionRepository interface {
	Create(ctx context.Context, session *models.IntakeSession) error
	GetByID(ctx context.Context, id uint) (*models.IntakeSession, error)
	GetByIDWithForm(ctx context.Context, id uint) (*models.IntakeSession, error)
	Update(ctx context.Context, session *models.IntakeSession) error

	// Query operations
	List(ctx context.Context, filters SessionFilters) ([]*models.IntakeSession, int64, error)
	GetCompletedByForm(ctx context.Context, formID uint) ([]*models.IntakeSession, error)

	// Status management
	UpdateStatus(ctx context.Context, id uint, status models.SessionStatus) error
}
