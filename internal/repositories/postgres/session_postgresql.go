package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

// Create stores a new intake session
func (s *SessionPostgreSQL) Create(ctx context.Context, session *models.IntakeSession) error {
	session.Status = models.SessionInProgress
	session.StartedAt = time.Now()

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create intake session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (s *SessionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.IntakeSession, error) {
	var session models.IntakeSession
	if err := s.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByIDWithForm retrieves a session with its form preloaded
func (s *SessionPostgreSQL) GetByIDWithForm(ctx context.Context, id uint) (*models.IntakeSession, error) {
	var session models.IntakeSession
	err := s.db.WithContext(ctx).
		Preload("Form").
		Preload("Form.Offering").
		First(&session, id).Error

	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Update persists a session's answers, section index and status.
func (s *SessionPostgreSQL) Update(ctx context.Context, session *models.IntakeSession) error {
	session.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update intake session: %w", err)
	}
	return nil
}

// List retrieves sessions with filters and pagination
func (s *SessionPostgreSQL) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.IntakeSession, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.IntakeSession{})

	if filters.FormID != nil {
		query = query.Where("form_id = ?", *filters.FormID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerRef != nil {
		query = query.Where("customer_ref = ?", *filters.CustomerRef)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "started_at": true, "status": true,
	})

	var sessions []*models.IntakeSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// GetCompletedByForm returns all completed sessions of a form, oldest first,
// for export.
func (s *SessionPostgreSQL) GetCompletedByForm(ctx context.Context, formID uint) ([]*models.IntakeSession, error) {
	var sessions []*models.IntakeSession
	err := s.db.WithContext(ctx).
		Where("form_id = ? AND status = ?", formID, models.SessionCompleted).
		Order("completed_at ASC").
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateStatus transitions a session's status, stamping CompletedAt for the
// completed state.
func (s *SessionPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.SessionStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == models.SessionCompleted {
		updates["completed_at"] = time.Now()
	}

	result := s.db.WithContext(ctx).
		Model(&models.IntakeSession{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update session status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
