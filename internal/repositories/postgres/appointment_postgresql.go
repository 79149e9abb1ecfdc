package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"gorm.io/gorm"
)

type AppointmentPostgreSQL struct {
	db *gorm.DB
}

func NewAppointmentPostgreSQL(db *gorm.DB) repositories.AppointmentRepository {
	return &AppointmentPostgreSQL{db: db}
}

// Create books an appointment, guarding the slot against double booking
// inside one transaction.
func (a *AppointmentPostgreSQL) Create(ctx context.Context, appointment *models.Appointment) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Appointment{}).
			Where("offering_id = ? AND starts_at = ? AND status = ?",
				appointment.OfferingID, appointment.StartsAt, models.AppointmentBooked).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check slot availability: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("slot at %s is already booked", appointment.StartsAt.Format(time.RFC3339))
		}

		appointment.Status = models.AppointmentBooked
		if err := tx.Create(appointment).Error; err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an appointment with its session and offering
func (a *AppointmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := a.db.WithContext(ctx).
		Preload("Session").
		Preload("Offering").
		First(&appointment, id).Error

	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Update saves an appointment
func (a *AppointmentPostgreSQL) Update(ctx context.Context, appointment *models.Appointment) error {
	if err := a.db.WithContext(ctx).Save(appointment).Error; err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

// List retrieves appointments with filters and pagination
func (a *AppointmentPostgreSQL) List(ctx context.Context, filters repositories.AppointmentFilters) ([]*models.Appointment, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Appointment{})

	if filters.OfferingID != nil {
		query = query.Where("offering_id = ?", *filters.OfferingID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("starts_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("starts_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, "starts_at", "asc", map[string]bool{
		"starts_at": true,
	})

	var appointments []*models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

// GetBookedStarts lists the start times already booked for an offering
// within a day window, feeding slot availability.
func (a *AppointmentPostgreSQL) GetBookedStarts(ctx context.Context, offeringID uint, dayStart, dayEnd time.Time) ([]time.Time, error) {
	var starts []time.Time
	err := a.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("offering_id = ? AND status = ? AND starts_at >= ? AND starts_at < ?",
			offeringID, models.AppointmentBooked, dayStart, dayEnd).
		Pluck("starts_at", &starts).Error

	if err != nil {
		return nil, err
	}
	return starts, nil
}

// ExistsAtSlot reports whether a booked appointment occupies the start time.
func (a *AppointmentPostgreSQL) ExistsAtSlot(ctx context.Context, offeringID uint, startsAt time.Time) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("offering_id = ? AND starts_at = ? AND status = ?", offeringID, startsAt, models.AppointmentBooked).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateStatus transitions an appointment's status.
func (a *AppointmentPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.AppointmentStatus) error {
	result := a.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update appointment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
