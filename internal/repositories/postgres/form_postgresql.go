package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"gorm.io/gorm"
)

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) repositories.FormRepository {
	return &FormPostgreSQL{db: db}
}

// Create stores a new intake form for an offering. Any previously active
// form of the same offering is deactivated so at most one form serves new
// sessions at a time.
func (f *FormPostgreSQL) Create(ctx context.Context, form *models.IntakeForm) error {
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if form.Active {
			err := tx.Model(&models.IntakeForm{}).
				Where("offering_id = ? AND active = ?", form.OfferingID, true).
				Update("active", false).Error
			if err != nil {
				return fmt.Errorf("failed to deactivate previous forms: %w", err)
			}
		}

		form.Version = 1
		if err := tx.Create(form).Error; err != nil {
			return fmt.Errorf("failed to create intake form: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an intake form by ID
func (f *FormPostgreSQL) GetByID(ctx context.Context, id uint) (*models.IntakeForm, error) {
	var form models.IntakeForm
	err := f.db.WithContext(ctx).
		Preload("Offering").
		First(&form, id).Error

	if err != nil {
		return nil, err
	}

	return &form, nil
}

// Update replaces a form's schema and metadata, bumping its version.
func (f *FormPostgreSQL) Update(ctx context.Context, form *models.IntakeForm) error {
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.IntakeForm
		if err := tx.First(&current, form.ID).Error; err != nil {
			return fmt.Errorf("intake form not found: %w", err)
		}

		form.Version = current.Version + 1
		form.UpdatedAt = time.Now()

		if err := tx.Save(form).Error; err != nil {
			return fmt.Errorf("failed to update intake form: %w", err)
		}
		return nil
	})
}

// Delete soft deletes an intake form
func (f *FormPostgreSQL) Delete(ctx context.Context, id uint) error {
	hasSessions, err := f.HasSessions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check sessions: %w", err)
	}
	if hasSessions {
		return fmt.Errorf("cannot delete intake form with existing sessions")
	}

	return f.db.WithContext(ctx).Delete(&models.IntakeForm{}, id).Error
}

// List retrieves intake forms with filters and pagination
func (f *FormPostgreSQL) List(ctx context.Context, filters repositories.FormFilters) ([]*models.IntakeForm, int64, error) {
	query := f.db.WithContext(ctx).Model(&models.IntakeForm{})

	if filters.OfferingID != nil {
		query = query.Where("offering_id = ?", *filters.OfferingID)
	}
	if filters.Active != nil {
		query = query.Where("active = ?", *filters.Active)
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
		"created_at": true, "title": true, "version": true,
	})

	var forms []*models.IntakeForm
	if err := query.Preload("Offering").Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	return forms, total, nil
}

// GetActiveByOffering returns the single active form serving an offering.
func (f *FormPostgreSQL) GetActiveByOffering(ctx context.Context, offeringID uint) (*models.IntakeForm, error) {
	var form models.IntakeForm
	err := f.db.WithContext(ctx).
		Where("offering_id = ? AND active = ?", offeringID, true).
		Order("version DESC").
		First(&form).Error

	if err != nil {
		return nil, err
	}

	return &form, nil
}

// HasSessions reports whether any session references the form.
func (f *FormPostgreSQL) HasSessions(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := f.db.WithContext(ctx).
		Model(&models.IntakeSession{}).
		Where("form_id = ?", id).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
