package postgres

import (
	"context"
	"fmt"

	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"gorm.io/gorm"
)

type OfferingPostgreSQL struct {
	db *gorm.DB
}

func NewOfferingPostgreSQL(db *gorm.DB) repositories.OfferingRepository {
	return &OfferingPostgreSQL{db: db}
}

// Create stores a new service offering after checking slug uniqueness.
func (o *OfferingPostgreSQL) Create(ctx context.Context, offering *models.ServiceOffering) error {
	exists, err := o.ExistsBySlug(ctx, offering.Slug, nil)
	if err != nil {
		return fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if exists {
		return fmt.Errorf("service offering with slug '%s' already exists", offering.Slug)
	}

	if err := o.db.WithContext(ctx).Create(offering).Error; err != nil {
		return fmt.Errorf("failed to create service offering: %w", err)
	}
	return nil
}

// GetByID retrieves an offering by ID
func (o *OfferingPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ServiceOffering, error) {
	var offering models.ServiceOffering
	if err := o.db.WithContext(ctx).First(&offering, id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

// GetBySlug retrieves an offering by its URL slug
func (o *OfferingPostgreSQL) GetBySlug(ctx context.Context, slug string) (*models.ServiceOffering, error) {
	var offering models.ServiceOffering
	err := o.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&offering).Error

	if err != nil {
		return nil, err
	}
	return &offering, nil
}

// Update saves an offering
func (o *OfferingPostgreSQL) Update(ctx context.Context, offering *models.ServiceOffering) error {
	exists, err := o.ExistsBySlug(ctx, offering.Slug, &offering.ID)
	if err != nil {
		return fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if exists {
		return fmt.Errorf("service offering with slug '%s' already exists", offering.Slug)
	}

	if err := o.db.WithContext(ctx).Save(offering).Error; err != nil {
		return fmt.Errorf("failed to update service offering: %w", err)
	}
	return nil
}

// List returns offerings, optionally restricted to active ones
func (o *OfferingPostgreSQL) List(ctx context.Context, activeOnly bool) ([]*models.ServiceOffering, error) {
	query := o.db.WithContext(ctx).Model(&models.ServiceOffering{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var offerings []*models.ServiceOffering
	if err := query.Order("name ASC").Find(&offerings).Error; err != nil {
		return nil, err
	}
	return offerings, nil
}

// ExistsBySlug reports whether another offering already claims the slug.
func (o *OfferingPostgreSQL) ExistsBySlug(ctx context.Context, slug string, excludeID *uint) (bool, error) {
	query := o.db.WithContext(ctx).
		Model(&models.ServiceOffering{}).
		Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
