package banners

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/repo"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
)

// Repository persists landing page banners.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to banner operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListActive returns banners visible at the given instant, in display order.
func (r *Repository) ListActive(ctx context.Context, now time.Time) ([]models.Banner, error) {
	var rows []models.Banner
	if err := r.DB(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("sort_order ASC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every banner regardless of visibility.
func (r *Repository) ListAll(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	if err := r.DB(ctx).
		Order("sort_order ASC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one banner.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := r.DB(ctx).Where("id = ?", id).First(&banner).Error; err != nil {
		return nil, err
	}
	return &banner, nil
}

// Create inserts a banner row.
func (r *Repository) Create(ctx context.Context, banner *models.Banner) (*models.Banner, error) {
	if err := r.DB(ctx).Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

// Update saves the provided banner.
func (r *Repository) Update(ctx context.Context, banner *models.Banner) error {
	return r.DB(ctx).Save(banner).Error
}

// Delete removes a banner.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.Banner{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
