package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/repo"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
)

// RatingSummary aggregates the reviews of one product.
type RatingSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// Repository persists product reviews.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to review operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.DB(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// FindByUserAndProduct loads the buyer's review of a product, if any.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByProduct returns a product's reviews newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.Review, error) {
	var rows []models.Review
	if err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Summary computes the review count and average rating for a product.
func (r *Repository) Summary(ctx context.Context, productID uuid.UUID) (RatingSummary, error) {
	var summary RatingSummary
	err := r.DB(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("product_id = ?", productID).
		Scan(&summary).Error
	return summary, err
}
