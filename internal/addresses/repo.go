package addresses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/repo"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
)

// Repository persists buyer delivery addresses.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to address operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts an address row.
func (r *Repository) Create(ctx context.Context, address *models.UserAddress) (*models.UserAddress, error) {
	if err := r.DB(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// FindByIDAndUser loads an address scoped to its owner.
func (r *Repository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.UserAddress, error) {
	var address models.UserAddress
	if err := r.DB(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// ListByUser returns the user's saved addresses, default first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	var rows []models.UserAddress
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided address.
func (r *Repository) Update(ctx context.Context, address *models.UserAddress) error {
	return r.DB(ctx).Save(address).Error
}

// Delete removes an address scoped to its owner.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.DB(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.UserAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearDefault unsets the default flag on every address of the user.
func (r *Repository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.UserAddress{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}
