package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
)

// CartRepository abstracts persistence for cart records and their items.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	Update(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error)
	FindActiveByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error)
	FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.CartRecord, error)
	UpdateStatus(ctx context.Context, id, buyerID uuid.UUID, status enums.CartStatus) error
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	DeleteByBuyer(ctx context.Context, buyerID uuid.UUID) error
}
