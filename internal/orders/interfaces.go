package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	"github.com/senjaya/lokapasar-backend/pkg/pagination"
)

// ListFilter narrows order listings.
type ListFilter struct {
	Status *enums.OrderStatus
	Page   pagination.Params
}

// Repository abstracts persistence for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.Order, error)
	FindByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error)
	FindByCheckoutGroup(ctx context.Context, groupID uuid.UUID) ([]models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter) ([]models.Order, string, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, filter ListFilter) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, order *models.Order) error
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}
