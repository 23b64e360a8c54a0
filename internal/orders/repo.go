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

// GormRepository persists orders through gorm.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormRepository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &GormRepository{db: tx}
}

// Create inserts a new order row.
func (r *GormRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = enums.PaymentMethodCOD
	}
	if err := r.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateItems inserts the frozen order lines.
func (r *GormRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindByID loads an order with its items.
func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAndBuyer loads an order restricted to the buyer who placed it.
func (r *GormRepository) FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND buyer_id = ?", id, buyerID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAndStore loads an order restricted to the vendor who owns it.
func (r *GormRepository) FindByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND store_id = ?", id, storeID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByCheckoutGroup returns the sibling orders created by one checkout.
func (r *GormRepository) FindByCheckoutGroup(ctx context.Context, groupID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("checkout_group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByBuyer returns the buyer's orders newest first with a next-page cursor.
func (r *GormRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter) ([]models.Order, string, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, filter)
}

// ListByStore returns a vendor's incoming orders newest first.
func (r *GormRepository) ListByStore(ctx context.Context, storeID uuid.UUID, filter ListFilter) ([]models.Order, string, error) {
	return r.list(ctx, "store_id = ?", storeID, filter)
}

func (r *GormRepository) list(ctx context.Context, ownerClause string, ownerID uuid.UUID, filter ListFilter) ([]models.Order, string, error) {
	limit := pagination.NormalizeLimit(filter.Page.Limit)

	q := r.db.WithContext(ctx).
		Preload("Items").
		Where(ownerClause, ownerID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	cursor, err := pagination.ParseCursor(filter.Page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := q.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	var next string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// UpdateStatus persists a status change produced by the transition table.
func (r *GormRepository) UpdateStatus(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":       order.Status,
			"cancelled_by": order.CancelledBy,
			"updated_at":   order.UpdatedAt,
		}).Error
}

// ListPendingOlderThan returns stale pending orders for the expiry sweep.
func (r *GormRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
