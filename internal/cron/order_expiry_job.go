package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/orders"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
)

const expiryBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryRestocker interface {
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type cancellationNotifier interface {
	OrderCancelled(ctx context.Context, order *models.Order) error
}

// OrderExpiryJobParams configure the pending order expiry job.
type OrderExpiryJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Orders     orders.Repository
	Inventory  inventoryRestocker
	Notifier   cancellationNotifier
	PendingTTL time.Duration
}

// NewOrderExpiryJob builds the job that cancels pending orders the vendor
// never confirmed within the configured window.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory restocker required")
	}
	if params.PendingTTL <= 0 {
		return nil, fmt.Errorf("pending ttl must be positive")
	}
	return &orderExpiryJob{
		logg:       params.Logger,
		db:         params.DB,
		orders:     params.Orders,
		inventory:  params.Inventory,
		notifier:   params.Notifier,
		pendingTTL: params.PendingTTL,
		now:        time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg       *logger.Logger
	db         txRunner
	orders     orders.Repository
	inventory  inventoryRestocker
	notifier   cancellationNotifier
	pendingTTL time.Duration
	now        func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.pendingTTL)
	stale, err := j.orders.ListPendingOlderThan(ctx, cutoff, expiryBatchSize)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs []error
	cancelled := 0
	for i := range stale {
		order := stale[i]
		expired, err := j.expireOrder(ctx, order)
		if err != nil {
			errs = append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		if expired == nil {
			continue
		}
		cancelled++
		if j.notifier != nil {
			if err := j.notifier.OrderCancelled(ctx, expired); err != nil {
				j.logg.Error(j.logg.WithField(ctx, "order_id", order.ID.String()),
					"cancellation notification failed", err)
			}
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"cancelled": cancelled, "stale": len(stale)})
	j.logg.Info(logCtx, "order expiry loop complete")
	return multierr.Combine(errs...)
}

// expireOrder cancels one stale pending order. It returns the cancelled copy
// for the notifier, or nil when the order was no longer pending.
func (j *orderExpiryJob) expireOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	var expired *models.Order
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		// Vendor may have moved the order since the listing query.
		if current.Status != enums.OrderStatusPending {
			return nil
		}

		updated, err := orders.Transition(*current, enums.OrderStatusCancelled, j.now().UTC())
		if err != nil {
			return err
		}
		for _, item := range current.Items {
			if err := j.inventory.Restock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := repo.UpdateStatus(ctx, &updated); err != nil {
			return err
		}
		expired = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
