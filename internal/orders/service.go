package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryAdjuster interface {
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type statusNotifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order) error
	OrderCancelled(ctx context.Context, order *models.Order) error
}

// Actor identifies who is driving a status change.
type Actor struct {
	UserID  uuid.UUID
	StoreID *uuid.UUID
	Role    enums.UserRole
}

// Service exposes order reads and lifecycle mutations. Forward transitions
// belong to the owning vendor; cancellation is open to either party while the
// order is still pending or confirmed.
type Service interface {
	GetBuyerOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	GetStoreOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, filter ListFilter) ([]models.Order, string, error)
	ListStoreOrders(ctx context.Context, storeID uuid.UUID, filter ListFilter) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory inventoryAdjuster
	notifier  statusNotifier
	logg      *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, tx txRunner, inventory inventoryAdjuster, notifier statusNotifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory adjuster required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("status notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		inventory: inventory,
		notifier:  notifier,
		logg:      logg,
	}, nil
}

// GetBuyerOrder returns an order scoped to the buyer who placed it.
func (s *service) GetBuyerOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id are required")
	}
	order, err := s.repo.FindByIDAndBuyer(ctx, orderID, buyerID)
	if err != nil {
		return nil, mapNotFound(err, "order not found")
	}
	return order, nil
}

// GetStoreOrder returns an order scoped to the vendor who owns it.
func (s *service) GetStoreOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	if storeID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and order id are required")
	}
	order, err := s.repo.FindByIDAndStore(ctx, orderID, storeID)
	if err != nil {
		return nil, mapNotFound(err, "order not found")
	}
	return order, nil
}

// ListBuyerOrders pages through the buyer's order history.
func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, filter ListFilter) ([]models.Order, string, error) {
	if buyerID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	rows, next, err := s.repo.ListByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

// ListStoreOrders pages through a vendor's incoming orders.
func (s *service) ListStoreOrders(ctx context.Context, storeID uuid.UUID, filter ListFilter) ([]models.Order, string, error) {
	if storeID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	rows, next, err := s.repo.ListByStore(ctx, storeID, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

// UpdateStatus applies one lifecycle transition on behalf of the actor.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": target})
	}

	if _, err := s.authorizedOrder(ctx, actor, orderID, target); err != nil {
		return nil, err
	}

	// Reload and transition inside the transaction so a concurrent cancel
	// (buyer or expiry sweep) committed after the authorization read cannot
	// be overwritten.
	var updated models.Order
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		next, err := Transition(*current, target, time.Now().UTC())
		if err != nil {
			return err
		}
		if target == enums.OrderStatusCancelled {
			actorID := actor.UserID
			next.CancelledBy = &actorID
		}
		if err := txRepo.UpdateStatus(ctx, &next); err != nil {
			return err
		}
		if target == enums.OrderStatusCancelled {
			for _, item := range next.Items {
				if err := s.inventory.Restock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		updated = next
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist status change")
	}

	s.notify(ctx, &updated, target)
	return &updated, nil
}

// authorizedOrder loads the order through the scope the actor is allowed to
// see and rejects transitions the actor may not drive.
func (s *service) authorizedOrder(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	switch actor.Role {
	case enums.UserRoleSeller:
		if actor.StoreID == nil || *actor.StoreID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller has no active store")
		}
		order, err := s.repo.FindByIDAndStore(ctx, orderID, *actor.StoreID)
		if err != nil {
			return nil, mapNotFound(err, "order not found")
		}
		return order, nil
	case enums.UserRoleBuyer:
		if target != enums.OrderStatusCancelled {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyers may only cancel orders")
		}
		order, err := s.repo.FindByIDAndBuyer(ctx, orderID, actor.UserID)
		if err != nil {
			return nil, mapNotFound(err, "order not found")
		}
		return order, nil
	case enums.UserRoleAdmin:
		order, err := s.repo.FindByID(ctx, orderID)
		if err != nil {
			return nil, mapNotFound(err, "order not found")
		}
		return order, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
}

// notify is best effort: a failed notification never rolls back a committed
// status change.
func (s *service) notify(ctx context.Context, order *models.Order, target enums.OrderStatus) {
	var err error
	if target == enums.OrderStatusCancelled {
		err = s.notifier.OrderCancelled(ctx, order)
	} else {
		err = s.notifier.OrderStatusChanged(ctx, order)
	}
	if err != nil {
		s.logg.Error(ctx, "order status notification failed", err)
	}
}

func mapNotFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}
