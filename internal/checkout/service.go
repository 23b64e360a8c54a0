package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/cart"
	"github.com/senjaya/lokapasar-backend/internal/orders"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartLoader interface {
	AggregateForBuyer(ctx context.Context, buyerID uuid.UUID) (*cart.Aggregate, *models.CartRecord, error)
}

type addressLoader interface {
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.UserAddress, error)
}

type inventoryDeductor interface {
	Deduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type creationNotifier interface {
	OrderCreated(ctx context.Context, order *models.Order) error
}

// Service turns a buyer's active cart into persisted per-vendor orders.
type Service interface {
	Submit(ctx context.Context, buyerID uuid.UUID, input SubmitInput) ([]models.Order, error)
	Preview(ctx context.Context, buyerID uuid.UUID, choices map[uuid.UUID]uuid.UUID) ([]OrderIntent, error)
}

// SubmitInput carries the buyer's checkout form.
type SubmitInput struct {
	AddressID       uuid.UUID
	ShippingChoices map[uuid.UUID]uuid.UUID
	NotesByStore    map[uuid.UUID]string
}

type service struct {
	tx         txRunner
	carts      cartLoader
	cartRepo   cart.CartRepository
	ordersRepo orders.Repository
	shipping   shippingResolver
	addresses  addressLoader
	inventory  inventoryDeductor
	notifier   creationNotifier
	logg       *logger.Logger
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	carts cartLoader,
	cartRepo cart.CartRepository,
	ordersRepo orders.Repository,
	shippingCalc shippingResolver,
	addresses addressLoader,
	inventory inventoryDeductor,
	notifier creationNotifier,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if shippingCalc == nil {
		return nil, fmt.Errorf("shipping resolver required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address loader required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory deductor required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("creation notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:         tx,
		carts:      carts,
		cartRepo:   cartRepo,
		ordersRepo: ordersRepo,
		shipping:   shippingCalc,
		addresses:  addresses,
		inventory:  inventory,
		notifier:   notifier,
		logg:       logg,
	}, nil
}

// Preview composes the cart without persisting anything.
func (s *service) Preview(ctx context.Context, buyerID uuid.UUID, choices map[uuid.UUID]uuid.UUID) ([]OrderIntent, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	agg, _, err := s.carts.AggregateForBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return Compose(agg, choices, s.shipping)
}

// Submit composes the cart, then atomically persists one order per vendor,
// deducts stock, and marks the cart converted. The sibling orders share a
// checkout group id.
func (s *service) Submit(ctx context.Context, buyerID uuid.UUID, input SubmitInput) ([]models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	agg, record, err := s.carts.AggregateForBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if record.Status != enums.CartStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart already processed")
	}

	intents, err := Compose(agg, input.ShippingChoices, s.shipping)
	if err != nil {
		return nil, err
	}

	address, err := s.addresses.FindByIDAndUser(ctx, input.AddressID, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if err := address.Address.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	groupID := uuid.New()
	var created []models.Order
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.ordersRepo.WithTx(tx)
		txCarts := s.cartRepo.WithTx(tx)

		for _, intent := range intents {
			order := buildOrder(groupID, buyerID, address.Address, intent, input.NotesByStore[intent.StoreID])
			saved, err := txOrders.Create(ctx, order)
			if err != nil {
				return err
			}

			items := make([]models.OrderItem, 0, len(intent.Lines))
			for _, line := range intent.Lines {
				items = append(items, buildOrderItem(saved.ID, line))
				if err := s.inventory.Deduct(ctx, tx, line.Product.ID, line.Quantity); err != nil {
					return err
				}
			}
			if err := txOrders.CreateItems(ctx, items); err != nil {
				return err
			}
		}

		if err := txCarts.UpdateStatus(ctx, record.ID, buyerID, enums.CartStatusConverted); err != nil {
			return err
		}

		var err error
		created, err = txOrders.FindByCheckoutGroup(ctx, groupID)
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout")
	}

	for i := range created {
		if err := s.notifier.OrderCreated(ctx, &created[i]); err != nil {
			s.logg.Error(ctx, "order created notification failed", err)
		}
	}
	return created, nil
}

func buildOrder(groupID, buyerID uuid.UUID, address types.Address, intent OrderIntent, notes string) *models.Order {
	order := &models.Order{
		CheckoutGroupID:  groupID,
		BuyerID:          buyerID,
		StoreID:          intent.StoreID,
		Status:           enums.OrderStatusPending,
		PaymentMethod:    enums.PaymentMethodCOD,
		ShippingAddress:  address,
		ShippingCode:     intent.Shipping.Code,
		ShippingName:     intent.Shipping.Name,
		ShippingETALabel: intent.Shipping.ETALabel,
		ShippingPrice:    intent.ShippingCost,
		Subtotal:         intent.Subtotal,
		Total:            intent.Total,
	}
	if notes != "" {
		order.Notes = &notes
	}
	return order
}

func buildOrderItem(orderID uuid.UUID, line IntentLine) models.OrderItem {
	item := models.OrderItem{
		OrderID:         orderID,
		ProductID:       line.Product.ID,
		ProductName:     line.Product.Name,
		Quantity:        line.Quantity,
		UnitPrice:       line.UnitPrice,
		LineTotal:       line.LineTotal,
		SelectedOptions: line.Options,
	}
	if len(line.Product.Images) > 0 {
		image := line.Product.Images[0]
		item.ProductImage = &image
	}
	return item
}
