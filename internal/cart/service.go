package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/pricing"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart persistence operations. Mutations rebuild the buyer's
// aggregate from the stored record, apply the change in memory, then write
// the whole snapshot back atomically.
type Service interface {
	AddItem(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateItemQuantity(ctx context.Context, buyerID uuid.UUID, input UpdateItemInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, buyerID uuid.UUID, input RemoveItemInput) (*models.CartRecord, error)
	GetActiveCart(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error)
	ClearCart(ctx context.Context, buyerID uuid.UUID) error
	AggregateForBuyer(ctx context.Context, buyerID uuid.UUID) (*Aggregate, *models.CartRecord, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	ProductID       uuid.UUID
	Quantity        int
	SelectedOptions types.SelectedOptions
}

// UpdateItemInput targets an existing line by its identity pair.
type UpdateItemInput struct {
	ProductID       uuid.UUID
	Quantity        int
	SelectedOptions types.SelectedOptions
}

// RemoveItemInput targets an existing line by its identity pair.
type RemoveItemInput struct {
	ProductID       uuid.UUID
	SelectedOptions types.SelectedOptions
}

// AddItem validates the product and appends or merges the line.
func (s *service) AddItem(ctx context.Context, buyerID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	product, err := s.loadSellableProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	agg, record, err := s.AggregateForBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if err := agg.AddLine(product, input.Quantity, input.SelectedOptions); err != nil {
		return nil, err
	}

	return s.persist(ctx, buyerID, record, agg)
}

// UpdateItemQuantity re-clamps the line to stock; zero or below removes it.
func (s *service) UpdateItemQuantity(ctx context.Context, buyerID uuid.UUID, input UpdateItemInput) (*models.CartRecord, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	agg, record, err := s.AggregateForBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if err := agg.UpdateQuantity(product.StoreID, product.ID, input.Quantity, input.SelectedOptions); err != nil {
		return nil, err
	}

	return s.persist(ctx, buyerID, record, agg)
}

// RemoveItem drops the matching line.
func (s *service) RemoveItem(ctx context.Context, buyerID uuid.UUID, input RemoveItemInput) (*models.CartRecord, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	agg, record, err := s.AggregateForBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if err := agg.RemoveLine(product.StoreID, product.ID, input.SelectedOptions); err != nil {
		return nil, err
	}

	return s.persist(ctx, buyerID, record, agg)
}

// GetActiveCart returns the buyer's active cart, or not-found.
func (s *service) GetActiveCart(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	record, err := s.repo.FindActiveByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

// ClearCart removes all cart records for the buyer.
func (s *service) ClearCart(ctx context.Context, buyerID uuid.UUID) error {
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if err := s.repo.DeleteByBuyer(ctx, buyerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// AggregateForBuyer rebuilds the in-memory aggregate from the stored record
// against fresh product data. Lines whose product has vanished, been
// deactivated, or sold out are dropped; surviving quantities re-clamp to
// current stock. Returns an empty aggregate and nil record when the buyer
// has no active cart yet.
func (s *service) AggregateForBuyer(ctx context.Context, buyerID uuid.UUID) (*Aggregate, *models.CartRecord, error) {
	agg := NewAggregate()

	record, err := s.repo.FindActiveByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return agg, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	for _, item := range record.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				continue
			}
			return nil, nil, err
		}
		if !product.IsActive || product.Stock < 1 {
			continue
		}
		if err := agg.AddLine(product, item.Quantity, item.SelectedOptions); err != nil {
			// The product definition changed under the stored line.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
				continue
			}
			return nil, nil, err
		}
	}

	return agg, record, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.products.GetByID(ctx, id)
}

func (s *service) loadSellableProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	return product, nil
}

func (s *service) persist(ctx context.Context, buyerID uuid.UUID, record *models.CartRecord, agg *Aggregate) (*models.CartRecord, error) {
	subtotal, err := agg.TotalValue()
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, agg.TotalItemCount())
	for _, bucket := range agg.Buckets() {
		for _, line := range bucket.Lines {
			unit, err := pricing.UnitPrice(line.Product)
			if err != nil {
				return nil, err
			}
			items = append(items, models.CartItem{
				ProductID:       line.Product.ID,
				Position:        len(items),
				StoreID:         bucket.StoreID,
				Quantity:        line.Quantity,
				UnitPrice:       unit,
				LineSubtotal:    unit * line.Quantity,
				SelectedOptions: line.Options,
			})
		}
	}

	var saved *models.CartRecord
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if record == nil {
			created, err := txRepo.Create(ctx, &models.CartRecord{
				BuyerID:   buyerID,
				Subtotal:  subtotal,
				ItemCount: agg.TotalItemCount(),
			})
			if err != nil {
				return err
			}
			record = created
		} else {
			record.Subtotal = subtotal
			record.ItemCount = agg.TotalItemCount()
			if _, err := txRepo.Update(ctx, record); err != nil {
				return err
			}
		}

		if err := txRepo.ReplaceItems(ctx, record.ID, items); err != nil {
			return err
		}

		var err error
		saved, err = txRepo.FindByIDAndBuyer(ctx, record.ID, buyerID)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}

	return saved, nil
}
