package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.Review, error)
	Summary(ctx context.Context, productID uuid.UUID) (RatingSummary, error)
}

type orderLoader interface {
	FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.Order, error)
}

// Service lets buyers rate products they received.
type Service interface {
	Create(ctx context.Context, buyerID uuid.UUID, input CreateReviewInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.Review, RatingSummary, error)
}

// CreateReviewInput carries a new review.
type CreateReviewInput struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Rating    int
	Comment   string
}

type service struct {
	repo   reviewRepository
	orders orderLoader
}

// NewService builds a review service.
func NewService(repo reviewRepository, orders orderLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	return &service{repo: repo, orders: orders}, nil
}

// Create records a review. The buyer must have received the product through
// the referenced order, and may review each product once.
func (s *service) Create(ctx context.Context, buyerID uuid.UUID, input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	order, err := s.orders.FindByIDAndBuyer(ctx, input.OrderID, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusDelivered && order.Status != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has not been delivered yet")
	}

	var found bool
	for _, item := range order.Items {
		if item.ProductID == input.ProductID {
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not part of this order")
	}

	if _, err := s.repo.FindByUserAndProduct(ctx, buyerID, input.ProductID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}

	review := &models.Review{
		ProductID: input.ProductID,
		UserID:    buyerID,
		OrderID:   input.OrderID,
		Rating:    input.Rating,
	}
	if comment := strings.TrimSpace(input.Comment); comment != "" {
		review.Comment = &comment
	}

	created, err := s.repo.Create(ctx, review)
	if err != nil {
		if db.IsUniqueViolation(err, "reviews_user_id_product_id_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return created, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.Review, RatingSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.repo.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, RatingSummary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	summary, err := s.repo.Summary(ctx, productID)
	if err != nil {
		return nil, RatingSummary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize reviews")
	}
	return rows, summary, nil
}
