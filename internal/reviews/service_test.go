package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

type stubReviewRepo struct {
	rows []*models.Review
}

func (r *stubReviewRepo) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	review.ID = uuid.New()
	copied := *review
	r.rows = append(r.rows, &copied)
	return review, nil
}

func (r *stubReviewRepo) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Review, error) {
	for _, review := range r.rows {
		if review.UserID == userID && review.ProductID == productID {
			copied := *review
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubReviewRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.Review, error) {
	var out []models.Review
	for _, review := range r.rows {
		if review.ProductID == productID {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (r *stubReviewRepo) Summary(ctx context.Context, productID uuid.UUID) (RatingSummary, error) {
	var summary RatingSummary
	var total int
	for _, review := range r.rows {
		if review.ProductID == productID {
			summary.Count++
			total += review.Rating
		}
	}
	if summary.Count > 0 {
		summary.Average = float64(total) / float64(summary.Count)
	}
	return summary, nil
}

type stubOrderLoader struct {
	orders map[uuid.UUID]*models.Order
}

func (l *stubOrderLoader) FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.Order, error) {
	order, ok := l.orders[id]
	if !ok || order.BuyerID != buyerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func reviewFixture(t *testing.T, status enums.OrderStatus) (Service, *stubReviewRepo, uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()

	buyerID := uuid.New()
	productID := uuid.New()
	order := &models.Order{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Status:  status,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: productID, Quantity: 1},
		},
	}
	repo := &stubReviewRepo{}
	svc, err := NewService(repo, &stubOrderLoader{orders: map[uuid.UUID]*models.Order{order.ID: order}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, buyerID, productID, order.ID
}

func TestCreateReview(t *testing.T) {
	t.Parallel()

	svc, repo, buyerID, productID, orderID := reviewFixture(t, enums.OrderStatusDelivered)

	review, err := svc.Create(context.Background(), buyerID, CreateReviewInput{
		OrderID:   orderID,
		ProductID: productID,
		Rating:    5,
		Comment:   "Barang sesuai deskripsi, pengiriman cepat.",
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if review.Comment == nil || *review.Comment == "" {
		t.Fatal("expected comment to be stored")
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one stored review, got %d", len(repo.rows))
	}

	// Second review of the same product is rejected.
	_, err = svc.Create(context.Background(), buyerID, CreateReviewInput{
		OrderID:   orderID,
		ProductID: productID,
		Rating:    4,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate review, got %v", err)
	}
}

func TestCreateReviewRequiresDeliveredOrder(t *testing.T) {
	t.Parallel()

	svc, _, buyerID, productID, orderID := reviewFixture(t, enums.OrderStatusShipping)

	_, err := svc.Create(context.Background(), buyerID, CreateReviewInput{
		OrderID:   orderID,
		ProductID: productID,
		Rating:    5,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for undelivered order, got %v", err)
	}
}

func TestCreateReviewRejectsForeignOrder(t *testing.T) {
	t.Parallel()

	svc, _, _, productID, orderID := reviewFixture(t, enums.OrderStatusCompleted)

	_, err := svc.Create(context.Background(), uuid.New(), CreateReviewInput{
		OrderID:   orderID,
		ProductID: productID,
		Rating:    5,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}
}

func TestCreateReviewRejectsProductOutsideOrder(t *testing.T) {
	t.Parallel()

	svc, _, buyerID, _, orderID := reviewFixture(t, enums.OrderStatusCompleted)

	_, err := svc.Create(context.Background(), buyerID, CreateReviewInput{
		OrderID:   orderID,
		ProductID: uuid.New(),
		Rating:    5,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateReviewRatingBounds(t *testing.T) {
	t.Parallel()

	svc, _, buyerID, productID, orderID := reviewFixture(t, enums.OrderStatusCompleted)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), buyerID, CreateReviewInput{
			OrderID:   orderID,
			ProductID: productID,
			Rating:    rating,
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for rating %d, got %v", rating, err)
		}
	}
}

func TestListByProductSummary(t *testing.T) {
	t.Parallel()

	svc, repo, _, productID, _ := reviewFixture(t, enums.OrderStatusCompleted)
	repo.rows = append(repo.rows,
		&models.Review{ID: uuid.New(), ProductID: productID, UserID: uuid.New(), Rating: 5},
		&models.Review{ID: uuid.New(), ProductID: productID, UserID: uuid.New(), Rating: 3},
	)

	rows, summary, err := svc.ListByProduct(context.Background(), productID, 0)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(rows))
	}
	if summary.Count != 2 || summary.Average != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
