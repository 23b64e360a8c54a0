package cron

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/orders"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
)

type stubOrdersRepo struct {
	byID map[uuid.UUID]*models.Order
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{byID: map[uuid.UUID]*models.Order{}}
}

func (r *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return r }

func (r *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	copied := *order
	r.byID[order.ID] = &copied
	return order, nil
}

func (r *stubOrdersRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (r *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *stubOrdersRepo) FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrdersRepo) FindByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrdersRepo) FindByCheckoutGroup(ctx context.Context, groupID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (r *stubOrdersRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter orders.ListFilter) ([]models.Order, string, error) {
	return nil, "", nil
}

func (r *stubOrdersRepo) ListByStore(ctx context.Context, storeID uuid.UUID, filter orders.ListFilter) ([]models.Order, string, error) {
	return nil, "", nil
}

func (r *stubOrdersRepo) UpdateStatus(ctx context.Context, order *models.Order) error {
	stored, ok := r.byID[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = order.Status
	stored.CancelledBy = order.CancelledBy
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (r *stubOrdersRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.byID {
		if order.Status == enums.OrderStatusPending && order.CreatedAt.Before(cutoff) {
			out = append(out, *order)
		}
	}
	return out, nil
}

type stubExpiryTx struct{}

func (stubExpiryTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRestocker struct {
	calls map[uuid.UUID]int
}

func (s *stubRestocker) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if s.calls == nil {
		s.calls = map[uuid.UUID]int{}
	}
	s.calls[productID] += qty
	return nil
}

type stubCancelNotifier struct {
	cancelled []uuid.UUID
	statuses  []enums.OrderStatus
}

func (s *stubCancelNotifier) OrderCancelled(ctx context.Context, order *models.Order) error {
	s.cancelled = append(s.cancelled, order.ID)
	s.statuses = append(s.statuses, order.Status)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func staleOrder(age time.Duration, status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:        uuid.New(),
		BuyerID:   uuid.New(),
		StoreID:   uuid.New(),
		Status:    status,
		CreatedAt: time.Now().UTC().Add(-age),
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2},
		},
	}
}

func TestOrderExpiryJobCancelsStalePendingOrders(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	stale := staleOrder(48*time.Hour, enums.OrderStatusPending)
	fresh := staleOrder(time.Hour, enums.OrderStatusPending)
	confirmed := staleOrder(48*time.Hour, enums.OrderStatusConfirmed)
	for _, order := range []*models.Order{stale, fresh, confirmed} {
		repo.byID[order.ID] = order
	}

	restocker := &stubRestocker{}
	notifier := &stubCancelNotifier{}
	job, err := NewOrderExpiryJob(OrderExpiryJobParams{
		Logger:     testLogger(),
		DB:         stubExpiryTx{},
		Orders:     repo,
		Inventory:  restocker,
		Notifier:   notifier,
		PendingTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if repo.byID[stale.ID].Status != enums.OrderStatusCancelled {
		t.Fatalf("expected stale order cancelled, got %s", repo.byID[stale.ID].Status)
	}
	if repo.byID[fresh.ID].Status != enums.OrderStatusPending {
		t.Fatal("expected fresh order untouched")
	}
	if repo.byID[confirmed.ID].Status != enums.OrderStatusConfirmed {
		t.Fatal("expected confirmed order untouched")
	}

	productID := stale.Items[0].ProductID
	if restocker.calls[productID] != 2 {
		t.Fatalf("expected restock of 2, got %d", restocker.calls[productID])
	}
	if len(notifier.cancelled) != 1 || notifier.cancelled[0] != stale.ID {
		t.Fatalf("expected cancellation notification for stale order, got %v", notifier.cancelled)
	}
	if notifier.statuses[0] != enums.OrderStatusCancelled {
		t.Fatalf("notification must carry the cancelled order, got %s", notifier.statuses[0])
	}
}

func TestOrderExpiryJobSkipsOrdersMovedMeanwhile(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := staleOrder(48*time.Hour, enums.OrderStatusPending)
	repo.byID[order.ID] = order

	restocker := &stubRestocker{}
	job, err := NewOrderExpiryJob(OrderExpiryJobParams{
		Logger:     testLogger(),
		DB:         reCheckTx{repo: repo, orderID: order.ID},
		Orders:     repo,
		Inventory:  restocker,
		PendingTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.byID[order.ID].Status != enums.OrderStatusConfirmed {
		t.Fatal("expected order to keep its vendor-set status")
	}
	if len(restocker.calls) != 0 {
		t.Fatal("expected no restock for untouched order")
	}
}

// reCheckTx simulates the vendor confirming the order between the listing
// query and the expiry transaction.
type reCheckTx struct {
	repo    *stubOrdersRepo
	orderID uuid.UUID
}

func (r reCheckTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.repo.byID[r.orderID].Status = enums.OrderStatusConfirmed
	return fn(nil)
}
