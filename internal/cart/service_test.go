package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

type stubCartRepo struct {
	record *models.CartRecord
	items  []models.CartItem
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	record.ID = uuid.New()
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	s.record = record
	return record, nil
}

func (s *stubCartRepo) Update(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	s.record = record
	return record, nil
}

func (s *stubCartRepo) FindActiveByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error) {
	if s.record == nil || s.record.BuyerID != buyerID || s.record.Status != enums.CartStatusActive {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s.record
	out.Items = append([]models.CartItem(nil), s.items...)
	return &out, nil
}

func (s *stubCartRepo) FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.CartRecord, error) {
	if s.record == nil || s.record.ID != id || s.record.BuyerID != buyerID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s.record
	out.Items = append([]models.CartItem(nil), s.items...)
	return &out, nil
}

func (s *stubCartRepo) UpdateStatus(ctx context.Context, id, buyerID uuid.UUID, status enums.CartStatus) error {
	if s.record != nil && s.record.ID == id {
		s.record.Status = status
	}
	return nil
}

func (s *stubCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	for i := range items {
		items[i].CartID = cartID
	}
	s.items = append([]models.CartItem(nil), items...)
	return nil
}

func (s *stubCartRepo) DeleteByBuyer(ctx context.Context, buyerID uuid.UUID) error {
	s.record = nil
	s.items = nil
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	copied := *product
	return &copied, nil
}

func newTestService(t *testing.T, products ...*models.Product) (Service, *stubCartRepo) {
	t.Helper()
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		loader.products[p.ID] = p
	}
	repo := &stubCartRepo{}
	svc, err := NewService(repo, stubTxRunner{}, loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, repo
}

func TestAddItemCreatesRecord(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 10)
	svc, _ := newTestService(t, product)
	buyerID := uuid.New()

	record, err := svc.AddItem(context.Background(), buyerID, AddItemInput{
		ProductID: product.ID,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Subtotal != 100000 {
		t.Fatalf("expected subtotal 100000, got %d", record.Subtotal)
	}
	if record.ItemCount != 2 {
		t.Fatalf("expected item count 2, got %d", record.ItemCount)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(record.Items))
	}
	if record.Items[0].UnitPrice != 50000 || record.Items[0].LineSubtotal != 100000 {
		t.Fatalf("unexpected item pricing: %+v", record.Items[0])
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 10)
	svc, _ := newTestService(t, product)
	buyerID := uuid.New()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(record.Items) != 1 {
		t.Fatalf("expected merged single item, got %d", len(record.Items))
	}
	if record.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", record.Items[0].Quantity)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 10)
	product.IsActive = false
	svc, _ := newTestService(t, product)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	assertValidation(t, err)
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 10)
	svc, _ := newTestService(t, product)
	buyerID := uuid.New()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, err := svc.UpdateItemQuantity(ctx, buyerID, UpdateItemInput{ProductID: product.ID, Quantity: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(record.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(record.Items))
	}
	if record.Subtotal != 0 || record.ItemCount != 0 {
		t.Fatalf("expected zeroed totals, got %+v", record)
	}
}

func TestRemoveItemByOptions(t *testing.T) {
	t.Parallel()

	product := testVariantProduct(uuid.New(), 50000, 10)
	svc, _ := newTestService(t, product)
	buyerID := uuid.New()
	ctx := context.Background()

	optsM := types.SelectedOptions{"size": "M", "color": "hitam"}
	optsL := types.SelectedOptions{"size": "L", "color": "hitam"}
	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1, SelectedOptions: optsM}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1, SelectedOptions: optsL}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := svc.RemoveItem(ctx, buyerID, RemoveItemInput{ProductID: product.ID, SelectedOptions: optsM})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected 1 item left, got %d", len(record.Items))
	}
	if !record.Items[0].SelectedOptions.Equal(optsL) {
		t.Fatalf("wrong line removed: %+v", record.Items[0].SelectedOptions)
	}
}

func TestGetActiveCartNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.GetActiveCart(context.Background(), uuid.New())

	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAggregateForBuyerDropsUnavailableLines(t *testing.T) {
	t.Parallel()

	available := testProduct(uuid.New(), 50000, 10)
	retired := testProduct(uuid.New(), 30000, 10)
	svc, repo := newTestService(t, available, retired)
	buyerID := uuid.New()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: available.ID, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: retired.ID, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	retired.IsActive = false

	agg, record, err := svc.AggregateForBuyer(ctx, buyerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record == nil {
		t.Fatal("expected existing record")
	}
	if got := agg.TotalItemCount(); got != 1 {
		t.Fatalf("expected retired line dropped, item count %d", got)
	}
	_ = repo
}

func TestAggregateForBuyerReclampsToStock(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 10)
	svc, _ := newTestService(t, product)
	buyerID := uuid.New()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 8}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	product.Stock = 3

	agg, _, err := svc.AggregateForBuyer(ctx, buyerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := agg.TotalItemCount(); got != 3 {
		t.Fatalf("expected quantity re-clamped to 3, got %d", got)
	}
}

func TestClearCart(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 10)
	svc, _ := newTestService(t, product)
	buyerID := uuid.New()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, buyerID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.ClearCart(ctx, buyerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.GetActiveCart(ctx, buyerID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after clear, got %v", err)
	}
}
