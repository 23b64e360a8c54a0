package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	"github.com/senjaya/lokapasar-backend/pkg/pagination"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  checkout_group_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT 'cod',
  shipping_address TEXT NOT NULL,
  shipping_code TEXT NOT NULL,
  shipping_name TEXT NOT NULL,
  shipping_eta_label TEXT NOT NULL,
  shipping_price INTEGER NOT NULL,
  subtotal INTEGER NOT NULL,
  total INTEGER NOT NULL,
  notes TEXT,
  cancelled_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  product_image TEXT,
  quantity INTEGER NOT NULL,
  unit_price INTEGER NOT NULL,
  line_total INTEGER NOT NULL,
  selected_options TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, buyerID, storeID uuid.UUID, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		CheckoutGroupID: uuid.New(),
		BuyerID:         buyerID,
		StoreID:         storeID,
		Status:          status,
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: types.Address{
			Recipient:  "Budi Santoso",
			Phone:      "081234567890",
			Line1:      "Jl. Merdeka No. 1",
			District:   "Menteng",
			City:       "Jakarta Pusat",
			Province:   "DKI Jakarta",
			PostalCode: "10310",
		},
		ShippingCode:     "regular",
		ShippingName:     "Reguler",
		ShippingETALabel: "2-4 hari",
		ShippingPrice:    8000,
		Subtotal:         50000,
		Total:            58000,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)

	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     order.ID,
		ProductID:   uuid.New(),
		ProductName: "Kopi Gayo 250g",
		Quantity:    1,
		UnitPrice:   50000,
		LineTotal:   50000,
		CreatedAt:   created,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

func TestRepositoryScopedLookups(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	storeID := uuid.New()
	order := createTestOrder(t, db, buyerID, storeID, enums.OrderStatusPending, time.Now().UTC())

	found, err := repo.FindByIDAndBuyer(context.Background(), order.ID, buyerID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 50000, found.Items[0].UnitPrice)

	_, err = repo.FindByIDAndBuyer(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByIDAndStore(context.Background(), order.ID, storeID)
	require.NoError(t, err)

	_, err = repo.FindByIDAndStore(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByBuyerPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	storeA := uuid.New()
	storeB := uuid.New()
	now := time.Now().UTC()

	older := createTestOrder(t, db, buyerID, storeA, enums.OrderStatusPending, now.Add(-time.Hour))
	newer := createTestOrder(t, db, buyerID, storeB, enums.OrderStatusPending, now)

	first, next, err := repo.ListByBuyer(context.Background(), buyerID, ListFilter{Page: pagination.Params{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, newer.ID, first[0].ID)
	assert.NotEmpty(t, next)

	second, last, err := repo.ListByBuyer(context.Background(), buyerID, ListFilter{Page: pagination.Params{Limit: 1, Cursor: next}})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ID)
	assert.Empty(t, last)
}

func TestRepositoryListByStoreStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	storeID := uuid.New()
	now := time.Now().UTC()
	createTestOrder(t, db, uuid.New(), storeID, enums.OrderStatusPending, now.Add(-time.Minute))
	confirmed := createTestOrder(t, db, uuid.New(), storeID, enums.OrderStatusConfirmed, now)

	status := enums.OrderStatusConfirmed
	rows, _, err := repo.ListByStore(context.Background(), storeID, ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, confirmed.ID, rows[0].ID)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := createTestOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, time.Now().UTC())

	updated, err := Transition(*order, enums.OrderStatusCancelled, time.Now().UTC())
	require.NoError(t, err)
	actor := order.BuyerID
	updated.CancelledBy = &actor

	require.NoError(t, repo.UpdateStatus(context.Background(), &updated))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, found.Status)
	require.NotNil(t, found.CancelledBy)
	assert.Equal(t, actor, *found.CancelledBy)
}

func TestRepositoryListPendingOlderThan(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	stale := createTestOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, now.Add(-48*time.Hour))
	createTestOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, now)
	createTestOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusConfirmed, now.Add(-48*time.Hour))

	rows, err := repo.ListPendingOlderThan(context.Background(), now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
}
