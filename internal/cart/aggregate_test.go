package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

func testProduct(storeID uuid.UUID, price, stock int) *models.Product {
	return &models.Product{
		ID:        uuid.New(),
		StoreID:   storeID,
		Name:      "Kopi Gayo 250g",
		ListPrice: price,
		Stock:     stock,
		IsActive:  true,
	}
}

func testVariantProduct(storeID uuid.UUID, price, stock int) *models.Product {
	p := testProduct(storeID, price, stock)
	p.VariantAxes = types.VariantAxes{
		{Name: "size", Options: []string{"S", "M", "L"}},
		{Name: "color", Options: []string{"hitam", "putih"}},
	}
	return p
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected %s, got %s", pkgerrors.CodeValidation, typed.Code())
	}
}

func TestAddLineAppendsAndMerges(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	product := testProduct(storeID, 50000, 20)
	agg := NewAggregate()

	if err := agg.AddLine(product, 2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.AddLine(product, 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buckets := agg.Buckets()
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if len(buckets[0].Lines) != 1 {
		t.Fatalf("expected merged single line, got %d", len(buckets[0].Lines))
	}
	if got := buckets[0].Lines[0].Quantity; got != 5 {
		t.Fatalf("expected merged quantity 5, got %d", got)
	}
}

func TestAddLineDistinctOptionsAreDistinctLines(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	product := testVariantProduct(storeID, 50000, 20)
	agg := NewAggregate()

	if err := agg.AddLine(product, 1, types.SelectedOptions{"size": "M", "color": "hitam"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.AddLine(product, 1, types.SelectedOptions{"size": "L", "color": "hitam"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buckets := agg.Buckets()
	if len(buckets[0].Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(buckets[0].Lines))
	}
}

func TestAddLineClampsToStock(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 5)
	agg := NewAggregate()

	if err := agg.AddLine(product, 10, nil); err != nil {
		t.Fatalf("expected clamp, got error: %v", err)
	}
	if got := agg.Buckets()[0].Lines[0].Quantity; got != 5 {
		t.Fatalf("expected quantity clamped to 5, got %d", got)
	}

	// Merging also re-clamps.
	if err := agg.AddLine(product, 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := agg.Buckets()[0].Lines[0].Quantity; got != 5 {
		t.Fatalf("expected quantity still 5 after merge, got %d", got)
	}
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 5)
	agg := NewAggregate()

	assertValidation(t, agg.AddLine(product, 0, nil))
	assertValidation(t, agg.AddLine(product, -2, nil))
	if !agg.IsEmpty() {
		t.Fatal("rejected adds must not touch the cart")
	}
}

func TestAddLineRejectsOutOfStockProduct(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 0)
	agg := NewAggregate()

	assertValidation(t, agg.AddLine(product, 1, nil))
}

func TestAddLineValidatesOptions(t *testing.T) {
	t.Parallel()

	product := testVariantProduct(uuid.New(), 50000, 10)
	agg := NewAggregate()

	// Missing axis.
	assertValidation(t, agg.AddLine(product, 1, types.SelectedOptions{"size": "M"}))
	// Unknown option value.
	assertValidation(t, agg.AddLine(product, 1, types.SelectedOptions{"size": "XL", "color": "hitam"}))
	// Extra axis the product does not define.
	assertValidation(t, agg.AddLine(product, 1, types.SelectedOptions{"size": "M", "color": "hitam", "bahan": "katun"}))

	// A product without variants accepts only an empty selection.
	plain := testProduct(uuid.New(), 50000, 10)
	assertValidation(t, agg.AddLine(plain, 1, types.SelectedOptions{"size": "M"}))
}

func TestAddLineRejectsBrokenDiscount(t *testing.T) {
	t.Parallel()

	product := testProduct(uuid.New(), 50000, 10)
	bad := 60000
	product.DiscountPrice = &bad
	agg := NewAggregate()

	assertValidation(t, agg.AddLine(product, 1, nil))
}

func TestAddThenRemoveRoundTrips(t *testing.T) {
	t.Parallel()

	storeA := uuid.New()
	first := testProduct(storeA, 50000, 10)
	second := testProduct(storeA, 20000, 10)
	agg := NewAggregate()

	if err := agg.AddLine(first, 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := agg.TotalItemCount()

	if err := agg.AddLine(second, 2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.RemoveLine(storeA, second.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := agg.TotalItemCount(); got != before {
		t.Fatalf("expected count %d after round trip, got %d", before, got)
	}
	if len(agg.Buckets()[0].Lines) != 1 {
		t.Fatal("expected the original single line after round trip")
	}
}

func TestRemoveLastLineDropsBucket(t *testing.T) {
	t.Parallel()

	storeA := uuid.New()
	storeB := uuid.New()
	agg := NewAggregate()

	if err := agg.AddLine(testProduct(storeA, 50000, 10), 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	productB := testProduct(storeB, 30000, 10)
	if err := agg.AddLine(productB, 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := agg.RemoveLine(storeB, productB.ID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := agg.VendorCount(); got != 1 {
		t.Fatalf("expected empty bucket removed, vendor count %d", got)
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	product := testProduct(storeID, 50000, 10)
	agg := NewAggregate()

	if err := agg.AddLine(product, 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.UpdateQuantity(storeID, product.ID, 0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !agg.IsEmpty() {
		t.Fatal("expected empty cart after quantity 0 update")
	}
}

func TestUpdateQuantityClamps(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	product := testProduct(storeID, 50000, 5)
	agg := NewAggregate()

	if err := agg.AddLine(product, 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.UpdateQuantity(storeID, product.ID, 10, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := agg.Buckets()[0].Lines[0].Quantity; got != 5 {
		t.Fatalf("expected quantity clamped to 5, got %d", got)
	}
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	t.Parallel()

	agg := NewAggregate()
	err := agg.UpdateQuantity(uuid.New(), uuid.New(), 2, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTotalsAcrossVendors(t *testing.T) {
	t.Parallel()

	storeA := uuid.New()
	storeB := uuid.New()
	discounted := testProduct(storeA, 100000, 10)
	discount := 75000
	discounted.DiscountPrice = &discount
	plain := testProduct(storeB, 30000, 10)

	agg := NewAggregate()
	if err := agg.AddLine(discounted, 2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.AddLine(plain, 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := agg.TotalItemCount(); got != 3 {
		t.Fatalf("expected item count 3, got %d", got)
	}

	total, err := agg.TotalValue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 75000*2 + 30000; total != want {
		t.Fatalf("expected total %d, got %d", want, total)
	}

	// Repeated calls are side-effect free.
	if again := agg.TotalItemCount(); again != 3 {
		t.Fatalf("expected stable item count, got %d", again)
	}
}

func TestBucketOrderFollowsFirstTouch(t *testing.T) {
	t.Parallel()

	storeA := uuid.New()
	storeB := uuid.New()
	agg := NewAggregate()

	if err := agg.AddLine(testProduct(storeA, 10000, 10), 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.AddLine(testProduct(storeB, 20000, 10), 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.AddLine(testProduct(storeA, 30000, 10), 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buckets := agg.Buckets()
	if buckets[0].StoreID != storeA || buckets[1].StoreID != storeB {
		t.Fatal("expected buckets ordered by first-added line per vendor")
	}
	if len(buckets[0].Lines) != 2 {
		t.Fatalf("expected 2 lines for first vendor, got %d", len(buckets[0].Lines))
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	agg := NewAggregate()
	if err := agg.AddLine(testProduct(uuid.New(), 10000, 10), 2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg.Clear()
	if !agg.IsEmpty() || agg.TotalItemCount() != 0 {
		t.Fatal("expected cleared cart to be empty")
	}
}
