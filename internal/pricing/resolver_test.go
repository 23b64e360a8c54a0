package pricing

import (
	"testing"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestUnitPriceUsesValidDiscount(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: uuid.New(), ListPrice: 100000, DiscountPrice: intPtr(75000)}
	got, err := UnitPrice(product)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 75000 {
		t.Fatalf("expected 75000, got %d", got)
	}
}

func TestUnitPriceFallsBackToListPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		product *models.Product
		want    int
	}{
		{name: "no discount", product: &models.Product{ListPrice: 50000}, want: 50000},
		{name: "zero discount", product: &models.Product{ListPrice: 50000, DiscountPrice: intPtr(0)}, want: 50000},
		{name: "negative discount", product: &models.Product{ListPrice: 50000, DiscountPrice: intPtr(-100)}, want: 50000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := UnitPrice(tt.product)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestUnitPriceRejectsDiscountAtOrAboveList(t *testing.T) {
	t.Parallel()

	for _, discount := range []int{100000, 120000} {
		product := &models.Product{ListPrice: 100000, DiscountPrice: intPtr(discount)}
		if _, err := UnitPrice(product); err == nil {
			t.Fatalf("expected error for discount %d", discount)
		} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("unexpected error code: %v", err)
		}
	}
}

func TestDiscountPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		product *models.Product
		want    int
	}{
		{name: "quarter off", product: &models.Product{ListPrice: 100000, DiscountPrice: intPtr(75000)}, want: 25},
		{name: "no discount", product: &models.Product{ListPrice: 100000}, want: 0},
		{name: "rounds to nearest", product: &models.Product{ListPrice: 30000, DiscountPrice: intPtr(20000)}, want: 33},
		{name: "deep discount stays below 100", product: &models.Product{ListPrice: 1000, DiscountPrice: intPtr(1)}, want: 99},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DiscountPercent(tt.product)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d%%, got %d%%", tt.want, got)
			}
		})
	}
}

func TestDiscountPercentPropagatesInvalidPricing(t *testing.T) {
	t.Parallel()

	product := &models.Product{ListPrice: 100, DiscountPrice: intPtr(150)}
	if _, err := DiscountPercent(product); err == nil {
		t.Fatal("expected invalid pricing error")
	}
}
