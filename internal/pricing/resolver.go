package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

// UnitPrice resolves the effective unit price for a product: the discount
// price when one is set and strictly below the list price, the list price
// otherwise. A discount at or above the list price is rejected rather than
// silently treated as the selling price.
func UnitPrice(product *models.Product) (int, error) {
	if product == nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if product.ListPrice < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "list price cannot be negative").
			WithDetails(map[string]any{"product_id": product.ID, "list_price": product.ListPrice})
	}
	if product.DiscountPrice == nil {
		return product.ListPrice, nil
	}

	discount := *product.DiscountPrice
	if discount >= product.ListPrice {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "discount price must be below list price").
			WithDetails(map[string]any{"product_id": product.ID, "list_price": product.ListPrice, "discount_price": discount})
	}
	if discount <= 0 {
		return product.ListPrice, nil
	}
	return discount, nil
}

// DiscountPercent returns the rounded discount percentage in [0,100), zero
// when the product has no valid discount.
func DiscountPercent(product *models.Product) (int, error) {
	unit, err := UnitPrice(product)
	if err != nil {
		return 0, err
	}
	if product.ListPrice <= 0 || unit == product.ListPrice {
		return 0, nil
	}

	saved := decimal.NewFromInt(int64(product.ListPrice - unit))
	list := decimal.NewFromInt(int64(product.ListPrice))
	percent := saved.Div(list).Mul(decimal.NewFromInt(100)).Round(0)
	// A valid discount is always below the list price, so the label never
	// reads a full 100% even when rounding pushes it there.
	if percent.IntPart() >= 100 {
		return 99, nil
	}
	return int(percent.IntPart()), nil
}
