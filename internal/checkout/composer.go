package checkout

import (
	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/internal/cart"
	"github.com/senjaya/lokapasar-backend/internal/pricing"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// IntentLine freezes one cart line at composition time. UnitPrice no longer
// follows later product edits.
type IntentLine struct {
	Product   *models.Product
	Quantity  int
	UnitPrice int
	LineTotal int
	Options   types.SelectedOptions
}

// OrderIntent is the computed pre-submission summary for one vendor.
type OrderIntent struct {
	StoreID      uuid.UUID
	Lines        []IntentLine
	Shipping     models.ShippingOption
	Subtotal     int
	ShippingCost int
	Total        int
}

type shippingResolver interface {
	Resolve(optionID uuid.UUID) (models.ShippingOption, error)
	Default() models.ShippingOption
}

// Compose turns the cart into one OrderIntent per vendor bucket, in bucket
// order. Vendors without an entry in choices get the default shipping
// option. The call is pure and all-or-nothing: any pricing or shipping
// failure aborts the whole composition.
func Compose(agg *cart.Aggregate, choices map[uuid.UUID]uuid.UUID, shipping shippingResolver) ([]OrderIntent, error) {
	if agg == nil || agg.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	buckets := agg.Buckets()
	intents := make([]OrderIntent, 0, len(buckets))
	for _, bucket := range buckets {
		intent := OrderIntent{
			StoreID: bucket.StoreID,
			Lines:   make([]IntentLine, 0, len(bucket.Lines)),
		}

		for _, line := range bucket.Lines {
			unit, err := pricing.UnitPrice(line.Product)
			if err != nil {
				return nil, err
			}
			intent.Lines = append(intent.Lines, IntentLine{
				Product:   line.Product,
				Quantity:  line.Quantity,
				UnitPrice: unit,
				LineTotal: unit * line.Quantity,
				Options:   line.Options.Clone(),
			})
			intent.Subtotal += unit * line.Quantity
		}

		option := shipping.Default()
		if optionID, chosen := choices[bucket.StoreID]; chosen {
			resolved, err := shipping.Resolve(optionID)
			if err != nil {
				return nil, err
			}
			option = resolved
		}
		intent.Shipping = option
		intent.ShippingCost = option.Price
		intent.Total = intent.Subtotal + intent.ShippingCost

		intents = append(intents, intent)
	}

	return intents, nil
}
