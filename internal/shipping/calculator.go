package shipping

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

// Calculator resolves shipping options and their flat prices from the static
// option table. The catalog is identical for every vendor today; the
// per-vendor signature exists so callers survive a future per-vendor catalog.
type Calculator struct {
	options []models.ShippingOption
	byID    map[uuid.UUID]models.ShippingOption
	def     models.ShippingOption
}

// NewCalculator builds a calculator over the provided option table. Exactly
// one option must be flagged as the default.
func NewCalculator(options []models.ShippingOption) (*Calculator, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("shipping options required")
	}

	calc := &Calculator{
		options: make([]models.ShippingOption, len(options)),
		byID:    make(map[uuid.UUID]models.ShippingOption, len(options)),
	}
	copy(calc.options, options)

	var defaults int
	for _, opt := range calc.options {
		if opt.ID == uuid.Nil {
			return nil, fmt.Errorf("shipping option %q has no id", opt.Code)
		}
		if opt.Price < 0 {
			return nil, fmt.Errorf("shipping option %q has negative price", opt.Code)
		}
		if !opt.Method.IsValid() {
			return nil, fmt.Errorf("shipping option %q has invalid method %q", opt.Code, opt.Method)
		}
		if _, dup := calc.byID[opt.ID]; dup {
			return nil, fmt.Errorf("duplicate shipping option id %s", opt.ID)
		}
		calc.byID[opt.ID] = opt
		if opt.IsDefault {
			defaults++
			calc.def = opt
		}
	}
	if defaults != 1 {
		return nil, fmt.Errorf("expected exactly one default shipping option, found %d", defaults)
	}

	return calc, nil
}

// OptionsFor returns the ordered option list for the vendor.
func (c *Calculator) OptionsFor(storeID uuid.UUID) []models.ShippingOption {
	_ = storeID
	out := make([]models.ShippingOption, len(c.options))
	copy(out, c.options)
	return out
}

// Resolve returns the option for the given id.
func (c *Calculator) Resolve(optionID uuid.UUID) (models.ShippingOption, error) {
	opt, ok := c.byID[optionID]
	if !ok {
		return models.ShippingOption{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown shipping option").
			WithDetails(map[string]any{"option_id": optionID})
	}
	return opt, nil
}

// Default returns the option used when the buyer has not chosen one.
func (c *Calculator) Default() models.ShippingOption {
	return c.def
}
