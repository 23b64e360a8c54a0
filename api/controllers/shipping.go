package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/responses"
	"github.com/senjaya/lokapasar-backend/api/validators"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
)

type shippingOptionLister interface {
	OptionsFor(storeID uuid.UUID) []models.ShippingOption
}

// ShippingOptionList serves the delivery methods available at checkout.
func ShippingOptionList(calc shippingOptionLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping calculator unavailable"))
			return
		}

		storeID, err := validators.ParseQueryUUID(r, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		options := calc.OptionsFor(storeID)
		out := make([]shippingOptionView, 0, len(options))
		for _, option := range options {
			out = append(out, newShippingOptionView(option))
		}
		responses.WriteSuccess(w, map[string]any{"options": out})
	}
}

type shippingOptionView struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Method    string    `json:"method"`
	ETALabel  string    `json:"eta_label"`
	Price     int       `json:"price"`
	IsDefault bool      `json:"is_default"`
}

func newShippingOptionView(option models.ShippingOption) shippingOptionView {
	return shippingOptionView{
		ID:        option.ID,
		Code:      option.Code,
		Name:      option.Name,
		Method:    string(option.Method),
		ETALabel:  option.ETALabel,
		Price:     option.Price,
		IsDefault: option.IsDefault,
	}
}
