package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/responses"
	"github.com/senjaya/lokapasar-backend/api/validators"
	checkoutsvc "github.com/senjaya/lokapasar-backend/internal/checkout"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// CheckoutPreview computes per-vendor order intents without committing
// anything. Vendors missing from shipping_choices get the default option.
func CheckoutPreview(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutPreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intents, err := svc.Preview(r.Context(), buyerID, payload.ShippingChoices)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCheckoutPreviewResponse(intents))
	}
}

// CheckoutSubmit turns the active cart into one order per vendor.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutSubmitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.Submit(r.Context(), buyerID, checkoutsvc.SubmitInput{
			AddressID:       payload.AddressID,
			ShippingChoices: payload.ShippingChoices,
			NotesByStore:    payload.NotesByStore,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutSubmitResponse(orders))
	}
}

type checkoutPreviewRequest struct {
	ShippingChoices map[uuid.UUID]uuid.UUID `json:"shipping_choices,omitempty"`
}

type checkoutSubmitRequest struct {
	AddressID       uuid.UUID               `json:"address_id" validate:"required"`
	ShippingChoices map[uuid.UUID]uuid.UUID `json:"shipping_choices,omitempty"`
	NotesByStore    map[uuid.UUID]string    `json:"notes_by_store,omitempty"`
}

type checkoutPreviewResponse struct {
	Intents    []orderIntentResponse `json:"intents"`
	GrandTotal int                   `json:"grand_total"`
}

type orderIntentResponse struct {
	StoreID      uuid.UUID            `json:"store_id"`
	Lines        []intentLineResponse `json:"lines"`
	Shipping     shippingOptionView   `json:"shipping"`
	Subtotal     int                  `json:"subtotal"`
	ShippingCost int                  `json:"shipping_cost"`
	Total        int                  `json:"total"`
}

type intentLineResponse struct {
	ProductID       uuid.UUID             `json:"product_id"`
	ProductName     string                `json:"product_name"`
	Quantity        int                   `json:"quantity"`
	UnitPrice       int                   `json:"unit_price"`
	LineTotal       int                   `json:"line_total"`
	SelectedOptions types.SelectedOptions `json:"selected_options,omitempty"`
}

func newCheckoutPreviewResponse(intents []checkoutsvc.OrderIntent) checkoutPreviewResponse {
	out := checkoutPreviewResponse{Intents: make([]orderIntentResponse, 0, len(intents))}
	for _, intent := range intents {
		lines := make([]intentLineResponse, 0, len(intent.Lines))
		for _, line := range intent.Lines {
			resp := intentLineResponse{
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				LineTotal:       line.LineTotal,
				SelectedOptions: line.Options,
			}
			if line.Product != nil {
				resp.ProductID = line.Product.ID
				resp.ProductName = line.Product.Name
			}
			lines = append(lines, resp)
		}
		out.Intents = append(out.Intents, orderIntentResponse{
			StoreID:      intent.StoreID,
			Lines:        lines,
			Shipping:     newShippingOptionView(intent.Shipping),
			Subtotal:     intent.Subtotal,
			ShippingCost: intent.ShippingCost,
			Total:        intent.Total,
		})
		out.GrandTotal += intent.Total
	}
	return out
}

type checkoutSubmitResponse struct {
	CheckoutGroupID uuid.UUID       `json:"checkout_group_id"`
	Orders          []orderResponse `json:"orders"`
	GrandTotal      int             `json:"grand_total"`
}
