package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/responses"
	"github.com/senjaya/lokapasar-backend/api/validators"
	cartsvc "github.com/senjaya/lokapasar-backend/internal/cart"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// CartFetch returns the buyer's active cart, creating nothing when none
// exists yet.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetActiveCart(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartAddItem appends or merges one product line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), buyerID, cartsvc.AddItemInput{
			ProductID:       payload.ProductID,
			Quantity:        payload.Quantity,
			SelectedOptions: payload.SelectedOptions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartUpdateItem sets the quantity of an existing line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateItemQuantity(r.Context(), buyerID, cartsvc.UpdateItemInput{
			ProductID:       payload.ProductID,
			Quantity:        payload.Quantity,
			SelectedOptions: payload.SelectedOptions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartRemoveItem drops an existing line, identified by product and options.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload removeCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveItem(r.Context(), buyerID, cartsvc.RemoveItemInput{
			ProductID:       payload.ProductID,
			SelectedOptions: payload.SelectedOptions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartClear abandons the active cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ClearCart(r.Context(), buyerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type cartItemRequest struct {
	ProductID       uuid.UUID             `json:"product_id" validate:"required"`
	Quantity        int                   `json:"quantity" validate:"required,min=1"`
	SelectedOptions types.SelectedOptions `json:"selected_options,omitempty"`
}

type removeCartItemRequest struct {
	ProductID       uuid.UUID             `json:"product_id" validate:"required"`
	SelectedOptions types.SelectedOptions `json:"selected_options,omitempty"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Status    string             `json:"status"`
	Subtotal  int                `json:"subtotal"`
	ItemCount int                `json:"item_count"`
	Items     []cartItemResponse `json:"items"`
}

type cartItemResponse struct {
	ProductID       uuid.UUID             `json:"product_id"`
	StoreID         uuid.UUID             `json:"store_id"`
	Quantity        int                   `json:"quantity"`
	UnitPrice       int                   `json:"unit_price"`
	LineSubtotal    int                   `json:"line_subtotal"`
	SelectedOptions types.SelectedOptions `json:"selected_options,omitempty"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	if record == nil {
		return cartResponse{Items: []cartItemResponse{}}
	}
	items := make([]cartItemResponse, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, cartItemResponse{
			ProductID:       item.ProductID,
			StoreID:         item.StoreID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineSubtotal:    item.LineSubtotal,
			SelectedOptions: item.SelectedOptions,
		})
	}
	return cartResponse{
		ID:        record.ID,
		Status:    string(record.Status),
		Subtotal:  record.Subtotal,
		ItemCount: record.ItemCount,
		Items:     items,
	}
}
