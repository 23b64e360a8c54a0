package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/middleware"
	"github.com/senjaya/lokapasar-backend/api/responses"
	"github.com/senjaya/lokapasar-backend/api/validators"
	ordersvc "github.com/senjaya/lokapasar-backend/internal/orders"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
	"github.com/senjaya/lokapasar-backend/pkg/pagination"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// BuyerOrderList returns the caller's orders, newest first.
func BuyerOrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := orderListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, next, err := svc.ListBuyerOrders(r.Context(), buyerID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders, next))
	}
}

// BuyerOrderDetail returns one of the caller's orders with its items.
func BuyerOrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetBuyerOrder(r.Context(), buyerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// BuyerCancelOrder cancels a pending or confirmed order on the buyer's
// behalf, restocking its items.
func BuyerCancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), actor, orderID, enums.OrderStatusCancelled)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// SellerOrderList returns the orders placed against the caller's store.
func SellerOrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		storeID, err := actorStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := orderListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, next, err := svc.ListStoreOrders(r.Context(), storeID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders, next))
	}
}

// SellerOrderDetail returns one order belonging to the caller's store.
func SellerOrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		storeID, err := actorStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetStoreOrder(r.Context(), storeID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// SellerUpdateOrderStatus moves an order along its lifecycle.
func SellerUpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), actor, orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func orderActor(r *http.Request) (ordersvc.Actor, error) {
	userID, err := actorUserID(r)
	if err != nil {
		return ordersvc.Actor{}, err
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return ordersvc.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}

	actor := ordersvc.Actor{UserID: userID, Role: role}
	if raw := middleware.StoreIDFromContext(r.Context()); raw != "" {
		storeID, err := uuid.Parse(raw)
		if err != nil {
			return ordersvc.Actor{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid store id")
		}
		actor.StoreID = &storeID
	}
	return actor, nil
}

func orderListFilter(r *http.Request) (ordersvc.ListFilter, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
	if err != nil {
		return ordersvc.ListFilter{}, err
	}

	filter := ordersvc.ListFilter{
		Page: pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		},
	}

	if raw := validators.SanitizeString(r.URL.Query().Get("status"), 20); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return ordersvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
		}
		filter.Status = &status
	}
	return filter, nil
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	CheckoutGroupID  uuid.UUID           `json:"checkout_group_id"`
	BuyerID          uuid.UUID           `json:"buyer_id"`
	StoreID          uuid.UUID           `json:"store_id"`
	Status           string              `json:"status"`
	PaymentMethod    string              `json:"payment_method"`
	ShippingAddress  types.Address       `json:"shipping_address"`
	ShippingCode     string              `json:"shipping_code"`
	ShippingName     string              `json:"shipping_name"`
	ShippingETALabel string              `json:"shipping_eta_label"`
	ShippingPrice    int                 `json:"shipping_price"`
	Subtotal         int                 `json:"subtotal"`
	Total            int                 `json:"total"`
	Notes            *string             `json:"notes,omitempty"`
	CancelledBy      *uuid.UUID          `json:"cancelled_by,omitempty"`
	Items            []orderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ID              uuid.UUID             `json:"id"`
	ProductID       uuid.UUID             `json:"product_id"`
	ProductName     string                `json:"product_name"`
	ProductImage    *string               `json:"product_image,omitempty"`
	Quantity        int                   `json:"quantity"`
	UnitPrice       int                   `json:"unit_price"`
	LineTotal       int                   `json:"line_total"`
	SelectedOptions types.SelectedOptions `json:"selected_options,omitempty"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{Items: []orderItemResponse{}}
	}
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductImage:    item.ProductImage,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			LineTotal:       item.LineTotal,
			SelectedOptions: item.SelectedOptions,
		})
	}
	return orderResponse{
		ID:               order.ID,
		CheckoutGroupID:  order.CheckoutGroupID,
		BuyerID:          order.BuyerID,
		StoreID:          order.StoreID,
		Status:           string(order.Status),
		PaymentMethod:    string(order.PaymentMethod),
		ShippingAddress:  order.ShippingAddress,
		ShippingCode:     order.ShippingCode,
		ShippingName:     order.ShippingName,
		ShippingETALabel: order.ShippingETALabel,
		ShippingPrice:    order.ShippingPrice,
		Subtotal:         order.Subtotal,
		Total:            order.Total,
		Notes:            order.Notes,
		CancelledBy:      order.CancelledBy,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func newOrderListResponse(orders []models.Order, next string) orderListResponse {
	out := orderListResponse{
		Orders:     make([]orderResponse, 0, len(orders)),
		NextCursor: next,
	}
	for i := range orders {
		out.Orders = append(out.Orders, newOrderResponse(&orders[i]))
	}
	return out
}

func newCheckoutSubmitResponse(orders []models.Order) checkoutSubmitResponse {
	out := checkoutSubmitResponse{Orders: make([]orderResponse, 0, len(orders))}
	for i := range orders {
		out.Orders = append(out.Orders, newOrderResponse(&orders[i]))
		out.GrandTotal += orders[i].Total
		out.CheckoutGroupID = orders[i].CheckoutGroupID
	}
	return out
}
