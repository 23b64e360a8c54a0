package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/senjaya/lokapasar-backend/internal/checkout"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

type stubCheckoutService struct {
	orders  []models.Order
	intents []checkoutsvc.OrderIntent
	err     error

	lastSubmit checkoutsvc.SubmitInput
}

func (s *stubCheckoutService) Submit(ctx context.Context, buyerID uuid.UUID, input checkoutsvc.SubmitInput) ([]models.Order, error) {
	s.lastSubmit = input
	return s.orders, s.err
}

func (s *stubCheckoutService) Preview(ctx context.Context, buyerID uuid.UUID, choices map[uuid.UUID]uuid.UUID) ([]checkoutsvc.OrderIntent, error) {
	return s.intents, s.err
}

func TestCheckoutPreviewSuccess(t *testing.T) {
	storeA := uuid.New()
	storeB := uuid.New()
	svc := &stubCheckoutService{intents: []checkoutsvc.OrderIntent{
		{StoreID: storeA, Subtotal: 100000, ShippingCost: 15000, Total: 115000},
		{StoreID: storeB, Subtotal: 50000, ShippingCost: 9000, Total: 59000},
	}}
	handler := CheckoutPreview(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/checkout/preview", `{}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data checkoutPreviewResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Intents) != 2 {
		t.Fatalf("expected 2 intents got %d", len(envelope.Data.Intents))
	}
	if envelope.Data.GrandTotal != 174000 {
		t.Fatalf("expected grand total 174000 got %d", envelope.Data.GrandTotal)
	}
}

func TestCheckoutSubmitSuccess(t *testing.T) {
	groupID := uuid.New()
	addressID := uuid.New()
	storeID := uuid.New()
	svc := &stubCheckoutService{orders: []models.Order{
		{
			ID:              uuid.New(),
			CheckoutGroupID: groupID,
			StoreID:         storeID,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   enums.PaymentMethodCOD,
			Subtotal:        100000,
			ShippingPrice:   15000,
			Total:           115000,
		},
	}}
	handler := CheckoutSubmit(svc, nil)

	body := `{"address_id":"` + addressID.String() + `","shipping_choices":{"` + storeID.String() + `":"` + uuid.NewString() + `"}}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/checkout", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastSubmit.AddressID != addressID {
		t.Fatalf("unexpected address id: %s", svc.lastSubmit.AddressID)
	}
	if len(svc.lastSubmit.ShippingChoices) != 1 {
		t.Fatalf("expected one shipping choice, got %d", len(svc.lastSubmit.ShippingChoices))
	}

	var envelope struct {
		Data checkoutSubmitResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CheckoutGroupID != groupID {
		t.Fatalf("unexpected checkout group: %s", envelope.Data.CheckoutGroupID)
	}
	if envelope.Data.GrandTotal != 115000 {
		t.Fatalf("unexpected grand total: %d", envelope.Data.GrandTotal)
	}
}

func TestCheckoutSubmitRequiresAddress(t *testing.T) {
	handler := CheckoutSubmit(&stubCheckoutService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/checkout", `{}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSubmitEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "keranjang kosong")}
	handler := CheckoutSubmit(svc, nil)

	body := `{"address_id":"` + uuid.NewString() + `"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/checkout", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
