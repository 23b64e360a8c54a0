package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/middleware"
	cartsvc "github.com/senjaya/lokapasar-backend/internal/cart"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

type stubCartService struct {
	record *models.CartRecord
	err    error

	addItemCalls int
	lastAddInput cartsvc.AddItemInput
}

func (s *stubCartService) AddItem(ctx context.Context, buyerID uuid.UUID, input cartsvc.AddItemInput) (*models.CartRecord, error) {
	s.addItemCalls++
	s.lastAddInput = input
	return s.record, s.err
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, buyerID uuid.UUID, input cartsvc.UpdateItemInput) (*models.CartRecord, error) {
	return s.record, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, buyerID uuid.UUID, input cartsvc.RemoveItemInput) (*models.CartRecord, error) {
	return s.record, s.err
}

func (s *stubCartService) GetActiveCart(ctx context.Context, buyerID uuid.UUID) (*models.CartRecord, error) {
	return s.record, s.err
}

func (s *stubCartService) ClearCart(ctx context.Context, buyerID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) AggregateForBuyer(ctx context.Context, buyerID uuid.UUID) (*cartsvc.Aggregate, *models.CartRecord, error) {
	return nil, s.record, s.err
}

func buyerRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleBuyer))
	return req.WithContext(ctx)
}

func TestCartFetchSuccess(t *testing.T) {
	record := &models.CartRecord{
		ID:        uuid.New(),
		BuyerID:   uuid.New(),
		Status:    enums.CartStatusActive,
		Subtotal:  150000,
		ItemCount: 2,
	}
	handler := CartFetch(&stubCartService{record: record}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != record.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
	if envelope.Data.Subtotal != 150000 {
		t.Fatalf("unexpected subtotal: %d", envelope.Data.Subtotal)
	}
}

func TestCartFetchMissingUserContext(t *testing.T) {
	handler := CartFetch(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemValidatesPayload(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAddItem(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/items", `{"quantity":0}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.addItemCalls != 0 {
		t.Fatalf("service should not be called on invalid payload")
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	productID := uuid.New()
	record := &models.CartRecord{
		ID:        uuid.New(),
		Status:    enums.CartStatusActive,
		Subtotal:  25000,
		ItemCount: 1,
	}
	svc := &stubCartService{record: record}
	handler := CartAddItem(svc, nil)

	body := `{"product_id":"` + productID.String() + `","quantity":2,"selected_options":{"warna":"merah"}}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.addItemCalls != 1 {
		t.Fatalf("expected one service call, got %d", svc.addItemCalls)
	}
	if svc.lastAddInput.ProductID != productID {
		t.Fatalf("unexpected product id: %s", svc.lastAddInput.ProductID)
	}
	if svc.lastAddInput.Quantity != 2 {
		t.Fatalf("unexpected quantity: %d", svc.lastAddInput.Quantity)
	}
	if svc.lastAddInput.SelectedOptions["warna"] != "merah" {
		t.Fatalf("unexpected options: %v", svc.lastAddInput.SelectedOptions)
	}
}

func TestCartAddItemServiceError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeValidation, "jumlah melebihi stok")}
	handler := CartAddItem(svc, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":3}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartClearSuccess(t *testing.T) {
	handler := CartClear(&stubCartService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, buyerRequest(http.MethodDelete, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
