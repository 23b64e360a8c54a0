package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/api/responses"
	"github.com/senjaya/lokapasar-backend/api/validators"
	productsvc "github.com/senjaya/lokapasar-backend/internal/products"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
	"github.com/senjaya/lokapasar-backend/pkg/pagination"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// ProductList serves the public catalog with optional store, category and
// text filters. Only active listings are returned.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParseQueryUUID(r, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := productsvc.ListParams{
			Query:      validators.SanitizeString(r.URL.Query().Get("q"), 120),
			ActiveOnly: true,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		}
		if storeID != uuid.Nil {
			params.StoreID = &storeID
		}
		if categoryID != uuid.Nil {
			params.CategoryID = &categoryID
		}

		products, next, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(products, next))
	}
}

// ProductDetail serves one product by id or slug.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		key := validators.SanitizeString(chi.URLParam(r, "productKey"), 160)
		var (
			product *models.Product
			err     error
		)
		if id, parseErr := uuid.Parse(key); parseErr == nil {
			product, err = svc.GetByID(r.Context(), id)
		} else {
			product, err = svc.GetBySlug(r.Context(), key)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// SellerCreateProduct creates a listing under the caller's store.
func SellerCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		storeID, err := actorStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), storeID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

// SellerUpdateProduct applies a partial update to one of the caller's listings.
func SellerUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		storeID, err := actorStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), storeID, productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// SellerDeactivateProduct hides a listing from the catalog without deleting
// the row.
func SellerDeactivateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		storeID, err := actorStoreID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), storeID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

type createProductRequest struct {
	Name          string            `json:"name" validate:"required"`
	Description   *string           `json:"description,omitempty"`
	CategoryID    *uuid.UUID        `json:"category_id,omitempty"`
	ListPrice     int               `json:"list_price" validate:"required,min=1"`
	DiscountPrice *int              `json:"discount_price,omitempty"`
	Stock         int               `json:"stock" validate:"min=0"`
	Images        []string          `json:"images,omitempty"`
	VariantAxes   types.VariantAxes `json:"variant_axes,omitempty"`
}

func (p createProductRequest) toInput() productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		ListPrice:     p.ListPrice,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
		Images:        p.Images,
		VariantAxes:   p.VariantAxes,
	}
}

type updateProductRequest struct {
	Name          *string            `json:"name,omitempty"`
	Description   *string            `json:"description,omitempty"`
	CategoryID    *uuid.UUID         `json:"category_id,omitempty"`
	ListPrice     *int               `json:"list_price,omitempty" validate:"omitempty,min=1"`
	DiscountPrice *int               `json:"discount_price,omitempty"`
	ClearDiscount bool               `json:"clear_discount,omitempty"`
	Stock         *int               `json:"stock,omitempty" validate:"omitempty,min=0"`
	Images        *[]string          `json:"images,omitempty"`
	VariantAxes   *types.VariantAxes `json:"variant_axes,omitempty"`
	IsActive      *bool              `json:"is_active,omitempty"`
}

func (p updateProductRequest) toInput() productsvc.UpdateProductInput {
	return productsvc.UpdateProductInput{
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		ListPrice:     p.ListPrice,
		DiscountPrice: p.DiscountPrice,
		ClearDiscount: p.ClearDiscount,
		Stock:         p.Stock,
		Images:        p.Images,
		VariantAxes:   p.VariantAxes,
		IsActive:      p.IsActive,
	}
}

type productResponse struct {
	ID            uuid.UUID         `json:"id"`
	StoreID       uuid.UUID         `json:"store_id"`
	CategoryID    *uuid.UUID        `json:"category_id,omitempty"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   *string           `json:"description,omitempty"`
	ListPrice     int               `json:"list_price"`
	DiscountPrice *int              `json:"discount_price,omitempty"`
	Stock         int               `json:"stock"`
	Images        []string          `json:"images"`
	VariantAxes   types.VariantAxes `json:"variant_axes,omitempty"`
	IsActive      bool              `json:"is_active"`
	SoldCount     int               `json:"sold_count"`
	CreatedAt     time.Time         `json:"created_at"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newProductResponse(product *models.Product) productResponse {
	if product == nil {
		return productResponse{}
	}
	return productResponse{
		ID:            product.ID,
		StoreID:       product.StoreID,
		CategoryID:    product.CategoryID,
		Name:          product.Name,
		Slug:          product.Slug,
		Description:   product.Description,
		ListPrice:     product.ListPrice,
		DiscountPrice: product.DiscountPrice,
		Stock:         product.Stock,
		Images:        append([]string{}, product.Images...),
		VariantAxes:   product.VariantAxes,
		IsActive:      product.IsActive,
		SoldCount:     product.SoldCount,
		CreatedAt:     product.CreatedAt,
	}
}

func newProductListResponse(products []models.Product, next string) productListResponse {
	out := productListResponse{
		Products:   make([]productResponse, 0, len(products)),
		NextCursor: next,
	}
	for i := range products {
		out.Products = append(out.Products, newProductResponse(&products[i]))
	}
	return out
}
