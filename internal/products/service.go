package products

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/pricing"
	"github.com/senjaya/lokapasar-backend/pkg/db"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// Service exposes vendor product management and storefront reads.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, params ListParams) ([]models.Product, string, error)
	Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Deactivate(ctx context.Context, storeID, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Description   *string
	CategoryID    *uuid.UUID
	ListPrice     int
	DiscountPrice *int
	Stock         int
	Images        []string
	VariantAxes   types.VariantAxes
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	CategoryID    *uuid.UUID
	ListPrice     *int
	DiscountPrice *int
	ClearDiscount bool
	Stock         *int
	Images        *[]string
	VariantAxes   *types.VariantAxes
	IsActive      *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// GetByID loads one product.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// GetBySlug loads one product by its storefront slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// List pages through the catalog.
func (s *service) List(ctx context.Context, params ListParams) ([]models.Product, string, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, next, nil
}

// Create validates and inserts a vendor product.
func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if err := validateProductInput(input.Name, input.ListPrice, input.DiscountPrice, input.Stock, input.VariantAxes); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:       storeID,
		CategoryID:    input.CategoryID,
		Name:          strings.TrimSpace(input.Name),
		Slug:          slugify(input.Name),
		Description:   input.Description,
		ListPrice:     input.ListPrice,
		DiscountPrice: input.DiscountPrice,
		Stock:         input.Stock,
		Images:        pq.StringArray(input.Images),
		VariantAxes:   input.VariantAxes,
		IsActive:      true,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "products_slug_key") {
			// Slug collision: disambiguate with a short suffix and retry once.
			product.Slug = fmt.Sprintf("%s-%s", product.Slug, uuid.NewString()[:8])
			if created, err = s.repo.Create(ctx, product); err == nil {
				return created, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

// Update applies partial edits to a vendor's own product.
func (s *service) Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.ListPrice != nil {
		product.ListPrice = *input.ListPrice
	}
	if input.ClearDiscount {
		product.DiscountPrice = nil
	} else if input.DiscountPrice != nil {
		product.DiscountPrice = input.DiscountPrice
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Images != nil {
		product.Images = pq.StringArray(*input.Images)
	}
	if input.VariantAxes != nil {
		product.VariantAxes = *input.VariantAxes
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := validateProductInput(product.Name, product.ListPrice, product.DiscountPrice, product.Stock, product.VariantAxes); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

// Deactivate hides the product from the storefront without deleting it.
func (s *service) Deactivate(ctx context.Context, storeID, productID uuid.UUID) error {
	if storeID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id and product id are required")
	}
	if err := s.repo.SetActive(ctx, productID, storeID, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func validateProductInput(name string, listPrice int, discountPrice *int, stock int, axes types.VariantAxes) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if listPrice <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "list price must be positive")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if discountPrice != nil {
		probe := &models.Product{ListPrice: listPrice, DiscountPrice: discountPrice}
		if _, err := pricing.UnitPrice(probe); err != nil {
			return err
		}
	}
	seen := map[string]struct{}{}
	for _, axis := range axes {
		if strings.TrimSpace(axis.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant axis name is required")
		}
		if len(axis.Options) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant axis needs at least one option").
				WithDetails(map[string]any{"axis": axis.Name})
		}
		if _, dup := seen[axis.Name]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate variant axis").
				WithDetails(map[string]any{"axis": axis.Name})
		}
		seen[axis.Name] = struct{}{}
	}
	return nil
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}
