package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/internal/repo"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/pagination"
)

// ListParams narrows storefront product listings.
type ListParams struct {
	StoreID    *uuid.UUID
	CategoryID *uuid.UUID
	Query      string
	ActiveOnly bool
	Page       pagination.Params
}

// Repository persists products.
type Repository struct {
	repo.Base
}

// NewRepository constructs a product repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads one product by its storefront slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the full product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// SetActive flips storefront visibility; deactivation preserves historical
// order references, so there is no hard delete.
func (r *Repository) SetActive(ctx context.Context, id, storeID uuid.UUID, active bool) error {
	result := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List pages through products newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Product, string, error) {
	limit := pagination.NormalizeLimit(params.Page.Limit)

	q := r.DB(ctx).Model(&models.Product{})
	if params.StoreID != nil {
		q = q.Where("store_id = ?", *params.StoreID)
	}
	if params.CategoryID != nil {
		q = q.Where("category_id = ?", *params.CategoryID)
	}
	if params.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if term := strings.TrimSpace(params.Query); term != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	cursor, err := pagination.ParseCursor(params.Page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	var next string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// Deduct atomically reduces stock and bumps the sold counter. It refuses to
// take stock below zero.
func (r *Repository) Deduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	db := r.DB(ctx)
	if tx != nil {
		db = tx.WithContext(ctx)
	}
	result := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"sold_count": gorm.Expr("sold_count + ?", qty),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"product_id": productID, "quantity": qty})
	}
	return nil
}

// Restock reverses a deduction after an order is cancelled.
func (r *Repository) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	db := r.DB(ctx)
	if tx != nil {
		db = tx.WithContext(ctx)
	}
	return db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"sold_count": gorm.Expr("CASE WHEN sold_count >= ? THEN sold_count - ? ELSE 0 END", qty, qty),
		}).Error
}
