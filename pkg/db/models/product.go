package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// Product represents the canonical vendor listing. Prices are stored in the
// smallest currency unit; DiscountPrice, when set, must stay strictly below
// ListPrice (enforced at the service layer and re-checked by pricing).
type Product struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID       uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	CategoryID    *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	Name          string            `gorm:"column:name;not null"`
	Slug          string            `gorm:"column:slug;not null;uniqueIndex"`
	Description   *string           `gorm:"column:description"`
	ListPrice     int               `gorm:"column:list_price;not null"`
	DiscountPrice *int              `gorm:"column:discount_price"`
	Stock         int               `gorm:"column:stock;not null;default:0"`
	Images        pq.StringArray    `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	VariantAxes   types.VariantAxes `gorm:"column:variant_axes;type:jsonb;serializer:json"`
	IsActive      bool              `gorm:"column:is_active;not null"`
	SoldCount     int               `gorm:"column:sold_count;not null;default:0"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
