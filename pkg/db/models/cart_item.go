package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// CartItem persists one product+options line tied to a CartRecord. Identity
// within a cart is (product_id, selected options); the same product with a
// different selection is a distinct line. Position preserves first-insertion
// order across snapshot rewrites, which share a single created_at.
type CartItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID             `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	StoreID         uuid.UUID             `gorm:"column:store_id;type:uuid;not null"`
	Position        int                   `gorm:"column:position;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	UnitPrice       int                   `gorm:"column:unit_price;not null"`
	LineSubtotal    int                   `gorm:"column:line_subtotal;not null"`
	SelectedOptions types.SelectedOptions `gorm:"column:selected_options;type:jsonb;serializer:json"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
