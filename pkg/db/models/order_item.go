package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// OrderItem freezes one line of an order. UnitPrice is the resolved price at
// composition time and never changes with later product edits.
type OrderItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string                `gorm:"column:product_name;not null"`
	ProductImage    *string               `gorm:"column:product_image"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	UnitPrice       int                   `gorm:"column:unit_price;not null"`
	LineTotal       int                   `gorm:"column:line_total;not null"`
	SelectedOptions types.SelectedOptions `gorm:"column:selected_options;type:jsonb;serializer:json"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}
