package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/enums"
)

// ShippingOption is static reference data describing one delivery method.
type ShippingOption struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string               `gorm:"column:code;not null;uniqueIndex"`
	Name      string               `gorm:"column:name;not null"`
	Method    enums.ShippingMethod `gorm:"column:method;type:text;not null"`
	ETALabel  string               `gorm:"column:eta_label;not null"`
	Price     int                  `gorm:"column:price;not null"`
	IsDefault bool                 `gorm:"column:is_default;not null;default:false"`
	SortOrder int                  `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
