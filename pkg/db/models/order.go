package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/enums"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// Order represents the per-vendor order produced from a checkout. A multi
// vendor cart yields sibling orders sharing a checkout group id.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutGroupID  uuid.UUID           `gorm:"column:checkout_group_id;type:uuid;not null;index"`
	BuyerID          uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	StoreID          uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cod'"`
	ShippingAddress  types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	ShippingCode     string              `gorm:"column:shipping_code;not null"`
	ShippingName     string              `gorm:"column:shipping_name;not null"`
	ShippingETALabel string              `gorm:"column:shipping_eta_label;not null"`
	ShippingPrice    int                 `gorm:"column:shipping_price;not null"`
	Subtotal         int                 `gorm:"column:subtotal;not null"`
	Total            int                 `gorm:"column:total;not null"`
	Notes            *string             `gorm:"column:notes"`
	CancelledBy      *uuid.UUID          `gorm:"column:cancelled_by;type:uuid"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
