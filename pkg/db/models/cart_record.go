package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/enums"
)

// CartRecord is the persisted snapshot of a buyer's active cart. The in-memory
// aggregate is authoritative during a session; the record survives it.
type CartRecord struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID   uuid.UUID        `gorm:"column:buyer_id;type:uuid;not null;index"`
	Status    enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Subtotal  int              `gorm:"column:subtotal;not null;default:0"`
	ItemCount int              `gorm:"column:item_count;not null;default:0"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
