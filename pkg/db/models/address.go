package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// UserAddress is a saved delivery address belonging to a buyer account.
type UserAddress struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID     `gorm:"column:user_id;type:uuid;not null;index"`
	Label     string        `gorm:"column:label;not null"`
	Address   types.Address `gorm:"column:address;type:jsonb;serializer:json;not null"`
	IsDefault bool          `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
