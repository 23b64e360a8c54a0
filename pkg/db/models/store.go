package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/types"
)

// Store represents a vendor storefront owned by a seller account.
type Store struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Name        string         `gorm:"column:name;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description *string        `gorm:"column:description"`
	LogoURL     *string        `gorm:"column:logo_url"`
	Address     *types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	IsActive    bool           `gorm:"column:is_active;not null"`
	Products    []Product      `gorm:"foreignKey:StoreID"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
