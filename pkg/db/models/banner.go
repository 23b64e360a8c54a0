package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is admin-managed storefront furniture shown on the landing page.
type Banner struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string     `gorm:"column:title;not null"`
	ImageURL  string     `gorm:"column:image_url;not null"`
	LinkURL   *string    `gorm:"column:link_url"`
	IsActive  bool       `gorm:"column:is_active;not null"`
	SortOrder int        `gorm:"column:sort_order;not null;default:0"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
