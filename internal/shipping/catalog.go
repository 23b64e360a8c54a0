package shipping

import (
	"context"

	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

// Catalog loads the shipping option table from storage.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Load returns all shipping options ordered for display. The seed migration
// guarantees the table is never empty.
func (c *Catalog) Load(ctx context.Context) ([]models.ShippingOption, error) {
	var options []models.ShippingOption
	if err := c.db.WithContext(ctx).
		Order("sort_order asc").
		Find(&options).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipping options")
	}
	return options, nil
}
