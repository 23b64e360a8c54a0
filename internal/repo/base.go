package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base holds the gorm handle shared by every domain repository.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a gorm connection for embedding into a repository.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx when one is supplied.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
