package stores

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindBySlug(ctx context.Context, slug string) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// Service exposes storefront operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*models.Store, error)
	Update(ctx context.Context, ownerID, storeID uuid.UUID, input UpdateStoreInput) (*models.Store, error)
}

// CreateStoreInput captures the fields needed to open a storefront.
type CreateStoreInput struct {
	Name        string
	Description *string
	LogoURL     *string
	Address     *types.Address
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name        *string
	Description *string
	LogoURL     *string
	Address     *types.Address
	IsActive    *bool
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "load store")
	}
	return store, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	store, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapStoreErr(err, "load store")
	}
	return store, nil
}

func (s *service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	store, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapStoreErr(err, "load store")
	}
	return store, nil
}

// Create opens a storefront for a seller. Each seller owns at most one store.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*models.Store, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	if input.Address != nil {
		if err := input.Address.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
		}
	}

	if _, err := s.repo.FindByOwner(ctx, ownerID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller already owns a store")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store ownership")
	}

	store := &models.Store{
		OwnerID:     ownerID,
		Name:        name,
		Slug:        slugify(name),
		Description: input.Description,
		LogoURL:     input.LogoURL,
		Address:     input.Address,
		IsActive:    true,
	}

	created, err := s.repo.Create(ctx, store)
	if err != nil {
		if db.IsUniqueViolation(err, "stores_slug_key") {
			store.Slug = fmt.Sprintf("%s-%s", store.Slug, uuid.NewString()[:8])
			if created, err = s.repo.Create(ctx, store); err == nil {
				return created, nil
			}
		}
		if db.IsUniqueViolation(err, "stores_owner_id_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller already owns a store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return created, nil
}

// Update applies partial edits to a store the actor owns.
func (s *service) Update(ctx context.Context, ownerID, storeID uuid.UUID, input UpdateStoreInput) (*models.Store, error) {
	store, err := s.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store is owned by another seller")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
		}
		store.Name = name
	}
	if input.Description != nil {
		store.Description = input.Description
	}
	if input.LogoURL != nil {
		store.LogoURL = input.LogoURL
	}
	if input.Address != nil {
		if err := input.Address.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
		}
		store.Address = input.Address
	}
	if input.IsActive != nil {
		store.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return store, nil
}

func mapStoreErr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}
