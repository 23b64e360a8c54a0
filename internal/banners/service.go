package banners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
)

type bannerRepository interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Banner, error)
	ListAll(ctx context.Context) ([]models.Banner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	Create(ctx context.Context, banner *models.Banner) (*models.Banner, error)
	Update(ctx context.Context, banner *models.Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages landing page banners.
type Service interface {
	ListActive(ctx context.Context) ([]models.Banner, error)
	ListAll(ctx context.Context) ([]models.Banner, error)
	Create(ctx context.Context, input BannerInput) (*models.Banner, error)
	Update(ctx context.Context, id uuid.UUID, input BannerInput) (*models.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BannerInput carries the editable banner fields.
type BannerInput struct {
	Title     string
	ImageURL  string
	LinkURL   *string
	IsActive  bool
	SortOrder int
	StartsAt  *time.Time
	EndsAt    *time.Time
}

type service struct {
	repo bannerRepository
	now  func() time.Time
}

// NewService builds a banner service.
func NewService(repo bannerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Banner, error) {
	rows, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list banners")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Banner, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list banners")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, input BannerInput) (*models.Banner, error) {
	if err := validateBanner(input); err != nil {
		return nil, err
	}
	banner := &models.Banner{
		Title:     strings.TrimSpace(input.Title),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		LinkURL:   input.LinkURL,
		IsActive:  input.IsActive,
		SortOrder: input.SortOrder,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
	}
	created, err := s.repo.Create(ctx, banner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create banner")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input BannerInput) (*models.Banner, error) {
	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load banner")
	}
	if err := validateBanner(input); err != nil {
		return nil, err
	}

	banner.Title = strings.TrimSpace(input.Title)
	banner.ImageURL = strings.TrimSpace(input.ImageURL)
	banner.LinkURL = input.LinkURL
	banner.IsActive = input.IsActive
	banner.SortOrder = input.SortOrder
	banner.StartsAt = input.StartsAt
	banner.EndsAt = input.EndsAt

	if err := s.repo.Update(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update banner")
	}
	return banner, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete banner")
	}
	return nil
}

func validateBanner(input BannerInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "banner title is required")
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "banner image is required")
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.EndsAt.After(*input.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "banner end must be after start")
	}
	return nil
}
