package addresses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

type addressRepository interface {
	Create(ctx context.Context, address *models.UserAddress) (*models.UserAddress, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.UserAddress, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	Update(ctx context.Context, address *models.UserAddress) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}

// Service manages a buyer's saved delivery addresses.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.UserAddress, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.UserAddress, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error
}

// AddressInput carries a label plus the delivery address fields.
type AddressInput struct {
	Label     string
	Address   types.Address
	IsDefault bool
}

type service struct {
	repo addressRepository
}

// NewService builds an address service with the provided repository.
func NewService(repo addressRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.UserAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address label is required")
	}
	if err := input.Address.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
	}

	if input.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
	} else {
		// The first saved address becomes the default automatically.
		existing, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
		}
		if len(existing) == 0 {
			input.IsDefault = true
		}
	}

	address := &models.UserAddress{
		UserID:    userID,
		Label:     label,
		Address:   input.Address,
		IsDefault: input.IsDefault,
	}
	created, err := s.repo.Create(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	address, err := s.repo.FindByIDAndUser(ctx, addressID, userID)
	if err != nil {
		return nil, mapAddressErr(err, "load address")
	}
	return address, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.UserAddress, error) {
	address, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address label is required")
	}
	if err := input.Address.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
	}

	address.Label = label
	address.Address = input.Address
	if input.IsDefault && !address.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
		address.IsDefault = true
	}

	if err := s.repo.Update(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return address, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.repo.Delete(ctx, addressID, userID); err != nil {
		return mapAddressErr(err, "delete address")
	}
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	address, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return err
	}
	if address.IsDefault {
		return nil
	}
	if err := s.repo.ClearDefault(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
	}
	address.IsDefault = true
	if err := s.repo.Update(ctx, address); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return nil
}

func mapAddressErr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
