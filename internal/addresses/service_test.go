package addresses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/types"
)

type stubAddressRepo struct {
	rows map[uuid.UUID]*models.UserAddress
}

func newStubAddressRepo() *stubAddressRepo {
	return &stubAddressRepo{rows: map[uuid.UUID]*models.UserAddress{}}
}

func (r *stubAddressRepo) Create(ctx context.Context, address *models.UserAddress) (*models.UserAddress, error) {
	address.ID = uuid.New()
	copied := *address
	r.rows[address.ID] = &copied
	return address, nil
}

func (r *stubAddressRepo) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.UserAddress, error) {
	address, ok := r.rows[id]
	if !ok || address.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *address
	return &copied, nil
}

func (r *stubAddressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	var out []models.UserAddress
	for _, address := range r.rows {
		if address.UserID == userID {
			out = append(out, *address)
		}
	}
	return out, nil
}

func (r *stubAddressRepo) Update(ctx context.Context, address *models.UserAddress) error {
	copied := *address
	r.rows[address.ID] = &copied
	return nil
}

func (r *stubAddressRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	address, ok := r.rows[id]
	if !ok || address.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *stubAddressRepo) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	for _, address := range r.rows {
		if address.UserID == userID {
			address.IsDefault = false
		}
	}
	return nil
}

func testAddress() types.Address {
	return types.Address{
		Recipient:  "Budi Santoso",
		Phone:      "+628123456789",
		Line1:      "Jl. Merdeka No. 10",
		District:   "Sumur Bandung",
		City:       "Bandung",
		Province:   "Jawa Barat",
		PostalCode: "40111",
	}
}

func TestCreateAddressFirstBecomesDefault(t *testing.T) {
	t.Parallel()

	repo := newStubAddressRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, AddressInput{Label: "Rumah", Address: testAddress()})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("expected first address to become default")
	}

	second, err := svc.Create(ctx, userID, AddressInput{Label: "Kantor", Address: testAddress()})
	if err != nil {
		t.Fatalf("create second address: %v", err)
	}
	if second.IsDefault {
		t.Fatal("expected second address to stay non-default")
	}
}

func TestCreateAddressAsDefaultDemotesOthers(t *testing.T) {
	t.Parallel()

	repo := newStubAddressRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()
	userID := uuid.New()

	first, _ := svc.Create(ctx, userID, AddressInput{Label: "Rumah", Address: testAddress()})
	second, err := svc.Create(ctx, userID, AddressInput{Label: "Kantor", Address: testAddress(), IsDefault: true})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	if !second.IsDefault {
		t.Fatal("expected new address to be default")
	}
	reloaded, _ := svc.Get(ctx, userID, first.ID)
	if reloaded.IsDefault {
		t.Fatal("expected prior default to be demoted")
	}
}

func TestCreateAddressValidation(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(newStubAddressRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), AddressInput{Label: "  ", Address: testAddress()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank label, got %v", err)
	}

	broken := testAddress()
	broken.City = ""
	_, err = svc.Create(ctx, uuid.New(), AddressInput{Label: "Rumah", Address: broken})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for incomplete address, got %v", err)
	}
}

func TestAddressOwnerScoping(t *testing.T) {
	t.Parallel()

	repo := newStubAddressRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()
	userID := uuid.New()

	created, _ := svc.Create(ctx, userID, AddressInput{Label: "Rumah", Address: testAddress()})

	_, err := svc.Get(ctx, uuid.New(), created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}

	err = svc.Delete(ctx, uuid.New(), created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on foreign delete, got %v", err)
	}

	if err := svc.Delete(ctx, userID, created.ID); err != nil {
		t.Fatalf("delete address: %v", err)
	}
}

func TestSetDefault(t *testing.T) {
	t.Parallel()

	repo := newStubAddressRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()
	userID := uuid.New()

	first, _ := svc.Create(ctx, userID, AddressInput{Label: "Rumah", Address: testAddress()})
	second, _ := svc.Create(ctx, userID, AddressInput{Label: "Kantor", Address: testAddress()})

	if err := svc.SetDefault(ctx, userID, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	reloadedFirst, _ := svc.Get(ctx, userID, first.ID)
	reloadedSecond, _ := svc.Get(ctx, userID, second.ID)
	if reloadedFirst.IsDefault || !reloadedSecond.IsDefault {
		t.Fatal("expected default flag to move to the second address")
	}
}
