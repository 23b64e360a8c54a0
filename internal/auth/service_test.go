package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/senjaya/lokapasar-backend/pkg/auth"
	"github.com/senjaya/lokapasar-backend/pkg/auth/session"
	"github.com/senjaya/lokapasar-backend/pkg/config"
	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}, byID: map[uuid.UUID]*models.User{}}
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) CreateTx(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, error) {
	user.ID = uuid.New()
	copied := *user
	r.byEmail[user.Email] = &copied
	r.byID[user.ID] = &copied
	return user, nil
}

func (r *stubUserRepo) add(user *models.User) {
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
}

type stubStoreRepo struct {
	byOwner map[uuid.UUID]*models.Store
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{byOwner: map[uuid.UUID]*models.Store{}}
}

func (r *stubStoreRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	store, ok := r.byOwner[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *store
	return &copied, nil
}

func (r *stubStoreRepo) CreateTx(ctx context.Context, tx *gorm.DB, store *models.Store) (*models.Store, error) {
	store.ID = uuid.New()
	copied := *store
	r.byOwner[store.OwnerID] = &copied
	return store, nil
}

type stubSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (m *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	m.sessions[accessID] = token
	return token, nil
}

func (m *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := m.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.sessions, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	m.sessions[newID] = token
	return newID, token, nil
}

func (m *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(m.sessions, accessID)
	m.revoked = append(m.revoked, accessID)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "lokapasar",
		ExpirationMinutes: 30,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:     8 * 1024,
		ArgonTime:         1,
		ArgonParallelism:  1,
		ArgonSaltLen:      16,
		ArgonKeyLen:       32,
	}
}

func buildTestService(t *testing.T) (Service, *stubUserRepo, *stubStoreRepo, *stubSessionManager) {
	t.Helper()

	users := newStubUserRepo()
	stores := newStubStoreRepo()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       users,
		StoreRepo:      stores,
		SessionManager: sessions,
		Tx:             stubTxRunner{},
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, users, stores, sessions
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestRegisterBuyer(t *testing.T) {
	svc, users, _, _ := buildTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Dewi@Example.com",
		Password: "rahasia-kuat",
		FullName: "Dewi Lestari",
		Role:     "buyer",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != enums.UserRoleBuyer {
		t.Fatalf("expected buyer role, got %s", resp.User.Role)
	}
	if resp.User.StoreID != nil {
		t.Fatal("expected no store for buyer")
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if _, ok := users.byEmail["dewi@example.com"]; !ok {
		t.Fatal("expected email to be normalized to lowercase")
	}
}

func TestRegisterSellerOpensStore(t *testing.T) {
	svc, _, stores, _ := buildTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "tini@example.com",
		Password:  "rahasia-kuat",
		FullName:  "Bu Tini",
		Role:      "seller",
		StoreName: "Warung Bu Tini",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.StoreID == nil {
		t.Fatal("expected store id for seller")
	}
	store, err := stores.FindByOwner(context.Background(), resp.User.ID)
	if err != nil {
		t.Fatalf("find store: %v", err)
	}
	if store.Slug != "warung-bu-tini" {
		t.Fatalf("unexpected store slug %s", store.Slug)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.StoreID == nil || *claims.StoreID != store.ID {
		t.Fatal("expected store id claim in access token")
	}
	if claims.Role != enums.UserRoleSeller {
		t.Fatalf("expected seller role claim, got %s", claims.Role)
	}
}

func TestRegisterSellerRequiresStoreName(t *testing.T) {
	svc, _, _, _ := buildTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "tini@example.com",
		Password: "rahasia-kuat",
		FullName: "Bu Tini",
		Role:     "seller",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users, _, _ := buildTestService(t)
	users.add(&models.User{
		ID:    uuid.New(),
		Email: "dewi@example.com",
	})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "DEWI@example.com",
		Password: "rahasia-kuat",
		FullName: "Dewi",
		Role:     "buyer",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, users, _, _ := buildTestService(t)
	password := "rahasia-kuat"
	users.add(&models.User{
		ID:           uuid.New(),
		Email:        "dewi@example.com",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Dewi Lestari",
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "dewi@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "dewi@example.com",
		Password: "salah",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("expected generic credentials message, got %q", typed.Message())
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, users, _, _ := buildTestService(t)
	password := "rahasia-kuat"
	users.add(&models.User{
		ID:           uuid.New(),
		Email:        "nonaktif@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     false,
	})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nonaktif@example.com",
		Password: password,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, users, _, sessions := buildTestService(t)
	password := "rahasia-kuat"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "dewi@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	users.add(user)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected rotated refresh token")
	}

	// The old pair must be single use.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for reused token, got %v", err)
	}

	if len(sessions.sessions) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.sessions))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, users, _, sessions := buildTestService(t)
	password := "rahasia-kuat"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "dewi@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	users.add(user)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), login.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Fatal("expected session to be revoked")
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
