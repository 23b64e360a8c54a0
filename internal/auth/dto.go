package auth

import (
	"github.com/google/uuid"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
)

// RegisterRequest is the payload accepted to create a new account.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FullName  string `json:"full_name" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
	Role      string `json:"role" validate:"required,oneof=buyer seller"`
	StoreName string `json:"store_name" validate:"required_if=Role seller"`
}

// LoginRequest is the payload accepted to authenticate.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token pair presented by a client.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserSummary is the account shape returned to clients.
type UserSummary struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Phone    *string        `json:"phone,omitempty"`
	Role     enums.UserRole `json:"role"`
	StoreID  *uuid.UUID     `json:"store_id,omitempty"`
}

// AuthResponse carries a freshly minted token pair.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserSummary `json:"user"`
}

func summarize(user *models.User, storeID *uuid.UUID) UserSummary {
	return UserSummary{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Role:     user.Role,
		StoreID:  storeID,
	}
}
