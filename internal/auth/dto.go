package auth

import (
	"github.com/digikraal/ledgerview/internal/users"
	"github.com/digikraal/ledgerview/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest pairs the presented (possibly expired) access token with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is returned when a session is rotated.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest is the self-service signup payload. Role defaults to Investor.
type RegisterRequest struct {
	Name     string     `json:"name" validate:"required,max=200"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	Role     enums.Role `json:"role,omitempty"`
}

// ProvisionRequest is the admin-only account creation payload. Unlike
// RegisterRequest it may create admins and carries the committed capital.
type ProvisionRequest struct {
	Name                  string     `json:"name" validate:"required,max=200"`
	Email                 string     `json:"email" validate:"required,email"`
	Password              string     `json:"password" validate:"required,min=8"`
	Role                  enums.Role `json:"role" validate:"required"`
	TotalInvestmentAmount *string    `json:"total_investment_amount,omitempty"`
}
