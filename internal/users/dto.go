package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        enums.Role `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email                 string
	PasswordHash          string
	Name                  string
	Role                  enums.Role
	TotalInvestmentAmount *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.DisplayName(),
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	var name *string
	if trimmed := strings.TrimSpace(c.Name); trimmed != "" {
		name = &trimmed
	}

	return &models.User{
		Email:                 NormalizeEmail(c.Email),
		PasswordHash:          c.PasswordHash,
		Name:                  name,
		Role:                  c.Role,
		TotalInvestmentAmount: c.TotalInvestmentAmount,
	}
}

// NormalizeEmail lowercases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
