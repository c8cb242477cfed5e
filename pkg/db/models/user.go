package models

import (
	"time"

	"github.com/digikraal/ledgerview/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a platform account. Name doubles as the display name rows are
// attributed to on the ledger.
type User struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name                  *string    `gorm:"column:name"`
	Email                 string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash          string     `gorm:"column:password_hash;not null"`
	Role                  enums.Role `gorm:"column:role;type:text;not null"`
	TotalInvestmentAmount *string    `gorm:"column:total_investment_amount"`
	LastLoginAt           *time.Time `gorm:"column:last_login_at"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the stored name, or "" when none is set.
func (u *User) DisplayName() string {
	if u == nil || u.Name == nil {
		return ""
	}
	return *u.Name
}
