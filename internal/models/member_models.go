package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a gym member identity record.
type Member struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	NormalizedName  string     `json:"-" db:"name_normalized"`
	Email           *string    `json:"email,omitempty" db:"email"`
	Phone           *string    `json:"phone,omitempty" db:"phone"`
	IsNewMember     bool       `json:"is_new_member" db:"is_new_member"`
	LastCheckInDate *time.Time `json:"last_check_in_date,omitempty" db:"last_check_in_date"`
	ExtraCheckIns   int        `json:"extra_check_ins" db:"extra_check_ins"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasEmail reports whether the member's email equals email, ignoring case.
func (m *Member) HasEmail(email string) bool {
	if m.Email == nil || email == "" {
		return false
	}
	return NormalizeEmail(*m.Email) == NormalizeEmail(email)
}
