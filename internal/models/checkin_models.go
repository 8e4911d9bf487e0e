package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is the immutable record of one visit. CardID is set exactly when
// the visit was billed against a card, i.e. when IsExtra is false.
type CheckIn struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	MemberID      uuid.UUID     `json:"member_id" db:"member_id"`
	CardID        *uuid.UUID    `json:"card_id" db:"card_id"`
	TrainerID     *uuid.UUID    `json:"trainer_id,omitempty" db:"trainer_id"`
	ClassCategory ClassCategory `json:"class_category" db:"class_category"`
	TimeSlot      string        `json:"time_slot" db:"time_slot"`
	ClassPeriod   *string       `json:"class_period,omitempty" db:"class_period"`
	CheckInDate   time.Time     `json:"check_in_date" db:"check_in_date"`
	IsExtra       bool          `json:"is_extra" db:"is_extra"`
	Is1v2         bool          `json:"is_1v2" db:"is_1v2"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// Billed reports whether the card reference agrees with the extra flag.
func (c *CheckIn) Billed() bool {
	return c.CardID != nil && !c.IsExtra
}

// CheckInFilters narrows check-in listings.
type CheckInFilters struct {
	MemberID *uuid.UUID
	CardID   *uuid.UUID
	Date     *time.Time
	Page     int
	PageSize int
}
