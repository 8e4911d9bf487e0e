package models

import (
	"time"

	"github.com/google/uuid"
)

// Trainer leads private classes.
type Trainer struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Tier      TrainerTier `json:"tier" db:"tier"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
