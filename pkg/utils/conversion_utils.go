package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseID parses an entity id, rejecting anything that is not a UUID.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed id %q: %w", s, err)
	}
	return id, nil
}

// ParseOptionalID parses an optional id; empty input yields nil.
func ParseOptionalID(s *string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := ParseID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
