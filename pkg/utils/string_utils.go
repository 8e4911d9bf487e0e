package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if the trimmed
// string is empty. Optional columns stay NULL instead of holding "".
func NewNullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
