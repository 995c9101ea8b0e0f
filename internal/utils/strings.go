package utils

import "strings"

// Trimmed returns the string with surrounding whitespace removed
func Trimmed(s string) string {
	return strings.TrimSpace(s)
}

// NullableTrimmed trims the string and returns nil when nothing remains.
// Empty form fields are stored as absent, not as empty strings.
func NullableTrimmed(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// JoinName joins a first and last name into a single full-name field
func JoinName(first, last string) string {
	return first + " " + last
}
