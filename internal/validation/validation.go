package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// UUIDRegex validates UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUUID checks if the string is a valid UUID format
func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// ParseInteger parses a base-10 integer, ignoring surrounding whitespace.
func ParseInteger(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// IsInteger checks if the string is a base-10 integer
func IsInteger(s string) bool {
	_, err := ParseInteger(s)
	return err == nil
}

// MaxLength reports whether s has at most n characters
func MaxLength(s string, n int) bool {
	return utf8.RuneCountInString(s) <= n
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}
