// Package teamcode normalises and validates the human-entered codes teams use to join and
// administer their calendar.
package teamcode

import (
	"regexp"
	"strings"
)

const (
	// MinLength is the shortest accepted code.
	MinLength = 4
	// MaxLength is the longest accepted code.
	MaxLength = 10
)

var (
	normalizedPattern = regexp.MustCompile(`^[A-Z0-9]{4,10}$`)
	strictPattern     = regexp.MustCompile(`^[A-Za-z0-9]{4,10}$`)
)

// Normalize strips every character outside [A-Za-z0-9] and uppercases the remainder.
func Normalize(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether an already normalised code is 4-10 uppercase alphanumerics.
func Validate(code string) bool {
	return normalizedPattern.MatchString(code)
}

// ValidateStrict reports whether raw input is 4-10 alphanumerics with nothing that
// Normalize would strip. Case is preserved and not significant to the check.
func ValidateStrict(raw string) bool {
	return strictPattern.MatchString(raw)
}

// NormalizeAndValidate returns the normalised form of code and whether it is acceptable.
func NormalizeAndValidate(code string) (string, bool) {
	normalized := Normalize(code)
	return normalized, Validate(normalized)
}
