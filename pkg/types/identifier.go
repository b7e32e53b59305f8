package types

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// NormalizeID trims surrounding whitespace and lowercases an identifier.
// It does not strip disallowed characters; use IsValidID on the result.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// IsValidID reports whether id is a normalized, non-empty slug made only of
// lowercase letters, digits, underscores and hyphens.
func IsValidID(id string) bool {
	return identifierPattern.MatchString(id)
}

// NormalizeIDs normalizes every element of ids into a new slice.
// A nil input yields an empty, non-nil slice.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, NormalizeID(id))
	}
	return out
}
