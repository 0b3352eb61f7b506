package utils

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, " "))
}

// NormalizeKey lowercases s and collapses runs of whitespace, so that
// descriptions differing only in case or spacing compare equal
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(SanitizeString(s))), " ")
}
