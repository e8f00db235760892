package helpers

import (
	"strings"
)

// CollapseSpaces replaces every run of whitespace (including newlines and
// full-width spaces) with a single space and trims the result.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
