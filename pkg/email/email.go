// Package email derives display values from email addresses.
package email

import (
	"strings"
	"unicode"
)

// DeriveNameFromEmail guesses a first and last name from the local part of an
// address, so accounts created without an explicit name still render one on
// the administration pages. "jane.doe@example.com" becomes ("Jane", "Doe");
// when nothing usable is found both halves fall back to "User".
func DeriveNameFromEmail(email string) (string, string) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User", "User"
	}

	first := title(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = title(parts[len(parts)-1])
	}
	return first, last
}

func title(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
