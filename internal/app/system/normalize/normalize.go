// internal/app/system/normalize/normalize.go

// Package normalize provides input normalization helpers used by stores and
// handlers before values are persisted or matched against the database.
package normalize

import "strings"

// Email lowercases and trims an email address. Matching against the email
// unique index always goes through this.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person or course name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value before policy checks.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims an enrollment status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone strips spaces and dashes from a phone number, keeping any leading
// plus sign, so OTP sends and cache keys agree on one representation.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// QueryParam trims a free-form query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
