package phone

import (
	"strings"

	"garagehub/internal/core/domain"
)

const (
	// DefaultCountryCode is prepended when a number carries no country code
	DefaultCountryCode = "91"

	localDigits = 10
)

// IsEmail reports whether the login identifier is an email address
// rather than a phone number.
func IsEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// Normalize converts raw user input into the canonical +<countrycode><digits>
// form. Embedded separators are stripped; a bare 10-digit number gets the
// default country code.
//
//	"9876543210"    -> "+919876543210"
//	"+919876543210" -> "+919876543210"
//	"98-7654-3210"  -> "+919876543210"
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(raw, "+")

	digits := digitsOnly(raw)
	if len(digits) < localDigits {
		return "", domain.ErrInvalidPhone
	}

	if hasPlus {
		return "+" + digits, nil
	}
	if len(digits) == localDigits+len(DefaultCountryCode) && strings.HasPrefix(digits, DefaultCountryCode) {
		return "+" + digits, nil
	}
	if len(digits) == localDigits {
		return "+" + DefaultCountryCode + digits, nil
	}
	return "", domain.ErrInvalidPhone
}

// IsCompleteCode reports whether code is a full 6-digit OTP. Partial or
// non-numeric codes are rejected before any provider round trip.
func IsCompleteCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
