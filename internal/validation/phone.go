package validation

import (
	"strings"
	"unicode"

	"wanotify/internal/errors"
)

// FormatNumber normalizes a phone number for the vendor API by stripping a
// single leading "+". No other formatting (spaces, dashes, leading zeros) is
// touched; full E.164 normalization is intentionally out of scope.
func FormatNumber(number string) string {
	if strings.HasPrefix(number, "+") {
		return number[1:]
	}
	return number
}

// ValidatePhoneNumber checks that a normalized recipient looks like a
// sendable number. It is advisory only; FormatNumber never rejects input.
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return errors.New(errors.ErrCodeInvalidInput, "phone number cannot be empty")
	}

	cleaned := strings.TrimPrefix(phone, "+")

	if len(cleaned) > 20 {
		return errors.New(errors.ErrCodeInvalidInput, "phone number too long (max 20 digits)")
	}

	for _, char := range cleaned {
		if !unicode.IsDigit(char) {
			return errors.New(errors.ErrCodeInvalidInput, "phone number must contain only digits")
		}
	}

	return nil
}
