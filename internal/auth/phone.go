package auth

import "strings"

// NormalizePhone canonicalizes a phone number to digits-only form with the
// country code kept, e.g. "+998 90 123-45-67" -> "998901234567".
//
// The rule: drop separators (spaces, hyphens, dots, parentheses), then strip
// exactly one international-prefix marker ("+", "00" or a single leading "0").
// Stripping is done once so a significant zero inside the number survives.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, raw)

	switch {
	case strings.HasPrefix(cleaned, "+"):
		cleaned = cleaned[1:]
	case strings.HasPrefix(cleaned, "00"):
		cleaned = cleaned[2:]
	case strings.HasPrefix(cleaned, "0"):
		cleaned = cleaned[1:]
	}

	if len(cleaned) < 9 || len(cleaned) > 15 {
		return "", ErrInvalidPhone
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return cleaned, nil
}

// MaskPhone masks a phone number for logging, e.g. 998901234567 -> 99********67.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return phone[:2] + strings.Repeat("*", len(phone)-4) + phone[len(phone)-2:]
}
