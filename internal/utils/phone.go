package utils

import "strings"

// FormatPhone normalizes a phone number to E.164 with the Brazilian country
// code, which the WhatsApp gateway expects.
func FormatPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	cleaned := digits.String()
	if cleaned == "" {
		return ""
	}
	if !strings.HasPrefix(cleaned, "55") {
		cleaned = "55" + cleaned
	}
	return "+" + cleaned
}
