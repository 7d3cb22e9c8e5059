package notification

import "strings"

// FormatPhone normalizes a phone number into the provider's expected
// international form: digits only, country prefix first. A leading
// zero is replaced by the configured prefix.
func FormatPhone(phone, countryPrefix string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, countryPrefix):
		return digits
	case strings.HasPrefix(digits, "0"):
		return countryPrefix + digits[1:]
	default:
		return countryPrefix + digits
	}
}
