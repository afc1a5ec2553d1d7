package address

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// E164 formats a phone number for submission to the payment gateway,
// using country as the region for numbers without a leading plus sign.
// If the number cannot be parsed as a valid number it returns the
// formatter's output instead.
func E164(phone, country string) string {
	formatted := FormatPhone(strings.TrimSpace(phone))
	if formatted == "" {
		return ""
	}

	region := strings.ToUpper(strings.TrimSpace(country))
	num, err := phonenumbers.Parse(formatted, region)
	if err != nil {
		return formatted
	}
	if !phonenumbers.IsValidNumber(num) {
		return formatted
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// MaskPhone hides all but the last four digits of a phone number, for
// logging.
func MaskPhone(phone string) string {
	b := []byte(FormatPhone(phone))
	keep := 4
	if len(b) <= 4 {
		keep = 1
	}
	for i := 0; i < len(b)-keep; i++ {
		if isDigit(b[i]) {
			b[i] = '*'
		}
	}
	return string(b)
}
