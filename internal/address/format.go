package address

import "strings"

// MaxPhoneLength is the longest phone value the formatter keeps, leading
// plus sign included.
const MaxPhoneLength = 15

// FormatField normalizes a raw postal code or phone number for the given
// country. Other fields are returned unchanged. The result is stable under
// repeated application, so it is safe to run on every keystroke.
func (b *RuleBook) FormatField(raw, country string, field Field) string {
	switch field {
	case FieldPhoneNumber:
		return FormatPhone(raw)
	case FieldPostalCode:
		return b.Resolve(country).FormatPostal(raw)
	}
	return raw
}

// FormatPostal applies the rule's postal formatting strategy.
func (r CountryRule) FormatPostal(raw string) string {
	switch r.PostalFormat {
	case PostalFormatUSZip:
		return formatUSZip(raw)
	case PostalFormatUKPostcode:
		return formatUKPostcode(raw)
	case PostalFormatCAPostal:
		return formatCAPostal(raw)
	case PostalFormatDigits:
		return truncate(keep(raw, isDigit), r.PostalMaxLength)
	}
	return raw
}

// FormatPhone keeps digits and a single leading plus sign, capped at
// MaxPhoneLength characters.
func FormatPhone(raw string) string {
	cleaned := keep(raw, func(c byte) bool { return isDigit(c) || c == '+' })
	digits := keep(cleaned, isDigit)
	if strings.HasPrefix(cleaned, "+") {
		digits = "+" + digits
	}
	return truncate(digits, MaxPhoneLength)
}

// formatUSZip renders ZIP or ZIP+4. A hyphen typed by the user is kept so
// partial input like "10001-" survives; the first run of digits is capped
// at 5 and everything after the first hyphen at 4.
func formatUSZip(raw string) string {
	cleaned := keep(raw, func(c byte) bool { return isDigit(c) || c == '-' })

	if i := strings.IndexByte(cleaned, '-'); i >= 0 {
		head := truncate(cleaned[:i], 5)
		tail := truncate(strings.ReplaceAll(cleaned[i+1:], "-", ""), 4)
		return head + "-" + tail
	}
	if len(cleaned) > 5 {
		return cleaned[:5] + "-" + truncate(cleaned[5:], 4)
	}
	return cleaned
}

// formatUKPostcode separates the inward code (last three characters) from
// the outward code with a single space.
func formatUKPostcode(raw string) string {
	cleaned := []rune(strings.ReplaceAll(strings.ToUpper(raw), " ", ""))
	if n := len(cleaned); n > 3 {
		return string(cleaned[:n-3]) + " " + string(cleaned[n-3:])
	}
	return string(cleaned)
}

// formatCAPostal renders the forward sortation area and local delivery
// unit as "A1A 1A1".
func formatCAPostal(raw string) string {
	cleaned := strings.ToUpper(keep(raw, isAlnum))
	if len(cleaned) > 3 {
		return cleaned[:3] + " " + truncate(cleaned[3:], 3)
	}
	return cleaned
}

func keep(s string, ok func(byte) bool) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if ok(s[i]) {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isDigit(c) || isLetter(c)
}
