package tax

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dannyvankooten/vat"
)

// euVATPrefix maps EU member states to their VAT number prefix. Greece uses
// EL rather than its ISO code.
var euVATPrefix = map[string]string{
	"AT": "AT", "BE": "BE", "BG": "BG", "CY": "CY", "CZ": "CZ",
	"DE": "DE", "DK": "DK", "EE": "EE", "ES": "ES", "FI": "FI",
	"FR": "FR", "GR": "EL", "HR": "HR", "HU": "HU", "IE": "IE",
	"IT": "IT", "LT": "LT", "LU": "LU", "LV": "LV", "MT": "MT",
	"NL": "NL", "PL": "PL", "PT": "PT", "RO": "RO", "SE": "SE",
	"SI": "SI", "SK": "SK",
}

var (
	digitsOnly = regexp.MustCompile(`[^0-9]`)
	separators = strings.NewReplacer(" ", "", "-", "", ".", "", "/", "")
	gstPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

// ClassifyID normalizes raw for country and maps it to a gateway tax-id
// type. EU and GB numbers are format-checked against the VAT number
// patterns; ABNs are checksummed.
func ClassifyID(country, raw string) (ID, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return ID{}, ErrEmptyID
	}

	if prefix, ok := euVATPrefix[country]; ok {
		return classifyVAT(country, prefix, TypeEUVAT, value)
	}

	switch country {
	case "GB":
		return classifyVAT(country, "GB", TypeGBVAT, value)

	case "US":
		d := digitsOnly.ReplaceAllString(value, "")
		if len(d) != 9 {
			return ID{}, ErrInvalidFormat
		}
		return ID{Country: country, Type: TypeUSEIN, Value: d[:2] + "-" + d[2:]}, nil

	case "CA":
		// Stripe accepts the 9-digit business number without program suffix.
		d := digitsOnly.ReplaceAllString(value, "")
		if len(d) != 9 {
			return ID{}, ErrInvalidFormat
		}
		return ID{Country: country, Type: TypeCABN, Value: d}, nil

	case "AU":
		d := digitsOnly.ReplaceAllString(value, "")
		if !validABN(d) {
			return ID{}, ErrInvalidFormat
		}
		return ID{Country: country, Type: TypeAUABN, Value: d}, nil

	case "IN":
		v := separators.Replace(value)
		if !gstPattern.MatchString(v) {
			return ID{}, ErrInvalidFormat
		}
		return ID{Country: country, Type: TypeINGST, Value: v}, nil
	}

	return ID{}, ErrUnsupportedCountry
}

func classifyVAT(country, prefix, idType, value string) (ID, error) {
	v := separators.Replace(value)
	if !strings.HasPrefix(v, prefix) {
		v = prefix + v
	}

	ok, err := vat.ValidateNumberFormat(v)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrFormatCheck, err)
	}
	if !ok {
		return ID{}, ErrInvalidFormat
	}
	return ID{Country: country, Type: idType, Value: v}, nil
}

var abnWeights = [11]int{10, 1, 3, 5, 7, 9, 11, 13, 15, 17, 19}

// validABN applies the ATO checksum: subtract 1 from the first digit, weight
// each digit and require the sum to be divisible by 89.
func validABN(d string) bool {
	if len(d) != 11 {
		return false
	}
	sum := 0
	for i, r := range d {
		n := int(r - '0')
		if i == 0 {
			n--
		}
		sum += n * abnWeights[i]
	}
	return sum%89 == 0
}
