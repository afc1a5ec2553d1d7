package address_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRules(t *testing.T) *address.RuleBook {
	t.Helper()
	rules, err := address.DefaultRules()
	require.NoError(t, err)
	return rules
}

func TestRuleBook_Resolve(t *testing.T) {
	rules := newRules(t)

	tests := []struct {
		name        string
		code        string
		wantCode    string
		wantDefault bool
	}{
		{name: "US", code: "US", wantCode: "US"},
		{name: "GB", code: "GB", wantCode: "GB"},
		{name: "CA", code: "CA", wantCode: "CA"},
		{name: "AU", code: "AU", wantCode: "AU"},
		{name: "IN", code: "IN", wantCode: "IN"},
		{name: "DE", code: "DE", wantCode: "DE"},
		{name: "lower case", code: "gb", wantCode: "GB"},
		{name: "surrounding whitespace", code: " de ", wantCode: "DE"},
		{name: "unlisted country", code: "FR", wantCode: address.DefaultCode, wantDefault: true},
		{name: "empty code", code: "", wantCode: address.DefaultCode, wantDefault: true},
		{name: "alpha-3 code", code: "USA", wantCode: address.DefaultCode, wantDefault: true},
		{name: "digits", code: "12", wantCode: address.DefaultCode, wantDefault: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := rules.Resolve(tt.code)
			assert.Equal(t, tt.wantCode, rule.Code)
			assert.Equal(t, tt.wantDefault, rule.IsDefault())
			assert.NotNil(t, rule.PostalPattern, "every resolved rule has a postal pattern")
			assert.NotEmpty(t, rule.PostalMessage)
		})
	}
}

func TestRuleBook_Countries(t *testing.T) {
	rules := newRules(t)

	if diff := cmp.Diff([]string{"AU", "CA", "DE", "GB", "IN", "US"}, rules.Countries()); diff != "" {
		t.Errorf("Countries() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, rules.IsSupported("us"))
	assert.False(t, rules.IsSupported("FR"))
	assert.False(t, rules.IsSupported(address.DefaultCode))
}

func TestRuleBook_LabelsAndMessages(t *testing.T) {
	rules := newRules(t)

	us := rules.Resolve("US")
	assert.Equal(t, "ZIP Code", us.PostalLabel)
	assert.Equal(t, "State", us.StateLabel)
	assert.Equal(t, "Street Address", us.AddressLabel, "inherited from default")
	assert.Equal(t, "Phone Number", us.PhoneLabel, "inherited from default")
	assert.Equal(t, "Please enter a valid ZIP code (e.g., 10001 or 10001-1234)", us.PostalMessage)

	gb := rules.Resolve("GB")
	assert.Equal(t, "Postcode", gb.PostalLabel)
	assert.Equal(t, "VAT Number", gb.TaxIDLabel)

	def := rules.Resolve("JP")
	assert.Equal(t, "Please enter a valid postal code", def.PostalMessage)
	assert.Equal(t, address.PostalFormatPassthrough, def.PostalFormat)
	assert.Equal(t, address.KeysAlnumSpaceHyphen, def.PostalKeys)
}

func TestDefaultRule_IsPermissive(t *testing.T) {
	def := newRules(t).Resolve("NL")

	for _, postal := range []string{"1012 AB", "75001", "SE-123", "abc", "0123456789"} {
		assert.True(t, def.MatchPostal(postal), "default should accept %q", postal)
	}
	for _, postal := range []string{"12", "01234567890", "12#45", "1012_AB"} {
		assert.False(t, def.MatchPostal(postal), "default should reject %q", postal)
	}
}

func TestLoadRules_Errors(t *testing.T) {
	validDefault := `
default:
  postal:
    pattern: '^.{3,10}$'
    message: bad
    format: passthrough
    keys: alnum_space_hyphen
`
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing default",
			yaml:    "countries: {}\n",
			wantErr: "no default rule",
		},
		{
			name: "bad pattern",
			yaml: validDefault + `
countries:
  US:
    postal:
      pattern: '^(\d{5}$'
      format: us_zip
      keys: digits_hyphen
`,
			wantErr: "bad postal pattern",
		},
		{
			name: "unknown format",
			yaml: validDefault + `
countries:
  US:
    postal:
      pattern: '^\d{5}$'
      format: zip9
      keys: digits_hyphen
`,
			wantErr: "unknown postal format",
		},
		{
			name: "digits without max length",
			yaml: validDefault + `
countries:
  AU:
    postal:
      pattern: '^\d{4}$'
      format: digits
      keys: digits
`,
			wantErr: "positive max_length",
		},
		{
			name: "unknown key class",
			yaml: validDefault + `
countries:
  AU:
    postal:
      pattern: '^\d{4}$'
      format: digits
      max_length: 4
      keys: anything
`,
			wantErr: "unknown postal key class",
		},
		{
			name: "invalid country code",
			yaml: validDefault + `
countries:
  USA:
    postal:
      pattern: '^\d{5}$'
      format: us_zip
      keys: digits_hyphen
`,
			wantErr: "invalid country code",
		},
		{
			name:    "unknown yaml field",
			yaml:    validDefault + "extra: true\n",
			wantErr: "failed to parse rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := address.LoadRules(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRules_Override(t *testing.T) {
	src := `
default:
  labels:
    postal: Postal Code
  postal:
    pattern: '^[0-9]{3,10}$'
    message: Digits only
    format: passthrough
    keys: digits
countries:
  nl:
    labels:
      postal: Postcode
    postal:
      pattern: '^\d{4} ?[A-Z]{2}$'
      message: Please enter a valid Dutch postcode
      format: passthrough
      keys: alnum_space
`
	rules, err := address.LoadRules(strings.NewReader(src))
	require.NoError(t, err)

	nl := rules.Resolve("NL")
	assert.Equal(t, "NL", nl.Code)
	assert.Equal(t, "Postcode", nl.PostalLabel)
	assert.True(t, nl.MatchPostal("1012 AB"))
	assert.Equal(t, "1012ab", rules.FormatField("1012ab", "NL", address.FieldPostalCode))

	us := rules.Resolve("US")
	assert.True(t, us.IsDefault(), "US is not in the override file")
	assert.Equal(t, "Digits only", us.PostalMessage)
}

func TestNewRuleBook_RejectsDuplicates(t *testing.T) {
	def := newRules(t).Resolve("")
	us := newRules(t).Resolve("US")

	_, err := address.NewRuleBook(def, us, us)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate rule for US")
}

func TestRuleBook_ConcurrentUse(t *testing.T) {
	rules := newRules(t)
	validator := address.NewBasicValidator(rules)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			country := []string{"US", "GB", "CA", "AU", "IN", "DE", "FR"}[i%7]
			for j := 0; j < 200; j++ {
				rules.Resolve(country)
				rules.FormatField("sw1a1aa 100011234", country, address.FieldPostalCode)
				rules.FormatField("+1 (555) 123-4567", country, address.FieldPhoneNumber)
				_, err := validator.Validate(t.Context(), address.Address{Country: country, PostalCode: "10001"})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()
}
