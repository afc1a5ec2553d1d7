package address

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCode is the key of the fallback rule in the rule asset.
const DefaultCode = "default"

//go:embed rules.yaml
var defaultRulesYAML []byte

// PostalFormat selects the postal code formatting strategy of a rule.
type PostalFormat string

const (
	PostalFormatUSZip       PostalFormat = "us_zip"
	PostalFormatUKPostcode  PostalFormat = "uk_postcode"
	PostalFormatCAPostal    PostalFormat = "ca_postal"
	PostalFormatDigits      PostalFormat = "digits"
	PostalFormatPassthrough PostalFormat = "passthrough"
)

// KeyClass selects which characters the postal keystroke filter accepts.
type KeyClass string

const (
	KeysDigitsHyphen     KeyClass = "digits_hyphen"
	KeysAlnumSpace       KeyClass = "alnum_space"
	KeysDigits           KeyClass = "digits"
	KeysAlnumSpaceHyphen KeyClass = "alnum_space_hyphen"
)

// CountryRule governs labels, placeholders and postal code handling for
// one country, or for every unlisted country when Code is DefaultCode.
type CountryRule struct {
	Code string

	AddressLabel string
	CityLabel    string
	StateLabel   string
	PostalLabel  string
	PhoneLabel   string
	TaxIDLabel   string

	CityPlaceholder   string
	StatePlaceholder  string
	PostalPlaceholder string
	PhonePlaceholder  string
	TaxIDPlaceholder  string

	PostalPattern   *regexp.Regexp
	PostalMessage   string
	PostalFormat    PostalFormat
	PostalMaxLength int
	PostalKeys      KeyClass
}

// IsDefault reports whether r is the fallback rule.
func (r CountryRule) IsDefault() bool {
	return r.Code == DefaultCode
}

// MatchPostal reports whether postal fully matches the rule's pattern.
func (r CountryRule) MatchPostal(postal string) bool {
	return r.PostalPattern != nil && r.PostalPattern.MatchString(postal)
}

// RuleBook is the immutable set of country rules. It is safe for
// concurrent use.
type RuleBook struct {
	rules    map[string]CountryRule
	fallback CountryRule
}

// NewRuleBook builds a rule book from a fallback rule and country rules.
// Country codes are normalized to upper case.
func NewRuleBook(fallback CountryRule, rules ...CountryRule) (*RuleBook, error) {
	fallback.Code = DefaultCode
	if err := checkRule(fallback); err != nil {
		return nil, err
	}

	b := &RuleBook{
		rules:    make(map[string]CountryRule, len(rules)),
		fallback: fallback,
	}
	for _, r := range rules {
		code, ok := normalizeCode(r.Code)
		if !ok {
			return nil, fmt.Errorf("address: invalid country code %q", r.Code)
		}
		r.Code = code
		if err := checkRule(r); err != nil {
			return nil, err
		}
		if _, dup := b.rules[code]; dup {
			return nil, fmt.Errorf("address: duplicate rule for %s", code)
		}
		b.rules[code] = r
	}
	return b, nil
}

// DefaultRules parses the embedded rule asset.
func DefaultRules() (*RuleBook, error) {
	return LoadRules(bytes.NewReader(defaultRulesYAML))
}

// MustDefaultRules is like DefaultRules but panics if the embedded asset is
// corrupt.
func MustDefaultRules() *RuleBook {
	b, err := DefaultRules()
	if err != nil {
		panic(err)
	}
	return b
}

// Resolve returns the rule for a country code, or the default rule when
// the code is not enumerated. It never fails.
func (b *RuleBook) Resolve(code string) CountryRule {
	if c, ok := normalizeCode(code); ok {
		if r, ok := b.rules[c]; ok {
			return r
		}
	}
	return b.fallback
}

// IsSupported reports whether code has a specific rule.
func (b *RuleBook) IsSupported(code string) bool {
	c, ok := normalizeCode(code)
	if !ok {
		return false
	}
	_, ok = b.rules[c]
	return ok
}

// Countries returns the enumerated country codes in sorted order.
func (b *RuleBook) Countries() []string {
	codes := make([]string, 0, len(b.rules))
	for c := range b.rules {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func normalizeCode(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 2 {
		return "", false
	}
	for i := 0; i < 2; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return "", false
		}
	}
	return c, true
}

func checkRule(r CountryRule) error {
	if r.PostalPattern == nil {
		return fmt.Errorf("address: rule %s has no postal pattern", r.Code)
	}
	switch r.PostalFormat {
	case PostalFormatUSZip, PostalFormatUKPostcode, PostalFormatCAPostal, PostalFormatPassthrough:
	case PostalFormatDigits:
		if r.PostalMaxLength <= 0 {
			return fmt.Errorf("address: rule %s: digits format needs a positive max_length", r.Code)
		}
	default:
		return fmt.Errorf("address: rule %s: unknown postal format %q", r.Code, r.PostalFormat)
	}
	switch r.PostalKeys {
	case KeysDigitsHyphen, KeysAlnumSpace, KeysDigits, KeysAlnumSpaceHyphen:
	default:
		return fmt.Errorf("address: rule %s: unknown postal key class %q", r.Code, r.PostalKeys)
	}
	return nil
}

// =============================================================================
// Rule asset
// =============================================================================

type ruleFile struct {
	Default   ruleSpec            `yaml:"default"`
	Countries map[string]ruleSpec `yaml:"countries"`
}

type ruleSpec struct {
	Labels struct {
		Address string `yaml:"address"`
		City    string `yaml:"city"`
		State   string `yaml:"state"`
		Postal  string `yaml:"postal"`
		Phone   string `yaml:"phone"`
		TaxID   string `yaml:"tax_id"`
	} `yaml:"labels"`
	Placeholders struct {
		City   string `yaml:"city"`
		State  string `yaml:"state"`
		Postal string `yaml:"postal"`
		Phone  string `yaml:"phone"`
		TaxID  string `yaml:"tax_id"`
	} `yaml:"placeholders"`
	Postal struct {
		Pattern   string `yaml:"pattern"`
		Message   string `yaml:"message"`
		Format    string `yaml:"format"`
		MaxLength int    `yaml:"max_length"`
		Keys      string `yaml:"keys"`
	} `yaml:"postal"`
}

// LoadRules parses a YAML rule asset. Empty labels and placeholders of a
// country inherit the default rule's values.
func LoadRules(r io.Reader) (*RuleBook, error) {
	var f ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("address: failed to parse rules: %w", err)
	}
	if f.Default.Postal.Pattern == "" {
		return nil, fmt.Errorf("address: rules asset has no default rule")
	}

	fallback, err := f.Default.compile(DefaultCode, nil)
	if err != nil {
		return nil, err
	}

	rules := make([]CountryRule, 0, len(f.Countries))
	for code, spec := range f.Countries {
		rule, err := spec.compile(code, &fallback)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return NewRuleBook(fallback, rules...)
}

func (s ruleSpec) compile(code string, base *CountryRule) (CountryRule, error) {
	pattern, err := regexp.Compile(s.Postal.Pattern)
	if err != nil {
		return CountryRule{}, fmt.Errorf("address: rule %s: bad postal pattern: %w", code, err)
	}

	r := CountryRule{
		Code:              code,
		AddressLabel:      s.Labels.Address,
		CityLabel:         s.Labels.City,
		StateLabel:        s.Labels.State,
		PostalLabel:       s.Labels.Postal,
		PhoneLabel:        s.Labels.Phone,
		TaxIDLabel:        s.Labels.TaxID,
		CityPlaceholder:   s.Placeholders.City,
		StatePlaceholder:  s.Placeholders.State,
		PostalPlaceholder: s.Placeholders.Postal,
		PhonePlaceholder:  s.Placeholders.Phone,
		TaxIDPlaceholder:  s.Placeholders.TaxID,
		PostalPattern:     pattern,
		PostalMessage:     s.Postal.Message,
		PostalFormat:      PostalFormat(s.Postal.Format),
		PostalMaxLength:   s.Postal.MaxLength,
		PostalKeys:        KeyClass(s.Postal.Keys),
	}

	if base != nil {
		inherit(&r.AddressLabel, base.AddressLabel)
		inherit(&r.CityLabel, base.CityLabel)
		inherit(&r.StateLabel, base.StateLabel)
		inherit(&r.PostalLabel, base.PostalLabel)
		inherit(&r.PhoneLabel, base.PhoneLabel)
		inherit(&r.TaxIDLabel, base.TaxIDLabel)
		inherit(&r.CityPlaceholder, base.CityPlaceholder)
		inherit(&r.StatePlaceholder, base.StatePlaceholder)
		inherit(&r.PostalPlaceholder, base.PostalPlaceholder)
		inherit(&r.PhonePlaceholder, base.PhonePlaceholder)
		inherit(&r.TaxIDPlaceholder, base.TaxIDPlaceholder)
		inherit(&r.PostalMessage, base.PostalMessage)
	}
	return r, nil
}

func inherit(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}
