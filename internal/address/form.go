package address

import (
	"context"
	"strings"
)

// Form holds the billing address while the user edits it. It is not safe
// for concurrent use; each checkout session owns its own Form.
type Form struct {
	rules     *RuleBook
	validator Validator
	addr      Address
}

// NewForm creates form state, empty or pre-populated from a saved address.
func NewForm(rules *RuleBook, v Validator, initial *Address) *Form {
	f := &Form{rules: rules, validator: v}
	if initial != nil {
		f.addr = *initial
	}
	return f
}

// Address returns a copy of the current values.
func (f *Form) Address() Address {
	return f.addr
}

// Rule returns the rule governing the currently selected country.
func (f *Form) Rule() CountryRule {
	return f.rules.Resolve(f.addr.Country)
}

// SetCountry selects a country. A postal code or phone number entered for
// another country is meaningless under the new rule, so both are cleared
// when the country actually changes.
func (f *Form) SetCountry(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == f.addr.Country {
		return
	}
	f.addr.Country = code
	f.addr.PostalCode = ""
	f.addr.PhoneNumber = ""
}

// Set stores value for field, formatting postal codes and phone numbers.
func (f *Form) Set(field Field, value string) {
	if field == FieldCountry {
		f.SetCountry(value)
		return
	}
	f.addr.set(field, f.rules.FormatField(value, f.addr.Country, field))
}

// Type applies one keystroke at the end of field. It reports whether the
// keystroke was accepted. Backspace and Delete remove the last character;
// other editing keys leave the value unchanged.
func (f *Form) Type(field Field, k Key) bool {
	current := f.addr.Get(field)

	switch field {
	case FieldPostalCode:
		if !f.rules.AllowPostalKey(f.addr.Country, k) {
			return false
		}
	case FieldPhoneNumber:
		if !AllowPhoneKey(current, len(current), k) {
			return false
		}
	}

	if k.IsEditing() {
		if (k.Value == "Backspace" || k.Value == "Delete") && current != "" {
			r := []rune(current)
			f.Set(field, string(r[:len(r)-1]))
		}
		return true
	}
	f.Set(field, current+k.Value)
	return true
}

// TypeText types each character of text into field and returns the
// resulting value.
func (f *Form) TypeText(field Field, text string) string {
	for _, k := range KeysFromText(text) {
		f.Type(field, k)
	}
	return f.addr.Get(field)
}

// Submit validates the form. When every field passes it returns the
// normalized address; otherwise it returns the failing result.
func (f *Form) Submit(ctx context.Context) (*Address, *ValidationResult, error) {
	result, err := f.validator.Validate(ctx, f.addr)
	if err != nil {
		return nil, nil, err
	}
	if !result.Valid() {
		return nil, result, nil
	}
	return result.NormalizedAddress, result, nil
}
