package address

import "context"

// Validator defines the interface for address validation.
// BasicValidator checks addresses against the country rule book; other
// implementations can call external verification APIs.
type Validator interface {
	// Validate checks the address and returns a per-field verdict.
	// Invalid input is reported through the result, never through err.
	// The error is reserved for conditions the caller cannot fix.
	Validate(ctx context.Context, addr Address) (*ValidationResult, error)
}

// Field names a billing address form field.
type Field string

const (
	FieldFullName     Field = "fullName"
	FieldCountry      Field = "country"
	FieldAddressLine1 Field = "addressLine1"
	FieldAddressLine2 Field = "addressLine2"
	FieldCity         Field = "city"
	FieldState        Field = "state"
	FieldPostalCode   Field = "postalCode"
	FieldPhoneNumber  Field = "phoneNumber"
	FieldTaxID        Field = "taxId"
	FieldCompanyName  Field = "companyName"
)

// ParseField maps a form field name to a Field.
func ParseField(name string) (Field, bool) {
	switch f := Field(name); f {
	case FieldFullName, FieldCountry, FieldAddressLine1, FieldAddressLine2,
		FieldCity, FieldState, FieldPostalCode, FieldPhoneNumber,
		FieldTaxID, FieldCompanyName:
		return f, true
	}
	return "", false
}

// Address is the billing address as entered on the checkout form.
type Address struct {
	FullName     string `json:"fullName"`
	Country      string `json:"country"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	TaxID        string `json:"taxId,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
}

// Get returns the value stored for field.
func (a Address) Get(field Field) string {
	switch field {
	case FieldFullName:
		return a.FullName
	case FieldCountry:
		return a.Country
	case FieldAddressLine1:
		return a.AddressLine1
	case FieldAddressLine2:
		return a.AddressLine2
	case FieldCity:
		return a.City
	case FieldState:
		return a.State
	case FieldPostalCode:
		return a.PostalCode
	case FieldPhoneNumber:
		return a.PhoneNumber
	case FieldTaxID:
		return a.TaxID
	case FieldCompanyName:
		return a.CompanyName
	}
	return ""
}

// set stores value for field. Unknown fields are ignored.
func (a *Address) set(field Field, value string) {
	switch field {
	case FieldFullName:
		a.FullName = value
	case FieldCountry:
		a.Country = value
	case FieldAddressLine1:
		a.AddressLine1 = value
	case FieldAddressLine2:
		a.AddressLine2 = value
	case FieldCity:
		a.City = value
	case FieldState:
		a.State = value
	case FieldPostalCode:
		a.PostalCode = value
	case FieldPhoneNumber:
		a.PhoneNumber = value
	case FieldTaxID:
		a.TaxID = value
	case FieldCompanyName:
		a.CompanyName = value
	}
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	// Errors holds exactly one message per failing field.
	Errors map[Field]string

	// NormalizedAddress is the trimmed address with postal code and phone
	// number run through the formatter.
	NormalizedAddress *Address
}

// Valid reports whether every field passed.
func (r *ValidationResult) Valid() bool {
	return r == nil || len(r.Errors) == 0
}

// Message returns the error message for field, or "" if it passed.
func (r *ValidationResult) Message(field Field) string {
	if r == nil {
		return ""
	}
	return r.Errors[field]
}

// Fields returns the errors keyed by plain field name.
func (r *ValidationResult) Fields() map[string]string {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for f, msg := range r.Errors {
		out[string(f)] = msg
	}
	return out
}
