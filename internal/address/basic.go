package address

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// phonePattern accepts an international number with a leading plus sign or
// a bare national number of 5 to 15 digits.
var phonePattern = regexp.MustCompile(`^(\+[1-9][0-9]{0,14}|[0-9]{5,15})$`)

const (
	phoneMessage      = "Please enter a valid phone number (5-15 digits, optionally starting with +)"
	phoneValidatorTag = "billing_phone"
)

// requiredFields carries the length rules checked before the
// country-specific postal pattern.
type requiredFields struct {
	FullName     string `json:"fullName" validate:"required,min=2"`
	Country      string `json:"country" validate:"required,min=2"`
	AddressLine1 string `json:"addressLine1" validate:"required,min=3"`
	City         string `json:"city" validate:"required,min=2"`
	State        string `json:"state" validate:"required,min=1"`
	PostalCode   string `json:"postalCode" validate:"required,min=3"`
	PhoneNumber  string `json:"phoneNumber" validate:"omitempty,billing_phone"`
}

// BasicValidator performs format validation without external API calls:
// required fields, minimum lengths, the country postal pattern and the
// phone number shape.
type BasicValidator struct {
	rules    *RuleBook
	validate *validator.Validate
}

// NewBasicValidator creates a validator bound to a rule book.
func NewBasicValidator(rules *RuleBook) *BasicValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation(phoneValidatorTag, func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &BasicValidator{rules: rules, validate: v}
}

// Validate checks every field of addr. The country rule is resolved from
// addr.Country on each call, so a country change alone can flip the
// postal code verdict.
func (bv *BasicValidator) Validate(ctx context.Context, addr Address) (*ValidationResult, error) {
	trimmed := trimAddress(addr)
	rule := bv.rules.Resolve(trimmed.Country)
	result := &ValidationResult{Errors: make(map[Field]string)}

	in := requiredFields{
		FullName:     trimmed.FullName,
		Country:      trimmed.Country,
		AddressLine1: trimmed.AddressLine1,
		City:         trimmed.City,
		State:        trimmed.State,
		PostalCode:   trimmed.PostalCode,
		PhoneNumber:  trimmed.PhoneNumber,
	}
	if err := bv.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("address: validate: %w", err)
		}
		for _, fe := range fieldErrs {
			field := Field(fe.Field())
			if _, seen := result.Errors[field]; seen {
				continue
			}
			result.Errors[field] = fieldMessage(field, rule, fe.Tag(), fe.Param())
		}
	}

	if _, failed := result.Errors[FieldPostalCode]; !failed && !rule.MatchPostal(trimmed.PostalCode) {
		result.Errors[FieldPostalCode] = rule.PostalMessage
	}

	normalized := trimmed
	normalized.PostalCode = rule.FormatPostal(trimmed.PostalCode)
	normalized.PhoneNumber = FormatPhone(trimmed.PhoneNumber)
	result.NormalizedAddress = &normalized

	return result, nil
}

func fieldMessage(field Field, rule CountryRule, tag, param string) string {
	label := fieldLabel(field, rule)
	switch tag {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case phoneValidatorTag:
		return phoneMessage
	}
	return label + " is invalid"
}

// fieldLabel returns the country-specific display label for field.
func fieldLabel(field Field, rule CountryRule) string {
	switch field {
	case FieldFullName:
		return "Full name"
	case FieldCountry:
		return "Country"
	case FieldAddressLine1:
		return rule.AddressLabel
	case FieldCity:
		return rule.CityLabel
	case FieldState:
		return rule.StateLabel
	case FieldPostalCode:
		return rule.PostalLabel
	case FieldPhoneNumber:
		return rule.PhoneLabel
	case FieldTaxID:
		return rule.TaxIDLabel
	}
	return string(field)
}

func trimAddress(a Address) Address {
	return Address{
		FullName:     strings.TrimSpace(a.FullName),
		Country:      strings.ToUpper(strings.TrimSpace(a.Country)),
		AddressLine1: strings.TrimSpace(a.AddressLine1),
		AddressLine2: strings.TrimSpace(a.AddressLine2),
		City:         strings.TrimSpace(a.City),
		State:        strings.TrimSpace(a.State),
		PostalCode:   strings.TrimSpace(a.PostalCode),
		PhoneNumber:  strings.TrimSpace(a.PhoneNumber),
		TaxID:        strings.TrimSpace(a.TaxID),
		CompanyName:  strings.TrimSpace(a.CompanyName),
	}
}
