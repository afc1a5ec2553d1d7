package address

import (
	"context"
)

// MockValidator is a test implementation of Validator.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, addr Address) (*ValidationResult, error)

	// Calls records every address passed to Validate.
	Calls []Address
}

// NewMockValidator creates a new mock address validator for testing.
// Without a ValidateFunc every address is reported valid.
func NewMockValidator() *MockValidator {
	return &MockValidator{}
}

// Validate delegates to the configured function or returns a default result.
func (m *MockValidator) Validate(ctx context.Context, addr Address) (*ValidationResult, error) {
	m.Calls = append(m.Calls, addr)
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, addr)
	}
	normalized := addr
	return &ValidationResult{
		Errors:            map[Field]string{},
		NormalizedAddress: &normalized,
	}, nil
}
