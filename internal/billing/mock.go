package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates successful customer sync without calling Stripe API.
type MockProvider struct {
	// CreateCustomerFunc allows customizing customer creation behavior
	CreateCustomerFunc func(ctx context.Context, params CustomerParams) (*Customer, error)

	// UpdateCustomerFunc allows customizing customer update behavior
	UpdateCustomerFunc func(ctx context.Context, customerID string, params CustomerParams) (*Customer, error)

	// AttachTaxIDFunc allows customizing tax id behavior
	AttachTaxIDFunc func(ctx context.Context, customerID string, params TaxIDParams) (*TaxID, error)

	// Customers stores created customers for retrieval
	Customers map[string]*Customer

	// TaxIDs stores attached tax ids keyed by customer id
	TaxIDs map[string][]*TaxID

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Customers: make(map[string]*Customer),
		TaxIDs:    make(map[string][]*TaxID),
		CallLog:   []string{},
	}
}

// CreateCustomer creates a mock customer.
func (m *MockProvider) CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCustomer(%s)", params.Address.Country))

	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, params)
	}

	c := &Customer{
		ID:        "cus_" + uuid.New().String()[:14],
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Address:   params.Address,
		CreatedAt: time.Now(),
	}
	m.Customers[c.ID] = c
	return c, nil
}

// UpdateCustomer updates a stored mock customer.
func (m *MockProvider) UpdateCustomer(ctx context.Context, customerID string, params CustomerParams) (*Customer, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("UpdateCustomer(%s)", customerID))

	if m.UpdateCustomerFunc != nil {
		return m.UpdateCustomerFunc(ctx, customerID, params)
	}

	c, ok := m.Customers[customerID]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	c.Name = params.Name
	c.Phone = params.Phone
	c.Address = params.Address
	if params.Email != "" {
		c.Email = params.Email
	}
	return c, nil
}

// AttachTaxID records a tax id on a stored mock customer.
func (m *MockProvider) AttachTaxID(ctx context.Context, customerID string, params TaxIDParams) (*TaxID, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("AttachTaxID(%s, %s)", customerID, params.Type))

	if m.AttachTaxIDFunc != nil {
		return m.AttachTaxIDFunc(ctx, customerID, params)
	}

	if _, ok := m.Customers[customerID]; !ok {
		return nil, ErrCustomerNotFound
	}
	id := &TaxID{
		ID:           "txi_" + uuid.New().String()[:14],
		Type:         params.Type,
		Value:        params.Value,
		Verification: "pending",
	}
	m.TaxIDs[customerID] = append(m.TaxIDs[customerID], id)
	return id, nil
}

// Reset clears all stored data and call logs.
func (m *MockProvider) Reset() {
	m.Customers = make(map[string]*Customer)
	m.TaxIDs = make(map[string][]*TaxID)
	m.CallLog = []string{}
}

var _ Provider = (*MockProvider)(nil)
var _ Provider = (*StripeProvider)(nil)
