package billing

import (
	"context"
	"time"
)

// Provider keeps the payment gateway's customer record in step with the
// billing details stored locally. Implementations: StripeProvider,
// MockProvider.
type Provider interface {
	// CreateCustomer creates a gateway customer for a user who has none yet.
	CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error)

	// UpdateCustomer replaces the name, phone and billing address of an
	// existing customer. Returns ErrCustomerNotFound if the id is unknown.
	UpdateCustomer(ctx context.Context, customerID string, params CustomerParams) (*Customer, error)

	// AttachTaxID adds a tax id to the customer for invoices.
	AttachTaxID(ctx context.Context, customerID string, params TaxIDParams) (*TaxID, error)
}

// CustomerParams contains the customer fields kept in sync.
type CustomerParams struct {
	Name    string
	Email   string
	Phone   string // E.164
	Address Address

	// Metadata is attached to the gateway record, e.g. the local user id.
	Metadata map[string]string
}

// Address is a billing address in the shape gateways expect.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string // ISO 3166-1 alpha-2
}

// Customer represents a gateway customer.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   Address
	CreatedAt time.Time
}

// TaxIDParams identifies a tax id by gateway type (e.g. "eu_vat") and value.
type TaxIDParams struct {
	Type  string
	Value string
}

// TaxID is a tax id stored on a gateway customer.
type TaxID struct {
	ID           string
	Type         string
	Value        string
	Verification string // e.g. "pending", "verified", "unavailable"
}
