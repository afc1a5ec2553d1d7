package domain

import (
	"context"
	"time"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/google/uuid"
)

// BillingDetails is the saved billing address of a user, the record read by
// the checkout form on load and written on submit.
type BillingDetails struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`

	address.Address

	// TaxIDType is the gateway tax id type the tax id was classified as, or
	// empty when it could not be classified.
	TaxIDType string `json:"taxIdType,omitempty"`

	// GatewayCustomerID links the record to the payment gateway customer.
	// Empty means the address is stored locally only.
	GatewayCustomerID string `json:"gatewayCustomerId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BillingDetailsRepository persists billing details, one record per user.
type BillingDetailsRepository interface {
	// GetByUser returns an ENOTFOUND error when the user has no record.
	GetByUser(ctx context.Context, userID uuid.UUID) (*BillingDetails, error)

	// Upsert creates or replaces the user's record and returns it as stored.
	Upsert(ctx context.Context, details *BillingDetails) (*BillingDetails, error)

	// SetGatewayCustomer links the user's record to a gateway customer.
	SetGatewayCustomer(ctx context.Context, userID uuid.UUID, customerID string) error
}
