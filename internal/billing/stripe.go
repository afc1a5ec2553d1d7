package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/taxid"
)

// StripeProvider implements Provider using the Stripe customers and tax id
// APIs.
type StripeProvider struct {
	customers customer.Client
	taxIDs    taxid.Client
}

// NewStripeProvider creates a Stripe provider with its own backend.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.timeout()},
		MaxNetworkRetries: stripe.Int64(cfg.maxRetries()),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.BackendURL != "" {
		backendCfg.URL = stripe.String(cfg.BackendURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &StripeProvider{
		customers: customer.Client{B: backend, Key: cfg.APIKey},
		taxIDs:    taxid.Client{B: backend, Key: cfg.APIKey},
	}, nil
}

// CreateCustomer creates a Stripe customer.
func (s *StripeProvider) CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error) {
	p := customerParams(params)
	p.Context = ctx

	c, err := s.customers.New(p)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return toCustomer(c), nil
}

// UpdateCustomer replaces the name, phone and address of a Stripe customer.
func (s *StripeProvider) UpdateCustomer(ctx context.Context, customerID string, params CustomerParams) (*Customer, error) {
	if customerID == "" {
		return nil, ErrCustomerNotFound
	}
	p := customerParams(params)
	p.Context = ctx

	c, err := s.customers.Update(customerID, p)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return toCustomer(c), nil
}

// AttachTaxID adds a tax id to a Stripe customer.
func (s *StripeProvider) AttachTaxID(ctx context.Context, customerID string, params TaxIDParams) (*TaxID, error) {
	if customerID == "" {
		return nil, ErrCustomerNotFound
	}
	p := &stripe.TaxIDParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(params.Type),
		Value:    stripe.String(params.Value),
	}
	p.Context = ctx

	id, err := s.taxIDs.New(p)
	if err != nil {
		return nil, mapStripeError(err)
	}

	out := &TaxID{ID: id.ID, Type: string(id.Type), Value: id.Value}
	if id.Verification != nil {
		out.Verification = string(id.Verification.Status)
	}
	return out, nil
}

func customerParams(params CustomerParams) *stripe.CustomerParams {
	p := &stripe.CustomerParams{
		Name:  stripe.String(params.Name),
		Phone: stripe.String(params.Phone),
		Address: &stripe.AddressParams{
			Line1:      stripe.String(params.Address.Line1),
			Line2:      stripe.String(params.Address.Line2),
			City:       stripe.String(params.Address.City),
			State:      stripe.String(params.Address.State),
			PostalCode: stripe.String(params.Address.PostalCode),
			Country:    stripe.String(params.Address.Country),
		},
	}
	if params.Email != "" {
		p.Email = stripe.String(params.Email)
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}
	return p
}

func toCustomer(c *stripe.Customer) *Customer {
	out := &Customer{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: time.Unix(c.Created, 0),
	}
	if c.Address != nil {
		out.Address = Address{
			Line1:      c.Address.Line1,
			Line2:      c.Address.Line2,
			City:       c.Address.City,
			State:      c.Address.State,
			PostalCode: c.Address.PostalCode,
			Country:    c.Address.Country,
		}
	}
	return out
}

// mapStripeError converts Stripe SDK errors into package errors.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("stripe: %w", err)
	}

	se := &StripeError{
		Message:       stripeErr.Msg,
		Code:          string(stripeErr.Code),
		Type:          string(stripeErr.Type),
		StatusCode:    stripeErr.HTTPStatusCode,
		RequestID:     stripeErr.RequestID,
		OriginalError: err,
	}

	switch {
	case stripeErr.Code == stripe.ErrorCodeResourceMissing:
		return fmt.Errorf("%w: %w", ErrCustomerNotFound, se)
	case stripeErr.Code == stripe.ErrorCodeTaxIDInvalid:
		return fmt.Errorf("%w: %w", ErrTaxIDRejected, se)
	case stripeErr.HTTPStatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrInvalidAPIKey, se)
	}
	return se
}
