package postgres

import (
	"context"
	"errors"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BillingDetailsStore implements domain.BillingDetailsRepository using
// PostgreSQL.
type BillingDetailsStore struct {
	repo repository.Querier
}

var _ domain.BillingDetailsRepository = (*BillingDetailsStore)(nil)

func NewBillingDetailsStore(repo repository.Querier) *BillingDetailsStore {
	return &BillingDetailsStore{repo: repo}
}

// GetByUser returns the user's saved billing details.
func (s *BillingDetailsStore) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.BillingDetails, error) {
	const op = "billing_details.get"

	row, err := s.repo.GetBillingDetailsByUser(ctx, toPgUUID(userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "billing details", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to load billing details")
	}

	return mapRowToDomain(row), nil
}

// Upsert creates or replaces the user's billing details. An empty
// GatewayCustomerID leaves any stored link untouched.
func (s *BillingDetailsStore) Upsert(ctx context.Context, d *domain.BillingDetails) (*domain.BillingDetails, error) {
	const op = "billing_details.upsert"

	if d.UserID == uuid.Nil {
		return nil, domain.Invalid(op, "user id is required")
	}

	row, err := s.repo.UpsertBillingDetails(ctx, repository.UpsertBillingDetailsParams{
		UserID:            toPgUUID(d.UserID),
		FullName:          d.FullName,
		CompanyName:       toPgText(d.CompanyName),
		Country:           d.Country,
		AddressLine1:      d.AddressLine1,
		AddressLine2:      toPgText(d.AddressLine2),
		City:              d.City,
		State:             d.State,
		PostalCode:        d.PostalCode,
		PhoneNumber:       toPgText(d.PhoneNumber),
		TaxID:             toPgText(d.TaxID),
		TaxIDType:         toPgText(d.TaxIDType),
		GatewayCustomerID: toPgText(d.GatewayCustomerID),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to save billing details")
	}

	return mapRowToDomain(row), nil
}

func (s *BillingDetailsStore) SetGatewayCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	if err := s.repo.SetGatewayCustomerID(ctx, toPgUUID(userID), toPgText(customerID)); err != nil {
		return domain.Internal(err, "billing_details.set_gateway_customer", "failed to link gateway customer")
	}
	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func mapRowToDomain(r repository.BillingDetail) *domain.BillingDetails {
	return &domain.BillingDetails{
		ID:     uuid.UUID(r.ID.Bytes),
		UserID: uuid.UUID(r.UserID.Bytes),
		Address: address.Address{
			FullName:     r.FullName,
			CompanyName:  r.CompanyName.String,
			Country:      r.Country,
			AddressLine1: r.AddressLine1,
			AddressLine2: r.AddressLine2.String,
			City:         r.City,
			State:        r.State,
			PostalCode:   r.PostalCode,
			PhoneNumber:  r.PhoneNumber.String,
			TaxID:        r.TaxID.String,
		},
		TaxIDType:         r.TaxIDType.String,
		GatewayCustomerID: r.GatewayCustomerID.String,
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
}
