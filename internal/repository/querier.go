package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	GetBillingDetailsByUser(ctx context.Context, userID pgtype.UUID) (BillingDetail, error)
	SetGatewayCustomerID(ctx context.Context, userID pgtype.UUID, customerID pgtype.Text) error
	UpsertBillingDetails(ctx context.Context, arg UpsertBillingDetailsParams) (BillingDetail, error)
}

var _ Querier = (*Queries)(nil)
