package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const billingDetailColumns = `id, user_id, full_name, company_name, country, address_line1, address_line2, city, state, postal_code, phone_number, tax_id, tax_id_type, gateway_customer_id, created_at, updated_at`

const getBillingDetailsByUser = `-- name: GetBillingDetailsByUser :one
SELECT ` + billingDetailColumns + `
FROM billing_details
WHERE user_id = $1
`

func (q *Queries) GetBillingDetailsByUser(ctx context.Context, userID pgtype.UUID) (BillingDetail, error) {
	row := q.db.QueryRow(ctx, getBillingDetailsByUser, userID)
	return scanBillingDetail(row)
}

const upsertBillingDetails = `-- name: UpsertBillingDetails :one
INSERT INTO billing_details (
    user_id, full_name, company_name, country, address_line1, address_line2,
    city, state, postal_code, phone_number, tax_id, tax_id_type, gateway_customer_id
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
ON CONFLICT (user_id) DO UPDATE SET
    full_name = EXCLUDED.full_name,
    company_name = EXCLUDED.company_name,
    country = EXCLUDED.country,
    address_line1 = EXCLUDED.address_line1,
    address_line2 = EXCLUDED.address_line2,
    city = EXCLUDED.city,
    state = EXCLUDED.state,
    postal_code = EXCLUDED.postal_code,
    phone_number = EXCLUDED.phone_number,
    tax_id = EXCLUDED.tax_id,
    tax_id_type = EXCLUDED.tax_id_type,
    gateway_customer_id = COALESCE(EXCLUDED.gateway_customer_id, billing_details.gateway_customer_id),
    updated_at = NOW()
RETURNING ` + billingDetailColumns + `
`

type UpsertBillingDetailsParams struct {
	UserID            pgtype.UUID `json:"user_id"`
	FullName          string      `json:"full_name"`
	CompanyName       pgtype.Text `json:"company_name"`
	Country           string      `json:"country"`
	AddressLine1      string      `json:"address_line1"`
	AddressLine2      pgtype.Text `json:"address_line2"`
	City              string      `json:"city"`
	State             string      `json:"state"`
	PostalCode        string      `json:"postal_code"`
	PhoneNumber       pgtype.Text `json:"phone_number"`
	TaxID             pgtype.Text `json:"tax_id"`
	TaxIDType         pgtype.Text `json:"tax_id_type"`
	GatewayCustomerID pgtype.Text `json:"gateway_customer_id"`
}

// UpsertBillingDetails keeps the stored gateway customer id when the new
// row carries none.
func (q *Queries) UpsertBillingDetails(ctx context.Context, arg UpsertBillingDetailsParams) (BillingDetail, error) {
	row := q.db.QueryRow(ctx, upsertBillingDetails,
		arg.UserID,
		arg.FullName,
		arg.CompanyName,
		arg.Country,
		arg.AddressLine1,
		arg.AddressLine2,
		arg.City,
		arg.State,
		arg.PostalCode,
		arg.PhoneNumber,
		arg.TaxID,
		arg.TaxIDType,
		arg.GatewayCustomerID,
	)
	return scanBillingDetail(row)
}

const setGatewayCustomerID = `-- name: SetGatewayCustomerID :exec
UPDATE billing_details
SET gateway_customer_id = $2, updated_at = NOW()
WHERE user_id = $1
`

func (q *Queries) SetGatewayCustomerID(ctx context.Context, userID pgtype.UUID, customerID pgtype.Text) error {
	_, err := q.db.Exec(ctx, setGatewayCustomerID, userID, customerID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBillingDetail(row rowScanner) (BillingDetail, error) {
	var i BillingDetail
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.FullName,
		&i.CompanyName,
		&i.Country,
		&i.AddressLine1,
		&i.AddressLine2,
		&i.City,
		&i.State,
		&i.PostalCode,
		&i.PhoneNumber,
		&i.TaxID,
		&i.TaxIDType,
		&i.GatewayCustomerID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
