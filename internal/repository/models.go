package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type BillingDetail struct {
	ID                pgtype.UUID        `json:"id"`
	UserID            pgtype.UUID        `json:"user_id"`
	FullName          string             `json:"full_name"`
	CompanyName       pgtype.Text        `json:"company_name"`
	Country           string             `json:"country"`
	AddressLine1      string             `json:"address_line1"`
	AddressLine2      pgtype.Text        `json:"address_line2"`
	City              string             `json:"city"`
	State             string             `json:"state"`
	PostalCode        string             `json:"postal_code"`
	PhoneNumber       pgtype.Text        `json:"phone_number"`
	TaxID             pgtype.Text        `json:"tax_id"`
	TaxIDType         pgtype.Text        `json:"tax_id_type"`
	GatewayCustomerID pgtype.Text        `json:"gateway_customer_id"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}
