package tax

// Classifier maps a raw tax ID entered on the billing form to a gateway
// tax-id type. Implementations: Default, MockClassifier.
type Classifier interface {
	Classify(country, raw string) (ID, error)
}

// ID is a normalized tax ID ready to attach to a gateway customer.
type ID struct {
	Country string // ISO 3166-1 alpha-2
	Type    string // gateway tax-id type, e.g. "eu_vat"
	Value   string // normalized value, e.g. "DE123456789"
}

// Gateway tax-id types.
const (
	TypeEUVAT = "eu_vat"
	TypeGBVAT = "gb_vat"
	TypeUSEIN = "us_ein"
	TypeCABN  = "ca_bn"
	TypeAUABN = "au_abn"
	TypeINGST = "in_gst"
)

// Default classifies with ClassifyID.
type Default struct{}

func (Default) Classify(country, raw string) (ID, error) {
	return ClassifyID(country, raw)
}
