package api

import (
	"net/http"
	"strings"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/handler"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/service"
)

// AddressHandler serves the per-country rules, formatter, keystroke filter
// and validator to the checkout form.
type AddressHandler struct {
	service service.BillingDetailsService
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(svc service.BillingDetailsService) *AddressHandler {
	return &AddressHandler{service: svc}
}

type countriesResponse struct {
	Countries []string `json:"countries"`
}

// Countries handles GET /api/address/countries
func (h *AddressHandler) Countries(w http.ResponseWriter, r *http.Request) {
	handler.WriteJSON(w, http.StatusOK, countriesResponse{Countries: h.service.Countries()})
}

type ruleLabels struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Postal  string `json:"postal"`
	Phone   string `json:"phone"`
	TaxID   string `json:"taxId"`
}

type rulePlaceholders struct {
	City   string `json:"city"`
	State  string `json:"state"`
	Postal string `json:"postal"`
	Phone  string `json:"phone"`
	TaxID  string `json:"taxId"`
}

type ruleResponse struct {
	Country         string           `json:"country"`
	Supported       bool             `json:"supported"`
	Labels          ruleLabels       `json:"labels"`
	Placeholders    rulePlaceholders `json:"placeholders"`
	PostalPattern   string           `json:"postalPattern"`
	PostalMessage   string           `json:"postalMessage"`
	PostalMaxLength int              `json:"postalMaxLength,omitempty"`
}

// Rules handles GET /api/address/rules/{country}
//
// Unlisted countries get the default rule with supported=false rather than
// a 404, so the form always has labels to render.
func (h *AddressHandler) Rules(w http.ResponseWriter, r *http.Request) {
	country := strings.ToUpper(strings.TrimSpace(r.PathValue("country")))
	rule := h.service.Rules(country)

	resp := ruleResponse{
		Country:   country,
		Supported: !rule.IsDefault(),
		Labels: ruleLabels{
			Address: rule.AddressLabel,
			City:    rule.CityLabel,
			State:   rule.StateLabel,
			Postal:  rule.PostalLabel,
			Phone:   rule.PhoneLabel,
			TaxID:   rule.TaxIDLabel,
		},
		Placeholders: rulePlaceholders{
			City:   rule.CityPlaceholder,
			State:  rule.StatePlaceholder,
			Postal: rule.PostalPlaceholder,
			Phone:  rule.PhonePlaceholder,
			TaxID:  rule.TaxIDPlaceholder,
		},
		PostalMessage:   rule.PostalMessage,
		PostalMaxLength: rule.PostalMaxLength,
	}
	if rule.PostalPattern != nil {
		resp.PostalPattern = rule.PostalPattern.String()
	}

	handler.WriteJSON(w, http.StatusOK, resp)
}

type formatRequest struct {
	Country string `json:"country"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

type formatResponse struct {
	Value string `json:"value"`
}

// Format handles POST /api/address/format
func (h *AddressHandler) Format(w http.ResponseWriter, r *http.Request) {
	const op = "address.format"

	var req formatRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	field, ok := address.ParseField(req.Field)
	if !ok {
		handler.BadRequestResponse(w, r, "Unknown field: "+req.Field)
		return
	}

	handler.WriteJSON(w, http.StatusOK, formatResponse{Value: h.service.Format(req.Country, field, req.Value)})
}

type keystrokeRequest struct {
	Country string      `json:"country"`
	Field   string      `json:"field"`
	Current string      `json:"current"`
	Key     address.Key `json:"key"`
}

type keystrokeResponse struct {
	Allowed bool   `json:"allowed"`
	Value   string `json:"value"`
}

// Keystroke handles POST /api/address/keystroke
func (h *AddressHandler) Keystroke(w http.ResponseWriter, r *http.Request) {
	const op = "address.keystroke"

	var req keystrokeRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	field, ok := address.ParseField(req.Field)
	if !ok {
		handler.BadRequestResponse(w, r, "Unknown field: "+req.Field)
		return
	}
	if req.Key.Value == "" {
		handler.BadRequestResponse(w, r, "Key is required")
		return
	}

	allowed, value := h.service.Keystroke(req.Country, field, req.Current, req.Key)
	handler.WriteJSON(w, http.StatusOK, keystrokeResponse{Allowed: allowed, Value: value})
}

type validateResponse struct {
	Valid      bool              `json:"valid"`
	Errors     map[string]string `json:"errors"`
	Normalized *address.Address  `json:"normalized,omitempty"`
}

// Validate handles POST /api/address/validate
//
// An invalid address is a successful call: the verdict is in the body.
func (h *AddressHandler) Validate(w http.ResponseWriter, r *http.Request) {
	const op = "address.validate"

	var addr address.Address
	if err := handler.DecodeJSON(r, op, &addr); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	result, err := h.service.Validate(r.Context(), addr)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	errs := result.Fields()
	if errs == nil {
		errs = map[string]string{}
	}
	handler.WriteJSON(w, http.StatusOK, validateResponse{
		Valid:      result.Valid(),
		Errors:     errs,
		Normalized: result.NormalizedAddress,
	})
}
