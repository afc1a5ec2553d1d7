package api

import (
	"net/http"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/handler"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/middleware"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/service"
	"github.com/google/uuid"
)

// BillingDetailsHandler loads and saves a user's billing details.
// Authentication happens upstream; the user id comes from the path.
type BillingDetailsHandler struct {
	service service.BillingDetailsService
}

// NewBillingDetailsHandler creates a new billing details handler.
func NewBillingDetailsHandler(svc service.BillingDetailsService) *BillingDetailsHandler {
	return &BillingDetailsHandler{service: svc}
}

// saveRequest is the form payload plus the optional customer email.
type saveRequest struct {
	address.Address
	Email string `json:"email,omitempty"`
}

// Get handles GET /api/users/{userID}/billing-details
func (h *BillingDetailsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r, "billing_details.get")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	details, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, details)
}

// Put handles PUT /api/users/{userID}/billing-details
//
// Field errors are returned as 400 with a "fields" map keyed by form field.
func (h *BillingDetailsHandler) Put(w http.ResponseWriter, r *http.Request) {
	const op = "billing_details.save"

	userID, err := pathUserID(r, op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req saveRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	details, err := h.service.Save(r.Context(), service.SaveParams{
		UserID:  userID,
		Address: req.Address,
		Email:   req.Email,
	})
	if err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	middleware.GetLogger(r.Context()).Debug("billing details saved", "user_id", userID)
	handler.WriteJSON(w, http.StatusOK, details)
}

func pathUserID(r *http.Request, op string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("userID"))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.Invalid(op, "Invalid user ID")
	}
	return id, nil
}
