package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/billing"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/events"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/tax"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/telemetry"
	"github.com/google/uuid"
)

// BillingDetailsService provides the billing address form operations and
// saves the result.
type BillingDetailsService interface {
	// Countries returns the codes with a dedicated rule, sorted.
	Countries() []string

	// Rules returns the rule for country, falling back to the default rule.
	Rules(country string) address.CountryRule

	// Format applies the field formatter.
	Format(country string, field address.Field, value string) string

	// Keystroke applies one keystroke at the end of current and reports
	// whether it was accepted along with the resulting value.
	Keystroke(country string, field address.Field, current string, k address.Key) (bool, string)

	// Validate checks addr without saving it.
	Validate(ctx context.Context, addr address.Address) (*address.ValidationResult, error)

	// Get returns the saved billing details of a user.
	Get(ctx context.Context, userID uuid.UUID) (*domain.BillingDetails, error)

	// Save formats, validates and stores the user's billing address, then
	// syncs it to the payment gateway and publishes an event. Gateway and
	// event failures are logged and do not fail the save.
	Save(ctx context.Context, params SaveParams) (*domain.BillingDetails, error)
}

// SaveParams contains the data submitted by the billing form.
type SaveParams struct {
	UserID  uuid.UUID
	Address address.Address

	// Email is forwarded to the gateway when a customer is created.
	Email string
}

// BillingDetailsDeps holds the collaborators of the service. Gateway,
// Events, Metrics and Logger are optional.
type BillingDetailsDeps struct {
	Rules     *address.RuleBook
	Validator address.Validator
	Repo      domain.BillingDetailsRepository
	TaxIDs    tax.Classifier
	Gateway   billing.Provider
	Events    events.Publisher
	Metrics   *telemetry.BusinessMetrics
	Logger    *slog.Logger
}

type billingDetailsService struct {
	rules     *address.RuleBook
	validator address.Validator
	repo      domain.BillingDetailsRepository
	taxIDs    tax.Classifier
	gateway   billing.Provider
	events    events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewBillingDetailsService creates a new billing details service.
func NewBillingDetailsService(deps BillingDetailsDeps) BillingDetailsService {
	s := &billingDetailsService{
		rules:     deps.Rules,
		validator: deps.Validator,
		repo:      deps.Repo,
		taxIDs:    deps.TaxIDs,
		gateway:   deps.Gateway,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       time.Now,
	}
	if s.validator == nil {
		s.validator = address.NewBasicValidator(s.rules)
	}
	if s.taxIDs == nil {
		s.taxIDs = tax.Default{}
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *billingDetailsService) Countries() []string {
	return s.rules.Countries()
}

func (s *billingDetailsService) Rules(country string) address.CountryRule {
	return s.rules.Resolve(country)
}

func (s *billingDetailsService) Format(country string, field address.Field, value string) string {
	return s.rules.FormatField(value, country, field)
}

func (s *billingDetailsService) Keystroke(country string, field address.Field, current string, k address.Key) (bool, string) {
	initial := address.Address{Country: strings.ToUpper(strings.TrimSpace(country))}
	form := address.NewForm(s.rules, s.validator, &initial)
	form.Set(field, current)

	allowed := form.Type(field, k)
	if !allowed {
		s.metrics.KeystrokeRejected(initial.Country, string(field))
	}
	return allowed, form.Address().Get(field)
}

func (s *billingDetailsService) Validate(ctx context.Context, addr address.Address) (*address.ValidationResult, error) {
	result, err := s.validator.Validate(ctx, addr)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "address.validate", msgValidateFailed)
	}
	s.metrics.Validation(addr.Country, failedFields(result))
	return result, nil
}

func (s *billingDetailsService) Get(ctx context.Context, userID uuid.UUID) (*domain.BillingDetails, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *billingDetailsService) Save(ctx context.Context, params SaveParams) (*domain.BillingDetails, error) {
	const op = "billing_details.save"

	if params.UserID == uuid.Nil {
		return nil, ErrUserIDRequired
	}

	addr := params.Address
	addr.Country = strings.ToUpper(strings.TrimSpace(addr.Country))
	addr.PostalCode = s.rules.FormatField(addr.PostalCode, addr.Country, address.FieldPostalCode)
	addr.PhoneNumber = s.rules.FormatField(addr.PhoneNumber, addr.Country, address.FieldPhoneNumber)

	result, err := s.Validate(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		return nil, domain.FieldErrors(op, result.Fields())
	}

	details := &domain.BillingDetails{
		UserID:  params.UserID,
		Address: *result.NormalizedAddress,
	}

	var taxID *tax.ID
	if details.TaxID != "" {
		id, err := s.taxIDs.Classify(details.Country, details.TaxID)
		if err != nil {
			s.logger.InfoContext(ctx, "tax id not classified, storing as entered",
				"user_id", params.UserID, "country", details.Country, "error", err)
		} else {
			details.TaxID = id.Value
			details.TaxIDType = id.Type
			taxID = &id
		}
	}

	previous := s.previous(ctx, params.UserID)

	saved, err := s.repo.Upsert(ctx, details)
	if err != nil {
		if domain.ErrorCode(err) == domain.EINTERNAL {
			telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"operation": op})
			return nil, domain.WrapError(err, domain.EINTERNAL, op, msgSaveFailed)
		}
		return nil, err
	}
	s.metrics.Saved(saved.Country)

	s.logger.InfoContext(ctx, "billing details saved",
		"user_id", saved.UserID,
		"country", saved.Country,
		"phone", address.MaskPhone(saved.PhoneNumber),
		"tax_id_type", saved.TaxIDType,
	)

	synced := s.syncGateway(ctx, saved, previous, taxID, params.Email)
	s.publishSaved(ctx, saved, synced)

	return saved, nil
}

// previous returns the stored record before this save, or nil.
func (s *billingDetailsService) previous(ctx context.Context, userID uuid.UUID) *domain.BillingDetails {
	d, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if !domain.IsCode(err, domain.ENOTFOUND) {
			s.logger.WarnContext(ctx, "failed to load previous billing details", "user_id", userID, "error", err)
		}
		return nil
	}
	return d
}

// syncGateway pushes the saved address to the payment gateway. It makes one
// attempt and reports whether the customer record is up to date.
func (s *billingDetailsService) syncGateway(ctx context.Context, saved, previous *domain.BillingDetails, taxID *tax.ID, email string) bool {
	if s.gateway == nil {
		return false
	}

	params := billing.CustomerParams{
		Name:  saved.FullName,
		Email: email,
		Phone: address.E164(saved.PhoneNumber, saved.Country),
		Address: billing.Address{
			Line1:      saved.AddressLine1,
			Line2:      saved.AddressLine2,
			City:       saved.City,
			State:      saved.State,
			PostalCode: saved.PostalCode,
			Country:    saved.Country,
		},
		Metadata: map[string]string{"user_id": saved.UserID.String()},
	}

	customerID := saved.GatewayCustomerID
	newCustomer := customerID == ""
	telemetry.AddBreadcrumb(ctx, "gateway", "sync billing details", map[string]interface{}{
		"new_customer": newCustomer,
		"country":      saved.Country,
	})
	if newCustomer {
		started := s.now()
		c, err := s.gateway.CreateCustomer(ctx, params)
		s.metrics.GatewayCall("create_customer", started, err)
		if err != nil {
			s.gatewayFailed(ctx, "create_customer", saved, err)
			return false
		}
		customerID = c.ID

		if err := s.repo.SetGatewayCustomer(ctx, saved.UserID, customerID); err != nil {
			s.logger.ErrorContext(ctx, "failed to link gateway customer",
				"user_id", saved.UserID, "customer_id", customerID, "error", err)
			telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"customer_id": customerID})
		}
		saved.GatewayCustomerID = customerID
	} else {
		started := s.now()
		_, err := s.gateway.UpdateCustomer(ctx, customerID, params)
		s.metrics.GatewayCall("update_customer", started, err)
		if err != nil {
			s.gatewayFailed(ctx, "update_customer", saved, err)
			return false
		}
	}

	if taxID == nil {
		return true
	}
	if !newCustomer && previous != nil && previous.TaxID == taxID.Value && previous.TaxIDType == taxID.Type {
		return true
	}

	started := s.now()
	_, err := s.gateway.AttachTaxID(ctx, customerID, billing.TaxIDParams{Type: taxID.Type, Value: taxID.Value})
	s.metrics.GatewayCall("attach_tax_id", started, err)
	if err != nil {
		s.gatewayFailed(ctx, "attach_tax_id", saved, err)
		return false
	}
	return true
}

func (s *billingDetailsService) gatewayFailed(ctx context.Context, operation string, saved *domain.BillingDetails, err error) {
	s.logger.WarnContext(ctx, "gateway sync failed",
		"operation", operation,
		"user_id", saved.UserID,
		"customer_id", saved.GatewayCustomerID,
		"error", err,
	)
	telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{
		"operation": operation,
		"country":   saved.Country,
	})
}

func (s *billingDetailsService) publishSaved(ctx context.Context, saved *domain.BillingDetails, synced bool) {
	event := events.BillingDetailsSaved{
		RecordID:      saved.ID.String(),
		UserID:        saved.UserID.String(),
		Country:       saved.Country,
		HasTaxID:      saved.TaxID != "",
		GatewaySynced: synced,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.events.Publish(ctx, events.SubjectBillingDetailsSaved, event); err != nil {
		s.metrics.PublishFailed(events.SubjectBillingDetailsSaved)
		s.logger.WarnContext(ctx, "failed to publish event",
			"subject", events.SubjectBillingDetailsSaved, "user_id", saved.UserID, "error", err)
	}
}

func failedFields(result *address.ValidationResult) []string {
	if result == nil {
		return nil
	}
	fields := make([]string, 0, len(result.Errors))
	for f := range result.Errors {
		fields = append(fields, string(f))
	}
	return fields
}
