package routes

import (
	"net/http"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/handler/api"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/router"
)

// APIDeps contains dependencies for the address and billing details API
type APIDeps struct {
	AddressHandler        *api.AddressHandler
	BillingDetailsHandler *api.BillingDetailsHandler

	// KeystrokeLimit throttles the per-keystroke endpoints, which a form
	// calls on every key press. Nil disables it.
	KeystrokeLimit router.Middleware

	// SaveLimit throttles writes. Nil disables it.
	SaveLimit router.Middleware
}

// OpsDeps contains dependencies for operational routes
type OpsDeps struct {
	HealthHandler  *api.HealthHandler
	MetricsHandler http.Handler
}
