package routes

import (
	"net/http"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/router"
)

// RegisterAPIRoutes registers the address form and billing details routes.
// The user id is taken from the path; authentication happens upstream.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	r.Get("/api/address/countries", deps.AddressHandler.Countries)
	r.Get("/api/address/rules/{country}", deps.AddressHandler.Rules)
	r.Post("/api/address/validate", deps.AddressHandler.Validate)

	typing := r.Group(optional(deps.KeystrokeLimit)...)
	typing.Post("/api/address/format", deps.AddressHandler.Format)
	typing.Post("/api/address/keystroke", deps.AddressHandler.Keystroke)

	r.Get("/api/users/{userID}/billing-details", deps.BillingDetailsHandler.Get)

	writes := r.Group(optional(deps.SaveLimit)...)
	writes.Put("/api/users/{userID}/billing-details", deps.BillingDetailsHandler.Put)
}

// RegisterOpsRoutes registers health and metrics endpoints. These should be
// kept off the public listener or firewalled in production.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/healthz", deps.HealthHandler.Healthz)
	if deps.MetricsHandler != nil {
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			deps.MetricsHandler.ServeHTTP(w, req)
		})
	}
}

func optional(m router.Middleware) []router.Middleware {
	if m == nil {
		return nil
	}
	return []router.Middleware{m}
}
