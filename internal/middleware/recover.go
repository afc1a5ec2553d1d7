package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/telemetry"
)

// Recover turns a panic in a handler into a 500 response, logs the stack
// and reports the panic to Sentry.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}
			GetLogger(r.Context()).Error("panic recovered",
				"error", err,
				"stack", string(debug.Stack()),
			)
			telemetry.CaptureErrorFromContext(r.Context(), err, map[string]interface{}{"panic": true})

			respondInternalError(w, r, err)
		}()
		next.ServeHTTP(w, r)
	})
}
