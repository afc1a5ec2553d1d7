package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/domain"
)

// DecodeJSON decodes the request body into v. Unknown fields and trailing
// data are rejected. Bodies cut off by middleware.MaxBodySize report
// ETOOLARGE.
func DecodeJSON(r *http.Request, op string, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.Errorf(domain.ETOOLARGE, op, "Request body too large")
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "Request body is empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return domain.Invalid(op, "Request body contains "+strings.TrimPrefix(err.Error(), "json: "))
		default:
			return domain.Invalid(op, "Request body is not valid JSON")
		}
	}
	if dec.More() {
		return domain.Invalid(op, "Request body must contain a single JSON object")
	}
	return nil
}
