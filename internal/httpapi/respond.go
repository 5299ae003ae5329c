package httpapi

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/anchorvcs/anchor/internal/apperr"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v, surfacing malformed JSON as
// apperr.Invalid rather than a raw decode error.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(err, apperr.CodeInvalid, "malformed request body")
	}
	return nil
}

func requestIDFrom(r *http.Request) string {
	return chimiddleware.GetReqID(r.Context())
}
