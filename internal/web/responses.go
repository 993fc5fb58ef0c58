package web

// responses.go centralizes JSON response writing. Validation failures
// come back as field-keyed message maps; traversal attempts and missing
// resources share one indistinguishable not-found response.

import (
	"encoding/json"
	"net/http"

	"github.com/salesrecords/salesd/internal/logging"
	"github.com/salesrecords/salesd/internal/sale"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

// writeFieldErrors reports a rejected mutation with per-field messages.
func writeFieldErrors(w http.ResponseWriter, errs sale.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "errors": errs})
}

// writeNotFound is the single not-found shape used for missing rows,
// missing files, and sanitized-away filenames alike.
func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "not_found"})
}

// serverError logs the technical error and returns a generic 500.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// recordPayload shapes a stored record for the query API, including
// the computed total.
func recordPayload(r sale.Record) map[string]any {
	fields := r.Fields()
	fields["id"] = r.ID
	return fields
}

func recordPayloads(records []sale.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, recordPayload(r))
	}
	return out
}
