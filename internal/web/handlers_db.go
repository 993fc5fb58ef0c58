package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/salesrecords/salesd/internal/sale"
	"github.com/salesrecords/salesd/internal/store"
)

// handleDBList returns all database-backed sales in the store's
// default ordering.
func (s *Server) handleDBList(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": recordPayloads(records)})
}

// handleDBSearch matches the query case-insensitively as a substring
// against order_id, customer_name, and product.
func (s *Server) handleDBSearch(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": recordPayloads(records)})
}

// handleDBUpdate applies a partial update from a JSON body. Invalid
// fields are reported together and nothing is persisted unless every
// supplied field passes.
func (s *Server) handleDBUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fields := make(map[string]string, len(payload))
	for _, key := range sale.RequiredKeys {
		if v, present := payload[key]; present {
			fields[key] = sale.ValueString(v)
		}
	}

	ferrs, err := s.records.Update(r.Context(), id, fields)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeNotFound(w)
	case err != nil:
		s.serverError(w, r, err)
	case ferrs != nil:
		writeFieldErrors(w, ferrs)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// handleDBDelete removes a sale by id; a missing id is a not-found
// outcome, not a silent success.
func (s *Server) handleDBDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := s.records.Delete(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeNotFound(w)
	case err != nil:
		s.serverError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeNotFound(w)
		return 0, false
	}
	return id, true
}
