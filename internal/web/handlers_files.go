package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/salesrecords/salesd/internal/codec"
	"github.com/salesrecords/salesd/internal/filestore"
)

// handleListFiles lists stored filenames per format. Having no files
// yet is a normal state reported with an informational note.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	jsonFiles, err := s.files.List(codec.FormatJSON)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	xmlFiles, err := s.files.List(codec.FormatXML)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	payload := map[string]any{
		"ok":   true,
		"json": jsonFiles,
		"xml":  xmlFiles,
	}
	if len(jsonFiles) == 0 && len(xmlFiles) == 0 {
		payload["note"] = "no data files on the server yet"
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleViewFile returns one file's normalized content tagged with its
// format. The store sanitizes the requested name; a traversal attempt,
// a missing file, and corrupted content all come back as the same
// not-found response.
func (s *Server) handleViewFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	f, err := s.files.Read(name)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			writeNotFound(w)
			return
		}
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"filename": f.Name,
		"type":     string(f.Format),
		"content":  f.Content,
	})
}
