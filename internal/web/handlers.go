package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/salesrecords/salesd/internal/codec"
	"github.com/salesrecords/salesd/internal/export"
	"github.com/salesrecords/salesd/internal/logging"
	"github.com/salesrecords/salesd/internal/sale"
)

// handleIndex serves the submission form page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleExport accepts a sale submission and stores it in the chosen
// sink. Field validation is the strict form-level kind: quantity >= 1,
// price >= 0, calendar date not in the future.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	errs := sale.FieldErrors{}
	var rec sale.Record
	var err error

	if rec.OrderID, err = sale.RequireText(r.FormValue("order_id")); err != nil {
		errs.Add("order_id", err.Error())
	}
	if rec.CustomerName, err = sale.RequireText(r.FormValue("customer_name")); err != nil {
		errs.Add("customer_name", err.Error())
	}
	if rec.Product, err = sale.RequireText(r.FormValue("product")); err != nil {
		errs.Add("product", err.Error())
	}
	if rec.Quantity, err = sale.ParseQuantity(r.FormValue("quantity")); err != nil {
		errs.Add("quantity", err.Error())
	}
	if rec.Price, err = sale.ParsePrice(r.FormValue("price")); err != nil {
		errs.Add("price", err.Error())
	}
	if rec.Date, err = sale.ParseDate(r.FormValue("date")); err != nil {
		errs.Add("date", err.Error())
	}

	dest, err := export.ParseDestination(r.FormValue("storage"))
	if err != nil {
		errs.Add("storage", "choose file or table")
	}

	var format codec.Format
	if dest == export.DestinationFile {
		if format, err = codec.ParseFormat(r.FormValue("export_format")); err != nil {
			errs.Add("export_format", "select a file format")
		}
	}

	if !errs.Empty() {
		writeFieldErrors(w, errs)
		return
	}

	outcome, err := s.exporter.Export(r.Context(), export.Submission{
		Record:      rec,
		Destination: dest,
		Format:      format,
	})
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	switch {
	case outcome.Duplicate:
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"duplicate": true,
			"message":   "this sale already exists and was not added",
		})
	case outcome.FileName != "":
		writeJSON(w, http.StatusCreated, map[string]any{
			"ok":       true,
			"filename": outcome.FileName,
			"message":  "sale saved to " + outcome.FileName,
		})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{
			"ok":      true,
			"message": "sale stored in the database",
		})
	}
}

// allowedUploadTypes is the MIME allow-list checked before parsing.
var allowedUploadTypes = map[string]bool{
	"application/json": true,
	"text/json":        true,
	"application/xml":  true,
	"text/xml":         true,
}

// handleUpload accepts a JSON or XML file, validates its shape, and
// stores a normalized copy under a server-generated name. An upload
// that fails to decode or fails the shape check is rejected outright
// and nothing is written.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" {
		// The declared type, when present, must be a JSON or XML type.
		base := strings.TrimSpace(strings.Split(ct, ";")[0])
		if !allowedUploadTypes[strings.ToLower(base)] {
			writeError(w, http.StatusBadRequest, "file type not allowed; JSON or XML expected")
			return
		}
	}

	var format codec.Format
	name := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(name, ".json"):
		format = codec.FormatJSON
	case strings.HasSuffix(name, ".xml"):
		format = codec.FormatXML
	default:
		writeError(w, http.StatusBadRequest, "file extension must be .json or .xml")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}

	fields, err := codec.Decode(content, format)
	if err != nil {
		logging.FromContext(r.Context()).Info("upload rejected",
			"filename", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, "file rejected: not a valid "+string(format)+" document")
		return
	}

	if shapeErrs := sale.CheckShape(fields); len(shapeErrs) > 0 {
		logging.FromContext(r.Context()).Info("upload rejected",
			"filename", header.Filename, "reasons", shapeErrs)
		writeError(w, http.StatusBadRequest, "file rejected: not a valid sale record")
		return
	}

	stored, err := s.files.Save(fields, format, "upload")
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":       true,
		"filename": stored,
		"message":  "file saved as " + stored,
	})
}
