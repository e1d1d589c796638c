package web

// handlers.go implements the HTTP handlers for the conversion API. Handlers
// own transport concerns only (multipart decoding, status codes, content
// types); all CSV semantics live in internal/core.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/pairlist/pairlist/internal/core"
	"github.com/pairlist/pairlist/internal/logging"
	"github.com/pairlist/pairlist/internal/web/templates"
)

// errNoValidRows surfaces the "parse succeeded, zero records" case, which
// the core deliberately reports as success.
var errNoValidRows = errors.New("no valid data rows found in the file")

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	maxUpload := humanize.Bytes(uint64(s.cfg.Upload.MaxFileSize))
	if err := templates.UploadPage(maxUpload).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render upload page", "error", err)
	}
}

// handleConvert processes a CSV file upload and returns the stored
// conversion as JSON.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
		} else {
			s.respondError(w, r, fmt.Errorf("invalid multipart form: %w", err), http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if ext := filepath.Ext(header.Filename); !strings.EqualFold(ext, ".csv") {
		s.respondError(w, r, fmt.Errorf("invalid file type %q: only .csv files are accepted", ext), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	logger := logging.WithFields(r.Context(), "filename", header.Filename, "size", header.Size)
	logger.Info("conversion started")

	conv, err := s.service.Convert(ctx, header.Filename, file)
	if err != nil {
		s.respondError(w, r, err, statusForConvertError(err))
		return
	}

	logger.Info("conversion completed",
		"conversion_id", conv.ID,
		"records", len(conv.Records),
		"size", conv.SizeHuman,
	)

	if len(conv.Records) == 0 {
		s.respondError(w, r, errNoValidRows, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, conv)
}

// statusForConvertError picks the HTTP status for a failed Convert call.
func statusForConvertError(err error) int {
	switch {
	case errors.Is(err, core.ErrTooManyConversions):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadRequest
	}
}

// handleGetConversion returns a stored conversion as JSON.
func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.lookupConversion(w, r)
	if !ok {
		return
	}
	writeJSON(w, conv)
}

// handleGetOutput writes the flattened output as plain text, suitable for
// clipboard use. A download query parameter turns it into a file download.
func (s *Server) handleGetOutput(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.lookupConversion(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if r.URL.Query().Get("download") != "" {
		base := strings.TrimSuffix(conv.Filename, filepath.Ext(conv.Filename))
		name := safeFilename(base) + ".txt"
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	}

	if err := core.FlattenTo(w, conv.Records); err != nil {
		logging.FromContext(r.Context()).Error("write output", "error", err)
	}
}

// handleExportRecords re-exports the extracted records as a normalized
// two-column CSV with canonical headers.
func (s *Server) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.lookupConversion(w, r)
	if !ok {
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("records_%s.csv", timestamp)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	csvWriter := csv.NewWriter(w)
	csvWriter.Write([]string{core.ColumnUsername, core.ColumnDisplayName})
	for _, rec := range conv.Records {
		csvWriter.Write([]string{rec.Username, rec.DisplayName})
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		logging.FromContext(r.Context()).Error("write csv export", "error", err)
	}
}

// handleDeleteConversion drops a conversion before its retention lapses.
func (s *Server) handleDeleteConversion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.Remove(id); err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	logging.FromContext(r.Context()).Info("conversion removed", "conversion_id", id)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"deleted"}`))
}

// StatusResponse reports service capacity for the frontend and monitoring.
type StatusResponse struct {
	Limiter          core.LimiterStatus `json:"limiter"`
	Conversions      int                `json:"conversions"`
	MaxFileSize      int64              `json:"maxFileSize"`
	MaxFileSizeHuman string             `json:"maxFileSizeHuman"`
}

// handleStatus returns the current limiter state and store size.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		Limiter:          s.service.LimiterStatus(),
		Conversions:      s.service.Len(),
		MaxFileSize:      s.service.MaxFileSize(),
		MaxFileSizeHuman: humanize.Bytes(uint64(s.service.MaxFileSize())),
	})
}

// lookupConversion fetches the conversion named by the id URL parameter,
// responding 404 when it is unknown or already expired.
func (s *Server) lookupConversion(w http.ResponseWriter, r *http.Request) (*core.Conversion, bool) {
	id := chi.URLParam(r, "id")
	conv, err := s.service.Get(id)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return nil, false
	}
	return conv, true
}

// safeFilename reduces a user-supplied filename to bytes safe inside a
// Content-Disposition header.
func safeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "output"
	}
	return b.String()
}
