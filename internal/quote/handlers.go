package quote

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

const (
	// multipart boundaries and headers around the image
	formOverhead = int64(1 << 20)
	// parts beyond this are spooled to disk by the multipart reader
	formMemory = int64(32 << 20)
)

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError maps err to a status code and a JSON error body
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := toErrorResponse(err)
	logger := loggerFrom(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "error", err)
	} else {
		logger.Warn("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

// handleAnalyze accepts a multipart upload with an "image" field and returns the quote
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxImageSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, r, &InvalidInputError{Message: tooLargeMessage(maxSize), Err: err})
			return
		}
		writeError(w, r, &InvalidInputError{Message: msgFormParse, Err: err})
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, r, &InvalidInputError{Message: msgNoImage})
			return
		}
		writeError(w, r, &InvalidInputError{Message: msgFormParse, Err: err})
		return
	}
	defer f.Close()

	result, err := s.service.Analyze(r.Context(), &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListExams returns the price catalog
func (s *Server) handleListExams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"exams": s.service.Catalog(),
	})
}

// handleHealth reports liveness and the configured extractor
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "lab-quote",
		"version":   s.version,
		"extractor": s.service.ExtractorName(),
	})
}
