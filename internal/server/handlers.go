package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/submission"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	if s.submitter != nil {
		response.Mode = string(s.submitter.Mode())
	}
	s.writeJSON(w, http.StatusOK, response)
}

// catalogHandler lists the accepted item names in configuration order.
func (s *Server) catalogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items := []string{}
	if s.submitter != nil {
		if cat := s.submitter.Catalog(); cat.Len() > 0 {
			items = cat.Items()
		}
	}
	s.writeJSON(w, http.StatusOK, CatalogResponse{Items: items, Count: len(items)})
}

// submitHandler accepts one demand sheet as JSON (base64 image) or as a
// multipart upload and responds with the submission outcome.
func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		req submission.Request
		err error
	)
	if mediaType == "multipart/form-data" {
		req, err = s.parseMultipart(r, limit)
	} else {
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !isTooLarge(err) {
			s.writeErrorResponse(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
	}
	if err != nil {
		if isTooLarge(err) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out := s.submitter.Submit(ctx, req)
	s.writeJSON(w, out.HTTPStatus(), out)
}

func (s *Server) parseMultipart(r *http.Request, limit int64) (submission.Request, error) {
	if err := r.ParseMultipartForm(limit); err != nil {
		if isTooLarge(err) {
			return submission.Request{}, err
		}
		return submission.Request{}, errors.New("Failed to parse form data")
	}

	req := submission.Request{
		StoreID:  r.FormValue("store_id"),
		Date:     r.FormValue("date"),
		MimeType: r.FormValue("mime_type"),
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		// A base64 image may also come as a plain form field.
		req.Image = r.FormValue("image")
		return req, nil
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return submission.Request{}, errors.New("Failed to read image data")
	}
	req.Content = data
	req.Filename = header.Filename
	if req.MimeType == "" {
		if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
			req.MimeType = ct
		}
	}
	return req, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
