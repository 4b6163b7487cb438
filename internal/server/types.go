package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/catalog"
	"github.com/MeKo-Tech/sheetscan/internal/staging"
	"github.com/MeKo-Tech/sheetscan/internal/submission"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submitter is the part of the submission orchestrator the server needs.
type Submitter interface {
	Submit(ctx context.Context, req submission.Request) submission.Outcome
	Mode() staging.Mode
	Catalog() *catalog.Catalog
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	submitter   Submitter
	corsOrigin  string
	maxUploadMB int64
	timeout     time.Duration
	version     string
	rateLimiter *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Version     string
	RateLimit   RateLimitConfig
}

// RateLimitConfig configures per-client token buckets. A zero
// RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// HealthResponse is served on /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
	Mode    string `json:"mode,omitempty"`
}

// CatalogResponse is served on /catalog.
type CatalogResponse struct {
	Items []string `json:"items"`
	Count int      `json:"count"`
}

// ErrorResponse is the body of requests rejected before submission.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new server instance.
func NewServer(submitter Submitter, config Config) (*Server, error) {
	if submitter == nil {
		return nil, errors.New("submitter is required")
	}
	s := &Server{
		submitter:   submitter,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeout:     time.Duration(config.TimeoutSec) * time.Second,
		version:     config.Version,
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 20
	}
	if config.RateLimit.RequestsPerSecond > 0 {
		s.rateLimiter = NewRateLimiter(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)
	}
	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/catalog", s.corsMiddleware(s.catalogHandler))
	mux.HandleFunc("/submit", s.corsMiddleware(s.rateLimitMiddleware(s.submitHandler)))
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}
