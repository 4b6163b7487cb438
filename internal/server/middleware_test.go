package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_CORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		corsOrigin     string
		method         string
		expectedStatus int
		shouldCallNext bool
	}{
		{"GET request with CORS headers", "*", http.MethodGet, http.StatusOK, true},
		{"POST request with specific origin", "https://example.com", http.MethodPost, http.StatusOK, true},
		{"OPTIONS request (preflight)", "*", http.MethodOptions, http.StatusOK, false},
		{"error status passes through", "*", http.MethodPost, http.StatusBadRequest, true},
		{"empty CORS origin", "", http.MethodGet, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &Server{corsOrigin: tt.corsOrigin}

			nextCalled := false
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(tt.expectedStatus)
			}

			req := httptest.NewRequest(tt.method, "/test", nil)
			w := httptest.NewRecorder()
			server.corsMiddleware(next)(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.corsOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
			assert.Equal(t, tt.shouldCallNext, nextCalled)
		})
	}
}

func TestServer_RateLimitMiddleware(t *testing.T) {
	server := &Server{rateLimiter: NewRateLimiter(1, 2)}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	server.rateLimiter.now = func() time.Time { return now }

	calls := 0
	handler := server.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1235").Code)

	w := do("10.0.0.1:1236")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Burst"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])

	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1237").Code)
	assert.Equal(t, 4, calls)
}

func TestServer_RateLimitMiddleware_Disabled(t *testing.T) {
	server := &Server{}
	called := false
	handler := server.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) { called = true })

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.True(t, called)
}

func TestServer_HandleRateLimitError_Unknown(t *testing.T) {
	server := &Server{}
	w := httptest.NewRecorder()
	server.handleRateLimitError(w, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Rate limiting check failed"}`, w.Body.String())
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.9:80", "203.0.113.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 203.0.113.2 "}, "10.0.0.9:80", "203.0.113.2"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.9:80", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.5:4321", "192.0.2.5"},
		{"remote without port", nil, "192.0.2.6", "192.0.2.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
