package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"

	"github.com/MeKo-Tech/sheetscan/internal/catalog"
	"github.com/MeKo-Tech/sheetscan/internal/staging"
	"github.com/MeKo-Tech/sheetscan/internal/submission"
)

// mockSubmitter records requests and returns a fixed outcome.
type mockSubmitter struct {
	mu       sync.Mutex
	outcome  submission.Outcome
	requests []submission.Request
	deadline bool
	mode     staging.Mode
	catalog  *catalog.Catalog
}

func newMockSubmitter(out submission.Outcome) *mockSubmitter {
	return &mockSubmitter{
		outcome: out,
		mode:    staging.ModeInline,
		catalog: catalog.New("Sugar", "Rice"),
	}
}

func (m *mockSubmitter) Submit(ctx context.Context, req submission.Request) submission.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	_, m.deadline = ctx.Deadline()
	return m.outcome
}

func (m *mockSubmitter) Mode() staging.Mode { return m.mode }

func (m *mockSubmitter) Catalog() *catalog.Catalog { return m.catalog }

func (m *mockSubmitter) last() submission.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return submission.Request{}
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockSubmitter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// newTestServer builds a server around a mock submitter.
func newTestServer(out submission.Outcome, cfg Config) (*Server, *mockSubmitter) {
	m := newMockSubmitter(out)
	if cfg.TimeoutSec == 0 {
		cfg.TimeoutSec = 30
	}
	s, err := NewServer(m, cfg)
	if err != nil {
		panic(err)
	}
	return s, m
}

// createMultipartRequest builds a multipart POST with form fields and an
// optional image part.
func createMultipartRequest(url string, fields map[string]string, filename, contentType string, data []byte) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, _ := writer.CreatePart(h)
		_, _ = part.Write(data)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
