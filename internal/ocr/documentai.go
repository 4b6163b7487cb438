package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/MeKo-Tech/sheetscan/internal/document"
	documentai "google.golang.org/api/documentai/v1"
	"google.golang.org/api/option"
)

// DocumentAIConfig identifies a Document AI processor.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

// Name returns the processor resource name.
func (c DocumentAIConfig) Name() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// Endpoint returns the regional API endpoint.
func (c DocumentAIConfig) Endpoint() string {
	return fmt.Sprintf("https://%s-documentai.googleapis.com/", c.Location)
}

// Validate checks that the processor is fully identified.
func (c DocumentAIConfig) Validate() error {
	switch {
	case c.ProjectID == "":
		return errors.New("document ai project id is required")
	case c.Location == "":
		return errors.New("document ai location is required")
	case c.ProcessorID == "":
		return errors.New("document ai processor id is required")
	}
	return nil
}

// DocumentAI is a Processor backed by a Google Document AI form/table processor.
type DocumentAI struct {
	name    string
	service *documentai.Service
}

var _ Processor = (*DocumentAI)(nil)

// NewDocumentAI creates a client for the configured processor. The regional
// endpoint is applied before opts, so an explicit option.WithEndpoint wins.
func NewDocumentAI(ctx context.Context, cfg DocumentAIConfig, opts ...option.ClientOption) (*DocumentAI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	all := append([]option.ClientOption{option.WithEndpoint(cfg.Endpoint())}, opts...)
	svc, err := documentai.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create document ai client: %w", err)
	}
	return &DocumentAI{name: cfg.Name(), service: svc}, nil
}

func (d *DocumentAI) Process(ctx context.Context, src Source) (*document.Document, error) {
	req := &documentai.GoogleCloudDocumentaiV1ProcessRequest{SkipHumanReview: true}
	switch {
	case src.Inline():
		req.RawDocument = &documentai.GoogleCloudDocumentaiV1RawDocument{
			Content:  base64.StdEncoding.EncodeToString(src.Content),
			MimeType: src.MimeType,
		}
	case src.URI != "":
		req.GcsDocument = &documentai.GoogleCloudDocumentaiV1GcsDocument{
			GcsUri:   src.URI,
			MimeType: src.MimeType,
		}
	default:
		return nil, ErrNoSource
	}

	resp, err := d.service.Projects.Locations.Processors.Process(d.name, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("document ai process failed: %w", err)
	}
	return document.FromDocumentAI(resp.Document), nil
}
