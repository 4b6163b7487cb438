// Package submission runs one demand sheet submission end to end: validate the
// request, OCR the image, extract demand rows and append them to the sheet.
package submission

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/catalog"
	"github.com/MeKo-Tech/sheetscan/internal/document"
	"github.com/MeKo-Tech/sheetscan/internal/extract"
	"github.com/MeKo-Tech/sheetscan/internal/sheet"
	"github.com/MeKo-Tech/sheetscan/internal/staging"
)

const defaultMimeType = "image/jpeg"

// ErrValidation marks request validation failures.
var ErrValidation = errors.New("invalid submission")

var errAppend = errors.New("append failed")

// Request is one submitted demand sheet.
type Request struct {
	StoreID  string `json:"store_id"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	MimeType string `json:"mime_type,omitempty"`
	Filename string `json:"filename,omitempty"`

	// Content carries already decoded bytes, e.g. from a multipart upload.
	// When set, Image is ignored.
	Content []byte `json:"-"`
}

// Orchestrator ties validation, staging/OCR, extraction and the sheet append
// together. It keeps no per-request state.
type Orchestrator struct {
	manager *staging.Manager
	catalog *catalog.Catalog
	sink    sheet.Sink
	rng     string
	logger  *slog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator appending to rng of the sink.
func New(manager *staging.Manager, cat *catalog.Catalog, sink sheet.Sink, rng string, opts ...Option) (*Orchestrator, error) {
	switch {
	case manager == nil:
		return nil, errors.New("staging manager is required")
	case cat.Len() == 0:
		return nil, catalog.ErrEmpty
	case sink == nil:
		return nil, errors.New("spreadsheet sink is required")
	case rng == "":
		return nil, errors.New("spreadsheet range is required")
	}
	o := &Orchestrator{
		manager: manager,
		catalog: cat,
		sink:    sink,
		rng:     rng,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Catalog returns the catalog rows are validated against.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// Mode returns the staging mode.
func (o *Orchestrator) Mode() staging.Mode {
	return o.manager.Mode()
}

// Submit processes req and returns its outcome. It never returns nil.
func (o *Orchestrator) Submit(ctx context.Context, req Request) Outcome {
	start := time.Now()
	out := o.submit(ctx, req)

	label := out.Label()
	submissionsTotal.WithLabelValues(label).Inc()
	submissionDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	return out
}

func (o *Orchestrator) submit(ctx context.Context, req Request) Outcome {
	req = req.normalized()
	in, err := o.validate(req)
	if err != nil {
		o.logger.Info("Rejected submission", "store_id", req.StoreID, "error", err)
		return Rejected{Error: strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")}
	}
	uploadSizeBytes.Observe(float64(len(in.Content)))

	var (
		rows  []extract.DemandRow
		stats extract.Stats
		added int64
	)
	report, err := o.manager.Run(ctx, in, func(ctx context.Context, doc *document.Document) error {
		rows, stats = extract.RowsWithStats(doc, o.catalog, req.Date, req.StoreID)
		observeStats(stats)
		o.logger.Debug("Extracted rows",
			"store_id", req.StoreID,
			"tables", doc.TableCount(),
			"candidates", stats.Candidates,
			"accepted", stats.Accepted,
			"unknown_item", stats.UnknownItem,
			"empty_quantity", stats.EmptyQuantity)
		if len(rows) == 0 {
			return nil
		}
		n, err := o.sink.Append(ctx, o.rng, extract.Values(rows))
		if err != nil {
			return fmt.Errorf("%w: %w", errAppend, err)
		}
		added = n
		return nil
	})
	if report.Cleanup.Err != nil {
		cleanupFailures.Inc()
	}
	if err != nil {
		return o.failure(req, report, err)
	}

	if len(rows) == 0 {
		o.logger.Warn("No valid rows found", "store_id", req.StoreID, "candidates", stats.Candidates)
		return Warning{Message: "No valid rows found in the image"}
	}

	rowsAppended.Observe(float64(added))
	o.logger.Info("Appended rows",
		"store_id", req.StoreID,
		"date", req.Date,
		"rows", len(rows),
		"rows_added", added,
		"mode", report.Mode,
		"final_state", report.Final())
	return Success{
		Message:   fmt.Sprintf("Successfully added %d rows to the spreadsheet", added),
		RowsAdded: added,
		Rows:      rows,
	}
}

func (o *Orchestrator) failure(req Request, report staging.Report, err error) Failed {
	var (
		stage   string
		message string
	)
	switch {
	case errors.Is(err, errAppend):
		stage, message = "append", "Failed to append rows to the spreadsheet"
	case staging.StageOf(err) == staging.StageUpload:
		stage, message = "upload", "Failed to stage the image for OCR"
	case staging.StageOf(err) == staging.StageOCR:
		stage, message = "ocr", "Failed to process the image with OCR"
	default:
		stage, message = "unknown", "Failed to process the submission"
	}
	failuresTotal.WithLabelValues(stage).Inc()

	details := err.Error()
	var se *staging.Error
	if errors.As(err, &se) {
		details = se.Err.Error()
	}
	details = strings.TrimPrefix(details, errAppend.Error()+": ")

	o.logger.Error("Submission failed",
		"store_id", req.StoreID,
		"stage", stage,
		"error", err,
		"blob_key", report.Key,
		"cleanup_error", report.Cleanup.Err)
	return Failed{Message: message, Details: details}
}

// normalized trims the identifying fields. The trimmed values are used for
// the blob key, the appended rows and the logs alike.
func (r Request) normalized() Request {
	r.StoreID = strings.TrimSpace(r.StoreID)
	r.Date = strings.TrimSpace(r.Date)
	r.MimeType = strings.TrimSpace(r.MimeType)
	return r
}

func (o *Orchestrator) validate(req Request) (staging.Input, error) {
	if req.StoreID == "" || req.Date == "" {
		return staging.Input{}, fmt.Errorf("%w: store_id and date are required", ErrValidation)
	}

	content := req.Content
	mimeType := req.MimeType
	if len(content) == 0 {
		if strings.TrimSpace(req.Image) == "" {
			return staging.Input{}, fmt.Errorf("%w: image is required", ErrValidation)
		}
		data, dataMime, err := DecodeImage(req.Image)
		if err != nil {
			return staging.Input{}, fmt.Errorf("%w: image is not valid base64", ErrValidation)
		}
		content = data
		if mimeType == "" {
			mimeType = dataMime
		}
	}
	if len(content) == 0 {
		return staging.Input{}, fmt.Errorf("%w: image is empty", ErrValidation)
	}

	if mimeType == "" {
		if o.manager.Mode() == staging.ModeInline {
			return staging.Input{}, fmt.Errorf("%w: mime_type is required", ErrValidation)
		}
		mimeType = SniffMimeType(content)
	}

	return staging.Input{
		Content:  content,
		MimeType: mimeType,
		StoreID:  req.StoreID,
		Filename: req.Filename,
	}, nil
}

// DecodeImage decodes a base64 payload. A data URL prefix
// ("data:image/png;base64,") is accepted and its media type returned.
func DecodeImage(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var mimeType string
	if strings.HasPrefix(s, "data:") {
		header, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, "", errors.New("malformed data url")
		}
		mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(s)
		if rawErr != nil {
			return nil, "", err
		}
	}
	return data, mimeType, nil
}

// SniffMimeType guesses the media type of content, falling back to JPEG.
func SniffMimeType(content []byte) string {
	ct := http.DetectContentType(content)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	switch {
	case strings.HasPrefix(ct, "image/"), ct == "application/pdf":
		return ct
	default:
		return defaultMimeType
	}
}

func observeStats(s extract.Stats) {
	candidateRows.WithLabelValues(extract.Accepted.String()).Add(float64(s.Accepted))
	candidateRows.WithLabelValues(extract.UnknownItem.String()).Add(float64(s.UnknownItem))
	candidateRows.WithLabelValues(extract.EmptyQuantity.String()).Add(float64(s.EmptyQuantity))
}
