// Package staging manages the lifetime of a submitted file around one OCR call:
// stage the bytes in blob storage, run OCR against the staged copy, let the
// caller consume the result and always try to remove the staged copy again.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/blob"
	"github.com/MeKo-Tech/sheetscan/internal/document"
	"github.com/MeKo-Tech/sheetscan/internal/ocr"
)

// Mode selects how the file reaches the OCR service.
type Mode string

const (
	// ModeInline sends the bytes with the OCR request. Nothing is staged.
	ModeInline Mode = "inline"
	// ModeStaged uploads the bytes first and sends a storage reference.
	ModeStaged Mode = "staged"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeInline, ModeStaged:
		return m, nil
	default:
		return "", fmt.Errorf("invalid staging mode %q (must be inline or staged)", s)
	}
}

// State is a step of the staging lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateStaged           State = "staged"
	StateProcessed        State = "processed"
	StateFailed           State = "failed"
	StateCleaned          State = "cleaned"
	StateCleanupAttempted State = "cleanup_attempted"
)

// Stage names the step an error came from.
type Stage string

const (
	StageUpload  Stage = "upload"
	StageOCR     Stage = "ocr"
	StageConsume Stage = "consume"
)

// Error wraps a failure with the stage it happened in.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded in err, or "" when err did not come from
// a Manager.
func StageOf(err error) Stage {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Input is the file to process.
type Input struct {
	Content  []byte
	MimeType string
	StoreID  string
	Filename string
}

// Cleanup is the outcome of removing the staged blob. It is reported but never
// changes the result of Run.
type Cleanup struct {
	Attempted bool
	Err       error
	Duration  time.Duration
}

// Report describes one Run.
type Report struct {
	Mode    Mode
	Key     string
	URI     string
	States  []State
	Cleanup Cleanup
}

// Final returns the last state reached.
func (r Report) Final() State {
	if len(r.States) == 0 {
		return StateIdle
	}
	return r.States[len(r.States)-1]
}

func (r *Report) enter(s State) {
	r.States = append(r.States, s)
}

// Config configures a Manager.
type Config struct {
	Mode           Mode
	KeyPrefix      string
	CleanupTimeout time.Duration
}

// Manager runs the stage, process, cleanup lifecycle. It holds no per-request
// state and is safe for concurrent use.
type Manager struct {
	mode           Mode
	store          blob.Store
	processor      ocr.Processor
	keyPrefix      string
	cleanupTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for cleanup reporting.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides the time source used for blob keys.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. A store is required in staged mode.
func NewManager(cfg Config, store blob.Store, processor ocr.Processor, opts ...Option) (*Manager, error) {
	if processor == nil {
		return nil, errors.New("ocr processor is required")
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeInline
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == ModeStaged && store == nil {
		return nil, errors.New("blob store is required in staged mode")
	}
	timeout := cfg.CleanupTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	m := &Manager{
		mode:           mode,
		store:          store,
		processor:      processor,
		keyPrefix:      cfg.KeyPrefix,
		cleanupTimeout: timeout,
		now:            time.Now,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Mode returns the configured mode.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Run processes in and hands the OCR document to use. In staged mode the blob
// is deleted after use returns or after OCR fails, whichever comes first. The
// returned error is the upload, OCR or use error; a cleanup failure is only
// recorded in the report.
func (m *Manager) Run(
	ctx context.Context,
	in Input,
	use func(ctx context.Context, doc *document.Document) error,
) (report Report, err error) {
	report = Report{Mode: m.mode}
	report.enter(StateIdle)

	src := ocr.Source{MimeType: in.MimeType}
	if m.mode == ModeInline {
		src.Content = in.Content
	} else {
		key := blob.NewKey(m.keyPrefix, in.StoreID, in.Filename, in.MimeType, m.now())
		if err := m.store.Put(ctx, key, in.Content, in.MimeType); err != nil {
			return report, &Error{Stage: StageUpload, Err: err}
		}
		report.Key = key
		report.URI = m.store.URI(key)
		report.enter(StateStaged)
		src.URI = report.URI

		defer func() {
			failed := report.Final() == StateFailed
			report.Cleanup = m.cleanup(ctx, key)
			if failed || report.Cleanup.Err != nil {
				report.enter(StateCleanupAttempted)
			} else {
				report.enter(StateCleaned)
			}
		}()
	}

	doc, err := m.processor.Process(ctx, src)
	if err != nil {
		report.enter(StateFailed)
		return report, &Error{Stage: StageOCR, Err: err}
	}
	report.enter(StateProcessed)

	if use != nil {
		if err := use(ctx, doc); err != nil {
			report.enter(StateFailed)
			return report, &Error{Stage: StageConsume, Err: err}
		}
	}
	return report, nil
}

func (m *Manager) cleanup(ctx context.Context, key string) Cleanup {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cleanupTimeout)
	defer cancel()

	start := time.Now()
	err := m.store.Delete(cctx, key)
	c := Cleanup{Attempted: true, Err: err, Duration: time.Since(start)}
	if err != nil {
		m.logger.Warn("Failed to delete staged blob", "key", key, "error", err)
	} else {
		m.logger.Debug("Deleted staged blob", "key", key, "duration", c.Duration)
	}
	return c
}
