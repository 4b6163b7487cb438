package staging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/blob"
	"github.com/MeKo-Tech/sheetscan/internal/document"
	"github.com/MeKo-Tech/sheetscan/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore wraps a MemoryStore, records calls and injects failures.
type recordingStore struct {
	*blob.MemoryStore
	mu           sync.Mutex
	events       *[]string
	putErr       error
	deleteErr    error
	deleted      bool
	deleteCtxErr error
}

func (s *recordingStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.record("put")
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, key, data, contentType)
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.record("delete")
	s.deleted = true
	s.deleteCtxErr = ctx.Err()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStore.Delete(ctx, key)
}

func (s *recordingStore) record(e string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.events = append(*s.events, e)
}

func newFixture(mode Mode, ocrErr error) (*Manager, *recordingStore, *[]string, *[]ocr.Source) {
	events := &[]string{}
	sources := &[]ocr.Source{}
	store := &recordingStore{MemoryStore: blob.NewMemoryStore(), events: events}
	proc := ocr.ProcessorFunc(func(ctx context.Context, src ocr.Source) (*document.Document, error) {
		*events = append(*events, "ocr")
		*sources = append(*sources, src)
		if ocrErr != nil {
			return nil, ocrErr
		}
		return &document.Document{Text: "ok"}, nil
	})
	clock := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	m, err := NewManager(Config{Mode: mode, KeyPrefix: "uploads"}, store, proc, WithClock(clock))
	if err != nil {
		panic(err)
	}
	return m, store, events, sources
}

var input = Input{Content: []byte("jpeg"), MimeType: "image/jpeg", StoreID: "S01"}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Staged ")
	require.NoError(t, err)
	assert.Equal(t, ModeStaged, m)

	m, err = ParseMode("inline")
	require.NoError(t, err)
	assert.Equal(t, ModeInline, m)

	_, err = ParseMode("batch")
	assert.Error(t, err)
}

func TestNewManager_Validation(t *testing.T) {
	proc := ocr.ProcessorFunc(func(context.Context, ocr.Source) (*document.Document, error) { return nil, nil })

	_, err := NewManager(Config{Mode: ModeStaged}, nil, proc)
	assert.Error(t, err, "staged mode needs a store")

	_, err = NewManager(Config{Mode: ModeInline}, nil, nil)
	assert.Error(t, err, "processor is required")

	_, err = NewManager(Config{Mode: "other"}, nil, proc)
	assert.Error(t, err)

	m, err := NewManager(Config{}, nil, proc)
	require.NoError(t, err)
	assert.Equal(t, ModeInline, m.Mode())
}

func TestRun_StagedSuccess(t *testing.T) {
	m, store, events, sources := newFixture(ModeStaged, nil)

	var consumed *document.Document
	report, err := m.Run(context.Background(), input, func(_ context.Context, doc *document.Document) error {
		*events = append(*events, "use")
		consumed = doc
		return nil
	})

	require.NoError(t, err)
	require.NotNil(t, consumed)
	assert.Equal(t, []string{"put", "ocr", "use", "delete"}, *events)
	assert.Equal(t, []State{StateIdle, StateStaged, StateProcessed, StateCleaned}, report.States)
	assert.Equal(t, StateCleaned, report.Final())
	assert.True(t, strings.HasPrefix(report.Key, "uploads/S01_20240101T000000Z_"))
	assert.Equal(t, "mem://"+report.Key, report.URI)
	assert.True(t, report.Cleanup.Attempted)
	assert.NoError(t, report.Cleanup.Err)
	assert.Equal(t, 0, store.Len())

	require.Len(t, *sources, 1)
	assert.Empty(t, (*sources)[0].Content)
	assert.Equal(t, report.URI, (*sources)[0].URI)
	assert.Equal(t, "image/jpeg", (*sources)[0].MimeType)
}

func TestRun_StagedUploadFailure(t *testing.T) {
	m, store, events, _ := newFixture(ModeStaged, nil)
	store.putErr = errors.New("bucket unavailable")

	report, err := m.Run(context.Background(), input, nil)

	require.Error(t, err)
	assert.Equal(t, StageUpload, StageOf(err))
	assert.Equal(t, []string{"put"}, *events, "no OCR and no cleanup after a failed upload")
	assert.Equal(t, []State{StateIdle}, report.States)
	assert.False(t, report.Cleanup.Attempted)
	assert.Empty(t, report.Key)
}

func TestRun_StagedOCRFailureCleansUp(t *testing.T) {
	ocrErr := errors.New("quota exceeded")
	m, store, events, _ := newFixture(ModeStaged, ocrErr)

	called := false
	report, err := m.Run(context.Background(), input, func(context.Context, *document.Document) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ocrErr)
	assert.Equal(t, StageOCR, StageOf(err))
	assert.False(t, called)
	assert.Equal(t, []string{"put", "ocr", "delete"}, *events)
	assert.Equal(t, []State{StateIdle, StateStaged, StateFailed, StateCleanupAttempted}, report.States)
	assert.NoError(t, report.Cleanup.Err)
	assert.Equal(t, 0, store.Len())
}

func TestRun_CleanupFailureNeverOverridesOCRError(t *testing.T) {
	ocrErr := errors.New("processing failed")
	m, store, _, _ := newFixture(ModeStaged, ocrErr)
	store.deleteErr = errors.New("delete denied")

	report, err := m.Run(context.Background(), input, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ocrErr)
	assert.NotErrorIs(t, err, store.deleteErr)
	assert.True(t, report.Cleanup.Attempted)
	assert.EqualError(t, report.Cleanup.Err, "delete denied")
	assert.Equal(t, StateCleanupAttempted, report.Final())
}

func TestRun_CleanupFailureNeverOverridesSuccess(t *testing.T) {
	m, store, _, _ := newFixture(ModeStaged, nil)
	store.deleteErr = errors.New("delete denied")

	report, err := m.Run(context.Background(), input, nil)

	require.NoError(t, err)
	assert.Error(t, report.Cleanup.Err)
	assert.Equal(t, []State{StateIdle, StateStaged, StateProcessed, StateCleanupAttempted}, report.States)
}

func TestRun_ConsumerFailureCleansUp(t *testing.T) {
	m, store, events, _ := newFixture(ModeStaged, nil)
	sinkErr := errors.New("append failed")

	report, err := m.Run(context.Background(), input, func(context.Context, *document.Document) error {
		return sinkErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, StageConsume, StageOf(err))
	assert.Equal(t, []string{"put", "ocr", "delete"}, *events)
	assert.Equal(t, []State{StateIdle, StateStaged, StateProcessed, StateFailed, StateCleanupAttempted}, report.States)
	assert.Equal(t, 0, store.Len())
}

func TestRun_CleanupSurvivesCancelledRequest(t *testing.T) {
	m, store, _, _ := newFixture(ModeStaged, nil)
	ctx, cancel := context.WithCancel(context.Background())

	report, err := m.Run(ctx, input, func(context.Context, *document.Document) error {
		cancel()
		return context.Canceled
	})

	require.Error(t, err)
	assert.NoError(t, report.Cleanup.Err)
	assert.True(t, store.deleted)
	assert.NoError(t, store.deleteCtxErr, "cleanup must not inherit request cancellation")
	assert.Equal(t, 0, store.Len())
}

func TestRun_Inline(t *testing.T) {
	m, store, events, sources := newFixture(ModeInline, nil)

	report, err := m.Run(context.Background(), input, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"ocr"}, *events)
	assert.Equal(t, []State{StateIdle, StateProcessed}, report.States)
	assert.Empty(t, report.Key)
	assert.False(t, report.Cleanup.Attempted)
	assert.Equal(t, 0, store.Len())

	require.Len(t, *sources, 1)
	assert.Equal(t, []byte("jpeg"), (*sources)[0].Content)
	assert.Empty(t, (*sources)[0].URI)
}

func TestRun_InlineOCRFailure(t *testing.T) {
	m, _, _, _ := newFixture(ModeInline, errors.New("boom"))

	report, err := m.Run(context.Background(), input, nil)

	require.Error(t, err)
	assert.Equal(t, StageOCR, StageOf(err))
	assert.Equal(t, []State{StateIdle, StateFailed}, report.States)
}

func TestStageOf(t *testing.T) {
	assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
	assert.Equal(t, Stage(""), StageOf(nil))
	err := &Error{Stage: StageOCR, Err: errors.New("x")}
	assert.Equal(t, "ocr failed: x", err.Error())
}
