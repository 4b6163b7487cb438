package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/sheetscan/internal/blob"
	"github.com/MeKo-Tech/sheetscan/internal/config"
	"github.com/MeKo-Tech/sheetscan/internal/ocr"
	"github.com/MeKo-Tech/sheetscan/internal/sheet"
	"github.com/MeKo-Tech/sheetscan/internal/staging"
	"github.com/MeKo-Tech/sheetscan/internal/submission"
	"google.golang.org/api/option"
)

func googleOptions(cfg *config.Config) []option.ClientOption {
	if cfg.Google.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.Google.CredentialsFile)}
}

// buildOrchestrator wires the Google clients, catalog and staging manager.
// A nil sink means the configured spreadsheet.
func buildOrchestrator(ctx context.Context, cfg *config.Config, sink sheet.Sink) (*submission.Orchestrator, error) {
	if err := cfg.RequireOCR(); err != nil {
		return nil, err
	}
	if sink == nil {
		if err := cfg.RequireSheets(); err != nil {
			return nil, err
		}
	}

	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	opts := googleOptions(cfg)

	processor, err := ocr.NewDocumentAI(ctx, cfg.DocumentAI(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	stagingCfg, err := cfg.ToStagingConfig()
	if err != nil {
		return nil, err
	}
	var store blob.Store
	if stagingCfg.Mode == staging.ModeStaged {
		store, err = blob.NewGCSStore(ctx, cfg.Storage.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	manager, err := staging.NewManager(stagingCfg, store, processor, staging.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}

	if sink == nil {
		sink, err = sheet.NewGoogleSheets(ctx, cfg.Sheets.SpreadsheetID, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Sheets client: %w", err)
		}
	}

	slog.Info("Pipeline configured",
		"mode", stagingCfg.Mode,
		"processor", cfg.DocumentAI().Name(),
		"catalog_items", cat.Len(),
		"range", cfg.Sheets.Range)

	return submission.New(manager, cat, sink, cfg.Sheets.Range, submission.WithLogger(slog.Default()))
}
