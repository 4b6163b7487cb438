package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/server"
	"github.com/MeKo-Tech/sheetscan/internal/version"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for demand sheet submissions",
	Long: `Start an HTTP server that accepts demand sheet images and appends the
recognized rows to the configured spreadsheet.

The server provides the following endpoints:
  POST /submit  - Submit a demand sheet (JSON with base64 image, or multipart)
  GET  /health  - Health check endpoint
  GET  /catalog - List accepted item names
  GET  /metrics - Prometheus metrics

Examples:
  sheetscan serve
  sheetscan serve --port 8080
  sheetscan serve --host 0.0.0.0 --mode staged`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		if cmd.Flags().Changed("mode") {
			cfg.Storage.Mode, _ = cmd.Flags().GetString("mode")
		}

		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		orchestrator, err := buildOrchestrator(ctx, cfg, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize pipeline: %w", err)
		}

		srv, err := server.NewServer(orchestrator, server.Config{
			Host:        host,
			Port:        port,
			CORSOrigin:  cfg.Server.CORSOrigin,
			MaxUploadMB: int64(cfg.Server.MaxUploadMB),
			TimeoutSec:  cfg.Server.TimeoutSec,
			Version:     version.Version,
			RateLimit: server.RateLimitConfig{
				RequestsPerSecond: cfg.Server.RateLimit,
				Burst:             cfg.Server.RateBurst,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		// Leave room for the response after the submission deadline.
		timeout := time.Duration(cfg.Server.TimeoutSec) * time.Second
		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout + 10*time.Second,
		}

		go func() {
			slog.Info("Starting sheetscan server", "host", host, "port", port, "mode", orchestrator.Mode())
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		slog.Info("Starting graceful shutdown", "timeout", shutdownTimeout)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return err
		}
		slog.Info("Graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("mode", "inline", "image staging mode: inline or staged")
}
