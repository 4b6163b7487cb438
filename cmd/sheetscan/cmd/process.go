package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MeKo-Tech/sheetscan/internal/sheet"
	"github.com/MeKo-Tech/sheetscan/internal/submission"
	"github.com/spf13/cobra"
)

// processCmd runs a single submission from a local file.
var processCmd = &cobra.Command{
	Use:   "process <image>",
	Short: "Process one demand sheet image",
	Long: `Run OCR on a local demand sheet image and append the recognized rows.

With --dry-run the rows are printed instead of appended to the spreadsheet.

Examples:
  sheetscan process sheet.jpg --store S01 --date 2024-01-01
  sheetscan process sheet.png --store S01 --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		storeID, _ := cmd.Flags().GetString("store")
		date, _ := cmd.Flags().GetString("date")
		mimeType, _ := cmd.Flags().GetString("mime-type")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if cmd.Flags().Changed("mode") {
			cfg.Storage.Mode, _ = cmd.Flags().GetString("mode")
		}

		if date == "" {
			date = time.Now().Format(time.DateOnly)
		}

		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if mimeType == "" {
			mimeType = submission.SniffMimeType(data)
		}

		var sink sheet.Sink
		if dryRun {
			sink = printSink(cmd.OutOrStdout())
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if cfg.Server.TimeoutSec > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Server.TimeoutSec)*time.Second)
			defer cancel()
		}

		orchestrator, err := buildOrchestrator(ctx, cfg, sink)
		if err != nil {
			return err
		}

		out := orchestrator.Submit(ctx, submission.Request{
			StoreID:  storeID,
			Date:     date,
			Content:  data,
			MimeType: mimeType,
			Filename: filepath.Base(path),
		})
		return reportOutcome(cmd.OutOrStdout(), out)
	},
}

// printSink writes rows as a table instead of appending them.
func printSink(w io.Writer) sheet.Sink {
	return sheet.SinkFunc(func(_ context.Context, rng string, values [][]string) (int64, error) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintf(tw, "# %s\n", rng)
		_, _ = fmt.Fprintln(tw, "DATE\tSTORE\tITEM\tQUANTITY")
		for _, row := range values {
			_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return 0, err
		}
		return int64(len(values)), nil
	})
}

// reportOutcome prints the outcome as JSON and turns rejections and failures
// into a command error.
func reportOutcome(w io.Writer, out submission.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	switch o := out.(type) {
	case submission.Rejected:
		return errors.New(o.Error)
	case submission.Failed:
		return fmt.Errorf("%s: %s", o.Message, o.Details)
	default:
		return nil
	}
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().String("store", "", "store identifier (required)")
	processCmd.Flags().String("date", "", "sheet date (default today, YYYY-MM-DD)")
	processCmd.Flags().String("mime-type", "", "image MIME type (default sniffed from content)")
	processCmd.Flags().String("mode", "inline", "image staging mode: inline or staged")
	processCmd.Flags().Bool("dry-run", false, "print rows instead of appending them")
	_ = processCmd.MarkFlagRequired("store")
}
