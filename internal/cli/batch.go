package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/orderparse/internal/model"
	"github.com/ppiankov/orderparse/internal/pipeline"
	"github.com/ppiankov/orderparse/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	xlsxPath     string
	batchTimeout time.Duration
	// noFooter is defined in parse.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|list-file>",
	Short: "Parse many order texts in parallel",
	Long: `Batch parses many order texts concurrently:
- Take every .txt/.html/.eml file of a directory, or the paths listed in a file
- Parse them in parallel against one catalog snapshot
- Write a JSON and Markdown report per order
- Optionally export every order and item to one XLSX workbook

Example:
  orderparse batch ./inbox --catalog products.yaml
  orderparse batch orders.list --concurrency 8 --output-dir ./reports
  orderparse batch ./inbox --xlsx orders.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./orderparse-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also export all orders to this XLSX workbook")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	target := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, logger, products, err := setup(ctx, slog.LevelWarn)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  orderparse Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", target)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Catalog:      %d products\n", len(products))
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	if xlsxPath != "" {
		fmt.Fprintf(os.Stderr, "  XLSX:         %s\n", xlsxPath)
	}
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.NewPipeline(cfg, products, pipeline.WithLogger(logger))
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, logger, nil)

	fmt.Fprintf(os.Stderr, "⚙️  Parsing orders...\n\n")
	results, err := processor.ProcessTarget(ctx, target)
	if err != nil {
		return fmt.Errorf("process target: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	reports := make([]*model.Report, 0, len(results))
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		reports = append(reports, result.Report)

		// Same stem from different dirs gets a numeric suffix
		stem := pipeline.SourceName(result.Path)
		used[stem]++
		if n := used[stem]; n > 1 {
			stem = fmt.Sprintf("%s-%d", stem, n)
		}
		jsonPath := filepath.Join(outputDir, stem+".json")
		mdPath := filepath.Join(outputDir, stem+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		mark := "✓"
		if result.Report.Review.NeedsReview {
			mark = "!"
		}
		fmt.Fprintf(os.Stderr, "%s %s (%d items, total %d)\n", mark, result.Path, len(result.Report.Order.Items), result.Report.Order.DerivedTotal)
	}

	if xlsxPath != "" && len(reports) > 0 {
		data, err := pipeline.ExportXLSX(reports, logger)
		if err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	summary := worker.Summarize(results)

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:         %d files\n", summary.Files)
	fmt.Fprintf(os.Stderr, "  Parsed:        %d\n", summary.Parsed)
	fmt.Fprintf(os.Stderr, "  Failures:      %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Needs review:  %d\n", summary.NeedsReview)
	fmt.Fprintf(os.Stderr, "  From cache:    %d\n", summary.Cached)
	fmt.Fprintf(os.Stderr, "  Output:        %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
