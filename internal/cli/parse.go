package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/orderparse/internal/pipeline"
)

var (
	outJSON      string
	outMD        string
	parseTimeout time.Duration
	noFooter     bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse one order text into a structured order",
	Long: `Parse reads one order text (a file, or stdin with "-") and:
- Detects the layout (reservation template or loose free text)
- Extracts customer, contact, fulfillment, address, date and time
- Recognizes item lines and resolves them against the catalog
- Re-derives the total and flags anything that needs a human look

HTML notification bodies (.html files, or content that looks like HTML)
are reduced to their visible text first.

Example:
  orderparse parse order.txt --catalog products.yaml
  pbpaste | orderparse parse - --json order.json --md order.md
  orderparse parse mail.html`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	// Output flags
	parseCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	parseCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	parseCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	parseCmd.Flags().DurationVar(&parseTimeout, "timeout", 30*time.Second, "overall timeout, including catalog loading")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), parseTimeout)
	defer cancel()

	cfg, logger, products, err := setup(ctx, slog.LevelWarn)
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Parsing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Catalog: %d products\n", len(products))
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, products, pipeline.WithLogger(logger))

	report, err := p.ParseFile(ctx, path)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Layout: %s\n", report.Layout)
		fmt.Fprintf(os.Stderr, "✓ Extracted %d items\n", len(report.Order.Items))
		fmt.Fprintf(os.Stderr, "✓ Review signals: %d\n", len(report.Review.Signals))
		if report.Cached {
			fmt.Fprintf(os.Stderr, "✓ Served from cache\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(cmd.OutOrStdout(), report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
