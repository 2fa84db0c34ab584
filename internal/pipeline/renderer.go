package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/orderparse/internal/model"
)

// Renderer writes reports as JSON, Markdown and a console summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown returns the Markdown rendering of a report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	o := report.Order

	fmt.Fprintf(&b, "# Order: %s\n\n", report.Source)
	fmt.Fprintf(&b, "- **Report:** `%s`\n", report.ID)
	fmt.Fprintf(&b, "- **Parsed:** %s\n", report.ParsedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Layout:** %s\n", report.Layout)
	if report.Cached {
		b.WriteString("- **Cached:** yes\n")
	}
	b.WriteString("\n## Customer\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(label, value string) {
		if value == "" {
			value = "—"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", label, escapeCell(value))
	}
	row("Name", o.CustomerName)
	row("Contact", o.Contact)
	row("Recipient", o.Recipient)
	row("Fulfillment", string(o.Fulfillment))
	row("Address", o.Address)
	row("Date", o.Date)
	row("Time", o.Time)
	row("Request", o.Request)
	row("Payment", o.PaymentStatus)

	b.WriteString("\n## Items\n\n")
	if len(o.Items) == 0 {
		b.WriteString("_No items recognized._\n")
	} else {
		b.WriteString("| # | Name | Qty | Price | Line total | Product | Rule |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
		for i, item := range o.Items {
			product := "—"
			if item.ProductID != 0 {
				product = fmt.Sprintf("%d", item.ProductID)
			}
			fmt.Fprintf(&b, "| %d | %s | %d | %s | %s | %s | %s |\n",
				i+1, escapeCell(item.Name), item.Quantity,
				formatWon(item.Price), formatWon(item.LineTotal()), product, item.Rule)
		}
	}

	b.WriteString("\n## Amounts\n\n")
	fmt.Fprintf(&b, "- Delivery fee: %s\n", formatWon(o.DeliveryFee))
	fmt.Fprintf(&b, "- Discount: %s\n", formatWon(o.DiscountValue))
	fmt.Fprintf(&b, "- Derived total: %s\n", formatWon(o.DerivedTotal))
	if o.VendorTotal != nil {
		fmt.Fprintf(&b, "- Vendor total: %s\n", formatWon(*o.VendorTotal))
	} else {
		b.WriteString("- Vendor total: —\n")
	}

	b.WriteString("\n## Review\n\n")
	if report.Review.NeedsReview {
		b.WriteString("**Needs review.**\n\n")
	} else {
		b.WriteString("No issues requiring review.\n\n")
	}
	for _, s := range report.Review.Signals {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n_Generated by orderparse. Amounts are read from the order text; check flagged orders against the source._\n")
	}
	return b.String()
}

// RenderSummary prints a short console summary of the report
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	o := report.Order
	fmt.Fprintln(w, "\n═══════════════════════════════════════════════")
	fmt.Fprintf(w, "  Order: %s\n", report.Source)
	fmt.Fprintln(w, "═══════════════════════════════════════════════")
	fmt.Fprintf(w, "  Layout:      %s\n", report.Layout)
	if o.CustomerName != "" || o.Contact != "" {
		fmt.Fprintf(w, "  Customer:    %s %s\n", o.CustomerName, o.Contact)
	}
	fmt.Fprintf(w, "  Fulfillment: %s\n", o.Fulfillment)
	if o.Date != "" || o.Time != "" {
		fmt.Fprintf(w, "  When:        %s %s\n", o.Date, o.Time)
	}
	fmt.Fprintf(w, "  Items:       %d\n", len(o.Items))
	for _, item := range o.Items {
		fmt.Fprintf(w, "    - %s × %d @ %s\n", item.Name, item.Quantity, formatWon(item.Price))
	}
	fmt.Fprintf(w, "  Total:       %s", formatWon(o.DerivedTotal))
	if o.VendorTotal != nil && *o.VendorTotal != o.DerivedTotal {
		fmt.Fprintf(w, " (vendor: %s)", formatWon(*o.VendorTotal))
	}
	fmt.Fprintln(w)

	if report.Review.NeedsReview {
		fmt.Fprintln(w, "\n  ✗ Needs review:")
		for _, s := range report.Review.Signals {
			if s.Severity == model.SeverityInfo {
				continue
			}
			fmt.Fprintf(w, "    [%s] %s\n", s.Severity, s.Description)
		}
	} else {
		fmt.Fprintln(w, "\n  ✓ No issues")
	}
	fmt.Fprintln(w, "═══════════════════════════════════════════════")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// formatWon renders an amount with thousands separators, e.g. 45,000원
func formatWon(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "원"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
