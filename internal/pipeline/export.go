package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/orderparse/internal/model"
)

const (
	ordersSheet = "Orders"
	itemsSheet  = "Items"
)

// ExportXLSX builds a workbook with one row per order and one row per item
func ExportXLSX(reports []*model.Report, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes Orders
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(ordersSheet)
	f.SetActiveSheet(activeIndex)

	writeHeader(f, ordersSheet, []string{
		"Report ID", "Source", "Layout", "Customer", "Contact", "Recipient",
		"Fulfillment", "Address", "Date", "Time", "Request", "Payment",
		"Delivery Fee", "Discount", "Derived Total", "Vendor Total", "Needs Review",
	})
	writeHeader(f, itemsSheet, []string{
		"Report ID", "Source", "Item", "Quantity", "Price", "Line Total", "Product ID", "Rule",
	})

	orderRow, itemRow := 2, 2
	for _, rep := range reports {
		o := rep.Order
		var vendor any = ""
		if o.VendorTotal != nil {
			vendor = *o.VendorTotal
		}
		writeRow(f, ordersSheet, orderRow, []any{
			rep.ID, rep.Source, rep.Layout, o.CustomerName, o.Contact, o.Recipient,
			string(o.Fulfillment), o.Address, o.Date, o.Time, truncate(o.Request, 140), o.PaymentStatus,
			o.DeliveryFee, o.DiscountValue, o.DerivedTotal, vendor, rep.Review.NeedsReview,
		})
		orderRow++

		for _, item := range o.Items {
			var product any = ""
			if item.ProductID != 0 {
				product = item.ProductID
			}
			writeRow(f, itemsSheet, itemRow, []any{
				rep.ID, rep.Source, item.Name, item.Quantity, item.Price, item.LineTotal(), product, item.Rule,
			})
			itemRow++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(ordersSheet, "A", "A", 38) // id
	_ = f.SetColWidth(ordersSheet, "B", "B", 28) // source
	_ = f.SetColWidth(ordersSheet, "H", "H", 48) // address
	_ = f.SetColWidth(ordersSheet, "K", "K", 40) // request
	_ = f.SetColWidth(itemsSheet, "A", "A", 38)
	_ = f.SetColWidth(itemsSheet, "C", "C", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"orders", orderRow-2,
		"items", itemRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
