// Package export produces XLSX workbooks from extracted batch data.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/invoice"
	"github.com/splitscan/splitscan/internal/store"
)

// Service is a tiny façade over the batch store that produces XLSX bytes.
type Service struct {
	store  store.BatchStore
	logger *slog.Logger
}

func NewService(st store.BatchStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// ExportBatchXLSX returns an XLSX workbook (as bytes) for one batch:
// an Invoices summary sheet plus a Line Items detail sheet. Extraction
// must have run; a batch with no extracted records is rejected with a
// StateError.
func (s *Service) ExportBatchXLSX(ctx context.Context, batchID string) ([]byte, error) {
	start := time.Now()

	b, err := s.store.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(b.Extracted) == 0 {
		return nil, &batch.StateError{BatchID: batchID, Op: "export", Status: b.Status}
	}

	f := excelize.NewFile()
	const invSheet = "Invoices"
	const itemSheet = "Line Items"

	// The default sheet becomes the summary; detail gets its own sheet.
	if err := f.SetSheetName(f.GetSheetName(0), invSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(itemSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	if err := s.writeInvoiceSheet(f, invSheet, b); err != nil {
		return nil, err
	}
	if err := s.writeLineItemSheet(f, itemSheet, b); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"batch", batchID,
		"invoices", len(b.Extracted),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeInvoiceSheet(f *excelize.File, sheet string, b *batch.Batch) error {
	headers := []string{
		"Invoice #",
		"Pages",
		"Invoice Number",
		"Invoice Date",
		"Exporter",
		"Importer",
		"Subtotal",
		"Tax",
		"Total",
		"Currency",
		"Validated",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i, inv := range b.Extracted {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, i+1)
		if i < len(b.ValidatedSplits) {
			r := b.ValidatedSplits[i]
			write(2, fmt.Sprintf("%d-%d", r.StartPage, r.EndPage))
		}
		if i < len(b.Validated) {
			write(11, b.Validated[i])
		}
		if i < len(b.ExtractionErrors) && b.ExtractionErrors[i] != "" {
			write(12, truncate(b.ExtractionErrors[i], 140))
		}
		if inv == nil {
			row++
			continue
		}

		if len(inv.BasicInformation) > 0 {
			bi := inv.BasicInformation[0]
			write(3, bi.InvoiceNumber)
			write(4, bi.InvoiceDate)
		}
		if len(inv.Exporter) > 0 {
			write(5, inv.Exporter[0].Name)
		}
		if len(inv.Importer) > 0 {
			write(6, inv.Importer[0].Name)
		}
		if len(inv.TotalsAndSubtotals) > 0 {
			t := inv.TotalsAndSubtotals[0]
			writeNum(f, sheet, 7, row, t.Subtotal)
			writeNum(f, sheet, 8, row, t.Tax)
			writeNum(f, sheet, 9, row, t.Total)
			write(10, currencyOf(inv))
		}
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "C", "D", 18)
	_ = f.SetColWidth(sheet, "E", "F", 28)
	_ = f.SetColWidth(sheet, "G", "I", 14)
	_ = f.SetColWidth(sheet, "L", "L", 48)
	return nil
}

func (s *Service) writeLineItemSheet(f *excelize.File, sheet string, b *batch.Batch) error {
	headers := []string{
		"Invoice #",
		"Type",
		"Item Number",
		"Description",
		"Quantity",
		"Unit Price",
		"Amount",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i, inv := range b.Extracted {
		if inv == nil {
			continue
		}
		for _, li := range inv.LineItems {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			write(1, i+1)
			write(2, li.Type)
			write(3, li.ItemNumber)
			write(4, truncate(li.Description, 140))
			writeNum(f, sheet, 5, row, li.Quantity)
			writeNum(f, sheet, 6, row, li.UnitPrice)
			writeNum(f, sheet, 7, row, li.Amount)
			row++
		}
	}

	_ = f.SetColWidth(sheet, "D", "D", 48)
	_ = f.SetColWidth(sheet, "E", "G", 14)
	return nil
}

// writeNum leaves absent values blank rather than writing zero.
func writeNum(f *excelize.File, sheet string, col, row int, v *float64) {
	if v == nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, *v)
}

func currencyOf(inv *invoice.ExtractedInvoice) string {
	if len(inv.TotalsAndSubtotals) > 0 && inv.TotalsAndSubtotals[0].Currency != "" {
		return inv.TotalsAndSubtotals[0].Currency
	}
	if len(inv.BasicInformation) > 0 {
		return inv.BasicInformation[0].Currency
	}
	return ""
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
