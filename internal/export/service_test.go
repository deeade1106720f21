package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/invoice"
	"github.com/splitscan/splitscan/internal/store"
)

func f64(v float64) *float64 { return &v }

func seedExtractedBatch(t *testing.T, st store.BatchStore) *batch.Batch {
	t.Helper()
	b := batch.New("scan.pdf", "/tmp/scan.pdf", 6)
	b.Status = batch.StatusDataValidationPending
	b.ValidatedSplits = []batch.SplitRange{
		{StartPage: 1, EndPage: 3, Confidence: 0.9},
		{StartPage: 4, EndPage: 6, Confidence: 0.8},
	}
	b.Extracted = []*invoice.ExtractedInvoice{
		{
			LineItems: []invoice.LineItem{
				{Type: "product", ItemNumber: "A-1", Description: "Widget", Quantity: f64(2), UnitPrice: f64(9.5), Amount: f64(19)},
			},
			TotalsAndSubtotals: []invoice.Totals{{Subtotal: f64(19), Tax: f64(3.99), Total: f64(22.99), Currency: "EUR"}},
			BasicInformation:   []invoice.BasicInfo{{InvoiceNumber: "INV-1001", InvoiceDate: "2026-08-01"}},
			Exporter:           []invoice.Party{{Name: "Acme Export GmbH"}},
			Importer:           []invoice.Party{{Name: "Beta Imports Ltd"}},
		},
		nil,
	}
	b.ExtractionErrors = []string{"", "adapter_error: upstream timeout"}
	b.Validated = []bool{true, false}
	if err := st.Create(context.Background(), b); err != nil {
		t.Fatalf("seeding batch: %v", err)
	}
	return b
}

func TestExportBatchXLSX(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	b := seedExtractedBatch(t, st)

	data, err := svc.ExportBatchXLSX(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("ExportBatchXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Invoices", "C2")
	if err != nil || got != "INV-1001" {
		t.Errorf("C2 = %q (err %v), want INV-1001", got, err)
	}
	if got, _ := f.GetCellValue("Invoices", "B2"); got != "1-3" {
		t.Errorf("B2 = %q, want 1-3", got)
	}
	if got, _ := f.GetCellValue("Invoices", "I2"); got != "22.99" {
		t.Errorf("I2 = %q, want 22.99", got)
	}
	if got, _ := f.GetCellValue("Invoices", "J2"); got != "EUR" {
		t.Errorf("J2 = %q, want EUR", got)
	}

	// Failed invoice keeps its row with the error message, no amounts.
	if got, _ := f.GetCellValue("Invoices", "L3"); got != "adapter_error: upstream timeout" {
		t.Errorf("L3 = %q, want the extraction error", got)
	}
	if got, _ := f.GetCellValue("Invoices", "I3"); got != "" {
		t.Errorf("I3 = %q, want empty for failed invoice", got)
	}

	if got, _ := f.GetCellValue("Line Items", "D2"); got != "Widget" {
		t.Errorf("line item D2 = %q, want Widget", got)
	}
	if got, _ := f.GetCellValue("Line Items", "A2"); got != "1" {
		t.Errorf("line item A2 = %q, want 1", got)
	}
}

func TestExportBatchXLSXRequiresExtractedData(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))

	b := batch.New("scan.pdf", "/tmp/scan.pdf", 6)
	if err := st.Create(context.Background(), b); err != nil {
		t.Fatalf("seeding batch: %v", err)
	}

	_, err := svc.ExportBatchXLSX(context.Background(), b.ID)
	var se *batch.StateError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want StateError", err)
	}
}

func TestExportBatchXLSXNotFound(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.ExportBatchXLSX(context.Background(), "missing")
	if !errors.Is(err, batch.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
