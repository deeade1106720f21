// Package testutil provides shared fixtures for pipeline and server
// tests: a temp home directory, a wired orchestrator backed by mocks,
// and canned layouts and invoice payloads.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/hints"
	"github.com/splitscan/splitscan/internal/home"
	"github.com/splitscan/splitscan/internal/pipeline"
	"github.com/splitscan/splitscan/internal/providers"
	"github.com/splitscan/splitscan/internal/split"
	"github.com/splitscan/splitscan/internal/store"
)

// SampleInvoiceJSON is a minimal record that passes schema validation,
// with string-typed amounts to exercise coercion.
const SampleInvoiceJSON = `{
	"lineItems": [
		{"type": "product", "description": "Steel bolts M8", "quantity": "1.000", "unitPrice": "2,50", "amount": "2.500,00"},
		{"type": "shipping", "description": "Freight", "amount": 120}
	],
	"totalsAndSubtotals": [{"subtotal": "2.620,00", "total": "2.620,00", "currency": "EUR"}],
	"basicInformation": [{"invoiceNumber": "INV-1001", "invoiceDate": "2026-03-02", "currency": "EUR"}],
	"importer": [{"name": "Acme Imports GmbH", "country": "DE"}],
	"exporter": [{"name": "Bolt Works Ltd", "country": "GB"}]
}`

// NewTestHome creates a home directory under t.TempDir.
func NewTestHome(t *testing.T) *home.Dir {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create home: %v", err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatalf("failed to prepare home: %v", err)
	}
	return h
}

// SampleLayout builds a layout with per-page text and one header table
// on the first page.
func SampleLayout(pages int) *providers.Layout {
	l := &providers.Layout{Pages: pages}
	for p := 1; p <= pages; p++ {
		l.TextBlocks = append(l.TextBlocks, providers.TextBlock{
			Page: p,
			Text: fmt.Sprintf("Invoice page %d", p),
		})
	}
	l.Tables = append(l.Tables, providers.LayoutTable{
		Page: 1,
		Table: hints.Table{Cells: []hints.Cell{
			{Row: 0, Column: 0, Text: "Item No."},
			{Row: 0, Column: 1, Text: "Description"},
			{Row: 0, Column: 2, Text: "Qty"},
			{Row: 0, Column: 3, Text: "Unit Price"},
			{Row: 0, Column: 4, Text: "Amount"},
			{Row: 1, Column: 0, Text: "A-1"},
		}},
	})
	return l
}

// Mocks bundles the mock providers wired into a test orchestrator.
type Mocks struct {
	Analyzer  *providers.MockLayoutAnalyzer
	Detector  *providers.MockBoundaryDetector
	Extractor *providers.MockExtractor
	Splitter  *providers.MockSplitter
}

// Env is a fully wired test environment.
type Env struct {
	Orch  *pipeline.Orchestrator
	Store store.BatchStore
	Home  *home.Dir
	Mocks Mocks
}

// NewEnv builds an orchestrator over an in-memory store and mock
// providers. The detector proposes boundaries after pages 4 and 7 by
// default; override via the returned mocks before acting.
func NewEnv(t *testing.T, archived bool) *Env {
	t.Helper()

	mocks := Mocks{
		Analyzer:  &providers.MockLayoutAnalyzer{Layout: SampleLayout(10)},
		Detector:  &providers.MockBoundaryDetector{Boundaries: []split.Boundary{{Page: 4, Confidence: 0.9}, {Page: 7, Confidence: 0.8}}},
		Extractor: &providers.MockExtractor{ResponseJSON: json.RawMessage(SampleInvoiceJSON)},
		Splitter:  &providers.MockSplitter{},
	}

	st := store.NewMemory()
	h := NewTestHome(t)

	orch, err := pipeline.New(pipeline.Options{
		Store:              st,
		Analyzer:           mocks.Analyzer,
		Detector:           mocks.Detector,
		Extractor:          mocks.Extractor,
		Splitter:           mocks.Splitter,
		Home:               h,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		ExtractionArchived: archived,
	})
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}

	return &Env{Orch: orch, Store: st, Home: h, Mocks: mocks}
}

// SeedBatch creates an uploaded batch with a stub source file.
func (e *Env) SeedBatch(t *testing.T, pageCount int) *batch.Batch {
	t.Helper()

	b := batch.New("scan.pdf", "", pageCount)
	src := e.Home.UploadPath(b.ID, "scan.pdf")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatalf("failed to create uploads dir: %v", err)
	}
	if err := os.WriteFile(src, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		t.Fatalf("failed to write stub source: %v", err)
	}
	b.SourcePath = src

	if err := e.Store.Create(context.Background(), b); err != nil {
		t.Fatalf("failed to seed batch: %v", err)
	}
	return b
}

// MustStatus fetches the current status or fails the test.
func (e *Env) MustStatus(t *testing.T, id string) batch.Status {
	t.Helper()
	b, err := e.Store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get batch %s: %v", id, err)
	}
	return b.Status
}
