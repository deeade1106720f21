package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/split"
)

// MockLayoutAnalyzer is a LayoutAnalyzer for testing.
type MockLayoutAnalyzer struct {
	Layout     *Layout
	ShouldFail bool

	calls atomic.Int64
}

func (m *MockLayoutAnalyzer) Analyze(ctx context.Context, fileBytes []byte) (*Layout, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ShouldFail {
		return nil, &AnalysisError{Err: fmt.Errorf("mock analysis failure")}
	}
	if m.Layout == nil {
		return &Layout{Pages: 1}, nil
	}
	return m.Layout, nil
}

// Calls returns how many times Analyze has been invoked.
func (m *MockLayoutAnalyzer) Calls() int { return int(m.calls.Load()) }

// MockBoundaryDetector is a BoundaryDetector for testing.
type MockBoundaryDetector struct {
	Boundaries []split.Boundary
	ShouldFail bool

	calls atomic.Int64
}

func (m *MockBoundaryDetector) DetectBoundaries(ctx context.Context, layout *Layout) ([]split.Boundary, error) {
	m.calls.Add(1)
	if m.ShouldFail {
		return nil, &DetectionError{Err: fmt.Errorf("mock detection failure")}
	}
	return m.Boundaries, nil
}

// Calls returns how many times DetectBoundaries has been invoked.
func (m *MockBoundaryDetector) Calls() int { return int(m.calls.Load()) }

// MockExtractor is a RecordExtractor for testing. FailOnCall triggers a
// failure on the n-th invocation (1-based), which lets tests exercise
// partial-failure isolation across invoices.
type MockExtractor struct {
	ResponseJSON json.RawMessage
	ShouldFail   bool
	Truncated    bool
	FailOnCall   map[int]bool

	calls atomic.Int64
}

func (m *MockExtractor) Extract(ctx context.Context, content, hintsGlossary string, targetSchema json.RawMessage) (json.RawMessage, error) {
	call := int(m.calls.Add(1))
	if m.ShouldFail || m.FailOnCall[call] {
		return nil, &ExtractionError{Err: fmt.Errorf("mock extraction failure"), Truncated: m.Truncated}
	}
	if m.ResponseJSON == nil {
		return json.RawMessage(`{"lineItems":[],"totalsAndSubtotals":[],"basicInformation":[],"importer":[],"exporter":[]}`), nil
	}
	return m.ResponseJSON, nil
}

// Calls returns how many times Extract has been invoked.
func (m *MockExtractor) Calls() int { return int(m.calls.Load()) }

// MockSplitter is a PdfSplitter for testing. It fabricates paths
// without touching the filesystem.
type MockSplitter struct {
	ShouldFail bool

	calls atomic.Int64
}

func (m *MockSplitter) Split(ctx context.Context, sourcePath, destDir string, ranges []batch.SplitRange) ([]string, error) {
	m.calls.Add(1)
	if m.ShouldFail {
		return nil, &SplitError{Err: fmt.Errorf("mock split failure")}
	}
	paths := make([]string, len(ranges))
	for i, r := range ranges {
		paths[i] = filepath.Join(destDir, fmt.Sprintf("segment_%03d_p%d-%d.pdf", i+1, r.StartPage, r.EndPage))
	}
	return paths, nil
}

// Calls returns how many times Split has been invoked.
func (m *MockSplitter) Calls() int { return int(m.calls.Load()) }
