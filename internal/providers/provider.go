// Package providers defines the external collaborator contracts the
// pipeline depends on (layout analysis, boundary detection, record
// extraction, physical splitting) and their concrete adapters.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/hints"
	"github.com/splitscan/splitscan/internal/split"
)

// TextBlock is one block of recognized text on a page.
type TextBlock struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// LayoutTable is a detected table together with the page it sits on.
type LayoutTable struct {
	Page  int         `json:"page"`
	Table hints.Table `json:"table"`
}

// Layout is the result of analyzing a scanned document.
type Layout struct {
	Pages      int           `json:"pages"`
	Tables     []LayoutTable `json:"tables"`
	TextBlocks []TextBlock   `json:"text_blocks"`
}

// PageText concatenates the text blocks for an inclusive page range,
// in block order.
func (l *Layout) PageText(startPage, endPage int) string {
	var b strings.Builder
	for _, tb := range l.TextBlocks {
		if tb.Page >= startPage && tb.Page <= endPage {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(tb.Text)
		}
	}
	return b.String()
}

// TablesInRange returns the tables on pages within the inclusive range.
func (l *Layout) TablesInRange(startPage, endPage int) []hints.Table {
	var out []hints.Table
	for _, t := range l.Tables {
		if t.Page >= startPage && t.Page <= endPage {
			out = append(out, t.Table)
		}
	}
	return out
}

// LayoutAnalyzer runs document layout analysis on an uploaded file.
type LayoutAnalyzer interface {
	Analyze(ctx context.Context, fileBytes []byte) (*Layout, error)
}

// BoundaryDetector proposes the pages where one invoice ends and the
// next begins.
type BoundaryDetector interface {
	DetectBoundaries(ctx context.Context, layout *Layout) ([]split.Boundary, error)
}

// RecordExtractor extracts structured data for one split invoice.
// The hint glossary and the target schema description are advisory
// inputs to the extraction call; the raw JSON it returns is normalized
// before storage.
type RecordExtractor interface {
	Extract(ctx context.Context, content, hintsGlossary string, targetSchema json.RawMessage) (json.RawMessage, error)
}

// PdfSplitter materializes one file per validated range.
type PdfSplitter interface {
	Split(ctx context.Context, sourcePath, destDir string, ranges []batch.SplitRange) ([]string, error)
}

// AnalysisError is a layout analysis failure.
type AnalysisError struct{ Err error }

func (e *AnalysisError) Error() string { return fmt.Sprintf("layout analysis failed: %v", e.Err) }
func (e *AnalysisError) Unwrap() error { return e.Err }

// DetectionError is a boundary detection failure.
type DetectionError struct{ Err error }

func (e *DetectionError) Error() string { return fmt.Sprintf("boundary detection failed: %v", e.Err) }
func (e *DetectionError) Unwrap() error { return e.Err }

// ExtractionError is a record extraction failure. Truncated marks the
// distinguished case where the model ran out of output tokens.
type ExtractionError struct {
	Err       error
	Truncated bool
}

func (e *ExtractionError) Error() string {
	if e.Truncated {
		return fmt.Sprintf("record extraction truncated: %v", e.Err)
	}
	return fmt.Sprintf("record extraction failed: %v", e.Err)
}
func (e *ExtractionError) Unwrap() error { return e.Err }

// SplitError is a physical file-splitting failure.
type SplitError struct{ Err error }

func (e *SplitError) Error() string { return fmt.Sprintf("pdf split failed: %v", e.Err) }
func (e *SplitError) Unwrap() error { return e.Err }
