package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/splitscan/splitscan/internal/batch"
)

// PdfcpuSplitter implements PdfSplitter with pdfcpu page extraction.
type PdfcpuSplitter struct{}

// NewPdfcpuSplitter creates the local pdfcpu-backed splitter.
func NewPdfcpuSplitter() *PdfcpuSplitter {
	return &PdfcpuSplitter{}
}

// Split writes one PDF per range into destDir and returns the paths,
// index-aligned with ranges. A failure removes any partial output so a
// retry starts clean.
func (s *PdfcpuSplitter) Split(ctx context.Context, sourcePath, destDir string, ranges []batch.SplitRange) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, &SplitError{Err: fmt.Errorf("failed to create output directory: %w", err)}
	}

	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]

	paths := make([]string, 0, len(ranges))
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			cleanup(paths)
			return nil, &SplitError{Err: err}
		}

		outPath := filepath.Join(destDir, fmt.Sprintf("%s_%03d_p%d-%d.pdf", stem, i+1, r.StartPage, r.EndPage))
		pages := []string{fmt.Sprintf("%d-%d", r.StartPage, r.EndPage)}
		if err := api.TrimFile(sourcePath, outPath, pages, nil); err != nil {
			cleanup(paths)
			return nil, &SplitError{Err: fmt.Errorf("failed to extract pages %d-%d: %w", r.StartPage, r.EndPage, err)}
		}
		paths = append(paths, outPath)
	}

	return paths, nil
}

func cleanup(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}
