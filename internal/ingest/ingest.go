// Package ingest handles intake of uploaded multi-page PDF documents.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/home"
	"github.com/splitscan/splitscan/internal/store"
)

// pdfMagic is the required prefix of any PDF file.
var pdfMagic = []byte("%PDF-")

// Request contains the parameters for ingesting an uploaded document.
type Request struct {
	Filename string       // original filename as uploaded
	Data     []byte       // raw PDF bytes
	Logger   *slog.Logger // optional logger for progress updates
}

// Ingest validates the uploaded PDF, stores it under the home directory
// and creates a batch record in UPLOADED status. Malformed input is
// rejected before anything is written.
func Ingest(ctx context.Context, st store.BatchStore, homeDir *home.Dir, req Request) (*batch.Batch, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	if len(req.Data) == 0 {
		return nil, &batch.InputError{Detail: "empty upload"}
	}
	if !bytes.HasPrefix(req.Data, pdfMagic) {
		return nil, &batch.InputError{Detail: "uploaded file is not a PDF"}
	}

	pageCount, err := api.PageCount(bytes.NewReader(req.Data), nil)
	if err != nil {
		return nil, &batch.InputError{Detail: fmt.Sprintf("unreadable PDF: %v", err)}
	}
	if pageCount == 0 {
		return nil, &batch.InputError{Detail: "PDF has no pages"}
	}

	if err := homeDir.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}

	filename := sanitizeFilename(req.Filename)
	b := batch.New(filename, "", pageCount)
	path := homeDir.UploadPath(b.ID, filename)
	if err := os.WriteFile(path, req.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	b.SourcePath = path

	if err := st.Create(ctx, b); err != nil {
		// Clean up on failure
		os.Remove(path)
		return nil, fmt.Errorf("failed to create batch record: %w", err)
	}

	log.Info("ingest complete", "batch", b.ID, "filename", filename, "pages", pageCount)
	return b, nil
}

// sanitizeFilename reduces an uploaded name to a safe base name.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "document.pdf"
	}
	if !strings.EqualFold(filepath.Ext(base), ".pdf") {
		base += ".pdf"
	}
	return base
}
