package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/home"
	"github.com/splitscan/splitscan/internal/store"
)

func newHome(t *testing.T) *home.Dir {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New failed: %v", err)
	}
	return h
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	st := store.NewMemory()
	h := newHome(t)

	_, err := Ingest(context.Background(), st, h, Request{Filename: "a.pdf"})
	var ie *batch.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want InputError", err)
	}
}

func TestIngestRejectsNonPDF(t *testing.T) {
	st := store.NewMemory()
	h := newHome(t)

	_, err := Ingest(context.Background(), st, h, Request{
		Filename: "a.pdf",
		Data:     []byte("PK\x03\x04 definitely a zip"),
	})
	var ie *batch.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want InputError", err)
	}

	// Nothing should have been persisted.
	batches, listErr := st.List(context.Background())
	if listErr != nil || len(batches) != 0 {
		t.Errorf("got %d batches (err %v), want none", len(batches), listErr)
	}
}

func TestIngestRejectsTruncatedPDF(t *testing.T) {
	st := store.NewMemory()
	h := newHome(t)

	// Valid magic but no cross-reference table or trailer.
	_, err := Ingest(context.Background(), st, h, Request{
		Filename: "a.pdf",
		Data:     []byte("%PDF-1.7\ngarbage"),
	})
	var ie *batch.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want InputError", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"invoices.pdf", "invoices.pdf"},
		{"  scan.PDF  ", "scan.PDF"},
		{"../../etc/passwd", "passwd.pdf"},
		{"/tmp/upload.pdf", "upload.pdf"},
		{"report", "report.pdf"},
		{"", "document.pdf"},
		{".", "document.pdf"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
