// Package batch defines the document batch model, its lifecycle status
// machine, and the error taxonomy shared across the pipeline.
package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/splitscan/splitscan/internal/invoice"
)

// SplitRange is a contiguous, inclusive page interval assigned to one
// output invoice.
type SplitRange struct {
	StartPage  int     `json:"start_page"`
	EndPage    int     `json:"end_page"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label,omitempty"`
}

// Pages returns the number of pages covered by the range.
func (r SplitRange) Pages() int {
	return r.EndPage - r.StartPage + 1
}

// ErrorDetail captures why a batch is parked in ERROR.
type ErrorDetail struct {
	// Stage is the automated stage that failed (PROCESSING, SPLITTING
	// or EXTRACTING_DATA). Reprocess returns the batch to this stage's
	// entry status.
	Stage   Status    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Batch is one uploaded multi-page document plus its complete
// processing record.
type Batch struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"original_filename"`
	SourcePath       string `json:"source_path,omitempty"`
	PageCount        int    `json:"page_count"`
	Status           Status `json:"status"`

	// SplitProposal is the current (possibly manually edited) page
	// partition awaiting human validation.
	SplitProposal []SplitRange `json:"split_proposal,omitempty"`

	// ValidatedSplits is the human-approved partition. Once set it is
	// never regenerated automatically; SplitFiles is index-aligned
	// with it.
	ValidatedSplits []SplitRange `json:"validated_splits,omitempty"`
	SplitFiles      []string     `json:"split_files,omitempty"`

	// Extracted holds one entry per validated split once extraction
	// has run; a nil entry marks an invoice whose extraction failed.
	Extracted []*invoice.ExtractedInvoice `json:"extracted,omitempty"`

	// ExtractionErrors is index-aligned with Extracted; a non-empty
	// entry flags why that invoice has no normalized record.
	ExtractionErrors []string `json:"extraction_errors,omitempty"`

	// Validated marks which extracted records a human has confirmed.
	Validated []bool `json:"validated,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a batch in UPLOADED for a stored original document.
func New(originalFilename, sourcePath string, pageCount int) *Batch {
	now := time.Now().UTC()
	return &Batch{
		ID:               uuid.New().String(),
		OriginalFilename: originalFilename,
		SourcePath:       sourcePath,
		PageCount:        pageCount,
		Status:           StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// AllValidated reports whether every extracted record has been confirmed
// by a human. False when extraction has not produced any records yet.
func (b *Batch) AllValidated() bool {
	if len(b.Validated) == 0 || len(b.Validated) != len(b.ValidatedSplits) {
		return false
	}
	for _, v := range b.Validated {
		if !v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate shared state outside an update.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	c := *b
	c.SplitProposal = append([]SplitRange(nil), b.SplitProposal...)
	c.ValidatedSplits = append([]SplitRange(nil), b.ValidatedSplits...)
	c.SplitFiles = append([]string(nil), b.SplitFiles...)
	c.ExtractionErrors = append([]string(nil), b.ExtractionErrors...)
	c.Validated = append([]bool(nil), b.Validated...)
	if b.Extracted != nil {
		c.Extracted = make([]*invoice.ExtractedInvoice, len(b.Extracted))
		for i, inv := range b.Extracted {
			c.Extracted[i] = inv.Clone()
		}
	}
	if b.Error != nil {
		e := *b.Error
		c.Error = &e
	}
	return &c
}
