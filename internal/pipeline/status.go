package pipeline

import (
	"context"

	"github.com/splitscan/splitscan/internal/batch"
)

// Next-action hints for polling clients. These are machine-readable
// suggestions, not navigation targets: the client decides what a hint
// means for its own surface.
const (
	ActionStartProcessing = "start_processing"
	ActionReviewSplits    = "review_splits"
	ActionExtractData     = "extract_data"
	ActionValidateData    = "validate_data"
	ActionReprocess       = "reprocess"
	ActionWait            = "wait"
	ActionNone            = ""
)

// StatusReport is the read-only polling view of a batch. Status is
// monotone-non-decreasing on the happy path; Stable marks the statuses
// that cannot change until the next user action, so pollers may stop on
// first observation.
type StatusReport struct {
	BatchID    string             `json:"batch_id"`
	Status     batch.Status       `json:"status"`
	Stable     bool               `json:"stable"`
	NextAction string             `json:"next_action,omitempty"`
	PageCount  int                `json:"page_count"`
	Splits     int                `json:"splits"`
	Extracted  int                `json:"extracted"`
	Validated  int                `json:"validated"`
	Error      *batch.ErrorDetail `json:"error,omitempty"`
}

// Status builds the polling view for one batch.
func (o *Orchestrator) Status(ctx context.Context, id string) (*StatusReport, error) {
	b, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		BatchID:   b.ID,
		Status:    b.Status,
		Stable:    b.Status.Terminal(),
		PageCount: b.PageCount,
		Splits:    len(b.ValidatedSplits),
		Error:     b.Error,
	}
	if report.Splits == 0 {
		report.Splits = len(b.SplitProposal)
	}
	for _, inv := range b.Extracted {
		if inv != nil {
			report.Extracted++
		}
	}
	for _, v := range b.Validated {
		if v {
			report.Validated++
		}
	}
	report.NextAction = o.nextAction(b)
	return report, nil
}

func (o *Orchestrator) nextAction(b *batch.Batch) string {
	switch b.Status {
	case batch.StatusUploaded:
		return ActionStartProcessing
	case batch.StatusSplitProposed:
		return ActionReviewSplits
	case batch.StatusSplitValidated:
		if o.archived {
			return ActionNone
		}
		return ActionExtractData
	case batch.StatusDataValidationPending:
		return ActionValidateData
	case batch.StatusError:
		return ActionReprocess
	case batch.StatusProcessing, batch.StatusSplitting, batch.StatusExtractingData:
		return ActionWait
	}
	return ActionNone
}
