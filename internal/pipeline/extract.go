package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/hints"
	"github.com/splitscan/splitscan/internal/invoice"
	"github.com/splitscan/splitscan/internal/normalize"
	"github.com/splitscan/splitscan/internal/providers"
)

// ExtractData runs record extraction over every validated split. Valid
// in SPLIT_VALIDATED, or in DATA_VALIDATION_PENDING to re-extract
// invoices not yet confirmed by a human. A failure on one invoice is
// recorded against that index and never aborts the remaining invoices;
// the batch reaches DATA_VALIDATION_PENDING regardless.
func (o *Orchestrator) ExtractData(ctx context.Context, id string) error {
	if o.archived {
		return batch.ErrFeatureArchived
	}

	b, err := o.enterStage(ctx, id, "extract data", batch.StatusExtractingData)
	if err != nil {
		return err
	}

	o.logger.Info("extraction started", "batch", id, "splits", len(b.ValidatedSplits))
	o.runStage(ctx, id, batch.StatusExtractingData, func(stageCtx context.Context) error {
		return o.runExtraction(stageCtx, b)
	})
	return nil
}

type itemResult struct {
	record *invoice.ExtractedInvoice
	errMsg string
}

func (o *Orchestrator) runExtraction(ctx context.Context, b *batch.Batch) error {
	layout, err := o.layoutFor(ctx, b)
	if err != nil {
		return err
	}

	schemaJSON, err := invoice.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to load target schema: %w", err)
	}

	results := make([]itemResult, len(b.ValidatedSplits))
	for i, r := range b.ValidatedSplits {
		// Human-approved records survive re-extraction untouched.
		if i < len(b.Validated) && b.Validated[i] {
			results[i] = itemResult{record: b.Extracted[i]}
			continue
		}
		results[i] = o.extractOne(ctx, b.ID, i, layout, r, schemaJSON)
	}

	_, err = o.store.Update(ctx, b.ID, func(cur *batch.Batch) error {
		if cur.Status != batch.StatusExtractingData {
			return &batch.StateError{BatchID: b.ID, Op: "store extracted data", Status: cur.Status}
		}
		n := len(cur.ValidatedSplits)
		extracted := make([]*invoice.ExtractedInvoice, n)
		errMsgs := make([]string, n)
		validated := make([]bool, n)
		for i := range cur.ValidatedSplits {
			extracted[i] = results[i].record
			errMsgs[i] = results[i].errMsg
			// Confirmations survive overwrites of unconfirmed slots.
			if i < len(cur.Validated) {
				validated[i] = cur.Validated[i]
			}
		}
		cur.Extracted = extracted
		cur.ExtractionErrors = errMsgs
		cur.Validated = validated
		cur.Status = batch.StatusDataValidationPending
		return nil
	})
	if err != nil {
		return err
	}

	o.logger.Info("extraction finished", "batch", b.ID, "invoices", len(results))
	return nil
}

// extractOne derives hints for the split, calls the extractor, and
// normalizes the raw output. Every failure mode maps to a per-item
// classification instead of a batch error.
func (o *Orchestrator) extractOne(ctx context.Context, id string, index int, layout *providers.Layout, r batch.SplitRange, schemaJSON []byte) itemResult {
	_, glossary := hints.Derive(layout.TablesInRange(r.StartPage, r.EndPage))
	content := layout.PageText(r.StartPage, r.EndPage)

	raw, err := o.extractor.Extract(ctx, content, glossary, schemaJSON)
	if err != nil {
		var ee *providers.ExtractionError
		if errors.As(err, &ee) && ee.Truncated {
			o.logger.Warn("extraction truncated", "batch", id, "invoice", index)
		} else {
			o.logger.Warn("extraction failed", "batch", id, "invoice", index, "error", err)
		}
		return itemResult{errMsg: fmt.Sprintf("%s: %v", batch.ClassAdapter, err)}
	}

	record, err := o.norm.Normalize(raw)
	if err != nil {
		var violations *normalize.Violations
		if errors.As(err, &violations) {
			o.logger.Warn("normalization failed", "batch", id, "invoice", index, "violations", len(violations.Items))
		}
		return itemResult{errMsg: fmt.Sprintf("%s: %v", batch.ClassValidation, err)}
	}

	return itemResult{record: record}
}

// layoutFor returns the cached layout from the processing stage, or
// re-analyzes the original when the cache is cold (e.g. after a
// restart). Extraction is idempotent, so re-analysis is safe.
func (o *Orchestrator) layoutFor(ctx context.Context, b *batch.Batch) (*providers.Layout, error) {
	if layout := o.cachedLayout(b.ID); layout != nil {
		return layout, nil
	}

	fileBytes, err := os.ReadFile(b.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read original document: %w", err)
	}
	layout, err := o.analyzer.Analyze(ctx, fileBytes)
	if err != nil {
		return nil, err
	}
	o.cacheLayout(b.ID, layout)
	return layout, nil
}

// SubmitValidation merges a human correction into the extracted data.
// The corrected record passes through the same normalizer as raw
// extraction output; violations reject the submission without mutating
// anything. Once every index is confirmed the batch is COMPLETED.
func (o *Orchestrator) SubmitValidation(ctx context.Context, id string, index int, corrected json.RawMessage) error {
	if o.archived {
		return batch.ErrFeatureArchived
	}

	record, err := o.norm.Normalize(corrected)
	if err != nil {
		return err
	}

	lock := o.batchLock(id)
	lock.Lock()
	defer lock.Unlock()

	_, err = o.store.Update(ctx, id, func(b *batch.Batch) error {
		if b.Status != batch.StatusDataValidationPending {
			return &batch.StateError{BatchID: id, Op: "submit validation", Status: b.Status}
		}
		if index < 0 || index >= len(b.ValidatedSplits) {
			return &batch.InputError{Detail: fmt.Sprintf("invoice index %d out of range [0,%d)", index, len(b.ValidatedSplits))}
		}
		b.Extracted[index] = record
		b.ExtractionErrors[index] = ""
		b.Validated[index] = true
		if b.AllValidated() {
			b.Status = batch.StatusCompleted
		}
		return nil
	})
	if err != nil {
		return err
	}

	o.logger.Info("invoice validated", "batch", id, "invoice", index)
	return nil
}
