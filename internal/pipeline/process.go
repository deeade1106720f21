package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/split"
)

// StartProcessing moves the batch into PROCESSING and runs layout
// analysis followed by boundary detection, producing a split proposal.
// Valid from UPLOADED, or from ERROR as a direct retry of a failed
// processing run. The transition is atomic with issuing the stage, so
// of two concurrent calls exactly one reaches the analyzer; the other
// is rejected with a StateError.
func (o *Orchestrator) StartProcessing(ctx context.Context, id string) error {
	b, err := o.enterStage(ctx, id, "start processing", batch.StatusProcessing)
	if err != nil {
		return err
	}

	o.logger.Info("processing started", "batch", id, "pages", b.PageCount)
	o.runStage(ctx, id, batch.StatusProcessing, func(stageCtx context.Context) error {
		return o.runProcessing(stageCtx, b)
	})
	return nil
}

func (o *Orchestrator) runProcessing(ctx context.Context, b *batch.Batch) error {
	fileBytes, err := os.ReadFile(b.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to read original document: %w", err)
	}

	layout, err := o.analyzer.Analyze(ctx, fileBytes)
	if err != nil {
		return err
	}
	o.cacheLayout(b.ID, layout)

	boundaries, err := o.detector.DetectBoundaries(ctx, layout)
	if err != nil {
		return err
	}

	proposal, err := split.Plan(b.PageCount, boundaries)
	if err != nil {
		return err
	}

	_, err = o.store.Update(ctx, b.ID, func(cur *batch.Batch) error {
		if cur.Status != batch.StatusProcessing {
			return &batch.StateError{BatchID: b.ID, Op: "store split proposal", Status: cur.Status}
		}
		cur.SplitProposal = proposal
		cur.Status = batch.StatusSplitProposed
		return nil
	})
	if err != nil {
		return err
	}

	o.logger.Info("split proposal ready", "batch", b.ID, "ranges", len(proposal))
	return nil
}
