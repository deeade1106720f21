package pipeline

import (
	"context"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/split"
)

// UpdateSplits replaces the split proposal with a manual edit. Valid
// only in SPLIT_PROPOSED; the status is unchanged. The edit must pass
// the partition check atomically: on failure the prior valid proposal
// is retained untouched.
func (o *Orchestrator) UpdateSplits(ctx context.Context, id string, ranges []batch.SplitRange) error {
	lock := o.batchLock(id)
	lock.Lock()
	defer lock.Unlock()

	_, err := o.store.Update(ctx, id, func(b *batch.Batch) error {
		if b.Status != batch.StatusSplitProposed {
			return &batch.StateError{BatchID: id, Op: "update splits", Status: b.Status}
		}
		if err := split.CheckPartition(ranges, b.PageCount); err != nil {
			return err
		}
		b.SplitProposal = append([]batch.SplitRange(nil), ranges...)
		return nil
	})
	return err
}

// ValidateSplits approves the current proposal and materializes the
// physical split files. Valid only in SPLIT_PROPOSED. On success the
// proposal becomes the validated partition and the batch moves to
// SPLIT_VALIDATED, or straight to COMPLETED when the deployment runs
// with extraction archived.
func (o *Orchestrator) ValidateSplits(ctx context.Context, id string) error {
	b, err := o.enterStage(ctx, id, "validate splits", batch.StatusSplitting)
	if err != nil {
		return err
	}

	o.logger.Info("splitting started", "batch", id, "ranges", len(b.SplitProposal))
	o.runStage(ctx, id, batch.StatusSplitting, func(stageCtx context.Context) error {
		return o.runSplitting(stageCtx, b)
	})
	return nil
}

func (o *Orchestrator) runSplitting(ctx context.Context, b *batch.Batch) error {
	destDir := ""
	if o.home != nil {
		destDir = o.home.SplitsDir(b.ID)
	}

	paths, err := o.splitter.Split(ctx, b.SourcePath, destDir, b.SplitProposal)
	if err != nil {
		return err
	}

	next := batch.StatusSplitValidated
	if o.archived {
		next = batch.StatusCompleted
	}

	_, err = o.store.Update(ctx, b.ID, func(cur *batch.Batch) error {
		if cur.Status != batch.StatusSplitting {
			return &batch.StateError{BatchID: b.ID, Op: "store validated splits", Status: cur.Status}
		}
		cur.ValidatedSplits = append([]batch.SplitRange(nil), cur.SplitProposal...)
		cur.SplitFiles = paths
		cur.Status = next
		return nil
	})
	if err != nil {
		return err
	}

	o.logger.Info("splits validated", "batch", b.ID, "files", len(paths), "status", next)
	return nil
}
