package pipeline

import (
	"context"

	"github.com/splitscan/splitscan/internal/batch"
)

// Reprocess clears a parked error and returns the batch to the entry
// status of the stage that failed, so the stage can be re-run from
// scratch. Human-approved state (validated splits, confirmed record
// validations) is never discarded. Retry is always this explicit
// action; there is no automatic retry inside the pipeline.
func (o *Orchestrator) Reprocess(ctx context.Context, id string) error {
	lock := o.batchLock(id)
	lock.Lock()
	defer lock.Unlock()

	b, err := o.store.Update(ctx, id, func(b *batch.Batch) error {
		if b.Status != batch.StatusError || b.Error == nil {
			return &batch.StateError{BatchID: id, Op: "reprocess", Status: b.Status}
		}
		b.Status = batch.EntryStatus(b.Error.Stage)
		b.Error = nil
		return nil
	})
	if err != nil {
		return err
	}

	o.logger.Info("batch reset for reprocess", "batch", id, "status", b.Status)
	return nil
}
