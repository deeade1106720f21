// Package pipeline drives the batch lifecycle: a fixed sequence of
// automated stages interleaved with human validation, with per-batch
// exclusivity and explicit, retryable failure states.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/home"
	"github.com/splitscan/splitscan/internal/normalize"
	"github.com/splitscan/splitscan/internal/providers"
	"github.com/splitscan/splitscan/internal/store"
)

// Options configures an Orchestrator.
type Options struct {
	Store     store.BatchStore
	Analyzer  providers.LayoutAnalyzer
	Detector  providers.BoundaryDetector
	Extractor providers.RecordExtractor
	Splitter  providers.PdfSplitter
	Home      *home.Dir
	Logger    *slog.Logger

	// ExtractionArchived disables extraction-related operations for
	// the whole deployment. Injected here at construction; never read
	// from ambient state per call.
	ExtractionArchived bool
}

// Orchestrator is the batch state machine. All stored mutations go
// through the store's atomic update; the per-batch lock additionally
// serializes multi-step entry sections so that, e.g., a reprocess can
// never race a starting extraction on the same batch.
type Orchestrator struct {
	store     store.BatchStore
	analyzer  providers.LayoutAnalyzer
	detector  providers.BoundaryDetector
	extractor providers.RecordExtractor
	splitter  providers.PdfSplitter
	home      *home.Dir
	norm      *normalize.Normalizer
	logger    *slog.Logger
	archived  bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	layoutMu sync.Mutex
	layouts  map[string]*providers.Layout

	stages sync.WaitGroup
}

// New creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	norm, err := normalize.New()
	if err != nil {
		return nil, fmt.Errorf("failed to build normalizer: %w", err)
	}
	return &Orchestrator{
		store:     opts.Store,
		analyzer:  opts.Analyzer,
		detector:  opts.Detector,
		extractor: opts.Extractor,
		splitter:  opts.Splitter,
		home:      opts.Home,
		norm:      norm,
		logger:    opts.Logger,
		archived:  opts.ExtractionArchived,
	}, nil
}

// ExtractionArchived reports whether the deployment runs with
// extraction archived.
func (o *Orchestrator) ExtractionArchived() bool { return o.archived }

// Wait blocks until all in-flight stage goroutines have finished.
// Intended for tests and graceful shutdown.
func (o *Orchestrator) Wait() { o.stages.Wait() }

// batchLock returns the mutex guarding a batch's entry sections.
func (o *Orchestrator) batchLock(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.locks == nil {
		o.locks = make(map[string]*sync.Mutex)
	}
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

// enterStage atomically checks the transition and moves the batch into
// the given stage status. A concurrent call while the stage is already
// in flight is rejected with a StateError, not queued.
func (o *Orchestrator) enterStage(ctx context.Context, id, op string, stage batch.Status) (*batch.Batch, error) {
	lock := o.batchLock(id)
	lock.Lock()
	defer lock.Unlock()

	return o.store.Update(ctx, id, func(b *batch.Batch) error {
		if !batch.CanTransition(b.Status, stage) {
			return &batch.StateError{BatchID: id, Op: op, Status: b.Status}
		}
		b.Status = stage
		b.Error = nil
		return nil
	})
}

// failStage parks the batch in ERROR with enough detail to retry via
// reprocess. The triggering input is preserved as stored.
func (o *Orchestrator) failStage(id string, stage batch.Status, stageErr error) {
	o.logger.Error("stage failed", "batch", id, "stage", stage, "error", stageErr)

	_, err := o.store.Update(context.Background(), id, func(b *batch.Batch) error {
		if b.Status != stage {
			// Batch moved on (e.g. deleted and recreated); nothing to park.
			return &batch.StateError{BatchID: id, Op: "fail stage", Status: b.Status}
		}
		b.Status = batch.StatusError
		b.Error = &batch.ErrorDetail{
			Stage:   stage,
			Message: stageErr.Error(),
			At:      time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		o.logger.Error("failed to record stage error", "batch", id, "error", err)
	}
}

// runStage runs fn on a goroutine detached from the caller's
// cancellation: there is no mid-flight cancellation of a stage, a batch
// interrupted mid-stage is recovered via reprocess.
func (o *Orchestrator) runStage(ctx context.Context, id string, stage batch.Status, fn func(context.Context) error) {
	stageCtx := context.WithoutCancel(ctx)
	o.stages.Add(1)
	go func() {
		defer o.stages.Done()
		if err := fn(stageCtx); err != nil {
			o.failStage(id, stage, err)
		}
	}()
}

// cacheLayout remembers the layout of a batch for the extraction stage.
func (o *Orchestrator) cacheLayout(id string, layout *providers.Layout) {
	o.layoutMu.Lock()
	defer o.layoutMu.Unlock()
	if o.layouts == nil {
		o.layouts = make(map[string]*providers.Layout)
	}
	o.layouts[id] = layout
}

// cachedLayout returns the cached layout, if any.
func (o *Orchestrator) cachedLayout(id string) *providers.Layout {
	o.layoutMu.Lock()
	defer o.layoutMu.Unlock()
	return o.layouts[id]
}

func (o *Orchestrator) dropLayout(id string) {
	o.layoutMu.Lock()
	defer o.layoutMu.Unlock()
	delete(o.layouts, id)
}

// Delete removes a batch and its stored files. A batch is deletable
// from any status; deletion is terminal.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	lock := o.batchLock(id)
	lock.Lock()
	defer lock.Unlock()

	b, err := o.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := o.store.Delete(ctx, id); err != nil {
		return err
	}
	o.dropLayout(id)

	if o.home != nil {
		if err := o.home.RemoveBatchFiles(id, b.SourcePath); err != nil {
			o.logger.Warn("failed to remove batch files", "batch", id, "error", err)
		}
	}
	return nil
}
