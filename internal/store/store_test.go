package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/splitscan/splitscan/internal/batch"
)

// Both backends must satisfy the same contract.
func backends(t *testing.T) map[string]BatchStore {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "batches.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]BatchStore{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestCreateAndGet(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := batch.New("scan.pdf", "/tmp/scan.pdf", 10)

			if err := st.Create(ctx, b); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			got, err := st.Get(ctx, b.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.OriginalFilename != "scan.pdf" || got.PageCount != 10 || got.Status != batch.StatusUploaded {
				t.Errorf("got %+v, want stored fields back", got)
			}

			if err := st.Create(ctx, b); err == nil {
				t.Error("duplicate Create succeeded")
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, batch.ErrNotFound) {
				t.Errorf("got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestUpdateAppliesAtomically(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := batch.New("scan.pdf", "", 10)
			if err := st.Create(ctx, b); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			updated, err := st.Update(ctx, b.ID, func(cur *batch.Batch) error {
				cur.Status = batch.StatusProcessing
				return nil
			})
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if updated.Status != batch.StatusProcessing {
				t.Errorf("returned status %s, want PROCESSING", updated.Status)
			}
			if !updated.UpdatedAt.After(b.UpdatedAt) && !updated.UpdatedAt.Equal(b.UpdatedAt) {
				t.Error("UpdatedAt not advanced")
			}

			got, _ := st.Get(ctx, b.ID)
			if got.Status != batch.StatusProcessing {
				t.Errorf("persisted status %s, want PROCESSING", got.Status)
			}
		})
	}
}

func TestUpdateErrorLeavesStateUntouched(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := batch.New("scan.pdf", "", 10)
			if err := st.Create(ctx, b); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			boom := errors.New("boom")
			_, err := st.Update(ctx, b.ID, func(cur *batch.Batch) error {
				cur.Status = batch.StatusCompleted
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("got %v, want fn error passed through", err)
			}

			got, _ := st.Get(ctx, b.ID)
			if got.Status != batch.StatusUploaded {
				t.Errorf("status mutated to %s by failed update", got.Status)
			}
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := batch.New("a.pdf", "", 1)
			first.CreatedAt = time.Now().UTC().Add(-time.Hour)
			second := batch.New("b.pdf", "", 1)

			if err := st.Create(ctx, first); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if err := st.Create(ctx, second); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			got, err := st.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("got %d batches, want 2", len(got))
			}
			if got[0].ID != second.ID {
				t.Errorf("got %s first, want newest batch", got[0].OriginalFilename)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := batch.New("scan.pdf", "", 1)
			if err := st.Create(ctx, b); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if err := st.Delete(ctx, b.ID); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := st.Get(ctx, b.ID); !errors.Is(err, batch.ErrNotFound) {
				t.Errorf("got %v after delete, want ErrNotFound", err)
			}
			if err := st.Delete(ctx, b.ID); !errors.Is(err, batch.ErrNotFound) {
				t.Errorf("second delete got %v, want ErrNotFound", err)
			}
		})
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := batch.New("scan.pdf", "", 10)
			b.SplitProposal = []batch.SplitRange{{StartPage: 1, EndPage: 10, Confidence: 1}}
			if err := st.Create(ctx, b); err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			got, _ := st.Get(ctx, b.ID)
			got.SplitProposal[0].EndPage = 3
			got.Status = batch.StatusCompleted

			again, _ := st.Get(ctx, b.ID)
			if again.SplitProposal[0].EndPage != 10 || again.Status != batch.StatusUploaded {
				t.Error("mutating a returned batch leaked into the store")
			}
		})
	}
}
