package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// ListBatchesEndpoint handles GET /api/v1/batches.
type ListBatchesEndpoint struct{}

func (e *ListBatchesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/batches", e.handler
}

func (e *ListBatchesEndpoint) RequiresInit() bool { return true }

// ListBatchesResponse wraps the batch list.
type ListBatchesResponse struct {
	Batches []*batch.Batch `json:"batches"`
	Count   int            `json:"count"`
}

func (e *ListBatchesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	batches, err := svcctx.StoreFrom(r.Context()).List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListBatchesResponse{Batches: batches, Count: len(batches)})
}

func (e *ListBatchesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListBatchesResponse
			if err := client.Get(cmd.Context(), "/api/v1/batches", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetBatchEndpoint handles GET /api/v1/batches/{id}.
type GetBatchEndpoint struct{}

func (e *GetBatchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/batches/{id}", e.handler
}

func (e *GetBatchEndpoint) RequiresInit() bool { return true }

func (e *GetBatchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	b, err := svcctx.StoreFrom(r.Context()).Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (e *GetBatchEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a batch by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp batch.Batch
			if err := client.Get(cmd.Context(), "/api/v1/batches/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteBatchEndpoint handles DELETE /api/v1/batches/{id}.
type DeleteBatchEndpoint struct{}

func (e *DeleteBatchEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/v1/batches/{id}", e.handler
}

func (e *DeleteBatchEndpoint) RequiresInit() bool { return true }

func (e *DeleteBatchEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	if err := svcctx.OrchestratorFrom(r.Context()).Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteBatchEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a batch and its stored files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			return client.Delete(cmd.Context(), "/api/v1/batches/"+args[0])
		},
	}
}
