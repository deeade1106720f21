package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// ProcessEndpoint handles POST /api/v1/batches/{id}/process. It starts
// layout analysis and boundary detection; progress is observed via the
// status endpoint.
type ProcessEndpoint struct{}

func (e *ProcessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/batches/{id}/process", e.handler
}

func (e *ProcessEndpoint) RequiresInit() bool { return true }

func (e *ProcessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	if err := svcctx.OrchestratorFrom(r.Context()).StartProcessing(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": id, "status": "PROCESSING"})
}

func (e *ProcessEndpoint) Command(getServerURL func() string) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "process <id>",
		Short: "Start layout analysis and boundary detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]string
			if err := client.Post(cmd.Context(), "/api/v1/batches/"+args[0]+"/process", nil, &resp); err != nil {
				return err
			}
			if wait {
				st, err := client.PollStatus(cmd.Context(), args[0], api.PollOptions{})
				if err != nil {
					return err
				}
				return api.Output(st)
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the batch reaches a stable status")
	return cmd
}

// ReprocessEndpoint handles POST /api/v1/batches/{id}/reprocess. Only a
// batch parked in ERROR accepts it; the batch returns to the entry
// status of the failed stage.
type ReprocessEndpoint struct{}

func (e *ReprocessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/batches/{id}/reprocess", e.handler
}

func (e *ReprocessEndpoint) RequiresInit() bool { return true }

func (e *ReprocessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	if err := svcctx.OrchestratorFrom(r.Context()).Reprocess(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	b, err := svcctx.StoreFrom(r.Context()).Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (e *ReprocessEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess <id>",
		Short: "Reset a failed batch so the failed stage can run again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]any
			if err := client.Post(cmd.Context(), "/api/v1/batches/"+args[0]+"/reprocess", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
