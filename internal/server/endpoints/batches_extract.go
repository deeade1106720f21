package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// ExtractEndpoint handles POST /api/v1/batches/{id}/extract. Returns
// 410 Gone when the deployment runs with extraction archived.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/batches/{id}/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	if err := svcctx.OrchestratorFrom(r.Context()).ExtractData(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": id, "status": "EXTRACTING_DATA"})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "extract <id>",
		Short: "Extract structured invoice data from validated splits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]string
			if err := client.Post(cmd.Context(), "/api/v1/batches/"+args[0]+"/extract", nil, &resp); err != nil {
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
