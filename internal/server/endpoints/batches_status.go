package endpoints

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// StatusEndpoint handles GET /api/v1/batches/{id}/status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/batches/{id}/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return true }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	report, err := svcctx.OrchestratorFrom(r.Context()).Status(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	var wait bool
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Get batch status with a next-action hint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if wait {
				st, err := client.PollStatus(cmd.Context(), args[0], api.PollOptions{Interval: interval})
				if err != nil {
					return err
				}
				return api.Output(st)
			}
			var resp api.BatchStatus
			if err := client.Get(cmd.Context(), "/api/v1/batches/"+args[0]+"/status", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the batch reaches a stable status")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval when --wait is set")
	return cmd
}
