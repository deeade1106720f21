package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// UpdateSplitsRequest carries a manually edited split proposal.
type UpdateSplitsRequest struct {
	Ranges []batch.SplitRange `json:"ranges"`
}

// UpdateSplitsEndpoint handles PUT /api/v1/batches/{id}/splits. The
// ranges must form an exact partition of the document's pages; an
// invalid partition is rejected wholesale and the prior proposal kept.
type UpdateSplitsEndpoint struct{}

func (e *UpdateSplitsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/v1/batches/{id}/splits", e.handler
}

func (e *UpdateSplitsEndpoint) RequiresInit() bool { return true }

func (e *UpdateSplitsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	var req UpdateSplitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := svcctx.OrchestratorFrom(r.Context()).UpdateSplits(r.Context(), id, req.Ranges); err != nil {
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

func (e *UpdateSplitsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "update-splits <id> <ranges.json>",
		Short: "Replace the split proposal with edited page ranges",
		Long: `Replace a batch's proposed split ranges with a manually edited set.

The file must contain a JSON array of ranges, e.g.:
  [{"start_page":1,"end_page":4},{"start_page":5,"end_page":10}]

The ranges must cover every page exactly once.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges, err := readRangesFile(args[1])
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp batch.Batch
			if err := client.Put(cmd.Context(), "/api/v1/batches/"+args[0]+"/splits", UpdateSplitsRequest{Ranges: ranges}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// readRangesFile loads a JSON array of split ranges from disk.
func readRangesFile(path string) ([]batch.SplitRange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var ranges []batch.SplitRange
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("invalid ranges file %s: %w", path, err)
	}
	return ranges, nil
}

// ValidateSplitsEndpoint handles POST /api/v1/batches/{id}/splits/validate.
// It freezes the current proposal and starts the physical split.
type ValidateSplitsEndpoint struct{}

func (e *ValidateSplitsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/batches/{id}/splits/validate", e.handler
}

func (e *ValidateSplitsEndpoint) RequiresInit() bool { return true }

func (e *ValidateSplitsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	if err := svcctx.OrchestratorFrom(r.Context()).ValidateSplits(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": id, "status": "SPLITTING"})
}

func (e *ValidateSplitsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "validate-splits <id>",
		Short: "Approve the current split proposal and split the PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]string
			if err := client.Post(cmd.Context(), "/api/v1/batches/"+args[0]+"/splits/validate", nil, &resp); err != nil {
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
