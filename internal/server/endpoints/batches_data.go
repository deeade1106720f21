package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/invoice"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// BatchDataResponse carries the extracted records of one batch.
// Entries in Invoices are nil where extraction failed; Errors and
// Validated are index-aligned with Invoices.
type BatchDataResponse struct {
	BatchID   string                      `json:"batch_id"`
	Invoices  []*invoice.ExtractedInvoice `json:"invoices"`
	Errors    []string                    `json:"errors"`
	Validated []bool                      `json:"validated"`
}

// GetDataEndpoint handles GET /api/v1/batches/{id}/data.
type GetDataEndpoint struct{}

func (e *GetDataEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/batches/{id}/data", e.handler
}

func (e *GetDataEndpoint) RequiresInit() bool { return true }

func (e *GetDataEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, BatchDataResponse{
		BatchID:   b.ID,
		Invoices:  b.Extracted,
		Errors:    b.ExtractionErrors,
		Validated: b.Validated,
	})
}

func (e *GetDataEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "data <id>",
		Short: "Get extracted invoice data for a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp BatchDataResponse
			if err := client.Get(cmd.Context(), "/api/v1/batches/"+args[0]+"/data", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ValidateDataEndpoint handles POST /api/v1/batches/{id}/data/{index}/validate.
// The body is the corrected invoice record; it is re-validated against
// the extraction schema before being stored as confirmed.
type ValidateDataEndpoint struct{}

func (e *ValidateDataEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/batches/{id}/data/{index}/validate", e.handler
}

func (e *ValidateDataEndpoint) RequiresInit() bool { return true }

func (e *ValidateDataEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invoice index must be an integer")
		return
	}
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := svcctx.OrchestratorFrom(r.Context()).SubmitValidation(r.Context(), id, index, body); err != nil {
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

func (e *ValidateDataEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-data <id> <index> <record.json>",
		Short: "Confirm one extracted invoice record, with corrections",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[2])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[2], err)
			}
			client := api.NewClient(getServerURL())
			var resp map[string]any
			path := "/api/v1/batches/" + args[0] + "/data/" + args[1] + "/validate"
			if err := client.Post(cmd.Context(), path, json.RawMessage(data), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
