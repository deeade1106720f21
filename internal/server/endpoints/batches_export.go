package endpoints

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// ExportEndpoint handles GET /api/v1/batches/{id}/export.xlsx.
type ExportEndpoint struct{}

func (e *ExportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/batches/{id}/export.xlsx", e.handler
}

func (e *ExportEndpoint) RequiresInit() bool { return true }

func (e *ExportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "batch id is required")
		return
	}
	data, err := svcctx.ExporterFrom(r.Context()).ExportBatchXLSX(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "batch_"+id+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *ExportEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a batch's extracted data as an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, err := client.GetRaw(cmd.Context(), "/api/v1/batches/"+args[0]+"/export.xlsx")
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = "batch_" + args[0] + ".xlsx"
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", outPath, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path (default batch_<id>.xlsx)")
	return cmd
}
