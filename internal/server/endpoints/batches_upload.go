package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitscan/splitscan/internal/api"
	"github.com/splitscan/splitscan/internal/batch"
	"github.com/splitscan/splitscan/internal/ingest"
	"github.com/splitscan/splitscan/internal/svcctx"
)

// maxUploadBytes caps a single uploaded PDF.
const maxUploadBytes = 256 << 20

// UploadEndpoint handles POST /api/v1/batches.
type UploadEndpoint struct{}

func (e *UploadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/batches", e.handler
}

func (e *UploadEndpoint) RequiresInit() bool { return true }

func (e *UploadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a \"file\" field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing \"file\" field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	b, err := ingest.Ingest(r.Context(), svcctx.StoreFrom(r.Context()), svcctx.HomeFrom(r.Context()), ingest.Request{
		Filename: header.Filename,
		Data:     data,
		Logger:   svcctx.LoggerFrom(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (e *UploadEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a scanned PDF and create a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			client := api.NewClient(getServerURL())
			var resp batch.Batch
			if err := client.Upload(cmd.Context(), "/api/v1/batches", args[0], data, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
