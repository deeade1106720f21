package endpoints

import (
	"github.com/splitscan/splitscan/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Batch lifecycle endpoints
		&UploadEndpoint{},
		&ListBatchesEndpoint{},
		&GetBatchEndpoint{},
		&DeleteBatchEndpoint{},
		&ProcessEndpoint{},
		&ReprocessEndpoint{},
		&StatusEndpoint{},

		// Split review endpoints
		&UpdateSplitsEndpoint{},
		&ValidateSplitsEndpoint{},

		// Extraction endpoints
		&ExtractEndpoint{},
		&GetDataEndpoint{},
		&ValidateDataEndpoint{},
		&ExportEndpoint{},
	}
}
