package config

// Config is the full splitscan configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Analysis   AnalysisConfig   `mapstructure:"analysis" yaml:"analysis"`
	Chat       ChatConfig       `mapstructure:"chat" yaml:"chat"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// AnalysisConfig holds layout-analysis service settings.
type AnalysisConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	MaxRetries     uint   `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelaySecs int    `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
	TimeoutSecs    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ChatConfig holds settings for the OpenAI-compatible chat endpoint used
// by boundary detection and record extraction.
type ChatConfig struct {
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxRetries  int     `mapstructure:"max_retries" yaml:"max_retries"`
	TimeoutSecs int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ExtractionConfig holds the deployment-level extraction switch.
// When Archived is true, extraction-related operations return a
// distinct "feature archived" outcome instead of executing. This is a
// static deployment toggle, injected into the orchestrator at
// construction, never read per request.
type ExtractionConfig struct {
	Archived bool `mapstructure:"archived" yaml:"archived"`
}

// StorageConfig selects the batch store backend.
type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Path is the sqlite database file; empty means the home default.
	Path string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Analysis: AnalysisConfig{
			BaseURL:        "http://localhost:9090",
			APIKey:         "${ANALYSIS_API_KEY}",
			MaxRetries:     3,
			RetryDelaySecs: 2,
			TimeoutSecs:    600,
		},
		Chat: ChatConfig{
			BaseURL:     "https://api.openai.com/v1",
			APIKey:      "${OPENAI_API_KEY}",
			Model:       "gpt-4o",
			Temperature: 0,
			MaxTokens:   8192,
			MaxRetries:  3,
			TimeoutSecs: 300,
		},
		Extraction: ExtractionConfig{
			Archived: false,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
	}
}
