package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != "8080" {
		t.Errorf("server defaults %s:%s, want 127.0.0.1:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("storage backend %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Extraction.Archived {
		t.Error("extraction archived by default")
	}
	if !strings.Contains(cfg.Chat.APIKey, "${") {
		t.Errorf("chat api key %q should reference an env var", cfg.Chat.APIKey)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("SPLITSCAN_TEST_KEY", "sk-12345")

	cases := []struct {
		in   string
		want string
	}{
		{"${SPLITSCAN_TEST_KEY}", "sk-12345"},
		{"prefix-${SPLITSCAN_TEST_KEY}-suffix", "prefix-sk-12345-suffix"},
		{"${SPLITSCAN_TEST_UNSET_KEY}", ""},
		{"no references", "no references"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ResolveEnvVars(tc.in); got != tc.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# splitscan configuration") {
		t.Error("written config missing header comment")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Storage.Backend != "sqlite" {
		t.Errorf("round-tripped config lost defaults: %+v", cfg)
	}
}
