package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", cfg.APIPort)
	}
	if cfg.CallTimeoutSeconds != 30 {
		t.Errorf("CallTimeoutSeconds = %d, want 30", cfg.CallTimeoutSeconds)
	}
	if cfg.MaxSchemaRetries != 2 {
		t.Errorf("MaxSchemaRetries = %d, want 2", cfg.MaxSchemaRetries)
	}
	if cfg.DefaultProvider != nil {
		t.Errorf("DefaultProvider = %+v, want nil", cfg.DefaultProvider)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
apiPort: 9090
callTimeoutSeconds: 60
maxSchemaRetries: 1
defaultProvider:
  provider: openai
  apiKey: "enc:v1:abcdef"
  model: gpt-4o-mini
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.CallTimeoutSeconds != 60 {
		t.Errorf("CallTimeoutSeconds = %d, want 60", cfg.CallTimeoutSeconds)
	}
	if cfg.MaxSchemaRetries != 1 {
		t.Errorf("MaxSchemaRetries = %d, want 1", cfg.MaxSchemaRetries)
	}
	if cfg.DefaultProvider == nil || cfg.DefaultProvider.Provider != "openai" {
		t.Fatalf("DefaultProvider = %+v, want openai", cfg.DefaultProvider)
	}
	if cfg.DefaultProvider.APIKey != "enc:v1:abcdef" {
		t.Errorf("APIKey = %q, want the encrypted payload as-is", cfg.DefaultProvider.APIKey)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "apiPort: 9999\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIPort != 9999 {
		t.Errorf("APIPort = %d, want 9999", cfg.APIPort)
	}
	if cfg.CallTimeoutSeconds != 30 || cfg.MaxSchemaRetries != 2 {
		t.Errorf("unset fields lost their defaults: %+v", cfg)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"zero timeout", "callTimeoutSeconds: 0\n"},
		{"negative timeout", "callTimeoutSeconds: -5\n"},
		{"negative retries", "maxSchemaRetries: -1\n"},
		{"not yaml", "{{{\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, c.contents)); err == nil {
				t.Error("LoadConfig() should reject the file")
			}
		})
	}
}
