package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultProviderConfig is the optional system-wide fallback credential
// used for users who have not configured their own. The apiKey may be a
// plain key or a vault-encrypted "enc:v1:..." payload; main decrypts it
// once at startup.
type DefaultProviderConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"apiKey"`
	Model       string `yaml:"model"`
	EndpointURL string `yaml:"endpointUrl"`
}

// Config holds the application configuration.
type Config struct {
	APIPort            int                    `yaml:"apiPort"`
	CallTimeoutSeconds int                    `yaml:"callTimeoutSeconds"`
	MaxSchemaRetries   int                    `yaml:"maxSchemaRetries"`
	DefaultProvider    *DefaultProviderConfig `yaml:"defaultProvider"`
}

// LoadConfig loads the configuration from a YAML file. A missing file
// returns the defaults, so the server can run configured purely through
// flags and environment variables.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		APIPort:            8080,
		CallTimeoutSeconds: 30,
		MaxSchemaRetries:   2,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.CallTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("callTimeoutSeconds must be positive, got %d", config.CallTimeoutSeconds)
	}
	if config.MaxSchemaRetries < 0 {
		return nil, fmt.Errorf("maxSchemaRetries must not be negative, got %d", config.MaxSchemaRetries)
	}

	return config, nil
}
