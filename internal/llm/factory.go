package llm

// factory.go constructs the right Provider for a user's stored AI
// configuration. It is the only place that dispatches on vendor names;
// everything downstream works against the Provider interface.

import (
	"strings"

	"fitforge/internal/vault"
)

// defaultModels are used when a credential does not pin a model.
var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-sonnet-latest",
	"gemini":    "gemini-2.0-flash",
}

// DefaultCredential is the system-wide fallback credential, loaded once at
// startup from process configuration and read-only thereafter. APIKey is
// plaintext here — main decrypts vault-encrypted config values before
// constructing the factory.
type DefaultCredential struct {
	Provider    string
	APIKey      string
	Model       string
	EndpointURL string
}

// Factory builds Provider adapters from user credentials, decrypting keys
// through the vault and falling back to the system default when a user has
// no enabled configuration.
type Factory struct {
	vault       *vault.Vault
	defaultCred *DefaultCredential
}

// NewFactory creates a Factory. defaultCred may be nil when the deployment
// has no system-wide credential; users must then configure their own.
func NewFactory(v *vault.Vault, defaultCred *DefaultCredential) *Factory {
	return &Factory{vault: v, defaultCred: defaultCred}
}

// CreateProvider returns the adapter for the given user credential.
//
// A nil or disabled credential falls back to the system default; when no
// default exists either, the returned *ConfigurationError tells the user
// to configure a key. Decryption failures and missing required fields are
// configuration errors too — distinct from runtime generation errors, so
// the caller can render a "fix your settings" message.
func (f *Factory) CreateProvider(cred *VendorCredential) (Provider, error) {
	if cred == nil || !cred.Enabled {
		if f.defaultCred != nil {
			return f.buildProvider(f.defaultCred.Provider, f.defaultCred.APIKey,
				f.defaultCred.Model, f.defaultCred.EndpointURL)
		}
		return nil, &ConfigurationError{
			Reason: "no AI provider configured; add an API key in your settings",
		}
	}

	apiKey, err := f.vault.Decrypt(cred.EncryptedKey)
	if err != nil {
		return nil, &ConfigurationError{
			Reason: "stored API key could not be decrypted; re-enter it in your settings",
			Err:    err,
		}
	}
	// Copy-paste artifacts: keys frequently arrive with stray whitespace.
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &ConfigurationError{Reason: "stored API key is empty; re-enter it in your settings"}
	}

	return f.buildProvider(cred.Provider, apiKey, cred.Model, cred.EndpointURL)
}

func (f *Factory) buildProvider(vendor, apiKey, model, endpointURL string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(vendor))
	if model == "" {
		model = defaultModels[name]
	}

	switch name {
	case "openai":
		return NewOpenAIProvider(apiKey, model, endpointURL), nil

	case "anthropic":
		return NewAnthropicProvider(apiKey, model, endpointURL), nil

	case "gemini":
		return NewGeminiProvider(apiKey, model, endpointURL), nil

	case "local", "custom":
		if endpointURL == "" {
			return nil, &ConfigurationError{
				Reason: "local provider requires an endpoint URL",
			}
		}
		if model == "" {
			return nil, &ConfigurationError{
				Reason: "local provider requires an explicit model name",
			}
		}
		return NewLocalProvider(apiKey, model, endpointURL), nil

	default:
		return nil, &ConfigurationError{
			Reason: "unknown provider \"" + vendor + "\"; supported: openai, anthropic, gemini, local",
		}
	}
}
