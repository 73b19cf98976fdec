package llmclient

import "fmt"

// Config is the narrow slice of the application config Build needs.
type Config struct {
	Provider string
	Anthropic struct {
		APIKey string
		Model  string
	}
	OpenAI struct {
		APIKey  string
		BaseURL string
		Model   string
	}
}

// Build selects and constructs the configured Provider. Validation of
// which provider requires which key already happened in config.Load;
// Build only wires what's already known-valid.
func Build(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model, ""), nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	default:
		return nil, fmt.Errorf("llmclient: unknown provider %q", cfg.Provider)
	}
}
