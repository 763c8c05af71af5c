package embedding

import "fmt"

// NewClient builds the model client selected by cfg. vectorSize is passed to
// providers that can shorten their output.
func NewClient(cfg *Config, vectorSize int) (Client, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(cfg.BaseURL,
			WithOllamaTimeout(cfg.Timeout),
			WithKeepAlive(cfg.KeepAlive),
		)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey,
			WithOpenAIBaseURL(cfg.BaseURL),
			WithOpenAIDimensions(vectorSize),
		), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// NewFromConfig wires a client and an Embedder in one step.
func NewFromConfig(cfg *Config, vectorSize int) (*Embedder, error) {
	client, err := NewClient(cfg, vectorSize)
	if err != nil {
		return nil, err
	}

	opts := []EmbedderOption{WithExecutorModel(cfg.Model)}
	if cfg.MaxLength != nil {
		opts = append(opts, WithExecutorMaxLength(*cfg.MaxLength))
	}
	if cfg.QueryInstruction != "" {
		opts = append(opts, WithQueryInstruction(cfg.QueryInstruction))
	}
	return NewEmbedder(client, opts...), nil
}
