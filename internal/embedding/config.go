package embedding

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

const defaultOllamaURL = "http://localhost:11434"

type Config struct {
	Provider  Provider
	Model     string
	MaxLength *int
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	// KeepAlive is passed to Ollama as keep_alive, e.g. "10m".
	KeepAlive string
	// QueryInstruction is prepended to search queries for instruction-tuned models.
	QueryInstruction string
}

func LoadConfigFromEnv() (*Config, error) {
	provider := Provider(strings.ToLower(os.Getenv("EMBEDDING_PROVIDER")))
	if provider == "" {
		provider = ProviderOllama
	}
	if provider != ProviderOllama && provider != ProviderOpenAI {
		return nil, fmt.Errorf("invalid EMBEDDING_PROVIDER %q, expected one of %v", provider, []Provider{ProviderOllama, ProviderOpenAI})
	}

	maxLen := os.Getenv("EMBEDDING_MAX_LENGTH")
	baseUrl := os.Getenv("EMBEDDING_BASE_URL")
	apiKey := os.Getenv("OPENAI_API_KEY")

	if provider == ProviderOllama && baseUrl == "" {
		baseUrl = defaultOllamaURL
	}
	if provider == ProviderOpenAI && apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	cfg := &Config{
		Provider:  provider,
		Model:     os.Getenv("EMBEDDING_MODEL"),
		BaseURL:   baseUrl,
		APIKey:    apiKey,
		KeepAlive: os.Getenv("EMBEDDING_KEEP_ALIVE"),

		QueryInstruction: os.Getenv("EMBEDDING_QUERY_INSTRUCTION"),
	}

	if maxLen != "" {
		val, err := strconv.Atoi(maxLen)
		if err != nil || val <= 0 {
			return nil, fmt.Errorf("invalid EMBEDDING_MAX_LENGTH %q", maxLen)
		}
		cfg.MaxLength = &val
	}

	if timeout := os.Getenv("EMBEDDING_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid EMBEDDING_TIMEOUT %q: %w", timeout, err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}
