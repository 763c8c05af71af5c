package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
)

const (
	defaultTimeout  = 60 * time.Second
	ollamaEmbedPath = "/api/embed"
)

type OllamaOption func(client *OllamaClient)

// OllamaClient talks to the /api/embed endpoint of an Ollama server. Single
// prompts are sent as a batch of one.
type OllamaClient struct {
	base      url.URL
	http      *http.Client
	keepAlive string
}

func NewOllamaClient(baseUrl string, opts ...OllamaOption) (*OllamaClient, error) {
	base, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseUrl, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q: scheme and host are required", baseUrl)
	}

	client := &OllamaClient{
		base: *base,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func WithHttpClient(httpClient *http.Client) OllamaOption {
	return func(client *OllamaClient) {
		client.http = httpClient
	}
}

func WithOllamaTimeout(timeout time.Duration) OllamaOption {
	return func(client *OllamaClient) {
		if timeout > 0 {
			client.http.Timeout = timeout
		}
	}
}

// WithKeepAlive keeps the model loaded for d after each request, e.g. "10m".
func WithKeepAlive(d string) OllamaOption {
	return func(client *OllamaClient) {
		client.keepAlive = d
	}
}

// OllamaEmbedRequest is the body of /api/embed.
type OllamaEmbedRequest struct {
	Model     string         `json:"model"`
	Input     []string       `json:"input"`
	KeepAlive string         `json:"keep_alive,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

func (oc *OllamaClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, apperr.NewValidation("missing text to embed")
	}

	batch, err := oc.GenerateBatch(ctx, BatchRequest{
		Model:   req.Model,
		Prompts: []string{req.Prompt},
		Options: req.Options,
	})
	if err != nil {
		return nil, err
	}

	return &Response{Embedding: batch.Embeddings[0]}, nil
}

func (oc *OllamaClient) GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	if len(req.Prompts) == 0 {
		return nil, apperr.NewValidation("missing prompts to embed")
	}
	if req.Model == "" {
		return nil, apperr.NewValidation("missing model name")
	}

	body := OllamaEmbedRequest{
		Model:     req.Model,
		Input:     req.Prompts,
		KeepAlive: oc.keepAlive,
		Options:   req.Options,
	}

	var resp ollamaEmbedResponse
	if err := oc.post(ctx, ollamaEmbedPath, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(req.Prompts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d prompts", len(resp.Embeddings), len(req.Prompts))
	}

	return &BatchResponse{Embeddings: resp.Embeddings}, nil
}

func (oc *OllamaClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := oc.base.JoinPath(path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := oc.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
