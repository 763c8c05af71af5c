package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
)

const (
	openAIDefaultModel = "text-embedding-3-small"
	openAIBaseURL      = "https://api.openai.com/v1"
)

// OpenAIClient talks to the OpenAI embeddings endpoint. Dimensions asks the
// model for shortened vectors so they fit the collection.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	dimensions int
	http       *http.Client
}

type OpenAIOption func(*OpenAIClient)

func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(c *OpenAIClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithOpenAIDimensions(dims int) OpenAIOption {
	return func(c *OpenAIClient) {
		c.dimensions = dims
	}
}

func WithOpenAIHttpClient(httpClient *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.http = httpClient
	}
}

func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (o *OpenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, apperr.NewValidation("missing text to embed")
	}

	vecs, err := o.embed(ctx, req.Model, []string{req.Prompt})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("openai returned %d embeddings for one input", len(vecs))
	}
	return &Response{Embedding: vecs[0]}, nil
}

func (o *OpenAIClient) GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	if len(req.Prompts) == 0 {
		return nil, apperr.NewValidation("missing prompts to embed")
	}

	vecs, err := o.embed(ctx, req.Model, req.Prompts)
	if err != nil {
		return nil, err
	}
	return &BatchResponse{Embeddings: vecs}, nil
}

func (o *OpenAIClient) embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if model == "" || model == defaultModel {
		model = openAIDefaultModel
	}

	body, err := json.Marshal(openAIRequest{
		Model:      model,
		Input:      texts,
		Dimensions: o.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai returned %d: %s", resp.StatusCode, respBody)
	}

	var result openAIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})

	vecs := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

type openAIRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type openAIResponse struct {
	Data []openAIEmbedding `json:"data"`
}

type openAIEmbedding struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}
