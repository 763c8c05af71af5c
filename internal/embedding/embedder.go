package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
)

// Embedder builds the text of articles and queries and turns it into vectors
// of a fixed size.
type Embedder struct {
	maxLength   *int
	model       string
	instruction string

	client Client
}

type EmbedderOption func(executor *Embedder)

func NewEmbedder(client Client, opts ...EmbedderOption) *Embedder {
	base := &Embedder{
		model:  defaultModel,
		client: client,
	}

	for _, opt := range opts {
		opt(base)
	}

	return base
}

func WithExecutorModel(model string) EmbedderOption {
	return func(executor *Embedder) {
		if model != "" {
			executor.model = model
		}
	}
}

// WithExecutorMaxLength truncates every vector to length dimensions.
func WithExecutorMaxLength(length int) EmbedderOption {
	return func(executor *Embedder) {
		executor.maxLength = &length
	}
}

// WithQueryInstruction prefixes search queries with a task description, as
// instruction-tuned embedding models expect.
func WithQueryInstruction(task string) EmbedderOption {
	return func(executor *Embedder) {
		executor.instruction = task
	}
}

func (e *Embedder) Model() string {
	return e.model
}

func (e *Embedder) EmbedArticle(ctx context.Context, ar domain.Article) ([]float32, error) {
	slog.Debug("Embedding article", "id", ar.ID, "title", ar.Title, "content_length", len(ar.Content))

	embed, err := e.client.Generate(ctx, Request{
		Model:  e.model,
		Prompt: ArticleText(ar),
	})
	if err != nil {
		return nil, fmt.Errorf("embed article %s: %w", ar.ID, err)
	}

	return e.truncate(embed.Embedding), nil
}

func (e *Embedder) EmbedArticles(ctx context.Context, articles []domain.Article) ([][]float32, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	prompts := make([]string, len(articles))
	for i, ar := range articles {
		prompts[i] = ArticleText(ar)
	}

	slog.Debug("Bulk embedding articles", "count", len(articles))

	resp, err := e.client.GenerateBatch(ctx, BatchRequest{
		Model:   e.model,
		Prompts: prompts,
	})
	if err != nil {
		return nil, fmt.Errorf("embed %d articles: %w", len(articles), err)
	}

	if len(resp.Embeddings) != len(articles) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(articles), len(resp.Embeddings))
	}

	vecs := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vecs[i] = e.truncate(emb)
	}

	slog.Debug("Generated bulk embeddings", "count", len(vecs), "model", e.model)
	return vecs, nil
}

// emptyQueryPrompt stands in for an empty query, which the model APIs reject.
const emptyQueryPrompt = " "

// EmbedQuery embeds a search query. An empty query is embedded too, so an
// unfiltered search is still ranked by the store.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	prompt := strings.TrimSpace(query)
	if prompt == "" {
		prompt = emptyQueryPrompt
	}
	if e.instruction != "" {
		prompt = wrapWithInstruct(e.instruction, prompt)
	}

	embed, err := e.client.Generate(ctx, Request{
		Model:  e.model,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return e.truncate(embed.Embedding), nil
}

func (e *Embedder) truncate(vec []float32) []float32 {
	if e.maxLength != nil && len(vec) > *e.maxLength {
		return vec[:*e.maxLength]
	}
	return vec
}

// ArticleText is the text an article is embedded from.
func ArticleText(ar domain.Article) string {
	return fmt.Sprintf("Title: %s\n\nSummary: %s\n\nContent: %s",
		strings.TrimSpace(ar.Title),
		strings.TrimSpace(ar.Summary),
		strings.TrimSpace(ar.Content),
	)
}

func wrapWithInstruct(task, query string) string {
	return fmt.Sprintf("Instruct: %s\nQuery:%s", task, query)
}
