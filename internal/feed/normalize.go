package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
)

const (
	DefaultSummaryLength = 200
	ellipsis             = "..."
)

var ErrIncompleteEntry = errors.New("entry has no title or link")

type Normalizer struct {
	stripHTML     bool
	summaryLength int
	now           func() time.Time
}

type NormalizerOption func(*Normalizer)

func WithStripHTML(strip bool) NormalizerOption {
	return func(n *Normalizer) {
		n.stripHTML = strip
	}
}

func WithSummaryLength(length int) NormalizerOption {
	return func(n *Normalizer) {
		if length > 0 {
			n.summaryLength = length
		}
	}
}

// WithClock overrides the time used when an entry carries no usable date.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.now = now
	}
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		stripHTML:     true,
		summaryLength: DefaultSummaryLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize turns a raw entry into an article. Entries without a title or a
// link are rejected with ErrIncompleteEntry.
func (n *Normalizer) Normalize(e Entry, source string) (*domain.Article, error) {
	title := strings.TrimSpace(e.Title)
	link := strings.TrimSpace(e.Link)
	if title == "" || link == "" {
		return nil, ErrIncompleteEntry
	}

	rawContent := firstNonEmpty(e.Content, e.Description, e.Summary)
	content := n.clean(rawContent)

	summary := content
	if strings.TrimSpace(e.Summary) != "" {
		summary = n.clean(e.Summary)
	}

	published := n.resolvePublished(e).UTC()

	return &domain.Article{
		ID:          ArticleID(link, title, published),
		Title:       title,
		Content:     content,
		Summary:     Truncate(summary, n.summaryLength),
		URL:         link,
		Source:      source,
		PublishedAt: published,
		Author:      strings.TrimSpace(e.Author),
		Categories:  resolveCategories(e, link),
		ImageURL:    resolveImage(e, rawContent),
	}, nil
}

// NormalizeAll normalizes every entry, skipping the ones that are rejected
// or fail. A failing entry never aborts the batch.
func (n *Normalizer) NormalizeAll(entries []Entry, source string) []domain.Article {
	articles := make([]domain.Article, 0, len(entries))
	for i, e := range entries {
		article, err := n.safeNormalize(e, source)
		if err != nil {
			if errors.Is(err, ErrIncompleteEntry) {
				slog.Debug("skipping feed entry", "source", source, "index", i, "reason", err)
			} else {
				slog.Error("failed to normalize feed entry", "source", source, "index", i, "error", err)
			}
			continue
		}
		articles = append(articles, *article)
	}
	return articles
}

func (n *Normalizer) safeNormalize(e Entry, source string) (article *domain.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			article = nil
			err = fmt.Errorf("normalize entry %q: %v", e.Link, r)
		}
	}()
	return n.Normalize(e, source)
}

func (n *Normalizer) clean(s string) string {
	if n.stripHTML {
		return StripHTML(s)
	}
	return strings.TrimSpace(s)
}

func (n *Normalizer) resolvePublished(e Entry) time.Time {
	if e.PublishedParsed != nil && !e.PublishedParsed.IsZero() {
		return *e.PublishedParsed
	}
	if e.UpdatedParsed != nil && !e.UpdatedParsed.IsZero() {
		return *e.UpdatedParsed
	}
	if t, ok := parseFreeText(e.Published); ok {
		return t
	}
	if t, ok := parseFreeText(e.Updated); ok {
		return t
	}
	return n.now()
}

func resolveCategories(e Entry, link string) []string {
	if tags := dedupe(e.Tags); len(tags) > 0 {
		return tags
	}
	if categories := dedupe(e.Categories); len(categories) > 0 {
		return categories
	}
	categories := CategorizeByURL(link)
	if categories == nil {
		return []string{}
	}
	return categories
}

func resolveImage(e Entry, rawContent string) string {
	for _, m := range e.Media {
		if m.URL != "" && m.IsImage() {
			return m.URL
		}
	}
	return FirstImage(rawContent)
}

// Truncate cuts s to limit characters and appends "..." when it was longer.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + ellipsis
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
