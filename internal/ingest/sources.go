package ingest

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_sources.yaml
var defaultSources []byte

type sourcesFile struct {
	Feeds []domain.FeedSource `yaml:"feeds"`
}

// LoadSources reads feed sources from path, or the built-in list when path
// is empty.
func LoadSources(path string) ([]domain.FeedSource, error) {
	if path == "" {
		return ParseSources(bytes.NewReader(defaultSources))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feeds config: %w", err)
	}
	defer f.Close()

	return ParseSources(f)
}

func ParseSources(r io.Reader) ([]domain.FeedSource, error) {
	var file sourcesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config: %w", err)
	}
	if err := validateSources(file.Feeds); err != nil {
		return nil, err
	}
	return file.Feeds, nil
}

func validateSources(sources []domain.FeedSource) error {
	if len(sources) == 0 {
		return fmt.Errorf("feeds config has no feeds")
	}

	seen := make(map[string]struct{}, len(sources))
	for i := range sources {
		src := &sources[i]
		src.Name = strings.TrimSpace(src.Name)
		src.URL = strings.TrimSpace(src.URL)

		if src.Name == "" {
			return fmt.Errorf("feed #%d has no name", i+1)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("duplicate feed name %q", src.Name)
		}
		seen[src.Name] = struct{}{}

		u, err := url.Parse(src.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("feed %q has invalid url %q", src.Name, src.URL)
		}
		if src.MaxArticles < 0 {
			return fmt.Errorf("feed %q has negative max_articles", src.Name)
		}
	}
	return nil
}
