package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/domain"
)

const fileExt = ".json"

// FileCache keeps the last successfully fetched batch of every source as a
// JSON array in <dir>/<source>.json. It is never the system of record.
type FileCache struct {
	dir string
}

func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) Dir() string {
	return c.dir
}

// Save overwrites the cached batch of source.
func (c *FileCache) Save(source string, articles []domain.Article) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache for %s: %w", source, err)
	}

	path := c.path(source)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache for %s: %w", source, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace cache for %s: %w", source, err)
	}
	return nil
}

// Load returns the cached batch of source, or apperr.ErrNotFound.
func (c *FileCache) Load(source string) ([]domain.Article, error) {
	data, err := os.ReadFile(c.path(source))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cache for %s: %w", source, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("read cache for %s: %w", source, err)
	}

	var articles []domain.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("decode cache for %s: %w", source, err)
	}
	return articles, nil
}

// Sources lists the cached source names in ascending order.
func (c *FileCache) Sources() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		sources = append(sources, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(sources)
	return sources, nil
}

func (c *FileCache) path(source string) string {
	return filepath.Join(c.dir, FileName(source)+fileExt)
}

// FileName maps a source name onto a safe file name.
func FileName(source string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(source) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
