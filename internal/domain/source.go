package domain

// FeedSource is a configured RSS/Atom endpoint. Sources are loaded once at
// startup and never mutated.
type FeedSource struct {
	Name        string `yaml:"name" json:"name"`
	URL         string `yaml:"url" json:"url"`
	MaxArticles int    `yaml:"max_articles,omitempty" json:"max_articles,omitempty"`
}
