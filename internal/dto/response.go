package dto

import "time"

type SearchResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Results []ArticleSearchResult `json:"results"`
}

type ArticleResponse struct {
	Success bool    `json:"success"`
	Article Article `json:"article"`
}

type SourcesResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Sources []string `json:"sources"`
}

type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Count      int      `json:"count"`
	Categories []string `json:"categories"`
}

type StatsResponse struct {
	Success       bool           `json:"success"`
	TotalArticles int64          `json:"total_articles"`
	ArticlesToday int            `json:"articles_today"`
	Sources       map[string]int `json:"sources"`
	Categories    map[string]int `json:"categories"`
	Timestamp     time.Time      `json:"timestamp"`
}

type FetchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CacheResponse struct {
	Success  bool      `json:"success"`
	Source   string    `json:"source"`
	Count    int       `json:"count"`
	Articles []Article `json:"articles"`
}

type CompanyAddResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ArticleID string `json:"article_id"`
}
