package storage

import (
	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/types/query"
)

// Filter is the store-native condition set. All present conditions are
// ANDed: Source is an equality match, Category must be one of the article's
// categories and Date is a range on the published timestamp.
type Filter struct {
	Source   string
	Category string
	Date     *query.DateRange
}

func FilterFromQuery(f query.Filter) Filter {
	return Filter{
		Source:   f.Source,
		Category: f.Category,
		Date:     f.Date,
	}
}

func (f Filter) IsEmpty() bool {
	return f.Source == "" && f.Category == "" && f.Date == nil
}

// Matches evaluates the filter against a single article.
func (f Filter) Matches(a domain.Article) bool {
	if f.Source != "" && a.Source != f.Source {
		return false
	}
	if f.Category != "" && !a.HasCategory(f.Category) {
		return false
	}
	if f.Date != nil && !f.Date.Contains(a.PublishedAt) {
		return false
	}
	return true
}
