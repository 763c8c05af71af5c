package query

import (
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/types/operator"
)

// DateRange is a range condition on the published timestamp.
// A nil bound is open.
type DateRange struct {
	GT  *time.Time `json:"gt,omitempty"`
	GTE *time.Time `json:"gte,omitempty"`
	LT  *time.Time `json:"lt,omitempty"`
	LTE *time.Time `json:"lte,omitempty"`
}

// NewDateRange builds the range for op. The "on" operator expands to the full
// UTC day containing t, both ends inclusive.
func NewDateRange(op operator.Date, t time.Time) DateRange {
	t = t.UTC()
	switch op {
	case operator.Before:
		return DateRange{LT: &t}
	case operator.After:
		return DateRange{GT: &t}
	case operator.OnOrBefore:
		return DateRange{LTE: &t}
	case operator.OnOrAfter:
		return DateRange{GTE: &t}
	default:
		start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, time.UTC)
		return DateRange{GTE: &start, LTE: &end}
	}
}

// Contains reports whether ts satisfies every bound of the range.
func (r DateRange) Contains(ts time.Time) bool {
	if r.GT != nil && !ts.After(*r.GT) {
		return false
	}
	if r.GTE != nil && ts.Before(*r.GTE) {
		return false
	}
	if r.LT != nil && !ts.Before(*r.LT) {
		return false
	}
	if r.LTE != nil && ts.After(*r.LTE) {
		return false
	}
	return true
}

// Filter is the user-facing query. It lives for a single request.
type Filter struct {
	Text     string
	Source   string
	Category string
	Date     *DateRange
	MinScore *float64
	Limit    int
	Offset   int
}
