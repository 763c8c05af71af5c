package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/newsman/internal/apperr"
	"github.com/DjordjeVuckovic/newsman/internal/types/operator"
	"github.com/DjordjeVuckovic/newsman/pkg/pagination"
)

// DefaultMinScore is applied to searches that do not set min_score.
const DefaultMinScore = 0.35

// Params are the raw filter values as they arrive on the wire.
type Params struct {
	Query       string
	Source      string
	Category    string
	Date        string
	DateOperand string
	MinScore    string
	Limit       string
	Offset      string
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO 8601 date or date-time. Values without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as an ISO date", s)
}

// ParseFilter validates raw parameters. Every failure is an
// *apperr.ValidationError so a bad value never reaches the store.
func ParseFilter(p Params) (*Filter, error) {
	page := pagination.OffsetRequest{}
	var err error

	if p.Limit != "" {
		if page.Limit, err = strconv.Atoi(p.Limit); err != nil {
			return nil, apperr.NewValidationWrap("limit must be an integer", err)
		}
	}
	if p.Offset != "" {
		if page.Offset, err = strconv.Atoi(p.Offset); err != nil {
			return nil, apperr.NewValidationWrap("offset must be an integer", err)
		}
	}
	if err := page.Validate(); err != nil {
		return nil, apperr.NewValidation(err.Error())
	}

	f := &Filter{
		Text:     strings.TrimSpace(p.Query),
		Source:   strings.TrimSpace(p.Source),
		Category: strings.TrimSpace(p.Category),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}

	score := DefaultMinScore
	if p.MinScore != "" {
		if score, err = strconv.ParseFloat(strings.TrimSpace(p.MinScore), 64); err != nil {
			return nil, apperr.NewValidationWrap("min_score must be a number", err)
		}
		// Cosine similarity lives in [-1, 1]; NaN would disable the threshold.
		if math.IsNaN(score) || score < -1 || score > 1 {
			return nil, apperr.NewValidation("min_score must be between -1 and 1")
		}
	}
	f.MinScore = &score

	if p.Date != "" {
		op, err := operator.ParseDate(p.DateOperand)
		if err != nil {
			return nil, apperr.NewValidation(err.Error())
		}
		t, err := ParseDate(p.Date)
		if err != nil {
			return nil, apperr.NewValidationWrap("Invalid date format. Please use ISO format (YYYY-MM-DD)", err)
		}
		r := NewDateRange(op, t)
		f.Date = &r
	}

	return f, nil
}
