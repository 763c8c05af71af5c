package operator

import (
	"fmt"
	"strings"
)

// Date selects how a date filter value is compared with the published
// timestamp of an article.
//
// Usage:
//
//	op, err := operator.ParseDate("on_or_after")
//	r := query.NewDateRange(op, day)
type Date string

const (
	// Before matches articles published strictly before the value
	Before Date = "before"

	// After matches articles published strictly after the value
	After Date = "after"

	// OnOrBefore matches articles published at or before the value
	OnOrBefore Date = "on_or_before"

	// OnOrAfter matches articles published at or after the value
	OnOrAfter Date = "on_or_after"

	// On matches the whole UTC day that contains the value
	On Date = "on"
)

const DefaultDate = On

// ParseDate accepts the operator names plus the "<=", ">=", "<" and ">" aliases.
func ParseDate(s string) (Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDate, nil
	case string(On):
		return On, nil
	case string(Before), "<":
		return Before, nil
	case string(After), ">":
		return After, nil
	case string(OnOrBefore), "<=":
		return OnOrBefore, nil
	case string(OnOrAfter), ">=":
		return OnOrAfter, nil
	default:
		return "", fmt.Errorf("invalid date operand: %s (must be one of on, before, after, on_or_before, on_or_after)", s)
	}
}

func (d Date) String() string {
	return string(d)
}
