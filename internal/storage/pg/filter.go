package pg

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/newsman/internal/storage"
)

// whereBuilder collects AND-ed conditions with positional arguments. Each
// condition is a format string with a single %d for its placeholder index.
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhereBuilder(args ...any) *whereBuilder {
	return &whereBuilder{args: args}
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// arg registers a value without a condition and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) filter(f storage.Filter) {
	if f.Source != "" {
		w.add("source = $%d", f.Source)
	}
	if f.Category != "" {
		w.add("$%d = ANY(categories)", f.Category)
	}
	if f.Date != nil {
		if f.Date.GT != nil {
			w.add("published_at > $%d", *f.Date.GT)
		}
		if f.Date.GTE != nil {
			w.add("published_at >= $%d", *f.Date.GTE)
		}
		if f.Date.LT != nil {
			w.add("published_at < $%d", *f.Date.LT)
		}
		if f.Date.LTE != nil {
			w.add("published_at <= $%d", *f.Date.LTE)
		}
	}
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}
