package pagination

// OffsetResult is one page cut out of an over-fetched result set
type OffsetResult[T any] struct {
	Items   []T  `json:"items"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewOffsetResult slices items[offset:offset+limit]. The input is expected to
// hold at most limit+offset elements, so HasMore is only a hint that the
// window was filled completely.
func NewOffsetResult[T any](items []T, offset, limit int) *OffsetResult[T] {
	res := &OffsetResult[T]{
		Items:  make([]T, 0),
		Limit:  limit,
		Offset: offset,
	}
	if offset >= len(items) {
		return res
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	res.Items = items[offset:end]
	res.HasMore = len(items) >= offset+limit
	return res
}
