package pagination

import "fmt"

// OffsetRequest represents a limit/offset pagination request
type OffsetRequest struct {
	Limit  int `json:"limit" query:"limit"`
	Offset int `json:"offset" query:"offset"`
}

// Validate checks the bounds of the request and fills in the default limit.
func (r *OffsetRequest) Validate() error {
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit < 1 || r.Limit > MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}
	if r.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	return nil
}

// Window is the number of items that must be fetched to serve the page.
func (r OffsetRequest) Window() int {
	return r.Limit + r.Offset
}
