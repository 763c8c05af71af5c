package pagination

// DefaultLimit is the page size used when the client does not send one
const DefaultLimit = 10

// MaxLimit is the maximum allowed page size
const MaxLimit = 100
