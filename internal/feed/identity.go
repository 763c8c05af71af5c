package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"
)

// ArticleID derives the stable identifier of an article from the path of its
// URL, its title and its published timestamp.
func ArticleID(rawURL, title string, published time.Time) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	sum := sha256.Sum256([]byte(path + "_" + title + "_" + published.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
