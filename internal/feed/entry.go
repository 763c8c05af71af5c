package feed

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Media is one media:content (or enclosure) attached to an entry.
type Media struct {
	URL    string
	Type   string
	Medium string
}

// IsImage reports whether the media object is flagged as an image.
func (m Media) IsImage() bool {
	return strings.Contains(m.Type, "image") || m.Medium == "image"
}

// Entry is a raw feed item, independent of the feed format it came from.
type Entry struct {
	Title           string
	Link            string
	Content         string
	Description     string
	Summary         string
	PublishedParsed *time.Time
	UpdatedParsed   *time.Time
	Published       string
	Updated         string
	Author          string
	Tags            []string
	Categories      []string
	Media           []Media
}

// EntryFromItem converts a gofeed item. RSS <description> and Atom <summary>
// both end up in Description, which doubles as the entry summary.
func EntryFromItem(item *gofeed.Item) Entry {
	e := Entry{
		Title:           item.Title,
		Link:            item.Link,
		Content:         item.Content,
		Description:     item.Description,
		Summary:         item.Description,
		PublishedParsed: item.PublishedParsed,
		UpdatedParsed:   item.UpdatedParsed,
		Published:       item.Published,
		Updated:         item.Updated,
		Tags:            item.Categories,
	}

	if e.Link == "" && len(item.Links) > 0 {
		e.Link = item.Links[0]
	}

	switch {
	case item.Author != nil && item.Author.Name != "":
		e.Author = item.Author.Name
	case len(item.Authors) > 0 && item.Authors[0] != nil:
		e.Author = item.Authors[0].Name
	case item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0:
		e.Author = item.DublinCoreExt.Creator[0]
	}

	if item.DublinCoreExt != nil {
		e.Categories = item.DublinCoreExt.Subject
	}

	e.Media = mediaFromItem(item)
	return e
}

func mediaFromItem(item *gofeed.Item) []Media {
	var media []Media

	if ns, ok := item.Extensions["media"]; ok {
		for _, c := range ns["content"] {
			media = append(media, Media{URL: c.Attrs["url"], Type: c.Attrs["type"], Medium: c.Attrs["medium"]})
		}
		for _, g := range ns["group"] {
			for _, c := range g.Children["content"] {
				media = append(media, Media{URL: c.Attrs["url"], Type: c.Attrs["type"], Medium: c.Attrs["medium"]})
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		media = append(media, Media{URL: enc.URL, Type: enc.Type})
	}

	return media
}
