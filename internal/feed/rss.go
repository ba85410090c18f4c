// Package feed renders the live-broadcast slot as a single-item RSS 2.0
// document for the presentation tool that polls it.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/harvestchapel/testimony-live/internal/testimony"
)

// ContentType is the media type served for every feed response.
const ContentType = "application/rss+xml; charset=utf-8"

// Options carries the channel-level metadata.
type Options struct {
	Title       string
	Description string
	Link        string
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// Render produces the feed for the given live record. A nil record yields
// an empty item title and description; the document is valid either way.
// The item title carries the short display name, the description the full
// name, which is the shape the presentation tool binds to.
func Render(rec *testimony.LiveTestimony, opts Options, now time.Time) string {
	title := ""
	description := ""
	if rec != nil {
		title = rec.DisplayName
		description = rec.Name
	}
	stamp := now.UTC().Format(time.RFC1123)
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>%s</title>
    <link>%s</link>
    <description>%s</description>
    <lastBuildDate>%s</lastBuildDate>
    <ttl>1</ttl>
    <item>
      <title>%s</title>
      <description>%s</description>
      <pubDate>%s</pubDate>
    </item>
  </channel>
</rss>`,
		escapeXML(opts.Title), escapeXML(opts.Link), escapeXML(opts.Description),
		stamp, escapeXML(title), escapeXML(description), stamp)
}

// RenderEmpty is the degraded document served when the register cannot be
// read. Same schema, empty item; always parseable.
func RenderEmpty(opts Options) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>%s</title>
    <description>%s</description>
    <item>
      <title></title>
      <description></description>
    </item>
  </channel>
</rss>`, escapeXML(opts.Title), escapeXML(opts.Description))
}
