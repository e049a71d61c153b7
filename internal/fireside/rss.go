// internal/fireside/rss.go
package fireside

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jupiterbroadcasting/showharvest/internal/scraper"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// RSSEpisode is one episode parsed from an RSS feed. It carries the
// same core item data as the JSON Feed plus the fields only RSS
// exposes.
type RSSEpisode struct {
	Item
	Duration    string
	ChaptersURL string
	Tags        []string
	Hosts       []string
	Guests      []string
	Links       []EpisodeLink
}

// RSSParser parses podcast RSS feeds for shows whose feed source is
// configured as rss instead of the JSON endpoint.
type RSSParser struct {
	client     *scraper.Client
	feedParser *gofeed.Parser
	logger     utils.Logger
	titleCaser cases.Caser
}

// NewRSSParser creates an RSSParser using the shared HTTP client.
func NewRSSParser(client *scraper.Client, logger utils.Logger) *RSSParser {
	return &RSSParser{
		client:     client,
		feedParser: gofeed.NewParser(),
		logger:     logger,
		titleCaser: cases.Title(language.English, cases.NoLower),
	}
}

// ParseFeed fetches and parses an RSS feed into episodes. Items that
// cannot be mapped are logged and skipped.
func (p *RSSParser) ParseFeed(ctx context.Context, feedURL string) ([]RSSEpisode, error) {
	body, err := p.client.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve RSS feed %s: %w", feedURL, err)
	}

	feed, err := p.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed %s: %w", feedURL, err)
	}

	episodes := make([]RSSEpisode, 0, len(feed.Items))
	for _, item := range feed.Items {
		ep, err := p.mapItem(item)
		if err != nil {
			p.logger.Errorf("Failed to map RSS item: feed=%s title=%q error=%v",
				feedURL, item.Title, err)
			continue
		}
		episodes = append(episodes, ep)
	}

	return episodes, nil
}

func (p *RSSParser) mapItem(item *gofeed.Item) (RSSEpisode, error) {
	ep := RSSEpisode{
		Item: Item{
			ID:    item.GUID,
			Title: item.Title,
			URL:   item.Link,
		},
	}

	if item.PublishedParsed != nil {
		ep.DatePublished = *item.PublishedParsed
	}

	// content:encoded first, itunes:summary as fallback
	ep.ContentHTML = item.Content
	if ep.ContentHTML == "" && item.ITunesExt != nil {
		ep.ContentHTML = item.ITunesExt.Summary
	}
	if item.ITunesExt != nil {
		ep.Summary = item.ITunesExt.Summary
		ep.Duration = item.ITunesExt.Duration
	}

	for _, enc := range item.Enclosures {
		att := Attachment{URL: enc.URL, MIMEType: enc.Type}
		fmt.Sscanf(enc.Length, "%d", &att.SizeInBytes)
		ep.Attachments = append(ep.Attachments, att)
	}

	if item.ITunesExt != nil && item.ITunesExt.Keywords != "" {
		for _, kw := range strings.Split(item.ITunesExt.Keywords, ",") {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				ep.Tags = append(ep.Tags, kw)
			}
		}
	}

	p.mapPodcastExtensions(item, &ep)

	if ep.ContentHTML != "" {
		links, err := parseLinksList(ep.ContentHTML)
		if err != nil {
			return ep, err
		}
		ep.Links = links
	}

	return ep, nil
}

// mapPodcastExtensions reads the podcast-namespace tags gofeed keeps
// as generic extensions: chapters and person credits.
func (p *RSSParser) mapPodcastExtensions(item *gofeed.Item, ep *RSSEpisode) {
	ext, ok := item.Extensions["podcast"]
	if !ok {
		return
	}

	for _, ch := range ext["chapters"] {
		if url, ok := ch.Attrs["url"]; ok {
			ep.ChaptersURL = url
			break
		}
	}

	for _, person := range ext["person"] {
		name := p.titleCaser.String(strings.TrimSpace(person.Value))
		if name == "" {
			continue
		}
		role := person.Attrs["role"]
		if role == "" || role == "host" {
			ep.Hosts = append(ep.Hosts, name)
		} else if role == "guest" {
			ep.Guests = append(ep.Guests, name)
		}
	}
}

// parseLinksList extracts the "Links:" (or "Episode Links:") list from
// an episode's show notes HTML.
func parseLinksList(contentHTML string) ([]EpisodeLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse show notes HTML: %w", err)
	}

	list := FindLabeledList(doc, "Links:")
	if list == nil {
		list = FindLabeledList(doc, "Episode Links:")
	}
	if list == nil {
		return nil, nil
	}

	var links []EpisodeLink
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}

		link := EpisodeLink{Title: strings.TrimSpace(a.Text()), URL: href}

		// The li text past the anchor is the description, prefixed
		// with an mdash.
		desc := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(li.Text()), link.Title))
		desc = strings.TrimSpace(strings.TrimPrefix(desc, "—"))
		desc = strings.ReplaceAll(desc, "\r\n", "")
		link.Description = strings.TrimSpace(desc)

		links = append(links, link)
	})

	return links, nil
}

// FindLabeledList locates a p element with the given label text and
// returns the ul that follows it, or nil. Show notes group their link
// blocks this way ("Links:", "Episode Links:", "Sponsored By:").
func FindLabeledList(doc *goquery.Document, label string) *goquery.Selection {
	var result *goquery.Selection
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == label {
			result = s.NextFiltered("ul")
			return false
		}
		return true
	})
	if result != nil && result.Length() == 0 {
		return nil
	}
	return result
}
