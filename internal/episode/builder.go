// internal/episode/builder.go
package episode

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/jupiterbroadcasting/showharvest/internal/config"
	"github.com/jupiterbroadcasting/showharvest/internal/fireside"
	"github.com/jupiterbroadcasting/showharvest/internal/identity"
	"github.com/jupiterbroadcasting/showharvest/internal/legacysite"
	"github.com/jupiterbroadcasting/showharvest/internal/scraper"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// Builder assembles episodes from the primary feed item, the rendered
// episode page and the legacy archive record.
type Builder struct {
	client    *scraper.Client
	fetcher   *fireside.Fetcher
	resolver  *identity.Resolver
	sponsors  *identity.SponsorStore
	logger    utils.Logger
	converter *md.Converter
}

// NewBuilder creates a Builder. Sponsor details found while building
// are recorded in the given store.
func NewBuilder(client *scraper.Client, fetcher *fireside.Fetcher, resolver *identity.Resolver, sponsors *identity.SponsorStore, logger utils.Logger) *Builder {
	return &Builder{
		client:    client,
		fetcher:   fetcher,
		resolver:  resolver,
		sponsors:  sponsors,
		logger:    logger,
		converter: md.NewConverter("", true, nil),
	}
}

// Build constructs the episode record for one feed item. Any failure
// is scoped to this episode; the caller logs it and moves on.
func (b *Builder) Build(ctx context.Context, item fireside.Item, showSlug string, show config.ShowConfig, legacy *legacysite.EpisodeRecord) (*Episode, error) {
	number, err := NumberFromURL(item.URL)
	if err != nil {
		return nil, err
	}

	if item.ID == "" {
		return nil, fmt.Errorf("feed item %s has no GUID", item.URL)
	}

	chaptersResult, err := b.fetcher.FetchChapters(ctx, show.FiresideSlug, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chapters for %s: %w", item.URL, err)
	}

	notes, err := goquery.NewDocumentFromReader(strings.NewReader(item.ContentHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse show notes of %s: %w", item.URL, err)
	}

	page, err := b.client.GetDocument(ctx, item.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch episode page %s: %w", item.URL, err)
	}

	blurb := item.Summary
	if blurb == "" {
		// The summary can be empty; the first paragraph of the show
		// notes stands in for it.
		blurb = strings.TrimSpace(notes.Find("p").First().Text())
	}

	sponsorRefs, err := fireside.ParseEpisodeSponsors(notes, page, show.Acronym)
	if err != nil {
		b.logger.Errorf("Failed to parse sponsor data: show=%s ep=%d error=%v", show.Acronym, number, err)
	}
	sponsors := make([]string, 0, len(sponsorRefs))
	for _, ref := range sponsorRefs {
		sponsors = append(sponsors, ref.Shortname)
		if ref.Detail != nil {
			b.sponsors.Add(*ref.Detail)
		}
	}
	if len(sponsors) == 0 {
		b.logger.Warnf("No sponsors found for this episode: show=%s ep=%d", show.Acronym, number)
	}

	links, err := b.linksMarkdown(notes)
	if err != nil {
		return nil, fmt.Errorf("failed to render episode links of %s: %w", item.URL, err)
	}

	if len(item.Attachments) == 0 {
		return nil, fmt.Errorf("feed item %s has no attachments", item.URL)
	}
	attachment := item.Attachments[0]

	ep := &Episode{
		ShowSlug:        showSlug,
		ShowName:        show.Name,
		Episode:         number,
		EpisodeGUID:     item.ID,
		Title:           PlainTitle(item.Title),
		Description:     blurb,
		Date:            item.DatePublished,
		Tags:            fireside.ParseEpisodeTags(page),
		Hosts:           fireside.ParseEpisodeHosts(page, show.FiresideURL, b.resolver),
		Guests:          fireside.ParseEpisodeGuests(page, show.FiresideURL, b.resolver),
		Sponsors:        sponsors,
		PodcastDuration: FormatDuration(attachment.DurationInSeconds),
		PodcastFile:     attachment.URL,
		PodcastBytes:    attachment.SizeInBytes,
		FiresideURL:     urlPath(item.URL),
		EpisodeLinks:    links,
	}

	if chaptersResult.Found {
		ep.PodcastChapters = chaptersResult.Chapters
	}

	b.mergeLegacy(ep, legacy, item.URL)

	ep.GenerateDerived()
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	return ep, nil
}

// BuildFromRSS constructs the episode record for one RSS feed item.
// The feed itself carries the hosts, guests, tags and links, so no
// episode page is fetched.
func (b *Builder) BuildFromRSS(ctx context.Context, rssEp fireside.RSSEpisode, showSlug string, show config.ShowConfig, legacy *legacysite.EpisodeRecord) (*Episode, error) {
	number, err := NumberFromURL(rssEp.URL)
	if err != nil {
		return nil, err
	}

	if rssEp.ID == "" {
		return nil, fmt.Errorf("feed item %s has no GUID", rssEp.URL)
	}

	blurb := rssEp.Summary
	if blurb == "" && rssEp.ContentHTML != "" {
		notes, err := goquery.NewDocumentFromReader(strings.NewReader(rssEp.ContentHTML))
		if err != nil {
			return nil, fmt.Errorf("failed to parse show notes of %s: %w", rssEp.URL, err)
		}
		blurb = strings.TrimSpace(notes.Find("p").First().Text())
	}

	if len(rssEp.Attachments) == 0 {
		return nil, fmt.Errorf("feed item %s has no enclosure", rssEp.URL)
	}
	attachment := rssEp.Attachments[0]

	tags := append([]string(nil), rssEp.Tags...)
	sort.Strings(tags)

	ep := &Episode{
		ShowSlug:        showSlug,
		ShowName:        show.Name,
		Episode:         number,
		EpisodeGUID:     rssEp.ID,
		Title:           PlainTitle(rssEp.Title),
		Description:     blurb,
		Date:            rssEp.DatePublished,
		Tags:            tags,
		Hosts:           rssEp.Hosts,
		Guests:          rssEp.Guests,
		PodcastDuration: normalizeITunesDuration(rssEp.Duration),
		PodcastFile:     attachment.URL,
		PodcastBytes:    attachment.SizeInBytes,
		FiresideURL:     urlPath(rssEp.URL),
		EpisodeLinks:    linksListMarkdown(rssEp.Links),
	}

	if rssEp.ChaptersURL != "" {
		chaptersResult, err := b.fetcher.FetchChaptersURL(ctx, rssEp.ChaptersURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chapters for %s: %w", rssEp.URL, err)
		}
		if chaptersResult.Found {
			ep.PodcastChapters = chaptersResult.Chapters
		}
	}

	b.mergeLegacy(ep, legacy, rssEp.URL)

	ep.GenerateDerived()
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	return ep, nil
}

// linksListMarkdown renders structured feed links in the same markdown
// list shape the show-notes converter produces.
func linksListMarkdown(links []fireside.EpisodeLink) string {
	if len(links) == 0 {
		return ""
	}

	var b strings.Builder
	for _, link := range links {
		fmt.Fprintf(&b, "- [%s](%s)", link.Title, link.URL)
		if link.Description != "" {
			b.WriteString(" — " + link.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// normalizeITunesDuration accepts the formats itunes:duration appears
// in (plain seconds, MM:SS or HH:MM:SS) and renders HH:MM:SS.
func normalizeITunesDuration(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return ""
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return ""
		}
		total = total*60 + n
	}
	return FormatDuration(total)
}

// mergeLegacy copies the archive download links into the episode. An
// episode without an archive record still gets built; it just carries
// no direct download links.
func (b *Builder) mergeLegacy(ep *Episode, legacy *legacysite.EpisodeRecord, itemURL string) {
	if legacy == nil {
		b.logger.Warnf("Show won't have direct download links! episode_url=%s", itemURL)
		return
	}

	ep.PodcastAltFile = legacy.Downloads.MP3Audio
	ep.PodcastOggFile = legacy.Downloads.OGGAudio
	ep.VideoFile = legacy.Downloads.Video
	ep.VideoHDFile = legacy.Downloads.HDVideo
	ep.VideoMobileFile = legacy.Downloads.MobileVideo
	ep.YouTubeLink = legacy.Downloads.YouTube
	ep.JBURL = urlPath(legacy.PageURL)
}

// linksMarkdown renders the "Links:" (or "Episode Links:") list of the
// show notes as markdown.
func (b *Builder) linksMarkdown(notes *goquery.Document) (string, error) {
	list := fireside.FindLabeledList(notes, "Links:")
	if list == nil {
		list = fireside.FindLabeledList(notes, "Episode Links:")
	}
	if list == nil {
		return "", nil
	}

	var buf bytes.Buffer
	if err := goquery.Render(&buf, list); err != nil {
		return "", err
	}

	markdown, err := b.converter.ConvertString(buf.String())
	if err != nil {
		return "", err
	}
	return markdown, nil
}

// NumberFromURL extracts the episode number from the last path segment
// of a feed item URL. The feed payload itself does not carry one.
func NumberFromURL(itemURL string) (int, error) {
	u, err := url.Parse(itemURL)
	if err != nil {
		return 0, fmt.Errorf("feed item URL %q is unparseable: %w", itemURL, err)
	}

	parts := strings.Split(strings.TrimRight(u.Path, "/"), "/")
	tail := parts[len(parts)-1]

	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("feed item URL %q does not end in an episode number: %w", itemURL, err)
	}
	return n, nil
}

func urlPath(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
