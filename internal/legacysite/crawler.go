// internal/legacysite/crawler.go
package legacysite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/jupiterbroadcasting/showharvest/internal/scraper"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// Crawler walks the archived site for each show and builds the legacy
// episode index.
type Crawler struct {
	client          *scraper.Client
	logger          utils.Logger
	titleExceptions map[string]float64
	latestOnly      bool
	latestOnlyLimit int
	maxConcurrency  int
}

// CrawlerConfig defines configuration options for the crawler.
type CrawlerConfig struct {
	Client *scraper.Client
	Logger utils.Logger
	// TitleExceptions maps archive card titles that do not end in a
	// parseable episode number to the number they stand for.
	TitleExceptions map[string]float64
	LatestOnly      bool
	LatestOnlyLimit int
	MaxConcurrency  int
}

// NewCrawler creates a Crawler from the given configuration.
func NewCrawler(config CrawlerConfig) *Crawler {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 8
	}
	if config.LatestOnlyLimit <= 0 {
		config.LatestOnlyLimit = 5
	}
	return &Crawler{
		client:          config.Client,
		logger:          config.Logger,
		titleExceptions: config.TitleExceptions,
		latestOnly:      config.LatestOnly,
		latestOnlyLimit: config.LatestOnlyLimit,
		maxConcurrency:  config.MaxConcurrency,
	}
}

// LastPage determines how many archive pages a show has from the
// pagination element ("Page 1 of N") on its first page. A missing
// element means a single page. In latest-only mode only the most
// recent page is crawled.
func (c *Crawler) LastPage(ctx context.Context, showURL string) (int, error) {
	if c.latestOnly {
		return 1, nil
	}

	doc, err := c.client.GetDocument(ctx, showURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch show page %s: %w", showURL, err)
	}

	return lastPageFromDocument(doc), nil
}

func lastPageFromDocument(doc *goquery.Document) int {
	pagesSpan := doc.Find("span.pages").First()
	if pagesSpan.Length() == 0 {
		return 1
	}

	// "Page 1 of 7" -> 7
	parts := strings.Fields(pagesSpan.Text())
	if len(parts) == 0 {
		return 1
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// CrawlShow fetches every archive page of a show and returns its
// episode number to record map. Page fetches run concurrently; parsed
// cards are merged in page order so duplicate handling is
// deterministic.
func (c *Crawler) CrawlShow(ctx context.Context, showSlug, baseURL string) (map[float64]*EpisodeRecord, error) {
	lastPage, err := c.LastPage(ctx, baseURL)
	if err != nil {
		return nil, err
	}

	type pageResult struct {
		doc *goquery.Document
		err error
	}

	results := make([]pageResult, lastPage)
	sem := make(chan struct{}, c.maxConcurrency)
	var wg sync.WaitGroup

	for page := 1; page <= lastPage; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pageURL := fmt.Sprintf("%s/page/%d/", baseURL, page)
			doc, err := c.client.GetDocument(ctx, pageURL)
			results[page-1] = pageResult{doc: doc, err: err}
		}(page)
	}
	wg.Wait()

	episodes := make(map[float64]*EpisodeRecord)
	for i, res := range results {
		if res.err != nil {
			c.logger.Errorf("Failed to fetch archive page: show=%s page=%d error=%v",
				showSlug, i+1, res.err)
			continue
		}
		c.parseArchivePage(res.doc, showSlug, i+1, episodes)
	}

	return episodes, nil
}

// parseArchivePage extracts the episode cards of one archive page into
// the episodes map. A card whose number was already seen is skipped
// with a log line; the first record wins.
func (c *Crawler) parseArchivePage(doc *goquery.Document, showSlug string, page int, episodes map[float64]*EpisodeRecord) {
	doc.Find("div.videoitem").EachWithBreak(func(idx int, item *goquery.Selection) bool {
		if c.latestOnly && idx >= c.latestOnlyLimit {
			c.logger.Debugf("Limiting crawl to the %d most recent episodes", c.latestOnlyLimit)
			return false
		}

		link := item.Find("a").First()
		href, _ := link.Attr("href")
		title, _ := link.Attr("title")

		number, err := c.episodeNumberFromTitle(title)
		if err != nil {
			c.logger.Errorf("Failed to get episode number from archive card: show=%s page=%d title=%q error=%v",
				showSlug, page, title, err)
			return true
		}

		if _, exists := episodes[number]; exists {
			c.logger.Warnf("Duplicate episode number on archive pages, keeping first: show=%s ep=%v title=%q",
				showSlug, number, title)
			return true
		}

		episodes[number] = &EpisodeRecord{PageURL: href}
		return true
	})
}

// episodeNumberFromTitle resolves a card title to its episode number.
// The exception table is checked first, then the historic "LU1"
// tail, then the trailing token is parsed as an integer.
func (c *Crawler) episodeNumberFromTitle(title string) (float64, error) {
	if number, ok := c.titleExceptions[title]; ok {
		return number, nil
	}

	parts := strings.Split(title, " ")
	tail := parts[len(parts)-1]

	if tail == "LU1" {
		return 1, nil
	}

	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("title %q has no trailing episode number: %w", title, err)
	}
	return float64(n), nil
}

// FetchDownloads visits the archive page of every indexed episode and
// fills in its direct download links. Failures are isolated per
// episode.
func (c *Crawler) FetchDownloads(ctx context.Context, index Index) {
	sem := make(chan struct{}, c.maxConcurrency)
	var wg sync.WaitGroup

	for showSlug, episodes := range index {
		for number, record := range episodes {
			wg.Add(1)
			go func(showSlug string, number float64, record *EpisodeRecord) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				doc, err := c.client.GetDocument(ctx, record.PageURL)
				if err != nil {
					c.logger.Errorf("Failed to fetch episode archive page: show=%s ep=%v error=%v",
						showSlug, number, err)
					return
				}
				c.parseDownloads(doc, showSlug, number, record)
			}(showSlug, number, record)
		}
	}
	wg.Wait()
}

// parseDownloads extracts the direct download anchors of one episode
// page into the record.
func (c *Crawler) parseDownloads(doc *goquery.Document, showSlug string, number float64, record *EpisodeRecord) {
	links := doc.Find("div#direct-downloads a")
	if links.Length() == 0 {
		// Older episodes list downloads under an h3 heading instead.
		if list := findSiblingList(doc.Selection, "Direct Download:", "h3", "p"); list != nil {
			links = list.Find("a")
		}
	}
	if links.Length() == 0 {
		c.logger.Warnf("No direct download links found: show=%s ep=%v", showSlug, number)
		return
	}

	links.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		url := strings.Trim(href, "\\\"")
		label := strings.ReplaceAll(strings.ToLower(a.Text()), " ", "_")

		if !record.Downloads.setLabel(label, url) {
			c.logger.Infof("Unrecognized download label kept as extra: show=%s ep=%v label=%s",
				showSlug, number, label)
		}
	})
}

// findSiblingList locates the element of findTag whose text equals
// preTitle and returns its next sibling of siblingTag, or nil when no
// such heading exists. Link blocks on both the archive and the feed
// pages follow this shape.
func findSiblingList(root *goquery.Selection, preTitle, findTag, siblingTag string) *goquery.Selection {
	var result *goquery.Selection
	root.Find(findTag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == preTitle {
			result = s.NextFiltered(siblingTag)
			return false
		}
		return true
	})
	return result
}
