// internal/pipeline/runner.go

// Package pipeline sequences a harvest run: crawl the legacy archive,
// build episodes from the primary feeds, then resolve people and
// sponsors. Each stage finishes for every show before the next one
// starts, because later stages read what earlier ones produced.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jupiterbroadcasting/showharvest/internal/config"
	"github.com/jupiterbroadcasting/showharvest/internal/episode"
	"github.com/jupiterbroadcasting/showharvest/internal/fireside"
	"github.com/jupiterbroadcasting/showharvest/internal/identity"
	"github.com/jupiterbroadcasting/showharvest/internal/legacysite"
	"github.com/jupiterbroadcasting/showharvest/internal/monitoring"
	"github.com/jupiterbroadcasting/showharvest/internal/output"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// Runner orchestrates one harvest run across all configured shows. A
// failing show or episode is logged and counted; only a run that
// produces nothing at all is reported as an error.
type Runner struct {
	cfg          *config.Config
	crawler      *legacysite.Crawler
	fetcher      *fireside.Fetcher
	rssParser    *fireside.RSSParser
	people       *fireside.PeopleScraper
	builder      *episode.Builder
	peopleStore  *identity.PeopleStore
	sponsorStore *identity.SponsorStore
	output       *output.Manager
	metrics      *monitoring.Metrics
	status       *monitoring.Server
	logger       utils.Logger

	latestOnly     bool
	maxConcurrency int

	mu      sync.Mutex
	built   int
	skipped int
	failed  int
	errs    []error
}

// RunnerConfig carries the collaborators a Runner needs.
type RunnerConfig struct {
	Config       *config.Config
	Crawler      *legacysite.Crawler
	Fetcher      *fireside.Fetcher
	RSSParser    *fireside.RSSParser
	People       *fireside.PeopleScraper
	Builder      *episode.Builder
	PeopleStore  *identity.PeopleStore
	SponsorStore *identity.SponsorStore
	Output       *output.Manager
	Metrics      *monitoring.Metrics
	// Status is the optional status server; when set, the crawled
	// archive index is published to its debug endpoint.
	Status     *monitoring.Server
	Logger     utils.Logger
	LatestOnly bool
}

// Summary is the end-of-run report.
type Summary struct {
	EpisodesBuilt   int
	EpisodesSkipped int
	EpisodesFailed  int
	PeopleResolved  int
	SponsorsFound   int
	Errors          []error
}

// NewRunner creates a Runner from its collaborators.
func NewRunner(rc RunnerConfig) *Runner {
	maxConcurrency := rc.Config.Scraper.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}

	metrics := rc.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	return &Runner{
		cfg:            rc.Config,
		crawler:        rc.Crawler,
		fetcher:        rc.Fetcher,
		rssParser:      rc.RSSParser,
		people:         rc.People,
		builder:        rc.Builder,
		peopleStore:    rc.PeopleStore,
		sponsorStore:   rc.SponsorStore,
		output:         rc.Output,
		metrics:        metrics,
		status:         rc.Status,
		logger:         rc.Logger,
		latestOnly:     rc.LatestOnly,
		maxConcurrency: maxConcurrency,
	}
}

// Run executes the three harvest stages in order and returns the run
// summary. The returned error is non-nil only when the whole run
// produced nothing.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	r.logger.Infof("Harvest started: shows=%d latest_only=%v", len(r.cfg.Shows), r.latestOnly)

	index := r.crawlArchive(ctx)
	r.harvestShows(ctx, index)
	r.resolveIdentities(ctx)
	r.writeIdentities()

	summary := r.summary()
	r.logger.Infof("Harvest finished: built=%d skipped=%d failed=%d people=%d sponsors=%d errors=%d duration=%s",
		summary.EpisodesBuilt, summary.EpisodesSkipped, summary.EpisodesFailed,
		summary.PeopleResolved, summary.SponsorsFound, len(summary.Errors), time.Since(start).Round(time.Second))

	if summary.EpisodesBuilt == 0 && summary.EpisodesSkipped == 0 && len(summary.Errors) > 0 {
		return summary, fmt.Errorf("harvest produced no episodes: %d errors", len(summary.Errors))
	}
	return summary, nil
}

// crawlArchive builds the legacy archive index for every show that has
// an archive URL. The index must be complete before episode builds
// start, since builds merge download links out of it.
func (r *Runner) crawlArchive(ctx context.Context) legacysite.Index {
	index := make(legacysite.Index)

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.maxConcurrency)
		mu  sync.Mutex
	)

	for slug, show := range r.cfg.Shows {
		if show.JBURL == "" {
			continue
		}

		wg.Add(1)
		go func(slug string, show config.ShowConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			episodes, err := r.crawler.CrawlShow(ctx, slug, show.JBURL)
			if err != nil {
				r.recordError(fmt.Errorf("archive crawl of %s failed: %w", slug, err))
				return
			}

			mu.Lock()
			index[slug] = episodes
			mu.Unlock()

			r.metrics.AddArchiveEpisodes(slug, len(episodes))
		}(slug, show)
	}
	wg.Wait()

	r.crawler.FetchDownloads(ctx, index)

	if r.status != nil {
		r.status.SetLegacyIndex(index)
	}

	if r.cfg.Output.DumpLegacyIndex {
		if err := r.output.DumpLegacyIndex(index); err != nil {
			r.recordError(fmt.Errorf("failed to dump legacy index: %w", err))
		}
	}

	return index
}

// harvestShows fetches every show's primary feed and builds episode
// files, merging archive download links from the index.
func (r *Runner) harvestShows(ctx context.Context, index legacysite.Index) {
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.maxConcurrency)
	)

	for slug, show := range r.cfg.Shows {
		wg.Add(1)
		go func(slug string, show config.ShowConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			if show.FeedSource == config.FeedSourceRSS {
				r.harvestShowRSS(ctx, slug, show, index)
			} else {
				r.harvestShowJSON(ctx, slug, show, index)
			}
			r.metrics.ObserveShowDuration(slug, time.Since(start).Seconds())
		}(slug, show)
	}
	wg.Wait()
}

func (r *Runner) harvestShowJSON(ctx context.Context, slug string, show config.ShowConfig, index legacysite.Index) {
	feed, err := r.fetcher.FetchShowJSON(ctx, show.FiresideURL)
	if err != nil {
		r.recordError(fmt.Errorf("feed fetch of %s failed: %w", slug, err))
		return
	}

	items := feed.Items
	if limit := r.itemLimit(); limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	for _, item := range items {
		if r.skipExisting(slug, item.URL) {
			continue
		}

		ep, err := r.builder.Build(ctx, item, slug, show, r.legacyRecord(index, slug, item.URL))
		if err != nil {
			r.episodeFailed(slug, item.URL, err)
			continue
		}
		r.writeEpisode(slug, ep)
	}
}

func (r *Runner) harvestShowRSS(ctx context.Context, slug string, show config.ShowConfig, index legacysite.Index) {
	episodes, err := r.rssParser.ParseFeed(ctx, show.RSSURL)
	if err != nil {
		r.recordError(fmt.Errorf("RSS fetch of %s failed: %w", slug, err))
		return
	}

	if limit := r.itemLimit(); limit > 0 && len(episodes) > limit {
		episodes = episodes[:limit]
	}

	for _, rssEp := range episodes {
		if r.skipExisting(slug, rssEp.URL) {
			continue
		}

		ep, err := r.builder.BuildFromRSS(ctx, rssEp, slug, show, r.legacyRecord(index, slug, rssEp.URL))
		if err != nil {
			r.episodeFailed(slug, rssEp.URL, err)
			continue
		}
		r.writeEpisode(slug, ep)
	}
}

// skipExisting reports whether the episode behind itemURL already has a
// content file that a full run must not touch. Latest-only runs always
// rebuild.
func (r *Runner) skipExisting(slug, itemURL string) bool {
	if r.latestOnly {
		return false
	}

	number, err := episode.NumberFromURL(itemURL)
	if err != nil {
		// The builder reports unparseable URLs; don't skip here.
		return false
	}

	if !r.output.EpisodeExists(slug, number) {
		return false
	}

	r.logger.Debugf("Episode file exists, skipping: show=%s ep=%d", slug, number)
	r.metrics.RecordEpisodeSkipped(slug)
	r.mu.Lock()
	r.skipped++
	r.mu.Unlock()
	return true
}

func (r *Runner) legacyRecord(index legacysite.Index, slug, itemURL string) *legacysite.EpisodeRecord {
	number, err := episode.NumberFromURL(itemURL)
	if err != nil {
		return nil
	}
	return index.Lookup(slug, float64(number))
}

func (r *Runner) writeEpisode(slug string, ep *episode.Episode) {
	written, err := r.output.WriteEpisode(ep)
	if err != nil {
		r.episodeFailed(slug, ep.FiresideURL, err)
		return
	}

	r.mu.Lock()
	if written {
		r.built++
	} else {
		r.skipped++
	}
	r.mu.Unlock()

	if written {
		r.metrics.RecordEpisodeBuilt(slug)
	} else {
		r.metrics.RecordEpisodeSkipped(slug)
	}
}

func (r *Runner) episodeFailed(slug, itemURL string, err error) {
	r.metrics.RecordEpisodeFailure(slug)
	r.mu.Lock()
	r.failed++
	r.errs = append(r.errs, fmt.Errorf("episode %s of %s failed: %w", itemURL, slug, err))
	r.mu.Unlock()
	r.logger.Errorf("Failed to build episode: show=%s url=%s error=%v", slug, itemURL, err)
}

// resolveIdentities scrapes every show's hosts and guests pages into
// the people store. Episode builds are done by now, so the sponsor
// store is complete and only people remain.
func (r *Runner) resolveIdentities(ctx context.Context) {
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.maxConcurrency)
	)

	for slug, show := range r.cfg.Shows {
		if show.FeedSource == config.FeedSourceRSS {
			// RSS feeds carry person credits inline; there are no
			// people pages to scrape.
			continue
		}

		wg.Add(1)
		go func(slug string, show config.ShowConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			hosts, err := r.people.FetchHosts(ctx, show.FiresideURL)
			if err != nil {
				r.recordError(fmt.Errorf("hosts scrape of %s failed: %w", slug, err))
			}
			for _, person := range hosts {
				r.peopleStore.Merge(person, show.Acronym)
			}

			guests, err := r.people.FetchGuests(ctx, show.FiresideURL)
			if err != nil {
				r.recordError(fmt.Errorf("guests scrape of %s failed: %w", slug, err))
			}
			for _, person := range guests {
				r.peopleStore.Merge(person, show.Acronym)
			}
		}(slug, show)
	}
	wg.Wait()
}

// writeIdentities persists the resolved people and sponsors.
func (r *Runner) writeIdentities() {
	for _, key := range r.peopleStore.Keys() {
		person, ok := r.peopleStore.Get(key)
		if !ok {
			continue
		}
		if err := r.output.WritePerson(key, person); err != nil {
			r.recordError(fmt.Errorf("failed to write person %s: %w", key, err))
		}
	}

	for _, sponsor := range r.sponsorStore.All() {
		if err := r.output.WriteSponsor(sponsor); err != nil {
			r.recordError(fmt.Errorf("failed to write sponsor %s: %w", sponsor.Shortname, err))
		}
	}

	r.metrics.SetPeopleResolved(r.peopleStore.Len())
	r.metrics.SetSponsorsFound(r.sponsorStore.Len())
}

func (r *Runner) itemLimit() int {
	if !r.latestOnly {
		return 0
	}
	if r.cfg.Scraper.LatestOnlyLimit > 0 {
		return r.cfg.Scraper.LatestOnlyLimit
	}
	return 5
}

func (r *Runner) recordError(err error) {
	r.logger.Errorf("%v", err)
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *Runner) summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &Summary{
		EpisodesBuilt:   r.built,
		EpisodesSkipped: r.skipped,
		EpisodesFailed:  r.failed,
		PeopleResolved:  r.peopleStore.Len(),
		SponsorsFound:   r.sponsorStore.Len(),
		Errors:          append([]error(nil), r.errs...),
	}
}
