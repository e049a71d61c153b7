// internal/pipeline/runner_test.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jupiterbroadcasting/showharvest/internal/config"
	"github.com/jupiterbroadcasting/showharvest/internal/episode"
	"github.com/jupiterbroadcasting/showharvest/internal/fireside"
	"github.com/jupiterbroadcasting/showharvest/internal/identity"
	"github.com/jupiterbroadcasting/showharvest/internal/legacysite"
	"github.com/jupiterbroadcasting/showharvest/internal/monitoring"
	"github.com/jupiterbroadcasting/showharvest/internal/output"
	"github.com/jupiterbroadcasting/showharvest/internal/scraper"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// harvestSite simulates the three upstreams one run touches: the
// primary feed host, its episode and people pages, and the legacy
// archive.
func harvestSite(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coderradio/json":
			fmt.Fprintf(w, `{
				"title": "Coder Radio",
				"items": [{
					"id": "guid-42",
					"title": "42: The Answer | Coder Radio 42",
					"url": %q,
					"summary": "The answer to everything.",
					"date_published": "2024-03-04T12:00:00Z",
					"content_html": "<p>Show notes.</p><p>Sponsored By:</p><ul><li><a href=\"https://www.linode.com/coder\">Linode</a></li></ul><p>Links:</p><ul><li><a href=\"https://go.dev\">Go</a></li></ul>",
					"attachments": [{
						"url": "https://chtbl.com/track/ABC123/aphid.fireside.fm/d/1437767933/ep42.mp3",
						"mime_type": "audio/mpeg",
						"size_in_bytes": 54104940,
						"duration_in_seconds": 3725
					}]
				}]
			}`, srv.URL+"/coderradio/42")

		case "/coderradio/42":
			fmt.Fprint(w, `<html><body>
				<ul class="episode-hosts"><li><a href="/hosts/chrislas">Chris</a></li></ul>
				<div class="tags"><a class="tag">golang</a><a class="tag">apis</a></div>
				<div class="episode-sponsors">
					<a href="https://www.linode.com/coder"><header>Linode</header><p>Cloud hosting.</p></a>
				</div>
			</body></html>`)

		case "/chapters/coder/json/episodes/guid-42/chapters":
			http.NotFound(w, r)

		case "/coderradio/hosts":
			fmt.Fprint(w, `<html><body>
				<div class="host">
					<div class="host-info">
						<h3><a href="/hosts/chrislas">Chris Fisher</a></h3>
						<p>Longtime podcaster.</p>
					</div>
				</div>
			</body></html>`)

		case "/coderradio/guests":
			fmt.Fprint(w, `<html><body><ul class="show-guests"></ul></body></html>`)

		case "/jb/coder/page/1/":
			fmt.Fprintf(w, `<html><body>
				<span class="pages">Page 1 of 1</span>
				<div class="videoitem"><a href="%s/jb/coder/42" title="Coder Radio 42">Ep 42</a></div>
			</body></html>`, srv.URL)

		case "/jb/coder/42":
			fmt.Fprint(w, `<html><body>
				<div id="direct-downloads">
					<a href="http://www.podtrac.com/pts/redirect.mp3/archive.org/cr-42.mp3">MP3 Audio</a>
					<a href="http://archive.org/cr-42.ogg">OGG Audio</a>
				</div>
			</body></html>`)

		default:
			http.NotFound(w, r)
		}
	}))
	return srv
}

func newTestRunner(t *testing.T, srv *httptest.Server, dataDir string, latestOnly bool) *Runner {
	t.Helper()

	logger := utils.NewLoggerWithLevel(utils.ErrorLevel)
	client := scraper.NewClient(scraper.ClientConfig{
		Timeout:       5 * time.Second,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		RateLimit:     1000,
	})

	cfg := &config.Config{
		Shows: map[string]config.ShowConfig{
			"coderradio": {
				FiresideURL:  srv.URL + "/coderradio",
				FiresideSlug: "coder",
				JBURL:        srv.URL + "/jb/coder",
				Acronym:      "CR",
				Name:         "Coder Radio",
			},
		},
		UsernamesMap: map[string]string{"chrislas": "chris"},
		Scraper:      config.ScraperSettings{MaxConcurrency: 4, LatestOnlyLimit: 5},
		Output:       config.OutputSettings{DataDir: dataDir, DumpLegacyIndex: true},
	}

	resolver := identity.NewResolver(cfg.UsernamesMap)
	sponsorStore := identity.NewSponsorStore()
	fetcher := fireside.NewFetcher(client, logger)
	fetcher.SetChaptersBaseURL(srv.URL + "/chapters")

	return NewRunner(RunnerConfig{
		Config: cfg,
		Crawler: legacysite.NewCrawler(legacysite.CrawlerConfig{
			Client:     client,
			Logger:     logger,
			LatestOnly: latestOnly,
		}),
		Fetcher:      fetcher,
		RSSParser:    fireside.NewRSSParser(client, logger),
		People:       fireside.NewPeopleScraper(client, logger, resolver, ""),
		Builder:      episode.NewBuilder(client, fetcher, resolver, sponsorStore, logger),
		PeopleStore:  identity.NewPeopleStore(latestOnly),
		SponsorStore: sponsorStore,
		Output:       output.NewManager(dataDir, nil, latestOnly, logger),
		Logger:       logger,
		LatestOnly:   latestOnly,
	})
}

func TestRun(t *testing.T) {
	srv := harvestSite(t)
	defer srv.Close()

	dataDir := t.TempDir()
	runner := newTestRunner(t, srv, dataDir, false)

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.EpisodesBuilt != 1 {
		t.Errorf("EpisodesBuilt = %d, want 1 (errors: %v)", summary.EpisodesBuilt, summary.Errors)
	}
	if summary.EpisodesFailed != 0 {
		t.Errorf("EpisodesFailed = %d, want 0 (errors: %v)", summary.EpisodesFailed, summary.Errors)
	}
	if summary.PeopleResolved != 1 {
		t.Errorf("PeopleResolved = %d, want 1", summary.PeopleResolved)
	}
	if summary.SponsorsFound != 1 {
		t.Errorf("SponsorsFound = %d, want 1", summary.SponsorsFound)
	}

	epPath := filepath.Join(dataDir, "content", "show", "coderradio", "0042.md")
	content, err := os.ReadFile(epPath)
	if err != nil {
		t.Fatalf("episode file missing: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"title": "The Answer"`) {
		t.Errorf("title missing from episode file: %s", text)
	}
	if !strings.Contains(text, `"podcast_duration": "01:02:05"`) {
		t.Errorf("duration missing from episode file: %s", text)
	}
	// Archive download links merged in and normalized.
	if !strings.Contains(text, `"podcast_alt_file": "http://archive.org/cr-42.mp3"`) {
		t.Errorf("podtrac-wrapped alt file not merged and normalized: %s", text)
	}
	if !strings.Contains(text, `"podcast_ogg_file": "http://archive.org/cr-42.ogg"`) {
		t.Errorf("ogg file not merged: %s", text)
	}
	if !strings.Contains(text, "### Episode Links") {
		t.Errorf("links section missing: %s", text)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "content", "people", "chris.md")); err != nil {
		t.Errorf("person file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "content", "sponsors", "linode.com-cr.md")); err != nil {
		t.Errorf("sponsor file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "jb_all_shows_links.json")); err != nil {
		t.Errorf("legacy index dump missing: %v", err)
	}
}

func TestRunSkipsExistingEpisodes(t *testing.T) {
	srv := harvestSite(t)
	defer srv.Close()

	dataDir := t.TempDir()

	first := newTestRunner(t, srv, dataDir, false)
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second := newTestRunner(t, srv, dataDir, false)
	summary, err := second.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if summary.EpisodesBuilt != 0 {
		t.Errorf("EpisodesBuilt = %d, want 0 on re-run", summary.EpisodesBuilt)
	}
	if summary.EpisodesSkipped != 1 {
		t.Errorf("EpisodesSkipped = %d, want 1 on re-run", summary.EpisodesSkipped)
	}
}

func TestRunLatestOnlyRebuildsExisting(t *testing.T) {
	srv := harvestSite(t)
	defer srv.Close()

	dataDir := t.TempDir()

	epPath := filepath.Join(dataDir, "content", "show", "coderradio", "0042.md")
	if err := os.MkdirAll(filepath.Dir(epPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(epPath, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := newTestRunner(t, srv, dataDir, true)
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.EpisodesBuilt != 1 {
		t.Errorf("EpisodesBuilt = %d, want 1 (errors: %v)", summary.EpisodesBuilt, summary.Errors)
	}

	content, _ := os.ReadFile(epPath)
	if string(content) == "stale" {
		t.Error("latest-only run must rebuild existing episode files")
	}
}

func TestRunPublishesLegacyIndex(t *testing.T) {
	srv := harvestSite(t)
	defer srv.Close()

	runner := newTestRunner(t, srv, t.TempDir(), false)
	status := monitoring.NewServer(":0", monitoring.NewMetrics(), utils.NewLoggerWithLevel(utils.ErrorLevel))
	runner.status = status

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	web := httptest.NewServer(status.Router())
	defer web.Close()

	resp, err := http.Get(web.URL + "/debug/legacy-index")
	if err != nil {
		t.Fatalf("legacy-index request failed: %v", err)
	}
	defer resp.Body.Close()

	var counts map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if counts["coderradio"] != 1 {
		t.Errorf("debug endpoint should reflect the crawl, got %v", counts)
	}
}

func TestRunIsolatesShowFailures(t *testing.T) {
	srv := harvestSite(t)
	defer srv.Close()

	dataDir := t.TempDir()
	runner := newTestRunner(t, srv, dataDir, false)

	// A second show whose feed host is dead must not sink the run.
	runner.cfg.Shows["selfhosted"] = config.ShowConfig{
		FiresideURL:  "http://127.0.0.1:1",
		FiresideSlug: "selfhosted",
		Acronym:      "SH",
		Name:         "Self-Hosted",
	}

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.EpisodesBuilt != 1 {
		t.Errorf("EpisodesBuilt = %d, want 1", summary.EpisodesBuilt)
	}
	if len(summary.Errors) == 0 {
		t.Error("expected errors recorded for the unreachable show")
	}
}
