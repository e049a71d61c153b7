// internal/fireside/feed.go
package fireside

import (
	"context"
	"fmt"

	"github.com/jupiterbroadcasting/showharvest/internal/scraper"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

const defaultChaptersBaseURL = "https://feeds.fireside.fm"

// Fetcher retrieves feed payloads from a show's feed host.
type Fetcher struct {
	client          *scraper.Client
	logger          utils.Logger
	chaptersBaseURL string
}

// NewFetcher creates a Fetcher using the shared HTTP client.
func NewFetcher(client *scraper.Client, logger utils.Logger) *Fetcher {
	return &Fetcher{
		client:          client,
		logger:          logger,
		chaptersBaseURL: defaultChaptersBaseURL,
	}
}

// FetchShowJSON retrieves the JSON Feed of a show from its /json
// endpoint.
func (f *Fetcher) FetchShowJSON(ctx context.Context, showURL string) (*ShowFeed, error) {
	var feed ShowFeed
	if err := f.client.GetJSON(ctx, showURL+"/json", &feed); err != nil {
		return nil, fmt.Errorf("failed to retrieve show feed from %s: %w", showURL, err)
	}
	return &feed, nil
}

// SetChaptersBaseURL overrides the host the chapters endpoint is
// fetched from.
func (f *Fetcher) SetChaptersBaseURL(baseURL string) {
	f.chaptersBaseURL = baseURL
}

// ChaptersResult distinguishes an episode that has no chapters from a
// fetch that failed. The chapters endpoint answers 404 for episodes
// without chapter marks, which is a normal outcome rather than an
// error.
type ChaptersResult struct {
	Found    bool
	Chapters *Chapters
}

// FetchChapters retrieves the chapter marks of an episode. A 404 from
// the endpoint yields Found=false with a nil error.
func (f *Fetcher) FetchChapters(ctx context.Context, firesideSlug, episodeGUID string) (ChaptersResult, error) {
	url := fmt.Sprintf("%s/%s/json/episodes/%s/chapters", f.chaptersBaseURL, firesideSlug, episodeGUID)

	var chapters Chapters
	if err := f.client.GetJSON(ctx, url, &chapters); err != nil {
		if scraper.IsNotFound(err) {
			return ChaptersResult{Found: false}, nil
		}
		return ChaptersResult{}, fmt.Errorf("failed to retrieve chapters from %s: %w", url, err)
	}

	return ChaptersResult{Found: true, Chapters: &chapters}, nil
}

// FetchChaptersURL retrieves chapter marks from an explicit URL, as
// advertised by a podcast:chapters feed tag. 404 means the link went
// stale and yields Found=false with a nil error.
func (f *Fetcher) FetchChaptersURL(ctx context.Context, chaptersURL string) (ChaptersResult, error) {
	var chapters Chapters
	if err := f.client.GetJSON(ctx, chaptersURL, &chapters); err != nil {
		if scraper.IsNotFound(err) {
			return ChaptersResult{Found: false}, nil
		}
		return ChaptersResult{}, fmt.Errorf("failed to retrieve chapters from %s: %w", chaptersURL, err)
	}

	return ChaptersResult{Found: true, Chapters: &chapters}, nil
}
