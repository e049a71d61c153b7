// internal/episode/episode.go

// Package episode builds the canonical episode record of a show from
// the primary feed item, the rendered episode page and the legacy
// archive index.
package episode

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jupiterbroadcasting/showharvest/internal/fireside"
	"github.com/jupiterbroadcasting/showharvest/internal/urlnorm"
)

var validYouTubeHostnames = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"youtu.be":        true,
	"www.youtu.be":    true,
}

// Episode is the canonical record written to a show's content file.
// The field order matters: the front matter is emitted in this order.
type Episode struct {
	Type  string `json:"type"`
	Draft bool   `json:"draft"`

	ShowSlug string `json:"show_slug"`
	ShowName string `json:"show_name"`

	// Episode number, taken from the last path segment of the feed
	// item URL since the feed itself does not carry one.
	Episode       int    `json:"episode"`
	EpisodePadded string `json:"episode_padded"`
	EpisodeGUID   string `json:"episode_guid"`

	// Hugo uses the filename for the slug unless overridden. The
	// filenames are zero padded but the episode links are not, so
	// the slug carries the unpadded number.
	Slug string `json:"slug"`

	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`

	HeaderImage string   `json:"header_image"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	Hosts       []string `json:"hosts"`
	Guests      []string `json:"guests"`

	// Sponsor shortnames, e.g. ["linode.com-lup", "bitwarden.com-cr"].
	Sponsors []string `json:"sponsors"`

	// Duration in HH:MM:SS.
	PodcastDuration string `json:"podcast_duration"`

	PodcastFile     string             `json:"podcast_file"`
	PodcastBytes    int64              `json:"podcast_bytes"`
	PodcastChapters *fireside.Chapters `json:"podcast_chapters"`

	// Media links from the legacy archive. The alternate audio file
	// is cleared when it points at the same file as PodcastFile.
	PodcastAltFile  string `json:"podcast_alt_file"`
	PodcastOggFile  string `json:"podcast_ogg_file"`
	VideoFile       string `json:"video_file"`
	VideoHDFile     string `json:"video_hd_file"`
	VideoMobileFile string `json:"video_mobile_file"`
	YouTubeLink     string `json:"youtube_link"`

	// Path part of the episode page URL on the legacy archive, e.g.
	// "/149032/git-happens-linux-unplugged-464/".
	JBURL string `json:"jb_url"`

	// Path part of the episode page URL on the feed host, e.g. "/42".
	FiresideURL string `json:"fireside_url"`

	// Markdown list of show-note links; rendered as its own section
	// after the front matter, never inside it.
	EpisodeLinks string `json:"-"`
}

// GenerateDerived fills the fields computed from other fields: slug,
// header image, categories and the padded episode number. It also
// normalizes the media URLs and drops an alternate audio file that
// duplicates the primary.
func (e *Episode) GenerateDerived() {
	e.Type = "episode"
	e.Slug = fmt.Sprintf("%d", e.Episode)
	e.EpisodePadded = PadNumber(e.Episode)
	e.HeaderImage = fmt.Sprintf("/images/shows/%s.png", e.ShowSlug)

	// The show name must lead the category list no matter how the
	// input was ordered.
	if len(e.Categories) == 0 || e.Categories[0] != e.ShowName {
		e.Categories = append([]string{e.ShowName}, e.Categories...)
	}

	e.PodcastFile = urlnorm.Normalize(e.PodcastFile)
	e.PodcastAltFile = urlnorm.Normalize(e.PodcastAltFile)
	e.PodcastOggFile = urlnorm.Normalize(e.PodcastOggFile)
	e.VideoFile = urlnorm.Normalize(e.VideoFile)
	e.VideoHDFile = urlnorm.Normalize(e.VideoHDFile)
	e.VideoMobileFile = urlnorm.Normalize(e.VideoMobileFile)

	if e.PodcastAltFile != "" && stripScheme(e.PodcastAltFile) == stripScheme(e.PodcastFile) {
		e.PodcastAltFile = ""
	}
}

// Validate checks the invariants every emitted episode must hold.
func (e *Episode) Validate() error {
	if e.Episode < 0 {
		return fmt.Errorf("episode number %d is negative", e.Episode)
	}
	if e.ShowSlug == "" {
		return fmt.Errorf("episode %d has no show slug", e.Episode)
	}
	if e.ShowName == "" {
		return fmt.Errorf("episode %d has no show name", e.Episode)
	}
	if e.EpisodeGUID == "" {
		return fmt.Errorf("episode %s/%d has no GUID", e.ShowSlug, e.Episode)
	}
	if e.Title == "" {
		return fmt.Errorf("episode %s/%d has no title", e.ShowSlug, e.Episode)
	}
	if e.PodcastFile == "" {
		return fmt.Errorf("episode %s/%d has no media file", e.ShowSlug, e.Episode)
	}
	if e.FiresideURL == "" {
		return fmt.Errorf("episode %s/%d has no source page path", e.ShowSlug, e.Episode)
	}

	if e.YouTubeLink != "" {
		u, err := url.Parse(e.YouTubeLink)
		if err != nil {
			return fmt.Errorf("episode %s/%d has an unparseable youtube link: %w", e.ShowSlug, e.Episode, err)
		}
		if !validYouTubeHostnames[u.Hostname()] {
			return fmt.Errorf("episode %s/%d youtube link host %q is not a youtube hostname",
				e.ShowSlug, e.Episode, u.Hostname())
		}
	}

	return nil
}

// FrontMatter renders the content-file body: the episode as a JSON
// front matter object, plus the show-note links as a markdown section
// when present.
func (e *Episode) FrontMatter() (string, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize episode %s/%d: %w", e.ShowSlug, e.Episode, err)
	}

	var b strings.Builder
	b.Write(data)
	b.WriteString("\n")

	if e.EpisodeLinks != "" {
		b.WriteString("\n\n### Episode Links\n\n")
		b.WriteString(e.EpisodeLinks)
	}
	b.WriteString("\n")

	return b.String(), nil
}

// PadNumber renders an episode number zero padded to at least four
// digits, matching the content filenames.
func PadNumber(number int) string {
	return fmt.Sprintf("%04d", number)
}

func stripScheme(u string) string {
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimPrefix(u, "https://")
}

