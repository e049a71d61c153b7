// internal/episode/episode_test.go
package episode

import (
	"strings"
	"testing"
	"time"
)

func TestPlainTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"78: We Should Know Better", "We Should Know Better"},
		{"Bye Bye Ballmer | CR 64", "Bye Bye Ballmer"},
		{"Linux Action News 257", "Linux Action News 257"},
		{"Episode 1: Too Much Choice | LU1", "Too Much Choice"},
		{"1: 1: The Enthusiast Trap ", "1: The Enthusiast Trap"},
		{"343: Say My Functional Name", "Say My Functional Name"},
	}

	for _, tt := range tests {
		if got := PlainTitle(tt.input); got != tt.expected {
			t.Errorf("PlainTitle(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3725, "01:02:05"},
		{86400, "24:00:00"},
		{90000, "25:00:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.expected {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for _, seconds := range []int{0, 1, 59, 60, 3599, 3600, 3725, 86399, 86400, 123456} {
		formatted := FormatDuration(seconds)
		parsed, err := ParseDuration(formatted)
		if err != nil {
			t.Fatalf("ParseDuration(%q) failed: %v", formatted, err)
		}
		if parsed != seconds {
			t.Errorf("round trip of %d via %q gave %d", seconds, formatted, parsed)
		}
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "1:02", "01:02:05:00", "aa:bb:cc", "01:-2:05"} {
		if _, err := ParseDuration(input); err == nil {
			t.Errorf("ParseDuration(%q) should fail", input)
		}
	}
}

func TestPadNumber(t *testing.T) {
	tests := []struct {
		number   int
		expected string
	}{
		{1, "0001"},
		{42, "0042"},
		{343, "0343"},
		{4242, "4242"},
		{12345, "12345"},
	}

	for _, tt := range tests {
		if got := PadNumber(tt.number); got != tt.expected {
			t.Errorf("PadNumber(%d) = %q, want %q", tt.number, got, tt.expected)
		}
	}
}

func validEpisode() *Episode {
	return &Episode{
		ShowSlug:        "coderradio",
		ShowName:        "Coder Radio",
		Episode:         42,
		EpisodeGUID:     "f31a453c-fa15-491f-8618-3f71f1d565e5",
		Title:           "The Answer",
		Description:     "A show about code.",
		Date:            time.Date(2019, 1, 2, 12, 0, 0, 0, time.UTC),
		PodcastDuration: "01:02:05",
		PodcastFile:     "https://aphid.fireside.fm/d/1437767933/ep.mp3",
		PodcastBytes:    54104940,
		FiresideURL:     "/42",
	}
}

func TestGenerateDerived(t *testing.T) {
	ep := validEpisode()
	ep.GenerateDerived()

	if ep.Type != "episode" {
		t.Errorf("wrong type: %s", ep.Type)
	}
	if ep.Slug != "42" {
		t.Errorf("slug must be the unpadded number, got %q", ep.Slug)
	}
	if ep.EpisodePadded != "0042" {
		t.Errorf("wrong padded number: %s", ep.EpisodePadded)
	}
	if ep.HeaderImage != "/images/shows/coderradio.png" {
		t.Errorf("wrong header image: %s", ep.HeaderImage)
	}
	if len(ep.Categories) == 0 || ep.Categories[0] != "Coder Radio" {
		t.Errorf("show name must be the first category, got %v", ep.Categories)
	}
}

func TestGenerateDerivedKeepsExistingCategories(t *testing.T) {
	ep := validEpisode()
	ep.Categories = []string{"Technology"}
	ep.GenerateDerived()

	if len(ep.Categories) != 2 || ep.Categories[0] != "Coder Radio" || ep.Categories[1] != "Technology" {
		t.Errorf("wrong categories: %v", ep.Categories)
	}

	// Running again must not duplicate the show name.
	ep.GenerateDerived()
	if len(ep.Categories) != 2 {
		t.Errorf("categories grew on second run: %v", ep.Categories)
	}
}

func TestGenerateDerivedReordersShowNameFirst(t *testing.T) {
	// The show name buried later in the list still must end up first.
	ep := validEpisode()
	ep.Categories = []string{"Other", "Coder Radio"}
	ep.GenerateDerived()

	if len(ep.Categories) == 0 || ep.Categories[0] != "Coder Radio" {
		t.Errorf("show name must lead the categories, got %v", ep.Categories)
	}

	ep.GenerateDerived()
	if ep.Categories[0] != "Coder Radio" {
		t.Errorf("ordering not stable across runs: %v", ep.Categories)
	}
}

func TestGenerateDerivedNormalizesAndClearsDuplicateAlt(t *testing.T) {
	ep := validEpisode()
	ep.PodcastFile = "https://chtbl.com/track/392D9/aphid.fireside.fm/d/1437767933/ep.mp3"
	ep.PodcastAltFile = "http://www.podtrac.com/pts/redirect.mp3/aphid.fireside.fm/d/1437767933/ep.mp3"
	ep.GenerateDerived()

	if ep.PodcastFile != "https://aphid.fireside.fm/d/1437767933/ep.mp3" {
		t.Errorf("primary file not normalized: %s", ep.PodcastFile)
	}
	// Same file behind different trackers and schemes: the alternate
	// must be dropped.
	if ep.PodcastAltFile != "" {
		t.Errorf("duplicate alt file should be cleared, got %s", ep.PodcastAltFile)
	}
}

func TestGenerateDerivedKeepsDistinctAlt(t *testing.T) {
	ep := validEpisode()
	ep.PodcastAltFile = "http://traffic.libsyn.com/jnite/lup-0116.mp3"
	ep.GenerateDerived()

	if ep.PodcastAltFile != "http://traffic.libsyn.com/jnite/lup-0116.mp3" {
		t.Errorf("distinct alt file must be kept, got %s", ep.PodcastAltFile)
	}
}

func TestValidate(t *testing.T) {
	ep := validEpisode()
	ep.GenerateDerived()
	if err := ep.Validate(); err != nil {
		t.Fatalf("valid episode rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Episode)
	}{
		{"negative number", func(e *Episode) { e.Episode = -1 }},
		{"missing guid", func(e *Episode) { e.EpisodeGUID = "" }},
		{"missing title", func(e *Episode) { e.Title = "" }},
		{"missing media file", func(e *Episode) { e.PodcastFile = "" }},
		{"missing fireside url", func(e *Episode) { e.FiresideURL = "" }},
		{"bad youtube host", func(e *Episode) { e.YouTubeLink = "https://vimeo.com/12345" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := validEpisode()
			ep.GenerateDerived()
			tt.mutate(ep)
			if err := ep.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsYouTubeHosts(t *testing.T) {
	for _, link := range []string{
		"https://www.youtube.com/watch?v=abc",
		"https://youtu.be/abc",
	} {
		ep := validEpisode()
		ep.YouTubeLink = link
		ep.GenerateDerived()
		if err := ep.Validate(); err != nil {
			t.Errorf("youtube link %s rejected: %v", link, err)
		}
	}
}

func TestFrontMatter(t *testing.T) {
	ep := validEpisode()
	ep.EpisodeLinks = "- [OpenZFS](https://openzfs.org)"
	ep.GenerateDerived()

	content, err := ep.FrontMatter()
	if err != nil {
		t.Fatalf("FrontMatter failed: %v", err)
	}

	if !strings.HasPrefix(content, "{") {
		t.Error("front matter must start with a JSON object")
	}
	if !strings.Contains(content, `"episode": 42`) {
		t.Error("missing episode number in front matter")
	}
	if strings.Contains(content, `"episode_links"`) {
		t.Error("episode links must not appear inside the JSON object")
	}
	if !strings.Contains(content, "### Episode Links\n\n- [OpenZFS](https://openzfs.org)") {
		t.Error("missing episode links section")
	}
	if !strings.HasSuffix(content, "\n") {
		t.Error("content must end with a newline")
	}
}

func TestFrontMatterWithoutLinks(t *testing.T) {
	ep := validEpisode()
	ep.GenerateDerived()

	content, err := ep.FrontMatter()
	if err != nil {
		t.Fatalf("FrontMatter failed: %v", err)
	}
	if strings.Contains(content, "### Episode Links") {
		t.Error("links section must be absent when there are no links")
	}
}
