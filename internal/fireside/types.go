// internal/fireside/types.go

// Package fireside fetches episode and people data from a show's feed
// host: the JSON Feed endpoint, the rendered episode pages, the
// chapters endpoint and the hosts/guests pages.
package fireside

import "time"

// ShowFeed is a show's JSON Feed payload.
type ShowFeed struct {
	Version     string `json:"version"`
	Title       string `json:"title"`
	HomePageURL string `json:"home_page_url"`
	FeedURL     string `json:"feed_url"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// Item is one episode entry of the JSON Feed.
type Item struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	URL           string       `json:"url"`
	ContentText   string       `json:"content_text"`
	ContentHTML   string       `json:"content_html"`
	Summary       string       `json:"summary"`
	DatePublished time.Time    `json:"date_published"`
	Attachments   []Attachment `json:"attachments"`
}

// Attachment is the media file reference of a feed item.
type Attachment struct {
	URL               string `json:"url"`
	MIMEType          string `json:"mime_type"`
	SizeInBytes       int64  `json:"size_in_bytes"`
	DurationInSeconds int    `json:"duration_in_seconds"`
}

// Chapters is the chapters payload in the podcastingindex.org format:
// https://github.com/Podcastindex-org/podcast-namespace/blob/main/chapters/jsonChapters.md
type Chapters struct {
	Version  string    `json:"version"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is one chapter mark.
type Chapter struct {
	StartTime float64 `json:"startTime"`
	Title     string  `json:"title"`
	EndTime   float64 `json:"endTime,omitempty"`
	Img       string  `json:"img,omitempty"`
	URL       string  `json:"url,omitempty"`
}

// EpisodeLink is one entry of an episode's "Links:" list as parsed
// from an RSS feed's show notes.
type EpisodeLink struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}
