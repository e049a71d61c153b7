// internal/legacysite/types.go

// Package legacysite crawls the archived WordPress site for episode
// page links and direct download URLs. The resulting index is built in
// full before the primary feed parse and treated as read-only after.
package legacysite

// DownloadSet holds the direct download links found on a legacy
// episode page. Labels the page uses that have no named field here are
// kept in Extra.
type DownloadSet struct {
	MP3Audio    string            `json:"mp3_audio,omitempty"`
	OGGAudio    string            `json:"ogg_audio,omitempty"`
	Video       string            `json:"video,omitempty"`
	HDVideo     string            `json:"hd_video,omitempty"`
	MobileVideo string            `json:"mobile_video,omitempty"`
	YouTube     string            `json:"youtube,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// EpisodeRecord is one legacy episode: the archive page URL plus the
// downloads scraped from it.
type EpisodeRecord struct {
	PageURL   string      `json:"jb_url"`
	Downloads DownloadSet `json:"downloads"`
}

// Index maps show slug to episode number to record. Episode numbers
// are float64 because one archived episode sits between two others and
// is numbered 152.5.
type Index map[string]map[float64]*EpisodeRecord

// Lookup returns the record for a show and episode number, or nil.
func (idx Index) Lookup(showSlug string, number float64) *EpisodeRecord {
	show, ok := idx[showSlug]
	if !ok {
		return nil
	}
	return show[number]
}

// setLabel assigns url to the field matching a normalized download
// label. Unknown labels land in Extra and the caller decides how to
// report them.
func (d *DownloadSet) setLabel(label, url string) bool {
	switch label {
	case "mp3_audio":
		d.MP3Audio = url
	case "ogg_audio":
		d.OGGAudio = url
	case "video":
		d.Video = url
	case "hd_video":
		d.HDVideo = url
	case "mobile_video":
		d.MobileVideo = url
	case "youtube":
		d.YouTube = url
	default:
		if d.Extra == nil {
			d.Extra = make(map[string]string)
		}
		d.Extra[label] = url
		return false
	}
	return true
}
