// internal/urlnorm/urlnorm.go

// Package urlnorm strips known tracking redirectors from media URLs so
// that the same file fetched from different sources compares equal.
package urlnorm

import "strings"

const (
	podtracPrefix   = "www.podtrac.com/pts/redirect"
	chartablePrefix = "chtbl.com/track/"
)

// Normalize removes podtrac and chartable tracking wrappers from a URL.
// The original scheme is preserved. Unknown prefixes pass through
// untouched, and an empty string is returned as-is. Normalize is
// idempotent: applying it to an already-normalized URL is a no-op.
func Normalize(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}

	// Some video hosts only serve over plain http, so the scheme must
	// be reattached exactly as found.
	scheme := "http://"
	if strings.HasPrefix(rawURL, "https://") {
		scheme = "https://"
	}

	v := strings.TrimPrefix(rawURL, "http://")
	v = strings.TrimPrefix(v, "https://")

	if strings.HasPrefix(v, podtracPrefix) {
		v = strings.TrimPrefix(v, podtracPrefix)
		// Drop the file extension segment, e.g. ".mp3/" or ".ogg/"
		if i := strings.Index(v, "/"); i >= 0 {
			v = v[i+1:]
		}
	}

	if strings.HasPrefix(v, chartablePrefix) {
		v = strings.TrimPrefix(v, chartablePrefix)
		// Drop the tracking ID segment, e.g. "392D9/"
		if i := strings.Index(v, "/"); i >= 0 {
			v = v[i+1:]
		}
	}

	return scheme + v
}
