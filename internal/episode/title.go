// internal/episode/title.go
package episode

import "regexp"

// titleRegexp strips the leading episode numbering ("42: " or
// "Episode 42: ") and the trailing pipe suffix (" | Coder Radio")
// from a feed item title.
var titleRegexp = regexp.MustCompile(`^(?:(?:Episode)?\s?[0-9]+:+\s+)?(.+?)(?:(\s+\|+.*)|\s+)?$`)

// PlainTitle returns the episode title without numbering or the show
// name suffix.
func PlainTitle(title string) string {
	m := titleRegexp.FindStringSubmatch(title)
	if m == nil {
		return title
	}
	return m[1]
}
