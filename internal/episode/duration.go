// internal/episode/duration.go
package episode

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDuration renders a second count as HH:MM:SS. Hours are not
// capped at 24 and grow as wide as needed.
func FormatDuration(seconds int) string {
	minutes, secs := seconds/60, seconds%60
	hours, mins := minutes/60, minutes%60
	return fmt.Sprintf("%02d:%02d:%02d", hours, mins, secs)
}

// ParseDuration converts an HH:MM:SS string back to seconds. It is the
// exact inverse of FormatDuration.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("duration %q is not in HH:MM:SS form", s)
	}

	var total int
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("duration %q has an invalid component %q", s, part)
		}
		total = total*60 + n
	}
	return total, nil
}
