// internal/identity/resolver.go
package identity

import (
	"net/url"
	"strings"
)

// Resolver maps the usernames found in page URLs to their canonical
// form. Some people have different usernames across shows; the alias
// table from the configuration collapses them to one identity.
type Resolver struct {
	aliases map[string]string
}

// NewResolver creates a Resolver from a username alias table. A nil
// map is valid and resolves every username to itself.
func NewResolver(aliases map[string]string) *Resolver {
	return &Resolver{aliases: aliases}
}

// ResolveUsername extracts the last path segment of a person page URL
// and replaces it with its canonical form when an alias exists.
func (r *Resolver) ResolveUsername(pageURL string) string {
	username := lastPathSegment(pageURL)
	if canonical, ok := r.aliases[username]; ok {
		return canonical
	}
	return username
}

func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		parts := strings.Split(rawURL, "/")
		return parts[len(parts)-1]
	}
	parts := strings.Split(u.Path, "/")
	return parts[len(parts)-1]
}

// SponsorShortname derives the stable sponsor ID from the sponsor's
// link and a show acronym, e.g. "linode.com-lup". The hostname is cut
// down to its last two labels to drop subdomains. This breaks on
// two-level public suffixes like "co.uk", which never appeared in
// practice.
func SponsorShortname(link, showAcronym string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	labels := strings.Split(u.Hostname(), ".")
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	slug := strings.Join(labels, ".")
	return strings.ToLower(slug + "-" + showAcronym), nil
}
