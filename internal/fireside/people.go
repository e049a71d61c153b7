// internal/fireside/people.go
package fireside

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jupiterbroadcasting/showharvest/internal/identity"
	"github.com/jupiterbroadcasting/showharvest/internal/scraper"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// PeopleScraper collects hosts and guests from a show's people pages
// and saves their avatar images.
type PeopleScraper struct {
	client   *scraper.Client
	logger   utils.Logger
	resolver *identity.Resolver
	// staticDir is the output "static" directory avatars are saved
	// under; empty disables avatar downloads.
	staticDir string
}

// NewPeopleScraper creates a PeopleScraper. staticDir may be empty to
// skip avatar downloads.
func NewPeopleScraper(client *scraper.Client, logger utils.Logger, resolver *identity.Resolver, staticDir string) *PeopleScraper {
	return &PeopleScraper{
		client:    client,
		logger:    logger,
		resolver:  resolver,
		staticDir: staticDir,
	}
}

// FetchHosts parses the /hosts page of a show into people records.
func (p *PeopleScraper) FetchHosts(ctx context.Context, showURL string) ([]identity.Person, error) {
	doc, err := p.client.GetDocument(ctx, showURL+"/hosts")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hosts page: %w", err)
	}

	var hosts []identity.Person
	doc.Find("div.host").Each(func(_ int, host *goquery.Selection) {
		info := host.Find("div.host-info")

		link := info.Find("h3 a").First()
		name := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		username := p.resolver.ResolveUsername(showURL + href)

		person := identity.Person{
			Type:     identity.PersonHost,
			Username: username,
			Name:     name,
			Bio:      strings.TrimSpace(info.Find("p").First().Text()),
		}
		classifySocialLinks(info.Find("ul.host-links a"), &person)

		avatarSmallURL, _ := host.Find("div.host-avatar img").First().Attr("src")
		p.attachAvatars(ctx, avatarSmallURL, username, &person)

		hosts = append(hosts, person)
	})

	return hosts, nil
}

// FetchGuests parses the /guests page of a show, following each
// guest's page for their bio and social links.
func (p *PeopleScraper) FetchGuests(ctx context.Context, showURL string) ([]identity.Person, error) {
	doc, err := p.client.GetDocument(ctx, showURL+"/guests")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guests page: %w", err)
	}

	var guests []identity.Person
	doc.Find("ul.show-guests a").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		pageURL := showURL + href
		username := p.resolver.ResolveUsername(pageURL)

		person := identity.Person{
			Type:     identity.PersonGuest,
			Username: username,
			Name:     strings.TrimSpace(link.Find("h5").Text()),
		}
		if person.Name == "" {
			person.Name = username
		}

		avatarSmallURL, _ := link.Find("img").First().Attr("src")
		if i := strings.Index(avatarSmallURL, "?"); i >= 0 {
			avatarSmallURL = avatarSmallURL[:i]
		}
		p.attachAvatars(ctx, avatarSmallURL, username, &person)

		if err := p.fillFromGuestPage(ctx, pageURL, &person); err != nil {
			p.logger.Warnf("Failed to fetch guest page: url=%s error=%v", pageURL, err)
		}

		guests = append(guests, person)
	})

	return guests, nil
}

// fillFromGuestPage parses a guest's own page for bio and social
// links.
func (p *PeopleScraper) fillFromGuestPage(ctx context.Context, pageURL string, person *identity.Person) error {
	doc, err := p.client.GetDocument(ctx, pageURL)
	if err != nil {
		return err
	}

	if bio := strings.TrimSpace(doc.Find("section").First().Text()); bio != "" {
		person.Bio = bio
	}
	classifySocialLinks(doc.Find("nav.links a"), person)
	return nil
}

// attachAvatars saves the small and full avatar images for a person
// and records their static paths. The full-size URL is derived from
// the small one.
func (p *PeopleScraper) attachAvatars(ctx context.Context, avatarSmallURL, username string, person *identity.Person) {
	if avatarSmallURL == "" || p.staticDir == "" {
		return
	}
	avatarURL := strings.Replace(avatarSmallURL, "_small.jpg", ".jpg", 1)

	if rel, err := p.saveAvatar(ctx, avatarSmallURL, username, true); err == nil {
		person.AvatarSmall = "/" + rel
	} else {
		p.logger.Warnf("Failed to save small avatar: username=%s error=%v", username, err)
	}
	if rel, err := p.saveAvatar(ctx, avatarURL, username, false); err == nil {
		person.Avatar = "/" + rel
	} else {
		p.logger.Warnf("Failed to save avatar: username=%s error=%v", username, err)
	}
}

// saveAvatar downloads an avatar image unless it already exists on
// disk, returning the path relative to the static directory. The
// existence check runs before the request to save bandwidth on
// re-runs.
func (p *PeopleScraper) saveAvatar(ctx context.Context, imgURL, username string, small bool) (string, error) {
	suffix := ".jpg"
	if small {
		suffix = "_small.jpg"
	}
	relPath := filepath.Join("images", "people", username+suffix)
	fullPath := filepath.Join(p.staticDir, relPath)

	if _, err := os.Stat(fullPath); err == nil {
		return relPath, nil
	}

	body, err := p.client.Get(ctx, imgURL)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, body, 0o644); err != nil {
		return "", err
	}
	return relPath, nil
}

// classifySocialLinks assigns anchor hrefs to a person's social fields
// by matching known service names in the anchor text.
func classifySocialLinks(links *goquery.Selection, person *identity.Person) {
	links.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.ToLower(href)
		label := strings.ToLower(a.Text())

		switch {
		case strings.Contains(label, "website"):
			person.Homepage = href
		case strings.Contains(label, "twitter"):
			person.Twitter = href
		case strings.Contains(label, "linkedin"):
			person.LinkedIn = href
		case strings.Contains(label, "instagram"):
			person.Instagram = href
		case strings.Contains(label, "youtube"):
			person.YouTube = href
		}
	})
}
