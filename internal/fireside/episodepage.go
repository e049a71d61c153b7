// internal/fireside/episodepage.go
package fireside

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jupiterbroadcasting/showharvest/internal/identity"
)

// ParseEpisodeHosts extracts the host usernames from a rendered
// episode page. Hosts are always the first ul.episode-hosts list.
func ParseEpisodeHosts(doc *goquery.Document, baseURL string, resolver *identity.Resolver) []string {
	var hosts []string
	doc.Find("ul.episode-hosts").First().Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		hosts = append(hosts, resolver.ResolveUsername(baseURL+href))
	})
	return hosts
}

// ParseEpisodeGuests extracts the guest usernames from a rendered
// episode page. Guests are the second ul.episode-hosts list, which
// many episodes do not have.
func ParseEpisodeGuests(doc *goquery.Document, baseURL string, resolver *identity.Resolver) []string {
	lists := doc.Find("ul.episode-hosts")
	if lists.Length() < 2 {
		return nil
	}

	var guests []string
	lists.Eq(1).Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		guests = append(guests, resolver.ResolveUsername(baseURL+href))
	})
	return guests
}

// ParseEpisodeTags extracts the tag labels of an episode page, sorted,
// with inner double quotes escaped for safe front-matter embedding.
func ParseEpisodeTags(doc *goquery.Document) []string {
	var tags []string
	doc.Find("a.tag").Each(func(_ int, a *goquery.Selection) {
		tag := strings.TrimSpace(a.Text())
		tag = strings.ReplaceAll(tag, `"`, `\"`)
		tags = append(tags, tag)
	})
	sort.Strings(tags)
	return tags
}

// SponsorRef pairs a sponsor shortname with the full record parsed
// from the page, when the page still carries the details block.
type SponsorRef struct {
	Shortname string
	Detail    *identity.Sponsor
}

// ParseEpisodeSponsors resolves the episode's sponsor shortnames from
// the "Sponsored By:" list of the show notes, pulling each sponsor's
// display details from the episode page's sponsor blocks when present.
func ParseEpisodeSponsors(notes *goquery.Document, page *goquery.Document, showAcronym string) ([]SponsorRef, error) {
	list := FindLabeledList(notes, "Sponsored By:")
	if list == nil {
		return nil, nil
	}

	var refs []SponsorRef
	var firstErr error
	list.Find("li > a:first-child").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}

		shortname, err := identity.SponsorShortname(href, showAcronym)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}

		ref := SponsorRef{Shortname: shortname}
		if detail := parseSponsorBlock(page, href, shortname); detail != nil {
			ref.Detail = detail
		}
		refs = append(refs, ref)
	})

	return refs, firstErr
}

// parseSponsorBlock finds the anchor inside div.episode-sponsors whose
// href matches link and reads the sponsor name and description from
// it.
func parseSponsorBlock(page *goquery.Document, link, shortname string) *identity.Sponsor {
	var detail *identity.Sponsor
	page.Find("div.episode-sponsors a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href != link {
			return true
		}
		detail = &identity.Sponsor{
			Shortname:   shortname,
			Name:        strings.TrimSpace(a.Find("header").Text()),
			Description: strings.TrimSpace(a.Find("p").Text()),
			Link:        link,
		}
		return false
	})
	return detail
}
