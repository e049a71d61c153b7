// internal/identity/types.go

// Package identity tracks the people and sponsors discovered while
// harvesting episodes, deduplicating them across shows.
package identity

// PersonType distinguishes hosts from guests.
type PersonType string

const (
	PersonHost  PersonType = "host"
	PersonGuest PersonType = "guest"
)

// Person describes a host or guest scraped from a show's people pages.
// Username is the unique ID used for the output filename.
type Person struct {
	Type        PersonType `json:"type" yaml:"type"`
	Username    string     `json:"username" yaml:"username"`
	Name        string     `json:"name" yaml:"name"`
	Bio         string     `json:"bio,omitempty" yaml:"bio,omitempty"`
	Avatar      string     `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	AvatarSmall string     `json:"avatar_small,omitempty" yaml:"avatar_small,omitempty"`
	Homepage    string     `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Twitter     string     `json:"twitter,omitempty" yaml:"twitter,omitempty"`
	LinkedIn    string     `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Instagram   string     `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	YouTube     string     `json:"youtube,omitempty" yaml:"youtube,omitempty"`
}

// Sponsor describes an advertiser block scraped from an episode page.
type Sponsor struct {
	Shortname   string `json:"shortname" yaml:"shortname"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Link        string `json:"link" yaml:"link"`
}
