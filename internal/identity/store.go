// internal/identity/store.go
package identity

import (
	"fmt"
	"sort"
	"sync"
)

// PeopleStore accumulates people found across shows. It is safe for
// concurrent use by the per-show scrape workers.
type PeopleStore struct {
	mu         sync.Mutex
	people     map[string]Person
	latestOnly bool
}

// NewPeopleStore creates an empty PeopleStore. In latest-only mode a
// conflicting record overwrites the existing one instead of being kept
// under an alias key.
func NewPeopleStore(latestOnly bool) *PeopleStore {
	return &PeopleStore{
		people:     make(map[string]Person),
		latestOnly: latestOnly,
	}
}

// Merge records a person under their username. When a record for the
// same username already exists with different data, the new record is
// stored under an alternative key "__{username}_{acronym}" so that
// both versions survive a full harvest.
func (s *PeopleStore) Merge(p Person, showAcronym string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.people[p.Username]
	if ok && existing != p && !s.latestOnly {
		s.people[fmt.Sprintf("__%s_%s", p.Username, showAcronym)] = p
		return
	}
	s.people[p.Username] = p
}

// All returns the accumulated people sorted by store key.
func (s *PeopleStore) All() []Person {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.people))
	for k := range s.people {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Person, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.people[k])
	}
	return out
}

// Keys returns the store keys sorted. An aliased conflict appears
// under its "__{username}_{acronym}" key.
func (s *PeopleStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.people))
	for k := range s.people {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the person stored under key.
func (s *PeopleStore) Get(key string) (Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[key]
	return p, ok
}

// Len returns the number of stored people.
func (s *PeopleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.people)
}

// SponsorStore accumulates sponsors found across episodes. The first
// record seen for a shortname wins; later mentions of the same sponsor
// are ignored.
type SponsorStore struct {
	mu       sync.Mutex
	sponsors map[string]Sponsor
}

// NewSponsorStore creates an empty SponsorStore.
func NewSponsorStore() *SponsorStore {
	return &SponsorStore{sponsors: make(map[string]Sponsor)}
}

// Add records a sponsor under its shortname unless one is already
// present. It reports whether the sponsor was stored.
func (s *SponsorStore) Add(sp Sponsor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sponsors[sp.Shortname]; ok {
		return false
	}
	s.sponsors[sp.Shortname] = sp
	return true
}

// All returns the accumulated sponsors sorted by shortname.
func (s *SponsorStore) All() []Sponsor {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.sponsors))
	for k := range s.sponsors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Sponsor, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.sponsors[k])
	}
	return out
}

// Len returns the number of stored sponsors.
func (s *SponsorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sponsors)
}
