// internal/output/manager_test.go
package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jupiterbroadcasting/showharvest/internal/episode"
	"github.com/jupiterbroadcasting/showharvest/internal/identity"
	"github.com/jupiterbroadcasting/showharvest/internal/legacysite"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

func testEpisode() *episode.Episode {
	ep := &episode.Episode{
		ShowSlug:        "coderradio",
		ShowName:        "Coder Radio",
		Episode:         42,
		EpisodeGUID:     "f31a453c",
		Title:           "The Answer",
		Description:     "A show about code.",
		PodcastDuration: "01:02:05",
		PodcastFile:     "https://aphid.fireside.fm/d/ep.mp3",
		FiresideURL:     "/42",
	}
	ep.GenerateDerived()
	return ep
}

func newTestManager(t *testing.T, latestOnly bool, protected ...string) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	return NewManager(dir, protected, latestOnly, utils.NewLoggerWithLevel(utils.ErrorLevel)), dir
}

func TestWriteEpisode(t *testing.T) {
	m, dir := newTestManager(t, false)

	written, err := m.WriteEpisode(testEpisode())
	if err != nil {
		t.Fatalf("WriteEpisode failed: %v", err)
	}
	if !written {
		t.Fatal("expected episode to be written")
	}

	path := filepath.Join(dir, "content", "show", "coderradio", "0042.md")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("episode file missing: %v", err)
	}
	if !strings.Contains(string(content), `"episode": 42`) {
		t.Errorf("unexpected content: %s", content)
	}
}

func TestWriteEpisodeSkipsExistingInFullMode(t *testing.T) {
	m, dir := newTestManager(t, false)

	if _, err := m.WriteEpisode(testEpisode()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "content", "show", "coderradio", "0042.md")
	if err := os.WriteFile(path, []byte("manual edit"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := m.WriteEpisode(testEpisode())
	if err != nil {
		t.Fatalf("WriteEpisode failed: %v", err)
	}
	if written {
		t.Error("full mode must not overwrite an existing episode file")
	}

	content, _ := os.ReadFile(path)
	if string(content) != "manual edit" {
		t.Error("existing file was overwritten")
	}
}

func TestWriteEpisodeOverwritesInLatestMode(t *testing.T) {
	m, dir := newTestManager(t, true)

	path := filepath.Join(dir, "content", "show", "coderradio", "0042.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := m.WriteEpisode(testEpisode())
	if err != nil {
		t.Fatalf("WriteEpisode failed: %v", err)
	}
	if !written {
		t.Error("latest-only mode must overwrite the episode file")
	}
}

func TestEpisodeExists(t *testing.T) {
	m, _ := newTestManager(t, false)

	if m.EpisodeExists("coderradio", 42) {
		t.Error("no file yet, EpisodeExists should be false")
	}
	if _, err := m.WriteEpisode(testEpisode()); err != nil {
		t.Fatal(err)
	}
	if !m.EpisodeExists("coderradio", 42) {
		t.Error("EpisodeExists should be true after write")
	}
}

func TestWritePerson(t *testing.T) {
	m, dir := newTestManager(t, false)

	person := identity.Person{
		Type:     identity.PersonHost,
		Username: "chris",
		Name:     "Chris Fisher",
		Twitter:  "https://twitter.com/chrislas",
	}
	if err := m.WritePerson("chris", person); err != nil {
		t.Fatalf("WritePerson failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "content", "people", "chris.md"))
	if err != nil {
		t.Fatalf("person file missing: %v", err)
	}
	text := string(content)
	if !strings.HasPrefix(text, "---\n") || !strings.HasSuffix(text, "---\n") {
		t.Errorf("expected YAML front matter delimiters: %q", text)
	}
	if !strings.Contains(text, "username: chris") {
		t.Errorf("missing username: %s", text)
	}
	if !strings.Contains(text, "type: host") {
		t.Errorf("missing person type: %s", text)
	}
}

func TestWritePersonHonorsDataDontOverride(t *testing.T) {
	m, dir := newTestManager(t, true, "chris.md")

	path := filepath.Join(dir, "content", "people", "chris.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("manual fix"), 0o644); err != nil {
		t.Fatal(err)
	}

	person := identity.Person{Type: identity.PersonHost, Username: "chris", Name: "Chris Fisher"}
	if err := m.WritePerson("chris", person); err != nil {
		t.Fatalf("WritePerson failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "manual fix" {
		t.Error("protected file was overwritten in latest-only mode")
	}
}

func TestWriteSponsor(t *testing.T) {
	m, dir := newTestManager(t, false)

	sponsor := identity.Sponsor{
		Shortname:   "linode.com-cr",
		Name:        "Linode",
		Description: "Cloud hosting for everyone.",
		Link:        "https://www.linode.com/coder",
	}
	if err := m.WriteSponsor(sponsor); err != nil {
		t.Fatalf("WriteSponsor failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "content", "sponsors", "linode.com-cr.md"))
	if err != nil {
		t.Fatalf("sponsor file missing: %v", err)
	}
	if !strings.Contains(string(content), "shortname: linode.com-cr") {
		t.Errorf("unexpected content: %s", content)
	}
}

func TestDumpLegacyIndex(t *testing.T) {
	m, dir := newTestManager(t, false)

	index := legacysite.Index{
		"linuxactionnews": {
			152.5: &legacysite.EpisodeRecord{PageURL: "https://example.com/goodbye"},
			257:   &legacysite.EpisodeRecord{PageURL: "https://example.com/257"},
		},
	}
	if err := m.DumpLegacyIndex(index); err != nil {
		t.Fatalf("DumpLegacyIndex failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "jb_all_shows_links.json"))
	if err != nil {
		t.Fatalf("dump file missing: %v", err)
	}

	var decoded map[string]map[string]struct {
		PageURL string `json:"jb_url"`
	}
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("dump is not valid JSON: %v", err)
	}
	if decoded["linuxactionnews"]["152.5"].PageURL != "https://example.com/goodbye" {
		t.Errorf("half-number episode key mangled: %v", decoded)
	}
	if decoded["linuxactionnews"]["257"].PageURL != "https://example.com/257" {
		t.Errorf("integer episode key mangled: %v", decoded)
	}
}
