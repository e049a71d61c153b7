// internal/output/manager.go

// Package output writes the harvested records as Hugo content files
// under the data directory.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jupiterbroadcasting/showharvest/internal/episode"
	"github.com/jupiterbroadcasting/showharvest/internal/identity"
	"github.com/jupiterbroadcasting/showharvest/internal/utils"
)

// Manager writes episodes, people and sponsors into the Hugo content
// tree.
type Manager struct {
	dataDir          string
	dataDontOverride map[string]bool
	latestOnly       bool
	logger           utils.Logger
}

// NewManager creates an output Manager rooted at dataDir. Filenames in
// dataDontOverride are never overwritten during latest-only runs; they
// hold manual fixes on top of harvested data.
func NewManager(dataDir string, dataDontOverride []string, latestOnly bool, logger utils.Logger) *Manager {
	protected := make(map[string]bool, len(dataDontOverride))
	for _, name := range dataDontOverride {
		protected[name] = true
	}
	return &Manager{
		dataDir:          dataDir,
		dataDontOverride: protected,
		latestOnly:       latestOnly,
		logger:           logger,
	}
}

// EpisodePath returns the content file path for an episode of a show.
func (m *Manager) EpisodePath(showSlug string, number int) string {
	return filepath.Join(m.dataDir, "content", "show", showSlug, episode.PadNumber(number)+".md")
}

// EpisodeExists reports whether the content file for an episode is
// already on disk. Full runs use this to skip rebuilt episodes before
// any network work.
func (m *Manager) EpisodeExists(showSlug string, number int) bool {
	_, err := os.Stat(m.EpisodePath(showSlug, number))
	return err == nil
}

// WriteEpisode writes an episode's content file. Existing files are
// kept in full runs; latest-only runs overwrite, since episodes reach
// the archive after the feed. It reports whether a file was written.
func (m *Manager) WriteEpisode(ep *episode.Episode) (bool, error) {
	content, err := ep.FrontMatter()
	if err != nil {
		return false, err
	}
	path := m.EpisodePath(ep.ShowSlug, ep.Episode)
	return m.saveFile(path, []byte(content), m.latestOnly)
}

// WritePerson writes a person's content file under content/people
// keyed by the store key, which is the username or an alias variant.
func (m *Manager) WritePerson(key string, p identity.Person) error {
	path := filepath.Join(m.dataDir, "content", "people", key+".md")
	return m.writeFrontMatterFile(path, p)
}

// WriteSponsor writes a sponsor's content file under
// content/sponsors.
func (m *Manager) WriteSponsor(sp identity.Sponsor) error {
	path := filepath.Join(m.dataDir, "content", "sponsors", sp.Shortname+".md")
	return m.writeFrontMatterFile(path, sp)
}

// writeFrontMatterFile serializes v as a YAML front matter document
// with an empty body. These files are overwritten on every run unless
// protected by data_dont_override.
func (m *Manager) writeFrontMatterFile(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}

	content := append([]byte("---\n"), data...)
	content = append(content, []byte("---\n")...)

	overwrite := true
	if m.latestOnly && m.dataDontOverride[filepath.Base(path)] {
		m.logger.Warnf("Filename %q found in data_dont_override! Will not overwrite it.", filepath.Base(path))
		overwrite = false
	}

	_, err = m.saveFile(path, content, overwrite)
	return err
}

// saveFile writes content to path, creating parent directories. When
// overwrite is false an existing file is left alone. It reports
// whether the file was written.
func (m *Manager) saveFile(path string, content []byte, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			m.logger.Warnf("Skipping saving %q as it already exists", path)
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	m.logger.Infof("Saved file: %s", path)
	return true, nil
}

// StaticDir returns the static assets directory avatars are saved
// under.
func (m *Manager) StaticDir() string {
	return filepath.Join(m.dataDir, "static")
}
