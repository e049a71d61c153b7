// internal/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jupiterbroadcasting/showharvest/internal/legacysite"
)

const legacyIndexFilename = "jb_all_shows_links.json"

// DumpLegacyIndex writes the crawled archive index as an indented JSON
// file in the data directory. The dump is a debugging aid for file
// migrations and is overwritten on every run.
func (m *Manager) DumpLegacyIndex(index legacysite.Index) error {
	path := filepath.Join(m.dataDir, legacyIndexFilename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(indexForJSON(index)); err != nil {
		return fmt.Errorf("failed to encode legacy index: %w", err)
	}

	m.logger.Infof("Saved file: %s", path)
	return nil
}

// indexForJSON re-keys the index with string episode numbers, since
// float keys cannot be JSON object keys directly.
func indexForJSON(index legacysite.Index) map[string]map[string]*legacysite.EpisodeRecord {
	out := make(map[string]map[string]*legacysite.EpisodeRecord, len(index))
	for show, episodes := range index {
		show2 := make(map[string]*legacysite.EpisodeRecord, len(episodes))
		for number, record := range episodes {
			show2[strconv.FormatFloat(number, 'f', -1, 64)] = record
		}
		out[show] = show2
	}
	return out
}
