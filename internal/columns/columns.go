// Package columns provides the fixed per-record-kind column maps used to
// rename source table labels to canonical field names and to type them.
//
// The maps are data, kept in columns.yaml and embedded at build time.
package columns

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/albapepper/bbref-data/internal/frame"
)

// Map names.
const (
	Seasons                = "seasons"
	Conferences            = "conferences"
	ConferenceStats        = "conference_stats"
	ConferenceAdvanced     = "conference_advanced"
	ConferenceShooting     = "conference_shooting"
	Roster                 = "roster"
	PlayerPerGame          = "player_per_game"
	PlayerTotals           = "player_totals"
	PlayerPer100           = "player_per_100"
	PlayerAdvanced         = "player_advanced"
	PlayerAdjustedShooting = "player_adjusted_shooting"
	PlayerShooting         = "player_shooting"
	PlayerPlayByPlay       = "player_play_by_play"
	Salaries               = "salaries"
	PlayerProfile          = "player_profile"
)

//go:embed columns.yaml
var source []byte

// Entry maps one source label.
type Entry struct {
	From string     `yaml:"from"`
	To   string     `yaml:"to"`
	Type frame.Type `yaml:"type"`
}

// Map is an ordered column map for one record kind.
type Map struct {
	Name    string
	Entries []Entry
}

// Renames returns the label substitution table.
func (m Map) Renames() map[string]string {
	out := make(map[string]string, len(m.Entries))
	for _, e := range m.Entries {
		out[e.From] = e.To
	}
	return out
}

// Types returns the canonical field types. Untyped entries are omitted.
func (m Map) Types() map[string]frame.Type {
	out := make(map[string]frame.Type, len(m.Entries))
	for _, e := range m.Entries {
		if e.Type != "" {
			out[e.To] = e.Type
		}
	}
	return out
}

// Canonical returns the canonical names in map order, without repeats.
func (m Map) Canonical() []string {
	seen := make(map[string]bool, len(m.Entries))
	var out []string
	for _, e := range m.Entries {
		if !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	return out
}

var (
	loadOnce sync.Once
	loaded   map[string]Map
	loadErr  error
)

// Get returns the named map.
func Get(name string) (Map, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(source)
	})
	if loadErr != nil {
		return Map{}, loadErr
	}
	m, ok := loaded[name]
	if !ok {
		return Map{}, fmt.Errorf("unknown column map %q", name)
	}
	return m, nil
}

// MustGet is Get for map names fixed at compile time.
func MustGet(name string) Map {
	m, err := Get(name)
	if err != nil {
		panic(err)
	}
	return m
}

// Names lists the available maps.
func Names() []string {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(source)
	})
	out := make([]string, 0, len(loaded))
	for name := range loaded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Parse decodes and validates a column map document.
func Parse(data []byte) (map[string]Map, error) {
	var raw map[string][]Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode column maps: %w", err)
	}
	out := make(map[string]Map, len(raw))
	for name, entries := range raw {
		m := Map{Name: name, Entries: entries}
		if err := m.validate(); err != nil {
			return nil, err
		}
		out[name] = m
	}
	return out, nil
}

func (m Map) validate() error {
	seen := make(map[string]bool, len(m.Entries))
	types := make(map[string]frame.Type, len(m.Entries))
	for _, e := range m.Entries {
		if e.From == "" || e.To == "" {
			return fmt.Errorf("column map %q: entry with empty label", m.Name)
		}
		if seen[e.From] {
			return fmt.Errorf("column map %q: duplicate source label %q", m.Name, e.From)
		}
		seen[e.From] = true
		switch e.Type {
		case "", frame.Int, frame.Float, frame.String, frame.Bool, frame.Date:
		default:
			return fmt.Errorf("column map %q: unknown type %q for %q", m.Name, e.Type, e.From)
		}
		if prev, ok := types[e.To]; ok && e.Type != "" && prev != "" && prev != e.Type {
			return fmt.Errorf("column map %q: conflicting types for %q", m.Name, e.To)
		}
		types[e.To] = e.Type
	}
	return nil
}
