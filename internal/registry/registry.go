// Package registry persists the URL registries shared by the extract and
// collect stages as indented JSON files.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SeasonURLs maps a season such as "2023-24" to its league page URL.
type SeasonURLs map[string]string

// TeamURLs maps a season year to the team page URLs of that season.
type TeamURLs map[int][]string

// PlayerURLs maps a player name to the player page URL.
type PlayerURLs map[string]string

// Write stores v at path, creating parent directories.
func Write(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read loads the registry at path into v.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadSeasonURLs loads a season registry.
func ReadSeasonURLs(path string) (SeasonURLs, error) {
	out := SeasonURLs{}
	return out, Read(path, &out)
}

// ReadTeamURLs loads a team registry.
func ReadTeamURLs(path string) (TeamURLs, error) {
	out := TeamURLs{}
	return out, Read(path, &out)
}

// ReadPlayerURLs loads a player registry.
func ReadPlayerURLs(path string) (PlayerURLs, error) {
	out := PlayerURLs{}
	return out, Read(path, &out)
}

// Sorted returns the URLs of a string-keyed registry ordered by key.
func Sorted(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Flatten returns every team URL ordered by season year, then registry order.
func (t TeamURLs) Flatten() []string {
	years := make([]int, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	sort.Ints(years)
	var out []string
	for _, y := range years {
		out = append(out, t[y]...)
	}
	return out
}
