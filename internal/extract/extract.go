// Package extract turns collected pages into canonical tables, one per record
// kind: seasons, conference standings, conference stats, team stats and
// player profiles. It also builds the URL registries the collectors consume.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/albapepper/bbref-data/internal/columns"
	"github.com/albapepper/bbref-data/internal/document"
	"github.com/albapepper/bbref-data/internal/era"
	"github.com/albapepper/bbref-data/internal/frame"
	"github.com/albapepper/bbref-data/internal/process"
	"github.com/albapepper/bbref-data/internal/season"
)

// Extractor holds the settings shared by every record kind.
type Extractor struct {
	baseURL string
	workers int
	logger  *slog.Logger
}

// New creates an Extractor. baseURL prefixes the relative links stored in
// the URL registries.
func New(baseURL string, workers int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = process.DefaultWorkers
	}
	return &Extractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		workers: workers,
		logger:  logger,
	}
}

// Table is one canonical table produced by a multi-table extraction.
type Table struct {
	Spec  TableSpec
	Frame *frame.Frame
}

// TableSpec identifies an id-addressed source table and its output.
type TableSpec struct {
	ID     string
	Map    string
	Output string
	// TeamStats marks conference tables describing the team itself rather
	// than its opponents.
	TeamStats bool
}

// --------------------------------------------------------------------------
// Derived fields
// --------------------------------------------------------------------------

const (
	divisionSuffix = " Division"
	playoffMarker  = "*"
)

var seedAnnotation = regexp.MustCompile(`\s*\(\d+\)$`)

// AddDivisions fills a division column from division header rows and then
// removes those rows. A header row is one whose team ends in " Division";
// its division applies to every following row until the next header.
func AddDivisions(f *frame.Frame) {
	var current any
	f.SetFunc("division", func(r frame.Row) any {
		if name, ok := divisionHeader(r.String("team")); ok {
			current = name
		}
		return current
	})
	f.Filter(func(r frame.Row) bool {
		_, ok := divisionHeader(r.String("team"))
		return !ok
	})
}

func divisionHeader(team string) (string, bool) {
	name, ok := strings.CutSuffix(team, divisionSuffix)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return strings.TrimSpace(name), true
}

// MarkPlayoffTeams sets is_playoff_team from the trailing playoff marker of
// the team name and strips the marker. A trailing seed annotation such as
// " (1)" is removed first.
func MarkPlayoffTeams(f *frame.Frame) {
	if !f.Has("team") {
		return
	}
	f.SetFunc("team", func(r frame.Row) any {
		if r.IsNull("team") {
			return nil
		}
		return seedAnnotation.ReplaceAllString(r.String("team"), "")
	})
	f.SetFunc("is_playoff_team", func(r frame.Row) any {
		return strings.HasSuffix(r.String("team"), playoffMarker)
	})
	f.SetFunc("team", func(r frame.Row) any {
		if r.IsNull("team") {
			return nil
		}
		return strings.TrimSpace(strings.ReplaceAll(r.String("team"), playoffMarker, ""))
	})
}

// InferConferences sets conference from division for combined standings and
// returns the division names with no known conference.
func InferConferences(f *frame.Frame) []string {
	unknown := map[string]bool{}
	f.SetFunc("conference", func(r frame.Row) any {
		division := r.String("division")
		if division == "" {
			return nil
		}
		c, ok := era.ConferenceOf(division)
		if !ok {
			unknown[division] = true
			return nil
		}
		return c
	})
	out := make([]string, 0, len(unknown))
	for d := range unknown {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// DropAggregateRows removes rows with an empty rank. Tables without a rank
// column are left alone.
func DropAggregateRows(f *frame.Frame) {
	if !f.Has("rank") {
		return
	}
	f.Filter(func(r frame.Row) bool { return !r.IsNull("rank") })
}

// attachIdentity appends season, league and year to every row.
func attachIdentity(f *frame.Frame, id season.Identity) {
	f.Set("season", id.Season)
	f.Set("league", id.League)
	f.Set("year", int64(id.Year))
}

// idTable locates one id-addressed table and normalizes it: placeholder
// columns dropped, labels renamed, aggregate rows removed.
func idTable(doc *document.Document, kind era.Kind, spec TableSpec) (*frame.Frame, columns.Map, bool, error) {
	m, err := columns.Get(spec.Map)
	if err != nil {
		return nil, columns.Map{}, false, err
	}
	frag, ok := doc.FindByID(spec.ID)
	if !ok {
		return nil, m, false, nil
	}
	f := frag.Frame(era.HeaderDepth(kind, spec.ID))
	f.DropPlaceholders(frame.PlaceholderPrefix)
	f.Rename(m.Renames())
	DropAggregateRows(f)
	return f, m, true, nil
}

// --------------------------------------------------------------------------
// File discovery
// --------------------------------------------------------------------------

// HTMLFiles lists the .html documents of dir in name order.
func HTMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != "."+season.RawExtension {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
