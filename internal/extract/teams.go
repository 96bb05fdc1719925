package extract

import (
	"context"
	"fmt"

	"github.com/albapepper/bbref-data/internal/document"
	"github.com/albapepper/bbref-data/internal/era"
	"github.com/albapepper/bbref-data/internal/frame"
	"github.com/albapepper/bbref-data/internal/season"
)

// TeamURLs maps each league document's season year to the team page URLs it
// links from the per-game team table.
func (e *Extractor) TeamURLs(paths []string) (map[int][]string, error) {
	out := make(map[int][]string, len(paths))
	for _, path := range paths {
		id, err := season.FromLeagueFile(path)
		if err != nil {
			return nil, err
		}
		rule, ok := era.Select(era.Team, id.Year)
		if !ok {
			continue
		}
		doc, err := document.LoadFile(path, true)
		if err != nil {
			return nil, err
		}
		urls := []string{}
		for _, a := range doc.FindAll(rule.Selector) {
			if href, ok := a.Attr("href"); ok {
				urls = append(urls, e.baseURL+href)
			}
		}
		out[id.Year] = urls
	}
	return out, nil
}

// TeamStats extracts the roster, player stat and salary tables of team
// documents. It returns one table per entry of TeamStatsTables, in that
// order. Documents are processed concurrently; any failure fails the batch.
func (e *Extractor) TeamStats(ctx context.Context, paths []string) ([]Table, error) {
	return e.multiTable(ctx, paths, TeamStatsTables, e.teamStatsDocument)
}

func (e *Extractor) teamStatsDocument(path string, specs []TableSpec) ([]*frame.Frame, error) {
	id, err := season.FromTeamFile(path)
	if err != nil {
		return nil, err
	}
	if _, ok := era.Select(era.TeamStats, id.Year); !ok {
		e.logger.Debug("no team stats layout for season", "file", path, "season", id.Season)
		return nil, nil
	}
	doc, err := document.LoadFile(path, true)
	if err != nil {
		return nil, err
	}

	out := make([]*frame.Frame, len(specs))
	for i, spec := range specs {
		f, m, ok, err := idTable(doc, era.TeamStats, spec)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.logger.Debug("table absent", "file", path, "table", spec.ID)
			continue
		}
		f.Set("team", id.Team)
		f.Set("season", id.Season)
		f.Set("year", int64(id.Year))
		if err := f.Coerce(m.Types()); err != nil {
			return nil, fmt.Errorf("table %s: %w", spec.ID, err)
		}
		out[i] = f
	}
	return out, nil
}
