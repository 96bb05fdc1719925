package extract

import (
	"context"
	"sort"

	"github.com/albapepper/bbref-data/internal/document"
	"github.com/albapepper/bbref-data/internal/era"
	"github.com/albapepper/bbref-data/internal/frame"
	"github.com/albapepper/bbref-data/internal/process"
	"github.com/albapepper/bbref-data/internal/season"
)

// ConferenceStats extracts the league-wide team and opponent stat tables of
// league documents. It returns one table per entry of ConferenceStatsTables,
// in that order, with rows in document order.
func (e *Extractor) ConferenceStats(ctx context.Context, paths []string) ([]Table, error) {
	return e.multiTable(ctx, paths, ConferenceStatsTables, e.conferenceStatsDocument)
}

func (e *Extractor) conferenceStatsDocument(path string, specs []TableSpec) ([]*frame.Frame, error) {
	id, err := season.FromLeagueFile(path)
	if err != nil {
		return nil, err
	}
	if _, ok := era.Select(era.ConferenceStats, id.Year); !ok {
		e.logger.Debug("no conference stats layout for season", "file", path, "season", id.Season)
		return nil, nil
	}
	doc, err := document.LoadFile(path, true)
	if err != nil {
		return nil, err
	}

	out := make([]*frame.Frame, len(specs))
	for i, spec := range specs {
		f, m, ok, err := idTable(doc, era.ConferenceStats, spec)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.logger.Debug("table absent", "file", path, "table", spec.ID)
			continue
		}
		attachIdentity(f, id)
		MarkPlayoffTeams(f)
		f.Set("is_team_stats", spec.TeamStats)
		if err := f.Coerce(m.Types()); err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

type documentTables struct {
	path   string
	frames []*frame.Frame
}

// multiTable runs fn over paths through the worker pool and stacks the
// per-document frames of each spec in path order.
func (e *Extractor) multiTable(
	ctx context.Context,
	paths []string,
	specs []TableSpec,
	fn func(path string, specs []TableSpec) ([]*frame.Frame, error),
) ([]Table, error) {
	docs, err := process.Each(ctx, paths, e.workers, func(_ context.Context, path string) (documentTables, error) {
		frames, err := fn(path, specs)
		return documentTables{path: path, frames: frames}, err
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].path < docs[j].path })

	out := make([]Table, len(specs))
	for i, spec := range specs {
		parts := make([]*frame.Frame, 0, len(docs))
		for _, d := range docs {
			if i < len(d.frames) {
				parts = append(parts, d.frames[i])
			}
		}
		out[i] = Table{Spec: spec, Frame: frame.Concat(parts...)}
		e.logger.Info("table extracted", "table", spec.ID, "rows", out[i].Frame.Len())
	}
	return out, nil
}
