package extract

import (
	"context"
	"fmt"

	"github.com/albapepper/bbref-data/internal/columns"
	"github.com/albapepper/bbref-data/internal/document"
	"github.com/albapepper/bbref-data/internal/era"
	"github.com/albapepper/bbref-data/internal/frame"
	"github.com/albapepper/bbref-data/internal/season"
)

// Conferences extracts conference standings from league documents, in
// document order. Years the conference rules do not cover are skipped.
func (e *Extractor) Conferences(ctx context.Context, paths []string) (*frame.Frame, error) {
	m, err := columns.Get(columns.Conferences)
	if err != nil {
		return nil, err
	}

	var frames []*frame.Frame
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := e.conferenceDocument(path, m)
		if err != nil {
			return nil, fmt.Errorf("conferences %s: %w", path, err)
		}
		if f != nil {
			frames = append(frames, f)
		}
	}

	out := frame.Concat(frames...)
	MarkPlayoffTeams(out)
	if err := out.Coerce(m.Types()); err != nil {
		return nil, err
	}
	e.logger.Info("conferences extracted", "documents", len(paths), "rows", out.Len())
	return out, nil
}

func (e *Extractor) conferenceDocument(path string, m columns.Map) (*frame.Frame, error) {
	id, err := season.FromLeagueFile(path)
	if err != nil {
		return nil, err
	}
	rule, ok := era.Select(era.Conference, id.Year)
	if !ok {
		e.logger.Debug("no conference layout for season", "file", path, "season", id.Season)
		return nil, nil
	}
	doc, err := document.LoadFile(path, false)
	if err != nil {
		return nil, err
	}

	var f *frame.Frame
	switch rule.Layout {
	case era.Split:
		conferences := []string{era.Eastern, era.Western}
		parts := make([]*frame.Frame, 0, len(rule.Tables))
		for i, idx := range rule.Tables {
			part, err := standings(doc, idx, rule.HeaderDepth, m)
			if err != nil {
				return nil, err
			}
			part.Set("conference", conferences[i%len(conferences)])
			AddDivisions(part)
			parts = append(parts, part)
		}
		f = frame.Concat(parts...)
	case era.Combined:
		f, err = standings(doc, rule.Tables[0], rule.HeaderDepth, m)
		if err != nil {
			return nil, err
		}
		AddDivisions(f)
		for _, d := range InferConferences(f) {
			e.logger.Info("division has no known conference", "file", path, "division", d)
		}
	default:
		return nil, fmt.Errorf("unexpected conference layout %s", rule.Layout)
	}

	attachIdentity(f, id)
	return f, nil
}

// standings reads one positional standings table and renames its columns.
func standings(doc *document.Document, index, depth int, m columns.Map) (*frame.Frame, error) {
	tbl, ok := doc.Table(index)
	if !ok {
		return nil, fmt.Errorf("standings table %d not found (%d tables)", index, doc.TableCount())
	}
	f := tbl.Frame(depth)
	f.Rename(m.Renames())
	if !f.Has("team") {
		return nil, fmt.Errorf("standings table %d has no team column", index)
	}
	return f, nil
}
