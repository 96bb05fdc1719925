package extract

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/albapepper/bbref-data/internal/columns"
	"github.com/albapepper/bbref-data/internal/document"
	"github.com/albapepper/bbref-data/internal/frame"
	"github.com/albapepper/bbref-data/internal/season"
)

const (
	seasonsTable       = 0
	seasonsHeaderDepth = 2
	nbaLeague          = "NBA"
)

var seasonLinkPattern = regexp.MustCompile(`^/leagues/NBA_\d{4}\.html$`)

// Seasons extracts the league season list. Only NBA seasons that have a
// champion, an MVP and a rookie of the year are kept; the ending year of each
// season is added as year.
func (e *Extractor) Seasons(path string) (*frame.Frame, error) {
	doc, err := document.LoadFile(path, false)
	if err != nil {
		return nil, err
	}
	tbl, ok := doc.Table(seasonsTable)
	if !ok {
		return nil, fmt.Errorf("%s: no seasons table", path)
	}
	m, err := columns.Get(columns.Seasons)
	if err != nil {
		return nil, err
	}

	f := tbl.Frame(seasonsHeaderDepth)
	f.DropPlaceholders(frame.PlaceholderPrefix)
	f.Rename(m.Renames())
	for _, c := range []string{"season", "league", "champion", "mvp", "rookie_of_the_year"} {
		if !f.Has(c) {
			return nil, fmt.Errorf("%s: seasons table has no %s column", path, c)
		}
	}
	f.Filter(func(r frame.Row) bool {
		return r.String("league") == nbaLeague &&
			!r.IsNull("champion") && !r.IsNull("mvp") && !r.IsNull("rookie_of_the_year")
	})

	var yearErr error
	f.SetFunc("year", func(r frame.Row) any {
		y, err := season.YearFromSeason(r.String("season"))
		if err != nil {
			if yearErr == nil {
				yearErr = err
			}
			return nil
		}
		return int64(y)
	})
	if yearErr != nil {
		return nil, yearErr
	}
	if err := f.Coerce(m.Types()); err != nil {
		return nil, err
	}
	e.logger.Info("seasons extracted", "file", path, "rows", f.Len())
	return f, nil
}

// SeasonURLs maps each season in seasons to the absolute URL of its league
// page, read from the season list document.
func (e *Extractor) SeasonURLs(path string, seasons []string) (map[string]string, error) {
	doc, err := document.LoadFile(path, false)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(seasons))
	for _, s := range seasons {
		wanted[s] = true
	}

	out := map[string]string{}
	for _, a := range doc.FindAll("a[href]") {
		href, _ := a.Attr("href")
		if !seasonLinkPattern.MatchString(href) {
			continue
		}
		y, err := yearFromLeagueHref(href)
		if err != nil {
			return nil, err
		}
		s := season.Season(y)
		if !wanted[s] {
			continue
		}
		out[s] = e.baseURL + href
	}
	return out, nil
}

// yearFromLeagueHref reads 2024 from /leagues/NBA_2024.html.
func yearFromLeagueHref(href string) (int, error) {
	stem := strings.TrimSuffix(path.Base(href), path.Ext(href))
	_, yearText, ok := strings.Cut(stem, "_")
	if !ok {
		return 0, &season.SeasonYearError{Value: stem}
	}
	return season.ParseYear(yearText)
}

// SeasonList returns the distinct season values of an extracted seasons
// table in row order.
func SeasonList(f *frame.Frame) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range f.Column("season") {
		s, ok := v.(string)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
