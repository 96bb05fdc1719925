package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/albapepper/bbref-data/internal/columns"
	"github.com/albapepper/bbref-data/internal/document"
	"github.com/albapepper/bbref-data/internal/era"
	"github.com/albapepper/bbref-data/internal/frame"
	"github.com/albapepper/bbref-data/internal/process"
	"github.com/albapepper/bbref-data/internal/season"
)

const playerLinkSelector = "a[href^='/players/']"

// PlayerURLs maps player names linked from team documents to their page
// URLs. The first link seen for a name wins; links whose text is not a name
// or whose target is not an html page are ignored.
func (e *Extractor) PlayerURLs(paths []string) (map[string]string, error) {
	out := map[string]string{}
	for _, path := range paths {
		doc, err := document.LoadFile(path, false)
		if err != nil {
			return nil, err
		}
		for _, a := range doc.FindAll(playerLinkSelector) {
			name := a.Text()
			if !IsPlayerName(name) {
				continue
			}
			if _, seen := out[name]; seen {
				continue
			}
			href, _ := a.Attr("href")
			if !strings.HasSuffix(href, season.RawExtension) {
				continue
			}
			out[name] = e.baseURL + href
		}
	}
	return out, nil
}

// IsPlayerName reports whether text contains at least one character that is
// not a digit, punctuation or whitespace.
func IsPlayerName(text string) bool {
	for _, r := range text {
		if !isExcluded(r) {
			return true
		}
	}
	return false
}

func isExcluded(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	return unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
}

// --------------------------------------------------------------------------
// Player profiles
// --------------------------------------------------------------------------

// Header paragraph keywords.
const (
	shootsKeyword      = "Shoots"
	highSchoolKeyword  = "High School"
	draftKeyword       = "Draft"
	debutKeyword       = "NBA Debut"
	highSchoolGrouping = 2
)

var numberPattern = regexp.MustCompile(`\d+`)

// Draft is a player's draft selection.
type Draft struct {
	PickedTeam  string
	Round       *int
	Pick        *int
	OverallPick *int
	Year        *int
}

// PlayerStats extracts one profile row per player document.
func (e *Extractor) PlayerStats(ctx context.Context, paths []string) (*frame.Frame, error) {
	m, err := columns.Get(columns.PlayerProfile)
	if err != nil {
		return nil, err
	}
	f, err := process.Files(ctx, paths, e.workers, func(_ context.Context, path string) (*frame.Frame, error) {
		return e.playerDocument(path)
	})
	if err != nil {
		return nil, err
	}
	if err := f.Coerce(m.Types()); err != nil {
		return nil, err
	}
	e.logger.Info("player profiles extracted", "documents", len(paths), "rows", f.Len())
	return f, nil
}

func (e *Extractor) playerDocument(path string) (*frame.Frame, error) {
	if err := season.CheckExtension(path); err != nil {
		return nil, err
	}
	doc, err := document.LoadFile(path, false)
	if err != nil {
		return nil, err
	}
	name, ok := doc.First(era.PlayerNameSelector)
	if !ok {
		return nil, fmt.Errorf("player name not found")
	}
	meta := doc.FindAll(era.PlayerMetaSelector)
	paragraphs := make([]string, 0, len(meta))
	for _, p := range meta {
		paragraphs = append(paragraphs, p.Text())
	}

	debut, err := NBADebut(paragraphs)
	if err != nil {
		return nil, err
	}
	draft := ParseDraft(paragraphs)

	f := frame.New(
		"player", "shooting_hand", "high_schools", "picked_team",
		"draft_round", "draft_pick", "overall_draft_pick", "draft_year", "nba_debut",
	)
	f.Append(
		name.Text(),
		optional(ShootingHand(paragraphs)),
		optional(HighSchools(paragraphs)),
		optional(draft.PickedTeam),
		intOrNil(draft.Round),
		intOrNil(draft.Pick),
		intOrNil(draft.OverallPick),
		intOrNil(draft.Year),
		debut,
	)
	return f, nil
}

// paragraph returns the first paragraph containing keyword.
func paragraph(paragraphs []string, keyword string) (string, bool) {
	for _, p := range paragraphs {
		if strings.Contains(p, keyword) {
			return p, true
		}
	}
	return "", false
}

// afterLastColon returns the trimmed text following the last colon.
func afterLastColon(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// ShootingHand returns the lower-cased shooting hand, or "".
func ShootingHand(paragraphs []string) string {
	p, ok := paragraph(paragraphs, shootsKeyword)
	if !ok {
		return ""
	}
	return strings.ToLower(afterLastColon(p))
}

// HighSchools returns the player's high schools as "name, location" groups
// joined with "; ", or "".
func HighSchools(paragraphs []string) string {
	p, ok := paragraph(paragraphs, highSchoolKeyword)
	if !ok {
		return ""
	}
	values := strings.Split(afterLastColon(p), ", ")
	groups := make([]string, 0, (len(values)+1)/highSchoolGrouping)
	for i := 0; i < len(values); i += highSchoolGrouping {
		end := min(i+highSchoolGrouping, len(values))
		groups = append(groups, strings.Join(values[i:end], ", "))
	}
	return strings.Join(groups, "; ")
}

// ParseDraft reads the draft paragraph, for example
// "Draft: Cleveland Cavaliers, 1st round (1st pick, 1st overall), 2003 NBA Draft".
// Undrafted players get a zero Draft.
func ParseDraft(paragraphs []string) Draft {
	p, ok := paragraph(paragraphs, draftKeyword)
	if !ok {
		return Draft{}
	}
	values := strings.Split(afterLastColon(p), ", ")
	d := Draft{PickedTeam: values[0]}
	if v, ok := draftValue(values, "round"); ok {
		d.Round = nthNumber(v, 0)
	}
	if v, ok := draftValue(values, "pick"); ok {
		d.Pick = nthNumber(v, 1)
	}
	if v, ok := draftValue(values, "overall"); ok {
		d.OverallPick = nthNumber(v, 0)
	}
	if v, ok := draftValue(values, "draft"); ok {
		d.Year = nthNumber(v, 0)
	}
	return d
}

func draftValue(values []string, keyword string) (string, bool) {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), keyword) {
			return v, true
		}
	}
	return "", false
}

// nthNumber returns the n-th run of digits in s.
func nthNumber(s string, n int) *int {
	found := numberPattern.FindAllString(s, -1)
	if n >= len(found) {
		return nil
	}
	v, err := strconv.Atoi(found[n])
	if err != nil {
		return nil
	}
	return &v
}

// NBADebut returns the debut date of the player, or nil when the page has
// none. A date that does not parse is an error.
func NBADebut(paragraphs []string) (any, error) {
	p, ok := paragraph(paragraphs, debutKeyword)
	if !ok {
		return nil, nil
	}
	text := strings.TrimSpace(strings.ReplaceAll(afterLastColon(p), "*", ""))
	t, err := time.Parse(frame.DateLayout, text)
	if err != nil {
		return nil, fmt.Errorf("nba debut %q: %w", text, err)
	}
	return t, nil
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}
