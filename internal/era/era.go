// Package era selects table layout rules by entity kind and season year.
//
// The source site changed its page structure at known season boundaries.
// Each kind carries an ordered table of year-ranged rules; selection walks the
// rules by descending lower bound and returns the first that covers the year.
// A year no rule covers yields no rule, and callers skip the document.
package era

import (
	"fmt"
	"sort"
	"strings"

	"github.com/albapepper/bbref-data/internal/season"
)

// Kind is an entity kind with era-dependent page structure.
type Kind string

const (
	Conference      Kind = "conference"
	ConferenceStats Kind = "conference_stats"
	Team            Kind = "team"
	TeamStats       Kind = "team_stats"
	PlayerStats     Kind = "player_stats"
)

// Layout describes how the tables of a rule combine into records.
type Layout int

const (
	// Uncovered years are inside the supported range but carry no usable
	// tables for the kind.
	Uncovered Layout = iota
	// Split pages carry one standings table per conference, east first.
	Split
	// Combined pages carry one standings table for the whole league, with
	// conference membership inferred from division.
	Combined
	// ByID pages carry tables addressed by element id.
	ByID
	// Header pages carry fields in the page header rather than in tables.
	Header
)

func (l Layout) String() string {
	switch l {
	case Split:
		return "split"
	case Combined:
		return "combined"
	case ByID:
		return "by-id"
	case Header:
		return "header"
	}
	return "uncovered"
}

// Rule is one year-ranged layout for a kind.
type Rule struct {
	Kind   Kind
	From   int // inclusive
	To     int // inclusive
	Layout Layout
	// Tables are positional table indices for Split and Combined layouts.
	Tables []int
	// HeaderDepth applies to positional tables. ByID layouts resolve depth
	// per table with HeaderDepth.
	HeaderDepth int
	// Selector locates link anchors or header elements for the kind.
	Selector string
}

// Covers reports whether year falls within the rule.
func (r Rule) Covers(year int) bool {
	return year >= r.From && year <= r.To
}

// Selector is the ordered rule table of one kind.
type Selector struct {
	kind  Kind
	rules []Rule
}

// NewSelector validates rules and orders them by descending lower bound.
func NewSelector(kind Kind, rules ...Rule) (*Selector, error) {
	ordered := append([]Rule(nil), rules...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].From > ordered[j].From })
	for i, r := range ordered {
		if r.Kind != kind {
			return nil, fmt.Errorf("era: rule %d-%d is for %s, not %s", r.From, r.To, r.Kind, kind)
		}
		if r.From > r.To {
			return nil, fmt.Errorf("era: %s rule %d-%d has an empty range", kind, r.From, r.To)
		}
		if i > 0 && r.To >= ordered[i-1].From {
			return nil, fmt.Errorf("era: %s rules %d-%d and %d-%d overlap",
				kind, r.From, r.To, ordered[i-1].From, ordered[i-1].To)
		}
	}
	return &Selector{kind: kind, rules: ordered}, nil
}

// MustSelector is NewSelector for rule tables fixed at compile time.
func MustSelector(kind Kind, rules ...Rule) *Selector {
	s, err := NewSelector(kind, rules...)
	if err != nil {
		panic(err)
	}
	return s
}

// Kind returns the kind the selector serves.
func (s *Selector) Kind() Kind { return s.kind }

// Rules returns the rules in evaluation order.
func (s *Selector) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Select returns the rule covering year. Uncovered rules are returned with
// ok=false so callers skip the document the same way as for unmatched years.
func (s *Selector) Select(year int) (Rule, bool) {
	for _, r := range s.rules {
		if r.Covers(year) {
			return r, r.Layout != Uncovered
		}
	}
	return Rule{}, false
}

// Gaps returns the years in [from, to] that no rule covers.
func (s *Selector) Gaps(from, to int) []int {
	var gaps []int
	for y := from; y <= to; y++ {
		covered := false
		for _, r := range s.rules {
			if r.Covers(y) {
				covered = true
				break
			}
		}
		if !covered {
			gaps = append(gaps, y)
		}
	}
	return gaps
}

// --------------------------------------------------------------------------
// Rule tables
// --------------------------------------------------------------------------

// Team links on a league page, used to build the team registry.
const TeamLinkSelector = "table#per_game-team a[href^='/teams/']"

// Player page header selectors.
const (
	PlayerNameSelector = "div#meta h1 span"
	PlayerMetaSelector = "div#meta p"
)

var selectors = map[Kind]*Selector{
	Conference: MustSelector(Conference,
		Rule{Kind: Conference, From: 2016, To: season.SupportedTo, Layout: Split, Tables: []int{2, 3}, HeaderDepth: 1},
		Rule{Kind: Conference, From: 1971, To: 2015, Layout: Split, Tables: []int{0, 1}, HeaderDepth: 1},
		Rule{Kind: Conference, From: 1956, To: 1970, Layout: Combined, Tables: []int{0}, HeaderDepth: 1},
		Rule{Kind: Conference, From: season.SupportedFrom, To: 1955, Layout: Uncovered},
	),
	ConferenceStats: MustSelector(ConferenceStats,
		Rule{Kind: ConferenceStats, From: season.SupportedFrom, To: season.SupportedTo, Layout: ByID},
	),
	Team: MustSelector(Team,
		Rule{Kind: Team, From: season.SupportedFrom, To: season.SupportedTo, Layout: ByID, Selector: TeamLinkSelector},
	),
	TeamStats: MustSelector(TeamStats,
		Rule{Kind: TeamStats, From: season.SupportedFrom, To: season.SupportedTo, Layout: ByID},
	),
	PlayerStats: MustSelector(PlayerStats,
		Rule{Kind: PlayerStats, From: season.SupportedFrom, To: season.SupportedTo, Layout: Header, Selector: PlayerNameSelector},
	),
}

// For returns the selector of a kind.
func For(kind Kind) *Selector {
	s, ok := selectors[kind]
	if !ok {
		panic(fmt.Sprintf("era: no selector for kind %q", kind))
	}
	return s
}

// Select is For(kind).Select(year).
func Select(kind Kind, year int) (Rule, bool) {
	s, ok := selectors[kind]
	if !ok {
		return Rule{}, false
	}
	return s.Select(year)
}

// Tables whose source stacks a grouping header row above the column labels.
var deepHeaders = map[Kind][]string{
	TeamStats:       {"advanced", "adj_shooting", "shooting", "pbp_stats"},
	ConferenceStats: {"advanced-team", "shooting-"},
}

// HeaderDepth returns the number of header rows of an id-addressed table.
func HeaderDepth(kind Kind, tableID string) int {
	for _, prefix := range deepHeaders[kind] {
		if strings.HasPrefix(tableID, prefix) {
			return 2
		}
	}
	return 1
}

// --------------------------------------------------------------------------
// Division to conference membership, 1956-1970
// --------------------------------------------------------------------------

// Conference names.
const (
	Eastern = "Eastern"
	Western = "Western"
)

// divisionConference lists every division name the league used between 1956
// and 1970. The league was organised as two divisions named after the
// conferences that later replaced them.
var divisionConference = map[string]string{
	"Eastern": Eastern,
	"Western": Western,
}

// ConferenceOf maps a combined-era division to its conference. Unknown
// divisions return ok=false.
func ConferenceOf(division string) (string, bool) {
	c, ok := divisionConference[division]
	return c, ok
}
