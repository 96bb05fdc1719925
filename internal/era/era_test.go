package era

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bbref-data/internal/season"
)

func TestConferenceRules(t *testing.T) {
	tests := []struct {
		year   int
		ok     bool
		layout Layout
		tables []int
	}{
		{2025, true, Split, []int{2, 3}},
		{2016, true, Split, []int{2, 3}},
		{2015, true, Split, []int{0, 1}},
		{1971, true, Split, []int{0, 1}},
		{1970, true, Combined, []int{0}},
		{1956, true, Combined, []int{0}},
		{1955, false, Uncovered, nil},
		{1946, false, Uncovered, nil},
		{1945, false, 0, nil},
		{2026, false, 0, nil},
	}
	for _, tt := range tests {
		r, ok := Select(Conference, tt.year)
		assert.Equal(t, tt.ok, ok, "year %d", tt.year)
		assert.Equal(t, tt.layout, r.Layout, "year %d", tt.year)
		assert.Equal(t, tt.tables, r.Tables, "year %d", tt.year)
	}
}

// TestEveryKindCoversSupportedRange verifies that exactly one rule applies to
// every supported year of every kind.
func TestEveryKindCoversSupportedRange(t *testing.T) {
	for kind, s := range selectors {
		assert.Empty(t, s.Gaps(season.SupportedFrom, season.SupportedTo), kind)
		for y := season.SupportedFrom; y <= season.SupportedTo; y++ {
			n := 0
			for _, r := range s.Rules() {
				if r.Covers(y) {
					n++
				}
			}
			assert.Equal(t, 1, n, "%s %d", kind, y)
		}
	}
}

func TestRulesEvaluatedByDescendingLowerBound(t *testing.T) {
	rules := For(Conference).Rules()
	for i := 1; i < len(rules); i++ {
		assert.Greater(t, rules[i-1].From, rules[i].From)
	}
}

func TestNewSelectorRejectsOverlap(t *testing.T) {
	_, err := NewSelector(Conference,
		Rule{Kind: Conference, From: 1971, To: 2016, Layout: Split},
		Rule{Kind: Conference, From: 2016, To: 2025, Layout: Split},
	)
	assert.ErrorContains(t, err, "overlap")

	_, err = NewSelector(Conference, Rule{Kind: Team, From: 1971, To: 2016})
	assert.Error(t, err)

	_, err = NewSelector(Conference, Rule{Kind: Conference, From: 2000, To: 1990})
	assert.Error(t, err)
}

func TestSelectUnknownKind(t *testing.T) {
	_, ok := Select(Kind("box_score"), 2000)
	assert.False(t, ok)
}

func TestHeaderDepth(t *testing.T) {
	tests := []struct {
		kind Kind
		id   string
		want int
	}{
		{TeamStats, "roster", 1},
		{TeamStats, "per_game_stats", 1},
		{TeamStats, "totals_stats_post", 1},
		{TeamStats, "advanced", 2},
		{TeamStats, "advanced_post", 2},
		{TeamStats, "adj_shooting", 2},
		{TeamStats, "shooting_post", 2},
		{TeamStats, "pbp_stats", 2},
		{TeamStats, "salaries2", 1},
		{ConferenceStats, "per_game-team", 1},
		{ConferenceStats, "advanced-team", 2},
		{ConferenceStats, "shooting-team", 2},
		{ConferenceStats, "shooting-opponent", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HeaderDepth(tt.kind, tt.id), "%s %s", tt.kind, tt.id)
	}
}

func TestConferenceOf(t *testing.T) {
	c, ok := ConferenceOf("Eastern")
	require.True(t, ok)
	assert.Equal(t, Eastern, c)

	c, ok = ConferenceOf("Western")
	require.True(t, ok)
	assert.Equal(t, Western, c)

	_, ok = ConferenceOf("Central")
	assert.False(t, ok)
}
