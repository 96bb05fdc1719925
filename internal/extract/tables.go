package extract

import (
	"path/filepath"
	"strings"

	"github.com/albapepper/bbref-data/internal/columns"
)

// Folders shared by the raw and processed trees.
const (
	SeasonsFolder          = "seasons"
	LeaguesFolder          = "leagues"
	TeamsFolder            = "teams"
	PlayersFolder          = "players"
	ConferencesFolder      = "conferences"
	ConferencesStatsFolder = "conferences_stats"
	TeamsStatsFolder       = "teams_stats"
	PlayersStatsFolder     = "players_stats"
)

// ConferenceStatsTables are the league page tables extracted per season.
var ConferenceStatsTables = []TableSpec{
	{ID: "per_game-team", Map: columns.ConferenceStats, Output: "per-game-teams-stats.parquet", TeamStats: true},
	{ID: "per_game-opponent", Map: columns.ConferenceStats, Output: "per-game-opponents-stats.parquet"},
	{ID: "totals-team", Map: columns.ConferenceStats, Output: "total-teams-stats.parquet", TeamStats: true},
	{ID: "totals-opponent", Map: columns.ConferenceStats, Output: "total-opponents-stats.parquet"},
	{ID: "per_poss-team", Map: columns.ConferenceStats, Output: "per-100-possessions-teams-stats.parquet", TeamStats: true},
	{ID: "per_poss-opponent", Map: columns.ConferenceStats, Output: "per-100-possessions-opponents-stats.parquet"},
	{ID: "advanced-team", Map: columns.ConferenceAdvanced, Output: "advanced-teams-stats.parquet", TeamStats: true},
	{ID: "shooting-team", Map: columns.ConferenceShooting, Output: "shooting-teams-stats.parquet", TeamStats: true},
	{ID: "shooting-opponent", Map: columns.ConferenceShooting, Output: "shooting-opponents-stats.parquet"},
}

// TeamStatsTables are the team page tables extracted per team season.
var TeamStatsTables = []TableSpec{
	{ID: "roster", Map: columns.Roster, Output: "rosters.parquet"},
	{ID: "per_game_stats", Map: columns.PlayerPerGame, Output: "regular-season-per-game-stats.parquet"},
	{ID: "per_game_stats_post", Map: columns.PlayerPerGame, Output: "playoffs-per-game-stats.parquet"},
	{ID: "totals_stats", Map: columns.PlayerTotals, Output: "regular-season-total-stats.parquet"},
	{ID: "totals_stats_post", Map: columns.PlayerTotals, Output: "playoffs-total-stats.parquet"},
	{ID: "per_minute_stats", Map: columns.PlayerPerGame, Output: "regular-season-per-36-minutes-stats.parquet"},
	{ID: "per_minute_stats_post", Map: columns.PlayerPerGame, Output: "playoffs-per-36-minutes-stats.parquet"},
	{ID: "per_poss", Map: columns.PlayerPer100, Output: "regular-season-per-100-possessions-stats.parquet"},
	{ID: "per_poss_post", Map: columns.PlayerPer100, Output: "playoffs-per-100-possessions-stats.parquet"},
	{ID: "advanced", Map: columns.PlayerAdvanced, Output: "regular-season-advanced-stats.parquet"},
	{ID: "advanced_post", Map: columns.PlayerAdvanced, Output: "playoffs-advanced-stats.parquet"},
	{ID: "adj_shooting", Map: columns.PlayerAdjustedShooting, Output: "regular-season-adjusted-shooting-stats.parquet"},
	{ID: "adj_shooting_post", Map: columns.PlayerAdjustedShooting, Output: "playoffs-adjusted-shooting-stats.parquet"},
	{ID: "shooting", Map: columns.PlayerShooting, Output: "regular-season-shooting-stats.parquet"},
	{ID: "shooting_post", Map: columns.PlayerShooting, Output: "playoffs-shooting-stats.parquet"},
	{ID: "pbp_stats", Map: columns.PlayerPlayByPlay, Output: "regular-season-play-by-play-stats.parquet"},
	{ID: "pbp_stats_post", Map: columns.PlayerPlayByPlay, Output: "playoffs-play-by-play-stats.parquet"},
	{ID: "salaries2", Map: columns.Salaries, Output: "salaries.parquet"},
}

// Single-table outputs.
const (
	SeasonsOutput     = "seasons.parquet"
	ConferencesOutput = "conferences.parquet"
	PlayerStatsOutput = "players-stats.parquet"
	SeasonURLsOutput  = "seasons-urls.json"
	TeamURLsOutput    = "teams.json"
	PlayerURLsOutput  = "players-urls.json"
	SeasonsDocument   = "seasons.html"
)

// Kind names the table of an output file: its folder and the file name
// without extension, e.g. teams_stats/salaries.
func Kind(folder, output string) string {
	return folder + "/" + strings.TrimSuffix(output, filepath.Ext(output))
}

// Kinds lists every table kind a run writes, in stage order.
func Kinds() []string {
	kinds := []string{
		Kind(SeasonsFolder, SeasonsOutput),
		Kind(ConferencesFolder, ConferencesOutput),
	}
	for _, t := range ConferenceStatsTables {
		kinds = append(kinds, Kind(ConferencesStatsFolder, t.Output))
	}
	for _, t := range TeamStatsTables {
		kinds = append(kinds, Kind(TeamsStatsFolder, t.Output))
	}
	return append(kinds, Kind(PlayersStatsFolder, PlayerStatsOutput))
}
