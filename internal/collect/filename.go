package collect

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/albapepper/bbref-data/internal/season"
)

func lastSegments(rawURL string, n int) ([]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < n {
		return nil, fmt.Errorf("unexpected URL path %q", u.Path)
	}
	return parts[len(parts)-n:], nil
}

// LeagueFilename derives the raw file name of a league page:
// .../leagues/NBA_2024.html becomes nba-2024.html.
func LeagueFilename(rawURL string) (string, error) {
	parts, err := lastSegments(rawURL, 1)
	if err != nil {
		return "", err
	}
	name := strings.ToLower(strings.ReplaceAll(parts[0], "_", "-"))
	if _, err := season.FromLeagueFile(name); err != nil {
		return "", err
	}
	return name, nil
}

// TeamFilename derives the raw file name of a team page:
// .../teams/LAL/1998.html becomes lal-1998.html.
func TeamFilename(rawURL string) (string, error) {
	parts, err := lastSegments(rawURL, 2)
	if err != nil {
		return "", err
	}
	team, file := parts[0], parts[1]
	yearText := strings.TrimSuffix(file, path.Ext(file))
	if _, err := season.ParseYear(yearText); err != nil {
		return "", err
	}
	if err := season.CheckExtension(file); err != nil {
		return "", err
	}
	return strings.ToLower(team) + "-" + file, nil
}

// PlayerFilename derives the raw file name of a player page:
// .../players/j/jamesle01.html becomes jamesle01.html.
func PlayerFilename(rawURL string) (string, error) {
	parts, err := lastSegments(rawURL, 1)
	if err != nil {
		return "", err
	}
	if err := season.CheckExtension(parts[0]); err != nil {
		return "", err
	}
	return parts[0], nil
}
