// Package season derives season, league, team and year identity from the
// names of collected documents.
//
// Documents are addressed by their file names: league pages as
// <league>-<year>.html and team pages as <team>-<year>.html, where year is the
// calendar year in which the season ends.
package season

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Supported year range for extraction. Years outside it are never selected by
// an era rule.
const (
	SupportedFrom = 1946
	SupportedTo   = 2025
)

// RawExtension is the extension of every collected document.
const RawExtension = "html"

var yearPattern = regexp.MustCompile(`^(?:19\d{2}|20\d{2}|2100)$`)

// Identity is the context attached to every record of a league document.
type Identity struct {
	Season string
	League string
	Year   int
}

// TeamIdentity is the context attached to every record of a team document.
type TeamIdentity struct {
	Team   string
	Season string
	Year   int
}

// Season formats the season ending in year as "YYYY-YY".
func Season(year int) string {
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}

// IsValidYear reports whether text is a four digit season year.
func IsValidYear(text string) bool {
	return yearPattern.MatchString(text)
}

// ParseYear validates and converts a season year.
func ParseYear(text string) (int, error) {
	if !IsValidYear(text) {
		return 0, &SeasonYearError{Value: text}
	}
	year, err := strconv.Atoi(text)
	if err != nil {
		return 0, &SeasonYearError{Value: text}
	}
	return year, nil
}

// YearFromSeason returns the ending year of a "YYYY-YY" season string.
func YearFromSeason(s string) (int, error) {
	start, _, ok := strings.Cut(s, "-")
	if !ok {
		return 0, &SeasonYearError{Value: s}
	}
	year, err := ParseYear(start)
	if err != nil {
		return 0, err
	}
	return year + 1, nil
}

// FromLeagueFile parses a league document name such as nba-1962.html.
func FromLeagueFile(path string) (Identity, error) {
	code, year, err := splitName(path)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Season: Season(year),
		League: strings.ToUpper(code),
		Year:   year,
	}, nil
}

// FromTeamFile parses a team document name such as lal-1998.html.
func FromTeamFile(path string) (TeamIdentity, error) {
	code, year, err := splitName(path)
	if err != nil {
		return TeamIdentity{}, err
	}
	return TeamIdentity{
		Team:   strings.ToUpper(code),
		Season: Season(year),
		Year:   year,
	}, nil
}

// CheckExtension returns an HTMLExtensionError unless path ends in .html.
func CheckExtension(path string) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext != RawExtension {
		return &HTMLExtensionError{Extension: ext}
	}
	return nil
}

func splitName(path string) (string, int, error) {
	if err := CheckExtension(path); err != nil {
		return "", 0, err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	code, yearText, ok := strings.Cut(stem, "-")
	if !ok || code == "" {
		return "", 0, &SeasonYearError{Value: stem}
	}
	year, err := ParseYear(yearText)
	if err != nil {
		return "", 0, err
	}
	return code, year, nil
}
