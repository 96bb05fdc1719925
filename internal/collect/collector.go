package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/albapepper/bbref-data/internal/extract"
	"github.com/albapepper/bbref-data/internal/registry"
	"github.com/albapepper/bbref-data/internal/store"
)

// SeasonsPath is the season list page under the base URL.
const SeasonsPath = "/leagues/"

// Stats counts the outcome of one collection run.
type Stats struct {
	Fetched int
	Skipped int
	Failed  int
	Errors  []string
}

// Summary returns a one-line description of the run.
func (s Stats) Summary() string {
	return fmt.Sprintf("fetched=%d skipped=%d failed=%d", s.Fetched, s.Skipped, s.Failed)
}

// Collector downloads pages into the raw layout.
type Collector struct {
	fetcher *Fetcher
	ledger  *Ledger
	layout  store.Layout
	baseURL string
	force   bool
	logger  *slog.Logger
}

// NewCollector creates a Collector. ledger may be nil, in which case every
// page is fetched. force refetches pages the ledger already holds.
func NewCollector(fetcher *Fetcher, ledger *Ledger, layout store.Layout, baseURL string, force bool, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		fetcher: fetcher,
		ledger:  ledger,
		layout:  layout,
		baseURL: baseURL,
		force:   force,
		logger:  logger,
	}
}

type page struct {
	url  string
	name string
}

// Seasons fetches the season list page.
func (c *Collector) Seasons(ctx context.Context) (Stats, error) {
	pages := []page{{url: c.baseURL + SeasonsPath, name: "seasons.html"}}
	return c.collect(ctx, extract.SeasonsFolder, pages)
}

// Leagues fetches the league page of every registered season.
func (c *Collector) Leagues(ctx context.Context, urls registry.SeasonURLs) (Stats, error) {
	return c.collectURLs(ctx, extract.LeaguesFolder, registry.Sorted(urls), LeagueFilename)
}

// Teams fetches every registered team page.
func (c *Collector) Teams(ctx context.Context, urls registry.TeamURLs) (Stats, error) {
	return c.collectURLs(ctx, extract.TeamsFolder, urls.Flatten(), TeamFilename)
}

// Players fetches every registered player page.
func (c *Collector) Players(ctx context.Context, urls registry.PlayerURLs) (Stats, error) {
	return c.collectURLs(ctx, extract.PlayersFolder, registry.Sorted(urls), PlayerFilename)
}

// collectURLs derives file names up front; a URL whose name cannot be
// derived aborts the run before anything is fetched.
func (c *Collector) collectURLs(ctx context.Context, folder string, urls []string, name func(string) (string, error)) (Stats, error) {
	pages := make([]page, 0, len(urls))
	for _, u := range urls {
		n, err := name(u)
		if err != nil {
			return Stats{}, fmt.Errorf("%s: %w", u, err)
		}
		pages = append(pages, page{url: u, name: n})
	}
	return c.collect(ctx, folder, pages)
}

func (c *Collector) collect(ctx context.Context, folder string, pages []page) (Stats, error) {
	var stats Stats
	if err := c.layout.Ensure(folder); err != nil {
		return stats, err
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		path := c.layout.Raw(folder, p.name)

		skip, err := c.fetched(ctx, p.url, path)
		if err != nil {
			return stats, err
		}
		if skip {
			stats.Skipped++
			continue
		}

		body, err := c.fetcher.Fetch(ctx, p.url)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			c.logger.Error("fetch failed", "url", p.url, "error", err)
			stats.Failed++
			stats.Errors = append(stats.Errors, err.Error())
			if err := c.record(ctx, p.url, path, StatusCode(err)); err != nil {
				return stats, err
			}
			continue
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return stats, fmt.Errorf("save %s: %w", filepath.Base(path), err)
		}
		if err := c.record(ctx, p.url, path, 200); err != nil {
			return stats, err
		}
		stats.Fetched++
	}

	c.logger.Info("collection complete", "folder", folder, "summary", stats.Summary())
	return stats, nil
}

// fetched reports whether the ledger already holds url and its file exists.
func (c *Collector) fetched(ctx context.Context, url, path string) (bool, error) {
	if c.ledger == nil || c.force {
		return false, nil
	}
	stored, ok, err := c.ledger.Done(ctx, url)
	if err != nil || !ok {
		return false, err
	}
	if _, err := os.Stat(stored); err != nil {
		return false, nil
	}
	return stored == path, nil
}

func (c *Collector) record(ctx context.Context, url, path string, status int) error {
	if c.ledger == nil {
		return nil
	}
	return c.ledger.Record(ctx, url, path, status)
}
