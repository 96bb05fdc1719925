// Package pipeline sequences the collection and extraction stages. Each stage
// reads what the previous ones left in the raw tree, writes its tables to the
// processed tree, and optionally uploads its folders and loads its tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/bbref-data/internal/collect"
	"github.com/albapepper/bbref-data/internal/extract"
	"github.com/albapepper/bbref-data/internal/frame"
	"github.com/albapepper/bbref-data/internal/load"
	"github.com/albapepper/bbref-data/internal/registry"
	"github.com/albapepper/bbref-data/internal/store"
	"github.com/albapepper/bbref-data/internal/upload"
)

const (
	htmlExt    = ".html"
	jsonExt    = ".json"
	parquetExt = ".parquet"
)

// Pipeline holds the collaborators shared by every stage.
type Pipeline struct {
	runID     uuid.UUID
	layout    store.Layout
	collector *collect.Collector
	extractor *extract.Extractor
	uploader  *upload.Uploader
	db        load.Beginner
	logger    *slog.Logger
}

// New creates a Pipeline. uploader and db may be nil, which disables
// uploading and loading respectively.
func New(layout store.Layout, collector *collect.Collector, extractor *extract.Extractor, uploader *upload.Uploader, db load.Beginner, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New()
	return &Pipeline{
		runID:     runID,
		layout:    layout,
		collector: collector,
		extractor: extractor,
		uploader:  uploader,
		db:        db,
		logger:    logger.With("run_id", runID.String()),
	}
}

// RunID identifies this pipeline in its log lines.
func (p *Pipeline) RunID() uuid.UUID {
	return p.runID
}

// Stage is one named step of a run.
type Stage struct {
	Name string
	Run  func(ctx context.Context) (Result, error)
}

// Stages lists every stage in run order. Later stages read the registries
// and pages earlier ones produce.
func (p *Pipeline) Stages() []Stage {
	return []Stage{
		{"collect seasons", p.CollectSeasons},
		{"extract seasons", p.ExtractSeasons},
		{"collect leagues", p.CollectLeagues},
		{"extract conferences", p.ExtractConferences},
		{"extract conference stats", p.ExtractConferenceStats},
		{"extract team urls", p.ExtractTeamURLs},
		{"collect teams", p.CollectTeams},
		{"extract team stats", p.ExtractTeamStats},
		{"extract player urls", p.ExtractPlayerURLs},
		{"collect players", p.CollectPlayers},
		{"extract player stats", p.ExtractPlayerStats},
	}
}

// Run executes every stage in order. A stage error stops the run; the
// returned Result covers the stages that completed.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var total Result
	start := time.Now()
	for _, s := range p.Stages() {
		stageStart := time.Now()
		p.logger.Info("stage started", "stage", s.Name)
		r, err := s.Run(ctx)
		total.Add(r)
		if err != nil {
			p.logger.Error("stage failed", "stage", s.Name, "error", err)
			return total, fmt.Errorf("%s: %w", s.Name, err)
		}
		p.logger.Info("stage finished", "stage", s.Name,
			"duration", time.Since(stageStart).Round(time.Millisecond),
			"summary", r.Summary())
	}
	p.logger.Info("run finished", "duration", time.Since(start).Round(time.Second), "summary", total.Summary())
	return total, nil
}

// --------------------------------------------------------------------------
// Collection stages
// --------------------------------------------------------------------------

// CollectSeasons fetches the season list page.
func (p *Pipeline) CollectSeasons(ctx context.Context) (Result, error) {
	return p.collected(ctx, extract.SeasonsFolder, func() (collect.Stats, error) {
		return p.collector.Seasons(ctx)
	})
}

// CollectLeagues fetches the league page of every season in the season
// registry.
func (p *Pipeline) CollectLeagues(ctx context.Context) (Result, error) {
	urls, err := registry.ReadSeasonURLs(p.layout.Raw(extract.SeasonsFolder, extract.SeasonURLsOutput))
	if err != nil {
		return Result{}, err
	}
	return p.collected(ctx, extract.LeaguesFolder, func() (collect.Stats, error) {
		return p.collector.Leagues(ctx, urls)
	})
}

// CollectTeams fetches every page in the team registry.
func (p *Pipeline) CollectTeams(ctx context.Context) (Result, error) {
	urls, err := registry.ReadTeamURLs(p.layout.Raw(extract.TeamsFolder, extract.TeamURLsOutput))
	if err != nil {
		return Result{}, err
	}
	return p.collected(ctx, extract.TeamsFolder, func() (collect.Stats, error) {
		return p.collector.Teams(ctx, urls)
	})
}

// CollectPlayers fetches every page in the player registry.
func (p *Pipeline) CollectPlayers(ctx context.Context) (Result, error) {
	urls, err := registry.ReadPlayerURLs(p.layout.Raw(extract.PlayersFolder, extract.PlayerURLsOutput))
	if err != nil {
		return Result{}, err
	}
	return p.collected(ctx, extract.PlayersFolder, func() (collect.Stats, error) {
		return p.collector.Players(ctx, urls)
	})
}

func (p *Pipeline) collected(ctx context.Context, folder string, run func() (collect.Stats, error)) (Result, error) {
	var res Result
	stats, err := run()
	res.AddCollect(stats)
	if err != nil {
		return res, err
	}
	return res, p.upload(ctx, &res, p.layout.Raw(folder), htmlExt)
}

// --------------------------------------------------------------------------
// Extraction stages
// --------------------------------------------------------------------------

// ExtractSeasons writes the seasons table and the season URL registry.
func (p *Pipeline) ExtractSeasons(ctx context.Context) (Result, error) {
	var res Result
	path := p.layout.Raw(extract.SeasonsFolder, extract.SeasonsDocument)
	f, err := p.extractor.Seasons(path)
	if err != nil {
		return res, err
	}
	if err := p.writeTable(ctx, &res, extract.SeasonsFolder, extract.SeasonsOutput, f); err != nil {
		return res, err
	}

	urls, err := p.extractor.SeasonURLs(path, extract.SeasonList(f))
	if err != nil {
		return res, err
	}
	if err := p.writeRegistry(ctx, &res, extract.SeasonsFolder, extract.SeasonURLsOutput, registry.SeasonURLs(urls)); err != nil {
		return res, err
	}
	return res, p.upload(ctx, &res, p.layout.Processed(extract.SeasonsFolder), parquetExt)
}

// ExtractConferences writes the conference standings table.
func (p *Pipeline) ExtractConferences(ctx context.Context) (Result, error) {
	var res Result
	paths, err := extract.HTMLFiles(p.layout.Raw(extract.LeaguesFolder))
	if err != nil {
		return res, err
	}
	f, err := p.extractor.Conferences(ctx, paths)
	if err != nil {
		return res, err
	}
	if err := p.writeTable(ctx, &res, extract.ConferencesFolder, extract.ConferencesOutput, f); err != nil {
		return res, err
	}
	return res, p.upload(ctx, &res, p.layout.Processed(extract.ConferencesFolder), parquetExt)
}

// ExtractConferenceStats writes one table per league stats table.
func (p *Pipeline) ExtractConferenceStats(ctx context.Context) (Result, error) {
	return p.multiTable(ctx, extract.LeaguesFolder, extract.ConferencesStatsFolder, p.extractor.ConferenceStats)
}

// ExtractTeamURLs writes the team registry from the league pages.
func (p *Pipeline) ExtractTeamURLs(ctx context.Context) (Result, error) {
	var res Result
	paths, err := extract.HTMLFiles(p.layout.Raw(extract.LeaguesFolder))
	if err != nil {
		return res, err
	}
	urls, err := p.extractor.TeamURLs(paths)
	if err != nil {
		return res, err
	}
	return res, p.writeRegistry(ctx, &res, extract.TeamsFolder, extract.TeamURLsOutput, registry.TeamURLs(urls))
}

// ExtractTeamStats writes one table per team page table.
func (p *Pipeline) ExtractTeamStats(ctx context.Context) (Result, error) {
	return p.multiTable(ctx, extract.TeamsFolder, extract.TeamsStatsFolder, p.extractor.TeamStats)
}

// ExtractPlayerURLs writes the player registry from the team pages.
func (p *Pipeline) ExtractPlayerURLs(ctx context.Context) (Result, error) {
	var res Result
	paths, err := extract.HTMLFiles(p.layout.Raw(extract.TeamsFolder))
	if err != nil {
		return res, err
	}
	urls, err := p.extractor.PlayerURLs(paths)
	if err != nil {
		return res, err
	}
	return res, p.writeRegistry(ctx, &res, extract.PlayersFolder, extract.PlayerURLsOutput, registry.PlayerURLs(urls))
}

// ExtractPlayerStats writes the player profile table.
func (p *Pipeline) ExtractPlayerStats(ctx context.Context) (Result, error) {
	var res Result
	paths, err := extract.HTMLFiles(p.layout.Raw(extract.PlayersFolder))
	if err != nil {
		return res, err
	}
	f, err := p.extractor.PlayerStats(ctx, paths)
	if err != nil {
		return res, err
	}
	if err := p.writeTable(ctx, &res, extract.PlayersStatsFolder, extract.PlayerStatsOutput, f); err != nil {
		return res, err
	}
	return res, p.upload(ctx, &res, p.layout.Processed(extract.PlayersStatsFolder), parquetExt)
}

func (p *Pipeline) multiTable(
	ctx context.Context,
	source, folder string,
	run func(ctx context.Context, paths []string) ([]extract.Table, error),
) (Result, error) {
	var res Result
	paths, err := extract.HTMLFiles(p.layout.Raw(source))
	if err != nil {
		return res, err
	}
	tables, err := run(ctx, paths)
	if err != nil {
		return res, err
	}
	for _, t := range tables {
		if err := p.writeTable(ctx, &res, folder, t.Spec.Output, t.Frame); err != nil {
			return res, fmt.Errorf("table %s: %w", t.Spec.ID, err)
		}
	}
	return res, p.upload(ctx, &res, p.layout.Processed(folder), parquetExt)
}

// --------------------------------------------------------------------------
// Outputs
// --------------------------------------------------------------------------

// writeTable writes f as parquet and loads it when a database is set. A
// table no document contained has no columns and is skipped.
func (p *Pipeline) writeTable(ctx context.Context, res *Result, folder, output string, f *frame.Frame) error {
	path := p.layout.Processed(folder, output)
	if err := store.WriteParquet(path, f); err != nil {
		if errors.Is(err, store.ErrNoColumns) {
			p.logger.Info("no records, table skipped", "table", output)
			return nil
		}
		return fmt.Errorf("write %s: %w", output, err)
	}
	res.TablesWritten++
	res.RowsWritten += f.Len()
	p.logger.Info("table written", "table", output, "rows", f.Len())

	if p.db == nil {
		return nil
	}
	loaded, err := load.Table(ctx, p.db, extract.Kind(folder, output), f)
	if err != nil {
		return err
	}
	res.RowsLoaded += loaded.Rows
	p.logger.Info("table loaded", "kind", loaded.Kind, "rows", loaded.Rows, "load_id", loaded.LoadID.String())
	return nil
}

func (p *Pipeline) writeRegistry(ctx context.Context, res *Result, folder, name string, v any) error {
	if err := registry.Write(p.layout.Raw(folder, name), v); err != nil {
		return err
	}
	p.logger.Info("registry written", "registry", name)
	return p.upload(ctx, res, p.layout.Raw(folder), jsonExt)
}

func (p *Pipeline) upload(ctx context.Context, res *Result, dir, ext string) error {
	if p.uploader == nil {
		return nil
	}
	n, err := p.uploader.UploadDir(ctx, dir, ext)
	res.FilesUploaded += n
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

