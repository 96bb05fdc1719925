// Command ingest is the bbref-data collection and extraction CLI.
//
// Usage:
//
//	bbref-ingest run --upload --load
//	bbref-ingest collect seasons
//	bbref-ingest collect teams --force
//	bbref-ingest extract team-stats --workers 8 --load
//	bbref-ingest upload processed teams_stats
//	bbref-ingest schema
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/bbref-data/internal/collect"
	"github.com/albapepper/bbref-data/internal/config"
	"github.com/albapepper/bbref-data/internal/db"
	"github.com/albapepper/bbref-data/internal/extract"
	"github.com/albapepper/bbref-data/internal/load"
	"github.com/albapepper/bbref-data/internal/pipeline"
	"github.com/albapepper/bbref-data/internal/upload"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "bbref-ingest",
		Short: "basketball-reference collection and extraction CLI",
	}

	root.AddCommand(runCmd())
	root.AddCommand(collectCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(uploadCmd())
	root.AddCommand(schemaCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every pipeline-backed command.
type options struct {
	force   bool
	workers int
	upload  bool
	load    bool
}

// stageFunc picks one stage method off a built pipeline.
type stageFunc func(p *pipeline.Pipeline) func(ctx context.Context) (pipeline.Result, error)

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every collection and extraction stage in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, func(ctx context.Context, p *pipeline.Pipeline) error {
				result, err := p.Run(ctx)
				logErrors(result)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "Refetch pages already in the ledger")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Extraction workers (0 = EXTRACT_WORKERS)")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload raw pages and processed tables to S3")
	cmd.Flags().BoolVar(&opts.load, "load", false, "Load processed tables into Postgres")
	return cmd
}

// --------------------------------------------------------------------------
// collect command
// --------------------------------------------------------------------------

func collectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Download pages from basketball-reference",
	}
	cmd.AddCommand(collectStageCmd("seasons", "Fetch the league index page",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.CollectSeasons }))
	cmd.AddCommand(collectStageCmd("leagues", "Fetch every season's league page",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.CollectLeagues }))
	cmd.AddCommand(collectStageCmd("teams", "Fetch every team season page",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.CollectTeams }))
	cmd.AddCommand(collectStageCmd("players", "Fetch every player page",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.CollectPlayers }))
	return cmd
}

func collectStageCmd(use, short string, stage stageFunc) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage("collect "+use, opts, stage)
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "Refetch pages already in the ledger")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload fetched pages to S3")
	return cmd
}

// --------------------------------------------------------------------------
// extract command
// --------------------------------------------------------------------------

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract tables from collected pages",
	}
	cmd.AddCommand(extractStageCmd("seasons", "Extract the season table and league URLs",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.ExtractSeasons }))
	cmd.AddCommand(extractStageCmd("conferences", "Extract conference standings",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.ExtractConferences }))
	cmd.AddCommand(extractStageCmd("conference-stats", "Extract per-season team stat tables",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.ExtractConferenceStats }))
	cmd.AddCommand(extractStageCmd("teams", "Extract team page URLs",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.ExtractTeamURLs }))
	cmd.AddCommand(extractStageCmd("team-stats", "Extract team page tables",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.ExtractTeamStats }))
	cmd.AddCommand(extractStageCmd("players", "Extract player page URLs",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.ExtractPlayerURLs }))
	cmd.AddCommand(extractStageCmd("player-stats", "Extract player bio records",
		func(p *pipeline.Pipeline) func(context.Context) (pipeline.Result, error) { return p.ExtractPlayerStats }))
	return cmd
}

func extractStageCmd(use, short string, stage stageFunc) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage("extract "+use, opts, stage)
		},
	}
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Extraction workers (0 = EXTRACT_WORKERS)")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload written files to S3")
	cmd.Flags().BoolVar(&opts.load, "load", false, "Load written tables into Postgres")
	return cmd
}

// --------------------------------------------------------------------------
// upload command
// --------------------------------------------------------------------------

func uploadCmd() *cobra.Command {
	var exts []string
	cmd := &cobra.Command{
		Use:   "upload {raw|processed} <folder>",
		Short: "Upload a raw or processed folder to S3",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.UploadEnabled() {
				return fmt.Errorf("S3_BUCKET is required")
			}

			layout := cfg.Layout()
			var dir string
			switch args[0] {
			case "raw":
				dir = layout.Raw(args[1])
			case "processed":
				dir = layout.Processed(args[1])
			default:
				return fmt.Errorf("unknown tree %q (want raw or processed)", args[0])
			}

			uploader, err := upload.NewS3(ctx, cfg.S3Bucket, cfg.S3Prefix, logger)
			if err != nil {
				return err
			}
			start := time.Now()
			n, err := uploader.UploadDir(ctx, dir, exts...)
			logger.Info("Upload finished", "dir", dir, "files", n,
				"duration", time.Since(start).Round(time.Millisecond))
			return err
		},
	}
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "Only upload files with these extensions (e.g. .parquet)")
	return cmd
}

// --------------------------------------------------------------------------
// schema command
// --------------------------------------------------------------------------

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the records table and its indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			pool, err := db.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			if err := load.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			logger.Info("Schema ready", "table", config.RecordsTable)
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func runStage(name string, opts options, stage stageFunc) error {
	return runPipeline(opts, func(ctx context.Context, p *pipeline.Pipeline) error {
		start := time.Now()
		result, err := stage(p)(ctx)
		logger.Info("Stage finished", "stage", name,
			"duration", time.Since(start).Round(time.Millisecond),
			"summary", result.Summary())
		logErrors(result)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

func logErrors(result pipeline.Result) {
	for _, e := range result.Errors {
		logger.Error("page error", "error", e)
	}
}

// runPipeline handles config loading, the fetch ledger, optional S3 and
// database connections, and context cancellation.
func runPipeline(opts options, fn func(ctx context.Context, p *pipeline.Pipeline) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	layout := cfg.Layout()

	ledger, err := collect.OpenLedger(ctx, cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	fetcher := collect.NewFetcher(cfg.FetchTimeout, cfg.FetchDelay, cfg.UserAgent, logger)
	collector := collect.NewCollector(fetcher, ledger, layout, cfg.BaseURL, opts.force, logger)

	workers := cfg.ExtractWorkers
	if opts.workers > 0 {
		workers = opts.workers
	}
	extractor := extract.New(cfg.BaseURL, workers, logger)

	var uploader *upload.Uploader
	if opts.upload {
		if !cfg.UploadEnabled() {
			return fmt.Errorf("--upload needs S3_BUCKET")
		}
		uploader, err = upload.NewS3(ctx, cfg.S3Bucket, cfg.S3Prefix, logger)
		if err != nil {
			return err
		}
	}

	var beginner load.Beginner
	if opts.load {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		if err := load.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		beginner = pool
	}

	p := pipeline.New(layout, collector, extractor, uploader, beginner, logger)
	logger.Info("Pipeline ready",
		"run_id", p.RunID().String(),
		"raw_dir", layout.RawDir,
		"processed_dir", layout.ProcessedDir,
		"workers", workers,
		"upload", uploader != nil,
		"load", beginner != nil)
	return fn(ctx, p)
}
