package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"meli-trends/config"
	"meli-trends/models"
	"meli-trends/render"
	"meli-trends/scraper/mercadolibre"
	"meli-trends/services"
	"meli-trends/storage"
	"meli-trends/utils"
)

// collectStage fetches the source page and writes the raw snapshot. A failed
// or empty collection still leaves a header-only snapshot behind.
func collectStage(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	res, err := mercadolibre.NewCollector(fetcher, logger).Collect(ctx)
	if err != nil {
		logger.Error("[collect] %v", err)
	}

	if err := storage.WriteRaw(cfg.RawPath(), res.Listings); err != nil {
		logger.Error("[collect] Writing raw snapshot: %v", err)
		return &outputWriteError{err: err}
	}
	logger.Info("[collect] %d listings saved to %s", len(res.Listings), cfg.RawPath())
	return nil
}

func newFetcher(cfg *config.Config, logger *utils.Logger) (mercadolibre.Fetcher, error) {
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}

	switch cfg.CollectorMode {
	case "headless":
		f := &mercadolibre.HeadlessFetcher{
			URL:       cfg.SourceURL,
			Scrolls:   cfg.Scrolls,
			ChromeBin: cfg.ChromeBin,
			UserAgent: cfg.UserAgent,
			Logger:    logger,
			Retry:     retry,
		}
		if cfg.Screenshot {
			f.ScreenshotPath = cfg.ScreenshotPath()
		}
		return f, nil
	case "static":
		return &mercadolibre.StaticFetcher{
			URL:            cfg.SourceURL,
			Pages:          cfg.Pages,
			UserAgent:      cfg.UserAgent,
			RatePerSecond:  cfg.RatePerSecond,
			MaxConcurrency: cfg.MaxConcurrency,
			RespectRobots:  cfg.RespectRobots,
			Logger:         logger,
			Retry:          retry,
		}, nil
	default:
		return nil, fmt.Errorf("unknown collector mode %q (want headless or static)", cfg.CollectorMode)
	}
}

// rankStage reads the raw snapshot, ranks it, writes the processed snapshot
// and prints the run summary to out.
func rankStage(ctx context.Context, cfg *config.Config, logger *utils.Logger, out io.Writer) error {
	rankerCfg := cfg.RankerConfig()
	if err := rankerCfg.Validate(); err != nil {
		return err
	}

	records, stats, err := storage.ReadRecords(cfg.RawPath())
	switch {
	case errors.Is(err, storage.ErrSnapshotMissing):
		logger.Warn("[rank] No raw snapshot at %s, treating it as empty", cfg.RawPath())
	case err != nil:
		logger.Error("[rank] Reading raw snapshot: %v", err)
	case stats.FileError != nil:
		logger.Error("[rank] Raw snapshot unreadable, treating it as empty: %v", stats.FileError)
	case stats.SkippedRows > 0:
		logger.Warn("[rank] Skipped %d unparseable rows in %s", stats.SkippedRows, cfg.RawPath())
	}

	result := services.NewRanker(rankerCfg, logger).Rank(records)
	result.Stats.Malformed += stats.SkippedRows
	result.Stats.RawRows += stats.SkippedRows

	if err := storage.WriteProcessed(cfg.ProcessedPath(), result.Listings); err != nil {
		logger.Error("[rank] Writing processed snapshot: %v", err)
		return &outputWriteError{err: err}
	}
	logger.Info("[rank] %d listings saved to %s", len(result.Listings), cfg.ProcessedPath())

	mirrorSnapshot(ctx, cfg, logger, result.Listings)

	insights := services.NewInsightService(logger)
	insights.Print(out, insights.Generate(result))
	return nil
}

// mirrorSnapshot copies the processed snapshot into the configured database.
// Mirror failures are logged only; the CSV remains the source of truth.
func mirrorSnapshot(ctx context.Context, cfg *config.Config, logger *utils.Logger, listings []*models.Listing) {
	mirror, err := openMirror(ctx, cfg)
	if err != nil {
		logger.Warn("[mirror] %v", err)
		return
	}
	if mirror == nil {
		return
	}
	defer mirror.Close()

	if err := mirror.Replace(ctx, listings); err != nil {
		logger.Warn("[mirror] Replace failed: %v", err)
		return
	}
	logger.Info("[mirror] %s snapshot updated with %d listings", cfg.SnapshotMirror, len(listings))
}

func openMirror(ctx context.Context, cfg *config.Config) (storage.SnapshotMirror, error) {
	switch cfg.SnapshotMirror {
	case "", "none":
		return nil, nil
	case "sqlite":
		return storage.NewSQLiteWriter(ctx, cfg.SQLitePath)
	case "postgres":
		return storage.NewPostgresWriter(ctx, cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown snapshot mirror %q", cfg.SnapshotMirror)
	}
}

// renderStage turns the processed snapshot into the report.
func renderStage(cfg *config.Config, logger *utils.Logger, now time.Time) error {
	r := render.NewRenderer(logger, cfg.MinifyReport)
	if _, err := r.RenderFile(cfg.ProcessedPath(), cfg.ReportPath(), now); err != nil {
		logger.Error("[render] %v", err)
		return &outputWriteError{err: err}
	}
	return nil
}
