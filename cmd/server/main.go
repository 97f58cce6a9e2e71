// Package main is the entry point for the bookhound booking scraper.
// It drives the booking app on an Android device through a WebDriver
// automation server, extracts normalized booking records from captured
// view hierarchies, stores them in SQLite and serves them over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/athoward/bookhound/internal/config"
	"github.com/athoward/bookhound/internal/database"
	"github.com/athoward/bookhound/internal/driver"
	"github.com/athoward/bookhound/internal/extract"
	"github.com/athoward/bookhound/internal/modules/bookings"
	"github.com/athoward/bookhound/internal/scheduler"
	"github.com/athoward/bookhound/internal/server"
	"github.com/athoward/bookhound/internal/session"
	"github.com/athoward/bookhound/internal/snapshot"
	"github.com/athoward/bookhound/pkg/logger"
)

// deviceRunner opens a device automation session around each crawl run,
// so the app is attached only while a scrape is actually in flight.
type deviceRunner struct {
	drv    *driver.Client
	runner *session.Runner
	caps   map[string]any
	log    zerolog.Logger
}

func (d *deviceRunner) Run(ctx context.Context) error {
	if err := d.drv.StartSession(ctx, d.caps); err != nil {
		return err
	}
	defer func() {
		// The run ctx may already be cancelled; give teardown its own deadline.
		endCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := d.drv.EndSession(endCtx); err != nil {
			d.log.Warn().Err(err).Msg("Failed to end automation session")
		}
	}()

	return d.runner.Run(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting bookhound")

	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "bookings",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open bookings database")
	}
	defer db.Close()

	repo := bookings.NewRepository(db.Conn(), log)
	if err := repo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate bookings database")
	}

	// Snapshot archive is only wired when dumping is enabled; the runner
	// treats a nil archive as "dumping off".
	var archive *snapshot.Archive
	if cfg.DumpSnapshots {
		archive, err = snapshot.NewArchive(cfg.SnapshotDir(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create snapshot archive")
		}
	}

	extractor := extract.New(extract.DefaultConfig(cfg.LanguagePair), log)
	drv := driver.New(driver.Config{BaseURL: cfg.DriverURL}, log)
	events := session.NewBroadcaster()

	runnerCfg := session.DefaultRunnerConfig()
	runnerCfg.DumpSnapshots = cfg.DumpSnapshots
	runner := session.NewRunner(runnerCfg, drv, repo, extractor, archive, events, log)

	// appCtx bounds every scrape run; cancelling it stops an in-flight
	// crawl at the next state transition.
	appCtx, stopRuns := context.WithCancel(context.Background())
	defer stopRuns()

	scrapeJob := scheduler.NewScrapeJob(appCtx, &deviceRunner{
		drv:    drv,
		runner: runner,
		caps:   driver.AndroidCapabilities(cfg.DeviceName, cfg.AppPackage, cfg.AppActivity),
		log:    log,
	}, log)

	sched := scheduler.New(log)
	if cfg.ScrapeCron != "" {
		if err := sched.AddJob(cfg.ScrapeCron, scrapeJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.ScrapeCron).Msg("Failed to register scrape schedule")
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Info().Msg("No scrape schedule configured; scrapes run on demand only")
	}

	srv := server.New(server.Config{
		Log:     log,
		DB:      db,
		Repo:    repo,
		Events:  events,
		Trigger: scrapeJob,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")
	stopRuns()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
