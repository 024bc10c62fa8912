// Command sync is the GOLEX data synchronization CLI.
//
// Usage:
//
//	golex-sync fixtures --from 2025-10-01 --to 2025-10-07 --league 39
//	golex-sync logos --limit 50
//	golex-sync stats --fixture 1035045 --fixture 1035046
//	golex-sync run
//	golex-sync check
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

	"github.com/golexhq/golex-data/internal/config"
	"github.com/golexhq/golex-data/internal/db"
	"github.com/golexhq/golex-data/internal/provider/apifootball"
	"github.com/golexhq/golex-data/internal/storage"
	"github.com/golexhq/golex-data/internal/store"
	syncer "github.com/golexhq/golex-data/internal/sync"
)

const dateLayout = "2006-01-02"

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "golex-sync",
		Short: "GOLEX data synchronization CLI",
	}

	root.AddCommand(fixturesCmd())
	root.AddCommand(logosCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(runCmd())
	root.AddCommand(checkCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// fixtures command
// --------------------------------------------------------------------------

func fixturesCmd() *cobra.Command {
	var from, to string
	var leagues []string
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Sync fixtures for a date window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(func(ctx context.Context, cfg *config.Config, worker *syncer.Worker) error {
				dateFrom, dateTo, err := resolveWindow(from, to, cfg.SyncWindowDays)
				if err != nil {
					return err
				}
				result := worker.SyncFixtures(ctx, dateFrom, dateTo, leagues)
				logErrors(result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD, default today+window)")
	cmd.Flags().StringSliceVar(&leagues, "league", nil, "League IDs (default: major leagues)")
	return cmd
}

// --------------------------------------------------------------------------
// logos command
// --------------------------------------------------------------------------

func logosCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logos",
		Short: "Backfill team logos into owned storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(func(ctx context.Context, cfg *config.Config, worker *syncer.Worker) error {
				result, err := worker.SyncTeamLogos(ctx, limit)
				if err != nil {
					return err
				}
				logErrors(result)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum logos to process")
	return cmd
}

// --------------------------------------------------------------------------
// stats command
// --------------------------------------------------------------------------

func statsCmd() *cobra.Command {
	var fixtureIDs []string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Sync statistics for the given fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fixtureIDs) == 0 {
				return fmt.Errorf("at least one --fixture is required")
			}
			return runSync(func(ctx context.Context, cfg *config.Config, worker *syncer.Worker) error {
				result := worker.SyncFixtureStats(ctx, fixtureIDs)
				logErrors(result)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&fixtureIDs, "fixture", nil, "Fixture IDs to sync stats for")
	return cmd
}

// --------------------------------------------------------------------------
// run command: full manual pass (fixtures window + logo backfill)
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var logoLimit int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full sync pass: fixture window then logo backfill",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(func(ctx context.Context, cfg *config.Config, worker *syncer.Worker) error {
				dateFrom, dateTo, err := resolveWindow("", "", cfg.SyncWindowDays)
				if err != nil {
					return err
				}
				fixtures := worker.SyncFixtures(ctx, dateFrom, dateTo, nil)
				logErrors(fixtures)

				logos, err := worker.SyncTeamLogos(ctx, logoLimit)
				if err != nil {
					return err
				}
				logErrors(logos)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&logoLimit, "logo-limit", 100, "Maximum logos to backfill after the window sync")
	return cmd
}

// --------------------------------------------------------------------------
// check command: connectivity harness
// --------------------------------------------------------------------------

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify database, storage, and provider connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			failed := false
			for group, present := range cfg.Presence() {
				logger.Info("Config", "group", group, "configured", present)
			}

			// Database
			pool, err := db.New(ctx, cfg)
			if err != nil {
				logger.Error("Database check failed", "error", err)
				failed = true
			} else {
				logger.Info("Database check passed")
				defer pool.Close()
			}

			// Object storage: round-trip a probe object
			if cfg.StorageEndpoint != "" {
				if err := checkStorage(ctx, cfg); err != nil {
					logger.Error("Storage check failed", "error", err)
					failed = true
				} else {
					logger.Info("Storage check passed")
				}
			} else {
				logger.Info("Storage not configured, skipping check")
			}

			// Upstream provider
			if cfg.FootballAPIKey != "" {
				client := apifootball.NewClient(cfg.FootballAPIBaseURL, cfg.FootballAPIKey, cfg.FootballAPISeason, cfg.FootballAPIRPM, logger)
				if err := client.Ping(ctx); err != nil {
					logger.Error("Provider check failed", "error", err)
					failed = true
				} else {
					logger.Info("Provider check passed")
				}
			} else {
				logger.Info("Provider key not configured, skipping check")
			}

			if failed {
				return fmt.Errorf("one or more connectivity checks failed")
			}
			logger.Info("All connectivity checks passed")
			return nil
		},
	}
}

// checkStorage uploads, verifies, and deletes a small probe object.
func checkStorage(ctx context.Context, cfg *config.Config) error {
	sc, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("health/probe-%d.txt", time.Now().Unix())
	if _, err := sc.Upload(ctx, key, []byte("golex storage probe"), "text/plain"); err != nil {
		return err
	}
	ok, err := sc.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("probe object not found after upload")
	}
	if !sc.Delete(ctx, key) {
		return fmt.Errorf("probe object delete failed")
	}
	return nil
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runSync handles config loading, dependency wiring, and context
// cancellation for the sync commands.
func runSync(fn func(ctx context.Context, cfg *config.Config, worker *syncer.Worker) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.FootballAPIKey == "" {
		return fmt.Errorf("API_FOOTBALL_KEY is required")
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	st := store.New(pool.Pool, cfg.StoragePublicURL)
	source := apifootball.NewClient(cfg.FootballAPIBaseURL, cfg.FootballAPIKey, cfg.FootballAPISeason, cfg.FootballAPIRPM, logger)

	var mirror syncer.Mirror
	if cfg.StorageEndpoint != "" {
		sc, err := storage.New(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("create storage client: %w", err)
		}
		mirror = sc
	}

	worker, err := syncer.NewWorker(source, st, mirror, syncer.Options{
		Leagues:            cfg.SyncLeagues,
		UpstreamLogoPrefix: cfg.UpstreamLogoPrefix,
		CountEmptyStats:    cfg.CountEmptyStats,
		OpTimeout:          cfg.SyncOpTimeout,
	}, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	err = fn(ctx, cfg, worker)
	logger.Info("Command finished", "duration", time.Since(start).Round(time.Second))
	return err
}

// resolveWindow fills in window defaults: today..today+windowDays.
func resolveWindow(from, to string, windowDays int) (string, string, error) {
	today := time.Now().UTC()
	if from == "" {
		from = today.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, from); err != nil {
		return "", "", fmt.Errorf("invalid --from date %q", from)
	}
	if to == "" {
		to = today.AddDate(0, 0, windowDays).Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, to); err != nil {
		return "", "", fmt.Errorf("invalid --to date %q", to)
	}
	return from, to, nil
}

// logErrors logs each recorded failure cause of a run.
func logErrors(result syncer.Result) {
	for _, e := range result.Errors {
		logger.Error("sync error", "error", e)
	}
}
