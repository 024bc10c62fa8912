package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golexhq/golex-data/internal/provider"
	"github.com/golexhq/golex-data/internal/provider/apifootball"
)

// FixtureSource fetches raw upstream payloads. Implemented by the
// API-Football client.
type FixtureSource interface {
	GetFixtures(ctx context.Context, leagueID, dateFrom, dateTo string) ([]apifootball.FixtureEnvelope, error)
	GetFixtureStatistics(ctx context.Context, fixtureID string) (home, away []provider.StatEntry, err error)
}

// Store persists canonical records with idempotent upsert semantics.
type Store interface {
	UpsertFixture(ctx context.Context, f provider.Fixture) error
	UpsertTeam(ctx context.Context, t provider.Team) error
	UpsertFixtureStats(ctx context.Context, fixtureID string, s provider.FixtureStats) error
	TeamsWithUpstreamLogo(ctx context.Context, prefix string, limit int) ([]provider.Team, error)
	UpdateTeamLogo(ctx context.Context, id, logoURL string) error
}

// Mirror copies a remote asset into owned storage, skipping assets already
// present under their canonical key.
type Mirror interface {
	MirrorTeamLogo(ctx context.Context, teamID, srcURL string) (string, error)
}

// Options are the policy knobs of a Worker.
type Options struct {
	// Leagues synced when a window sync is invoked without an explicit set.
	Leagues []string

	// UpstreamLogoPrefix identifies team logos not yet mirrored into
	// owned storage.
	UpstreamLogoPrefix string

	// CountEmptyStats controls whether a fixture whose statistics response
	// carries no extractable value still counts as synced. The upstream
	// returns an empty response pre-match, so true matches a nightly
	// catch-all run; false reports such fixtures as skipped.
	CountEmptyStats bool

	// OpTimeout bounds each per-item unit of work (fetch, upsert, mirror).
	// Under the scheduler the run context lives as long as the process, so
	// without this a single hung call stalls the whole batch. Zero means
	// the default.
	OpTimeout time.Duration
}

const defaultOpTimeout = 60 * time.Second

// Worker runs sync operations against injected collaborators. Safe for
// concurrent use: overlapping runs converge because upserts are idempotent
// per key.
type Worker struct {
	source FixtureSource
	store  Store
	mirror Mirror
	opts   Options
	logger *slog.Logger
}

// NewWorker wires a Worker. source and store are required; mirror may be
// nil if logo backfill is never invoked.
func NewWorker(source FixtureSource, store Store, mirror Mirror, opts Options, logger *slog.Logger) (*Worker, error) {
	if source == nil {
		return nil, fmt.Errorf("sync: fixture source is required")
	}
	if store == nil {
		return nil, fmt.Errorf("sync: store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	return &Worker{source: source, store: store, mirror: mirror, opts: opts, logger: logger}, nil
}

// opCtx derives a bounded context for one unit of work.
func (w *Worker) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.opts.OpTimeout)
}

// --------------------------------------------------------------------------
// Fixture window sync
// --------------------------------------------------------------------------

// SyncFixtures pulls fixtures for each league in the window [dateFrom,
// dateTo] (YYYY-MM-DD) and upserts them together with both participant
// teams. Leagues default to the configured major-league set.
//
// Counters track fixtures. A league fetch failure is recorded and the next
// league proceeds; a team upsert failure is recorded but leaves the
// already-upserted fixture in place, and the next run heals it.
func (w *Worker) SyncFixtures(ctx context.Context, dateFrom, dateTo string, leagues []string) Result {
	start := time.Now()
	result := newResult("fixtures")

	if len(leagues) == 0 {
		leagues = w.opts.Leagues
	}
	w.logger.Info("Syncing fixtures", "from", dateFrom, "to", dateTo, "leagues", len(leagues))

	for _, leagueID := range leagues {
		fetchCtx, cancel := w.opCtx(ctx)
		envs, err := w.source.GetFixtures(fetchCtx, leagueID, dateFrom, dateTo)
		cancel()
		if err != nil {
			w.logger.Error("League fetch failed", "league", leagueID, "error", err)
			result.AddErrorf("league %s: %v", leagueID, err)
			continue
		}

		for _, env := range envs {
			result.Attempted++
			itemCtx, cancel := w.opCtx(ctx)
			err := w.syncOneFixture(itemCtx, env, &result)
			cancel()
			if err != nil {
				result.Failed++
				result.AddError(err.Error())
				continue
			}
			result.Succeeded++
		}
	}

	result.Duration = time.Since(start)
	w.logger.Info("Fixture sync complete", "summary", result.Summary())
	return result
}

// syncOneFixture maps and upserts a single fixture plus its teams. The
// returned error covers the fixture itself; team failures are recorded on
// the result but do not fail the fixture.
func (w *Worker) syncOneFixture(ctx context.Context, env apifootball.FixtureEnvelope, result *Result) error {
	fixture, err := apifootball.MapFixture(env)
	if err != nil {
		w.logger.Error("Fixture mapping failed", "error", err)
		return fmt.Errorf("map fixture: %v", err)
	}

	if err := w.store.UpsertFixture(ctx, fixture); err != nil {
		w.logger.Error("Fixture upsert failed", "fixture", fixture.ID, "error", err)
		return fmt.Errorf("fixture %s: %v", fixture.ID, err)
	}

	if env.Teams != nil {
		w.upsertSide(ctx, env.Teams.Home, fixture.ID, result)
		w.upsertSide(ctx, env.Teams.Away, fixture.ID, result)
	}
	return nil
}

func (w *Worker) upsertSide(ctx context.Context, raw *apifootball.RawTeam, fixtureID string, result *Result) {
	team, ok := apifootball.MapTeam(raw)
	if !ok {
		return
	}
	if err := w.store.UpsertTeam(ctx, team); err != nil {
		w.logger.Error("Team upsert failed", "team", team.ID, "fixture", fixtureID, "error", err)
		result.AddErrorf("team %s (fixture %s): %v", team.ID, fixtureID, err)
	}
}

// --------------------------------------------------------------------------
// Logo backfill
// --------------------------------------------------------------------------

// SyncTeamLogos mirrors up to limit team logos still hosted upstream into
// owned storage and promotes each team's logo reference to the owned URL.
// The promotion is a direct field update, not a full upsert, so concurrent
// fixture syncs cannot be clobbered.
//
// The selection query is setup: its failure surfaces as an error. Per-team
// failures are isolated and leave the logo reference unchanged, so a
// future backfill retries them.
func (w *Worker) SyncTeamLogos(ctx context.Context, limit int) (Result, error) {
	start := time.Now()
	result := newResult("logos")

	if w.mirror == nil {
		return result, fmt.Errorf("sync: mirror is not configured")
	}

	selectCtx, cancel := w.opCtx(ctx)
	teams, err := w.store.TeamsWithUpstreamLogo(selectCtx, w.opts.UpstreamLogoPrefix, limit)
	cancel()
	if err != nil {
		return result, fmt.Errorf("select teams for backfill: %w", err)
	}
	w.logger.Info("Syncing team logos", "limit", limit, "pending", len(teams))

	for _, team := range teams {
		result.Attempted++

		itemCtx, cancel := w.opCtx(ctx)
		ownedURL, err := w.mirror.MirrorTeamLogo(itemCtx, team.ID, team.LogoURL)
		if err != nil {
			cancel()
			w.logger.Error("Logo mirror failed", "team", team.ID, "error", err)
			result.Failed++
			result.AddErrorf("team %s: %v", team.ID, err)
			continue
		}

		err = w.store.UpdateTeamLogo(itemCtx, team.ID, ownedURL)
		cancel()
		if err != nil {
			w.logger.Error("Logo update failed", "team", team.ID, "error", err)
			result.Failed++
			result.AddErrorf("team %s: %v", team.ID, err)
			continue
		}

		result.Succeeded++
		w.logger.Info("Logo mirrored", "team", team.ID, "name", team.Name, "url", ownedURL)
	}

	result.Duration = time.Since(start)
	w.logger.Info("Logo backfill complete", "summary", result.Summary())
	return result, nil
}

// --------------------------------------------------------------------------
// Fixture statistics sync
// --------------------------------------------------------------------------

// SyncFixtureStats fetches and upserts statistics for each fixture id,
// isolating failures per id. Depending on policy, fixtures whose response
// carries no extractable stat count as synced or as skipped.
func (w *Worker) SyncFixtureStats(ctx context.Context, fixtureIDs []string) Result {
	start := time.Now()
	result := newResult("stats")

	w.logger.Info("Syncing fixture stats", "fixtures", len(fixtureIDs))

	for _, id := range fixtureIDs {
		result.Attempted++

		itemCtx, cancel := w.opCtx(ctx)
		home, away, err := w.source.GetFixtureStatistics(itemCtx, id)
		if err != nil {
			cancel()
			w.logger.Error("Stats fetch failed", "fixture", id, "error", err)
			result.Failed++
			result.AddErrorf("fixture %s: %v", id, err)
			continue
		}

		stats := apifootball.MapFixtureStats(home, away)
		if stats.Empty() && !w.opts.CountEmptyStats {
			cancel()
			w.logger.Info("No extractable stats, skipping", "fixture", id)
			result.Skipped++
			continue
		}

		err = w.store.UpsertFixtureStats(itemCtx, id, stats)
		cancel()
		if err != nil {
			w.logger.Error("Stats upsert failed", "fixture", id, "error", err)
			result.Failed++
			result.AddErrorf("fixture %s: %v", id, err)
			continue
		}
		result.Succeeded++
	}

	result.Duration = time.Since(start)
	w.logger.Info("Stats sync complete", "summary", result.Summary())
	return result
}
