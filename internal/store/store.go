// Package store persists canonical records in Postgres with
// conflict-tolerant merge semantics. Every upsert is atomic per record and
// idempotent: re-applying an identical payload produces no observable
// change, a newer payload fully replaces the mutable columns.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/golexhq/golex-data/internal/config"
	"github.com/golexhq/golex-data/internal/provider"
)

// ErrNotFound is returned by point reads when no row matches.
var ErrNotFound = errors.New("store: not found")

// Store wraps a pgx pool with the fixture/team/stats persistence layer.
type Store struct {
	pool *pgxpool.Pool

	// ownedPrefix marks logo URLs that already live in owned storage.
	// A team upsert never reverts such a URL back to an upstream one.
	ownedPrefix string
}

// New creates a Store. ownedPrefix is the public base URL of owned object
// storage; empty disables the logo guard (nothing is ever considered owned).
func New(pool *pgxpool.Pool, ownedPrefix string) *Store {
	return &Store{pool: pool, ownedPrefix: ownedPrefix}
}

// UpsertFixture inserts a fixture or refreshes its mutable columns.
// Status and scores are always resent in full by the provider, so the
// conflict path takes them from the incoming payload unconditionally.
func (s *Store) UpsertFixture(ctx context.Context, f provider.Fixture) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+config.FixturesTable+` (
			id, league_id, home_team_id, away_team_id,
			match_date, status, home_score, away_score,
			venue, referee_id, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		ON CONFLICT (id) DO UPDATE SET
			league_id = EXCLUDED.league_id,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			match_date = EXCLUDED.match_date,
			status = EXCLUDED.status,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			venue = EXCLUDED.venue,
			referee_id = EXCLUDED.referee_id,
			updated_at = NOW()`,
		f.ID, nilEmpty(f.LeagueID), nilEmpty(f.HomeTeamID), nilEmpty(f.AwayTeamID),
		f.MatchDate, f.Status, f.HomeScore, f.AwayScore,
		nilEmpty(f.Venue), nilEmpty(f.RefereeID),
	)
	if err != nil {
		return fmt.Errorf("upsert fixture %s: %w", f.ID, err)
	}
	return nil
}

// UpsertTeam inserts a team or refreshes name/logo/venue. Fields the
// fixture payload leaves unset (league, founded) are only ever filled in,
// never cleared. The logo column is guarded: once it carries an
// owned-storage URL it is kept, whatever the payload says.
func (s *Store) UpsertTeam(ctx context.Context, t provider.Team) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+config.TeamsTable+` (
			id, name, logo_url, country, league_id, founded, venue, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			logo_url = CASE
				WHEN $8 <> '' AND `+config.TeamsTable+`.logo_url LIKE $8 || '%'
					THEN `+config.TeamsTable+`.logo_url
				ELSE COALESCE(EXCLUDED.logo_url, `+config.TeamsTable+`.logo_url)
			END,
			country = COALESCE(EXCLUDED.country, `+config.TeamsTable+`.country),
			league_id = COALESCE(EXCLUDED.league_id, `+config.TeamsTable+`.league_id),
			founded = COALESCE(EXCLUDED.founded, `+config.TeamsTable+`.founded),
			venue = COALESCE(EXCLUDED.venue, `+config.TeamsTable+`.venue),
			updated_at = NOW()`,
		t.ID, t.Name, nilEmpty(t.LogoURL), nilEmpty(t.Country),
		nilEmpty(t.LeagueID), t.Founded, nilEmpty(t.Venue),
		s.ownedPrefix,
	)
	if err != nil {
		return fmt.Errorf("upsert team %s: %w", t.ID, err)
	}
	return nil
}

// UpsertFixtureStats writes a full stats row for a fixture, replacing any
// previous row wholesale.
func (s *Store) UpsertFixtureStats(ctx context.Context, fixtureID string, st provider.FixtureStats) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+config.FixtureStatsTable+` (
			fixture_id, home_xg, away_xg, home_possession, away_possession,
			home_shots, away_shots, home_shots_on_target, away_shots_on_target,
			home_corners, away_corners, home_fouls, away_fouls, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW())
		ON CONFLICT (fixture_id) DO UPDATE SET
			home_xg = EXCLUDED.home_xg,
			away_xg = EXCLUDED.away_xg,
			home_possession = EXCLUDED.home_possession,
			away_possession = EXCLUDED.away_possession,
			home_shots = EXCLUDED.home_shots,
			away_shots = EXCLUDED.away_shots,
			home_shots_on_target = EXCLUDED.home_shots_on_target,
			away_shots_on_target = EXCLUDED.away_shots_on_target,
			home_corners = EXCLUDED.home_corners,
			away_corners = EXCLUDED.away_corners,
			home_fouls = EXCLUDED.home_fouls,
			away_fouls = EXCLUDED.away_fouls,
			updated_at = NOW()`,
		fixtureID,
		statParam(st.HomeXG), statParam(st.AwayXG),
		statParam(st.HomePossession), statParam(st.AwayPossession),
		statParam(st.HomeShots), statParam(st.AwayShots),
		statParam(st.HomeShotsOnTarget), statParam(st.AwayShotsOnTarget),
		statParam(st.HomeCorners), statParam(st.AwayCorners),
		statParam(st.HomeFouls), statParam(st.AwayFouls),
	)
	if err != nil {
		return fmt.Errorf("upsert fixture stats %s: %w", fixtureID, err)
	}
	return nil
}

// GetTeam returns a team by external id.
func (s *Store) GetTeam(ctx context.Context, id string) (provider.Team, error) {
	var t provider.Team
	var logo, country, leagueID, venue *string
	err := s.pool.QueryRow(ctx, "team_by_id", id).Scan(
		&t.ID, &t.Name, &logo, &country, &leagueID, &t.Founded, &venue,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return provider.Team{}, ErrNotFound
	}
	if err != nil {
		return provider.Team{}, fmt.Errorf("get team %s: %w", id, err)
	}
	t.LogoURL = deref(logo)
	t.Country = deref(country)
	t.LeagueID = deref(leagueID)
	t.Venue = deref(venue)
	return t, nil
}

// TeamsWithUpstreamLogo returns up to limit teams whose logo still points
// at the upstream provider (prefix match). Feeds the logo backfill.
func (s *Store) TeamsWithUpstreamLogo(ctx context.Context, prefix string, limit int) ([]provider.Team, error) {
	rows, err := s.pool.Query(ctx, "teams_with_upstream_logo", prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("teams with upstream logo: %w", err)
	}
	defer rows.Close()

	var teams []provider.Team
	for rows.Next() {
		var t provider.Team
		var logo, country, leagueID, venue *string
		if err := rows.Scan(&t.ID, &t.Name, &logo, &country, &leagueID, &t.Founded, &venue); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.LogoURL = deref(logo)
		t.Country = deref(country)
		t.LeagueID = deref(leagueID)
		t.Venue = deref(venue)
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// UpdateTeamLogo sets only the logo column. Used by the backfill so a
// concurrent full upsert cannot be clobbered by stale sibling fields.
func (s *Store) UpdateTeamLogo(ctx context.Context, id, logoURL string) error {
	tag, err := s.pool.Exec(ctx, "update_team_logo", id, logoURL)
	if err != nil {
		return fmt.Errorf("update team logo %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// statParam maps an unavailable stat to SQL NULL.
func statParam(v provider.StatValue) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Value
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
