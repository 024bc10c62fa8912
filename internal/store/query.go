package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golexhq/golex-data/internal/config"
	"github.com/golexhq/golex-data/internal/provider"
)

const defaultListLimit = 100

// FixtureFilter is a conjunction of optional fixture predicates. Zero
// values are skipped; Limit defaults to 100.
type FixtureFilter struct {
	DateFrom time.Time
	DateTo   time.Time
	LeagueID string
	Status   string
	Limit    int
}

// buildFixtureQuery composes the filtered list query with positional
// parameters. Split out from ListFixtures so composition is testable
// without a database.
func buildFixtureQuery(f FixtureFilter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, league_id, home_team_id, away_team_id,
		match_date, status, home_score, away_score, venue, referee_id, updated_at
		FROM ` + config.FixturesTable + ` WHERE 1=1`)

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.DateFrom.IsZero() {
		sb.WriteString(" AND match_date >= " + arg(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		sb.WriteString(" AND match_date <= " + arg(f.DateTo))
	}
	if f.LeagueID != "" {
		sb.WriteString(" AND league_id = " + arg(f.LeagueID))
	}
	if f.Status != "" {
		sb.WriteString(" AND status = " + arg(f.Status))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	sb.WriteString(" ORDER BY match_date ASC LIMIT " + arg(limit))

	return sb.String(), args
}

// ListFixtures returns fixtures matching every set predicate, ordered by
// scheduled time ascending and capped at the filter's limit.
func (s *Store) ListFixtures(ctx context.Context, f FixtureFilter) ([]provider.Fixture, error) {
	query, args := buildFixtureQuery(f)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []provider.Fixture
	for rows.Next() {
		var fx provider.Fixture
		var leagueID, homeID, awayID, venue, referee *string
		if err := rows.Scan(
			&fx.ID, &leagueID, &homeID, &awayID,
			&fx.MatchDate, &fx.Status, &fx.HomeScore, &fx.AwayScore,
			&venue, &referee, &fx.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		fx.LeagueID = deref(leagueID)
		fx.HomeTeamID = deref(homeID)
		fx.AwayTeamID = deref(awayID)
		fx.Venue = deref(venue)
		fx.RefereeID = deref(referee)
		fixtures = append(fixtures, fx)
	}
	return fixtures, rows.Err()
}
