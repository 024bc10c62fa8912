package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/golexhq/golex-data/internal/provider"
)

// --------------------------------------------------------------------------
// Raw payload shapes. API-Football nests a fixture across several
// objects; any of them can be absent or null, so everything below the
// envelope is a pointer.
// --------------------------------------------------------------------------

// FixtureEnvelope is one entry of the /fixtures response collection.
type FixtureEnvelope struct {
	Fixture *RawFixture `json:"fixture"`
	League  *RawLeague  `json:"league"`
	Teams   *RawTeams   `json:"teams"`
	Goals   *RawGoals   `json:"goals"`
}

// RawFixture is the inner fixture object.
type RawFixture struct {
	ID      int       `json:"id"`
	Date    string    `json:"date"` // RFC3339
	Referee *string   `json:"referee"`
	Venue   *RawVenue `json:"venue"`
	Status  *struct {
		Long    string `json:"long"`
		Short   string `json:"short"`
		Elapsed *int   `json:"elapsed"`
	} `json:"status"`
}

type RawVenue struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
	City *string `json:"city"`
}

type RawLeague struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo"`
	Season  int    `json:"season"`
}

type RawTeams struct {
	Home *RawTeam `json:"home"`
	Away *RawTeam `json:"away"`
}

type RawTeam struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Logo    string  `json:"logo"`
	Country *string `json:"country"`
}

type RawGoals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// TeamStatistics is one entry of the /fixtures/statistics response: one
// team's labeled metric list.
type TeamStatistics struct {
	Team       *RawTeam             `json:"team"`
	Statistics []provider.StatEntry `json:"statistics"`
}

// --------------------------------------------------------------------------
// Endpoints
// --------------------------------------------------------------------------

// GetFixtures fetches all fixtures for a league within a date window.
// Dates are YYYY-MM-DD.
func (c *Client) GetFixtures(ctx context.Context, leagueID, dateFrom, dateTo string) ([]FixtureEnvelope, error) {
	params := url.Values{
		"league": {leagueID},
		"from":   {dateFrom},
		"to":     {dateTo},
		"season": {c.season},
	}

	items, err := c.getPaginated(ctx, "/fixtures", params)
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures league %s: %w", leagueID, err)
	}

	fixtures := make([]FixtureEnvelope, 0, len(items))
	for _, raw := range items {
		var env FixtureEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode fixture entry: %w", err)
		}
		fixtures = append(fixtures, env)
	}

	c.logger.Info("Fetched fixtures", "league", leagueID, "from", dateFrom, "to", dateTo, "count", len(fixtures))
	return fixtures, nil
}

// GetFixtureStatistics fetches the per-team statistic lists for a fixture.
// Returns home and away entries in response order; pre-match the response
// is empty and both slices are nil.
func (c *Client) GetFixtureStatistics(ctx context.Context, fixtureID string) (home, away []provider.StatEntry, err error) {
	resp, err := c.get(ctx, "/fixtures/statistics", url.Values{"fixture": {fixtureID}})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch statistics fixture %s: %w", fixtureID, err)
	}

	var sides []TeamStatistics
	if err := json.Unmarshal(resp.Response, &sides); err != nil {
		return nil, nil, fmt.Errorf("decode statistics fixture %s: %w", fixtureID, err)
	}

	if len(sides) > 0 {
		home = sides[0].Statistics
	}
	if len(sides) > 1 {
		away = sides[1].Statistics
	}
	return home, away, nil
}
