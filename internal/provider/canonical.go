// Package provider defines canonical data types that upstream providers
// normalize into. These structs are the contract between the provider
// client and the sync engine: the mapper outputs them and the store
// persists them. The Postgres schema never changes when a provider does.
package provider

import "time"

// Fixture is the canonical fixture shape written to the fixtures table.
// ID is the provider's stable external identifier.
type Fixture struct {
	ID         string     `json:"id"`
	LeagueID   string     `json:"league_id"`
	HomeTeamID string     `json:"home_team_id"`
	AwayTeamID string     `json:"away_team_id"`
	MatchDate  time.Time  `json:"match_date"`
	Status     string     `json:"status"` // provider short code: NS, 1H, FT, PST, CANC, ...
	HomeScore  *int       `json:"home_score,omitempty"`
	AwayScore  *int       `json:"away_score,omitempty"`
	Venue      string     `json:"venue,omitempty"`
	RefereeID  string     `json:"referee_id,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Team is the canonical team shape written to the teams table.
// LogoURL carries either the upstream provider URL or an owned-storage URL;
// the two are distinguishable by prefix.
type Team struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LogoURL  string `json:"logo_url,omitempty"`
	Country  string `json:"country,omitempty"`
	LeagueID string `json:"league_id,omitempty"`
	Founded  *int   `json:"founded,omitempty"`
	Venue    string `json:"venue,omitempty"`
}

// FixtureStats is the canonical per-fixture statistics row. One row per
// fixture; an upsert replaces all fields. The xG pair is reserved for a
// richer data source and is always unavailable today.
type FixtureStats struct {
	HomeXG               StatValue `json:"home_xg"`
	AwayXG               StatValue `json:"away_xg"`
	HomePossession       StatValue `json:"home_possession"`
	AwayPossession       StatValue `json:"away_possession"`
	HomeShots            StatValue `json:"home_shots"`
	AwayShots            StatValue `json:"away_shots"`
	HomeShotsOnTarget    StatValue `json:"home_shots_on_target"`
	AwayShotsOnTarget    StatValue `json:"away_shots_on_target"`
	HomeCorners          StatValue `json:"home_corners"`
	AwayCorners          StatValue `json:"away_corners"`
	HomeFouls            StatValue `json:"home_fouls"`
	AwayFouls            StatValue `json:"away_fouls"`
}

// Empty reports whether no stat in the row carries a value.
func (s FixtureStats) Empty() bool {
	for _, v := range []StatValue{
		s.HomeXG, s.AwayXG,
		s.HomePossession, s.AwayPossession,
		s.HomeShots, s.AwayShots,
		s.HomeShotsOnTarget, s.AwayShotsOnTarget,
		s.HomeCorners, s.AwayCorners,
		s.HomeFouls, s.AwayFouls,
	} {
		if v.Valid {
			return false
		}
	}
	return true
}
