package apifootball

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golexhq/golex-data/internal/provider"
)

// statusNotStarted is the provider short code for an unplayed fixture,
// used when the payload omits the status object entirely.
const statusNotStarted = "NS"

// MapFixture converts a raw fixture envelope into the canonical record.
// Every nested object is optional: absent objects map to zero/null fields.
// The only hard requirement is the external fixture id; without it the
// record has no key and the entry is unusable.
func MapFixture(env FixtureEnvelope) (provider.Fixture, error) {
	if env.Fixture == nil || env.Fixture.ID == 0 {
		return provider.Fixture{}, fmt.Errorf("fixture entry has no id")
	}

	f := provider.Fixture{
		ID:     strconv.Itoa(env.Fixture.ID),
		Status: statusNotStarted,
	}

	if env.Fixture.Date != "" {
		if t, err := time.Parse(time.RFC3339, env.Fixture.Date); err == nil {
			f.MatchDate = t.UTC()
		}
	}
	if env.Fixture.Status != nil && env.Fixture.Status.Short != "" {
		f.Status = env.Fixture.Status.Short
	}
	if env.Fixture.Referee != nil {
		f.RefereeID = *env.Fixture.Referee
	}
	if env.Fixture.Venue != nil && env.Fixture.Venue.Name != nil {
		f.Venue = *env.Fixture.Venue.Name
	}

	if env.League != nil && env.League.ID != 0 {
		f.LeagueID = strconv.Itoa(env.League.ID)
	}
	if env.Teams != nil {
		if env.Teams.Home != nil && env.Teams.Home.ID != 0 {
			f.HomeTeamID = strconv.Itoa(env.Teams.Home.ID)
		}
		if env.Teams.Away != nil && env.Teams.Away.ID != 0 {
			f.AwayTeamID = strconv.Itoa(env.Teams.Away.ID)
		}
	}
	if env.Goals != nil {
		f.HomeScore = env.Goals.Home
		f.AwayScore = env.Goals.Away
	}

	return f, nil
}

// MapTeam converts one side of a fixture payload into a canonical team.
// ok is false when the side is absent.
//
// League id, founding year, and venue are deliberately left unset: the
// fixture payload does not carry them, and the richer team payload that
// does is mapped elsewhere. The upsert fills the gaps when the full
// payload arrives.
func MapTeam(t *RawTeam) (provider.Team, bool) {
	if t == nil || t.ID == 0 {
		return provider.Team{}, false
	}

	team := provider.Team{
		ID:      strconv.Itoa(t.ID),
		Name:    t.Name,
		LogoURL: t.Logo,
	}
	if t.Country != nil {
		team.Country = *t.Country
	}
	return team, true
}

// MapFixtureStats assembles a canonical stats row from the two labeled
// metric lists of a statistics response. The xG pair stays unavailable
// because the free tier never returns it.
func MapFixtureStats(home, away []provider.StatEntry) provider.FixtureStats {
	return provider.FixtureStats{
		HomePossession:    provider.ExtractStat(home, "Ball Possession"),
		AwayPossession:    provider.ExtractStat(away, "Ball Possession"),
		HomeShots:         provider.ExtractStat(home, "Total Shots"),
		AwayShots:         provider.ExtractStat(away, "Total Shots"),
		HomeShotsOnTarget: provider.ExtractStat(home, "Shots on Goal"),
		AwayShotsOnTarget: provider.ExtractStat(away, "Shots on Goal"),
		HomeCorners:       provider.ExtractStat(home, "Corner Kicks"),
		AwayCorners:       provider.ExtractStat(away, "Corner Kicks"),
		HomeFouls:         provider.ExtractStat(home, "Fouls"),
		AwayFouls:         provider.ExtractStat(away, "Fouls"),
	}
}
