package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/golexhq/golex-data/internal/provider"
	"github.com/golexhq/golex-data/internal/provider/apifootball"
)

// MockSource is a mock of the FixtureSource interface.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) GetFixtures(ctx context.Context, leagueID, dateFrom, dateTo string) ([]apifootball.FixtureEnvelope, error) {
	args := m.Called(ctx, leagueID, dateFrom, dateTo)
	return args.Get(0).([]apifootball.FixtureEnvelope), args.Error(1)
}

func (m *MockSource) GetFixtureStatistics(ctx context.Context, fixtureID string) ([]provider.StatEntry, []provider.StatEntry, error) {
	args := m.Called(ctx, fixtureID)
	var home, away []provider.StatEntry
	if v := args.Get(0); v != nil {
		home = v.([]provider.StatEntry)
	}
	if v := args.Get(1); v != nil {
		away = v.([]provider.StatEntry)
	}
	return home, away, args.Error(2)
}

// MockStore is a mock of the Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertFixture(ctx context.Context, f provider.Fixture) error {
	return m.Called(ctx, f).Error(0)
}
func (m *MockStore) UpsertTeam(ctx context.Context, t provider.Team) error {
	return m.Called(ctx, t).Error(0)
}
func (m *MockStore) UpsertFixtureStats(ctx context.Context, fixtureID string, s provider.FixtureStats) error {
	return m.Called(ctx, fixtureID, s).Error(0)
}
func (m *MockStore) TeamsWithUpstreamLogo(ctx context.Context, prefix string, limit int) ([]provider.Team, error) {
	args := m.Called(ctx, prefix, limit)
	var teams []provider.Team
	if v := args.Get(0); v != nil {
		teams = v.([]provider.Team)
	}
	return teams, args.Error(1)
}
func (m *MockStore) UpdateTeamLogo(ctx context.Context, id, logoURL string) error {
	return m.Called(ctx, id, logoURL).Error(0)
}

// MockMirror is a mock of the Mirror interface.
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) MirrorTeamLogo(ctx context.Context, teamID, srcURL string) (string, error) {
	args := m.Called(ctx, teamID, srcURL)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func envelope(id, leagueID, homeID, awayID int) apifootball.FixtureEnvelope {
	return apifootball.FixtureEnvelope{
		Fixture: &apifootball.RawFixture{ID: id, Date: "2026-09-05T14:00:00+00:00"},
		League:  &apifootball.RawLeague{ID: leagueID},
		Teams: &apifootball.RawTeams{
			Home: &apifootball.RawTeam{ID: homeID, Name: "Home FC"},
			Away: &apifootball.RawTeam{ID: awayID, Name: "Away FC"},
		},
	}
}

func TestNewWorker(t *testing.T) {
	_, err := NewWorker(nil, new(MockStore), nil, Options{}, testLogger())
	assert.Error(t, err)

	_, err = NewWorker(new(MockSource), nil, nil, Options{}, testLogger())
	assert.Error(t, err)

	w, err := NewWorker(new(MockSource), new(MockStore), nil, Options{}, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, w)
}

func TestSyncFixtures(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts every fixture with both teams", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		envs := []apifootball.FixtureEnvelope{
			envelope(1, 39, 40, 50),
			envelope(2, 39, 40, 66),
		}
		source.On("GetFixtures", mock.Anything, "39", "2026-09-05", "2026-09-06").Return(envs, nil).Once()
		store.On("UpsertFixture", mock.Anything, mock.Anything).Return(nil).Times(2)
		store.On("UpsertTeam", mock.Anything, mock.Anything).Return(nil).Times(4)

		w, err := NewWorker(source, store, nil, Options{}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtures(ctx, "2026-09-05", "2026-09-06", []string{"39"})

		assert.Equal(t, 2, result.Attempted)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 0, result.Failed)
		assert.Empty(t, result.Errors)
		source.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("an unmappable entry fails alone", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		envs := []apifootball.FixtureEnvelope{
			envelope(1, 39, 40, 50),
			{}, // no fixture id
			envelope(3, 39, 40, 66),
		}
		source.On("GetFixtures", mock.Anything, "39", "2026-09-05", "2026-09-06").Return(envs, nil).Once()
		store.On("UpsertFixture", mock.Anything, mock.Anything).Return(nil).Times(2)
		store.On("UpsertTeam", mock.Anything, mock.Anything).Return(nil).Times(4)

		w, err := NewWorker(source, store, nil, Options{}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtures(ctx, "2026-09-05", "2026-09-06", []string{"39"})

		assert.Equal(t, 3, result.Attempted)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		assert.Len(t, result.Errors, 1)
		store.AssertExpectations(t)
	})

	t.Run("a failing league does not abort the rest", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtures", mock.Anything, "39", "2026-09-05", "2026-09-06").
			Return([]apifootball.FixtureEnvelope{}, errors.New("upstream 500")).Once()
		source.On("GetFixtures", mock.Anything, "140", "2026-09-05", "2026-09-06").
			Return([]apifootball.FixtureEnvelope{envelope(1, 140, 541, 529)}, nil).Once()
		store.On("UpsertFixture", mock.Anything, mock.Anything).Return(nil).Once()
		store.On("UpsertTeam", mock.Anything, mock.Anything).Return(nil).Times(2)

		w, err := NewWorker(source, store, nil, Options{}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtures(ctx, "2026-09-05", "2026-09-06", []string{"39", "140"})

		assert.Equal(t, 1, result.Attempted)
		assert.Equal(t, 1, result.Succeeded)
		assert.Len(t, result.Errors, 1)
		source.AssertExpectations(t)
	})

	t.Run("a team upsert failure leaves the fixture counted", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtures", mock.Anything, "39", "2026-09-05", "2026-09-06").
			Return([]apifootball.FixtureEnvelope{envelope(1, 39, 40, 50)}, nil).Once()
		store.On("UpsertFixture", mock.Anything, mock.Anything).Return(nil).Once()
		store.On("UpsertTeam", mock.Anything, mock.MatchedBy(func(team provider.Team) bool { return team.ID == "40" })).
			Return(errors.New("constraint violation")).Once()
		store.On("UpsertTeam", mock.Anything, mock.MatchedBy(func(team provider.Team) bool { return team.ID == "50" })).
			Return(nil).Once()

		w, err := NewWorker(source, store, nil, Options{}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtures(ctx, "2026-09-05", "2026-09-06", []string{"39"})

		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 0, result.Failed)
		assert.Len(t, result.Errors, 1)
		store.AssertExpectations(t)
	})

	t.Run("falls back to the configured league set", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtures", mock.Anything, "78", "2026-09-05", "2026-09-06").
			Return([]apifootball.FixtureEnvelope{}, nil).Once()

		w, err := NewWorker(source, store, nil, Options{Leagues: []string{"78"}}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtures(ctx, "2026-09-05", "2026-09-06", nil)

		assert.Equal(t, 0, result.Attempted)
		source.AssertExpectations(t)
	})
}

func TestSyncTeamLogos(t *testing.T) {
	ctx := context.Background()
	const prefix = "https://media.api-sports.io"

	t.Run("mirrors each pending logo and promotes the reference", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)
		mirror := new(MockMirror)

		pending := []provider.Team{
			{ID: "40", Name: "Liverpool", LogoURL: prefix + "/football/teams/40.png"},
			{ID: "50", Name: "Manchester City", LogoURL: prefix + "/football/teams/50.png"},
		}
		store.On("TeamsWithUpstreamLogo", mock.Anything, prefix, 50).Return(pending, nil).Once()
		mirror.On("MirrorTeamLogo", mock.Anything, "40", pending[0].LogoURL).Return("https://cdn.golex.app/teams/40.png", nil).Once()
		mirror.On("MirrorTeamLogo", mock.Anything, "50", pending[1].LogoURL).Return("https://cdn.golex.app/teams/50.png", nil).Once()
		store.On("UpdateTeamLogo", mock.Anything, "40", "https://cdn.golex.app/teams/40.png").Return(nil).Once()
		store.On("UpdateTeamLogo", mock.Anything, "50", "https://cdn.golex.app/teams/50.png").Return(nil).Once()

		w, err := NewWorker(source, store, mirror, Options{UpstreamLogoPrefix: prefix}, testLogger())
		require.NoError(t, err)

		result, err := w.SyncTeamLogos(ctx, 50)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Attempted)
		assert.Equal(t, 2, result.Succeeded)
		store.AssertExpectations(t)
		mirror.AssertExpectations(t)
	})

	t.Run("a failed mirror leaves the logo reference for retry", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)
		mirror := new(MockMirror)

		pending := []provider.Team{
			{ID: "40", LogoURL: prefix + "/football/teams/40.png"},
			{ID: "50", LogoURL: prefix + "/football/teams/50.png"},
		}
		store.On("TeamsWithUpstreamLogo", mock.Anything, prefix, 50).Return(pending, nil).Once()
		mirror.On("MirrorTeamLogo", mock.Anything, "40", mock.Anything).Return("", errors.New("download: status 404")).Once()
		mirror.On("MirrorTeamLogo", mock.Anything, "50", mock.Anything).Return("https://cdn.golex.app/teams/50.png", nil).Once()
		store.On("UpdateTeamLogo", mock.Anything, "50", mock.Anything).Return(nil).Once()

		w, err := NewWorker(source, store, mirror, Options{UpstreamLogoPrefix: prefix}, testLogger())
		require.NoError(t, err)

		result, err := w.SyncTeamLogos(ctx, 50)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		store.AssertNotCalled(t, "UpdateTeamLogo", mock.Anything, "40", mock.Anything)
		store.AssertExpectations(t)
		mirror.AssertExpectations(t)
	})

	t.Run("selection failure is a setup error", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)
		mirror := new(MockMirror)

		store.On("TeamsWithUpstreamLogo", mock.Anything, prefix, 50).Return(nil, errors.New("connection refused")).Once()

		w, err := NewWorker(source, store, mirror, Options{UpstreamLogoPrefix: prefix}, testLogger())
		require.NoError(t, err)

		_, err = w.SyncTeamLogos(ctx, 50)
		assert.Error(t, err)
		mirror.AssertNotCalled(t, "MirrorTeamLogo", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("errors when no mirror is configured", func(t *testing.T) {
		w, err := NewWorker(new(MockSource), new(MockStore), nil, Options{}, testLogger())
		require.NoError(t, err)

		_, err = w.SyncTeamLogos(ctx, 50)
		assert.Error(t, err)
	})
}

func TestSyncFixtureStats(t *testing.T) {
	ctx := context.Background()

	stats := []provider.StatEntry{
		{Type: "Ball Possession", Value: "55%"},
		{Type: "Total Shots", Value: float64(12)},
	}

	t.Run("upserts stats per fixture and isolates failures", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtureStatistics", mock.Anything, "1").Return(stats, stats, nil).Once()
		source.On("GetFixtureStatistics", mock.Anything, "2").Return(nil, nil, errors.New("upstream 429")).Once()
		source.On("GetFixtureStatistics", mock.Anything, "3").Return(stats, stats, nil).Once()
		store.On("UpsertFixtureStats", mock.Anything, "1", mock.Anything).Return(nil).Once()
		store.On("UpsertFixtureStats", mock.Anything, "3", mock.Anything).Return(nil).Once()

		w, err := NewWorker(source, store, nil, Options{CountEmptyStats: true}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtureStats(ctx, []string{"1", "2", "3"})

		assert.Equal(t, 3, result.Attempted)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		source.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("empty pre-match response counts as synced by default policy", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtureStatistics", mock.Anything, "1").Return(nil, nil, nil).Once()
		store.On("UpsertFixtureStats", mock.Anything, "1", mock.Anything).Return(nil).Once()

		w, err := NewWorker(source, store, nil, Options{CountEmptyStats: true}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtureStats(ctx, []string{"1"})

		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 0, result.Skipped)
		store.AssertExpectations(t)
	})

	t.Run("empty response is skipped when the policy excludes it", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtureStatistics", mock.Anything, "1").Return(nil, nil, nil).Once()

		w, err := NewWorker(source, store, nil, Options{CountEmptyStats: false}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtureStats(ctx, []string{"1"})

		assert.Equal(t, 0, result.Succeeded)
		assert.Equal(t, 1, result.Skipped)
		store.AssertNotCalled(t, "UpsertFixtureStats", mock.Anything, mock.Anything, mock.Anything)
	})
}

// hasDeadline matches any context carrying a deadline.
func hasDeadline(ctx context.Context) bool {
	_, ok := ctx.Deadline()
	return ok
}

func TestOperationsCarryBoundedContexts(t *testing.T) {
	ctx := context.Background()

	t.Run("fixture sync bounds fetch and upserts", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtures", mock.MatchedBy(hasDeadline), "39", "2026-09-05", "2026-09-06").
			Return([]apifootball.FixtureEnvelope{envelope(1, 39, 40, 50)}, nil).Once()
		store.On("UpsertFixture", mock.MatchedBy(hasDeadline), mock.Anything).Return(nil).Once()
		store.On("UpsertTeam", mock.MatchedBy(hasDeadline), mock.Anything).Return(nil).Times(2)

		w, err := NewWorker(source, store, nil, Options{}, testLogger())
		require.NoError(t, err)

		result := w.SyncFixtures(ctx, "2026-09-05", "2026-09-06", []string{"39"})

		assert.Equal(t, 1, result.Succeeded)
		source.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("logo backfill bounds selection, mirror, and promotion", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)
		mirror := new(MockMirror)

		pending := []provider.Team{{ID: "40", LogoURL: "https://media.api-sports.io/football/teams/40.png"}}
		store.On("TeamsWithUpstreamLogo", mock.MatchedBy(hasDeadline), mock.Anything, 10).Return(pending, nil).Once()
		mirror.On("MirrorTeamLogo", mock.MatchedBy(hasDeadline), "40", mock.Anything).
			Return("https://cdn.golex.app/teams/40.png", nil).Once()
		store.On("UpdateTeamLogo", mock.MatchedBy(hasDeadline), "40", mock.Anything).Return(nil).Once()

		w, err := NewWorker(source, store, mirror, Options{}, testLogger())
		require.NoError(t, err)

		_, err = w.SyncTeamLogos(ctx, 10)
		require.NoError(t, err)
		store.AssertExpectations(t)
		mirror.AssertExpectations(t)
	})

	t.Run("stats sync bounds fetch and upsert", func(t *testing.T) {
		source := new(MockSource)
		store := new(MockStore)

		source.On("GetFixtureStatistics", mock.MatchedBy(hasDeadline), "1").Return(nil, nil, nil).Once()
		store.On("UpsertFixtureStats", mock.MatchedBy(hasDeadline), "1", mock.Anything).Return(nil).Once()

		w, err := NewWorker(source, store, nil, Options{CountEmptyStats: true}, testLogger())
		require.NoError(t, err)

		w.SyncFixtureStats(ctx, []string{"1"})
		source.AssertExpectations(t)
		store.AssertExpectations(t)
	})
}
