package leveling_test

import (
	"testing"
	"time"

	"community-bot/leveling"
	"community-bot/model"
	"community-bot/utils/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newStore(t *testing.T) *store.Store {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	s := store.New(backend, nil)
	require.NoError(t, s.Load())
	return s
}

func newEngine(t *testing.T, st *store.Store, clock *fakeClock) *leveling.Engine {
	t.Helper()
	// Always roll the top of the bonus range.
	maxRoll := func(n int) int { return n - 1 }
	return leveling.NewEngine(st, nil, leveling.WithClock(clock.Now), leveling.WithRandom(maxRoll))
}

func message(channelID string) model.ChatMessage {
	return model.ChatMessage{ID: "m1", GuildID: "g1", ChannelID: channelID, AuthorID: "u1"}
}

func TestAwardRespectsCooldown(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := newEngine(t, st, clock)

	first, err := engine.Award(message("c1"))
	require.NoError(t, err)
	require.True(t, first.Awarded)
	// base 15: floor(10.5)=10 plus the top roll of [0, 9).
	assert.Equal(t, int64(18), first.Gained)

	clock.Advance(30 * time.Second)
	second, err := engine.Award(message("c1"))
	require.NoError(t, err)
	assert.False(t, second.Awarded)

	rec, ok := engine.Lookup("g1", "u1")
	require.True(t, ok)
	assert.EqualValues(t, 18, rec.Experience)

	clock.Advance(30 * time.Second)
	third, err := engine.Award(message("c1"))
	require.NoError(t, err)
	assert.True(t, third.Awarded)
	assert.Equal(t, int64(36), third.Experience)
}

func TestAwardEmitsLevelUp(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := newEngine(t, st, clock)

	require.NoError(t, st.Update(func(state *model.State) error {
		state.UserLevels["g1"] = map[string]*model.UserLevelRecord{"u1": {Experience: 90}}
		return nil
	}))

	result, err := engine.Award(message("c1"))
	require.NoError(t, err)
	require.NotNil(t, result.LevelUp)

	event := result.LevelUp
	assert.Equal(t, 1, event.Level)
	assert.Equal(t, int64(108), event.Experience)
	assert.Equal(t, int64(250), event.NextThreshold)
	assert.Equal(t, int64(142), event.Remaining)
	assert.Equal(t, 43, event.Percent)
	assert.Equal(t, "c1", event.ChannelID)
	assert.Equal(t, "c1", event.FallbackChannelID)
}

func TestAwardRoutesLevelUpToAnnouncementChannel(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := newEngine(t, st, clock)

	require.NoError(t, st.Update(func(state *model.State) error {
		state.Settings.LevelUpChannelID = "announce"
		state.UserLevels["g1"] = map[string]*model.UserLevelRecord{"u1": {Experience: 95}}
		return nil
	}))

	result, err := engine.Award(message("c1"))
	require.NoError(t, err)
	require.NotNil(t, result.LevelUp)
	assert.Equal(t, "announce", result.LevelUp.ChannelID)
	assert.Equal(t, "c1", result.LevelUp.FallbackChannelID)
}

func TestAwardSkipsOtherChannelsWhenRestricted(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := newEngine(t, st, clock)

	require.NoError(t, st.Update(func(state *model.State) error {
		state.Settings.CountingChannelID = "counting"
		return nil
	}))

	result, err := engine.Award(message("elsewhere"))
	require.NoError(t, err)
	assert.False(t, result.Awarded)

	result, err = engine.Award(message("counting"))
	require.NoError(t, err)
	assert.True(t, result.Awarded)
}

func TestAwardIgnoresBots(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	clock := &fakeClock{now: time.Now()}
	engine := newEngine(t, st, clock)

	msg := message("c1")
	msg.AuthorIsBot = true
	result, err := engine.Award(msg)
	require.NoError(t, err)
	assert.False(t, result.Awarded)

	_, found := engine.Lookup("g1", "u1")
	assert.False(t, found)
}

func TestAwardRepairsStaleLevel(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	clock := &fakeClock{now: time.Now()}
	engine := newEngine(t, st, clock)

	require.NoError(t, st.Update(func(state *model.State) error {
		state.UserLevels["g1"] = map[string]*model.UserLevelRecord{"u1": {Experience: 0, Level: 7}}
		return nil
	}))

	result, err := engine.Award(message("c1"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Level)
	assert.Nil(t, result.LevelUp)
}

func TestSetExperiencePerMessage(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	engine := newEngine(t, st, &fakeClock{now: time.Now()})

	assert.ErrorIs(t, engine.SetExperiencePerMessage(0), leveling.ErrInvalidAmount)
	assert.ErrorIs(t, engine.SetExperiencePerMessage(101), leveling.ErrInvalidAmount)
	require.NoError(t, engine.SetExperiencePerMessage(20))

	info := engine.Info()
	assert.Equal(t, 20, info.PerMessage)
	assert.Equal(t, int64(14), info.Min)
	assert.Equal(t, int64(25), info.Max)
	assert.Equal(t, time.Minute, info.Cooldown)
}

func TestLeaderboardOrdersByExperience(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	engine := newEngine(t, st, &fakeClock{now: time.Now()})

	require.NoError(t, st.Update(func(state *model.State) error {
		state.UserLevels["g1"] = map[string]*model.UserLevelRecord{
			"a": {Experience: 100, Level: 1},
			"b": {Experience: 500, Level: 3},
			"c": {Experience: 100, Level: 1},
		}
		return nil
	}))

	board := engine.Leaderboard("g1", 2)
	require.Len(t, board, 2)
	assert.Equal(t, "b", board[0].UserID)
	assert.Equal(t, "a", board[1].UserID)
	assert.Empty(t, engine.Leaderboard("missing", 10))
}

func TestPruneCooldowns(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	engine := newEngine(t, st, clock)

	_, err := engine.Award(message("c1"))
	require.NoError(t, err)

	assert.Equal(t, 0, engine.PruneCooldowns(time.Hour))
	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, engine.PruneCooldowns(time.Hour))
}
