package msgstats_test

import (
	"testing"
	"time"

	"community-bot/model"
	"community-bot/msgstats"
	"community-bot/utils/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	s := store.New(backend, nil)
	require.NoError(t, s.Load())
	return s
}

func TestWeekKey(t *testing.T) {
	t.Parallel()
	// 2026-10-16 is a Friday.
	friday := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name      string
		at        time.Time
		weekStart time.Weekday
		want      string
	}{
		{name: "sunday start", at: friday, weekStart: time.Sunday, want: "2026-10-11"},
		{name: "monday start", at: friday, weekStart: time.Monday, want: "2026-10-12"},
		{name: "on the start day", at: friday, weekStart: time.Friday, want: "2026-10-16"},
		{name: "across a month", at: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), weekStart: time.Sunday, want: "2026-11-01"},
		{name: "across a year", at: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), weekStart: time.Sunday, want: "2026-12-27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, msgstats.WeekKey(tt.at, tt.weekStart))
		})
	}
}

func TestRecordSameDay(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	tracker := msgstats.NewTracker(st, nil, time.Sunday).WithClock(func() time.Time { return now })

	msg := model.ChatMessage{GuildID: "g1", ChannelID: "c1", AuthorID: "u1"}
	for range 2 {
		counted, err := tracker.Record(msg)
		require.NoError(t, err)
		assert.True(t, counted)
	}

	snap, ok := tracker.Snapshot("g1", "u1")
	require.True(t, ok)
	assert.Equal(t, msgstats.Snapshot{Total: 2, Today: 2, ThisWeek: 2, ThisMonth: 2}, snap)

	st.View(func(state *model.State) {
		rec := state.MessageStats["g1"]["u1"]
		assert.EqualValues(t, 2, rec.Daily["2026-10-16"])
		assert.EqualValues(t, 2, rec.Weekly["2026-10-11"])
		assert.EqualValues(t, 2, rec.Monthly["2026-10"])
	})
}

func TestRecordRollsBuckets(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	now := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	tracker := msgstats.NewTracker(st, nil, time.Sunday).WithClock(func() time.Time { return now })
	msg := model.ChatMessage{GuildID: "g1", ChannelID: "c1", AuthorID: "u1"}

	_, err := tracker.Record(msg)
	require.NoError(t, err)
	now = now.Add(2 * time.Hour) // Sunday, new week
	_, err = tracker.Record(msg)
	require.NoError(t, err)

	snap, ok := tracker.Snapshot("g1", "u1")
	require.True(t, ok)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 1, snap.Today)
	assert.Equal(t, 1, snap.ThisWeek)
	assert.Equal(t, 2, snap.ThisMonth)
}

func TestRecordSkipsBotsAndRestrictedChannels(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	tracker := msgstats.NewTracker(st, nil, time.Sunday)
	require.NoError(t, st.Update(func(state *model.State) error {
		state.Settings.CountingChannelID = "counting"
		return nil
	}))

	counted, err := tracker.Record(model.ChatMessage{GuildID: "g1", ChannelID: "other", AuthorID: "u1"})
	require.NoError(t, err)
	assert.False(t, counted)

	counted, err = tracker.Record(model.ChatMessage{GuildID: "g1", ChannelID: "counting", AuthorID: "b1", AuthorIsBot: true})
	require.NoError(t, err)
	assert.False(t, counted)

	_, ok := tracker.Snapshot("g1", "u1")
	assert.False(t, ok)
}

func TestLeaderboardAndPrune(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	tracker := msgstats.NewTracker(st, nil, time.Sunday).WithClock(func() time.Time { return now })

	require.NoError(t, st.Update(func(state *model.State) error {
		a := model.NewMessageStatRecord()
		a.Total = 5
		a.Daily["2026-01-01"] = 3
		a.Daily["2026-10-15"] = 2
		a.Daily["Thu Jan 01 2026"] = 1
		b := model.NewMessageStatRecord()
		b.Total = 9
		state.MessageStats["g1"] = map[string]*model.MessageStatRecord{"a": a, "b": b}
		return nil
	}))

	board := tracker.Leaderboard("g1", 10)
	require.Len(t, board, 2)
	assert.Equal(t, "b", board[0].UserID)
	assert.Equal(t, 9, board[0].Total)

	removed, err := tracker.Prune(30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	st.View(func(state *model.State) {
		daily := state.MessageStats["g1"]["a"].Daily
		assert.Contains(t, daily, "2026-10-15")
		assert.Contains(t, daily, "Thu Jan 01 2026")
		assert.NotContains(t, daily, "2026-01-01")
	})

	removed, err = tracker.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
