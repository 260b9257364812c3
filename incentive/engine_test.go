package incentive_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"community-bot/incentive"
	"community-bot/model"
	"community-bot/utils/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu          sync.Mutex
	transcripts map[string]*incentive.Transcript
	failing     map[string]bool
	calls       int
}

func (f *fakeFetcher) FetchTranscript(_ context.Context, channelID string, limit int) (*incentive.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if limit != incentive.TranscriptLimit {
		return nil, errors.New("unexpected limit")
	}
	if f.failing[channelID] {
		return nil, errors.New("unknown channel")
	}
	t, ok := f.transcripts[channelID]
	if !ok {
		return nil, errors.New("unknown channel")
	}
	return t, nil
}

func newEngine(t *testing.T) (*incentive.Engine, *store.Store) {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	st := store.New(backend, nil)
	require.NoError(t, st.Load())
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	return incentive.NewEngine(st, nil).WithClock(func() time.Time { return now }), st
}

func setup(t *testing.T, engine *incentive.Engine, channels, roles []string) {
	t.Helper()
	for _, c := range channels {
		_, err := engine.RegisterTranscriptChannel(c)
		require.NoError(t, err)
	}
	for _, r := range roles {
		_, err := engine.RegisterStaffRole(r)
		require.NoError(t, err)
	}
}

func TestRegistrationIsIdempotent(t *testing.T) {
	t.Parallel()
	engine, st := newEngine(t)

	added, err := engine.RegisterTranscriptChannel("c1")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = engine.RegisterTranscriptChannel("c1")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = engine.RegisterStaffRole("r1")
	require.NoError(t, err)
	_, err = engine.RegisterStaffRole("r1")
	require.NoError(t, err)
	require.NoError(t, engine.SetStaffMultiplier("r1", 1.5))
	require.Error(t, engine.SetStaffMultiplier("r1", 0))

	st.View(func(state *model.State) {
		assert.Equal(t, []string{"c1"}, state.Settings.TranscriptChannels)
		assert.Equal(t, []string{"r1"}, state.Settings.StaffRoles)
		assert.InDelta(t, 1.5, state.Settings.StaffMultipliers["r1"], 0.0001)
	})

	removed, err := engine.UnregisterStaffRole("r1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = engine.UnregisterTranscriptChannel("c1")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = engine.UnregisterTranscriptChannel("c1")
	require.NoError(t, err)
	assert.False(t, removed)

	st.View(func(state *model.State) {
		assert.Empty(t, state.Settings.TranscriptChannels)
		assert.Empty(t, state.Settings.StaffRoles)
		assert.NotContains(t, state.Settings.StaffMultipliers, "r1")
	})
}

func TestScanTranscriptsCreditsOnce(t *testing.T) {
	t.Parallel()
	engine, _ := newEngine(t)
	setup(t, engine, []string{"c1", "c2", "broken"}, []string{"r1"})

	fetcher := &fakeFetcher{
		transcripts: map[string]*incentive.Transcript{
			"c1": {
				ChannelID: "c1",
				Messages: []incentive.TranscriptMessage{
					{ID: "m1", EmbedDescriptions: []string{"Ticket closed by <@&r1>"}},
					{ID: "m2", EmbedDescriptions: []string{"no mention here"}},
					{ID: "m3", EmbedDescriptions: []string{"first", "claimed <@&r1>"}},
				},
				Members: []incentive.TranscriptMember{
					{UserID: "s1", RoleIDs: []string{"r1"}},
					{UserID: "u1", RoleIDs: []string{"member"}},
				},
			},
			"c2": {
				ChannelID: "c2",
				Messages: []incentive.TranscriptMessage{
					{ID: "m4", EmbedDescriptions: []string{"<@&r1>"}},
				},
				Members: []incentive.TranscriptMember{
					{UserID: "s1", RoleIDs: []string{"r1"}},
					{UserID: "s2", RoleIDs: []string{"r1", "r2"}},
				},
			},
		},
		failing: map[string]bool{"broken": true},
	}

	result, err := engine.ScanTranscripts(context.Background(), fetcher)
	require.NoError(t, err)
	assert.Equal(t, incentive.ScanResult{Channels: 3, Skipped: 1, Credited: 4}, result)

	result, err = engine.ScanTranscripts(context.Background(), fetcher)
	require.NoError(t, err)
	assert.Zero(t, result.Credited)

	lifetime := engine.RankByLifetimeTickets()
	require.Len(t, lifetime, 2)
	assert.Equal(t, incentive.StaffRanking{StaffID: "s1", Tickets: 3}, lifetime[0])
	assert.Equal(t, incentive.StaffRanking{StaffID: "s2", Tickets: 1}, lifetime[1])
	assert.Equal(t, 4, engine.TotalTickets())
}

func TestRankingTiesKeepFirstCreditedOrder(t *testing.T) {
	t.Parallel()
	engine, st := newEngine(t)
	setup(t, engine, []string{"c1", "c2"}, []string{"r1"})

	transcript := func(channelID, msgID, staffID string) *incentive.Transcript {
		return &incentive.Transcript{
			ChannelID: channelID,
			Messages:  []incentive.TranscriptMessage{{ID: msgID, EmbedDescriptions: []string{"closed by <@&r1>"}}},
			Members:   []incentive.TranscriptMember{{UserID: staffID, RoleIDs: []string{"r1"}}},
		}
	}
	// 分两次扫描，确保 zed 先于 amy 被记入
	_, err := engine.ScanTranscripts(context.Background(), &fakeFetcher{
		transcripts: map[string]*incentive.Transcript{"c1": transcript("c1", "m1", "zed")},
		failing:     map[string]bool{"c2": true},
	})
	require.NoError(t, err)
	_, err = engine.ScanTranscripts(context.Background(), &fakeFetcher{
		transcripts: map[string]*incentive.Transcript{"c2": transcript("c2", "m2", "amy")},
		failing:     map[string]bool{"c1": true},
	})
	require.NoError(t, err)

	weekly := engine.RankByWeeklyTickets()
	require.Len(t, weekly, 2)
	assert.Equal(t, "zed", weekly[0].StaffID)
	assert.Equal(t, "amy", weekly[1].StaffID)
	assert.Equal(t, "zed", engine.RankByLifetimeTickets()[0].StaffID)

	ranking, err := engine.RankByPayment()
	require.NoError(t, err)
	assert.Equal(t, []incentive.PaymentRanking{
		{StaffID: "zed", Points: 1000},
		{StaffID: "amy", Points: 1000},
	}, ranking)

	st.View(func(state *model.State) {
		assert.Equal(t, []string{"zed", "amy"}, state.Settings.StaffOrder)
	})
}

func TestScanTranscriptsWithoutConfiguration(t *testing.T) {
	t.Parallel()
	engine, _ := newEngine(t)
	fetcher := &fakeFetcher{}

	result, err := engine.ScanTranscripts(context.Background(), fetcher)
	require.NoError(t, err)
	assert.Zero(t, result.Channels)
	assert.Zero(t, fetcher.calls)
}

func TestResetWeeklyKeepsLifetime(t *testing.T) {
	t.Parallel()
	engine, st := newEngine(t)
	require.NoError(t, st.Update(func(state *model.State) error {
		state.Settings.TicketActivity["s1"] = &model.StaffActivityRecord{
			Tickets:        []string{"a", "b", "c"},
			Weekly:         []string{"b", "c"},
			Messages:       400,
			WeeklyMessages: 120,
		}
		state.Settings.TicketActivity["s2"] = &model.StaffActivityRecord{
			Tickets: []string{"d"},
			Weekly:  []string{"d"},
		}
		return nil
	}))

	require.NoError(t, engine.ResetWeekly())

	for _, r := range engine.RankByWeeklyTickets() {
		assert.Zero(t, r.Tickets, r.StaffID)
		assert.Zero(t, r.Messages, r.StaffID)
	}
	lifetime := engine.RankByLifetimeTickets()
	require.Len(t, lifetime, 2)
	assert.Equal(t, 3, lifetime[0].Tickets)
	assert.Equal(t, 400, lifetime[0].Messages)
	assert.Equal(t, 1, lifetime[1].Tickets)
}

func TestWeeklyPaymentAndDirectives(t *testing.T) {
	t.Parallel()
	engine, st := newEngine(t)
	require.NoError(t, st.Update(func(state *model.State) error {
		state.Settings.TicketActivity["s1"] = &model.StaffActivityRecord{
			Tickets:        []string{"a", "b", "c"},
			Weekly:         []string{"a", "b", "c"},
			WeeklyMessages: 250,
		}
		state.Settings.TicketActivity["s2"] = &model.StaffActivityRecord{
			Tickets:        []string{"d"},
			Weekly:         []string{"d"},
			WeeklyMessages: 99,
		}
		return nil
	}))

	payments, err := engine.ComputeWeeklyPayment()
	require.NoError(t, err)
	assert.Equal(t, model.StaffPayment{Week: "2026-10-18", Tickets: 3, Messages: 250, Points: 5000}, payments["s1"])
	assert.EqualValues(t, 1000, payments["s2"].Points)

	again, err := engine.ComputeWeeklyPayment()
	require.NoError(t, err)
	assert.Equal(t, payments, again)

	ranking, err := engine.RankByPayment()
	require.NoError(t, err)
	assert.Equal(t, []incentive.PaymentRanking{
		{StaffID: "s1", Points: 5000},
		{StaffID: "s2", Points: 1000},
	}, ranking)

	directives, err := engine.GeneratePayoutDirectives("")
	require.NoError(t, err)
	assert.Equal(t, []string{"!add-money s1 5000", "!add-money s2 1000"}, directives)

	directives, err = engine.GeneratePayoutDirectives("/pay")
	require.NoError(t, err)
	assert.Equal(t, "/pay s1 5000", directives[0])
}

func TestRecordStaffMessage(t *testing.T) {
	t.Parallel()
	engine, st := newEngine(t)
	setup(t, engine, []string{"c1"}, []string{"r1"})

	tests := []struct {
		name    string
		channel string
		roles   []string
		want    bool
	}{
		{name: "staff in transcript channel", channel: "c1", roles: []string{"r1"}, want: true},
		{name: "staff elsewhere", channel: "c2", roles: []string{"r1"}, want: false},
		{name: "non staff", channel: "c1", roles: []string{"member"}, want: false},
	}
	for _, tt := range tests {
		counted, err := engine.RecordStaffMessage(tt.channel, "s1", tt.roles)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, counted, tt.name)
	}

	st.View(func(state *model.State) {
		rec := state.Settings.TicketActivity["s1"]
		require.NotNil(t, rec)
		assert.EqualValues(t, 1, rec.Messages)
		assert.EqualValues(t, 1, rec.WeeklyMessages)
	})
}

func TestWeeklyPoints(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tickets, messages int
		want              int64
	}{
		{0, 0, 0},
		{3, 250, 5000},
		{0, 99, 0},
		{1, 100, 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, incentive.WeeklyPoints(tt.tickets, tt.messages))
	}
}
