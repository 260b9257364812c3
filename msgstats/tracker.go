package msgstats

import (
	"sort"
	"time"

	"community-bot/model"
	"community-bot/utils/store"

	"go.uber.org/zap"
)

// Snapshot is a user's message volume for the current buckets.
type Snapshot struct {
	Total     int
	Today     int
	ThisWeek  int
	ThisMonth int
}

// Standing is one row of the message leaderboard.
type Standing struct {
	UserID string
	Total  int
}

// Tracker counts qualifying messages per user and calendar bucket.
type Tracker struct {
	store     *store.Store
	logger    *zap.Logger
	weekStart time.Weekday
	now       func() time.Time
}

func NewTracker(st *store.Store, logger *zap.Logger, weekStart time.Weekday) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		store:     st,
		logger:    logger.Named("msgstats"),
		weekStart: weekStart,
		now:       time.Now,
	}
}

// WithClock replaces time.Now and returns the tracker.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Record counts one message. It reports whether the message qualified.
func (t *Tracker) Record(msg model.ChatMessage) (bool, error) {
	now := t.now()
	counted := false

	err := t.store.Update(func(state *model.State) error {
		if !msg.Qualifies(state.Settings) {
			return store.ErrSkipSave
		}

		users := state.MessageStats[msg.GuildID]
		if users == nil {
			users = make(map[string]*model.MessageStatRecord)
			state.MessageStats[msg.GuildID] = users
		}
		rec := users[msg.AuthorID]
		if rec == nil {
			rec = model.NewMessageStatRecord()
			users[msg.AuthorID] = rec
		}

		rec.Total++
		rec.Daily[DayKey(now)]++
		rec.Weekly[WeekKey(now, t.weekStart)]++
		rec.Monthly[MonthKey(now)]++
		counted = true
		return nil
	}, store.MessageStats)

	return counted, err
}

// Snapshot returns the counters for the buckets containing now.
func (t *Tracker) Snapshot(guildID, userID string) (Snapshot, bool) {
	now := t.now()
	var (
		snap  Snapshot
		found bool
	)
	t.store.View(func(state *model.State) {
		rec, ok := state.MessageStats[guildID][userID]
		if !ok || rec == nil {
			return
		}
		found = true
		snap = Snapshot{
			Total:     rec.Total.Int(),
			Today:     rec.Daily[DayKey(now)].Int(),
			ThisWeek:  rec.Weekly[WeekKey(now, t.weekStart)].Int(),
			ThisMonth: rec.Monthly[MonthKey(now)].Int(),
		}
	})
	return snap, found
}

// Leaderboard returns up to limit users of a guild ordered by total messages.
func (t *Tracker) Leaderboard(guildID string, limit int) []Standing {
	var standings []Standing
	t.store.View(func(state *model.State) {
		for userID, rec := range state.MessageStats[guildID] {
			standings = append(standings, Standing{UserID: userID, Total: rec.Total.Int()})
		}
	})

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Total != standings[j].Total {
			return standings[i].Total > standings[j].Total
		}
		return standings[i].UserID < standings[j].UserID
	})
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	return standings
}

// Prune drops daily buckets older than retentionDays. Weekly and monthly buckets are
// kept. A non-positive retention keeps everything.
func (t *Tracker) Prune(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := DayKey(t.now().AddDate(0, 0, -retentionDays))
	removed := 0

	err := t.store.Update(func(state *model.State) error {
		for _, users := range state.MessageStats {
			for _, rec := range users {
				for day := range rec.Daily {
					// ISO dates order lexically; keys in any other format are left alone.
					if len(day) == len(dayLayout) && day < cutoff {
						delete(rec.Daily, day)
						removed++
					}
				}
			}
		}
		if removed == 0 {
			return store.ErrSkipSave
		}
		return nil
	}, store.MessageStats)

	if removed > 0 {
		t.logger.Info("Pruned daily message buckets", zap.Int("removed", removed), zap.String("cutoff", cutoff))
	}
	return removed, err
}
