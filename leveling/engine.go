package leveling

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"community-bot/model"
	"community-bot/utils/store"

	"go.uber.org/zap"
)

var ErrInvalidAmount = errors.New("experience per message must be between 1 and 100")

// LevelUpEvent is emitted when an award moves a user to a higher level.
// Delivery is up to the caller: ChannelID is the announcement channel when one is
// configured, FallbackChannelID is the channel the message was sent in.
type LevelUpEvent struct {
	GuildID           string
	UserID            string
	ChannelID         string
	FallbackChannelID string
	Level             int
	Experience        int64
	Gained            int64
	NextThreshold     int64
	Remaining         int64
	Percent           int
	Maxed             bool
}

// AwardResult describes the outcome of one Award call.
type AwardResult struct {
	Awarded    bool
	Gained     int64
	Experience int64
	Level      int
	LevelUp    *LevelUpEvent
}

// Standing is one row of the level leaderboard.
type Standing struct {
	UserID     string
	Experience int64
	Level      int
}

// RateInfo summarises the current experience settings.
type RateInfo struct {
	PerMessage int
	Min        int64
	Max        int64
	Cooldown   time.Duration
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRandom replaces the source of the bonus roll. intn must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(e *Engine) { e.intn = intn }
}

// Engine awards experience for chat messages.
type Engine struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
	intn   func(n int) int

	mu        sync.Mutex
	cooldowns map[string]time.Time
}

func NewEngine(st *store.Store, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:     st,
		logger:    logger.Named("leveling"),
		now:       time.Now,
		intn:      rand.Intn,
		cooldowns: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Award grants experience for a qualifying message unless the author is still on
// cooldown in that guild.
func (e *Engine) Award(msg model.ChatMessage) (AwardResult, error) {
	var result AwardResult
	now := e.now()
	key := msg.AuthorID + "-" + msg.GuildID

	err := e.store.Update(func(state *model.State) error {
		settings := state.Settings
		if !msg.Qualifies(settings) {
			return store.ErrSkipSave
		}
		if !e.takeCooldown(key, now, settings.Cooldown()) {
			return store.ErrSkipSave
		}

		users := state.UserLevels[msg.GuildID]
		if users == nil {
			users = make(map[string]*model.UserLevelRecord)
			state.UserLevels[msg.GuildID] = users
		}
		rec := users[msg.AuthorID]
		if rec == nil {
			rec = &model.UserLevelRecord{}
			users[msg.AuthorID] = rec
		}
		if rec.Experience < 0 {
			rec.Experience = 0
		}

		gained := e.experienceDelta(settings.XPPerMessage.Int())
		oldLevel := rec.Level.Int()
		rec.Experience += model.Count(gained)
		newLevel := LevelFromExperience(int64(rec.Experience))
		rec.Level = model.Count(newLevel)

		result = AwardResult{
			Awarded:    true,
			Gained:     gained,
			Experience: int64(rec.Experience),
			Level:      newLevel,
		}
		if newLevel > oldLevel {
			result.LevelUp = newLevelUpEvent(msg, settings, int64(rec.Experience), gained, newLevel)
		}
		return nil
	}, store.UserLevels)

	if result.LevelUp != nil {
		e.logger.Info("User leveled up",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.AuthorID),
			zap.Int("level", result.Level))
	}
	return result, err
}

func newLevelUpEvent(msg model.ChatMessage, settings *model.Settings, xp, gained int64, level int) *LevelUpEvent {
	next := CumulativeForLevel(level + 1)
	event := &LevelUpEvent{
		GuildID:           msg.GuildID,
		UserID:            msg.AuthorID,
		ChannelID:         msg.ChannelID,
		FallbackChannelID: msg.ChannelID,
		Level:             level,
		Experience:        xp,
		Gained:            gained,
		NextThreshold:     next,
		Remaining:         next - xp,
		Maxed:             level >= DisplayMaxLevel,
	}
	if settings.LevelUpChannelID != "" {
		event.ChannelID = settings.LevelUpChannelID
	}
	if event.Maxed {
		event.Percent = 100
	} else if next > 0 {
		event.Percent = clampPercent(xp * 100 / next)
	}
	return event
}

// experienceDelta returns floor(base*0.7) plus a roll in [0, floor(base*0.6)).
func (e *Engine) experienceDelta(base int) int64 {
	if base <= 0 {
		base = model.DefaultXPPerMessage
	}
	gained := int64(base * 7 / 10)
	if bonusRange := base * 6 / 10; bonusRange > 0 {
		gained += int64(e.intn(bonusRange))
	}
	return gained
}

func (e *Engine) takeCooldown(key string, now time.Time, cooldown time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if last, ok := e.cooldowns[key]; ok && now.Before(last.Add(cooldown)) {
		return false
	}
	e.cooldowns[key] = now
	return true
}

// PruneCooldowns forgets cooldown entries older than maxAge and returns how many were removed.
func (e *Engine) PruneCooldowns(maxAge time.Duration) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	removed := 0
	for key, t := range e.cooldowns {
		if now.Sub(t) > maxAge {
			delete(e.cooldowns, key)
			removed++
		}
	}
	return removed
}

// Lookup returns the stored record for a user in a guild.
func (e *Engine) Lookup(guildID, userID string) (model.UserLevelRecord, bool) {
	var (
		rec   model.UserLevelRecord
		found bool
	)
	e.store.View(func(state *model.State) {
		if r, ok := state.UserLevels[guildID][userID]; ok && r != nil {
			rec, found = *r, true
		}
	})
	return rec, found
}

// Leaderboard returns up to limit users of a guild ordered by experience.
func (e *Engine) Leaderboard(guildID string, limit int) []Standing {
	var standings []Standing
	e.store.View(func(state *model.State) {
		for userID, rec := range state.UserLevels[guildID] {
			standings = append(standings, Standing{
				UserID:     userID,
				Experience: int64(rec.Experience),
				Level:      rec.Level.Int(),
			})
		}
	})

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Experience != standings[j].Experience {
			return standings[i].Experience > standings[j].Experience
		}
		return standings[i].UserID < standings[j].UserID
	})
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	return standings
}

// SetExperiencePerMessage changes the base award.
func (e *Engine) SetExperiencePerMessage(amount int) error {
	if amount < 1 || amount > 100 {
		return ErrInvalidAmount
	}
	return e.store.Update(func(state *model.State) error {
		state.Settings.XPPerMessage = model.Count(amount)
		return nil
	}, store.Settings)
}

// Info reports the award range and cooldown currently in effect.
func (e *Engine) Info() RateInfo {
	var info RateInfo
	e.store.View(func(state *model.State) {
		base := state.Settings.XPPerMessage.Int()
		info.PerMessage = base
		info.Min = int64(base * 7 / 10)
		info.Max = info.Min
		if bonusRange := base * 6 / 10; bonusRange > 0 {
			info.Max += int64(bonusRange - 1)
		}
		info.Cooldown = state.Settings.Cooldown()
	})
	return info
}
