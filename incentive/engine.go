package incentive

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"community-bot/model"
	"community-bot/utils/store"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	PointsPerTicket       = 1000
	PointsPerMessageBlock = 1000
	MessagesPerBlock      = 100

	DefaultPayoutCommand = "!add-money"
	fetchConcurrency     = 4
)

// Engine 管理工单激励：记录工单频道、管理人员身份组，统计工单与消息并计算每周积分。
type Engine struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(st *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: st, logger: logger.Named("incentive"), now: time.Now}
}

// WithClock replaces time.Now and returns the engine.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// RegisterTranscriptChannel adds channelID to the monitored channels. It reports
// whether the channel was newly added.
func (e *Engine) RegisterTranscriptChannel(channelID string) (bool, error) {
	return e.updateList(func(s *model.Settings) *[]string { return &s.TranscriptChannels }, channelID, true)
}

// UnregisterTranscriptChannel removes channelID and reports whether it was present.
func (e *Engine) UnregisterTranscriptChannel(channelID string) (bool, error) {
	return e.updateList(func(s *model.Settings) *[]string { return &s.TranscriptChannels }, channelID, false)
}

// RegisterStaffRole adds roleID to the staff roles and reports whether it was newly added.
func (e *Engine) RegisterStaffRole(roleID string) (bool, error) {
	return e.updateList(func(s *model.Settings) *[]string { return &s.StaffRoles }, roleID, true)
}

// UnregisterStaffRole removes roleID together with its multiplier.
func (e *Engine) UnregisterStaffRole(roleID string) (bool, error) {
	var removed bool
	err := e.store.Update(func(state *model.State) error {
		s := state.Settings
		_, hadMultiplier := s.StaffMultipliers[roleID]
		delete(s.StaffMultipliers, roleID)
		s.StaffRoles, removed = without(s.StaffRoles, roleID)
		if !removed && !hadMultiplier {
			return store.ErrSkipSave
		}
		return nil
	}, store.Settings)
	return removed, err
}

// SetStaffMultiplier stores a point multiplier for roleID. Multipliers are kept for
// later use and do not affect ComputeWeeklyPayment.
func (e *Engine) SetStaffMultiplier(roleID string, multiplier float64) error {
	if roleID == "" {
		return errors.New("staff role id is empty")
	}
	if multiplier <= 0 {
		return fmt.Errorf("multiplier must be positive, got %v", multiplier)
	}
	return e.store.Update(func(state *model.State) error {
		state.Settings.StaffMultipliers[roleID] = multiplier
		return nil
	}, store.Settings)
}

func (e *Engine) updateList(field func(*model.Settings) *[]string, id string, add bool) (bool, error) {
	if id == "" {
		return false, errors.New("id is empty")
	}
	var changed bool
	err := e.store.Update(func(state *model.State) error {
		list := field(state.Settings)
		if add {
			if slices.Contains(*list, id) {
				return store.ErrSkipSave
			}
			*list = append(*list, id)
			changed = true
			return nil
		}
		*list, changed = without(*list, id)
		if !changed {
			return store.ErrSkipSave
		}
		return nil
	}, store.Settings)
	return changed, err
}

func without(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out, len(out) != len(ids)
}

// ScanResult summarizes one transcript scan.
type ScanResult struct {
	Channels int
	Skipped  int
	Credited int
}

// ScanTranscripts inspects the recent messages of every transcript channel. Each
// message whose embed mentions a staff role credits its id to every channel member
// holding that role. A message id is credited to a member at most once. Channels
// that fail to load are skipped.
func (e *Engine) ScanTranscripts(ctx context.Context, fetcher TranscriptFetcher) (ScanResult, error) {
	var channels, roles []string
	e.store.View(func(state *model.State) {
		channels = slices.Clone(state.Settings.TranscriptChannels)
		roles = slices.Clone(state.Settings.StaffRoles)
	})
	result := ScanResult{Channels: len(channels)}
	if len(channels) == 0 || len(roles) == 0 {
		return result, nil
	}

	var (
		transcripts = make([]*Transcript, len(channels))
		p           = pool.New().WithContext(ctx).WithMaxGoroutines(fetchConcurrency)
		mu          sync.Mutex
	)
	for i, channelID := range channels {
		p.Go(func(ctx context.Context) error {
			transcript, err := fetcher.FetchTranscript(ctx, channelID, TranscriptLimit)
			if err != nil {
				e.logger.Warn("Failed to fetch transcript channel",
					zap.String("channelID", channelID),
					zap.Error(err))
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return nil
			}
			transcripts[i] = transcript
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	err := e.store.Update(func(state *model.State) error {
		for _, transcript := range transcripts {
			if transcript == nil {
				continue
			}
			result.Credited += creditTranscript(state.Settings, transcript, roles)
		}
		if result.Credited == 0 {
			return store.ErrSkipSave
		}
		return nil
	}, store.Settings)

	e.logger.Info("Transcript scan finished",
		zap.Int("channels", result.Channels),
		zap.Int("skipped", result.Skipped),
		zap.Int("credited", result.Credited))
	return result, err
}

func creditTranscript(settings *model.Settings, transcript *Transcript, roles []string) int {
	credited := 0
	for _, msg := range transcript.Messages {
		if msg.ID == "" {
			continue
		}
		for _, roleID := range roles {
			if !msg.mentionsRole(roleID) {
				continue
			}
			for _, member := range transcript.Members {
				if !member.HasRole(roleID) {
					continue
				}
				rec := activityFor(settings, member.UserID)
				if rec.HasTicket(msg.ID) {
					continue
				}
				rec.Tickets = append(rec.Tickets, msg.ID)
				if !slices.Contains(rec.Weekly, msg.ID) {
					rec.Weekly = append(rec.Weekly, msg.ID)
				}
				credited++
			}
		}
	}
	return credited
}

func activityFor(settings *model.Settings, staffID string) *model.StaffActivityRecord {
	rec := settings.TicketActivity[staffID]
	if rec == nil {
		rec = &model.StaffActivityRecord{Tickets: []string{}, Weekly: []string{}}
		settings.TicketActivity[staffID] = rec
		settings.StaffOrder = append(settings.StaffOrder, staffID)
	}
	return rec
}

// RecordStaffMessage counts a message sent by a staff member in a transcript channel.
// It reports whether the message was counted.
func (e *Engine) RecordStaffMessage(channelID, authorID string, roleIDs []string) (bool, error) {
	if channelID == "" || authorID == "" {
		return false, nil
	}
	var counted bool
	err := e.store.Update(func(state *model.State) error {
		s := state.Settings
		if !slices.Contains(s.TranscriptChannels, channelID) || !holdsAny(roleIDs, s.StaffRoles) {
			return store.ErrSkipSave
		}
		rec := activityFor(s, authorID)
		rec.Messages++
		rec.WeeklyMessages++
		counted = true
		return nil
	}, store.Settings)
	return counted, err
}

func holdsAny(held, wanted []string) bool {
	for _, id := range held {
		if slices.Contains(wanted, id) {
			return true
		}
	}
	return false
}

// ResetWeekly clears every member's weekly tickets and weekly message count.
func (e *Engine) ResetWeekly() error {
	err := e.store.Update(func(state *model.State) error {
		for _, rec := range state.Settings.TicketActivity {
			rec.Weekly = []string{}
			rec.WeeklyMessages = 0
		}
		return nil
	}, store.Settings)
	if err == nil {
		e.logger.Info("Weekly ticket counters reset")
	}
	return err
}

// StaffRanking is one row of a ticket ranking.
type StaffRanking struct {
	StaffID  string
	Tickets  int
	Messages int
}

// RankByLifetimeTickets orders staff by lifetime tickets, most first.
func (e *Engine) RankByLifetimeTickets() []StaffRanking {
	return e.rank(func(rec *model.StaffActivityRecord) StaffRanking {
		return StaffRanking{Tickets: len(rec.Tickets), Messages: rec.Messages.Int()}
	})
}

// RankByWeeklyTickets orders staff by tickets in the current week, most first.
func (e *Engine) RankByWeeklyTickets() []StaffRanking {
	return e.rank(func(rec *model.StaffActivityRecord) StaffRanking {
		return StaffRanking{Tickets: len(rec.Weekly), Messages: rec.WeeklyMessages.Int()}
	})
}

func (e *Engine) rank(row func(*model.StaffActivityRecord) StaffRanking) []StaffRanking {
	var out []StaffRanking
	e.store.View(func(state *model.State) {
		s := state.Settings
		out = make([]StaffRanking, 0, len(s.TicketActivity))
		for _, staffID := range s.OrderedStaff() {
			r := row(s.TicketActivity[staffID])
			r.StaffID = staffID
			out = append(out, r)
		}
	})
	// 并列时保持首次记入的顺序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tickets > out[j].Tickets
	})
	return out
}

// TotalTickets sums the lifetime tickets of all staff.
func (e *Engine) TotalTickets() int {
	total := 0
	e.store.View(func(state *model.State) {
		for _, rec := range state.Settings.TicketActivity {
			total += len(rec.Tickets)
		}
	})
	return total
}

// WeeklyPoints is the point total for a week's tickets and messages.
func WeeklyPoints(tickets, messages int) int64 {
	return int64(tickets)*PointsPerTicket + int64(messages/MessagesPerBlock)*PointsPerMessageBlock
}

// ComputeWeeklyPayment recomputes and stores every member's payment from the weekly
// counters. Running it again overwrites the previous result.
func (e *Engine) ComputeWeeklyPayment() (map[string]model.StaffPayment, error) {
	week := e.now().UTC().Format("2006-01-02")
	payments := make(map[string]model.StaffPayment)

	err := e.store.Update(func(state *model.State) error {
		s := state.Settings
		for staffID, rec := range s.TicketActivity {
			tickets := len(rec.Weekly)
			messages := rec.WeeklyMessages.Int()
			s.StaffPayments[staffID] = model.StaffPayment{
				Week:     week,
				Tickets:  tickets,
				Messages: messages,
				Points:   WeeklyPoints(tickets, messages),
			}
		}
		for staffID, payment := range s.StaffPayments {
			payments[staffID] = payment
		}
		return nil
	}, store.Settings)

	return payments, err
}

// PaymentRanking is one row of the payment ranking.
type PaymentRanking struct {
	StaffID string
	Points  int64
}

// RankByPayment recomputes payments and orders staff by points, most first.
func (e *Engine) RankByPayment() ([]PaymentRanking, error) {
	payments, err := e.ComputeWeeklyPayment()
	var order []string
	e.store.View(func(state *model.State) {
		order = state.Settings.OrderedStaff()
	})
	// Payments left over from members no longer tracked go last, by id.
	var rest []string
	for staffID := range payments {
		if !slices.Contains(order, staffID) {
			rest = append(rest, staffID)
		}
	}
	slices.Sort(rest)

	out := make([]PaymentRanking, 0, len(payments))
	for _, staffID := range append(order, rest...) {
		if payment, ok := payments[staffID]; ok {
			out = append(out, PaymentRanking{StaffID: staffID, Points: payment.Points})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Points > out[j].Points
	})
	return out, err
}

// GeneratePayoutDirectives recomputes payments and formats one "<prefix> <staff> <points>"
// line per member, in payment ranking order.
func (e *Engine) GeneratePayoutDirectives(prefix string) ([]string, error) {
	if prefix == "" {
		prefix = DefaultPayoutCommand
	}
	ranking, err := e.RankByPayment()
	directives := make([]string, 0, len(ranking))
	for _, r := range ranking {
		directives = append(directives, fmt.Sprintf("%s %s %d", prefix, r.StaffID, r.Points))
	}
	return directives, err
}
