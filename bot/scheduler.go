package bot

import (
	"context"
	"sync"
	"time"

	"community-bot/model"
	"community-bot/utils"

	"go.uber.org/zap"
)

const (
	cooldownPruneInterval = time.Hour
	statsPruneInterval    = 24 * time.Hour
)

// Scheduler runs the periodic jobs: cooldown cleanup, transcript scans, daily stats
// pruning and the weekly payout.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot *Bot) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	cfg := s.bot.GetConfig()

	s.wg.Add(1)
	go s.startScheduledTasks(cfg)

	if cfg.Weekly.Enabled {
		s.wg.Add(1)
		go s.startWeeklyTask(cfg.Weekly)
	}
}

// Stop terminates all scheduled tasks gracefully. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Scheduler) startScheduledTasks(cfg *model.Config) {
	defer s.wg.Done()
	logger := s.bot.GetLogger()

	cooldownTicker := time.NewTicker(cooldownPruneInterval)
	defer cooldownTicker.Stop()

	var scanC, pruneC <-chan time.Time
	if cfg.TranscriptScanInterval > 0 {
		scanTicker := time.NewTicker(cfg.TranscriptScanInterval)
		defer scanTicker.Stop()
		scanC = scanTicker.C
	}
	if cfg.StatsRetentionDays > 0 {
		pruneTicker := time.NewTicker(statsPruneInterval)
		defer pruneTicker.Stop()
		pruneC = pruneTicker.C
	}

	for {
		select {
		case <-cooldownTicker.C:
			removed := s.bot.Leveling.PruneCooldowns(cooldownPruneInterval)
			logger.Debug("Cleaned up experience cooldowns", zap.Int("removed", removed))
		case <-scanC:
			ctx, cancel := s.jobContext(cfg.TranscriptScanInterval)
			if _, err := s.bot.ScanTranscripts(ctx); err != nil {
				logger.Warn("Scheduled transcript scan failed", zap.Error(err))
				s.report(utils.Warn, "工单扫描", err)
			}
			cancel()
		case <-pruneC:
			if _, err := s.bot.Stats.Prune(cfg.StatsRetentionDays); err != nil {
				logger.Warn("Failed to prune message statistics", zap.Error(err))
			}
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) startWeeklyTask(weekly model.WeeklyScheduleConfig) {
	defer s.wg.Done()
	logger := s.bot.GetLogger()

	for {
		now := time.Now()
		next := NextWeeklyRun(now, weekly)
		logger.Info("Next weekly payout scheduled", zap.Time("at", next))

		select {
		case <-time.After(next.Sub(now)):
			ctx, cancel := s.jobContext(10 * time.Minute)
			if err := s.bot.RunWeeklyPayout(ctx, weekly.AutoReset); err != nil {
				logger.Error("Weekly payout failed", zap.Error(err))
				s.report(utils.Error, "每周结算", err)
			}
			cancel()
		case <-s.done:
			return
		}
	}
}

// report posts a failed job to the log channel.
func (s *Scheduler) report(level utils.LogLevel, operation string, jobErr error) {
	send := utils.LogWarn
	if level == utils.Error {
		send = utils.LogError
	}
	if err := send(s.bot.Session, s.bot.LogChannelID(), "Scheduler", operation, jobErr.Error()); err != nil {
		s.bot.GetLogger().Warn("Failed to report job failure", zap.Error(err))
	}
}

// jobContext returns a context that ends after timeout or when the scheduler stops.
func (s *Scheduler) jobContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// NextWeeklyRun returns the first moment strictly after now that falls on the
// configured weekday and hour in the configured time zone.
func NextWeeklyRun(now time.Time, weekly model.WeeklyScheduleConfig) time.Time {
	loc := weekly.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	days := (int(weekly.Weekday) - int(local.Weekday()) + 7) % 7
	next := time.Date(local.Year(), local.Month(), local.Day()+days, weekly.Hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
