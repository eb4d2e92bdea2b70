package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/settingsstore"
	"github.com/mrlokans/quransync/internal/tasks"
)

type Settings interface {
	Preferences() entities.Preferences
	GetShowDailyVerse() bool
	GetDailyVerseSchedule(cfg config.DailyVerse) string
}

// TaskQueue accepts background tasks.
type TaskQueue interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// DailyVerseScheduler warms the daily verse cache on a cron schedule so the
// verse is available offline from the first launch of the day.
type DailyVerseScheduler struct {
	cfg      config.DailyVerse
	settings Settings
	fetcher  tasks.DailyVerseFetcher
	queue    TaskQueue

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isFetching bool
	cancelFunc context.CancelFunc
}

func NewDailyVerseScheduler(cfg config.DailyVerse, settings Settings, fetcher tasks.DailyVerseFetcher) *DailyVerseScheduler {
	return &DailyVerseScheduler{
		cfg:      cfg,
		settings: settings,
		fetcher:  fetcher,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// SetTaskQueue routes prefetches through the task queue instead of running
// them inline.
func (s *DailyVerseScheduler) SetTaskQueue(queue TaskQueue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = queue
}

// Start begins the scheduler if prefetching is enabled
func (s *DailyVerseScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.PrefetchEnabled {
		logging.Info().Msg("Daily verse scheduler: disabled")
		return nil
	}
	if !s.settings.GetShowDailyVerse() {
		logging.Info().Msg("Daily verse scheduler: daily verse hidden, skipping")
		return nil
	}

	schedule := s.settings.GetDailyVerseSchedule(s.cfg)
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	entryID, err := s.cron.AddFunc(schedule, s.runPrefetch)
	if err != nil {
		return fmt.Errorf("failed to schedule prefetch job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(schedule, time.Now())
	logging.Info().Str("schedule", schedule).Time("next_run", *nextRun).Msg("Daily verse scheduler: started")

	go func() {
		<-cancelCtx.Done()
		if ctx.Err() != nil {
			s.Stop()
		}
	}()

	return nil
}

// Stop gracefully stops the scheduler and waits for a running prefetch.
func (s *DailyVerseScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	entryID := s.entryID
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.cron.Remove(entryID)
	if cancel != nil {
		cancel()
	}

	logging.Info().Msg("Daily verse scheduler: stopped")
}

// Reschedule updates the schedule (call after settings change)
func (s *DailyVerseScheduler) Reschedule(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// RunNow triggers an immediate prefetch
func (s *DailyVerseScheduler) RunNow() {
	go s.runPrefetch()
}

func (s *DailyVerseScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next prefetch will occur
func (s *DailyVerseScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

func (s *DailyVerseScheduler) runPrefetch() {
	s.mu.Lock()
	if s.isFetching {
		s.mu.Unlock()
		logging.Debug().Msg("Daily verse prefetch: skipped (already running)")
		return
	}
	s.isFetching = true
	queue := s.queue
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isFetching = false
		s.mu.Unlock()
	}()

	prefs := s.settings.Preferences()
	task := tasks.PrefetchDailyVerseTask{TranslationID: prefs.TranslationID, ReciterID: prefs.ReciterID}

	if queue != nil {
		ids, err := queue.Add(task).Save()
		if err != nil {
			logging.Error().Err(err).Msg("Daily verse prefetch: failed to enqueue")
			return
		}
		logging.Debug().Strs("task_ids", ids).Msg("Daily verse prefetch: enqueued")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := tasks.PrefetchDailyVerseProcessor(s.fetcher, s.settings)(ctx, task); err != nil {
		logging.Warn().Err(err).Msg("Daily verse prefetch failed")
	}
}
