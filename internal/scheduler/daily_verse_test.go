package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/entities"
)

type fakeSettings struct {
	show     bool
	schedule string
}

func (f *fakeSettings) Preferences() entities.Preferences {
	return entities.Preferences{TranslationID: "en.asad", ReciterID: "ar.alafasy"}
}

func (f *fakeSettings) GetShowDailyVerse() bool { return f.show }

func (f *fakeSettings) GetDailyVerseSchedule(cfg config.DailyVerse) string {
	if f.schedule != "" {
		return f.schedule
	}
	return cfg.Schedule
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func (f *fakeFetcher) Today(ctx context.Context, translationID, reciterID string) (*entities.DailyVerse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, translationID+"/"+reciterID)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return &entities.DailyVerse{Date: "2026-10-15"}, nil
}

func TestDailyVerseScheduler_Disabled(t *testing.T) {
	s := NewDailyVerseScheduler(config.DailyVerse{PrefetchEnabled: false, Schedule: "5 0 * * *"}, &fakeSettings{show: true}, &fakeFetcher{})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestDailyVerseScheduler_HiddenVerse(t *testing.T) {
	s := NewDailyVerseScheduler(config.DailyVerse{PrefetchEnabled: true, Schedule: "5 0 * * *"}, &fakeSettings{show: false}, &fakeFetcher{})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestDailyVerseScheduler_InvalidSchedule(t *testing.T) {
	s := NewDailyVerseScheduler(config.DailyVerse{PrefetchEnabled: true}, &fakeSettings{show: true, schedule: "daily"}, &fakeFetcher{})

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestDailyVerseScheduler_StartStop(t *testing.T) {
	s := NewDailyVerseScheduler(config.DailyVerse{PrefetchEnabled: true, Schedule: "5 0 * * *"}, &fakeSettings{show: true}, &fakeFetcher{})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 5, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestDailyVerseScheduler_ContextCancelStops(t *testing.T) {
	s := NewDailyVerseScheduler(config.DailyVerse{PrefetchEnabled: true, Schedule: "5 0 * * *"}, &fakeSettings{show: true}, &fakeFetcher{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestDailyVerseScheduler_Reschedule(t *testing.T) {
	settings := &fakeSettings{show: true}
	s := NewDailyVerseScheduler(config.DailyVerse{PrefetchEnabled: true, Schedule: "5 0 * * *"}, settings, &fakeFetcher{})

	require.NoError(t, s.Start(context.Background()))
	settings.schedule = "30 4 * * *"
	require.NoError(t, s.Reschedule(context.Background()))
	defer s.Stop()

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 4, next.Hour())
	assert.Equal(t, 30, next.Minute())
}

func TestDailyVerseScheduler_RunNow(t *testing.T) {
	fetcher := &fakeFetcher{done: make(chan struct{}, 1)}
	s := NewDailyVerseScheduler(config.DailyVerse{}, &fakeSettings{show: true}, fetcher)

	s.RunNow()

	select {
	case <-fetcher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("prefetch did not run")
	}
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.Equal(t, []string{"en.asad/ar.alafasy"}, fetcher.calls)
}
