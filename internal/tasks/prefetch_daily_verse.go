package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
)

// PrefetchDailyVerseTask warms the daily verse cache. Empty edition IDs
// are taken from the current preferences when the task runs.
type PrefetchDailyVerseTask struct {
	TranslationID string `json:"translation_id,omitempty"`
	ReciterID     string `json:"reciter_id,omitempty"`
}

// Config returns the queue configuration for daily verse prefetch tasks.
func (t PrefetchDailyVerseTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prefetch_daily_verse",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

type DailyVerseFetcher interface {
	Today(ctx context.Context, translationID, reciterID string) (*entities.DailyVerse, error)
}

type PreferencesSource interface {
	Preferences() entities.Preferences
}

// PrefetchDailyVerseProcessor creates a processor function for PrefetchDailyVerseTask.
func PrefetchDailyVerseProcessor(fetcher DailyVerseFetcher, prefs PreferencesSource) backlite.QueueProcessor[PrefetchDailyVerseTask] {
	return func(ctx context.Context, task PrefetchDailyVerseTask) error {
		if fetcher == nil {
			return fmt.Errorf("daily verse not configured")
		}

		translationID, reciterID := task.TranslationID, task.ReciterID
		if prefs != nil {
			current := prefs.Preferences()
			if translationID == "" {
				translationID = current.TranslationID
			}
			if reciterID == "" {
				reciterID = current.ReciterID
			}
		}

		verse, err := fetcher.Today(ctx, translationID, reciterID)
		if err != nil {
			return fmt.Errorf("prefetch daily verse: %w", err)
		}

		logging.Info().Str("component", "tasks").Str("date", verse.Date).
			Int("surah", verse.Surah.Number).Int("ayah", verse.NumberInSurah).
			Msg("Daily verse prefetched")
		return nil
	}
}

// NewPrefetchDailyVerseQueue creates a backlite queue for daily verse prefetch tasks.
func NewPrefetchDailyVerseQueue(fetcher DailyVerseFetcher, prefs PreferencesSource) backlite.Queue {
	return backlite.NewQueue(PrefetchDailyVerseProcessor(fetcher, prefs))
}
