package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/quransync/internal/downloads"
	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
)

// SyncSurahsTask downloads surahs for offline reading in the background.
type SyncSurahsTask struct {
	// SurahNumbers selects the surahs to download; empty means all.
	SurahNumbers  []int  `json:"surah_numbers,omitempty"`
	TranslationID string `json:"translation_id"`
	ReciterID     string `json:"reciter_id"`
	TafsirID      string `json:"tafsir_id,omitempty"`
	IncludeAudio  bool   `json:"include_audio"`
	IncludeTafsir bool   `json:"include_tafsir"`
}

// Config returns the queue configuration for offline sync tasks.
func (t SyncSurahsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_surahs",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     2 * time.Hour,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

type Syncer interface {
	Sync(ctx context.Context, req downloads.Request, onProgress downloads.ProgressFunc) (*downloads.Result, error)
}

type SurahLister interface {
	Surahs(ctx context.Context) ([]entities.Surah, error)
}

// SelectSurahs picks the requested surahs from the listing in ascending
// order. An empty selection returns the whole listing.
func SelectSurahs(listing []entities.Surah, numbers []int) ([]entities.Surah, error) {
	if len(numbers) == 0 {
		return listing, nil
	}

	wanted := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > entities.TotalSurahs {
			return nil, fmt.Errorf("invalid surah number %d", n)
		}
		wanted[n] = true
	}

	selected := make([]entities.Surah, 0, len(wanted))
	for _, s := range listing {
		if wanted[s.Number] {
			selected = append(selected, s)
			delete(wanted, s.Number)
		}
	}
	if len(wanted) > 0 {
		return nil, fmt.Errorf("%d requested surahs are missing from the listing", len(wanted))
	}
	return selected, nil
}

// SyncSurahsProcessor creates a processor function for SyncSurahsTask.
// A run cancelled by a newer one completes without error so that it is not
// retried.
func SyncSurahsProcessor(syncer Syncer, lister SurahLister) backlite.QueueProcessor[SyncSurahsTask] {
	return func(ctx context.Context, task SyncSurahsTask) error {
		if syncer == nil || lister == nil {
			return fmt.Errorf("offline sync not configured")
		}

		listing, err := lister.Surahs(ctx)
		if err != nil {
			return fmt.Errorf("list surahs: %w", err)
		}
		surahs, err := SelectSurahs(listing, task.SurahNumbers)
		if err != nil {
			return err
		}

		result, err := syncer.Sync(ctx, downloads.Request{
			Surahs:        surahs,
			TranslationID: task.TranslationID,
			ReciterID:     task.ReciterID,
			IncludeAudio:  task.IncludeAudio,
			IncludeTafsir: task.IncludeTafsir,
			TafsirID:      task.TafsirID,
		}, nil)
		if errors.Is(err, quranapi.ErrCancelled) {
			logging.Info().Str("component", "tasks").Msg("Offline sync task cancelled")
			return nil
		}
		if err != nil {
			return fmt.Errorf("offline sync: %w", err)
		}

		logging.Info().Str("component", "tasks").Str("run_id", result.RunID).
			Int("completed", len(result.Completed)).Int("failed", len(result.Failed)).
			Msg("Offline sync task complete")
		return nil
	}
}

// NewSyncSurahsQueue creates a backlite queue for offline sync tasks.
func NewSyncSurahsQueue(syncer Syncer, lister SurahLister) backlite.Queue {
	return backlite.NewQueue(SyncSurahsProcessor(syncer, lister))
}
