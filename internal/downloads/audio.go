package downloads

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
)

// AudioURLs lists the audio locator of every ayah, falling back to the CDN
// pattern when the edition carried none.
func AudioURLs(detail *entities.SurahDetail, reciterID string) []string {
	urls := make([]string, 0, len(detail.Ayahs))
	for _, ayah := range detail.Ayahs {
		if ayah.Audio != "" {
			urls = append(urls, ayah.Audio)
			continue
		}
		urls = append(urls, quranapi.CDNAudioURL(reciterID, ayah.Number))
	}
	return urls
}

// CacheSurahAudio stores the audio of every ayah in the blob cache, in
// concurrent batches. Already cached files are skipped, missing files (404)
// are skipped silently and other failures are logged. Only cancellation is
// returned as an error.
func (m *Manager) CacheSurahAudio(ctx context.Context, detail *entities.SurahDetail, reciterID string) error {
	urls := AudioURLs(detail, reciterID)

	for start := 0; start < len(urls); start += m.audioBatch {
		if ctx.Err() != nil {
			return quranapi.ErrCancelled
		}
		end := min(start+m.audioBatch, len(urls))

		var wg sync.WaitGroup
		for _, url := range urls[start:end] {
			wg.Add(1)
			go func(url string) {
				defer wg.Done()
				m.cacheOne(ctx, url)
			}(url)
		}
		wg.Wait()
	}

	if ctx.Err() != nil {
		return quranapi.ErrCancelled
	}
	return nil
}

func (m *Manager) cacheOne(ctx context.Context, url string) {
	if ctx.Err() != nil || m.cache.Has(url) {
		return
	}

	data, err := m.fetcher.FetchAudio(ctx, url)
	switch {
	case err == nil:
	case errors.Is(err, quranapi.ErrCancelled):
		return
	case errors.Is(err, quranapi.ErrNotFound):
		logging.Debug().Str("url", url).Msg("Audio not available")
		return
	default:
		logging.Warn().Err(err).Str("url", url).Msg("Failed to cache audio")
		return
	}

	if err := m.cache.Put(url, data); err != nil {
		logging.Warn().Err(err).Str("url", url).Msg("Failed to store audio")
	}
}

// ClearOfflineAudio drops every cached audio file and marks all stored
// surahs as having no audio. Text, translation and tafsir stay as they are.
func (m *Manager) ClearOfflineAudio(ctx context.Context) error {
	if err := m.cache.Clear(); err != nil {
		return fmt.Errorf("clear audio cache: %w", err)
	}
	cleared, err := m.store.ClearAudioFlags(ctx)
	if err != nil {
		return fmt.Errorf("clear audio flags: %w", err)
	}
	logging.Info().Int("surahs", cleared).Msg("Offline audio cleared")
	return nil
}

// ErrSurahNotDownloaded is returned by DeleteSurah for surahs absent from
// the offline pack.
var ErrSurahNotDownloaded = errors.New("surah not downloaded")

// DeleteSurah removes one surah from the offline pack together with the
// audio cached for it, and refreshes the downloaded count in the global
// metadata.
func (m *Manager) DeleteSurah(ctx context.Context, number int) error {
	unlock := m.surahLocks.Lock(number)
	defer unlock()

	meta, err := m.store.GetSurahMeta(ctx, number)
	if err != nil {
		return err
	}
	if meta == nil {
		return ErrSurahNotDownloaded
	}

	if meta.HasAudio {
		detail, err := m.store.GetSurah(ctx, number)
		if err != nil {
			return err
		}
		if detail != nil {
			for _, url := range AudioURLs(detail, meta.ReciterID) {
				if err := m.cache.Remove(url); err != nil {
					logging.Warn().Err(err).Str("url", url).Msg("Failed to remove cached audio")
				}
			}
		}
	}

	if err := m.store.DeleteSurah(ctx, number); err != nil {
		return fmt.Errorf("delete surah %d: %w", number, err)
	}

	global, err := m.store.GetMetadata(ctx)
	if err != nil || global == nil {
		return err
	}
	count, err := m.store.CountSurahMeta(ctx)
	if err != nil {
		return err
	}
	global.TotalDownloaded = count
	return m.store.SetMetadata(ctx, *global)
}

// ClearAll stops any active run and removes all downloaded content and audio.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.Stop()
	if err := m.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear offline content: %w", err)
	}
	if err := m.cache.Clear(); err != nil {
		return fmt.Errorf("clear audio cache: %w", err)
	}
	logging.Info().Msg("All downloads cleared")
	return nil
}

// Overview describes the offline pack.
type Overview struct {
	Surahs     []entities.SurahMeta      `json:"surahs"`
	Metadata   *entities.OfflineMetadata `json:"metadata,omitempty"`
	Stale      bool                      `json:"stale"`
	Running    bool                      `json:"running"`
	AudioFiles int                       `json:"audio_files"`
	AudioBytes int64                     `json:"audio_bytes"`
}

func (m *Manager) Overview(ctx context.Context, prefs entities.Preferences) (*Overview, error) {
	surahs, err := m.store.ListSurahMeta(ctx)
	if err != nil {
		return nil, err
	}
	global, err := m.store.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}
	files, size, err := m.cache.Stats()
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to read audio cache stats")
	}

	return &Overview{
		Surahs:     surahs,
		Metadata:   global,
		Stale:      IsStale(global, prefs),
		Running:    m.IsRunning(),
		AudioFiles: files,
		AudioBytes: size,
	}, nil
}
