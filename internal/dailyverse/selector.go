// Package dailyverse picks the verse of the day. The pick depends only on
// the calendar date, so every user sees the same verse on a given day.
package dailyverse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/offline"
	"github.com/mrlokans/quransync/internal/quranapi"
)

const (
	// ArabicEdition is the edition used for the verse text.
	ArabicEdition = "quran-uthmani"

	stride = 13
)

type AyahSource interface {
	Ayah(ctx context.Context, globalNumber int, edition string) (*quranapi.AyahResult, error)
}

type Cache interface {
	GetDailyVerse(ctx context.Context, key string) (*entities.DailyVerse, error)
	SetDailyVerse(ctx context.Context, key string, verse *entities.DailyVerse) error
}

type Selector struct {
	source AyahSource
	cache  Cache
	now    func() time.Time
}

func NewSelector(source AyahSource, cache Cache) *Selector {
	return &Selector{source: source, cache: cache, now: time.Now}
}

// SetClock overrides the time source; the local calendar date of the
// returned time decides the pick.
func (s *Selector) SetClock(now func() time.Time) {
	s.now = now
}

// Index returns the global ayah number picked for the date of t.
func Index(t time.Time) int {
	return (t.YearDay()*stride)%entities.TotalAyahs + 1
}

// DateKey formats the calendar date of t as Y-M-D without zero padding.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// Today returns the verse of the day for the given editions. Text and
// translation are required; audio is best-effort. Results are cached per
// date and edition pair.
func (s *Selector) Today(ctx context.Context, translationID, reciterID string) (*entities.DailyVerse, error) {
	today := s.now()
	date := DateKey(today)
	key := offline.DailyVerseKey(date, translationID, reciterID)

	cached, err := s.cache.GetDailyVerse(ctx, key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Failed to read cached daily verse")
	}
	if cached != nil {
		return cached, nil
	}

	index := Index(today)

	arabic, err := s.source.Ayah(ctx, index, ArabicEdition)
	if err != nil {
		return nil, fmt.Errorf("daily verse text: %w", err)
	}
	translation, err := s.source.Ayah(ctx, index, translationID)
	if err != nil {
		return nil, fmt.Errorf("daily verse translation: %w", err)
	}

	verse := &entities.DailyVerse{
		Date:          date,
		Number:        index,
		Text:          arabic.Text,
		Translation:   translation.Text,
		Surah:         arabic.Surah,
		NumberInSurah: arabic.NumberInSurah,
	}

	audio, err := s.source.Ayah(ctx, index, reciterID)
	switch {
	case err == nil:
		verse.Audio = audio.Audio
		if verse.Audio == "" && len(audio.AudioSecondary) > 0 {
			verse.Audio = audio.AudioSecondary[0]
		}
	case errors.Is(err, quranapi.ErrCancelled):
		return nil, err
	default:
		logging.Debug().Err(err).Int("ayah", index).Msg("Daily verse audio unavailable")
	}

	if err := s.cache.SetDailyVerse(ctx, key, verse); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Failed to cache daily verse")
	}
	return verse, nil
}
