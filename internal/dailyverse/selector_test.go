package dailyverse

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quransync/internal/database"
	"github.com/mrlokans/quransync/internal/database/kv"
	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/offline"
	"github.com/mrlokans/quransync/internal/quranapi"
)

type fakeSource struct {
	calls     []string
	failTrans bool
	failAudio bool
}

func (f *fakeSource) Ayah(_ context.Context, n int, edition string) (*quranapi.AyahResult, error) {
	f.calls = append(f.calls, fmt.Sprintf("%d/%s", n, edition))
	result := &quranapi.AyahResult{
		Ayah:  entities.Ayah{Number: n, NumberInSurah: 5, Text: edition + " text"},
		Surah: entities.Surah{Number: 2, EnglishName: "Al-Baqara"},
	}
	switch edition {
	case ArabicEdition:
	case "ar.alafasy":
		if f.failAudio {
			return nil, errors.New("audio down")
		}
		result.AudioSecondary = []string{"https://alt/audio.mp3"}
	default:
		if f.failTrans {
			return nil, &quranapi.StatusError{StatusCode: 500}
		}
	}
	return result, nil
}

func setupSelector(t *testing.T, source *fakeSource, now time.Time) (*Selector, *offline.Store) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := offline.NewStore(kv.NewRepository(db.DB))
	s := NewSelector(source, store)
	s.SetClock(func() time.Time { return now })
	return s, store
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 14, Index(time.Date(2026, 1, 1, 10, 0, 0, 0, time.Local)))
	assert.Equal(t, 3745, Index(time.Date(2026, 10, 15, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 4759, Index(time.Date(2024, 12, 31, 23, 59, 0, 0, time.Local)))
	for day := 1; day <= 366; day++ {
		n := Index(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day-1))
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, entities.TotalAyahs)
	}
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2026-3-7", DateKey(time.Date(2026, 3, 7, 12, 0, 0, 0, time.Local)))
}

func TestToday_CachesSameDay(t *testing.T) {
	source := &fakeSource{}
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.Local)
	s, _ := setupSelector(t, source, now)
	ctx := context.Background()

	first, err := s.Today(ctx, "en.asad", "ar.alafasy")
	require.NoError(t, err)
	assert.Equal(t, 3745, first.Number)
	assert.Equal(t, "quran-uthmani text", first.Text)
	assert.Equal(t, "en.asad text", first.Translation)
	assert.Equal(t, "https://alt/audio.mp3", first.Audio)
	assert.Equal(t, 2, first.Surah.Number)
	assert.Equal(t, 5, first.NumberInSurah)
	assert.Len(t, source.calls, 3)

	second, err := s.Today(ctx, "en.asad", "ar.alafasy")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, source.calls, 3)

	// Another translation is a separate cache entry.
	_, err = s.Today(ctx, "en.sahih", "ar.alafasy")
	require.NoError(t, err)
	assert.Len(t, source.calls, 6)
}

func TestToday_AudioIsBestEffort(t *testing.T) {
	source := &fakeSource{failAudio: true}
	s, _ := setupSelector(t, source, time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local))

	verse, err := s.Today(context.Background(), "en.asad", "ar.alafasy")
	require.NoError(t, err)
	assert.Empty(t, verse.Audio)
	assert.Equal(t, 14, verse.Number)
}

func TestToday_TranslationFailureNotCached(t *testing.T) {
	source := &fakeSource{failTrans: true}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	s, store := setupSelector(t, source, now)
	ctx := context.Background()

	verse, err := s.Today(ctx, "en.asad", "ar.alafasy")
	assert.Nil(t, verse)
	require.Error(t, err)

	cached, err := store.GetDailyVerse(ctx, offline.DailyVerseKey(DateKey(now), "en.asad", "ar.alafasy"))
	require.NoError(t, err)
	assert.Nil(t, cached)
}
