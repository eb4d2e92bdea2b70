package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/quranapi"
)

type fakeSource struct {
	mu        sync.Mutex
	ayahs     int
	transLen  int
	failTrans bool
	failAudio bool
	calls     []string
	onTafsir  func(ayah int)
}

func (f *fakeSource) SurahEdition(ctx context.Context, number int, edition string) (*entities.SurahDetail, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("surah/%d/%s", number, edition))
	f.mu.Unlock()

	if ctx.Err() != nil {
		return nil, quranapi.ErrCancelled
	}

	count := f.ayahs
	switch {
	case edition == "ar.alafasy":
		if f.failAudio {
			return nil, errors.New("audio down")
		}
	case edition != "":
		if f.failTrans {
			return nil, &quranapi.StatusError{StatusCode: 500}
		}
		if f.transLen > 0 {
			count = f.transLen
		}
	}

	detail := &entities.SurahDetail{Surah: entities.Surah{Number: number, EnglishName: "Al-Test", NumberOfAyahs: f.ayahs}}
	for i := 1; i <= count; i++ {
		ayah := entities.Ayah{Number: i, NumberInSurah: i}
		switch edition {
		case "":
			ayah.Text = fmt.Sprintf("arabic %d", i)
		case "ar.alafasy":
			ayah.Audio = fmt.Sprintf("https://cdn/%d.mp3", i)
		default:
			ayah.Text = fmt.Sprintf("%s %d", edition, i)
		}
		detail.Ayahs = append(detail.Ayahs, ayah)
	}
	return detail, nil
}

func (f *fakeSource) Tafsir(ctx context.Context, surah, ayah int, edition string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf("tafsir/%d:%d/%s", surah, ayah, edition))
	f.mu.Unlock()
	if f.onTafsir != nil {
		f.onTafsir(ayah)
	}
	if ctx.Err() != nil {
		return "", quranapi.ErrCancelled
	}
	if ayah == 2 {
		return "", quranapi.ErrNotFound
	}
	return fmt.Sprintf("tafsir %d", ayah), nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeOffline map[int]*entities.SurahDetail

func (f fakeOffline) GetSurah(_ context.Context, number int) (*entities.SurahDetail, error) {
	return f[number], nil
}

func TestResolveSurah_MergesFacets(t *testing.T) {
	source := &fakeSource{ayahs: 3}
	r := New(source, fakeOffline{})

	detail, err := r.ResolveSurah(context.Background(), 1, "ar.alafasy", "en.asad", Options{})
	require.NoError(t, err)
	require.Len(t, detail.Ayahs, 3)
	assert.Equal(t, "arabic 1", detail.Ayahs[0].Text)
	assert.Equal(t, "en.asad 1", detail.Ayahs[0].Translation)
	assert.Equal(t, "https://cdn/1.mp3", detail.Ayahs[0].Audio)
	assert.Empty(t, detail.Ayahs[0].Tafsir)
}

func TestResolveSurah_TranslationShorterThanText(t *testing.T) {
	source := &fakeSource{ayahs: 7, transLen: 5}
	r := New(source, nil)

	detail, err := r.ResolveSurah(context.Background(), 1, "ar.alafasy", "en.asad", Options{ForceNetwork: true})
	require.NoError(t, err)
	require.Len(t, detail.Ayahs, 7)
	assert.Equal(t, "en.asad 5", detail.Ayahs[4].Translation)
	assert.Equal(t, TranslationUnavailable, detail.Ayahs[5].Translation)
	assert.Equal(t, TranslationUnavailable, detail.Ayahs[6].Translation)
}

func TestResolveSurah_AudioFailureDegrades(t *testing.T) {
	source := &fakeSource{ayahs: 2, failAudio: true}
	r := New(source, nil)

	detail, err := r.ResolveSurah(context.Background(), 1, "ar.alafasy", "en.asad", Options{ForceNetwork: true})
	require.NoError(t, err)
	for _, ayah := range detail.Ayahs {
		assert.Empty(t, ayah.Audio)
		assert.NotEqual(t, TranslationUnavailable, ayah.Translation)
	}
}

func TestResolveSurah_TranslationFailureFails(t *testing.T) {
	source := &fakeSource{ayahs: 2, failTrans: true}
	r := New(source, nil)

	detail, err := r.ResolveSurah(context.Background(), 1, "ar.alafasy", "en.asad", Options{ForceNetwork: true})
	assert.Nil(t, detail)
	require.Error(t, err)
	assert.False(t, quranapi.IsCancelled(err))
}

func TestResolveSurah_OfflineFirst(t *testing.T) {
	stored := &entities.SurahDetail{Surah: entities.Surah{Number: 5}, Ayahs: []entities.Ayah{{Text: "stored"}}}
	source := &fakeSource{ayahs: 2}
	r := New(source, fakeOffline{5: stored})

	detail, err := r.ResolveSurah(context.Background(), 5, "ar.alafasy", "en.sahih", Options{})
	require.NoError(t, err)
	assert.Same(t, stored, detail)
	assert.Zero(t, source.callCount())
}

func TestResolveSurah_ForceNetworkSkipsOffline(t *testing.T) {
	stored := &entities.SurahDetail{Surah: entities.Surah{Number: 5}}
	source := &fakeSource{ayahs: 2}
	r := New(source, fakeOffline{5: stored})

	detail, err := r.ResolveSurah(context.Background(), 5, "ar.alafasy", "en.asad", Options{ForceNetwork: true})
	require.NoError(t, err)
	assert.NotSame(t, stored, detail)
	assert.Equal(t, 3, source.callCount())
}

func TestResolveSurah_FallbackOffline(t *testing.T) {
	stored := &entities.SurahDetail{Surah: entities.Surah{Number: 5}}
	source := &fakeSource{ayahs: 2, failTrans: true}
	r := New(source, fakeOffline{5: stored})

	detail, err := r.ResolveSurah(context.Background(), 5, "ar.alafasy", "en.asad", Options{ForceNetwork: true, FallbackOffline: true})
	require.NoError(t, err)
	assert.Same(t, stored, detail)
}

func TestResolveSurah_Tafsir(t *testing.T) {
	source := &fakeSource{ayahs: 3}
	r := New(source, nil)

	detail, err := r.ResolveSurah(context.Background(), 1, "ar.alafasy", "en.asad",
		Options{ForceNetwork: true, IncludeTafsir: true, TafsirID: "ar.jalalayn"})
	require.NoError(t, err)
	assert.Equal(t, "tafsir 1", detail.Ayahs[0].Tafsir)
	assert.Empty(t, detail.Ayahs[1].Tafsir)
	assert.Equal(t, "tafsir 3", detail.Ayahs[2].Tafsir)
}

func TestResolveSurah_CancelDuringTafsir(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{ayahs: 5, onTafsir: func(ayah int) {
		if ayah == 2 {
			cancel()
		}
	}}
	r := New(source, nil)

	detail, err := r.ResolveSurah(ctx, 1, "ar.alafasy", "en.asad",
		Options{ForceNetwork: true, IncludeTafsir: true, TafsirID: "ar.jalalayn"})
	assert.Nil(t, detail)
	assert.ErrorIs(t, err, quranapi.ErrCancelled)

	tafsirCalls := 0
	for _, c := range source.calls {
		if len(c) > 6 && c[:6] == "tafsir" {
			tafsirCalls++
		}
	}
	assert.Equal(t, 2, tafsirCalls)
}

func TestResolveSurah_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{ayahs: 2}
	r := New(source, nil)

	_, err := r.ResolveSurah(ctx, 1, "ar.alafasy", "en.asad", Options{ForceNetwork: true})
	assert.ErrorIs(t, err, quranapi.ErrCancelled)
	assert.Zero(t, source.callCount())
}

func TestMerge_AudioSecondaryFallback(t *testing.T) {
	arabic := &entities.SurahDetail{Ayahs: []entities.Ayah{{Text: "a"}}}
	audio := &entities.SurahDetail{Ayahs: []entities.Ayah{{AudioSecondary: []string{"https://alt/1.mp3"}}}}

	merged := Merge(arabic, nil, audio)
	assert.Equal(t, "https://alt/1.mp3", merged.Ayahs[0].Audio)
	assert.Equal(t, TranslationUnavailable, merged.Ayahs[0].Translation)
	assert.Nil(t, merged.Ayahs[0].AudioSecondary)
}
