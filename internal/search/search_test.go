package search

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
	"github.com/mrlokans/quransync/internal/resolver"
)

type fakeRemote struct {
	mu      sync.Mutex
	matches map[string][]quranapi.SearchMatch
	errs    map[string]error
	calls   []string
}

func (f *fakeRemote) Search(ctx context.Context, query, edition string) ([]quranapi.SearchMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, edition)
	if err := f.errs[edition]; err != nil {
		return nil, err
	}
	return f.matches[edition], nil
}

type fakeLister struct {
	surahs []entities.Surah
}

func (f *fakeLister) Surahs(ctx context.Context) ([]entities.Surah, error) {
	return f.surahs, nil
}

type fakeLibrary struct {
	details map[int]*entities.SurahDetail
}

func (f *fakeLibrary) ListSurahMeta(ctx context.Context) ([]entities.SurahMeta, error) {
	var metas []entities.SurahMeta
	for n := 1; n <= entities.TotalSurahs; n++ {
		if _, ok := f.details[n]; ok {
			metas = append(metas, entities.SurahMeta{Number: n})
		}
	}
	return metas, nil
}

func (f *fakeLibrary) GetSurah(ctx context.Context, number int) (*entities.SurahDetail, error) {
	return f.details[number], nil
}

type fakeResolver struct {
	details map[int]*entities.SurahDetail
	calls   []int
	opts    []resolver.Options
}

func (f *fakeResolver) ResolveSurah(ctx context.Context, number int, reciterID, translationID string, opts resolver.Options) (*entities.SurahDetail, error) {
	f.calls = append(f.calls, number)
	f.opts = append(f.opts, opts)
	if d, ok := f.details[number]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("surah %d: %w", number, quranapi.ErrNotFound)
}

var (
	fatiha = entities.Surah{Number: 1, Name: "سُورَةُ ٱلْفَاتِحَةِ", EnglishName: "Al-Faatiha", EnglishNameTranslation: "The Opening", NumberOfAyahs: 7, RevelationType: entities.RevelationMeccan}
	baqara = entities.Surah{Number: 2, Name: "سُورَةُ البَقَرَةِ", EnglishName: "Al-Baqara", EnglishNameTranslation: "The Cow", NumberOfAyahs: 286, RevelationType: entities.RevelationMedinan}
)

func detailWith(surah entities.Surah, ayahs ...entities.Ayah) *entities.SurahDetail {
	return &entities.SurahDetail{Surah: surah, Ayahs: ayahs}
}

func newTestService(remote *fakeRemote, lib *fakeLibrary, res *fakeResolver) *Service {
	if remote == nil {
		remote = &fakeRemote{}
	}
	if lib == nil {
		lib = &fakeLibrary{}
	}
	if res == nil {
		res = &fakeResolver{}
	}
	return NewService(remote, &fakeLister{surahs: []entities.Surah{fatiha, baqara}}, lib, res)
}

func TestSearch_RemoteScopesAndDedup(t *testing.T) {
	remote := &fakeRemote{matches: map[string][]quranapi.SearchMatch{
		"en.asad": {
			{Surah: baqara, NumberInSurah: 255, Text: "God - there is no deity save Him"},
		},
		"quran-uthmani": {
			{Surah: baqara, NumberInSurah: 255, Text: "ٱللَّهُ لَآ إِلَٰهَ إِلَّا هُوَ"},
			{Surah: fatiha, NumberInSurah: 2, Text: "ٱلْحَمْدُ لِلَّهِ"},
		},
	}}
	svc := newTestService(remote, nil, nil)

	result, err := svc.Search(context.Background(), Query{
		Text:          "god",
		Scopes:        []Scope{ScopeTranslation, ScopeArabic},
		TranslationID: "en.asad",
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, SourceTranslation, result.Matches[0].Source)
	assert.Equal(t, 255, result.Matches[0].NumberInSurah)
	assert.Equal(t, SourceArabic, result.Matches[1].Source)
	assert.False(t, result.Partial)
	assert.ElementsMatch(t, []string{"en.asad", "quran-uthmani"}, remote.calls)
}

func TestSearch_TafsirScopeUsesDefaultEdition(t *testing.T) {
	remote := &fakeRemote{}
	svc := newTestService(remote, nil, nil)

	_, err := svc.Search(context.Background(), Query{Text: "x", Scopes: []Scope{ScopeTafsir}, Offline: true})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultTafsirID}, remote.calls)
}

func TestSearch_RemoteFailureIsPartial(t *testing.T) {
	remote := &fakeRemote{
		errs: map[string]error{"en.asad": &quranapi.StatusError{StatusCode: 500}},
		matches: map[string][]quranapi.SearchMatch{
			"quran-uthmani": {{Surah: fatiha, NumberInSurah: 1, Text: "بِسْمِ"}},
		},
	}
	svc := newTestService(remote, nil, nil)

	result, err := svc.Search(context.Background(), Query{
		Text:          "bism",
		Scopes:        []Scope{ScopeTranslation, ScopeArabic},
		TranslationID: "en.asad",
	})
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Equal(t, 1, result.Count)
}

func TestSearch_SurahNames(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	ctx := context.Background()

	result, err := svc.Search(ctx, Query{Text: "BAQARA", Scopes: []Scope{ScopeSurah}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, 2, result.Matches[0].Surah.Number)
	assert.Equal(t, 0, result.Matches[0].NumberInSurah)
	assert.Equal(t, "Al-Baqara / سُورَةُ البَقَرَةِ", result.Matches[0].Text)

	result, err = svc.Search(ctx, Query{Text: "opening", Scopes: []Scope{ScopeSurah}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, 1, result.Matches[0].Surah.Number)

	result, err = svc.Search(ctx, Query{Text: "البقرة", Scopes: []Scope{ScopeSurah}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, 2, result.Matches[0].Surah.Number)
}

func TestSearch_DirectReference(t *testing.T) {
	res := &fakeResolver{details: map[int]*entities.SurahDetail{
		2: detailWith(baqara,
			entities.Ayah{NumberInSurah: 254, Text: "a254", Translation: "t254"},
			entities.Ayah{NumberInSurah: 255, Text: "a255", Translation: "t255", Tafsir: "f255"},
		),
	}}
	svc := newTestService(nil, nil, res)
	ctx := context.Background()

	result, err := svc.Search(ctx, Query{Text: "2:255", Scopes: []Scope{ScopeAyah}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "t255", result.Matches[0].Text)
	assert.Equal(t, SourceAyah, result.Matches[0].Source)
	assert.True(t, res.opts[0].FallbackOffline)

	result, err = svc.Search(ctx, Query{Text: "2 255", Scopes: []Scope{ScopeAyah, ScopeArabic}, Offline: true})
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)
	assert.Equal(t, "a255", result.Matches[0].Text)

	result, err = svc.Search(ctx, Query{Text: "2:255", Scopes: []Scope{ScopeAyah, ScopeTafsir}, Offline: true})
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)
	assert.Equal(t, "f255", result.Matches[0].Text)
}

func TestSearch_OfflineScan(t *testing.T) {
	lib := &fakeLibrary{details: map[int]*entities.SurahDetail{
		2: detailWith(baqara,
			entities.Ayah{NumberInSurah: 255, Text: "ٱللَّهُ لَآ إِلَٰهَ إِلَّا هُوَ", Translation: "God - there is no deity save Him"},
			entities.Ayah{NumberInSurah: 256, Text: "لَآ إِكْرَاهَ فِى ٱلدِّينِ", Translation: "There shall be no coercion in matters of faith"},
		),
	}}
	res := &fakeResolver{}
	svc := newTestService(&fakeRemote{}, lib, res)
	ctx := context.Background()

	result, err := svc.Search(ctx, Query{Text: "No Deity", Scopes: []Scope{ScopeTranslation}, TranslationID: "en.asad"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, SourceTranslationOffline, result.Matches[0].Source)
	assert.Equal(t, 255, result.Matches[0].NumberInSurah)
	assert.Empty(t, res.calls)

	result, err = svc.Search(ctx, Query{Text: "اكراه", Scopes: []Scope{ScopeArabic}})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, SourceArabicOffline, result.Matches[0].Source)
	assert.Equal(t, 256, result.Matches[0].NumberInSurah)
}

func TestSearch_TranslationFallbackStopsEarly(t *testing.T) {
	manyMatches := func(surah entities.Surah) *entities.SurahDetail {
		detail := detailWith(surah)
		for i := 1; i <= 20; i++ {
			detail.Ayahs = append(detail.Ayahs, entities.Ayah{NumberInSurah: i, Translation: "mercy"})
		}
		return detail
	}
	res := &fakeResolver{details: map[int]*entities.SurahDetail{
		1: manyMatches(fatiha),
		2: manyMatches(baqara),
	}}
	svc := NewService(&fakeRemote{}, &fakeLister{surahs: []entities.Surah{fatiha, baqara, {Number: 3}}}, &fakeLibrary{}, res)

	result, err := svc.Search(context.Background(), Query{Text: "mercy", Scopes: []Scope{ScopeTranslation}, TranslationID: "xx.custom"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.calls)
	assert.Equal(t, 40, result.Count)
	assert.Equal(t, SourceTranslationFallback, result.Matches[0].Source)
	assert.True(t, res.opts[0].ForceNetwork)
}

func TestSearch_OfflineSkipsFallback(t *testing.T) {
	res := &fakeResolver{}
	svc := newTestService(nil, nil, res)

	result, err := svc.Search(context.Background(), Query{Text: "mercy", Scopes: []Scope{ScopeTranslation}, TranslationID: "en.asad", Offline: true})
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.NotNil(t, result.Matches)
	assert.Empty(t, res.calls)
}

func TestSearch_Filters(t *testing.T) {
	remote := &fakeRemote{matches: map[string][]quranapi.SearchMatch{
		"en.asad": {
			{Surah: baqara, NumberInSurah: 10, Text: "a"},
			{Surah: baqara, NumberInSurah: 255, Text: "b"},
			{Surah: fatiha, NumberInSurah: 1, Text: "c"},
		},
	}}
	svc := newTestService(remote, nil, nil)
	ctx := context.Background()

	result, err := svc.Search(ctx, Query{Text: "x", Scopes: []Scope{ScopeTranslation}, TranslationID: "en.asad", Juz: 3})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, 255, result.Matches[0].NumberInSurah)

	result, err = svc.Search(ctx, Query{Text: "x", Scopes: []Scope{ScopeTranslation}, TranslationID: "en.asad", Revelation: entities.RevelationMeccan})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, 1, result.Matches[0].Surah.Number)
}

func TestSearch_Errors(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	_, err := svc.Search(context.Background(), Query{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	remote := &fakeRemote{errs: map[string]error{"en.asad": quranapi.ErrCancelled}}
	svc = newTestService(remote, nil, nil)
	_, err = svc.Search(ctx, Query{Text: "x", Scopes: []Scope{ScopeTranslation}, TranslationID: "en.asad"})
	assert.True(t, errors.Is(err, quranapi.ErrCancelled))
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		in          string
		surah, ayah int
		ok          bool
	}{
		{"2:255", 2, 255, true},
		{"2 255", 2, 255, true},
		{" 114:6 ", 114, 6, true},
		{"1:8", 0, 0, false},
		{"115:1", 0, 0, false},
		{"2:2555", 0, 0, false},
		{"mercy", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			surah, ayah, ok := ParseReference(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.surah, surah)
			assert.Equal(t, tt.ayah, ayah)
		})
	}
}

func TestParseScope(t *testing.T) {
	scope, err := ParseScope(" Arabic ")
	require.NoError(t, err)
	assert.Equal(t, ScopeArabic, scope)

	_, err = ParseScope("juz")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cafe", normalize("Café"))
	assert.Equal(t, "سورة البقرة", normalize("سُورَةُ البَقَرَةِ"))
	assert.True(t, contains("The Most Merciful", normalize("merciful")))
	assert.False(t, contains("", "x"))
}
