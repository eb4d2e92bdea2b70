// Package search finds ayahs and surahs across remote editions, the
// downloaded library and the surah listing.
package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/quransync/internal/dailyverse"
	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/juz"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
	"github.com/mrlokans/quransync/internal/resolver"
)

type Scope string

const (
	ScopeTranslation Scope = "translation"
	ScopeArabic      Scope = "arabic"
	ScopeTafsir      Scope = "tafsir"
	ScopeSurah       Scope = "surah"
	ScopeAyah        Scope = "ayah"
)

// Match sources.
const (
	SourceTranslation         = "translation"
	SourceArabic              = "arabic"
	SourceTafsir              = "tafsir"
	SourceSurah               = "surah"
	SourceAyah                = "ayah"
	SourceTranslationOffline  = "translation-offline"
	SourceArabicOffline       = "arabic-offline"
	SourceTafsirOffline       = "tafsir-offline"
	SourceTranslationFallback = "translation-fallback"
)

const (
	DefaultTafsirID = "ar.jalalayn"

	// MaxFallbackResults stops the translation fallback scan once reached.
	MaxFallbackResults = 25
)

var (
	ErrEmptyQuery   = errors.New("empty search query")
	ErrInvalidScope = errors.New("invalid search scope")
)

// DefaultScopes is used when a query names no scope.
var DefaultScopes = []Scope{ScopeTranslation, ScopeArabic, ScopeSurah}

var referencePattern = regexp.MustCompile(`^([0-9]{1,3})[:\s]([0-9]{1,3})$`)

func ParseScope(s string) (Scope, error) {
	switch scope := Scope(strings.ToLower(strings.TrimSpace(s))); scope {
	case ScopeTranslation, ScopeArabic, ScopeTafsir, ScopeSurah, ScopeAyah:
		return scope, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

type Query struct {
	Text          string
	Scopes        []Scope
	TranslationID string
	ReciterID     string
	TafsirID      string
	// Juz limits results to one juz when non-zero.
	Juz        int
	Revelation entities.RevelationType
	// Offline skips the network translation scan.
	Offline bool
}

func (q Query) has(scope Scope) bool {
	for _, s := range q.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type Match struct {
	Surah         entities.Surah `json:"surah"`
	NumberInSurah int            `json:"numberInSurah"`
	Text          string         `json:"text"`
	Source        string         `json:"source"`
}

func (m Match) key() string {
	return fmt.Sprintf("%d:%d", m.Surah.Number, m.NumberInSurah)
}

type Result struct {
	Matches []Match `json:"matches"`
	Count   int     `json:"count"`
	// Partial is set when some remote searches failed.
	Partial bool `json:"partial,omitempty"`
}

type RemoteSearcher interface {
	Search(ctx context.Context, query, edition string) ([]quranapi.SearchMatch, error)
}

type SurahLister interface {
	Surahs(ctx context.Context) ([]entities.Surah, error)
}

type OfflineLibrary interface {
	ListSurahMeta(ctx context.Context) ([]entities.SurahMeta, error)
	GetSurah(ctx context.Context, number int) (*entities.SurahDetail, error)
}

type SurahResolver interface {
	ResolveSurah(ctx context.Context, number int, reciterID, translationID string, opts resolver.Options) (*entities.SurahDetail, error)
}

type Service struct {
	remote   RemoteSearcher
	surahs   SurahLister
	offline  OfflineLibrary
	resolver SurahResolver
}

func NewService(remote RemoteSearcher, surahs SurahLister, offline OfflineLibrary, res SurahResolver) *Service {
	return &Service{remote: remote, surahs: surahs, offline: offline, resolver: res}
}

type remoteTask struct {
	source  string
	edition string
	matches []quranapi.SearchMatch
	err     error
}

// Search runs the query over every requested scope. When nothing matches,
// it scans the downloaded library and then, for the translation scope,
// the remote translation surah by surah.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if len(q.Scopes) == 0 {
		q.Scopes = DefaultScopes
	}
	if q.TafsirID == "" {
		q.TafsirID = DefaultTafsirID
	}
	needle := normalize(text)

	var all []Match
	partial := false

	remote := s.searchRemote(ctx, text, q)
	for _, task := range remote {
		if task.err != nil {
			if !quranapi.IsCancelled(task.err) {
				logging.Warn().Err(task.err).Str("edition", task.edition).Msg("Remote search failed")
			}
			partial = true
			continue
		}
		for _, m := range task.matches {
			all = append(all, Match{Surah: m.Surah, NumberInSurah: m.NumberInSurah, Text: m.Text, Source: task.source})
		}
	}
	if ctx.Err() != nil {
		return nil, quranapi.ErrCancelled
	}

	listing, err := s.surahs.Surahs(ctx)
	if err != nil {
		if quranapi.IsCancelled(err) {
			return nil, err
		}
		logging.Warn().Err(err).Msg("Surah listing unavailable for search")
	}

	if q.has(ScopeSurah) {
		all = append(all, matchSurahNames(listing, text, needle)...)
	}

	if q.has(ScopeAyah) {
		match, err := s.reference(ctx, text, q)
		if err != nil {
			return nil, err
		}
		if match != nil {
			all = append(all, *match)
		}
	}

	if len(all) == 0 {
		offline, err := s.scanOffline(ctx, needle, q)
		if err != nil {
			return nil, err
		}
		all = offline
	}

	if len(all) == 0 && q.has(ScopeTranslation) && !q.Offline {
		fallback, err := s.scanTranslations(ctx, listing, needle, q, MaxFallbackResults)
		if err != nil {
			return nil, err
		}
		all = fallback
	}

	matches := filter(all, q, listing)
	return &Result{Matches: matches, Count: len(matches), Partial: partial}, nil
}

func (s *Service) searchRemote(ctx context.Context, text string, q Query) []*remoteTask {
	var tasks []*remoteTask
	if q.has(ScopeTranslation) && q.TranslationID != "" {
		tasks = append(tasks, &remoteTask{source: SourceTranslation, edition: q.TranslationID})
	}
	if q.has(ScopeArabic) {
		tasks = append(tasks, &remoteTask{source: SourceArabic, edition: dailyverse.ArabicEdition})
	}
	if q.has(ScopeTafsir) {
		tasks = append(tasks, &remoteTask{source: SourceTafsir, edition: q.TafsirID})
	}

	var g errgroup.Group
	for _, task := range tasks {
		g.Go(func() error {
			task.matches, task.err = s.remote.Search(ctx, text, task.edition)
			return nil
		})
	}
	_ = g.Wait()
	return tasks
}

func matchSurahNames(listing []entities.Surah, text, needle string) []Match {
	var matches []Match
	for _, surah := range listing {
		if strings.Contains(surah.Name, text) ||
			contains(surah.Name, needle) ||
			contains(surah.EnglishName, needle) ||
			contains(surah.EnglishNameTranslation, needle) {
			matches = append(matches, Match{
				Surah:  surah,
				Text:   surah.EnglishName + " / " + surah.Name,
				Source: SourceSurah,
			})
		}
	}
	return matches
}

// ParseReference parses a direct "surah:ayah" or "surah ayah" reference.
func ParseReference(text string) (surah, ayah int, ok bool) {
	parts := referencePattern.FindStringSubmatch(strings.TrimSpace(text))
	if parts == nil {
		return 0, 0, false
	}
	surah, _ = strconv.Atoi(parts[1])
	ayah, _ = strconv.Atoi(parts[2])
	if juz.GlobalNumber(surah, ayah) == 0 {
		return 0, 0, false
	}
	return surah, ayah, true
}

func (s *Service) reference(ctx context.Context, text string, q Query) (*Match, error) {
	surahNumber, ayahNumber, ok := ParseReference(text)
	if !ok {
		return nil, nil
	}

	detail, err := s.resolver.ResolveSurah(ctx, surahNumber, q.ReciterID, q.TranslationID, resolver.Options{FallbackOffline: true})
	if err != nil {
		if quranapi.IsCancelled(err) {
			return nil, err
		}
		logging.Warn().Err(err).Int("surah", surahNumber).Msg("Failed to resolve referenced surah")
		return nil, nil
	}

	for _, ayah := range detail.Ayahs {
		if ayah.NumberInSurah != ayahNumber {
			continue
		}
		match := &Match{Surah: detail.Surah, NumberInSurah: ayahNumber, Source: SourceAyah}
		switch {
		case q.has(ScopeTafsir) && ayah.Tafsir != "":
			match.Text = ayah.Tafsir
		case q.has(ScopeArabic):
			match.Text = ayah.Text
		default:
			match.Text = ayah.Translation
		}
		return match, nil
	}
	return nil, nil
}

func (s *Service) scanOffline(ctx context.Context, needle string, q Query) ([]Match, error) {
	metas, err := s.offline.ListSurahMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("list downloaded surahs: %w", err)
	}

	var matches []Match
	for _, meta := range metas {
		if ctx.Err() != nil {
			return nil, quranapi.ErrCancelled
		}
		detail, err := s.offline.GetSurah(ctx, meta.Number)
		if err != nil {
			logging.Debug().Err(err).Int("surah", meta.Number).Msg("Offline surah unreadable")
			continue
		}
		if detail == nil {
			continue
		}
		for _, ayah := range detail.Ayahs {
			var source, text string
			switch {
			case q.has(ScopeTranslation) && contains(ayah.Translation, needle):
				source, text = SourceTranslationOffline, ayah.Translation
			case q.has(ScopeTafsir) && contains(ayah.Tafsir, needle):
				source, text = SourceTafsirOffline, ayah.Tafsir
			case q.has(ScopeArabic) && contains(ayah.Text, needle):
				source, text = SourceArabicOffline, ayah.Text
			default:
				continue
			}
			matches = append(matches, Match{Surah: detail.Surah, NumberInSurah: ayah.NumberInSurah, Text: text, Source: source})
		}
	}
	return matches, nil
}

// scanTranslations resolves surahs one at a time and matches their
// translation text. It stops after the surah that reaches maxResults.
func (s *Service) scanTranslations(ctx context.Context, listing []entities.Surah, needle string, q Query, maxResults int) ([]Match, error) {
	var matches []Match
	for _, surah := range listing {
		if ctx.Err() != nil {
			return nil, quranapi.ErrCancelled
		}
		detail, err := s.resolver.ResolveSurah(ctx, surah.Number, q.ReciterID, q.TranslationID, resolver.Options{ForceNetwork: true})
		if err != nil {
			if quranapi.IsCancelled(err) {
				return nil, err
			}
			logging.Debug().Err(err).Int("surah", surah.Number).Msg("Fallback search skipped surah")
			continue
		}
		for _, ayah := range detail.Ayahs {
			if contains(ayah.Translation, needle) {
				matches = append(matches, Match{
					Surah:         detail.Surah,
					NumberInSurah: ayah.NumberInSurah,
					Text:          ayah.Translation,
					Source:        SourceTranslationFallback,
				})
			}
		}
		if len(matches) >= maxResults {
			break
		}
	}
	return matches, nil
}

// filter applies the juz and revelation filters and keeps the first match
// per surah:ayah.
func filter(all []Match, q Query, listing []entities.Surah) []Match {
	revelation := make(map[int]entities.RevelationType, len(listing))
	for _, s := range listing {
		revelation[s.Number] = s.RevelationType
	}

	seen := make(map[string]bool, len(all))
	matches := make([]Match, 0, len(all))
	for _, m := range all {
		if q.Juz != 0 && !inJuz(m, q.Juz) {
			continue
		}
		if q.Revelation != "" {
			kind := m.Surah.RevelationType
			if kind == "" {
				kind = revelation[m.Surah.Number]
			}
			if kind != "" && kind != q.Revelation {
				continue
			}
		}
		key := m.key()
		if seen[key] {
			continue
		}
		seen[key] = true
		matches = append(matches, m)
	}
	return matches
}

func inJuz(m Match, number int) bool {
	if m.NumberInSurah > 0 {
		return juz.ForAyah(m.Surah.Number, m.NumberInSurah) == number
	}
	return juz.ContainsSurah(number, m.Surah.Number)
}
