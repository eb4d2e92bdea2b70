// Package resolver assembles one surah with its ayahs, translation, audio
// locators and optionally tafsir, either from the offline store or from
// the content API.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
)

// TranslationUnavailable replaces translation text for ayahs the
// translation edition does not cover.
const TranslationUnavailable = "Translation Unavailable"

// ContentSource is the subset of the content API the resolver needs.
type ContentSource interface {
	SurahEdition(ctx context.Context, number int, edition string) (*entities.SurahDetail, error)
	Tafsir(ctx context.Context, surah, ayah int, edition string) (string, error)
}

// OfflineReader returns stored surahs, or nil when a surah is not stored.
type OfflineReader interface {
	GetSurah(ctx context.Context, number int) (*entities.SurahDetail, error)
}

type Options struct {
	// ForceNetwork skips the offline copy.
	ForceNetwork bool
	// IncludeTafsir fetches TafsirID text for every ayah.
	IncludeTafsir bool
	TafsirID      string
	// FallbackOffline returns the offline copy when a forced network
	// resolution fails for a reason other than cancellation.
	FallbackOffline bool
}

type Resolver struct {
	source  ContentSource
	offline OfflineReader
}

func New(source ContentSource, offline OfflineReader) *Resolver {
	return &Resolver{source: source, offline: offline}
}

// ResolveSurah returns the merged surah. It fails with
// quranapi.ErrCancelled when ctx is done, and with a wrapped error when
// the text or translation could not be fetched.
func (r *Resolver) ResolveSurah(ctx context.Context, number int, reciterID, translationID string, opts Options) (*entities.SurahDetail, error) {
	if !opts.ForceNetwork {
		if stored := r.offlineCopy(ctx, number); stored != nil {
			return stored, nil
		}
	}

	detail, err := r.fetch(ctx, number, reciterID, translationID, opts)
	if err == nil {
		return detail, nil
	}
	if errors.Is(err, quranapi.ErrCancelled) {
		return nil, err
	}

	logging.Error().Err(err).Int("surah", number).Msg("Failed to resolve surah")
	if opts.FallbackOffline && opts.ForceNetwork {
		if stored := r.offlineCopy(ctx, number); stored != nil {
			return stored, nil
		}
	}
	return nil, err
}

func (r *Resolver) offlineCopy(ctx context.Context, number int) *entities.SurahDetail {
	if r.offline == nil {
		return nil
	}
	stored, err := r.offline.GetSurah(ctx, number)
	if err != nil {
		logging.Warn().Err(err).Int("surah", number).Msg("Failed to read offline surah")
		return nil
	}
	return stored
}

func (r *Resolver) fetch(ctx context.Context, number int, reciterID, translationID string, opts Options) (*entities.SurahDetail, error) {
	if ctx.Err() != nil {
		return nil, quranapi.ErrCancelled
	}

	var arabic, translation, audio *entities.SurahDetail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		arabic, err = r.source.SurahEdition(gctx, number, "")
		if err != nil {
			return fmt.Errorf("surah %d text: %w", number, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		translation, err = r.source.SurahEdition(gctx, number, translationID)
		if err != nil {
			return fmt.Errorf("surah %d translation %s: %w", number, translationID, err)
		}
		return nil
	})
	// Audio is best-effort and never fails the group.
	audioDone := make(chan struct{})
	go func() {
		defer close(audioDone)
		var err error
		audio, err = r.source.SurahEdition(ctx, number, reciterID)
		if err != nil && !errors.Is(err, quranapi.ErrCancelled) {
			logging.Debug().Err(err).Int("surah", number).Str("reciter", reciterID).Msg("Audio edition unavailable")
		}
	}()

	err := g.Wait()
	<-audioDone
	if ctx.Err() != nil {
		return nil, quranapi.ErrCancelled
	}
	if err != nil {
		return nil, err
	}

	detail := Merge(arabic, translation, audio)

	if opts.IncludeTafsir && opts.TafsirID != "" {
		if err := r.attachTafsir(ctx, detail, opts.TafsirID); err != nil {
			return nil, err
		}
	}

	return detail, nil
}

// attachTafsir fetches tafsir one ayah at a time. A failed lookup leaves
// the ayah without tafsir; cancellation aborts the whole surah.
func (r *Resolver) attachTafsir(ctx context.Context, detail *entities.SurahDetail, tafsirID string) error {
	for i := range detail.Ayahs {
		if ctx.Err() != nil {
			return quranapi.ErrCancelled
		}
		ayah := &detail.Ayahs[i]
		text, err := r.source.Tafsir(ctx, detail.Number, ayah.NumberInSurah, tafsirID)
		if errors.Is(err, quranapi.ErrCancelled) {
			return err
		}
		if err != nil && !errors.Is(err, quranapi.ErrNotFound) {
			logging.Warn().Err(err).Int("surah", detail.Number).Int("ayah", ayah.NumberInSurah).Msg("Failed to fetch tafsir")
		}
		ayah.Tafsir = text
	}
	return nil
}

// Merge overlays translation text and audio locators onto the canonical
// ayahs by position. Missing translations get TranslationUnavailable and
// missing audio stays empty.
func Merge(arabic, translation, audio *entities.SurahDetail) *entities.SurahDetail {
	merged := &entities.SurahDetail{
		Surah: arabic.Surah,
		Ayahs: make([]entities.Ayah, len(arabic.Ayahs)),
	}

	for i, ayah := range arabic.Ayahs {
		ayah.Translation = TranslationUnavailable
		if translation != nil && i < len(translation.Ayahs) && translation.Ayahs[i].Text != "" {
			ayah.Translation = translation.Ayahs[i].Text
		}

		ayah.Audio = ""
		ayah.AudioSecondary = nil
		if audio != nil && i < len(audio.Ayahs) {
			ayah.Audio = audio.Ayahs[i].Audio
			if ayah.Audio == "" && len(audio.Ayahs[i].AudioSecondary) > 0 {
				ayah.Audio = audio.Ayahs[i].AudioSecondary[0]
			}
		}

		merged.Ayahs[i] = ayah
	}
	return merged
}
