// Package catalog lists surahs and editions. Listings are cached in the
// durable store so they stay available without network.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
)

const (
	surahsKey         = "catalog_surahs"
	editionsKeyPrefix = "catalog_editions_"
)

type Source interface {
	ListSurahs(ctx context.Context) ([]entities.Surah, error)
	Editions(ctx context.Context, editionType entities.EditionType) ([]entities.Edition, error)
}

type Store interface {
	GetValue(ctx context.Context, key string, dst any) (bool, error)
	SetValue(ctx context.Context, key string, value any) error
	ListSurahMeta(ctx context.Context) ([]entities.SurahMeta, error)
	GetSurah(ctx context.Context, number int) (*entities.SurahDetail, error)
}

type Catalog struct {
	source Source
	store  Store
}

func New(source Source, store Store) *Catalog {
	return &Catalog{source: source, store: store}
}

// Surahs returns the surah listing. It falls back to the cached listing and
// then to a listing derived from downloaded surahs.
func (c *Catalog) Surahs(ctx context.Context) ([]entities.Surah, error) {
	surahs, err := c.source.ListSurahs(ctx)
	if err == nil && len(surahs) > 0 {
		if err := c.store.SetValue(ctx, surahsKey, surahs); err != nil {
			logging.Warn().Err(err).Msg("Failed to cache surah listing")
		}
		return surahs, nil
	}
	if quranapi.IsCancelled(err) {
		return nil, err
	}
	if err != nil {
		logging.Warn().Err(err).Msg("Surah listing unavailable, using offline copy")
	}

	var cached []entities.Surah
	if ok, cacheErr := c.store.GetValue(ctx, surahsKey, &cached); cacheErr == nil && ok && len(cached) > 0 {
		return cached, nil
	}

	derived, derr := c.deriveFromOffline(ctx)
	if derr != nil {
		return nil, fmt.Errorf("derive surah listing: %w", derr)
	}
	if len(derived) == 0 && err != nil {
		return nil, fmt.Errorf("list surahs: %w", err)
	}
	return derived, nil
}

func (c *Catalog) deriveFromOffline(ctx context.Context) ([]entities.Surah, error) {
	metas, err := c.store.ListSurahMeta(ctx)
	if err != nil {
		return nil, err
	}

	surahs := make([]entities.Surah, 0, len(metas))
	for _, meta := range metas {
		detail, err := c.store.GetSurah(ctx, meta.Number)
		if err != nil {
			logging.Debug().Err(err).Int("surah", meta.Number).Msg("Offline surah unreadable")
		}
		if detail != nil {
			surahs = append(surahs, detail.Surah)
			continue
		}

		surah := entities.Surah{
			Number:         meta.Number,
			Name:           meta.Name,
			EnglishName:    meta.EnglishName,
			NumberOfAyahs:  meta.NumberOfAyahs,
			RevelationType: meta.RevelationType,
		}
		if surah.Name == "" {
			surah.Name = fmt.Sprintf("سوره %d", meta.Number)
		}
		if surah.EnglishName == "" {
			surah.EnglishName = fmt.Sprintf("Surah %d", meta.Number)
		}
		surahs = append(surahs, surah)
	}
	return surahs, nil
}

// Surah returns a single surah from the listing.
func (c *Catalog) Surah(ctx context.Context, number int) (*entities.Surah, error) {
	surahs, err := c.Surahs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range surahs {
		if surahs[i].Number == number {
			return &surahs[i], nil
		}
	}
	return nil, quranapi.ErrNotFound
}

// Editions lists editions of one type. Reciters are sorted by English name
// and tafsir listings include the Persian interpretive editions.
func (c *Catalog) Editions(ctx context.Context, editionType entities.EditionType) ([]entities.Edition, error) {
	key := editionsKeyPrefix + string(editionType)

	editions, err := c.source.Editions(ctx, editionType)
	switch {
	case err == nil:
		if err := c.store.SetValue(ctx, key, editions); err != nil {
			logging.Warn().Err(err).Str("type", string(editionType)).Msg("Failed to cache edition listing")
		}
	case quranapi.IsCancelled(err):
		return nil, err
	default:
		logging.Warn().Err(err).Str("type", string(editionType)).Msg("Edition listing unavailable, using offline copy")
		if _, cacheErr := c.store.GetValue(ctx, key, &editions); cacheErr != nil {
			return nil, fmt.Errorf("read cached editions: %w", cacheErr)
		}
	}

	switch editionType {
	case entities.EditionTypeVerseByVerse:
		sort.SliceStable(editions, func(i, j int) bool {
			return strings.ToLower(editions[i].EnglishName) < strings.ToLower(editions[j].EnglishName)
		})
	case entities.EditionTypeTafsir:
		editions = withPersianTafsir(editions)
	}

	if editions == nil {
		editions = []entities.Edition{}
	}
	return editions, nil
}

func withPersianTafsir(editions []entities.Edition) []entities.Edition {
	seen := make(map[string]bool, len(editions))
	for _, e := range editions {
		seen[e.Identifier] = true
	}
	for _, e := range PersianTafsir {
		if !seen[e.Identifier] {
			editions = append(editions, e)
		}
	}
	return editions
}
