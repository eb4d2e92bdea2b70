// Package offline is the typed view over the durable key-value store: whole
// surahs with their ayahs, per-surah metadata, the global offline summary
// and the daily verse cache.
package offline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mrlokans/quransync/internal/database/kv"
	"github.com/mrlokans/quransync/internal/entities"
)

const (
	surahPrefix      = "surah_"
	metaSuffix       = "_meta"
	metadataKey      = "offline_metadata"
	dailyVersePrefix = "daily_verse_"
)

// KeyValueStore is the durable store the offline layer writes through.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

type Store struct {
	kv KeyValueStore
}

func NewStore(store KeyValueStore) *Store {
	return &Store{kv: store}
}

func SurahKey(number int) string {
	return surahPrefix + strconv.Itoa(number)
}

func SurahMetaKey(number int) string {
	return SurahKey(number) + metaSuffix
}

func DailyVerseKey(date, translationID, reciterID string) string {
	return fmt.Sprintf("%s%s_%s_%s", dailyVersePrefix, date, translationID, reciterID)
}

// GetSurah returns the stored surah or nil when it was never downloaded.
func (s *Store) GetSurah(ctx context.Context, number int) (*entities.SurahDetail, error) {
	var detail entities.SurahDetail
	ok, err := s.getJSON(ctx, SurahKey(number), &detail)
	if err != nil || !ok {
		return nil, err
	}
	return &detail, nil
}

// SaveSurah writes the content record and then its metadata record.
func (s *Store) SaveSurah(ctx context.Context, detail *entities.SurahDetail, meta entities.SurahMeta) error {
	if err := s.setJSON(ctx, SurahKey(detail.Number), detail); err != nil {
		return fmt.Errorf("failed to save surah %d: %w", detail.Number, err)
	}
	if err := s.SaveSurahMeta(ctx, meta); err != nil {
		return err
	}
	return nil
}

func (s *Store) SaveSurahMeta(ctx context.Context, meta entities.SurahMeta) error {
	if err := s.setJSON(ctx, SurahMetaKey(meta.Number), meta); err != nil {
		return fmt.Errorf("failed to save metadata for surah %d: %w", meta.Number, err)
	}
	return nil
}

func (s *Store) GetSurahMeta(ctx context.Context, number int) (*entities.SurahMeta, error) {
	var meta entities.SurahMeta
	ok, err := s.getJSON(ctx, SurahMetaKey(number), &meta)
	if err != nil || !ok {
		return nil, err
	}
	return &meta, nil
}

// ListSurahMeta returns the metadata of every downloaded surah ordered by number.
func (s *Store) ListSurahMeta(ctx context.Context) ([]entities.SurahMeta, error) {
	keys, err := s.metaKeys(ctx)
	if err != nil {
		return nil, err
	}

	metas := make([]entities.SurahMeta, 0, len(keys))
	for _, key := range keys {
		var meta entities.SurahMeta
		ok, err := s.getJSON(ctx, key, &meta)
		if err != nil {
			return nil, err
		}
		if ok {
			metas = append(metas, meta)
		}
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Number < metas[j].Number })
	return metas, nil
}

func (s *Store) CountSurahMeta(ctx context.Context) (int, error) {
	keys, err := s.metaKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *Store) metaKeys(ctx context.Context) ([]string, error) {
	keys, err := s.kv.KeysWithPrefix(ctx, surahPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list surah keys: %w", err)
	}
	metaKeys := keys[:0]
	for _, key := range keys {
		if strings.HasSuffix(key, metaSuffix) {
			metaKeys = append(metaKeys, key)
		}
	}
	return metaKeys, nil
}

// GetMetadata returns the global offline summary, or nil before the first sync.
func (s *Store) GetMetadata(ctx context.Context) (*entities.OfflineMetadata, error) {
	var meta entities.OfflineMetadata
	ok, err := s.getJSON(ctx, metadataKey, &meta)
	if err != nil || !ok {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) SetMetadata(ctx context.Context, meta entities.OfflineMetadata) error {
	return s.setJSON(ctx, metadataKey, meta)
}

// ClearAudioFlags rewrites every surah metadata record with HasAudio=false.
// Content records are left untouched.
func (s *Store) ClearAudioFlags(ctx context.Context) (int, error) {
	metas, err := s.ListSurahMeta(ctx)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, meta := range metas {
		if !meta.HasAudio {
			continue
		}
		meta.HasAudio = false
		if err := s.SaveSurahMeta(ctx, meta); err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

// DeleteSurah removes one surah and its metadata.
func (s *Store) DeleteSurah(ctx context.Context, number int) error {
	if err := s.kv.Delete(ctx, SurahKey(number)); err != nil {
		return err
	}
	return s.kv.Delete(ctx, SurahMetaKey(number))
}

// ClearAll removes all downloaded content, the global summary and cached
// daily verses. Reading state and cached listings are kept.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.kv.DeletePrefix(ctx, surahPrefix); err != nil {
		return fmt.Errorf("failed to delete surahs: %w", err)
	}
	if _, err := s.kv.DeletePrefix(ctx, dailyVersePrefix); err != nil {
		return fmt.Errorf("failed to delete daily verses: %w", err)
	}
	return s.kv.Delete(ctx, metadataKey)
}

func (s *Store) GetDailyVerse(ctx context.Context, key string) (*entities.DailyVerse, error) {
	var verse entities.DailyVerse
	ok, err := s.getJSON(ctx, key, &verse)
	if err != nil || !ok {
		return nil, err
	}
	return &verse, nil
}

func (s *Store) SetDailyVerse(ctx context.Context, key string, verse *entities.DailyVerse) error {
	return s.setJSON(ctx, key, verse)
}

// GetValue decodes an arbitrary JSON record. It reports false when the key is absent.
func (s *Store) GetValue(ctx context.Context, key string, dst any) (bool, error) {
	return s.getJSON(ctx, key, dst)
}

func (s *Store) SetValue(ctx context.Context, key string, value any) error {
	return s.setJSON(ctx, key, value)
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}
