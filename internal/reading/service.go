// Package reading keeps the reader's bookmarks, last read position and
// per-juz progress in the durable store.
package reading

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/juz"
)

const (
	bookmarksKey   = "reading_bookmarks"
	lastReadKey    = "reading_last_read"
	juzProgressKey = "reading_juz_progress"
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrInvalidPosition  = errors.New("invalid surah or ayah")
	ErrInvalidJuz       = errors.New("invalid juz number")
)

// ValueStore persists JSON values by key.
type ValueStore interface {
	GetValue(ctx context.Context, key string, dst any) (bool, error)
	SetValue(ctx context.Context, key string, value any) error
}

type Service struct {
	store ValueStore
	now   func() time.Time
	mu    sync.Mutex
}

func NewService(store ValueStore) *Service {
	return &Service{store: store, now: time.Now}
}

// BookmarkID is "surah:ayah" for an ayah and "surah_N" for a whole surah.
func BookmarkID(surah, ayah int) string {
	if ayah > 0 {
		return fmt.Sprintf("%d:%d", surah, ayah)
	}
	return fmt.Sprintf("surah_%d", surah)
}

// Bookmarks returns all bookmarks, newest first.
func (s *Service) Bookmarks(ctx context.Context) ([]entities.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadBookmarks(ctx)
}

// ToggleBookmark adds the bookmark or removes it when it already exists.
// It reports whether the bookmark is now present.
func (s *Service) ToggleBookmark(ctx context.Context, surah entities.Surah, ayah int) (bool, error) {
	if surah.Number < 1 || surah.Number > entities.TotalSurahs || ayah < 0 {
		return false, ErrInvalidPosition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := s.loadBookmarks(ctx)
	if err != nil {
		return false, err
	}

	id := BookmarkID(surah.Number, ayah)
	for i, b := range bookmarks {
		if b.ID == id {
			bookmarks = append(bookmarks[:i], bookmarks[i+1:]...)
			return false, s.store.SetValue(ctx, bookmarksKey, bookmarks)
		}
	}

	bookmarks = append(bookmarks, entities.Bookmark{
		ID:          id,
		SurahNumber: surah.Number,
		AyahNumber:  ayah,
		SurahName:   surah.EnglishName,
		Timestamp:   s.now(),
	})
	return true, s.store.SetValue(ctx, bookmarksKey, bookmarks)
}

func (s *Service) SetBookmarkNote(ctx context.Context, id, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := s.loadBookmarks(ctx)
	if err != nil {
		return err
	}
	for i := range bookmarks {
		if bookmarks[i].ID == id {
			bookmarks[i].Note = note
			return s.store.SetValue(ctx, bookmarksKey, bookmarks)
		}
	}
	return ErrBookmarkNotFound
}

func (s *Service) DeleteBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks, err := s.loadBookmarks(ctx)
	if err != nil {
		return err
	}
	for i := range bookmarks {
		if bookmarks[i].ID == id {
			bookmarks = append(bookmarks[:i], bookmarks[i+1:]...)
			return s.store.SetValue(ctx, bookmarksKey, bookmarks)
		}
	}
	return ErrBookmarkNotFound
}

func (s *Service) loadBookmarks(ctx context.Context) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	if _, err := s.store.GetValue(ctx, bookmarksKey, &bookmarks); err != nil {
		return nil, err
	}
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].Timestamp.After(bookmarks[j].Timestamp)
	})
	return bookmarks, nil
}

// LastRead returns the last read position, or nil if nothing was read yet.
func (s *Service) LastRead(ctx context.Context) (*entities.LastRead, error) {
	var last entities.LastRead
	ok, err := s.store.GetValue(ctx, lastReadKey, &last)
	if err != nil || !ok {
		return nil, err
	}
	return &last, nil
}

// MarkRead records surah:ayah as the last read position. When juzNumber is
// set, the progress for that juz is updated too.
func (s *Service) MarkRead(ctx context.Context, surah entities.Surah, ayah, juzNumber int) (*entities.LastRead, error) {
	if ayah < 1 {
		ayah = 1
	}
	if juz.GlobalNumber(surah.Number, ayah) == 0 {
		return nil, ErrInvalidPosition
	}
	if juzNumber != 0 {
		if _, ok := juz.Start(juzNumber); !ok {
			return nil, ErrInvalidJuz
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	last := &entities.LastRead{Surah: surah, AyahNumber: ayah, Timestamp: now, JuzNumber: juzNumber}
	if err := s.store.SetValue(ctx, lastReadKey, last); err != nil {
		return nil, err
	}

	if juzNumber == 0 {
		return last, nil
	}

	progress, err := s.loadJuzProgress(ctx)
	if err != nil {
		return nil, err
	}
	updated := progress[:0]
	for _, p := range progress {
		if p.JuzNumber != juzNumber {
			updated = append(updated, p)
		}
	}
	updated = append(updated, entities.JuzProgress{
		JuzNumber:       juzNumber,
		LastSurahNumber: surah.Number,
		LastAyahNumber:  ayah,
		Timestamp:       now,
		Percentage:      juz.Percentage(juzNumber, surah.Number, ayah),
	})
	if err := s.store.SetValue(ctx, juzProgressKey, updated); err != nil {
		return nil, err
	}
	return last, nil
}

// JuzProgress returns the recorded progress ordered by juz number.
func (s *Service) JuzProgress(ctx context.Context) ([]entities.JuzProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJuzProgress(ctx)
}

func (s *Service) loadJuzProgress(ctx context.Context) ([]entities.JuzProgress, error) {
	var progress []entities.JuzProgress
	if _, err := s.store.GetValue(ctx, juzProgressKey, &progress); err != nil {
		return nil, err
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].JuzNumber < progress[j].JuzNumber })
	return progress, nil
}
