package http

import (
	"context"
	"os"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/downloads"
	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/resolver"
	"github.com/mrlokans/quransync/internal/search"
	"github.com/mrlokans/quransync/internal/settingsstore"
)

// Each controller depends on the narrow interface it needs; the concrete
// services are wired in the entrypoint.

type Catalog interface {
	Surahs(ctx context.Context) ([]entities.Surah, error)
	Surah(ctx context.Context, number int) (*entities.Surah, error)
	Editions(ctx context.Context, editionType entities.EditionType) ([]entities.Edition, error)
}

type SurahResolver interface {
	ResolveSurah(ctx context.Context, number int, reciterID, translationID string, opts resolver.Options) (*entities.SurahDetail, error)
}

type TafsirSource interface {
	Tafsir(ctx context.Context, surah, ayah int, edition string) (string, error)
}

type PreferencesSource interface {
	Preferences() entities.Preferences
}

type SettingsStore interface {
	PreferencesSource
	GetPreferencesInfo() settingsstore.PreferencesInfo
	UpdatePreferences(update settingsstore.PreferencesUpdate) error
	ClearPreferences() error
}

type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type DailyVerseSource interface {
	Today(ctx context.Context, translationID, reciterID string) (*entities.DailyVerse, error)
}

type DownloadManager interface {
	Overview(ctx context.Context, prefs entities.Preferences) (*downloads.Overview, error)
	Start(ctx context.Context, req downloads.Request, onDone func(*downloads.Result, error)) string
	Cancel() bool
	DeleteSurah(ctx context.Context, number int) error
	ClearAll(ctx context.Context) error
	ClearOfflineAudio(ctx context.Context) error
}

type ProgressStore interface {
	GetSyncProgress() (*entities.SyncProgress, error)
	IsSyncRunning() (bool, error)
}

// AudioFiles reads recitation audio stored by the offline sync.
type AudioFiles interface {
	Open(sourceURL string) (*os.File, error)
}

type ReadingStore interface {
	Bookmarks(ctx context.Context) ([]entities.Bookmark, error)
	ToggleBookmark(ctx context.Context, surah entities.Surah, ayah int) (bool, error)
	SetBookmarkNote(ctx context.Context, id, note string) error
	DeleteBookmark(ctx context.Context, id string) error
	LastRead(ctx context.Context) (*entities.LastRead, error)
	MarkRead(ctx context.Context, surah entities.Surah, ayah, juzNumber int) (*entities.LastRead, error)
	JuzProgress(ctx context.Context) ([]entities.JuzProgress, error)
}

type TaskQueue interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ScheduleStore holds the daily verse prefetch schedule.
type ScheduleStore interface {
	GetDailyVerseSchedule(cfg config.DailyVerse) string
	SetDailyVerseSchedule(schedule string) error
}

// Rescheduler is notified when settings that drive a schedule change.
type Rescheduler interface {
	Reschedule(ctx context.Context) error
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Optional dependencies may be left nil and
// their routes are not registered.
type RouterConfig struct {
	// Core dependencies
	Database   Pinger
	Catalog    Catalog
	Resolver   SurahResolver
	Tafsir     TafsirSource
	Settings   SettingsStore
	Search     Searcher
	DailyVerse DailyVerseSource

	// Offline library
	Downloads DownloadManager
	Progress  ProgressStore
	Audio     AudioFiles

	// Reader state
	Reading ReadingStore

	// Task queue client (optional)
	TaskClient TaskQueue

	// Daily verse prefetch scheduler (optional)
	DailyVerseScheduler Rescheduler
	Schedules           ScheduleStore
	DailyVerseConfig    config.DailyVerse

	// Application info
	Version string
}
