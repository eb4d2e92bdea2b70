package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/quransync/internal/audiocache"
	"github.com/mrlokans/quransync/internal/catalog"
	"github.com/mrlokans/quransync/internal/dailyverse"
	"github.com/mrlokans/quransync/internal/database"
	"github.com/mrlokans/quransync/internal/database/kv"
	"github.com/mrlokans/quransync/internal/database/settings"
	"github.com/mrlokans/quransync/internal/database/syncprogress"
	"github.com/mrlokans/quransync/internal/downloads"
	"github.com/mrlokans/quransync/internal/http"
	"github.com/mrlokans/quransync/internal/offline"
	"github.com/mrlokans/quransync/internal/quranapi"
	"github.com/mrlokans/quransync/internal/reading"
	"github.com/mrlokans/quransync/internal/resolver"
	"github.com/mrlokans/quransync/internal/scheduler"
	"github.com/mrlokans/quransync/internal/search"
	"github.com/mrlokans/quransync/internal/settingsstore"
	"github.com/mrlokans/quransync/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ offline.KeyValueStore = (*kv.Repository)(nil)
var _ settingsstore.Repository = (*settings.Repository)(nil)

var _ resolver.OfflineReader = (*offline.Store)(nil)
var _ downloads.OfflineStore = (*offline.Store)(nil)
var _ dailyverse.Cache = (*offline.Store)(nil)
var _ catalog.Store = (*offline.Store)(nil)
var _ search.OfflineLibrary = (*offline.Store)(nil)
var _ reading.ValueStore = (*offline.Store)(nil)

var _ downloads.AudioCache = (*audiocache.Cache)(nil)

// =============================================================================
// Content API
// =============================================================================

var _ resolver.ContentSource = (*quranapi.Client)(nil)
var _ downloads.AudioFetcher = (*quranapi.Client)(nil)
var _ dailyverse.AyahSource = (*quranapi.Client)(nil)
var _ catalog.Source = (*quranapi.Client)(nil)
var _ search.RemoteSearcher = (*quranapi.Client)(nil)

// =============================================================================
// Services
// =============================================================================

var _ downloads.SurahResolver = (*resolver.Resolver)(nil)
var _ search.SurahResolver = (*resolver.Resolver)(nil)
var _ search.SurahLister = (*catalog.Catalog)(nil)

// =============================================================================
// Progress Tracking
// =============================================================================

var _ downloads.ProgressReporter = (*syncprogress.Repository)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.Syncer = (*downloads.Manager)(nil)
var _ tasks.SurahLister = (*catalog.Catalog)(nil)
var _ tasks.DailyVerseFetcher = (*dailyverse.Selector)(nil)
var _ tasks.PreferencesSource = (*settingsstore.SettingsStore)(nil)
var _ scheduler.Settings = (*settingsstore.SettingsStore)(nil)
var _ scheduler.TaskQueue = (*tasks.Client)(nil)

// =============================================================================
// HTTP Controllers
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
var _ http.Catalog = (*catalog.Catalog)(nil)
var _ http.SurahResolver = (*resolver.Resolver)(nil)
var _ http.TafsirSource = (*quranapi.Client)(nil)
var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)
var _ http.ScheduleStore = (*settingsstore.SettingsStore)(nil)
var _ http.Searcher = (*search.Service)(nil)
var _ http.DailyVerseSource = (*dailyverse.Selector)(nil)
var _ http.DownloadManager = (*downloads.Manager)(nil)
var _ http.ProgressStore = (*syncprogress.Repository)(nil)
var _ http.AudioFiles = (*audiocache.Cache)(nil)
var _ http.ReadingStore = (*reading.Service)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.Rescheduler = (*scheduler.DailyVerseScheduler)(nil)
