package entrypoint

import (
	"context"
	"fmt"

	"github.com/mrlokans/quransync/internal/audiocache"
	"github.com/mrlokans/quransync/internal/catalog"
	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/dailyverse"
	"github.com/mrlokans/quransync/internal/database"
	"github.com/mrlokans/quransync/internal/database/kv"
	"github.com/mrlokans/quransync/internal/database/settings"
	"github.com/mrlokans/quransync/internal/database/syncprogress"
	"github.com/mrlokans/quransync/internal/downloads"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/offline"
	"github.com/mrlokans/quransync/internal/quranapi"
	"github.com/mrlokans/quransync/internal/reading"
	"github.com/mrlokans/quransync/internal/resolver"
	"github.com/mrlokans/quransync/internal/search"
	"github.com/mrlokans/quransync/internal/settingsstore"
	"github.com/mrlokans/quransync/internal/tasks"
)

// App holds the services shared by the server and the CLI commands.
type App struct {
	Config *config.Config

	DB       *database.Database
	Store    *offline.Store
	Client   *quranapi.Client
	Audio    *audiocache.Cache
	Progress *syncprogress.Repository
	Settings *settingsstore.SettingsStore

	Resolver   *resolver.Resolver
	Downloads  *downloads.Manager
	DailyVerse *dailyverse.Selector
	Catalog    *catalog.Catalog
	Search     *search.Service
	Reading    *reading.Service
}

// NewApp opens the database and audio cache and wires the services.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	audio, err := audiocache.NewCache(cfg.AudioCache.Dir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audio cache: %w", err)
	}

	client := quranapi.NewClient(quranapi.Config{
		BaseURL: cfg.QuranAPI.BaseURL,
		Timeout: cfg.QuranAPI.Timeout,
		Retry: quranapi.RetryPolicy{
			MaxAttempts:      cfg.QuranAPI.MaxAttempts,
			Delay:            cfg.QuranAPI.RetryDelay,
			TerminalStatuses: quranapi.DefaultRetryPolicy().TerminalStatuses,
		},
		RateLimit:       cfg.QuranAPI.RateLimit,
		RateBurst:       cfg.QuranAPI.RateBurst,
		BreakerFailures: cfg.QuranAPI.BreakerFailures,
	})

	store := offline.NewStore(kv.NewRepository(db.DB))
	progress := syncprogress.NewRepository(db.DB)
	res := resolver.New(client, store)

	manager := downloads.NewManager(res, store, client, audio, downloads.Options{
		UnitBatchSize:  cfg.Sync.UnitBatchSize,
		AudioBatchSize: cfg.Sync.AudioBatchSize,
	})
	manager.SetProgressReporter(progress)

	cat := catalog.New(client, store)

	logging.Info().Str("audio_cache", audio.CacheDir()).Str("api", cfg.QuranAPI.BaseURL).Msg("Services initialized")

	return &App{
		Config:     cfg,
		DB:         db,
		Store:      store,
		Client:     client,
		Audio:      audio,
		Progress:   progress,
		Settings:   settingsstore.New(settings.NewRepository(db.DB), cfg.Defaults),
		Resolver:   res,
		Downloads:  manager,
		DailyVerse: dailyverse.NewSelector(client, store),
		Catalog:    cat,
		Search:     search.NewService(client, cat, store, res),
		Reading:    reading.NewService(store),
	}, nil
}

// Close stops any running sync and closes the database.
func (a *App) Close() error {
	a.Downloads.Stop()
	return a.DB.Close()
}

// SyncRequest builds a sync request for the given surah numbers, filling
// empty edition IDs from the stored preferences.
func (a *App) SyncRequest(ctx context.Context, numbers []int, translationID, reciterID, tafsirID string, includeAudio, includeTafsir bool) (downloads.Request, error) {
	prefs := a.Settings.Preferences()
	if translationID == "" {
		translationID = prefs.TranslationID
	}
	if reciterID == "" {
		reciterID = prefs.ReciterID
	}
	if tafsirID == "" {
		tafsirID = prefs.TafsirID
	}

	listing, err := a.Catalog.Surahs(ctx)
	if err != nil {
		return downloads.Request{}, fmt.Errorf("list surahs: %w", err)
	}
	surahs, err := tasks.SelectSurahs(listing, numbers)
	if err != nil {
		return downloads.Request{}, err
	}

	return downloads.Request{
		Surahs:        surahs,
		TranslationID: translationID,
		ReciterID:     reciterID,
		IncludeAudio:  includeAudio,
		IncludeTafsir: includeTafsir,
		TafsirID:      tafsirID,
	}, nil
}
