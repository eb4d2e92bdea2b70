package settingsstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/database"
	"github.com/mrlokans/quransync/internal/database/settings"
	"github.com/mrlokans/quransync/internal/entities"
)

func setupTestStore(t *testing.T) (*SettingsStore, *settings.Repository) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := settings.NewRepository(db.DB)
	return New(repo, config.Defaults{TranslationID: "en.sahih"}), repo
}

func TestNew_FillsMissingDefaults(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Equal(t, "en.sahih", store.defaults.TranslationID)
	assert.Equal(t, config.DefaultReciterID, store.defaults.ReciterID)
	assert.Equal(t, config.DefaultTafsirID, store.defaults.TafsirID)
}

func TestTranslationID(t *testing.T) {
	t.Run("returns default when nothing is set", func(t *testing.T) {
		t.Setenv(EnvTranslationID, "")
		store, _ := setupTestStore(t)

		info := store.GetPreferencesInfo()
		assert.Equal(t, "en.sahih", info.TranslationID)
		assert.Equal(t, SourceDefault, info.TranslationIDSource)
	})

	t.Run("returns environment variable when database not set", func(t *testing.T) {
		t.Setenv(EnvTranslationID, "fr.hamidullah")
		store, _ := setupTestStore(t)

		assert.Equal(t, "fr.hamidullah", store.GetTranslationID())
		assert.Equal(t, SourceEnvironment, store.GetPreferencesInfo().TranslationIDSource)
	})

	t.Run("database overrides environment", func(t *testing.T) {
		t.Setenv(EnvTranslationID, "fr.hamidullah")
		store, _ := setupTestStore(t)

		require.NoError(t, store.SetTranslationID("en.asad"))
		assert.Equal(t, "en.asad", store.GetTranslationID())
		assert.Equal(t, SourceDatabase, store.GetPreferencesInfo().TranslationIDSource)
	})
}

func TestPreferences(t *testing.T) {
	t.Setenv(EnvTranslationID, "")
	t.Setenv(EnvReciterID, "")
	t.Setenv(EnvTafsirID, "")
	store, _ := setupTestStore(t)

	require.NoError(t, store.SetReciterID("ar.husary"))

	assert.Equal(t, entities.Preferences{
		TranslationID: "en.sahih",
		ReciterID:     "ar.husary",
		TafsirID:      config.DefaultTafsirID,
	}, store.Preferences())
}

func TestUpdatePreferences(t *testing.T) {
	t.Setenv(EnvShowDailyVerse, "")
	store, repo := setupTestStore(t)

	tafsir := "fa.makarem"
	show := false
	require.NoError(t, store.UpdatePreferences(PreferencesUpdate{TafsirID: &tafsir, ShowDailyVerse: &show}))

	assert.Equal(t, "fa.makarem", store.GetTafsirID())
	assert.False(t, store.GetShowDailyVerse())

	_, err := repo.GetSetting(entities.SettingKeyTranslationID)
	assert.Error(t, err)
}

func TestShowDailyVerse(t *testing.T) {
	t.Setenv(EnvShowDailyVerse, "")
	store, _ := setupTestStore(t)
	assert.True(t, store.GetShowDailyVerse())

	t.Setenv(EnvShowDailyVerse, "false")
	assert.False(t, store.GetShowDailyVerse())
	assert.Equal(t, SourceEnvironment, store.GetPreferencesInfo().ShowDailyVerseSource)

	t.Setenv(EnvShowDailyVerse, "maybe")
	assert.True(t, store.GetShowDailyVerse())
}

func TestClearPreferences(t *testing.T) {
	t.Setenv(EnvReciterID, "")
	store, _ := setupTestStore(t)

	require.NoError(t, store.SetReciterID("ar.husary"))
	require.NoError(t, store.ClearPreferences())
	require.NoError(t, store.ClearPreferences())

	assert.Equal(t, config.DefaultReciterID, store.GetReciterID())
}

func TestDailyVerseSchedule(t *testing.T) {
	store, _ := setupTestStore(t)
	cfg := config.DailyVerse{Schedule: "0 6 * * *"}

	assert.Equal(t, "0 6 * * *", store.GetDailyVerseSchedule(cfg))
	assert.Equal(t, "5 0 * * *", store.GetDailyVerseSchedule(config.DailyVerse{}))

	require.NoError(t, store.SetDailyVerseSchedule("30 4 * * *"))
	assert.Equal(t, "30 4 * * *", store.GetDailyVerseSchedule(cfg))

	assert.Error(t, store.SetDailyVerseSchedule("every day"))
}

func TestGetNextRunTime(t *testing.T) {
	from := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	next, err := GetNextRunTime("5 0 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 5, 0, 0, time.UTC), *next)

	_, err = GetNextRunTime("bad", from)
	assert.Error(t, err)
}
