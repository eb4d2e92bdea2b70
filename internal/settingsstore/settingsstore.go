package settingsstore

import (
	"errors"
	"os"
	"strconv"

	"gorm.io/gorm"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/entities"
)

// Setting sources.
const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Environment variables consulted when the database holds no value.
const (
	EnvTranslationID  = "DEFAULT_TRANSLATION_ID"
	EnvReciterID      = "DEFAULT_RECITER_ID"
	EnvTafsirID       = "DEFAULT_TAFSIR_ID"
	EnvShowDailyVerse = "SHOW_DAILY_VERSE"
)

type Repository interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// Priority: database > environment > default
type SettingsStore struct {
	db       Repository
	defaults config.Defaults
}

func New(db Repository, defaults config.Defaults) *SettingsStore {
	if defaults.TranslationID == "" {
		defaults.TranslationID = config.DefaultTranslationID
	}
	if defaults.ReciterID == "" {
		defaults.ReciterID = config.DefaultReciterID
	}
	if defaults.TafsirID == "" {
		defaults.TafsirID = config.DefaultTafsirID
	}
	return &SettingsStore{db: db, defaults: defaults}
}

// resolve returns the effective value for key and where it came from.
func (s *SettingsStore) resolve(key, env, fallback string) (string, string) {
	setting, err := s.db.GetSetting(key)
	if err == nil && setting.Value != "" {
		return setting.Value, SourceDatabase
	}
	if envVal := os.Getenv(env); envVal != "" {
		return envVal, SourceEnvironment
	}
	return fallback, SourceDefault
}

func (s *SettingsStore) GetTranslationID() string {
	v, _ := s.resolve(entities.SettingKeyTranslationID, EnvTranslationID, s.defaults.TranslationID)
	return v
}

func (s *SettingsStore) GetReciterID() string {
	v, _ := s.resolve(entities.SettingKeyReciterID, EnvReciterID, s.defaults.ReciterID)
	return v
}

func (s *SettingsStore) GetTafsirID() string {
	v, _ := s.resolve(entities.SettingKeyTafsirID, EnvTafsirID, s.defaults.TafsirID)
	return v
}

// GetShowDailyVerse defaults to true.
func (s *SettingsStore) GetShowDailyVerse() bool {
	v, _ := s.resolve(entities.SettingKeyShowDailyVerse, EnvShowDailyVerse, "true")
	return parseBool(v, true)
}

func (s *SettingsStore) SetTranslationID(id string) error {
	return s.db.SetSetting(entities.SettingKeyTranslationID, id)
}

func (s *SettingsStore) SetReciterID(id string) error {
	return s.db.SetSetting(entities.SettingKeyReciterID, id)
}

func (s *SettingsStore) SetTafsirID(id string) error {
	return s.db.SetSetting(entities.SettingKeyTafsirID, id)
}

func (s *SettingsStore) SetShowDailyVerse(show bool) error {
	return s.db.SetSetting(entities.SettingKeyShowDailyVerse, strconv.FormatBool(show))
}

// Preferences returns the effective edition selection.
func (s *SettingsStore) Preferences() entities.Preferences {
	return entities.Preferences{
		TranslationID: s.GetTranslationID(),
		ReciterID:     s.GetReciterID(),
		TafsirID:      s.GetTafsirID(),
	}
}

// PreferencesInfo includes source information for each field
type PreferencesInfo struct {
	TranslationID       string `json:"translation_id"`
	TranslationIDSource string `json:"translation_id_source"` // "database", "environment", "default"

	ReciterID       string `json:"reciter_id"`
	ReciterIDSource string `json:"reciter_id_source"`

	TafsirID       string `json:"tafsir_id"`
	TafsirIDSource string `json:"tafsir_id_source"`

	ShowDailyVerse       bool   `json:"show_daily_verse"`
	ShowDailyVerseSource string `json:"show_daily_verse_source"`
}

func (s *SettingsStore) GetPreferencesInfo() PreferencesInfo {
	var info PreferencesInfo
	info.TranslationID, info.TranslationIDSource = s.resolve(entities.SettingKeyTranslationID, EnvTranslationID, s.defaults.TranslationID)
	info.ReciterID, info.ReciterIDSource = s.resolve(entities.SettingKeyReciterID, EnvReciterID, s.defaults.ReciterID)
	info.TafsirID, info.TafsirIDSource = s.resolve(entities.SettingKeyTafsirID, EnvTafsirID, s.defaults.TafsirID)

	var show string
	show, info.ShowDailyVerseSource = s.resolve(entities.SettingKeyShowDailyVerse, EnvShowDailyVerse, "true")
	info.ShowDailyVerse = parseBool(show, true)
	return info
}

// PreferencesUpdate holds the fields to change; nil fields are left as is.
type PreferencesUpdate struct {
	TranslationID  *string `json:"translation_id"`
	ReciterID      *string `json:"reciter_id"`
	TafsirID       *string `json:"tafsir_id"`
	ShowDailyVerse *bool   `json:"show_daily_verse"`
}

func (s *SettingsStore) UpdatePreferences(update PreferencesUpdate) error {
	if update.TranslationID != nil {
		if err := s.SetTranslationID(*update.TranslationID); err != nil {
			return err
		}
	}
	if update.ReciterID != nil {
		if err := s.SetReciterID(*update.ReciterID); err != nil {
			return err
		}
	}
	if update.TafsirID != nil {
		if err := s.SetTafsirID(*update.TafsirID); err != nil {
			return err
		}
	}
	if update.ShowDailyVerse != nil {
		return s.SetShowDailyVerse(*update.ShowDailyVerse)
	}
	return nil
}

// ClearPreferences clears all database overrides, reverting to env/default
func (s *SettingsStore) ClearPreferences() error {
	keys := []string{
		entities.SettingKeyTranslationID,
		entities.SettingKeyReciterID,
		entities.SettingKeyTafsirID,
		entities.SettingKeyShowDailyVerse,
	}
	for _, key := range keys {
		if err := s.db.DeleteSetting(key); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
