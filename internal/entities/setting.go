package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyTranslationID  = "translation_id"
	SettingKeyReciterID      = "reciter_id"
	SettingKeyTafsirID       = "tafsir_id"
	SettingKeyShowDailyVerse = "show_daily_verse"
	SettingKeyDailySchedule  = "daily_verse_schedule"
)
