package entities

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// Total number of ayahs in the corpus.
const TotalAyahs = 6236

// TotalSurahs is the number of content units.
const TotalSurahs = 114

type RevelationType string

const (
	RevelationMeccan  RevelationType = "Meccan"
	RevelationMedinan RevelationType = "Medinan"
)

type EditionType string

const (
	EditionTypeTranslation  EditionType = "translation"
	EditionTypeVerseByVerse EditionType = "versebyverse" // audio recitations
	EditionTypeTafsir       EditionType = "tafsir"
)

// Surah is one entry of the surah listing.
type Surah struct {
	Number                 int            `json:"number"`
	Name                   string         `json:"name"`
	EnglishName            string         `json:"englishName"`
	EnglishNameTranslation string         `json:"englishNameTranslation"`
	NumberOfAyahs          int            `json:"numberOfAyahs"`
	RevelationType         RevelationType `json:"revelationType"`
}

// Sajda marks a prostration ayah. The API sends either `false` or an object.
type Sajda struct {
	Present     bool
	ID          int
	Recommended bool
	Obligatory  bool
}

type sajdaObject struct {
	ID          int  `json:"id"`
	Recommended bool `json:"recommended"`
	Obligatory  bool `json:"obligatory"`
}

func (s Sajda) MarshalJSON() ([]byte, error) {
	if !s.Present {
		return []byte("false"), nil
	}
	return json.Marshal(sajdaObject{ID: s.ID, Recommended: s.Recommended, Obligatory: s.Obligatory})
}

func (s *Sajda) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "false", "null", "":
		*s = Sajda{}
		return nil
	case "true":
		*s = Sajda{Present: true}
		return nil
	}
	var obj sajdaObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = Sajda{Present: true, ID: obj.ID, Recommended: obj.Recommended, Obligatory: obj.Obligatory}
	return nil
}

// Ayah is one verse. Translation, Audio and Tafsir are edition-scoped projections.
type Ayah struct {
	Number         int      `json:"number"`
	Text           string   `json:"text"`
	NumberInSurah  int      `json:"numberInSurah"`
	Juz            int      `json:"juz"`
	Manzil         int      `json:"manzil"`
	Page           int      `json:"page"`
	Ruku           int      `json:"ruku"`
	HizbQuarter    int      `json:"hizbQuarter"`
	Sajda          Sajda    `json:"sajda"`
	Audio          string   `json:"audio,omitempty"`
	AudioSecondary []string `json:"audioSecondary,omitempty"`
	Translation    string   `json:"translation,omitempty"`
	Tafsir         string   `json:"tafsir,omitempty"`
}

// SurahDetail is a surah with its merged ayahs.
type SurahDetail struct {
	Surah
	Ayahs []Ayah `json:"ayahs"`
}

// Edition describes a translation, recitation or tafsir rendering.
type Edition struct {
	Identifier  string `json:"identifier"`
	Language    string `json:"language"`
	Name        string `json:"name"`
	EnglishName string `json:"englishName"`
	Format      string `json:"format"`
	Type        string `json:"type"`
}

// SurahMeta is stored next to each downloaded surah and records which
// editions the stored copy reflects.
type SurahMeta struct {
	Number         int            `json:"number"`
	Name           string         `json:"name"`
	EnglishName    string         `json:"englishName"`
	NumberOfAyahs  int            `json:"numberOfAyahs,omitempty"`
	RevelationType RevelationType `json:"revelationType,omitempty"`
	DownloadedAt   time.Time      `json:"downloadedAt"`
	TranslationID  string         `json:"translationId"`
	ReciterID      string         `json:"reciterId"`
	TafsirID       string         `json:"tafsirId,omitempty"`
	HasAudio       bool           `json:"hasAudio"`
}

// OfflineMetadata summarizes the whole offline pack after the last sync.
type OfflineMetadata struct {
	LastUpdated     time.Time `json:"lastUpdated"`
	TranslationID   string    `json:"translationId"`
	ReciterID       string    `json:"reciterId"`
	TafsirID        string    `json:"tafsirId,omitempty"`
	TotalDownloaded int       `json:"totalDownloaded"`
}

// DailyVerse is the assembled verse of the day.
type DailyVerse struct {
	Date          string `json:"date"`
	Number        int    `json:"number"`
	Text          string `json:"text"`
	Translation   string `json:"translation"`
	Audio         string `json:"audio,omitempty"`
	Surah         Surah  `json:"surah"`
	NumberInSurah int    `json:"numberInSurah"`
}

// Preferences is the user's current edition selection.
type Preferences struct {
	TranslationID string `json:"translationId"`
	ReciterID     string `json:"reciterId"`
	TafsirID      string `json:"tafsirId"`
}
