package entities

import "time"

// Bookmark points at a whole surah ("surah_2") or a single ayah ("2:255").
type Bookmark struct {
	ID          string    `json:"id"`
	SurahNumber int       `json:"surahNumber"`
	AyahNumber  int       `json:"ayahNumber,omitempty"`
	SurahName   string    `json:"surahName"`
	Timestamp   time.Time `json:"timestamp"`
	Note        string    `json:"note,omitempty"`
}

type LastRead struct {
	Surah      Surah     `json:"surah"`
	AyahNumber int       `json:"ayahNumber"`
	Timestamp  time.Time `json:"timestamp"`
	JuzNumber  int       `json:"juzNumber,omitempty"`
}

type JuzProgress struct {
	JuzNumber       int       `json:"juzNumber"`
	LastSurahNumber int       `json:"lastSurahNumber"`
	LastAyahNumber  int       `json:"lastAyahNumber"`
	Timestamp       time.Time `json:"timestamp"`
	Percentage      float64   `json:"percentage"`
}
