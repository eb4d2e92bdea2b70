package config

// Default paths for local storage
const (
	// DefaultDatabasePath is the default path for the offline content database
	DefaultDatabasePath = "./quran-offline.db"

	// DefaultAudioCacheDir is the default directory for cached recitation audio
	DefaultAudioCacheDir = "./audio-cache"
)

// Content defaults
const (
	DefaultQuranAPIBaseURL = "https://api.alquran.cloud/v1"

	DefaultTranslationID = "en.asad"
	DefaultReciterID     = "ar.alafasy"
	DefaultTafsirID      = "ar.jalalayn"
)
