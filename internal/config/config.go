package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		AudioCache
		QuranAPI
		Sync
		Defaults
		DailyVerse
		Tasks
		Logging
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	AudioCache struct {
		Dir string // Directory holding cached recitation files
	}
	QuranAPI struct {
		BaseURL         string
		Timeout         time.Duration
		MaxAttempts     int           // Attempts per request including the first one
		RetryDelay      time.Duration // Fixed delay between attempts
		RateLimit       float64       // Requests per second, 0 disables pacing
		RateBurst       int
		BreakerFailures uint32 // Consecutive failures before the circuit opens, 0 disables it
	}
	Sync struct {
		UnitBatchSize  int
		AudioBatchSize int
	}
	// Defaults are used when the user has not picked editions yet.
	Defaults struct {
		TranslationID string
		ReciterID     string
		TafsirID      string
	}
	DailyVerse struct {
		PrefetchEnabled bool
		Schedule        string // Cron format: "5 0 * * *" = daily at 00:05
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Logging struct {
		Level  string
		Format string // json or console
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audio_cache_dir", DefaultAudioCacheDir)

	// Content API defaults
	v.SetDefault("quran_api_base_url", DefaultQuranAPIBaseURL)
	v.SetDefault("quran_api_timeout", "30s")
	v.SetDefault("quran_api_max_attempts", 3)
	v.SetDefault("quran_api_retry_delay", "1s")
	v.SetDefault("quran_api_rate_limit", 10)
	v.SetDefault("quran_api_rate_burst", 10)
	v.SetDefault("quran_api_breaker_failures", 25)

	v.SetDefault("sync_unit_batch_size", 3)
	v.SetDefault("sync_audio_batch_size", 5)

	v.SetDefault("default_translation_id", DefaultTranslationID)
	v.SetDefault("default_reciter_id", DefaultReciterID)
	v.SetDefault("default_tafsir_id", DefaultTafsirID)

	v.SetDefault("daily_verse_prefetch_enabled", true)
	v.SetDefault("daily_verse_schedule", "5 0 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 1)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "2h")
	v.SetDefault("task_release_after", "3h")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		AudioCache: AudioCache{
			Dir: v.GetString("AUDIO_CACHE_DIR"),
		},
		QuranAPI: QuranAPI{
			BaseURL:         v.GetString("QURAN_API_BASE_URL"),
			Timeout:         v.GetDuration("QURAN_API_TIMEOUT"),
			MaxAttempts:     v.GetInt("QURAN_API_MAX_ATTEMPTS"),
			RetryDelay:      v.GetDuration("QURAN_API_RETRY_DELAY"),
			RateLimit:       v.GetFloat64("QURAN_API_RATE_LIMIT"),
			RateBurst:       v.GetInt("QURAN_API_RATE_BURST"),
			BreakerFailures: v.GetUint32("QURAN_API_BREAKER_FAILURES"),
		},
		Sync: Sync{
			UnitBatchSize:  v.GetInt("SYNC_UNIT_BATCH_SIZE"),
			AudioBatchSize: v.GetInt("SYNC_AUDIO_BATCH_SIZE"),
		},
		Defaults: Defaults{
			TranslationID: v.GetString("DEFAULT_TRANSLATION_ID"),
			ReciterID:     v.GetString("DEFAULT_RECITER_ID"),
			TafsirID:      v.GetString("DEFAULT_TAFSIR_ID"),
		},
		DailyVerse: DailyVerse{
			PrefetchEnabled: v.GetBool("DAILY_VERSE_PREFETCH_ENABLED"),
			Schedule:        v.GetString("DAILY_VERSE_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
