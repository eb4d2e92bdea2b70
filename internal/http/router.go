package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Everything below reads the edition preferences
	if cfg.Settings == nil {
		return router
	}

	if cfg.Catalog != nil {
		surahs := NewSurahsController(cfg.Catalog, cfg.Resolver, cfg.Tafsir, cfg.Settings)
		router.GET("/api/surahs", surahs.ListSurahs)
		router.GET("/api/editions", surahs.ListEditions)
		if cfg.Resolver != nil {
			router.GET("/api/surahs/:number", surahs.GetSurah)
		}
		if cfg.Tafsir != nil {
			router.GET("/api/surahs/:number/ayahs/:ayah/tafsir", surahs.GetTafsir)
		}
	}

	if cfg.Search != nil {
		searchController := NewSearchController(cfg.Search, cfg.Settings)
		router.GET("/api/search", searchController.Search)
	}

	if cfg.DailyVerse != nil {
		dailyVerse := NewDailyVerseController(cfg.DailyVerse, cfg.Settings)
		router.GET("/api/daily-verse", dailyVerse.GetDailyVerse)
	}

	// Offline library endpoints
	if cfg.Downloads != nil && cfg.Catalog != nil {
		downloadsController := NewDownloadsController(cfg.Downloads, cfg.Catalog, cfg.Progress, cfg.Settings, cfg.TaskClient)
		router.GET("/api/downloads", downloadsController.Overview)
		router.POST("/api/downloads", downloadsController.StartSync)
		router.DELETE("/api/downloads", downloadsController.ClearAll)
		router.POST("/api/downloads/cancel", downloadsController.CancelSync)
		router.DELETE("/api/downloads/audio", downloadsController.ClearAudio)
		router.DELETE("/api/downloads/surahs/:number", downloadsController.DeleteSurah)
		router.GET("/api/downloads/progress", downloadsController.Progress)
	}

	if cfg.Audio != nil {
		audioController := NewAudioController(cfg.Audio)
		router.GET("/api/audio", audioController.GetAudio)
	}

	// Settings endpoints
	settingsController := NewSettingsController(cfg.Settings, cfg.DailyVerseScheduler, cfg.Schedules, cfg.DailyVerseConfig)
	router.GET("/api/settings", settingsController.GetSettings)
	router.PUT("/api/settings", settingsController.UpdateSettings)
	router.DELETE("/api/settings", settingsController.ResetSettings)
	if cfg.Schedules != nil {
		router.GET("/api/settings/daily-verse", settingsController.GetSchedule)
		router.PUT("/api/settings/daily-verse", settingsController.UpdateSchedule)
	}

	// Reader state endpoints
	if cfg.Reading != nil {
		readingController := NewReadingController(cfg.Reading, cfg.Catalog)
		router.GET("/api/bookmarks", readingController.ListBookmarks)
		router.POST("/api/bookmarks", readingController.ToggleBookmark)
		router.DELETE("/api/bookmarks/:id", readingController.DeleteBookmark)
		router.PUT("/api/bookmarks/:id/note", readingController.UpdateNote)
		router.GET("/api/reading/last", readingController.GetLastRead)
		router.PUT("/api/reading/last", readingController.MarkRead)
		router.GET("/api/reading/juz", readingController.JuzProgress)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.Settings)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
