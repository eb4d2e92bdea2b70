package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/quransync/internal/downloads"
	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/quranapi"
	"github.com/mrlokans/quransync/internal/tasks"
)

// DownloadsController manages the offline library.
type DownloadsController struct {
	manager    DownloadManager
	catalog    Catalog
	progress   ProgressStore
	prefs      PreferencesSource
	taskClient TaskQueue
}

func NewDownloadsController(manager DownloadManager, catalog Catalog, progress ProgressStore, prefs PreferencesSource, taskClient TaskQueue) *DownloadsController {
	return &DownloadsController{
		manager:    manager,
		catalog:    catalog,
		progress:   progress,
		prefs:      prefs,
		taskClient: taskClient,
	}
}

// DownloadRequest is the body of POST /api/downloads. Empty edition IDs
// fall back to the stored preferences and empty Surahs means all of them.
type DownloadRequest struct {
	Surahs        []int  `json:"surahs"`
	TranslationID string `json:"translation_id"`
	ReciterID     string `json:"reciter_id"`
	TafsirID      string `json:"tafsir_id"`
	IncludeAudio  bool   `json:"include_audio"`
	IncludeTafsir bool   `json:"include_tafsir"`
}

func (r DownloadRequest) task(prefs entities.Preferences) tasks.SyncSurahsTask {
	t := tasks.SyncSurahsTask{
		SurahNumbers:  r.Surahs,
		TranslationID: r.TranslationID,
		ReciterID:     r.ReciterID,
		TafsirID:      r.TafsirID,
		IncludeAudio:  r.IncludeAudio,
		IncludeTafsir: r.IncludeTafsir,
	}
	if t.TranslationID == "" {
		t.TranslationID = prefs.TranslationID
	}
	if t.ReciterID == "" {
		t.ReciterID = prefs.ReciterID
	}
	if t.TafsirID == "" {
		t.TafsirID = prefs.TafsirID
	}
	return t
}

// Overview handles GET /api/downloads
func (dc *DownloadsController) Overview(c *gin.Context) {
	overview, err := dc.manager.Overview(c.Request.Context(), dc.prefs.Preferences())
	if err != nil {
		respondInternalError(c, err, "downloads overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// StartSync handles POST /api/downloads
// The run goes through the task queue when one is configured and otherwise
// starts in the background. A running sync is superseded either way.
func (dc *DownloadsController) StartSync(c *gin.Context) {
	var req DownloadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}
	for _, n := range req.Surahs {
		if n < 1 || n > entities.TotalSurahs {
			respondBadRequest(c, "invalid surah number")
			return
		}
	}

	task := req.task(dc.prefs.Preferences())

	if dc.taskClient != nil {
		ids, err := dc.taskClient.Add(task).Save()
		if err != nil {
			respondInternalError(c, err, "enqueue offline sync")
			return
		}
		respondAccepted(c, "offline sync enqueued", gin.H{"task_id": ids[0]})
		return
	}

	listing, err := dc.catalog.Surahs(c.Request.Context())
	if err != nil {
		respondContentError(c, err, "surah listing")
		return
	}
	surahs, err := tasks.SelectSurahs(listing, task.SurahNumbers)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	runID := dc.manager.Start(context.Background(), downloads.Request{
		Surahs:        surahs,
		TranslationID: task.TranslationID,
		ReciterID:     task.ReciterID,
		IncludeAudio:  task.IncludeAudio,
		IncludeTafsir: task.IncludeTafsir,
		TafsirID:      task.TafsirID,
	}, logSyncOutcome)

	respondAccepted(c, "offline sync started", gin.H{"run_id": runID, "surahs": len(surahs)})
}

func logSyncOutcome(result *downloads.Result, err error) {
	switch {
	case errors.Is(err, quranapi.ErrCancelled):
		logging.Info().Str("component", "http").Msg("Offline sync cancelled")
	case err != nil:
		logging.Error().Err(err).Str("component", "http").Msg("Offline sync failed")
	default:
		logging.Info().Str("component", "http").Str("run_id", result.RunID).
			Int("completed", len(result.Completed)).Int("failed", len(result.Failed)).
			Msg("Offline sync complete")
	}
}

// CancelSync handles POST /api/downloads/cancel
func (dc *DownloadsController) CancelSync(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cancelled": dc.manager.Cancel()})
}

// ClearAll handles DELETE /api/downloads
func (dc *DownloadsController) ClearAll(c *gin.Context) {
	if err := dc.manager.ClearAll(c.Request.Context()); err != nil {
		respondInternalError(c, err, "clear offline library")
		return
	}
	respondSuccess(c, "offline library cleared")
}

// DeleteSurah handles DELETE /api/downloads/surahs/:number
func (dc *DownloadsController) DeleteSurah(c *gin.Context) {
	number, ok := parseIntParam(c, "number", 1, entities.TotalSurahs)
	if !ok {
		return
	}
	err := dc.manager.DeleteSurah(c.Request.Context(), number)
	if errors.Is(err, downloads.ErrSurahNotDownloaded) {
		respondNotFound(c, "downloaded surah")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete downloaded surah")
		return
	}
	respondSuccess(c, "surah removed from offline library")
}

// ClearAudio handles DELETE /api/downloads/audio
func (dc *DownloadsController) ClearAudio(c *gin.Context) {
	if err := dc.manager.ClearOfflineAudio(c.Request.Context()); err != nil {
		respondInternalError(c, err, "clear offline audio")
		return
	}
	respondSuccess(c, "offline audio cleared")
}

// Progress handles GET /api/downloads/progress
func (dc *DownloadsController) Progress(c *gin.Context) {
	if dc.progress == nil {
		respondNotFound(c, "sync progress")
		return
	}
	// Marks a run left behind by a crashed process as failed.
	if _, err := dc.progress.IsSyncRunning(); err != nil {
		respondInternalError(c, err, "sync progress")
		return
	}
	progress, err := dc.progress.GetSyncProgress()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "sync progress")
		return
	}
	if err != nil {
		respondInternalError(c, err, "sync progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}
