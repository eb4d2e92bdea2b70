package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/logging"
	"github.com/mrlokans/quransync/internal/settingsstore"
)

// SettingsController exposes the edition preferences and the daily verse
// prefetch schedule.
type SettingsController struct {
	store     SettingsStore
	scheduler Rescheduler
	schedules ScheduleStore
	dailyCfg  config.DailyVerse
	now       func() time.Time
}

func NewSettingsController(store SettingsStore, scheduler Rescheduler, schedules ScheduleStore, dailyCfg config.DailyVerse) *SettingsController {
	return &SettingsController{
		store:     store,
		scheduler: scheduler,
		schedules: schedules,
		dailyCfg:  dailyCfg,
		now:       time.Now,
	}
}

// GetSettings handles GET /api/settings
func (sc *SettingsController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, sc.store.GetPreferencesInfo())
}

// UpdateSettings handles PUT /api/settings
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var update settingsstore.PreferencesUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	for _, id := range []*string{update.TranslationID, update.ReciterID, update.TafsirID} {
		if id != nil && strings.TrimSpace(*id) == "" {
			respondBadRequest(c, "edition identifiers cannot be empty")
			return
		}
	}

	if err := sc.store.UpdatePreferences(update); err != nil {
		respondInternalError(c, err, "update settings")
		return
	}
	if update.ShowDailyVerse != nil {
		sc.reschedule()
	}
	c.JSON(http.StatusOK, sc.store.GetPreferencesInfo())
}

// ResetSettings handles DELETE /api/settings
func (sc *SettingsController) ResetSettings(c *gin.Context) {
	if err := sc.store.ClearPreferences(); err != nil {
		respondInternalError(c, err, "reset settings")
		return
	}
	sc.reschedule()
	c.JSON(http.StatusOK, sc.store.GetPreferencesInfo())
}

// ScheduleResponse describes the daily verse prefetch schedule.
type ScheduleResponse struct {
	Schedule        string     `json:"schedule"`
	PrefetchEnabled bool       `json:"prefetch_enabled"`
	NextRun         *time.Time `json:"next_run,omitempty"`
}

type ScheduleRequest struct {
	Schedule string `json:"schedule" binding:"required"`
}

func (sc *SettingsController) scheduleResponse() ScheduleResponse {
	schedule := sc.schedules.GetDailyVerseSchedule(sc.dailyCfg)
	resp := ScheduleResponse{Schedule: schedule, PrefetchEnabled: sc.dailyCfg.PrefetchEnabled}
	if next, err := settingsstore.GetNextRunTime(schedule, sc.now()); err == nil {
		resp.NextRun = next
	}
	return resp
}

// GetSchedule handles GET /api/settings/daily-verse
func (sc *SettingsController) GetSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, sc.scheduleResponse())
}

// UpdateSchedule handles PUT /api/settings/daily-verse
func (sc *SettingsController) UpdateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "schedule is required")
		return
	}
	schedule := strings.TrimSpace(req.Schedule)
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		respondBadRequest(c, "invalid cron schedule")
		return
	}

	if err := sc.schedules.SetDailyVerseSchedule(schedule); err != nil {
		respondInternalError(c, err, "update daily verse schedule")
		return
	}
	sc.reschedule()
	c.JSON(http.StatusOK, sc.scheduleResponse())
}

func (sc *SettingsController) reschedule() {
	if sc.scheduler == nil {
		return
	}
	if err := sc.scheduler.Reschedule(context.Background()); err != nil {
		logging.Warn().Err(err).Str("component", "http").Msg("Failed to reschedule daily verse prefetch")
	}
}
