package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DailyVerseController struct {
	source DailyVerseSource
	prefs  PreferencesSource
}

func NewDailyVerseController(source DailyVerseSource, prefs PreferencesSource) *DailyVerseController {
	return &DailyVerseController{source: source, prefs: prefs}
}

// GetDailyVerse handles GET /api/daily-verse
func (dc *DailyVerseController) GetDailyVerse(c *gin.Context) {
	prefs := dc.prefs.Preferences()
	translationID := c.DefaultQuery("translation", prefs.TranslationID)
	reciterID := c.DefaultQuery("reciter", prefs.ReciterID)

	verse, err := dc.source.Today(c.Request.Context(), translationID, reciterID)
	if err != nil {
		respondContentError(c, err, "daily verse")
		return
	}
	c.JSON(http.StatusOK, verse)
}
