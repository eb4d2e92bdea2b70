package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/juz"
	"github.com/mrlokans/quransync/internal/quranapi"
	"github.com/mrlokans/quransync/internal/search"
)

type SearchController struct {
	searcher Searcher
	prefs    PreferencesSource
}

func NewSearchController(searcher Searcher, prefs PreferencesSource) *SearchController {
	return &SearchController{searcher: searcher, prefs: prefs}
}

// Search handles GET /api/search
// Query: q, scope (comma separated), juz, revelation, offline (bool).
func (sc *SearchController) Search(c *gin.Context) {
	text := strings.TrimSpace(c.Query("q"))
	if text == "" {
		respondBadRequest(c, "q is required")
		return
	}

	var scopes []search.Scope
	for _, raw := range splitList(c.Query("scope")) {
		scope, err := search.ParseScope(raw)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		scopes = append(scopes, scope)
	}

	juzNumber, ok := parseOptionalIntQuery(c, "juz", 1, juz.Count)
	if !ok {
		return
	}

	var revelation entities.RevelationType
	switch strings.ToLower(c.Query("revelation")) {
	case "", "all":
	case "meccan":
		revelation = entities.RevelationMeccan
	case "medinan":
		revelation = entities.RevelationMedinan
	default:
		respondBadRequest(c, "invalid revelation")
		return
	}

	prefs := sc.prefs.Preferences()
	result, err := sc.searcher.Search(c.Request.Context(), search.Query{
		Text:          text,
		Scopes:        scopes,
		TranslationID: c.DefaultQuery("translation", prefs.TranslationID),
		ReciterID:     prefs.ReciterID,
		TafsirID:      c.DefaultQuery("tafsir_id", prefs.TafsirID),
		Juz:           juzNumber,
		Revelation:    revelation,
		Offline:       queryBool(c, "offline"),
	})
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		respondBadRequest(c, err.Error())
	case errors.Is(err, quranapi.ErrCancelled):
		respondContentError(c, err, "search")
	case err != nil:
		respondInternalError(c, err, "search")
	default:
		c.JSON(http.StatusOK, result)
	}
}
