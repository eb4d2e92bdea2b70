package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/juz"
	"github.com/mrlokans/quransync/internal/resolver"
)

// SurahsController serves the surah listing, surah content and tafsir.
type SurahsController struct {
	catalog  Catalog
	resolver SurahResolver
	tafsir   TafsirSource
	prefs    PreferencesSource
}

func NewSurahsController(catalog Catalog, res SurahResolver, tafsir TafsirSource, prefs PreferencesSource) *SurahsController {
	return &SurahsController{catalog: catalog, resolver: res, tafsir: tafsir, prefs: prefs}
}

// ListSurahs handles GET /api/surahs
func (sc *SurahsController) ListSurahs(c *gin.Context) {
	surahs, err := sc.catalog.Surahs(c.Request.Context())
	if err != nil {
		respondContentError(c, err, "surah listing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"surahs": surahs, "count": len(surahs)})
}

// GetSurah handles GET /api/surahs/:number
// Query: translation, reciter, tafsir (bool), tafsir_id, force (bool).
func (sc *SurahsController) GetSurah(c *gin.Context) {
	number, ok := parseIntParam(c, "number", 1, entities.TotalSurahs)
	if !ok {
		return
	}

	prefs := sc.prefs.Preferences()
	translationID := c.DefaultQuery("translation", prefs.TranslationID)
	reciterID := c.DefaultQuery("reciter", prefs.ReciterID)

	opts := resolver.Options{
		ForceNetwork:    queryBool(c, "force"),
		IncludeTafsir:   queryBool(c, "tafsir"),
		TafsirID:        c.DefaultQuery("tafsir_id", prefs.TafsirID),
		FallbackOffline: true,
	}

	detail, err := sc.resolver.ResolveSurah(c.Request.Context(), number, reciterID, translationID, opts)
	if err != nil {
		respondContentError(c, err, "surah")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// TafsirResponse is a single ayah's commentary.
type TafsirResponse struct {
	Surah   int    `json:"surah"`
	Ayah    int    `json:"ayah"`
	Edition string `json:"edition"`
	Text    string `json:"text"`
}

// GetTafsir handles GET /api/surahs/:number/ayahs/:ayah/tafsir
func (sc *SurahsController) GetTafsir(c *gin.Context) {
	number, ok := parseIntParam(c, "number", 1, entities.TotalSurahs)
	if !ok {
		return
	}
	ayah, ok := parseIntParam(c, "ayah", 1, juz.AyahCount(number))
	if !ok {
		return
	}

	edition := strings.TrimSpace(c.Query("edition"))
	if edition == "" {
		edition = sc.prefs.Preferences().TafsirID
	}

	text, err := sc.tafsir.Tafsir(c.Request.Context(), number, ayah, edition)
	if err != nil {
		respondContentError(c, err, "tafsir")
		return
	}
	c.JSON(http.StatusOK, TafsirResponse{Surah: number, Ayah: ayah, Edition: edition, Text: text})
}

// ListEditions handles GET /api/editions?type=translation|versebyverse|tafsir
func (sc *SurahsController) ListEditions(c *gin.Context) {
	editionType := entities.EditionType(c.DefaultQuery("type", string(entities.EditionTypeTranslation)))
	switch editionType {
	case entities.EditionTypeTranslation, entities.EditionTypeVerseByVerse, entities.EditionTypeTafsir:
	default:
		respondBadRequest(c, "invalid edition type")
		return
	}

	editions, err := sc.catalog.Editions(c.Request.Context(), editionType)
	if err != nil {
		respondContentError(c, err, "edition listing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": editionType, "editions": editions})
}
