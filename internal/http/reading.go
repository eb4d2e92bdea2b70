package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/entities"
	"github.com/mrlokans/quransync/internal/reading"
)

// ReadingController serves bookmarks, the last read position and juz progress.
type ReadingController struct {
	reading ReadingStore
	catalog Catalog
}

func NewReadingController(store ReadingStore, catalog Catalog) *ReadingController {
	return &ReadingController{reading: store, catalog: catalog}
}

type PositionRequest struct {
	Surah int `json:"surah" binding:"required"`
	Ayah  int `json:"ayah"`
	Juz   int `json:"juz"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

// surah looks the surah up in the catalog so that names are stored with
// the position. An unavailable catalog only costs the names.
func (rc *ReadingController) surah(c *gin.Context, number int) entities.Surah {
	if rc.catalog != nil {
		if s, err := rc.catalog.Surah(c.Request.Context(), number); err == nil {
			return *s
		}
	}
	return entities.Surah{Number: number}
}

func (rc *ReadingController) bindPosition(c *gin.Context) (PositionRequest, bool) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "surah is required")
		return req, false
	}
	if req.Surah < 1 || req.Surah > entities.TotalSurahs {
		respondBadRequest(c, "invalid surah number")
		return req, false
	}
	return req, true
}

// ListBookmarks handles GET /api/bookmarks
func (rc *ReadingController) ListBookmarks(c *gin.Context) {
	bookmarks, err := rc.reading.Bookmarks(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks, "count": len(bookmarks)})
}

// ToggleBookmark handles POST /api/bookmarks
// A zero ayah bookmarks the whole surah.
func (rc *ReadingController) ToggleBookmark(c *gin.Context) {
	req, ok := rc.bindPosition(c)
	if !ok {
		return
	}

	added, err := rc.reading.ToggleBookmark(c.Request.Context(), rc.surah(c, req.Surah), req.Ayah)
	if errors.Is(err, reading.ErrInvalidPosition) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "toggle bookmark")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         reading.BookmarkID(req.Surah, req.Ayah),
		"bookmarked": added,
	})
}

// DeleteBookmark handles DELETE /api/bookmarks/:id
func (rc *ReadingController) DeleteBookmark(c *gin.Context) {
	err := rc.reading.DeleteBookmark(c.Request.Context(), c.Param("id"))
	if errors.Is(err, reading.ErrBookmarkNotFound) {
		respondNotFound(c, "bookmark")
		return
	}
	if err != nil {
		respondInternalError(c, err, "delete bookmark")
		return
	}
	respondSuccess(c, "bookmark deleted")
}

// UpdateNote handles PUT /api/bookmarks/:id/note
func (rc *ReadingController) UpdateNote(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	err := rc.reading.SetBookmarkNote(c.Request.Context(), c.Param("id"), req.Note)
	if errors.Is(err, reading.ErrBookmarkNotFound) {
		respondNotFound(c, "bookmark")
		return
	}
	if err != nil {
		respondInternalError(c, err, "update bookmark note")
		return
	}
	respondSuccess(c, "note saved")
}

// GetLastRead handles GET /api/reading/last
func (rc *ReadingController) GetLastRead(c *gin.Context) {
	last, err := rc.reading.LastRead(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "last read")
		return
	}
	if last == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, last)
}

// MarkRead handles PUT /api/reading/last
func (rc *ReadingController) MarkRead(c *gin.Context) {
	req, ok := rc.bindPosition(c)
	if !ok {
		return
	}

	last, err := rc.reading.MarkRead(c.Request.Context(), rc.surah(c, req.Surah), req.Ayah, req.Juz)
	if errors.Is(err, reading.ErrInvalidPosition) || errors.Is(err, reading.ErrInvalidJuz) {
		respondBadRequest(c, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "mark read")
		return
	}
	c.JSON(http.StatusOK, last)
}

// JuzProgress handles GET /api/reading/juz
func (rc *ReadingController) JuzProgress(c *gin.Context) {
	progress, err := rc.reading.JuzProgress(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "juz progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"juz": progress})
}
