package http

import (
	"errors"
	"net/http"
	"net/url"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/audiocache"
)

// AudioController serves recitation audio from the offline cache.
type AudioController struct {
	files AudioFiles
}

func NewAudioController(files AudioFiles) *AudioController {
	return &AudioController{files: files}
}

// GetAudio serves the cached copy of an ayah's audio.
// GET /api/audio?url=<source url>
// Audio that was never downloaded redirects to the source.
func (ac *AudioController) GetAudio(c *gin.Context) {
	source := c.Query("url")
	u, err := url.Parse(source)
	if source == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		respondBadRequest(c, "invalid audio url")
		return
	}

	f, err := ac.files.Open(source)
	if errors.Is(err, audiocache.ErrNotCached) {
		c.Redirect(http.StatusTemporaryRedirect, source)
		return
	}
	if err != nil {
		respondInternalError(c, err, "cached audio")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondInternalError(c, err, "cached audio")
		return
	}
	name := path.Base(u.Path)
	if path.Ext(name) == ".mp3" {
		c.Header("Content-Type", "audio/mpeg")
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}
