package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quransync/internal/logging"
)

// RequestLogger logs each request through zerolog. Server errors log at
// error level, client errors at warn and the rest at debug.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logging.Debug()
		switch {
		case status >= 500:
			event = logging.Error()
		case status >= 400:
			event = logging.Warn()
		}
		event.Str("component", "http").
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}
