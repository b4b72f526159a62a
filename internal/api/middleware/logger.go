package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"
)

// Logger writes one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		e := log.Info()
		if status >= 500 {
			e = log.Error()
		} else if status >= 400 {
			e = log.Warn()
		}
		e.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("API: request")
	}
}
