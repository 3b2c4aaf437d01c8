package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"ecosort/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandler converts errors attached by handlers into an opaque 500.
// Driver errors and wrapped causes go to the log, never to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		evt := log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath())
		if n := len(c.Errors); n > 1 {
			evt = evt.Int("error_count", n)
		}
		evt.Err(c.Errors.Last().Err).Msg("unhandled error")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
		}
	}
}

// Recovery turns panics into opaque 500s. The stack is logged server-side.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
			}
		}()
		c.Next()
	}
}

// Logger emits one structured line per request. 5xx responses log at error
// level, 4xx at warn, everything else at info.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			evt = log.Error()
		case status >= http.StatusBadRequest:
			evt = log.Warn()
		}
		evt.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
