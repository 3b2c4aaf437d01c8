package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS answers browser preflight and tags every response. Content-Disposition
// is exposed so the activity report download keeps its filename in browser
// clients.
func CORS() gin.HandlerFunc {
	headers := map[string]string{
		"Access-Control-Allow-Origin":   "*",
		"Access-Control-Allow-Methods":  "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers":  "Authorization, Content-Type, X-Request-ID",
		"Access-Control-Expose-Headers": "X-Request-ID, Content-Disposition",
	}
	return func(c *gin.Context) {
		for k, v := range headers {
			c.Header(k, v)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
