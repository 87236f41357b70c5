package auth

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"creditpipe/internal/ledger"
	"creditpipe/internal/models"
)

// RequireBearerMiddleware gates the API behind a bearer token. Health
// endpoints stay open. Validation happens at the gateway; this only rejects
// requests that skipped it entirely. CP_AUTH_DISABLED=true opens everything
// for local development.
func RequireBearerMiddleware() gin.HandlerFunc {
	disabled := strings.EqualFold(os.Getenv("CP_AUTH_DISABLED"), "true") || os.Getenv("CP_AUTH_DISABLED") == "1"

	return func(c *gin.Context) {
		if disabled {
			c.Next()
			return
		}
		p := c.Request.URL.Path
		if p == "/healthz" || p == "/readyz" || p == "/metrics" {
			c.Next()
			return
		}
		if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/swagger") {
			auth := strings.TrimSpace(c.GetHeader("Authorization"))
			if !strings.HasPrefix(auth, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
				return
			}
		}
		c.Next()
	}
}

// WriteAuditMiddleware records write requests against the API as system
// events so decisions and enqueues leave an audit trail.
func WriteAuditMiddleware(sink *ledger.Sink) gin.HandlerFunc {
	if sink == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		method := strings.ToUpper(c.Request.Method)
		if !strings.HasPrefix(path, "/api/") {
			return
		}
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return
		}

		status := c.Writer.Status()
		sink.WriteSystemEvent(c.Request.Context(), "", "", "http_write", severityFromStatus(status),
			method+" "+path,
			map[string]any{
				"method":   method,
				"path":     path,
				"status":   status,
				"duration": time.Since(start).String(),
			})
	}
}

func severityFromStatus(status int) string {
	if status >= 500 {
		return models.EventSeverityError
	}
	if status >= 400 {
		return models.EventSeverityWarn
	}
	return models.EventSeverityInfo
}
