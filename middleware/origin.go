package middleware

import (
	"net/http"
	"strings"

	"PArena/logger"

	"github.com/gin-gonic/gin"
)

// Origin rejects cross-origin upgrade requests before they reach the
// WebSocket handler. Browsers always send an Origin header on WebSocket
// handshakes; non-browser clients usually send none, which is allowed.
// An empty allowlist accepts every origin.
func Origin(allowed []string) gin.HandlerFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || len(set) == 0 {
			c.Next()
			return
		}
		if _, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]; !ok {
			logger.Warnf("[WS] rejected origin %q on %s", origin, c.Request.URL.Path)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
