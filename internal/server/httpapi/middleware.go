package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/logging"
	"github.com/gin-gonic/gin"
)

const adminIDKey = "admin_id"

// ClientIP returns the originating address: the first X-Forwarded-For
// component, then X-Real-IP, then the connection's remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		addr = addr[:i]
	}
	return strings.Trim(addr, "[]")
}

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", ClientIP(c.Request),
		)
	}
}

// adminAuth requires "Authorization: Bearer <access token>" and stores the
// admin ID in the gin context.
func adminAuth(a AdminAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AccessTokenHeaderName)
		if header == "" {
			abortWithError(c, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token format")
			return
		}

		adminID, err := a.Authenticate(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(adminIDKey, adminID)
		c.Next()
	}
}

func adminID(c *gin.Context) string {
	return c.GetString(adminIDKey)
}
