package httpapi

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/ratelimit"
)

const identityKey = "identity"

func accessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

// admit applies policy p to the caller's address. A limiter failure lets the
// request through and is logged.
func admit(limiter ratelimit.Checker, p ratelimit.Policy, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Check(c.Request.Context(), c.ClientIP(), p)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "policy", p.Name, "error", err)
			c.Next()
			return
		}
		if !d.Allowed {
			c.Header("Retry-After", retryAfterSeconds(d.RetryAfter))
			abortWithError(c, common.ErrorTooManyRequests)
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

func authenticate(guard Guard, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			abortWithError(c, common.ErrorUnauthorized)
			return
		}
		id, err := guard.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug(c.Request.Context(), "authentication failed", "error", err)
			abortWithError(c, common.ErrorUnauthorized)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func requireAdmin(guard Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			abortWithError(c, common.ErrorUnauthorized)
			return
		}
		if _, err := guard.RequireAdmin(id); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
