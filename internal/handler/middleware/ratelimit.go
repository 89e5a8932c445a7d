package middleware

import (
	"net/http"
	"strconv"

	"keypool/internal/handler/httperr"
	"keypool/internal/pkg/config"
	"keypool/internal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	cfg     config.RateLimitConfig
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, cfg config.RateLimitConfig) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, cfg: cfg}
}

// Limit throttles the named action per authenticated user. Unauthorized
// requests fall back to the client IP so the limiter still bites before
// auth failures do.
func (m *RateLimitMiddleware) Limit(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			subject = userID.String()
		}

		if !m.limiter.Check(subject, action, m.cfg.MaxAttempts, m.cfg.Window) {
			retryAfter := m.limiter.RemainingCooldown(subject, action)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			httperr.Abort(c, http.StatusTooManyRequests, nil, "Too many requests",
				gin.H{"retry_after_seconds": retryAfter})
			return
		}
		c.Next()
	}
}
