package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/addrgate/addrgate/internal/api"
	"github.com/addrgate/addrgate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RateLimitMiddlewareConfig struct {
	// Class names an endpoint group (authorize, token, resource, revoke)
	// so each gets its own window per client.
	Class string
	Limit int64
}

// RateLimitMiddleware fronts an endpoint class with the fixed-window
// limiter, keyed by client IP. Rate headers go on every response; limited
// requests get 429 plus Retry-After and are never passed down the chain.
type RateLimitMiddleware struct {
	config  RateLimitMiddlewareConfig
	limiter *service.RateLimitService
}

func NewRateLimitMiddleware(config RateLimitMiddlewareConfig, limiter *service.RateLimitService) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		config:  config,
		limiter: limiter,
	}
}

func (m *RateLimitMiddleware) Init() error {
	return nil
}

func (m *RateLimitMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", m.config.Class, c.ClientIP())

		result, err := m.limiter.Check(key, m.config.Limit)
		if err != nil {
			log.Error().Err(err).Str("class", m.config.Class).Msg("Rate limit check failed")
			c.Next()
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.FormatInt(m.config.Limit, 10))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if result.Limited {
			retryAfter := int64(time.Until(result.ResetAt).Seconds()) + 1
			c.Writer.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			api.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")
			c.Abort()
			return
		}

		c.Next()
	}
}
