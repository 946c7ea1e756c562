package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"usercrud/internal/infrastructure/metrics"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimitPerIP is a token bucket per client ip. perMinute <= 0 disables it.
func RateLimitPerIP(perMinute, burst int, mCounter *prometheus.CounterVec) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
		lastGC   = time.Now()
	)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.Sub(lastGC) > limiterIdleTTL {
			for k, v := range visitors {
				if now.Sub(v.lastSeen) > limiterIdleTTL {
					delete(visitors, k)
				}
			}
			lastGC = now
		}
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{lim: rate.NewLimiter(every, burst)}
			visitors[ip] = v
		}
		v.lastSeen = now
		allowed := v.lim.AllowN(now, 1)
		mu.Unlock()

		if !allowed {
			if mCounter != nil {
				mCounter.WithLabelValues(metrics.RateLimited).Inc()
			}
			c.AbortWithStatusJSON(
				http.StatusTooManyRequests,
				gin.H{"error": "too many requests"},
			)
			return
		}

		c.Next()
	}
}
