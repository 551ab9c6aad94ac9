package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/futa-medical/clinic-booking/pkg/api"
	"github.com/futa-medical/clinic-booking/pkg/interfaces"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/monitoring"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	buckets    map[string]*clientBucket
	bucketsMux sync.Mutex
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	now        func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMin sustained requests
// per key with bursts of up to burst
func NewRateLimiter(requestsPerMin, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*clientBucket),
		limit:   rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether key may make another request now
func (rl *RateLimiter) Allow(key string) bool {
	rl.bucketsMux.Lock()
	now := rl.now()
	bucket, exists := rl.buckets[key]
	if !exists {
		bucket = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = bucket
	}
	bucket.lastSeen = now
	rl.bucketsMux.Unlock()

	return bucket.limiter.AllowN(now, 1)
}

// cleanup drops buckets idle for longer than idleTTL
func (rl *RateLimiter) cleanup() {
	rl.bucketsMux.Lock()
	defer rl.bucketsMux.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	for key, bucket := range rl.buckets {
		if bucket.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanup runs cleanup every interval until ctx is cancelled
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
}

// RateLimit rejects requests over the limit of the client IP with 429
func RateLimit(limiter interfaces.RateLimiter, metrics *monitoring.MetricsCollector, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		metrics.RecordRateLimitRejection(c.FullPath())
		log.Security(c.Request.Context(), "rate_limit_exceeded", map[string]interface{}{
			"client_ip": c.ClientIP(),
			"path":      c.FullPath(),
		})
		api.Error(c, log, types.NewRateLimitError("Too many requests, please try again later"))
		c.Abort()
	}
}
