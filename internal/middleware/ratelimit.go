package middleware

import (
	"net/http"
	"sync"
	"time"

	"campus-marketplace/internal/pkg/apperror"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var ErrTooManyRequests = apperror.New(
	apperror.CodeTooManyRequests,
	"Too many requests, please slow down",
	http.StatusTooManyRequests,
)

const limiterIdleTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		visitors:  make(map[string]*visitor),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastSweep) > time.Minute {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(s.visitors, k)
			}
		}
		s.lastSweep = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// RateLimitByIP applies a token bucket per client IP.
func RateLimitByIP(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		if !store.allow("ip:" + c.ClientIP()) {
			abortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimitByUser keys on the authenticated user and falls back to the IP
// when the route runs without auth.
func RateLimitByUser(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		key := "user:" + c.GetString("user_id_validated")
		if key == "user:" {
			key = "ip:" + c.ClientIP()
		}
		if !store.allow(key) {
			abortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
