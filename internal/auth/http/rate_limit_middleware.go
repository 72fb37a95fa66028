package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/guardvault/guardvault/internal/errors"
	"github.com/guardvault/guardvault/internal/httputil"
)

// rateLimiterStore holds keyed rate limiters with automatic cleanup. Keys are
// API key IDs for authenticated traffic and client addresses for
// authentication failures.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// RateLimitMiddleware enforces per-credential rate limiting on authenticated
// requests using a token bucket per API key.
//
// MUST run after AuthenticationMiddleware: the limiter is keyed by the
// authenticating API key's ID, so two keys of the same account have
// independent budgets. Exceeding the budget returns 429 with a Retry-After
// header.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	// Stale limiters are dropped every 5 minutes to bound memory.
	go store.cleanupStale(context.Background(), 5*time.Minute)

	return func(c *gin.Context) {
		apiKey, ok := GetAPIKey(c.Request.Context())
		if !ok || apiKey == nil {
			logger.Error("rate limit middleware: no authenticated api key in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		limiter := store.getLimiter(apiKey.ID.String())

		if !limiter.Allow() {
			retryAfter := retryAfterSeconds(limiter)

			logger.Debug("rate limit exceeded",
				slog.String("api_key_id", apiKey.ID.String()),
				slog.Int("retry_after", retryAfter))

			tooManyRequests(c, retryAfter)
			return
		}

		c.Next()
	}
}

// AuthFailureLimiter throttles failed authentication attempts per client
// address. Successful requests never consume from it, so legitimate traffic
// behind a shared NAT keeps working while a credential spray from one address
// exhausts its budget.
type AuthFailureLimiter struct {
	store *rateLimiterStore
}

func NewAuthFailureLimiter(rps float64, burst int) *AuthFailureLimiter {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}
	go store.cleanupStale(context.Background(), 5*time.Minute)
	return &AuthFailureLimiter{store: store}
}

// allow consumes one token from the address's bucket. When the bucket is
// empty it returns false and the number of seconds until the next token.
func (l *AuthFailureLimiter) allow(ip string) (bool, int) {
	limiter := l.store.getLimiter(ip)
	if limiter.Allow() {
		return true, 0
	}
	return false, retryAfterSeconds(limiter)
}

func retryAfterSeconds(limiter *rate.Limiter) int {
	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()
	return retryAfter
}

func tooManyRequests(c *gin.Context, retryAfter int) {
	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: "Too many requests. Please retry after the specified delay.",
	})
	c.Abort()
}

// getLimiter retrieves or creates the rate limiter for a key. Concurrent
// callers racing on a fresh key converge on a single limiter through
// LoadOrStore, so no caller ever draws from a bucket that is then thrown
// away.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	if val, loaded := s.limiters.LoadOrStore(key, entry); loaded {
		entry = val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
	}
	return entry.limiter
}

// cleanupStale removes rate limiters that haven't been accessed in the last
// hour, so revoked and abandoned keys don't accumulate limiters forever.
func (s *rateLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
