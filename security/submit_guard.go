package security

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const submitGuardPrefix = "guard:book:"

// SubmitGuard rejects a second booking submission from the same client while
// the first one is in flight or has just succeeded. Failed submissions release
// the key so the user can retry at once.
type SubmitGuard struct {
	redis  redis.Cmdable
	window time.Duration
	logger *logrus.Logger
	now    func() time.Time

	mu    sync.Mutex
	local map[string]time.Time
}

// NewSubmitGuard builds a guard. A nil redis client keeps the keys in memory.
func NewSubmitGuard(redisClient redis.Cmdable, window time.Duration, logger *logrus.Logger) *SubmitGuard {
	if window <= 0 {
		window = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SubmitGuard{
		redis:  redisClient,
		window: window,
		logger: logger,
		now:    time.Now,
		local:  make(map[string]time.Time),
	}
}

func (g *SubmitGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := submitGuardPrefix + c.RealIP()

			if !g.acquire(ctx, key) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "A booking is already being submitted. Please wait.",
				})
			}

			err := next(c)
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				g.release(ctx, key)
			}
			return err
		}
	}
}

func (g *SubmitGuard) acquire(ctx context.Context, key string) bool {
	if g.redis != nil {
		ok, err := g.redis.SetNX(ctx, key, "1", g.window).Result()
		if err == nil {
			return ok
		}
		g.logger.WithError(err).Warn("submit guard store unavailable, using local keys")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for k, until := range g.local {
		if !now.Before(until) {
			delete(g.local, k)
		}
	}
	if _, ok := g.local[key]; ok {
		return false
	}
	g.local[key] = now.Add(g.window)
	return true
}

func (g *SubmitGuard) release(ctx context.Context, key string) {
	if g.redis != nil {
		if err := g.redis.Del(ctx, key).Err(); err != nil {
			g.logger.WithError(err).Warn("failed to release submit guard")
		}
	}
	g.mu.Lock()
	delete(g.local, key)
	g.mu.Unlock()
}
