package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot answer.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

const rateLimitKeyPrefix = "rl:"

// ErrLimiterUnavailable is returned by Allow when there is no Redis client.
var ErrLimiterUnavailable = errors.New("rate limit store unavailable")

// Decision is the outcome of one fixed-window check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts requests per key in fixed Redis windows. A disabled
// limiter allows everything without touching Redis.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
	policy  FailPolicy
}

// NewLimiter returns a fail-open limiter.
func NewLimiter(rdb *redis.Client, enabled bool) *Limiter {
	return &Limiter{rdb: rdb, enabled: enabled, policy: FailOpen}
}

// Strict returns a copy of l that rejects requests while Redis is down.
func (l *Limiter) Strict() *Limiter {
	cp := *l
	cp.policy = FailClosed
	return &cp
}

// Allow records one hit for resource/id and reports whether it fits in the
// window. The counter and its expiry are set in one MULTI so a crash between
// them cannot leave a key without a TTL.
func (l *Limiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (Decision, error) {
	d := Decision{Allowed: true, Limit: limit, Remaining: limit, ResetIn: window}
	if !l.enabled {
		return d, nil
	}
	if l.rdb == nil {
		return d, ErrLimiterUnavailable
	}

	key := rateLimitKeyPrefix + resource + ":" + id
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, window)
		ttl = p.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return d, err
	}

	count := int(incr.Val())
	d.Allowed = count <= limit
	d.Remaining = max(limit-count, 0)
	if left := ttl.Val(); left > 0 {
		d.ResetIn = left
	}
	return d, nil
}

// Limit returns a handler enforcing limit requests per window for resource.
// Authenticated callers are keyed by user id, others by remote IP.
func (l *Limiter) Limit(resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := CurrentUserID(c); ok {
			id = fmt.Sprintf("user:%d", uid)
		}

		d, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			if l.policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					"resource", resource, "error", err)
				return models.RespondWithError(c, fiber.StatusServiceUnavailable, ErrLimiterUnavailable)
			}
			return c.Next()
		}

		if l.enabled {
			c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.ResetIn.Round(time.Second).Seconds())))
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				fmt.Errorf("rate limit exceeded for %s", resource))
		}
		return c.Next()
	}
}
