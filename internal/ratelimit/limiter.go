package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/logging"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/redis"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/auth"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
)

const (
	DefaultDailyLimit = 100
	keyPrefix         = "todo:rl:"
)

// RateLimiter 按 owner 限制每日写入次数, 计数存 redis, UTC 零点重置。
// redis 不可用时放行 (fail open), 限流属于保护措施而非业务不变量。
type RateLimiter struct {
	*core.BaseComponent
	RedisComp *redis.RedisComponent `infra:"dep:redis"`
	limit     int64
	nowFn     func() time.Time
}

func NewRateLimiter(dailyLimit int64) *RateLimiter {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &RateLimiter{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_MW_RATELIMIT, consts.COMPONENT_LOGGING, consts.COMPONENT_REDIS),
		limit:         dailyLimit,
		nowFn:         time.Now,
	}
}

func (l *RateLimiter) Start(ctx context.Context) error {
	if err := l.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if l.RedisComp == nil {
		return fmt.Errorf("rate_limiter: redis component not injected")
	}
	return nil
}

func (l *RateLimiter) Stop(ctx context.Context) error {
	return l.BaseComponent.Stop(ctx)
}

// Middleware 必须挂在认证中间件之后, 没有 owner 的请求直接放行。
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, ok := auth.OwnerID(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			allowed, remaining := l.Allow(r.Context(), ownerID)
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":"daily request limit of %d reached","code":"RATE_LIMITED"}`, l.limit)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allow counts one request against the owner's daily budget.
func (l *RateLimiter) Allow(ctx context.Context, ownerID string) (bool, int64) {
	now := l.nowFn().UTC()
	key := keyPrefix + ownerID + ":" + now.Format("2006-01-02")

	n, err := l.RedisComp.Client().Incr(ctx, key).Result()
	if err != nil {
		logging.Warn(ctx, "rate limit incr failed, allowing request",
			zap.String("owner_id", ownerID), zap.Error(err))
		return true, l.limit
	}
	if n == 1 {
		// Key lives until the UTC day rolls over, when a fresh key takes over.
		if err := l.RedisComp.Client().Expire(ctx, key, untilNextUTCMidnight(now)).Err(); err != nil {
			logging.Warn(ctx, "rate limit expire failed", zap.String("key", key), zap.Error(err))
		}
	}
	remaining := l.limit - n
	if remaining < 0 {
		remaining = 0
	}
	return n <= l.limit, remaining
}

func untilNextUTCMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Sub(now)
}
