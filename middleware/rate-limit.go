package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/VaDeloitte/test-project-sub002/common"
	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/monitor"
)

const rateLimitTimeFormat = "20060102150405"

var errTooManyRequests = errors.New("too many requests, please retry later")

// inMemoryRateLimiter is a sliding window limiter used when Redis is disabled.
type inMemoryRateLimiter struct {
	mu    sync.Mutex
	store *cache.Cache
}

type rateWindow struct {
	mu   sync.Mutex
	hits []int64
}

func newInMemoryRateLimiter(expiration time.Duration) *inMemoryRateLimiter {
	return &inMemoryRateLimiter{store: cache.New(expiration, expiration)}
}

// Request records a hit for key and reports whether it is within maxRequestNum
// hits per duration seconds.
func (l *inMemoryRateLimiter) Request(key string, maxRequestNum int, duration int64) bool {
	w := l.window(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now().Unix()
	if len(w.hits) < maxRequestNum {
		w.hits = append(w.hits, now)
		return true
	}
	if now-w.hits[0] < duration {
		return false
	}
	w.hits = append(w.hits[1:], now)
	return true
}

// window returns the stored window for key, creating it when missing or expired.
// Every call pushes the key's expiration forward.
func (l *inMemoryRateLimiter) window(key string) *rateWindow {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.store.Get(key)
	if !ok {
		w = &rateWindow{}
	}
	l.store.Set(key, w, cache.DefaultExpiration)
	return w.(*rateWindow)
}

var memoryLimiter = newInMemoryRateLimiter(config.RateLimitKeyExpirationDuration)

// redisRateLimiter keeps the last maxRequestNum hit times in a Redis list.
func redisRateLimiter(c *gin.Context, maxRequestNum int, duration int64, mark string) {
	ctx := gmw.Ctx(c)
	rdb := common.RDB
	key := "rateLimit:" + mark + c.ClientIP()

	listLength, err := rdb.LLen(ctx, key).Result()
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, errors.Wrap(err, "rate limit"))
		return
	}

	now := time.Now()
	if listLength < int64(maxRequestNum) {
		rdb.LPush(ctx, key, now.Format(rateLimitTimeFormat))
		rdb.Expire(ctx, key, config.RateLimitKeyExpirationDuration)
		c.Next()
		return
	}

	oldTimeStr, _ := rdb.LIndex(ctx, key, -1).Result()
	oldTime, err := time.ParseInLocation(rateLimitTimeFormat, oldTimeStr, now.Location())
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, errors.Wrapf(err, "parse rate limit time %q", oldTimeStr))
		return
	}
	if int64(now.Sub(oldTime).Seconds()) < duration {
		rdb.Expire(ctx, key, config.RateLimitKeyExpirationDuration)
		rejectRateLimited(c, mark)
		return
	}

	rdb.LPush(ctx, key, now.Format(rateLimitTimeFormat))
	rdb.LTrim(ctx, key, 0, int64(maxRequestNum-1))
	rdb.Expire(ctx, key, config.RateLimitKeyExpirationDuration)
	c.Next()
}

func memoryRateLimiter(c *gin.Context, maxRequestNum int, duration int64, mark string) {
	key := mark + c.ClientIP()
	if !memoryLimiter.Request(key, maxRequestNum, duration) {
		rejectRateLimited(c, mark)
		return
	}
	c.Next()
}

func rejectRateLimited(c *gin.Context, mark string) {
	monitor.RateLimited.WithLabelValues(mark).Inc()
	c.Header("Retry-After", fmt.Sprint(config.GlobalChatRateLimitDuration))
	AbortWithError(c, http.StatusTooManyRequests, errTooManyRequests)
}

func rateLimitFactory(maxRequestNum int, duration int64, mark string) func(c *gin.Context) {
	if maxRequestNum <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		if common.RedisEnabled {
			redisRateLimiter(c, maxRequestNum, duration, mark)
			return
		}
		memoryRateLimiter(c, maxRequestNum, duration, mark)
	}
}

// GlobalChatRateLimit limits POST /api/chat per client IP. GLOBAL_CHAT_RATE_LIMIT=0 disables it.
func GlobalChatRateLimit() func(c *gin.Context) {
	return rateLimitFactory(config.GlobalChatRateLimitNum, config.GlobalChatRateLimitDuration, "CHAT")
}
