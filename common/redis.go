package common

import (
	"context"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/go-redis/redis/v8"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/logger"
)

// RDB is nil unless REDIS_CONN_STRING is set and InitRedisClient succeeded.
var RDB redis.Cmdable

// RedisEnabled reports whether the shared Redis client is usable.
var RedisEnabled = false

// InitRedisClient connects to Redis when REDIS_CONN_STRING is set.
// A sentinel setup is used when REDIS_MASTER_NAME is also set.
func InitRedisClient() error {
	if config.RedisConnString == "" {
		logger.Logger.Info("REDIS_CONN_STRING not set, Redis is not enabled")
		RedisEnabled = false
		return nil
	}

	if config.RedisMasterName == "" {
		opt, err := redis.ParseURL(config.RedisConnString)
		if err != nil {
			return errors.Wrap(err, "parse redis connection string")
		}
		RDB = redis.NewClient(opt)
	} else {
		logger.Logger.Info("Redis sentinel mode enabled")
		RDB = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:      strings.Split(config.RedisConnString, ","),
			Password:   config.RedisPassword,
			MasterName: config.RedisMasterName,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		return errors.Wrap(err, "redis ping")
	}

	RedisEnabled = true
	logger.Logger.Info("Redis is enabled", zap.String("master", config.RedisMasterName))
	return nil
}
