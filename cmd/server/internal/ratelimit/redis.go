package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/types"
)

type RedisLimiterStore struct {
	db         *redis.Client
	limiterKey string
	perMinute  int64
	failOpen   bool
}

type RedisLimiterConfig struct {
	RedisClient *redis.Client
	LimiterKey  string
	PerMinute   int64
	FailOpen    bool
}

func (store *RedisLimiterStore) Allow(identifier string) (bool, error) {
	// This method might let N-1 extra requests in due to race condition where N is the possible number of concurrent writers
	// This is a smaller concern than the possibility that we will lose a distributed lock

	ctx := context.Background()

	key := "claimintake-ratelimit-" + store.limiterKey + "-" + identifier

	reqsLeftStr, err := store.db.Get(ctx, key).Result()

	if err == nil {
		reqsLeft := 0

		reqsLeft, err = strconv.Atoi(reqsLeftStr)
		if err != nil {
			return store.failOpen, err
		}

		if reqsLeft <= 0 {
			return false, nil
		}
	} else {
		if !errors.Is(err, redis.Nil) {
			return store.failOpen, err
		}

		if err := store.db.Set(ctx, key, store.perMinute, 60*time.Second).Err(); err != nil {
			return store.failOpen, err
		}
	}

	store.db.Decr(ctx, key)

	return true, nil
}

func NewRedisLimitStore(config RedisLimiterConfig) (store *RedisLimiterStore) {
	return &RedisLimiterStore{
		perMinute:  config.PerMinute,
		db:         config.RedisClient,
		limiterKey: config.LimiterKey,
		failOpen:   config.FailOpen,
	}
}

// Per client IP limiter for the submit endpoints. When the store errors the request is let
// through only if failOpen is set.
func NewRedisLimiter(
	redisHost string,
	limiterKey string,
	perMinute int64,
	failOpen bool,
) middleware.RateLimiterConfig {
	redisAddr := redisHost + ":6379"
	logger.Logger.Debug("Setting up rate limiter with Redis", "redis", redisAddr)
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	store := NewRedisLimitStore(RedisLimiterConfig{
		PerMinute:   perMinute,
		RedisClient: rdb,
		LimiterKey:  limiterKey,
		FailOpen:    failOpen,
	})

	return NewLimiterConfig(store)
}

func NewLimiterConfig(store middleware.RateLimiterStore) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method != http.MethodPost
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(
				http.StatusForbidden,
				types.KindError(types.ErrorKindUnexpected, "unable to identify client"),
			)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			// a store error only lands here when failing closed
			if err != nil {
				logger.Logger.Warn("rate limiter store error", "identifier", identifier, "error", err)
			}
			return c.JSON(
				http.StatusTooManyRequests,
				types.StringError("Too many submissions, try again later."),
			)
		},
	}
}
