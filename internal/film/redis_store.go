package film

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zsiec/nalforge/internal/config"
	apperrors "github.com/zsiec/nalforge/internal/errors"
	"github.com/zsiec/nalforge/internal/logger"
	"github.com/zsiec/nalforge/internal/metrics"
)

// RedisStore keeps films in Redis so generation runs on different hosts can
// share them.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
	prefix string
	ttl    time.Duration
}

// NewRedisClient builds a client from configuration.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// NewRedisStore creates a store. Keys are stored as prefix+"film:"+key and
// expire after ttl; a ttl of zero keeps them forever.
func NewRedisStore(client *redis.Client, log logger.Logger, prefix string, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		client: client,
		logger: logger.OrNull(log).WithField("component", "film_store"),
		prefix: prefix + "film:",
		ttl:    ttl,
	}
}

// Key returns the Redis key for a film key.
func (r *RedisStore) Key(key string) string {
	return r.prefix + key
}

// Ping checks that Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return apperrors.WrapStorageError(err, "redis ping failed")
	}
	return nil
}

// Save stores film under key.
func (r *RedisStore) Save(ctx context.Context, key string, film []byte) error {
	if err := r.client.Set(ctx, r.Key(key), film, r.ttl).Err(); err != nil {
		return apperrors.WrapStorageError(err, fmt.Sprintf("failed to save film %s", key))
	}

	r.logger.WithFields(map[string]interface{}{
		"key":   key,
		"bytes": len(film),
		"ttl":   r.ttl.String(),
	}).Debug("Film saved")
	metrics.SetFilmBytes(len(film))
	return nil
}

// Load fetches the film stored under key.
func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.New(apperrors.ErrorTypeStorage, fmt.Sprintf("film %s not found", key)).
			WithDetails(map[string]interface{}{"key": key})
	}
	if err != nil {
		return nil, apperrors.WrapStorageError(err, fmt.Sprintf("failed to load film %s", key))
	}
	return data, nil
}
