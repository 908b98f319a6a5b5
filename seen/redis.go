package seen

import (
	"time"

	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

// RedisConfig contains all settings for the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // key prefix, defaults to "linehook:seen:"
	TTL      time.Duration // how long IDs stay recorded, defaults to one hour
	Logger   *zap.Logger
}

// RedisStore is a Store shared across processes. IDs are written with SETNX
// and expire after the configured TTL, which matches the platform's bounded
// redelivery window.
type RedisStore struct {
	logger *zap.Logger
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects a Redis-backed store.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "linehook:seen:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisStore{
		logger: logger,
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Mark implements Store.
func (s *RedisStore) Mark(id string) (bool, error) {
	stored, err := s.client.SetNX(s.prefix+id, 1, s.ttl).Result()
	if err != nil {
		return false, err
	}
	if !stored {
		s.logger.Debug("seen: duplicate event id", zap.String("id", id))
	}
	return !stored, nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
