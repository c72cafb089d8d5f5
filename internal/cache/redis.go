package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"indoors/internal/core/model"
	"indoors/internal/metrics"
)

const roomKeyPrefix = "indoors:room:"

// RoomCache keeps recently read room documents in Redis. A cache without a
// reachable server is disabled: reads miss and writes are no-ops.
type RoomCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New connects to redisURL. An empty or unreachable URL yields a disabled cache.
func New(redisURL string, ttl time.Duration, logger zerolog.Logger) *RoomCache {
	c := &RoomCache{ttl: ttl, logger: logger}

	if redisURL == "" {
		logger.Info().Msg("Redis URL not provided, caching disabled")
		return c
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to parse Redis URL, caching disabled")
		return c
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, caching disabled")
		client.Close()
		return c
	}

	c.client = client
	logger.Info().Msg("Redis cache initialized successfully")
	return c
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RoomCache {
	return &RoomCache{client: client, ttl: ttl, logger: logger}
}

func (c *RoomCache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *RoomCache) Close() {
	if c.Enabled() {
		c.client.Close()
	}
}

// Set stores a value in cache with expiration
func (c *RoomCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value from cache
func (c *RoomCache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return redis.Nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Delete removes a key from cache
func (c *RoomCache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}

	return c.client.Del(ctx, key).Err()
}

func (c *RoomCache) GetRoom(ctx context.Context, id string) (*model.Room, bool) {
	if !c.Enabled() {
		return nil, false
	}

	var room model.Room
	err := c.Get(ctx, roomKeyPrefix+id, &room)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("room_id", id).Msg("Room cache read failed")
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	return &room, true
}

func (c *RoomCache) SetRoom(ctx context.Context, room *model.Room) {
	if !c.Enabled() {
		return
	}
	if err := c.Set(ctx, roomKeyPrefix+room.ID, room, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("room_id", room.ID).Msg("Room cache write failed")
	}
}

// InvalidateRoom drops the cached copy of a room after it was modified.
func (c *RoomCache) InvalidateRoom(ctx context.Context, id string) {
	if err := c.Delete(ctx, roomKeyPrefix+id); err != nil {
		c.logger.Warn().Err(err).Str("room_id", id).Msg("Room cache invalidation failed")
	}
}
