package ipreputation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "iprep:"

// CachedClient memoizes lookups in Redis. Cache errors degrade to a direct
// lookup; they are never returned.
type CachedClient struct {
	next   Lookuper
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedClient(next Lookuper, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedClient) Lookup(ctx context.Context, ip string) (*Reputation, error) {
	addr, ok := Eligible(ip)
	if !ok {
		return nil, nil
	}
	key := cacheKeyPrefix + addr.String()

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rep Reputation
		if jsonErr := json.Unmarshal(raw, &rep); jsonErr == nil {
			return &rep, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "ip reputation cache read failed", "error", err)
	}

	rep, err := c.next.Lookup(ctx, ip)
	if err != nil || rep == nil {
		return rep, err
	}

	if payload, jsonErr := json.Marshal(rep); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "ip reputation cache write failed", "error", setErr)
		}
	}
	return rep, nil
}
