package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// releaseIfOwner deletes a hold only when it still belongs to the caller.
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisCache struct {
	client     redis.UniversalClient
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// AcquireSeatHold reserves a seat for one session. Re-acquiring a hold the
// session already owns refreshes its TTL.
func (c *RedisCache) AcquireSeatHold(ctx context.Context, flightID int64, seatID, owner string, ttl time.Duration) (bool, error) {
	key := seatHoldKey(flightID, seatID)
	ok, err := c.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil || ok {
		return ok, err
	}

	current, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return c.client.SetNX(ctx, key, owner, ttl).Result()
	}
	if err != nil {
		return false, err
	}
	if current != owner {
		return false, nil
	}
	return true, c.client.Expire(ctx, key, ttl).Err()
}

func (c *RedisCache) ReleaseSeatHold(ctx context.Context, flightID int64, seatID, owner string) error {
	return releaseIfOwner.Run(ctx, c.client, []string{seatHoldKey(flightID, seatID)}, owner).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatHoldKey(flightID int64, seatID string) string {
	return fmt.Sprintf("hold:flight:%d:seat:%s", flightID, seatID)
}
