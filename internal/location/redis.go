// Package location keeps the last reported position of each driver in Redis.
package location

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"delivery-lifecycle/internal/domain"
)

const keyPrefix = "driver:location:"

// RedisStore stores locations as JSON values that expire after ttl.
type RedisStore struct {
	c   redis.UniversalClient
	ttl time.Duration
}

// NewRedisStore wraps c. A non-positive ttl keeps positions forever.
func NewRedisStore(c redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{c: c, ttl: ttl}
}

type record struct {
	Lat float64   `json:"lat"`
	Lng float64   `json:"lng"`
	At  time.Time `json:"at"`
}

func key(driverID int64) string {
	return keyPrefix + strconv.FormatInt(driverID, 10)
}

// Set overwrites the driver's position.
func (s *RedisStore) Set(ctx context.Context, driverID int64, loc domain.Location) error {
	b, err := json.Marshal(record{Lat: loc.Lat, Lng: loc.Lng, At: loc.At.UTC()})
	if err != nil {
		return errors.Wrap(err, "encode location")
	}
	if err := s.c.Set(ctx, key(driverID), b, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set location")
	}
	return nil
}

// Get returns the driver's position, or nil when none is known.
func (s *RedisStore) Get(ctx context.Context, driverID int64) (*domain.Location, error) {
	b, err := s.c.Get(ctx, key(driverID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get location")
	}
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, errors.Wrapf(err, "decode location of driver %d", driverID)
	}
	return &domain.Location{Coordinate: domain.Coordinate{Lat: r.Lat, Lng: r.Lng}, At: r.At}, nil
}
