package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"stop-sequencing-service/internal/platform/obs"
	"stop-sequencing-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "route-oracle:"

// RedisRouteCache decorates a RouteOracle with a Redis result cache.
//
// Keys are derived from the rounded coordinates and options, so the same
// request from any instance shares one entry. Redis failures are logged and
// the call goes through to the wrapped oracle.
type RedisRouteCache struct {
	next   ports.RouteOracle
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisRouteCache(next ports.RouteOracle, client redis.UniversalClient, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{next: next, client: client, ttl: ttl}
}

func (c *RedisRouteCache) Optimize(ctx context.Context, req ports.OracleRequest) (_ ports.OracleResult, err error) {
	defer obs.Time(ctx, "route.cache.Optimize")(&err)

	key := routeCacheKey(req)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached ports.OracleResult
		if uerr := json.Unmarshal(raw, &cached); uerr == nil {
			return cached, nil
		}
		log.Printf("route cache: discard undecodable entry key=%s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("route cache read failed: %v", err)
	}

	res, err := c.next.Optimize(ctx, req)
	if err != nil {
		return ports.OracleResult{}, err
	}

	payload, merr := json.Marshal(res)
	if merr != nil {
		return res, nil
	}
	if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
		log.Printf("route cache write failed: %v", serr)
	}
	return res, nil
}

// Coordinates are rounded to 6 decimals (~0.1 m).
func routeCacheKey(req ports.OracleRequest) string {
	var b strings.Builder
	writeCoord := func(lat, lon float64) {
		b.WriteString(strconv.FormatFloat(lat, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(lon, 'f', 6, 64))
		b.WriteByte(';')
	}

	writeCoord(req.Start.Lat, req.Start.Lon)
	for _, s := range req.Stops {
		writeCoord(s.Lat, s.Lon)
	}
	o := req.Options
	fmt.Fprintf(&b, "h=%t t=%t rt=%t ll=%t type=%s", o.AvoidHighways, o.AvoidTolls, o.RoundTrip, o.LockLast, o.OptimizationType)

	sum := sha256.Sum256([]byte(b.String()))
	return routeKeyPrefix + hex.EncodeToString(sum[:])
}
