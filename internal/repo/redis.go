package repo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

// Allow counts one hit against key and reports whether the caller is still
// under perMin for the current window. The first hit arms a one-minute TTL.
func (r *Redis) Allow(ctx context.Context, key string, perMin int) (bool, error) {
	n, err := r.C.Incr(ctx, "rl:"+key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := r.C.Expire(ctx, "rl:"+key, time.Minute).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(perMin), nil
}
