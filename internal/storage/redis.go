package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/chengjiao-crawler/internal/crawler"
	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/pkg/utils"
)

const (
	frontierKey   = "crawler:frontier"
	processingKey = "crawler:processing"
	seenKey       = "crawler:seen"
	retriesKey    = "crawler:retries"
)

// RedisStore keeps the crawl frontier in Redis so a crawl can be resumed
// after a restart.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb}
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Reset drops the frontier, the in-flight visits, the seen set and the
// retry counters.
func (s *RedisStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, frontierKey, processingKey, seenKey, retriesKey).Err()
}

// Requeue moves visits that were in flight when an earlier run stopped back
// to the head of the frontier, oldest first. It returns how many it moved.
func (s *RedisStore) Requeue(ctx context.Context) (int64, error) {
	var n int64
	for {
		err := s.client.LMove(ctx, processingKey, frontierKey, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("requeue in-flight visits: %w", err)
		}
		n++
	}
}

func (s *RedisStore) Frontier() *RedisFrontier { return &RedisFrontier{client: s.client} }

func (s *RedisStore) SeenSet() *RedisSeenSet { return &RedisSeenSet{client: s.client} }

func (s *RedisStore) RetryCounter() *RedisRetryCounter {
	return &RedisRetryCounter{client: s.client}
}

// RedisFrontier is a FIFO of encoded visits on a Redis list.
type RedisFrontier struct {
	client *redis.Client
}

// Push adds a visit to the left side of the list.
func (f *RedisFrontier) Push(ctx context.Context, v domain.Visit) error {
	data, err := domain.EncodeVisit(v)
	if err != nil {
		return err
	}
	return f.client.LPush(ctx, frontierKey, data).Err()
}

// Pop moves the visit at the right side of the list onto the processing
// list, where it stays until Ack. Requeue recovers visits a dead process
// left there.
func (f *RedisFrontier) Pop(ctx context.Context) (domain.Visit, error) {
	data, err := f.client.LMove(ctx, frontierKey, processingKey, "RIGHT", "LEFT").Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Visit{}, crawler.ErrFrontierEmpty
	}
	if err != nil {
		return domain.Visit{}, fmt.Errorf("pop frontier: %w", err)
	}
	v, err := domain.DecodeVisit(data)
	if err != nil {
		if rerr := f.client.LRem(ctx, processingKey, 1, data).Err(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("drop entry: %w", rerr))
		}
		return domain.Visit{}, fmt.Errorf("%w: %w", crawler.ErrCorruptVisit, err)
	}
	return v, nil
}

// Ack removes a popped visit from the processing list.
func (f *RedisFrontier) Ack(ctx context.Context, v domain.Visit) error {
	data, err := domain.EncodeVisit(v)
	if err != nil {
		return err
	}
	return f.client.LRem(ctx, processingKey, 1, data).Err()
}

func (f *RedisFrontier) Len(ctx context.Context) (int64, error) {
	return f.client.LLen(ctx, frontierKey).Result()
}

// RedisSeenSet stores hashed URLs in a Redis set.
type RedisSeenSet struct {
	client *redis.Client
}

func (s *RedisSeenSet) MarkSeen(ctx context.Context, url string) (bool, error) {
	// SADD returns the number of members actually added.
	added, err := s.client.SAdd(ctx, seenKey, utils.HashURL(url)).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (s *RedisSeenSet) Forget(ctx context.Context, url string) error {
	return s.client.SRem(ctx, seenKey, utils.HashURL(url)).Err()
}

// RedisRetryCounter keeps per-URL attempt counts in a Redis hash.
type RedisRetryCounter struct {
	client *redis.Client
}

func (c *RedisRetryCounter) Incr(ctx context.Context, url string) (int64, error) {
	return c.client.HIncrBy(ctx, retriesKey, utils.HashURL(url), 1).Result()
}
