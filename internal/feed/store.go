package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Store is the sorted-set capability the cache needs. Ranks are zero-based
// in ascending score order; negative ranks count from the end.
type Store interface {
	// RangeByRank returns members between start and stop inclusive,
	// highest score first.
	RangeByRank(ctx context.Context, start, stop int64) ([]string, error)

	// RankOf returns the rank of member, or false if it is not stored.
	RankOf(ctx context.Context, member string) (int64, bool, error)

	// HasScore reports whether any member is stored with exactly score.
	HasScore(ctx context.Context, score float64) (bool, error)

	AddWithScore(ctx context.Context, member string, score float64) error

	// TrimByRank removes members between start and stop inclusive.
	TrimByRank(ctx context.Context, start, stop int64) error
}

// RedisStore implements Store over a single Redis sorted set.
type RedisStore struct {
	client *redis.Client
	key    string
}

// DefaultKey is the sorted set the site has always used.
const DefaultKey = "events"

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) RangeByRank(ctx context.Context, start, stop int64) ([]string, error) {
	members, err := s.client.ZRevRange(ctx, s.key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", s.key, err)
	}
	return members, nil
}

func (s *RedisStore) RankOf(ctx context.Context, member string) (int64, bool, error) {
	rank, err := s.client.ZRank(ctx, s.key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("zrank %s: %w", s.key, err)
	}
	return rank, true, nil
}

func (s *RedisStore) HasScore(ctx context.Context, score float64) (bool, error) {
	bound := strconv.FormatFloat(score, 'f', -1, 64)
	n, err := s.client.ZCount(ctx, s.key, bound, bound).Result()
	if err != nil {
		return false, fmt.Errorf("zcount %s: %w", s.key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) AddWithScore(ctx context.Context, member string, score float64) error {
	if err := s.client.ZAdd(ctx, s.key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) TrimByRank(ctx context.Context, start, stop int64) error {
	if err := s.client.ZRemRangeByRank(ctx, s.key, start, stop).Err(); err != nil {
		return fmt.Errorf("zremrangebyrank %s: %w", s.key, err)
	}
	return nil
}

// Len reports how many events are stored.
func (s *RedisStore) Len(ctx context.Context) (int64, error) {
	return s.client.ZCard(ctx, s.key).Result()
}
