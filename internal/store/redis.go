package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis server.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *RedisStore) GetMany(ctx context.Context, keys []string) ([]string, error) {
	cmds := make([]*redis.StringCmd, len(keys))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Get(ctx, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	vals := make([]string, len(keys))
	for i, cmd := range cmds {
		if errors.Is(cmd.Err(), redis.Nil) {
			continue
		}
		if cmd.Err() != nil {
			return nil, cmd.Err()
		}
		vals[i] = cmd.Val()
	}
	return vals, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) SetAdd(ctx context.Context, key, member string) error {
	return s.client.SAdd(ctx, key, member).Err()
}

func (s *RedisStore) SetRemove(ctx context.Context, key, member string) error {
	return s.client.SRem(ctx, key, member).Err()
}

func (s *RedisStore) SetIsMember(ctx context.Context, key, member string) (bool, error) {
	return s.client.SIsMember(ctx, key, member).Result()
}

func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

func (s *RedisStore) HashSet(ctx context.Context, key, field, value string) error {
	return s.client.HSet(ctx, key, field, value).Err()
}

func (s *RedisStore) HashGet(ctx context.Context, key, field string) (string, error) {
	val, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *RedisStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, key).Result()
}

func (s *RedisStore) HashDelete(ctx context.Context, key, field string) error {
	return s.client.HDel(ctx, key, field).Err()
}

func (s *RedisStore) Pipeline() Pipeline {
	return &redisPipeline{pipe: s.client.Pipeline()}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisPipeline queues commands on a go-redis pipeliner. The per-command
// context is unused by go-redis for queued commands; Exec's context governs
// the round trip.
type redisPipeline struct {
	pipe redis.Pipeliner
}

func (p *redisPipeline) Set(key, value string) {
	p.pipe.Set(context.Background(), key, value, 0)
}

func (p *redisPipeline) Delete(key string) {
	p.pipe.Del(context.Background(), key)
}

func (p *redisPipeline) SetAdd(key, member string) {
	p.pipe.SAdd(context.Background(), key, member)
}

func (p *redisPipeline) SetRemove(key, member string) {
	p.pipe.SRem(context.Background(), key, member)
}

func (p *redisPipeline) HashSet(key, field, value string) {
	p.pipe.HSet(context.Background(), key, field, value)
}

func (p *redisPipeline) HashDelete(key, field string) {
	p.pipe.HDel(context.Background(), key, field)
}

func (p *redisPipeline) Exec(ctx context.Context) error {
	_, err := p.pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
