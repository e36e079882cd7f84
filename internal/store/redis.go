package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wortmanb/wordlebot/internal/solver"
)

const keyPrefix = "wordlebot:session:"

func sessionKey(id string) string { return keyPrefix + id }

// Redis stores snapshots as JSON strings with an idle expiry.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects using a redis:// URL and checks the connection.
func NewRedis(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

// Close closes the connection.
func (r *Redis) Close() error { return r.rdb.Close() }

// Save stores the snapshot and refreshes its expiry.
func (r *Redis) Save(ctx context.Context, snap solver.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(snap.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get loads a snapshot.
func (r *Redis) Get(ctx context.Context, id string) (solver.Snapshot, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return solver.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return solver.Snapshot{}, fmt.Errorf("get session: %w", err)
	}
	var snap solver.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return solver.Snapshot{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return snap, nil
}

// Delete removes a snapshot.
func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

// List scans for stored sessions.
func (r *Redis) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ Store = (*Redis)(nil)
