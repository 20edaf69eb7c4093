package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/abhisek/codequiz/internal/session"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "codequiz:session:"

// Redis stores each session as a JSON blob and indexes ids in a sorted set
// scored by last save time.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ session.Store = (*Redis)(nil)

// Option configures a Redis store.
type Option func(*Redis)

// WithTTL expires sessions ttl after their last save.
func WithTTL(ttl time.Duration) Option {
	return func(s *Redis) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Redis) {
		s.prefix = prefix
	}
}

// NewRedis connects to the server at addr.
func NewRedis(addr, password string, db int, opts ...Option) *Redis {
	rdb := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(rdb, opts...)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *backend.Client, opts ...Option) *Redis {
	s := &Redis{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Redis) key(id string) string {
	return s.prefix + id
}

func (s *Redis) indexKey() string {
	return s.prefix + "index"
}

// Ping checks the connection.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Save(ctx context.Context, st *session.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(st.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: st.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session to redis: %w", err)
	}
	return nil
}

func (s *Redis) Load(ctx context.Context, id string) (*session.State, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session from redis: %w", err)
	}

	var st session.State
	if err := json.Unmarshal(val, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &st, nil
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List prunes index entries older than the TTL, then returns the rest
// newest first.
func (s *Redis) List(ctx context.Context) ([]string, error) {
	if s.ttl > 0 {
		cutoff := time.Now().Add(-s.ttl).UnixMilli()
		err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+strconv.FormatInt(cutoff, 10)).Err()
		if err != nil {
			return nil, fmt.Errorf("prune expired sessions: %w", err)
		}
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Redis) Close() error {
	return s.client.Close()
}
