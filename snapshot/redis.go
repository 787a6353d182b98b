package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safermobility/testconsole/util"
	"golang.org/x/exp/slog"
)

const DefaultRedisKey = "testconsole:snapshots"

// RedisStore keeps snapshots in a single Redis hash, one field per name.
// Saves are read-modify-write and not atomic across concurrent consoles;
// the last writer wins.
type RedisStore struct {
	client redis.Cmdable
	key    string
	logger *slog.Logger
	now    func() time.Time
}

func NewRedisStore(client redis.Cmdable, key string, logger *slog.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger.With(slog.String("store", key)),
		now:    time.Now,
	}
}

func (r *RedisStore) Save(ctx context.Context, s Snapshot) (Snapshot, error) {
	var existing *Snapshot
	if old, err := r.Get(ctx, s.Name); err == nil {
		existing = &old
	} else if !errors.Is(err, ErrNotFound) {
		return Snapshot{}, err
	}

	s, err := prepare(s, existing, r.now())
	if err != nil {
		return Snapshot{}, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, s.Name, data).Err(); err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot %q: %w", s.Name, err)
	}
	r.logger.Debug("saved snapshot", slog.String("name", s.Name), slog.String("group", s.Group))
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, name string) (Snapshot, error) {
	name = strings.TrimSpace(name)
	data, err := r.client.HGet(ctx, r.key, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, notFound(name)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %q: %w", name, err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	return s, nil
}

func (r *RedisStore) List(ctx context.Context, group string) ([]Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	all := make([]Snapshot, 0, len(fields))
	for name, data := range fields {
		var s Snapshot
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			r.logger.Warn("skipping undecodable snapshot", slog.String("name", name), util.SlogError(err))
			continue
		}
		all = append(all, s)
	}
	return filterAndSort(all, group), nil
}

func (r *RedisStore) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	n, err := r.client.HDel(ctx, r.key, name).Result()
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}
