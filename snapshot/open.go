package snapshot

import (
	"fmt"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"

	DefaultFileName = "snapshots.json"
)

type Config struct {
	Backend       string
	Path          string // file backend: JSON document, or a directory to hold one
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// Open returns the configured store and a function releasing whatever it
// holds open.
func Open(cfg Config, logger *slog.Logger) (Store, func() error, error) {
	switch cfg.Backend {
	case "", BackendFile:
		path := cfg.Path
		if path == "" {
			path = DefaultFileName
		} else if filepath.Ext(path) == "" {
			path = filepath.Join(path, DefaultFileName)
		}
		return NewFileStore(path, logger), func() error { return nil }, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisStore(client, cfg.RedisKey, logger), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
