package tester

import (
	"errors"
	"io"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slog"
)

type Option func(*Registry) error

var (
	ErrUnknownKind   = errors.New("unknown tester kind")
	ErrDuplicateName = errors.New("tester name already in use")
	ErrInvalidName   = errors.New("tester name must not be empty")
	ErrNotFound      = errors.New("tester not found")
	ErrNilClock      = errors.New("clock must not be nil")
)

// WithHooks replaces any previously configured hooks.
func WithHooks(h Hooks) Option {
	return func(r *Registry) error {
		r.hooks = h
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return WithGroupLogger(logger, "")
}

func WithGroupLogger(logger *slog.Logger, groupName string) Option {
	return func(r *Registry) error {
		if logger == nil {
			return nil
		}
		if groupName != "" {
			logger = logger.WithGroup(groupName)
		}
		r.logger = logger
		return nil
	}
}

// Register the live-tester gauge with reg (e.g. prometheus.DefaultRegisterer)
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Registry) error {
		r.registerer = reg
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) error {
		if now == nil {
			return ErrNilClock
		}
		r.now = now
		return nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sortInstances(list []Instance) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].Name < list[j].Name
	})
}
