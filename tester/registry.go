// Package tester keeps track of the protocol test agents the console has
// configured and is currently driving.
package tester

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slog"
)

type Kind string

const (
	KindSIP   Kind = "SIP"
	KindRTP   Kind = "RTP"
	KindMedia Kind = "MEDIA"
)

var Kinds = []Kind{KindSIP, KindRTP, KindMedia}

// ParseKind accepts any letter case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type Instance struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Endpoint  string    `json:"endpoint,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hooks are called after the registry has been updated, outside its lock.
type Hooks struct {
	OnAdd    func(ctx context.Context, inst Instance)
	OnRemove func(ctx context.Context, inst Instance)
}

type Registry struct {
	logger *slog.Logger
	hooks  Hooks
	now    func() time.Time

	registerer prometheus.Registerer
	live       *prometheus.GaugeVec

	mu        sync.RWMutex
	instances map[string]Instance // keyed by ID
	names     map[string]string   // name -> ID
}

func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		logger:    discardLogger(),
		now:       time.Now,
		instances: make(map[string]Instance),
		names:     make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	live := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "testconsole",
		Name:      "testers_live",
		Help:      "Number of tester instances currently registered, by kind.",
	}, []string{"kind"})
	created := true
	if r.registerer != nil {
		if err := r.registerer.Register(live); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				return nil, err
			}
			live = existing
			created = false
		}
	}
	r.live = live
	// a shared gauge already carries other registries' counts
	if created {
		for _, k := range Kinds {
			r.live.WithLabelValues(string(k)).Set(0)
		}
	}

	return r, nil
}

// Add registers a new tester. Names are unique across all kinds.
func (r *Registry) Add(ctx context.Context, kind Kind, name, endpoint string) (Instance, error) {
	kind, err := ParseKind(string(kind))
	if err != nil {
		return Instance{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Instance{}, ErrInvalidName
	}

	r.mu.Lock()
	if _, ok := r.names[name]; ok {
		r.mu.Unlock()
		return Instance{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	inst := Instance{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      name,
		Endpoint:  strings.TrimSpace(endpoint),
		CreatedAt: r.now().UTC(),
	}
	r.instances[inst.ID] = inst
	r.names[name] = inst.ID
	r.mu.Unlock()

	r.live.WithLabelValues(string(kind)).Inc()
	r.logger.Info("tester added", slog.String("id", inst.ID), slog.String("kind", string(kind)), slog.String("name", name))

	if r.hooks.OnAdd != nil {
		r.hooks.OnAdd(ctx, inst)
	}
	return inst, nil
}

// Remove deletes the tester with the given ID or name.
func (r *Registry) Remove(ctx context.Context, idOrName string) (Instance, error) {
	r.mu.Lock()
	inst, ok := r.lookup(idOrName)
	if !ok {
		r.mu.Unlock()
		return Instance{}, fmt.Errorf("%w: %q", ErrNotFound, idOrName)
	}
	delete(r.instances, inst.ID)
	delete(r.names, inst.Name)
	r.mu.Unlock()

	r.live.WithLabelValues(string(inst.Kind)).Dec()
	r.logger.Info("tester removed", slog.String("id", inst.ID), slog.String("kind", string(inst.Kind)), slog.String("name", inst.Name))

	if r.hooks.OnRemove != nil {
		r.hooks.OnRemove(ctx, inst)
	}
	return inst, nil
}

func (r *Registry) Get(idOrName string) (Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.lookup(idOrName)
	if !ok {
		return Instance{}, fmt.Errorf("%w: %q", ErrNotFound, idOrName)
	}
	return inst, nil
}

// List returns the testers of one kind, or all of them when kind is empty,
// oldest first.
func (r *Registry) List(kind Kind) []Instance {
	r.mu.RLock()
	all := maps.Values(r.instances)
	r.mu.RUnlock()

	out := all[:0]
	for _, inst := range all {
		if kind == "" || inst.Kind == kind {
			out = append(out, inst)
		}
	}
	sortInstances(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// lookup must be called with r.mu held.
func (r *Registry) lookup(idOrName string) (Instance, bool) {
	if inst, ok := r.instances[idOrName]; ok {
		return inst, true
	}
	if id, ok := r.names[idOrName]; ok {
		return r.instances[id], true
	}
	return Instance{}, false
}
