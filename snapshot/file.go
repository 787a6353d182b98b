package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slog"
)

// FileStore keeps every snapshot in one JSON document on local disk.
type FileStore struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger.With(slog.String("store", path)),
		now:    time.Now,
	}
}

func (f *FileStore) Save(ctx context.Context, s Snapshot) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return Snapshot{}, err
	}

	var existing *Snapshot
	if old, ok := all[strings.TrimSpace(s.Name)]; ok {
		existing = &old
	}
	s, err = prepare(s, existing, f.now())
	if err != nil {
		return Snapshot{}, err
	}
	all[s.Name] = s

	if err := f.store(all); err != nil {
		return Snapshot{}, err
	}
	f.logger.Debug("saved snapshot", slog.String("name", s.Name), slog.String("group", s.Group))
	return s, nil
}

func (f *FileStore) Get(ctx context.Context, name string) (Snapshot, error) {
	name = strings.TrimSpace(name)

	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return Snapshot{}, err
	}
	s, ok := all[name]
	if !ok {
		return Snapshot{}, notFound(name)
	}
	return s, nil
}

func (f *FileStore) List(ctx context.Context, group string) ([]Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return nil, err
	}
	return filterAndSort(maps.Values(all), group), nil
}

func (f *FileStore) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := all[name]; !ok {
		return notFound(name)
	}
	delete(all, name)
	return f.store(all)
}

// load reads the document; a missing file is an empty store.
func (f *FileStore) load() (map[string]Snapshot, error) {
	all := make(map[string]Snapshot)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode snapshots %s: %w", f.path, err)
	}
	return all, nil
}

// store replaces the document through a rename so readers never see a
// partial write.
func (f *FileStore) store(all map[string]Snapshot) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".snapshots-*")
	if err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshots: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshots: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshots: %w", err)
	}
	return nil
}
