// Package snapshot keeps named copies of generated INVITE text so an
// operator can reuse a message later.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("snapshot not found")
	ErrInvalidName    = errors.New("snapshot name must not be empty")
	ErrUnknownBackend = errors.New("unknown snapshot backend")
)

type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a named-blob store. Saving under an existing name replaces the
// text and group but keeps the ID and creation time.
type Store interface {
	Save(ctx context.Context, s Snapshot) (Snapshot, error)
	Get(ctx context.Context, name string) (Snapshot, error)
	// List returns snapshots sorted by name. An empty group lists all.
	List(ctx context.Context, group string) ([]Snapshot, error)
	Delete(ctx context.Context, name string) error
}

// prepare validates s and merges it with the stored snapshot of the same
// name, if there is one.
func prepare(s Snapshot, existing *Snapshot, now time.Time) (Snapshot, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.Group = strings.TrimSpace(s.Group)
	if s.Name == "" {
		return Snapshot{}, ErrInvalidName
	}

	if existing != nil {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	} else {
		s.ID = uuid.NewString()
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return s, nil
}

func filterAndSort(all []Snapshot, group string) []Snapshot {
	out := make([]Snapshot, 0, len(all))
	for _, s := range all {
		if group == "" || s.Group == group {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}
