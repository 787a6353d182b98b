package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/safermobility/testconsole/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store snapshot.Store) {
	ctx := context.Background()

	_, err := store.Save(ctx, snapshot.Snapshot{Name: "  ", Text: "x"})
	assert.ErrorIs(t, err, snapshot.ErrInvalidName)

	first, err := store.Save(ctx, snapshot.Snapshot{Name: "acme", Group: "lab", Text: "INVITE one"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	_, err = store.Save(ctx, snapshot.Snapshot{Name: "branch", Group: "field", Text: "INVITE two"})
	require.NoError(t, err)

	replaced, err := store.Save(ctx, snapshot.Snapshot{Name: "acme", Group: "lab", Text: "INVITE three"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, replaced.ID)
	assert.True(t, first.CreatedAt.Equal(replaced.CreatedAt))

	got, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "INVITE three", got.Text)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "acme", all[0].Name)
	assert.Equal(t, "branch", all[1].Name)

	lab, err := store.List(ctx, "lab")
	require.NoError(t, err)
	require.Len(t, lab, 1)
	assert.Equal(t, "acme", lab[0].Name)

	padded, err := store.Save(ctx, snapshot.Snapshot{Name: " padded ", Text: "INVITE four"})
	require.NoError(t, err)
	assert.Equal(t, "padded", padded.Name)
	got, err = store.Get(ctx, " padded ")
	require.NoError(t, err)
	assert.Equal(t, padded.ID, got.ID)
	require.NoError(t, store.Delete(ctx, "  padded"))
	_, err = store.Get(ctx, "padded")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "acme"))
	_, err = store.Get(ctx, "acme")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "acme"), snapshot.ErrNotFound)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.json")
	exerciseStore(t, snapshot.NewFileStore(path, nil))

	// state survives a new store on the same file
	again := snapshot.NewFileStore(path, nil)
	got, err := again.Get(context.Background(), "branch")
	require.NoError(t, err)
	assert.Equal(t, "INVITE two", got.Text)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := snapshot.NewFileStore(path, nil).List(context.Background(), "")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TESTCONSOLE_REDIS_ADDR")
	if addr == "" {
		t.Skip("TESTCONSOLE_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	key := "testconsole:test:" + t.Name()
	client.Del(context.Background(), key)
	defer client.Del(context.Background(), key)

	exerciseStore(t, snapshot.NewRedisStore(client, key, nil))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, closer, err := snapshot.Open(snapshot.Config{Backend: snapshot.BackendFile, Path: dir}, nil)
	require.NoError(t, err)
	defer closer()
	_, err = store.Save(context.Background(), snapshot.Snapshot{Name: "n", Text: "t"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, snapshot.DefaultFileName))

	_, _, err = snapshot.Open(snapshot.Config{Backend: "s3"}, nil)
	assert.ErrorIs(t, err, snapshot.ErrUnknownBackend)
}
