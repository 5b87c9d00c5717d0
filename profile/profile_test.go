package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "sess-1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.Guest(), Current(ctx, s, "sess-1"))

	alice := models.User{Username: "alice", Avatar: "/a.png"}
	require.NoError(t, s.Save(ctx, "sess-1", alice))

	got, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.Equal(t, alice, Current(ctx, s, "sess-1"))
	assert.Equal(t, models.Guest(), Current(ctx, s, "sess-2"))

	require.NoError(t, s.Clear(ctx, "sess-1"))
	require.NoError(t, s.Clear(ctx, "sess-1"))
	assert.Equal(t, models.Guest(), Current(ctx, s, "sess-1"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "profiles"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "../../etc/passwd", models.User{Username: "x"}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "passwd.json", entries[0].Name())
}

func TestFileStoreCorruptProfileIsGuest(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644))
	assert.Equal(t, models.Guest(), Current(context.Background(), s, "bad"))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { conn.Close() })

	exerciseStore(t, NewRedisStore(conn, time.Hour))
}

func TestRedisStoreExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { conn.Close() })

	s := NewRedisStore(conn, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "k", models.User{Username: "alice"}))
	assert.Equal(t, time.Minute, mr.TTL("profile:k"))

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, models.Guest(), Current(ctx, s, "k"))
}

func TestCurrentNilStore(t *testing.T) {
	assert.Equal(t, models.Guest(), Current(context.Background(), nil, "x"))
}

func TestCurrentBlankUsername(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Save(context.Background(), "k", models.User{Avatar: "/a.png"}))
	got := Current(context.Background(), m, "k")
	assert.Equal(t, models.GuestName, got.Username)
	assert.Equal(t, "/a.png", got.Avatar)
}
