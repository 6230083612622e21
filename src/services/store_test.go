package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n8n-optimizer/src/config"
)

type record struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(100)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	var missing record
	found, err := store.Get(ctx, "nope", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	want := record{Name: "a", Count: 2, Tags: []string{"x"}}
	require.NoError(t, store.Set(ctx, "rec", want, 0))

	var got record
	found, err = store.Get(ctx, "rec", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, store.Delete(ctx, "rec"))
	found, err = store.Get(ctx, "rec", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocalStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	require.NoError(t, store.Set(ctx, "short", "value", 50*time.Millisecond))

	var got string
	found, err := store.Get(ctx, "short", &got)
	require.NoError(t, err)
	require.True(t, found)

	assert.Eventually(t, func() bool {
		found, _ := store.Get(ctx, "short", &got)
		return !found
	}, 2*time.Second, 20*time.Millisecond)
}

func TestLocalStoreDecodeError(t *testing.T) {
	ctx := context.Background()
	store := newLocalStore(t)

	require.NoError(t, store.Set(ctx, "text", "not a record", 0))

	var got record
	_, err := store.Get(ctx, "text", &got)
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	local, err := NewStore(config.Config{StoreCacheSize: 10})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, local)

	remote, err := NewStore(config.Config{Redis: config.RedisConfig{Addr: "localhost:6379"}})
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, remote)
	assert.NoError(t, remote.(*RedisStore).Close())
}
