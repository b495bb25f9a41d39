package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/inventory-be/internal/models"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestPersistRequiresKey(t *testing.T) {
	store := NewMemoryStore()
	err := Persist(context.Background(), store, models.Session{AccessToken: "t"})
	assert.ErrorIs(t, err, ErrNoKey)

	_, ok, err := Lookup(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := WithKey(context.Background(), "k1")

	require.NoError(t, Persist(ctx, store, models.Session{AccessToken: "t", ExpiresAt: now.Add(time.Minute)}))

	s, ok, err := Lookup(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t", s.AccessToken)

	now = now.Add(2 * time.Minute)
	_, ok, err = Lookup(ctx, store)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreSweepDropsAbandonedSessions(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", models.Session{AccessToken: "a", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, "open", models.Session{AccessToken: "b"}))
	require.NoError(t, store.Save(ctx, "long", models.Session{AccessToken: "c", ExpiresAt: now.Add(48 * time.Hour)}))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 2, store.Len())

	now = now.Add(DefaultTTL)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	_, ok, err := store.Load(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreSweeperStopsWithContext(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "k", models.Session{ExpiresAt: time.Now().Add(-time.Second)}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Sweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "")
	ctx := context.Background()

	want := models.Session{
		AccessToken: "tok",
		TokenType:   "bearer",
		UserID:      "u1",
		Email:       "a@b.com",
		ExpiresAt:   time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, "k1", want))
	assert.True(t, mr.Exists("session:k1"))

	got, ok, err := store.Load(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "k1"))
	_, ok, err = store.Load(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreHonoursSessionExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "inv")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k1", models.Session{AccessToken: "t", ExpiresAt: time.Now().Add(30 * time.Second)}))
	ttl := mr.TTL("inv:k1")
	assert.True(t, ttl > 0 && ttl <= 30*time.Second, "ttl %s", ttl)

	mr.FastForward(31 * time.Second)
	_, ok, err := store.Load(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreSkipsAlreadyExpiredSession(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "")

	require.NoError(t, store.Save(context.Background(), "k1", models.Session{ExpiresAt: time.Now().Add(-time.Second)}))
	assert.False(t, mr.Exists("session:k1"))
}
