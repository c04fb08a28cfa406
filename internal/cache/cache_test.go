package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "search:q=dune", []byte(`{"items":[]}`), time.Minute))
	got, err := c.Get(ctx, "search:q=dune")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(got))

	require.NoError(t, c.Delete(ctx, "search:q=dune"))
	_, err = c.Get(ctx, "search:q=dune")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Delete(ctx, "never-set"))
}

func TestBadger(t *testing.T) {
	c, err := OpenBadger(BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	exerciseCache(t, c)
}

func TestBadger_InMemory(t *testing.T) {
	c, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c)
}

func TestBadger_Expiry(t *testing.T) {
	c, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))
	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, "short")
		return err == ErrMiss
	}, 3*time.Second, 100*time.Millisecond)
}

func TestBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c)
}

func TestRedis_ExpiryAndPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr(), Prefix: "test"})
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("test:k"))

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestObserved(t *testing.T) {
	b, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	var hits, misses int
	c := Observed(b, func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})
	exerciseCache(t, c)

	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}
