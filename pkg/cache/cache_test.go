package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sesadapter/pkg/cache"
)

// --- Memory ---

func TestMemory_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		_, err := c.Get(context.Background(), "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("returns stored value", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[[]byte]()
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "template:reset.txt", []byte("Reset {{link}}"), time.Minute))

		val, err := c.Get(ctx, "template:reset.txt")
		require.NoError(t, err)
		require.Equal(t, "Reset {{link}}", string(val))
	})

	t.Run("expired entries are dropped on access", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "key", "value", 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		_, err := c.Get(ctx, "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
		require.Zero(t, c.Len())
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithDefaultTTL(time.Millisecond), cache.WithCleanupInterval(0))
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "forever", "v", -1))
		require.NoError(t, c.Set(ctx, "default", "v", 0))
		time.Sleep(20 * time.Millisecond)

		_, err := c.Get(ctx, "forever")
		require.NoError(t, err)
		_, err = c.Get(ctx, "default")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})
}

func TestMemory_Janitor(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[int](cache.WithCleanupInterval(5 * time.Millisecond))
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "a", 1, time.Millisecond))
	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemory_MaxEntries(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[int](cache.WithMaxEntries(2), cache.WithCleanupInterval(0))
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))

	// Touch "a" so "b" becomes least recently used.
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", 3, 0))
	require.Equal(t, 2, c.Len())

	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound)
	_, err = c.Get(ctx, "a")
	require.NoError(t, err)
}

func TestMemory_DeleteAndClose(t *testing.T) {
	t.Parallel()

	c := cache.NewMemory[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "absent"))

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Set(ctx, "k", "v", 0), cache.ErrClosed)
	require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
}

// --- GetOrSet ---

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	t.Run("computes once then serves from cache", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		var calls atomic.Int32
		fn := func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			return "computed", time.Minute, nil
		}

		for range 3 {
			v, err := cache.GetOrSet(context.Background(), c, "key", fn)
			require.NoError(t, err)
			require.Equal(t, "computed", v)
		}
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		defer c.Close()

		boom := errors.New("boom")
		_, err := cache.GetOrSet(context.Background(), c, "key", func(context.Context) (string, time.Duration, error) {
			return "", 0, boom
		})
		require.ErrorIs(t, err, boom)

		_, err = c.Get(context.Background(), "key")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("concurrent misses share a result", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int]()
		defer c.Close()

		release := make(chan struct{})
		var calls atomic.Int32
		fn := func(context.Context) (int, time.Duration, error) {
			calls.Add(1)
			<-release
			return 7, time.Minute, nil
		}

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := cache.GetOrSet(context.Background(), c, "shared", fn)
				assert.NoError(t, err)
				assert.Equal(t, 7, v)
			}()
		}

		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.LessOrEqual(t, calls.Load(), int32(8))
		v, err := c.Get(context.Background(), "shared")
		require.NoError(t, err)
		require.Equal(t, 7, v)
	})
}

// --- Marshalers ---

func TestMarshalers(t *testing.T) {
	t.Parallel()

	data, err := cache.BytesMarshaler{}.Marshal([]byte("raw"))
	require.NoError(t, err)
	require.Equal(t, "raw", string(data))

	type payload struct {
		Subject string `json:"subject"`
	}
	m := cache.JSONMarshaler[payload]{}

	data, err = m.Marshal(payload{Subject: "Hi"})
	require.NoError(t, err)
	require.JSONEq(t, `{"subject":"Hi"}`, string(data))

	_, err = m.Unmarshal([]byte("{broken"))
	require.ErrorIs(t, err, cache.ErrUnmarshal)
}
